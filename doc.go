// Package fstreader provides random access to FST waveform trace files.
//
// FST is a block-compressed binary container for simulation value-change
// data: a header with design metadata, a compressed hierarchy section
// describing scopes and variables, and a series of time-bounded compressed
// blocks holding delta-encoded value changes.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	fstreader/           Root package with Handle, TimeRange and output modes
//	├── reader/          High-level Session API: open, metadata, iteration, queries
//	├── format/          Binary format: constants, header and hierarchy parsing
//	├── block/           Value-change block decoding and process-mask filtering
//	├── index/           Time index mapping simulation times to block offsets
//	├── signal/          Value model and per-signal change history
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Open a file and iterate every value change in time order:
//
//	s, err := reader.Open("dump.fst", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	err = s.IterBlocks(func(t uint64, h fstreader.Handle, v signal.Value) bool {
//	    fmt.Printf("%d %d %s\n", t, h, v)
//	    return true
//	})
//
// Restrict decoding to a signal subset with the process mask:
//
//	s.ClearProcessMaskAll()
//	s.SetProcessMask(clk)
//
// Ask for a point-in-time value:
//
//	v, err := s.ValueAt(clk, 700)
//
// # Concurrency
//
// The hierarchy and time index are immutable after open. Mask mutation,
// Close and the point-query cache are guarded inside the Session, and
// iterations snapshot the mask when they start, so independent reads may
// run from several goroutines. A single Iterator is not safe for
// concurrent use.
package fstreader
