// Package format implements the FST binary container format: the file
// header, the compressed hierarchy section, and the constants shared by
// block decoding.
//
// # Container Layout
//
// An FST file is laid out as:
//
//	magic "FSTR" + version byte
//	header fields (times, timescale, version/date strings, counts)
//	hierarchy section (compressed token stream)
//	value-change blocks until EOF
//
// All variable-width integers are LEB128 varints; fixed-width fields are
// little-endian. Block payload decoding lives in the block package; this
// package stops at the first block boundary and records its offset.
//
// # Parsing
//
// Parse a container from bytes:
//
//	f, err := format.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(f.Header.Version, f.Hier.VarCount())
//
// Header damage (bad magic, unsupported version, end time before start
// time, unparseable hierarchy) fails Parse outright with a corrupt-header
// error. A hierarchy with zero scopes and zero variables is degenerate
// but valid.
//
// # Hierarchy
//
// The hierarchy is a flat token stream of Scope, Var, Upscope, AttrBegin
// and AttrEnd markers. It is parsed in a single linear pass with an
// explicit scope stack, simultaneously building the dense handle index
// and the dotted path table:
//
//	f.Hier.Rewind()
//	for {
//	    n, ok := f.Hier.Next()
//	    if !ok {
//	        break
//	    }
//	    // n.Type, n.Scope / n.Var / n.Attr
//	}
//
//	v, err := f.Hier.Variable(handle)
//	v, ok := f.Hier.VarByPath("top.cpu.clk")
//
// Handles are dense 1-based integers. A Var token that repeats an
// earlier handle declares an alias: it appears in iteration order but
// the primary declaration keeps the handle index slot.
//
// # Authoritative Counts
//
// Header metadata counts are authoritative. After parse,
// File.CountMismatches compares them with what iteration actually
// yielded; callers surface any divergence as a warning instead of
// silently trusting either source.
package format
