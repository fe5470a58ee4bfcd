package index

import (
	"fmt"
	"io"
	"sort"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/block"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
)

// Entry locates one block: its parsed header and the file offset the
// header starts at. The body follows the header directly.
type Entry struct {
	Header block.Header
	Offset int64
}

// BodyOffset returns the file offset of the block's compressed body.
func (e Entry) BodyOffset() int64 {
	return e.Offset + int64(format.BlockHeaderSize)
}

// TimeIndex maps time to blocks. Entries are in file order with
// non-overlapping, non-decreasing time ranges, so both start and end
// times are binary-searchable.
type TimeIndex struct {
	entries []Entry
}

// Build scans block headers from start up to size, reading headers only
// and never touching bodies. A trailing fragment shorter than one
// header is ignored; a final block whose body extends past size is kept
// so decoding can report it instead of the whole file failing to open.
func Build(r io.ReaderAt, start, size int64) (*TimeIndex, error) {
	var entries []Entry
	buf := make([]byte, format.BlockHeaderSize)

	pos := start
	for pos+int64(format.BlockHeaderSize) <= size {
		if _, err := r.ReadAt(buf, pos); err != nil {
			return nil, errors.Wrap(errors.PhaseIndex, errors.KindInvalidData, err,
				fmt.Sprintf("read block header at offset %d", pos))
		}
		hdr, err := block.ParseHeader(buf)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseIndex, errors.KindInvalidData, err,
				fmt.Sprintf("block %d at offset %d", len(entries), pos))
		}
		if n := len(entries); n > 0 {
			prev := entries[n-1].Header
			if hdr.StartTime < prev.EndTime {
				return nil, errors.InvalidData(errors.PhaseIndex, nil,
					fmt.Sprintf("block %d starts at %d inside block %d ending at %d",
						n, hdr.StartTime, n-1, prev.EndTime))
			}
		}
		entries = append(entries, Entry{Header: hdr, Offset: pos})
		pos += int64(format.BlockHeaderSize) + int64(hdr.CompLen)
	}

	return &TimeIndex{entries: entries}, nil
}

// Len returns the number of indexed blocks.
func (ix *TimeIndex) Len() int {
	return len(ix.entries)
}

// Entry returns the i-th block in file order.
func (ix *TimeIndex) Entry(i int) Entry {
	return ix.entries[i]
}

// Range returns the time span covered by all blocks together. ok is
// false when the index is empty.
func (ix *TimeIndex) Range() (fstreader.TimeRange, bool) {
	if len(ix.entries) == 0 {
		return fstreader.TimeRange{}, false
	}
	return fstreader.TimeRange{
		Start: ix.entries[0].Header.StartTime,
		End:   ix.entries[len(ix.entries)-1].Header.EndTime,
	}, true
}

// BlockForTime returns the index of the earliest block whose range
// contains t, or, when t falls in a gap, the latest block starting
// before it. Blocks may share a boundary instant; the first of them
// wins. ok is false when t precedes every block.
func (ix *TimeIndex) BlockForTime(t uint64) (int, bool) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Header.StartTime > t
	})
	if i == 0 {
		return 0, false
	}
	i--
	// End times are non-decreasing, so every earlier block reaching t
	// also contains it.
	for i > 0 && ix.entries[i-1].Header.EndTime >= t {
		i--
	}
	return i, true
}

// BlocksInRange returns the half-open index range [lo, hi) of blocks
// whose time span overlaps tr.
func (ix *TimeIndex) BlocksInRange(tr fstreader.TimeRange) (lo, hi int) {
	// Block end times are non-decreasing, as Build enforces no overlap.
	lo = sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Header.EndTime >= tr.Start
	})
	hi = sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Header.StartTime > tr.End
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
