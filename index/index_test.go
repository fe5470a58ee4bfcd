package index_test

import (
	"bytes"
	"testing"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/index"
	"github.com/wippyai/fst-reader/internal/fstgen"
)

// buildTwoBlocks emits a container with blocks spanning [5,10] and
// [20,25] and returns the raw bytes and the block section offset.
func buildTwoBlocks(t *testing.T) ([]byte, int64) {
	t.Helper()

	b := fstgen.New(nil)
	b.Scope(format.ScopeModule, "top")
	clk := b.Wire("clk", 1)
	b.Upscope()

	b.ChangeBits(5, clk, "0")
	b.ChangeBits(10, clk, "1")
	b.EndBlock()
	b.ChangeBits(20, clk, "0")
	b.ChangeBits(25, clk, "1")

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := format.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return data, int64(f.BlockStart)
}

func buildIndex(t *testing.T, data []byte, start int64) *index.TimeIndex {
	t.Helper()
	ix, err := index.Build(bytes.NewReader(data), start, int64(len(data)))
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return ix
}

func TestBuildScansHeaders(t *testing.T) {
	data, start := buildTwoBlocks(t)
	ix := buildIndex(t, data, start)

	if ix.Len() != 2 {
		t.Fatalf("indexed %d blocks, want 2", ix.Len())
	}
	first, second := ix.Entry(0), ix.Entry(1)
	if first.Offset != start {
		t.Errorf("first block offset = %d, want %d", first.Offset, start)
	}
	wantSecond := first.BodyOffset() + int64(first.Header.CompLen)
	if second.Offset != wantSecond {
		t.Errorf("second block offset = %d, want %d", second.Offset, wantSecond)
	}

	r, ok := ix.Range()
	if !ok {
		t.Fatal("Range reported an empty index")
	}
	if r.Start != 5 || r.End != 25 {
		t.Errorf("range = [%d, %d], want [5, 25]", r.Start, r.End)
	}
}

func TestBlockForTime(t *testing.T) {
	data, start := buildTwoBlocks(t)
	ix := buildIndex(t, data, start)

	tests := []struct {
		t    uint64
		want int
		ok   bool
	}{
		{0, 0, false}, // before every block
		{4, 0, false},
		{5, 0, true},
		{7, 0, true},
		{15, 0, true}, // in the gap, still the earlier block
		{20, 1, true},
		{25, 1, true},
		{1000, 1, true},
	}
	for _, tt := range tests {
		got, ok := ix.BlockForTime(tt.t)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("BlockForTime(%d) = (%d, %v), want (%d, %v)",
				tt.t, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBlockForTimeSharedBoundary(t *testing.T) {
	// A zero-span block [5,5] followed by [5,10]: both contain t=5, and
	// the earliest one wins.
	b := fstgen.New(nil)
	b.Scope(format.ScopeModule, "top")
	clk := b.Wire("clk", 1)
	b.Upscope()

	b.ChangeBits(5, clk, "0")
	b.EndBlock()
	b.ChangeBits(5, clk, "1")
	b.ChangeBits(10, clk, "0")

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := format.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ix := buildIndex(t, data, int64(f.BlockStart))
	if ix.Len() != 2 {
		t.Fatalf("indexed %d blocks, want 2", ix.Len())
	}

	if got, ok := ix.BlockForTime(5); !ok || got != 0 {
		t.Errorf("BlockForTime(5) = (%d, %v), want (0, true)", got, ok)
	}
	if got, ok := ix.BlockForTime(7); !ok || got != 1 {
		t.Errorf("BlockForTime(7) = (%d, %v), want (1, true)", got, ok)
	}
}

func TestBlocksInRange(t *testing.T) {
	data, start := buildTwoBlocks(t)
	ix := buildIndex(t, data, start)

	tests := []struct {
		tr     fstreader.TimeRange
		lo, hi int
	}{
		{fstreader.TimeRange{Start: 0, End: 4}, 0, 0},
		{fstreader.TimeRange{Start: 0, End: 7}, 0, 1},
		{fstreader.TimeRange{Start: 12, End: 18}, 1, 1}, // gap between blocks
		{fstreader.TimeRange{Start: 8, End: 22}, 0, 2},
		{fstreader.TimeRange{Start: 0, End: 100}, 0, 2},
		{fstreader.TimeRange{Start: 26, End: 30}, 2, 2},
	}
	for _, tt := range tests {
		lo, hi := ix.BlocksInRange(tt.tr)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("BlocksInRange([%d, %d]) = [%d, %d), want [%d, %d)",
				tt.tr.Start, tt.tr.End, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestBuildRejectsOverlap(t *testing.T) {
	b := fstgen.New(nil)
	b.Scope(format.ScopeModule, "top")
	clk := b.Wire("clk", 1)
	b.Upscope()

	b.ChangeBits(0, clk, "0")
	b.ChangeBits(10, clk, "1")
	b.EndBlock()
	// Starts inside the previous block's range.
	b.ChangeBits(5, clk, "0")

	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := format.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if _, err := index.Build(bytes.NewReader(data), int64(f.BlockStart), int64(len(data))); err == nil {
		t.Fatal("expected an error for overlapping blocks")
	}
}

func TestBuildIgnoresTrailingFragment(t *testing.T) {
	data, start := buildTwoBlocks(t)
	data = append(data, make([]byte, format.BlockHeaderSize-1)...)

	ix := buildIndex(t, data, start)
	if ix.Len() != 2 {
		t.Fatalf("indexed %d blocks, want 2", ix.Len())
	}
}

func TestBuildKeepsTornFinalBlock(t *testing.T) {
	data, start := buildTwoBlocks(t)

	// Cut into the final body. The header is intact, so the block stays
	// indexed and decoding it reports the damage later.
	torn := data[:len(data)-2]
	ix := buildIndex(t, torn, start)
	if ix.Len() != 2 {
		t.Fatalf("indexed %d blocks, want 2", ix.Len())
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := buildIndex(t, nil, 0)
	if ix.Len() != 0 {
		t.Fatalf("Len = %d, want 0", ix.Len())
	}
	if _, ok := ix.Range(); ok {
		t.Fatal("Range on an empty index reported ok")
	}
	if _, ok := ix.BlockForTime(5); ok {
		t.Fatal("BlockForTime on an empty index reported ok")
	}
}
