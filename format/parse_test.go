package format_test

import (
	stderrors "errors"
	"testing"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/internal/fstgen"
)

func buildSmall(t *testing.T, codec format.Codec) []byte {
	t.Helper()
	b := fstgen.New(&fstgen.Options{
		Version: "testwriter 1.0",
		Date:    "Mon Aug 31 10:00:00 2026",
		Codec:   codec,
	})
	b.Scope(format.ScopeModule, "top")
	clk := b.Wire("clk", 1)
	data := b.Wire("data[7:0]", 8)
	b.Scope(format.ScopeModule, "cpu")
	b.Wire("rst", 1)
	b.Upscope()
	b.Upscope()

	b.ChangeBits(0, clk, "0")
	b.ChangeBits(0, data, "00000000")
	b.ChangeBits(5, clk, "1")
	b.ChangeBits(10, clk, "0")

	raw, err := b.Bytes()
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return raw
}

func TestParseHeader(t *testing.T) {
	f, err := format.Parse(buildSmall(t, format.CodecZlib))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hdr := f.Header
	if hdr.Version != "testwriter 1.0" {
		t.Errorf("version: %q", hdr.Version)
	}
	if hdr.Date != "Mon Aug 31 10:00:00 2026" {
		t.Errorf("date: %q", hdr.Date)
	}
	if hdr.TimescaleExp != -9 {
		t.Errorf("timescale: %d", hdr.TimescaleExp)
	}
	if hdr.StartTime != 0 || hdr.EndTime != 10 {
		t.Errorf("time range: [%d, %d]", hdr.StartTime, hdr.EndTime)
	}
	if hdr.ScopeCount != 2 || hdr.VarCount != 3 || hdr.MaxHandle != 3 {
		t.Errorf("counts: %d scopes, %d vars, max handle %d",
			hdr.ScopeCount, hdr.VarCount, hdr.MaxHandle)
	}
	if f.BlockStart <= 0 {
		t.Errorf("block start: %d", f.BlockStart)
	}
	if len(f.CountMismatches()) != 0 {
		t.Errorf("unexpected mismatches: %v", f.CountMismatches())
	}
}

func TestParseAllCodecs(t *testing.T) {
	codecs := []format.Codec{
		format.CodecNone,
		format.CodecZlib,
		format.CodecSnappy,
		format.CodecZstd,
	}
	for _, codec := range codecs {
		t.Run(codec.String(), func(t *testing.T) {
			f, err := format.Parse(buildSmall(t, codec))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if f.Hier.VarCount() != 3 {
				t.Errorf("var count: %d", f.Hier.VarCount())
			}
		})
	}
}

func TestParseRejectsDamage(t *testing.T) {
	good := buildSmall(t, format.CodecZlib)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"empty", func(d []byte) []byte { return nil }},
		{"bad magic", func(d []byte) []byte {
			d[0] = 'X'
			return d
		}},
		{"bad version", func(d []byte) []byte {
			d[4] = 0xff
			return d
		}},
		{"truncated header", func(d []byte) []byte { return d[:6] }},
		{"truncated hierarchy", func(d []byte) []byte { return d[:20] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := make([]byte, len(good))
			copy(cp, good)
			_, err := format.Parse(tt.mutate(cp))
			if err == nil {
				t.Fatal("damaged header accepted")
			}
			if !errors.IsKind(err, errors.KindCorruptHeader) {
				t.Errorf("expected corrupt_header, got %v", err)
			}
		})
	}
}

func TestParseRejectsInvertedTimeRange(t *testing.T) {
	b := fstgen.New(&fstgen.Options{
		StartTime: fstgen.U64(100),
		EndTime:   fstgen.U64(5),
	})
	raw, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = format.Parse(raw)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindCorruptHeader}) {
		t.Errorf("expected corrupt_header, got %v", err)
	}
}

func TestParseEmptyHierarchy(t *testing.T) {
	raw, err := fstgen.New(nil).Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f, err := format.Parse(raw)
	if err != nil {
		t.Fatalf("degenerate hierarchy rejected: %v", err)
	}
	if f.Hier.ScopeCount() != 0 || f.Hier.VarCount() != 0 || f.Hier.MaxHandle() != 0 {
		t.Errorf("counts: %d/%d/%d", f.Hier.ScopeCount(), f.Hier.VarCount(), f.Hier.MaxHandle())
	}
	if _, ok := f.Hier.Next(); ok {
		t.Error("empty hierarchy yielded a node")
	}
}

func TestCountMismatches(t *testing.T) {
	b := fstgen.New(&fstgen.Options{
		HeaderVarCount:  fstgen.U64(9),
		HeaderMaxHandle: fstgen.U64(9),
	})
	b.Scope(format.ScopeModule, "top")
	b.Wire("clk", 1)
	b.Upscope()
	raw, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f, err := format.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := f.CountMismatches()
	if len(got) != 2 {
		t.Fatalf("expected 2 mismatches, got %v", got)
	}
	// Header stays authoritative regardless.
	if f.Header.VarCount != 9 {
		t.Errorf("header var count rewritten: %d", f.Header.VarCount)
	}
	if f.Hier.VarCount() != 1 {
		t.Errorf("iterated var count: %d", f.Hier.VarCount())
	}
}

func TestParseAlias(t *testing.T) {
	b := fstgen.New(nil)
	b.Scope(format.ScopeModule, "top")
	b.Var(format.VarWire, format.DirOutput, 1, 1, "clk")
	b.Var(format.VarWire, format.DirInput, 1, 1, "clk_shadow") // alias of handle 1
	b.Upscope()
	raw, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f, err := format.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Hier.VarCount() != 2 {
		t.Errorf("var count: %d", f.Hier.VarCount())
	}
	if f.Hier.MaxHandle() != 1 {
		t.Errorf("max handle: %d", f.Hier.MaxHandle())
	}

	v, err := f.Hier.Variable(1)
	if err != nil {
		t.Fatalf("Variable(1): %v", err)
	}
	if v.Name != "clk" {
		t.Errorf("primary declaration lost, got %q", v.Name)
	}
	if v.Direction != format.DirOutput {
		t.Errorf("primary direction lost, got %s", v.Direction)
	}
}

func TestVariableBounds(t *testing.T) {
	f, err := format.Parse(buildSmall(t, format.CodecNone))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	max := f.Hier.MaxHandle()
	for h := fstreader.Handle(1); h <= max; h++ {
		if _, err := f.Hier.Variable(h); err != nil {
			t.Errorf("Variable(%d): %v", h, err)
		}
	}
	if _, err := f.Hier.Variable(0); !errors.IsKind(err, errors.KindUnknownHandle) {
		t.Errorf("Variable(0): %v", err)
	}
	if _, err := f.Hier.Variable(max + 1); !errors.IsKind(err, errors.KindUnknownHandle) {
		t.Errorf("Variable(max+1): %v", err)
	}
}
