package signal

import (
	"bytes"
	stdbin "encoding/binary"
	"math"
	"testing"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
)

func TestFromRecord(t *testing.T) {
	realVar := &format.Var{Type: format.VarReal, Bits: 64}
	strVar := &format.Var{Type: format.VarString}
	wireVar := &format.Var{Type: format.VarWire, Bits: 4}

	realRaw := make([]byte, 8)
	stdbin.LittleEndian.PutUint64(realRaw, math.Float64bits(3.25))

	tests := []struct {
		name string
		v    *format.Var
		raw  []byte
		kind Kind
		str  string
	}{
		{"real", realVar, realRaw, KindReal, "3.25"},
		{"string", strVar, []byte("hello"), KindString, "hello"},
		{"vector", wireVar, []byte("10xz"), KindBits, "10xz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val := FromRecord(tt.v, tt.raw)
			if val.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", val.Kind(), tt.kind)
			}
			if val.String() != tt.str {
				t.Errorf("String() = %q, want %q", val.String(), tt.str)
			}
		})
	}
}

func TestValueUint64(t *testing.T) {
	tests := []struct {
		bits string
		want uint64
		ok   bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"1010", 10, true},
		{"hl", 2, true}, // high/low drive states are defined levels
		{"HL", 2, true},
		{"1x10", 0, false},
		{"z", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Bits(tt.bits).Uint64()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Bits(%q).Uint64() = (%d, %v), want (%d, %v)",
				tt.bits, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := Real(1.5).Uint64(); ok {
		t.Error("real converted through Uint64")
	}
	if _, ok := Str("abc").Uint64(); ok {
		t.Error("string converted through Uint64")
	}
}

func TestValueFloat64(t *testing.T) {
	if f, ok := Real(2.5).Float64(); !ok || f != 2.5 {
		t.Errorf("Real Float64 = (%v, %v)", f, ok)
	}
	if f, ok := Bits("110").Float64(); !ok || f != 6 {
		t.Errorf("Bits Float64 = (%v, %v), want (6, true)", f, ok)
	}
	if _, ok := Bits("1z").Float64(); ok {
		t.Error("undefined vector converted through Float64")
	}
	if _, ok := Str("x").Float64(); ok {
		t.Error("string converted through Float64")
	}
}

func TestValueDefined(t *testing.T) {
	tests := []struct {
		bits string
		want bool
	}{
		{"0101", true},
		{"hl", true},
		{"01x1", false},
		{"z", false},
		{"u", false},
	}
	for _, tt := range tests {
		if got := Bits(tt.bits).Defined(); got != tt.want {
			t.Errorf("Bits(%q).Defined() = %v, want %v", tt.bits, got, tt.want)
		}
	}
	if !Real(1).Defined() || !Str("s").Defined() {
		t.Error("reals and strings are always defined")
	}
}

func TestValueFormat(t *testing.T) {
	v := Real(1.5)
	wantRaw := make([]byte, 8)
	stdbin.LittleEndian.PutUint64(wantRaw, math.Float64bits(1.5))

	if got := v.Format(fstreader.OutputBinary); !bytes.Equal(got, wantRaw) {
		t.Errorf("binary format = % x, want % x", got, wantRaw)
	}
	if got := v.Format(fstreader.OutputString); string(got) != "1.5" {
		t.Errorf("string format = %q, want 1.5", got)
	}

	if got := Bits("10").Format(fstreader.OutputBinary); string(got) != "10" {
		t.Errorf("bit binary format = %q, want 10", got)
	}
}

func TestHistoryValueAt(t *testing.T) {
	h := NewHistory(3)
	for _, c := range []struct {
		t uint64
		v string
	}{{0, "0"}, {5, "1"}, {10, "0"}} {
		if err := h.Append(c.t, Bits(c.v)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tests := []struct {
		t    uint64
		want string
	}{
		{0, "0"},
		{4, "0"},
		{5, "1"},
		{7, "1"},
		{10, "0"},
		{1000, "0"},
	}
	for _, tt := range tests {
		v, err := h.ValueAt(tt.t)
		if err != nil {
			t.Fatalf("ValueAt(%d): %v", tt.t, err)
		}
		if v.String() != tt.want {
			t.Errorf("ValueAt(%d) = %q, want %q", tt.t, v.String(), tt.want)
		}
	}
}

func TestHistoryBeforeFirstChange(t *testing.T) {
	h := NewHistory(1)
	if err := h.Append(5, Bits("1")); err != nil {
		t.Fatal(err)
	}

	_, err := h.ValueAt(4)
	if err == nil {
		t.Fatal("expected an error before the first change")
	}
	if !errors.IsKind(err, errors.KindNoValue) {
		t.Fatalf("err = %v, want KindNoValue", err)
	}
	if h.Covers(4) {
		t.Error("Covers(4) should be false")
	}
	if !h.Covers(5) {
		t.Error("Covers(5) should be true")
	}
}

func TestHistoryAppendOrder(t *testing.T) {
	h := NewHistory(1)
	if err := h.Append(10, Bits("0")); err != nil {
		t.Fatal(err)
	}
	if err := h.Append(5, Bits("1")); err == nil {
		t.Fatal("expected an error for an out-of-order append")
	}

	// An equal-time append replaces the previous change.
	if err := h.Append(10, Bits("1")); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	v, err := h.ValueAt(10)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "1" {
		t.Fatalf("ValueAt(10) = %q, want 1", v.String())
	}
}
