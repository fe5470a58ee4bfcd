package signal

import (
	stdbin "encoding/binary"
	"math"
	"strconv"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/format"
)

// Kind discriminates the three value payload shapes.
type Kind int

const (
	KindBits Kind = iota
	KindReal
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBits:
		return "bits"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is one decoded signal value. Bit and vector variables hold
// multi-state characters, reals hold a float64 and strings hold their
// raw payload. The zero Value is a zero-width KindBits value.
type Value struct {
	kind Kind
	raw  []byte
	real float64
}

// FromRecord interprets a record payload according to the variable it
// belongs to. The payload is not copied; callers own it already.
func FromRecord(v *format.Var, raw []byte) Value {
	switch {
	case v.IsReal():
		return Real(math.Float64frombits(stdbin.LittleEndian.Uint64(raw)))
	case v.IsString():
		return Value{kind: KindString, raw: raw}
	default:
		return Value{kind: KindBits, raw: raw}
	}
}

// Bits builds a bit/vector value from multi-state characters.
func Bits(chars string) Value {
	return Value{kind: KindBits, raw: []byte(chars)}
}

// Real builds an IEEE-754 value.
func Real(f float64) Value {
	return Value{kind: KindReal, real: f}
}

// Str builds a string value.
func Str(s string) Value {
	return Value{kind: KindString, raw: []byte(s)}
}

// Kind returns the payload shape.
func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the value's payload bytes. For reals this is the
// little-endian IEEE-754 encoding; callers must not modify it.
func (v Value) Raw() []byte {
	if v.kind == KindReal {
		buf := make([]byte, 8)
		stdbin.LittleEndian.PutUint64(buf, math.Float64bits(v.real))
		return buf
	}
	return v.raw
}

// String renders the value for display: bit characters verbatim,
// reals in shortest decimal form, strings as-is.
func (v Value) String() string {
	if v.kind == KindReal {
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	}
	return string(v.raw)
}

// Format renders the value under an output mode. Binary mode returns
// the raw payload; string mode the display form.
func (v Value) Format(mode fstreader.OutputMode) []byte {
	if mode == fstreader.OutputBinary {
		return v.Raw()
	}
	return []byte(v.String())
}

// Float64 returns the numeric reading of the value. Reals convert
// directly; bit vectors convert through Uint64. ok is false when the
// value has no numeric form.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindReal:
		return v.real, true
	case KindBits:
		u, ok := v.Uint64()
		if !ok {
			return 0, false
		}
		return float64(u), true
	default:
		return 0, false
	}
}

// Uint64 interprets a bit vector as an unsigned integer, MSB first.
// High and low drive states count as 1 and 0. ok is false for reals,
// strings, vectors wider than 64 bits and vectors holding any
// undefined state such as x or z.
func (v Value) Uint64() (uint64, bool) {
	if v.kind != KindBits || len(v.raw) == 0 || len(v.raw) > 64 {
		return 0, false
	}
	var out uint64
	for _, c := range v.raw {
		out <<= 1
		switch c {
		case '1', 'h', 'H':
			out |= 1
		case '0', 'l', 'L':
		default:
			return 0, false
		}
	}
	return out, true
}

// IsHigh reports whether a 1-bit value reads as logic high.
func (v Value) IsHigh() bool {
	u, ok := v.Uint64()
	return ok && len(v.raw) == 1 && u == 1
}

// Defined reports whether every bit of a vector is a driven 0/1 level.
// Reals and strings are always defined.
func (v Value) Defined() bool {
	if v.kind != KindBits {
		return true
	}
	for _, c := range v.raw {
		switch c {
		case '0', '1', 'h', 'l', 'H', 'L':
		default:
			return false
		}
	}
	return true
}
