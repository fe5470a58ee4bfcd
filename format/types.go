package format

import (
	"fmt"

	fstreader "github.com/wippyai/fst-reader"
)

// Header holds the file-level metadata parsed from the container header.
// Counts here come from the writer and are authoritative; the hierarchy
// token stream is cross-checked against them after parsing.
type Header struct {
	StartTime    uint64
	EndTime      uint64
	TimescaleExp int8
	Version      string
	Date         string
	ScopeCount   uint64
	VarCount     uint64
	MaxHandle    fstreader.Handle
}

// Range returns the file's inclusive time range.
func (h Header) Range() fstreader.TimeRange {
	return fstreader.TimeRange{Start: h.StartTime, End: h.EndTime}
}

// Scope is a hierarchical namespace node, e.g. a module instance.
type Scope struct {
	Name string
	Type ScopeType
}

// VarIndex is an explicit bit range parsed from a variable name suffix
// like "data[7:0]" or "flag[3]".
type VarIndex struct {
	MSB int
	LSB int
}

// Var is one declared variable. Aliased declarations share a Handle;
// the handle index keeps the first declaration as primary.
type Var struct {
	Name      string // clean name, bit-range suffix stripped
	Type      VarType
	Direction VarDirection
	Bits      uint32 // declared bit length; 0 for string vars
	Handle    fstreader.Handle
	Index     *VarIndex // nil when the name carried no bit range
}

// IsReal reports whether the variable carries IEEE-754 payloads.
func (v *Var) IsReal() bool { return v.Type.IsReal() }

// IsString reports whether the variable carries variable-length payloads.
func (v *Var) IsString() bool { return v.Type.IsString() }

// Is1Bit reports whether the variable is a single-bit wire.
func (v *Var) Is1Bit() bool {
	if v.IsReal() || v.IsString() {
		return false
	}
	return v.Bits <= 1
}

// Attr is an out-of-band attribute attached to the enclosing scope.
type Attr struct {
	Name string
	Arg  uint64
}

// Node is one entry of the hierarchy token stream. Exactly one of
// Scope, Var, Attr is set, matching Type; Upscope and AttrEnd carry
// no payload.
type Node struct {
	Type  NodeType
	Scope *Scope
	Var   *Var
	Attr  *Attr
}

// File is a parsed container: header metadata, the hierarchy, and the
// byte offset where value-change blocks begin.
type File struct {
	Header     Header
	Hier       *Hierarchy
	BlockStart int
}

// CountMismatches compares header metadata counts against what hierarchy
// iteration produced and describes every divergence. Header counts stay
// authoritative; a non-empty result means the hierarchy section is
// incomplete or damaged and iteration-derived counts must not be trusted.
func (f *File) CountMismatches() []string {
	var out []string
	if uint64(f.Hier.ScopeCount()) != f.Header.ScopeCount {
		out = append(out, mismatch("scope count", f.Header.ScopeCount, uint64(f.Hier.ScopeCount())))
	}
	if uint64(f.Hier.VarCount()) != f.Header.VarCount {
		out = append(out, mismatch("var count", f.Header.VarCount, uint64(f.Hier.VarCount())))
	}
	if f.Hier.MaxHandle() != f.Header.MaxHandle {
		out = append(out, mismatch("max handle", uint64(f.Header.MaxHandle), uint64(f.Hier.MaxHandle())))
	}
	return out
}

func mismatch(what string, header, iterated uint64) string {
	return fmt.Sprintf("%s: header declares %d, hierarchy yields %d", what, header, iterated)
}
