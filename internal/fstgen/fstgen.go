// Package fstgen builds FST containers in memory. It exists for tests
// and tooling inside this repository: the public API of the module reads
// FST files, it does not write them.
package fstgen

import (
	"fmt"
	"math"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/internal/binary"
)

// Options control container-level fields. The zero value is usable.
type Options struct {
	// Version and Date strings stored in the header.
	Version string
	Date    string

	// TimescaleExp is the timescale as a power of ten seconds.
	// Default: -9 (nanoseconds).
	TimescaleExp int8

	// Codec compresses the hierarchy section and every block.
	// The zero value stores everything uncompressed.
	Codec format.Codec

	// StartTime/EndTime override the derived file time range.
	StartTime *uint64
	EndTime   *uint64

	// Header count overrides, for exercising metadata divergence.
	// Nil means "derive from the declared hierarchy".
	HeaderScopeCount *uint64
	HeaderVarCount   *uint64
	HeaderMaxHandle  *uint64
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}
	if oo.Version == "" {
		oo.Version = "fstgen"
	}
	if oo.Date == "" {
		oo.Date = "Thu Jan 1 00:00:00 1970"
	}
	if oo.TimescaleExp == 0 {
		oo.TimescaleExp = -9
	}
	return &oo
}

type varMeta struct {
	bits     uint32
	isReal   bool
	isString bool
}

type record struct {
	time   uint64
	handle fstreader.Handle
	value  []byte
}

// Builder accumulates hierarchy tokens and value changes, then emits a
// complete container with Bytes.
type Builder struct {
	opts *Options

	hier       *binary.Writer
	scopeDepth int
	scopeCount uint64
	varCount   uint64
	maxHandle  fstreader.Handle
	vars       map[fstreader.Handle]varMeta

	blocks  [][]record
	current []record

	err error
}

// New creates a Builder.
func New(o *Options) *Builder {
	return &Builder{
		opts: o.norm(),
		hier: binary.NewWriter(),
		vars: make(map[fstreader.Handle]varMeta),
	}
}

// Scope opens a scope.
func (b *Builder) Scope(typ format.ScopeType, name string) *Builder {
	b.hier.Byte(byte(format.NodeScope))
	b.hier.Byte(byte(typ))
	b.hier.WriteName(name)
	b.scopeDepth++
	b.scopeCount++
	return b
}

// Upscope closes the innermost open scope.
func (b *Builder) Upscope() *Builder {
	if b.scopeDepth == 0 {
		b.fail("upscope without open scope")
		return b
	}
	b.hier.Byte(byte(format.NodeUpscope))
	b.scopeDepth--
	return b
}

// Attr emits an attribute begin/end pair.
func (b *Builder) Attr(name string, arg uint64) *Builder {
	b.hier.Byte(byte(format.NodeAttrBegin))
	b.hier.WriteUvarint(arg)
	b.hier.WriteName(name)
	b.hier.Byte(byte(format.NodeAttrEnd))
	return b
}

// Var declares a variable with an explicit handle. Reusing an existing
// handle declares an alias. Handles must be allocated densely: the first
// use of a new handle must be exactly maxHandle+1.
func (b *Builder) Var(typ format.VarType, dir format.VarDirection, bits uint32, handle fstreader.Handle, name string) *Builder {
	if handle == 0 {
		b.fail("handle 0 is reserved")
		return b
	}
	if _, alias := b.vars[handle]; !alias {
		if handle != b.maxHandle+1 {
			b.fail(fmt.Sprintf("handle %d leaves gap after %d", handle, b.maxHandle))
			return b
		}
		b.maxHandle = handle
		b.vars[handle] = varMeta{bits: bits, isReal: typ.IsReal(), isString: typ.IsString()}
	}
	b.hier.Byte(byte(format.NodeVar))
	b.hier.Byte(byte(typ))
	b.hier.Byte(byte(dir))
	b.hier.WriteUvarint(uint64(bits))
	b.hier.WriteUvarint(uint64(handle))
	b.hier.WriteName(name)
	b.varCount++
	return b
}

// Wire declares a new wire variable with the next free handle.
func (b *Builder) Wire(name string, bits uint32) fstreader.Handle {
	h := b.maxHandle + 1
	b.Var(format.VarWire, DirDefault, bits, h, name)
	return h
}

// Real declares a new real-valued variable with the next free handle.
func (b *Builder) Real(name string) fstreader.Handle {
	h := b.maxHandle + 1
	b.Var(format.VarReal, DirDefault, 0, h, name)
	return h
}

// Str declares a new string variable with the next free handle.
func (b *Builder) Str(name string) fstreader.Handle {
	h := b.maxHandle + 1
	b.Var(format.VarString, DirDefault, 0, h, name)
	return h
}

// DirDefault is the direction used by the shorthand declarators.
const DirDefault = format.DirImplicit

// Change appends a value change to the current block. Times must be
// non-decreasing within a block. For bit/vector variables value must be
// exactly the declared bit length; for strings any payload is accepted.
func (b *Builder) Change(t uint64, h fstreader.Handle, value []byte) *Builder {
	meta, ok := b.vars[h]
	if !ok {
		b.fail(fmt.Sprintf("change for undeclared handle %d", h))
		return b
	}
	if len(b.current) > 0 && t < b.current[len(b.current)-1].time {
		b.fail(fmt.Sprintf("time %d before block clock %d", t, b.current[len(b.current)-1].time))
		return b
	}
	switch {
	case meta.isReal:
		if len(value) != 8 {
			b.fail(fmt.Sprintf("real payload must be 8 bytes, got %d", len(value)))
			return b
		}
	case meta.isString:
		// variable length
	default:
		if uint32(len(value)) != meta.bits {
			b.fail(fmt.Sprintf("handle %d wants %d value bytes, got %d", h, meta.bits, len(value)))
			return b
		}
		for _, c := range value {
			if !format.ValidBitChar(c) {
				b.fail(fmt.Sprintf("invalid bit char %q", c))
				return b
			}
		}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	b.current = append(b.current, record{time: t, handle: h, value: cp})
	return b
}

// ChangeBits appends a vector change given as a string of bit characters.
func (b *Builder) ChangeBits(t uint64, h fstreader.Handle, bits string) *Builder {
	return b.Change(t, h, []byte(bits))
}

// ChangeReal appends an IEEE-754 change.
func (b *Builder) ChangeReal(t uint64, h fstreader.Handle, v float64) *Builder {
	var buf [8]byte
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	return b.Change(t, h, buf[:])
}

// EndBlock closes the current block; the next Change starts a new one.
// Empty blocks are elided.
func (b *Builder) EndBlock() *Builder {
	if len(b.current) > 0 {
		b.blocks = append(b.blocks, b.current)
		b.current = nil
	}
	return b
}

// Bytes assembles the container. The builder stays usable afterwards,
// but Bytes must not be interleaved with further mutation.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.scopeDepth != 0 {
		return nil, fmt.Errorf("fstgen: %d scopes left open", b.scopeDepth)
	}

	blocks := b.blocks
	if len(b.current) > 0 {
		blocks = append(append([][]record{}, blocks...), b.current)
	}

	startTime, endTime := b.timeRange(blocks)

	w := binary.NewWriter()
	w.WriteBytes(format.Magic)
	w.Byte(format.Version)
	w.WriteUvarint(startTime)
	w.WriteUvarint(endTime)
	w.Byte(byte(b.opts.TimescaleExp))
	w.WriteName(b.opts.Version)
	w.WriteName(b.opts.Date)
	w.WriteUvarint(orDerived(b.opts.HeaderScopeCount, b.scopeCount))
	w.WriteUvarint(orDerived(b.opts.HeaderVarCount, b.varCount))
	w.WriteUvarint(orDerived(b.opts.HeaderMaxHandle, uint64(b.maxHandle)))

	// hierarchy section
	tokens := b.hier.Bytes()
	compressed, err := compress(b.opts.Codec, tokens)
	if err != nil {
		return nil, err
	}
	w.WriteUvarint(uint64(len(tokens)))
	w.WriteUvarint(uint64(len(compressed)))
	w.Byte(byte(b.opts.Codec))
	w.WriteBytes(compressed)

	for _, blk := range blocks {
		if err := b.writeBlock(w, blk); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (b *Builder) writeBlock(w *binary.Writer, blk []record) error {
	body := binary.NewWriter()
	clock := blk[0].time
	start, end := blk[0].time, blk[len(blk)-1].time

	for _, rec := range blk {
		body.WriteUvarint(rec.time - clock)
		clock = rec.time
		body.WriteUvarint(uint64(rec.handle))
		meta := b.vars[rec.handle]
		if meta.isString {
			body.WriteUvarint(uint64(len(rec.value)))
		}
		body.WriteBytes(rec.value)
	}

	plain := body.Bytes()
	compressed, err := compress(b.opts.Codec, plain)
	if err != nil {
		return err
	}

	w.WriteU64LE(start)
	w.WriteU64LE(end)
	w.WriteU32LE(uint32(len(blk)))
	w.WriteU32LE(uint32(len(plain)))
	w.WriteU32LE(uint32(len(compressed)))
	w.Byte(byte(b.opts.Codec))
	w.WriteBytes(compressed)
	return nil
}

func (b *Builder) timeRange(blocks [][]record) (uint64, uint64) {
	var start, end uint64
	if len(blocks) > 0 {
		start = blocks[0][0].time
		last := blocks[len(blocks)-1]
		end = last[len(last)-1].time
	}
	if b.opts.StartTime != nil {
		start = *b.opts.StartTime
	}
	if b.opts.EndTime != nil {
		end = *b.opts.EndTime
	}
	return start, end
}

func (b *Builder) fail(msg string) {
	if b.err == nil {
		b.err = fmt.Errorf("fstgen: %s", msg)
	}
}

func orDerived(override *uint64, derived uint64) uint64 {
	if override != nil {
		return *override
	}
	return derived
}

// U64 is a pointer helper for option overrides.
func U64(v uint64) *uint64 { return &v }
