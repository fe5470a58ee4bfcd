package block

import (
	"math/bits"

	fstreader "github.com/wippyai/fst-reader"
)

// Mask is the set of handles a consumer wants decoded. A nil *Mask is
// treated as "all handles" by Decode.
type Mask struct {
	words []uint64
	max   fstreader.Handle
}

// NewMask creates an empty mask covering handles [1, maxHandle].
func NewMask(maxHandle fstreader.Handle) *Mask {
	return &Mask{
		words: make([]uint64, (uint64(maxHandle)+64)/64),
		max:   maxHandle,
	}
}

// SetAll enables every handle.
func (m *Mask) SetAll() {
	for i := range m.words {
		m.words[i] = ^uint64(0)
	}
}

// ClearAll disables every handle.
func (m *Mask) ClearAll() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// Set enables one handle. Out-of-range handles are ignored.
func (m *Mask) Set(h fstreader.Handle) {
	if h == 0 || h > m.max {
		return
	}
	m.words[h/64] |= 1 << (h % 64)
}

// Clear disables one handle.
func (m *Mask) Clear(h fstreader.Handle) {
	if h == 0 || h > m.max {
		return
	}
	m.words[h/64] &^= 1 << (h % 64)
}

// Has reports whether a handle is enabled.
func (m *Mask) Has(h fstreader.Handle) bool {
	if m == nil {
		return true
	}
	if h == 0 || h > m.max {
		return false
	}
	return m.words[h/64]&(1<<(h%64)) != 0
}

// Count returns the number of enabled handles.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	// Bit 0 of word 0 is never a valid handle but SetAll flips it.
	if len(m.words) > 0 && m.words[0]&1 != 0 {
		n--
	}
	// Bits above max may be set by SetAll.
	if top := (uint64(m.max) + 1) % 64; top != 0 && len(m.words) > 0 {
		w := m.words[len(m.words)-1] >> top
		n -= bits.OnesCount64(w)
	}
	return n
}
