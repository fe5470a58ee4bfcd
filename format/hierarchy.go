package format

import (
	"strconv"
	"strings"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
)

// Hierarchy is the parsed scope/variable tree of one FST file. It keeps
// the token stream in original file order for iteration, plus a dense
// handle index for O(1) variable lookup. Immutable after parse except
// for the iteration cursor.
type Hierarchy struct {
	nodes []Node
	vars  []Var // indexed by handle, slot 0 unused; primary declaration wins
	paths map[string]fstreader.Handle

	scopeCount int
	varCount   int
	maxHandle  fstreader.Handle

	cursor int
}

// Rewind resets the iteration cursor to the first node. No file data is
// re-read; the node arena was built once at parse time.
func (h *Hierarchy) Rewind() {
	h.cursor = 0
}

// Next returns the next hierarchy node in original file order, or false
// when iteration is exhausted. Rewind restarts from the beginning.
func (h *Hierarchy) Next() (*Node, bool) {
	if h.cursor >= len(h.nodes) {
		return nil, false
	}
	n := &h.nodes[h.cursor]
	h.cursor++
	return n, true
}

// Len returns the total number of hierarchy nodes.
func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// ScopeCount returns the number of Scope nodes seen during parse.
func (h *Hierarchy) ScopeCount() int {
	return h.scopeCount
}

// VarCount returns the number of Var nodes seen during parse,
// aliases included.
func (h *Hierarchy) VarCount() int {
	return h.varCount
}

// MaxHandle returns the largest handle declared by the token stream.
func (h *Hierarchy) MaxHandle() fstreader.Handle {
	return h.maxHandle
}

// Variable returns the primary variable for a handle.
func (h *Hierarchy) Variable(handle fstreader.Handle) (*Var, error) {
	if handle == 0 || handle > h.maxHandle {
		return nil, errors.UnknownHandle(errors.PhaseQuery, uint32(handle), uint32(h.maxHandle))
	}
	return &h.vars[handle], nil
}

// VarByPath looks a variable up by its full dotted path, e.g.
// "top.cpu.clk". Bit-range suffixes are not part of the path.
func (h *Hierarchy) VarByPath(path string) (*Var, bool) {
	handle, ok := h.paths[path]
	if !ok {
		return nil, false
	}
	return &h.vars[handle], true
}

// parseBitRange splits a trailing "[msb:lsb]" or "[idx]" suffix off a
// variable name. Names without a well-formed suffix are returned as-is.
func parseBitRange(name string) (string, *VarIndex) {
	open := strings.LastIndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}
	rng := name[open+1 : len(name)-1]

	if msbStr, lsbStr, found := strings.Cut(rng, ":"); found {
		msb, err1 := strconv.Atoi(msbStr)
		lsb, err2 := strconv.Atoi(lsbStr)
		if err1 == nil && err2 == nil {
			return name[:open], &VarIndex{MSB: msb, LSB: lsb}
		}
		return name, nil
	}

	if idx, err := strconv.Atoi(rng); err == nil {
		return name[:open], &VarIndex{MSB: idx, LSB: idx}
	}
	return name, nil
}
