package signal

import (
	"sort"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
)

// History is the change series of one variable, ordered by time.
// Parallel slices keep the binary-searched timestamps compact.
type History struct {
	handle fstreader.Handle
	times  []uint64
	values []Value
}

// NewHistory creates an empty history for one handle.
func NewHistory(h fstreader.Handle) *History {
	return &History{handle: h}
}

// Handle returns the variable this history belongs to.
func (h *History) Handle() fstreader.Handle {
	return h.handle
}

// Len returns the number of recorded changes.
func (h *History) Len() int {
	return len(h.times)
}

// Append records a change. Out-of-order times are rejected so lookups
// stay binary-searchable; equal times overwrite, keeping the last
// change at an instant, which is the one a sequential replay ends on.
func (h *History) Append(t uint64, v Value) error {
	if n := len(h.times); n > 0 {
		last := h.times[n-1]
		if t < last {
			return errors.InvalidData(errors.PhaseQuery, nil, "change appended out of time order")
		}
		if t == last {
			h.values[n-1] = v
			return nil
		}
	}
	h.times = append(h.times, t)
	h.values = append(h.values, v)
	return nil
}

// At returns the i-th change in time order.
func (h *History) At(i int) (uint64, Value) {
	return h.times[i], h.values[i]
}

// ValueAt returns the value holding at time t: the latest change at or
// before t. Querying before the first change reports a no-value error.
func (h *History) ValueAt(t uint64) (Value, error) {
	i := sort.Search(len(h.times), func(i int) bool {
		return h.times[i] > t
	})
	if i == 0 {
		return Value{}, errors.NoValueBefore(uint32(h.handle), t)
	}
	return h.values[i-1], nil
}

// Covers reports whether t falls at or after the first recorded change,
// so ValueAt(t) would succeed.
func (h *History) Covers(t uint64) bool {
	return len(h.times) > 0 && h.times[0] <= t
}
