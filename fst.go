package fstreader

// Handle is the stable 1-based identifier of one variable in an FST file.
// Handles are dense: every handle in [1, MaxHandle] names a variable, and
// aliased variables share a handle.
type Handle uint32

// TimeRange is an inclusive simulation time interval.
type TimeRange struct {
	Start uint64
	End   uint64
}

// Contains reports whether t lies inside the range.
func (r TimeRange) Contains(t uint64) bool {
	return t >= r.Start && t <= r.End
}

// Overlaps reports whether two ranges share any instant.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// OutputMode selects how value bytes are surfaced to callers.
type OutputMode int

const (
	// OutputString renders every value textually: multi-state characters
	// for vectors, decimal text for reals.
	OutputString OutputMode = iota

	// OutputBinary surfaces raw payload bytes: multi-state characters for
	// vectors, 8 IEEE-754 little-endian bytes for reals.
	OutputBinary
)

func (m OutputMode) String() string {
	switch m {
	case OutputString:
		return "string"
	case OutputBinary:
		return "binary"
	default:
		return "unknown"
	}
}
