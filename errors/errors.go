package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in reader processing the error occurred
type Phase string

const (
	PhaseOpen      Phase = "open"      // file open and header parse
	PhaseHierarchy Phase = "hierarchy" // hierarchy token stream parse
	PhaseIndex     Phase = "index"     // time index construction and lookup
	PhaseDecode    Phase = "decode"    // block decompression and record walk
	PhaseQuery     Phase = "query"     // point queries and metadata access
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindCorruptHeader    Kind = "corrupt_header"
	KindCorruptBlock     Kind = "corrupt_block"
	KindUnknownHandle    Kind = "unknown_handle"
	KindNoValue          Kind = "no_value"
	KindSessionClosed    Kind = "session_closed"
	KindUnsupportedCodec Kind = "unsupported_codec"
	KindOverflow         Kind = "overflow"
	KindInvalidData      Kind = "invalid_data"
)

// Error is the structured error type used throughout the reader
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two *Error values match
// when their Kind matches and the target's Phase is either empty or equal,
// so errors.Is(err, &Error{Kind: KindCorruptBlock}) works regardless of
// which phase produced the error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (scope path, section name, ...)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// FileNotFound creates an open failure for a missing file
func FileNotFound(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("file %q not found", path),
		Cause:  cause,
	}
}

// CorruptHeader creates a fatal header parse error
func CorruptHeader(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseOpen,
		Kind:   KindCorruptHeader,
		Detail: detail,
		Cause:  cause,
	}
}

// CorruptHierarchy creates a fatal hierarchy section parse error
func CorruptHierarchy(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseHierarchy,
		Kind:   KindCorruptHeader,
		Detail: detail,
		Cause:  cause,
	}
}

// CorruptBlock creates a localized block decode error
func CorruptBlock(block int, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindCorruptBlock,
		Detail: fmt.Sprintf("block %d: %s", block, detail),
		Cause:  cause,
	}
}

// UnknownHandle creates an error for a handle outside [1, maxHandle]
func UnknownHandle(phase Phase, handle, maxHandle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownHandle,
		Detail: fmt.Sprintf("handle %d outside [1, %d]", handle, maxHandle),
	}
}

// NoValueBefore creates an error for a point query before the first change
func NoValueBefore(handle uint32, t uint64) *Error {
	return &Error{
		Phase:  PhaseQuery,
		Kind:   KindNoValue,
		Detail: fmt.Sprintf("handle %d has no value at or before time %d", handle, t),
	}
}

// SessionClosed creates a use-after-close error
func SessionClosed(what string) *Error {
	return &Error{
		Phase:  PhaseQuery,
		Kind:   KindSessionClosed,
		Detail: fmt.Sprintf("%s on closed session", what),
	}
}

// UnsupportedCodec creates an error for an unknown compression tag
func UnsupportedCodec(phase Phase, codec byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedCodec,
		Detail: fmt.Sprintf("unknown compression codec 0x%02x", codec),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether err or anything it wraps carries the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
