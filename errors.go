package fmp

import "github.com/pkg/errors"

// Kind identifies one of the closed set of error conditions the decoder
// can raise.
type Kind int

const (
	_ Kind = iota
	ErrOpen
	ErrRead
	ErrSeek
	ErrBadMagic
	ErrBadSector
	ErrBadSectorCount
	ErrMalloc
	ErrUnsupportedCharset
	ErrNoInMemoryOpenSupport
	ErrUserAborted
)

func (k Kind) String() string {
	switch k {
	case ErrOpen:
		return "open"
	case ErrRead:
		return "read"
	case ErrSeek:
		return "seek"
	case ErrBadMagic:
		return "bad magic"
	case ErrBadSector:
		return "bad sector"
	case ErrBadSectorCount:
		return "bad sector count"
	case ErrMalloc:
		return "allocation failure"
	case ErrUnsupportedCharset:
		return "unsupported character set"
	case ErrNoInMemoryOpenSupport:
		return "in-memory open not supported"
	case ErrUserAborted:
		return "aborted by caller"
	default:
		return "unknown"
	}
}

// Error wraps one of the closed Kind values together with an optional
// underlying cause (an I/O error, typically).
type Error struct {
	Kind  Kind
	Cause error
}

func newError(kind Kind, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return "fmp: " + e.Kind.String() + ": " + e.Cause.Error()
	}
	return "fmp: " + e.Kind.String()
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err carries the given Kind.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	return ok && te.Kind == e.Kind
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
