package contrast

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindConfiguration covers a missing image source or degenerate
	// container/image dimensions. Raised before any sampling work.
	KindConfiguration Kind = iota + 1

	// KindLoad covers image fetch or decode failures.
	KindLoad

	// KindAccess covers raster reads blocked by a cross-origin restriction.
	KindAccess

	// KindValidation covers malformed hex input and empty samples.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindLoad:
		return "load"
	case KindAccess:
		return "access"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrLoad          = errors.New("load error")
	ErrAccess        = errors.New("access error")
	ErrValidation    = errors.New("validation error")

	// ErrSuperseded is returned by a recomputation that lost to a newer one.
	// Nothing was applied.
	ErrSuperseded = errors.New("recomputation superseded")
)

// Error is a typed pipeline failure.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "decode", "map"
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrLoad:
		return e.Kind == KindLoad
	case ErrAccess:
		return e.Kind == KindAccess
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// ConfigurationError returns a KindConfiguration error.
func ConfigurationError(op, msg string) error {
	return &Error{Kind: KindConfiguration, Op: op, Msg: msg}
}

// LoadError wraps an image fetch or decode failure.
func LoadError(op string, err error) error {
	return &Error{Kind: KindLoad, Op: op, Msg: "image could not be loaded", Err: err}
}

// AccessError returns a KindAccess error for a tainted raster source.
func AccessError(op, msg string) error {
	return &Error{Kind: KindAccess, Op: op, Msg: msg}
}

// ValidationError returns a KindValidation error.
func ValidationError(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
