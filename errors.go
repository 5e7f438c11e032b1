package bind

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of a binding error.
type ErrorKind int

const (
	// KindInvalidArgument is raised by constructors on missing or mismatched arguments.
	KindInvalidArgument ErrorKind = iota
	// KindConversion indicates a converter failure or a missing default conversion.
	KindConversion
	// KindValidation indicates the validator rejected the target value.
	KindValidation
	// KindPropertyWrite indicates the toolkit refused the property write.
	KindPropertyWrite
	// KindSignalResolution indicates a two-way target without a notify signal.
	KindSignalResolution
	// KindCompute indicates a compute function failure.
	KindCompute
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindConversion:
		return "conversion"
	case KindValidation:
		return "validation"
	case KindPropertyWrite:
		return "property write"
	case KindSignalResolution:
		return "signal resolution"
	case KindCompute:
		return "compute"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrConversion       = errors.New("conversion failed")
	ErrValidation       = errors.New("validation failed")
	ErrPropertyWrite    = errors.New("property write refused")
	ErrSignalResolution = errors.New("no notify signal")
	ErrCompute          = errors.New("compute failed")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindConversion:
		return ErrConversion
	case KindValidation:
		return ErrValidation
	case KindPropertyWrite:
		return ErrPropertyWrite
	case KindSignalResolution:
		return ErrSignalResolution
	case KindCompute:
		return ErrCompute
	default:
		return nil
	}
}

// Error is the error reported by bindings, both from constructors and to error handlers.
type Error struct {
	// Op is the operation that failed (e.g., "bind.update").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Target is the target path of the binding, if known.
	Target string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s [%s] %s: %v", e.Op, e.Kind, e.Target, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so errors.Is(err, ErrValidation) works.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{
		Op:        op,
		Kind:      KindInvalidArgument,
		Err:       fmt.Errorf(format, args...),
		Timestamp: time.Now(),
	}
}
