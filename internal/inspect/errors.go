package inspect

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an inspection failed
type ErrorKind int

const (
	// Inaccessible means the metadata could not be read
	Inaccessible ErrorKind = iota + 1
	// ClockUnavailable means the platform supplied no modification time
	ClockUnavailable
	// UnresolvableName means the path has no final component
	UnresolvableName
)

var (
	// ErrInaccessible matches errors of kind Inaccessible with errors.Is
	ErrInaccessible = errors.New("metadata inaccessible")
	// ErrClockUnavailable matches errors of kind ClockUnavailable with errors.Is
	ErrClockUnavailable = errors.New("modification time unavailable")
	// ErrUnresolvableName matches errors of kind UnresolvableName with errors.Is
	ErrUnresolvableName = errors.New("no final path component")
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case Inaccessible:
		return "Inaccessible"
	case ClockUnavailable:
		return "ClockUnavailable"
	case UnresolvableName:
		return "UnresolvableName"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case Inaccessible:
		return ErrInaccessible
	case ClockUnavailable:
		return ErrClockUnavailable
	case UnresolvableName:
		return ErrUnresolvableName
	default:
		return nil
	}
}

// Error is returned by Inspect. It carries the originating path and the
// underlying cause.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Inaccessible:
		return fmt.Sprintf("Failed to get metadata for file '%s': %v", e.Path, e.Err)
	case ClockUnavailable:
		return fmt.Sprintf("Failed to get last modified time for file '%s': %v", e.Path, e.Err)
	case UnresolvableName:
		return fmt.Sprintf("Failed to resolve file name for '%s': %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("Failed to inspect '%s': %v", e.Path, e.Err)
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of err, or zero when err is not an inspection error
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
