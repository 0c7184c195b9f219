// Package balsaerr defines the structured error kinds shared across every
// Balsa package: InputError, FormatError, ResourceError and Internal.
//
// It lives under internal/ (rather than in the root package) so that the
// training, codec and classification packages can raise and test these
// errors without importing the root package, which would create an
// import cycle (the root package imports all of them).
package balsaerr

import "fmt"

// Kind discriminates the error categories.
type Kind int

const (
	// KindInput marks a precondition violated by the caller.
	KindInput Kind = iota
	// KindFormat marks container bytes that violate the binary format.
	KindFormat
	// KindResource marks an I/O failure, allocation failure, or worker
	// thread failure.
	KindResource
	// KindInternal marks a broken invariant. Always a bug, never expected.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputError"
	case KindFormat:
		return "FormatError"
	case KindResource:
		return "ResourceError"
	case KindInternal:
		return "Internal"
	default:
		return "UnknownError"
	}
}

// Error is Balsa's structured error type.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Unwrap and errors.Is.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs a Balsa error of the given kind with no wrapped cause.
func New(kind Kind, context string) error {
	return &Error{Kind: kind, Context: context}
}

// Newf constructs a Balsa error of the given kind with a formatted context.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Balsa error of the given kind wrapping cause. It
// returns nil if cause is nil.
func Wrap(kind Kind, context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Input reports a caller precondition violation.
func Input(context string) error { return New(KindInput, context) }

// Inputf reports a caller precondition violation with a formatted message.
func Inputf(format string, args ...interface{}) error { return Newf(KindInput, format, args...) }

// Format reports a container format violation.
func Format(context string) error { return New(KindFormat, context) }

// Formatf reports a container format violation with a formatted message.
func Formatf(format string, args ...interface{}) error { return Newf(KindFormat, format, args...) }

// Resource wraps an I/O or allocation failure.
func Resource(context string, cause error) error { return Wrap(KindResource, context, cause) }

// Internal reports a broken invariant. Always a bug.
func Internal(context string) error { return New(KindInternal, context) }
