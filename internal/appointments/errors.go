package appointments

import "fmt"

// ErrorKind classifies coordinator failures so every call site reports them
// the same way instead of the mix of alerts, logs and silent returns the
// dashboards used to have.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindPaymentInit  ErrorKind = "payment_init"
	KindStore        ErrorKind = "store"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error is the single failure type returned by the coordinator.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("appointments: %s", e.Kind)
	}
	return fmt.Sprintf("appointments: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error from a formatted message.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the classification; unknown errors count as store failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindStore
}
