// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure surfaced by the protocol client carries a Kind that tells the
// caller how to react: fatal errors stop the interaction, soft errors are
// reported inline while a batch continues, transport errors describe the
// network path, and config errors describe bad input such as a malformed URL.
//
// The package supports wrapping underlying errors while maintaining error kind
// information, so errors.As and errors.Is from the standard library keep working.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Fatal aborts the current operation or session setup; no retry.
	Fatal Kind = "fatal"
	// Soft marks a per-item failure inside a batch.
	Soft Kind = "soft"
	// Transport marks a connection, timeout or TLS failure.
	Transport Kind = "transport"
	// Config marks invalid caller input (base URL, profile, flags).
	Config Kind = "config"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the outermost Kind found in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
