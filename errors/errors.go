package errors

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable classification of engine failures.
// Callers branch on kinds, never on message text.
type Kind int

const (
	// KindInternal marks bugs and unexpected states inside the engine.
	KindInternal Kind = iota
	// KindValidation marks malformed input, rejected before any external call.
	KindValidation
	// KindPrecondition marks inputs that are well formed but cannot be
	// migrated (no bridgeable asset, missing destination pool, ...).
	KindPrecondition
	// KindBound marks a violated tolerance or cap (price impact, fee caps).
	KindBound
	// KindCollaborator marks a failure propagated from an external
	// collaborator (swap quoter, bridge quoter, chain reads).
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindBound:
		return "bound"
	case KindCollaborator:
		return "collaborator"
	default:
		return "internal"
	}
}

// Error is a typed engine error carrying a stable kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause. The cause remains reachable
// through errors.Unwrap, so collaborator failures are never swallowed.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf reports the kind of err, defaulting to KindInternal for untyped
// errors and the zero kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if typed, ok := As(err); ok {
		return typed.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	typed, ok := As(err)
	return ok && typed.Kind == kind
}
