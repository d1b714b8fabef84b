// Package booking holds the restaurant's booking rules: opening hours and
// closed days, the reservation status machine, phone matching and request
// field validation.  Nothing in this package performs I/O.
package booking

import (
	"fmt"
	"strings"
)

// Kind classifies a domain failure.  The HTTP layer maps each kind to a
// status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	}
	return "unknown"
}

// Violation is a single failed rule on a single input field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Violations accumulates every rule that failed for one request.
type Violations []Violation

func (v *Violations) add(field, rule, msg string) {
	*v = append(*v, Violation{Field: field, Rule: rule, Message: msg})
}

// Messages returns the violation messages in the order they were found.
func (v Violations) Messages() []string {
	out := make([]string, len(v))
	for i := range v {
		out[i] = v[i].Message
	}
	return out
}

// Err returns nil when v is empty and a validation *Error otherwise.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: strings.Join(v.Messages(), ", "), Violations: v}
}

// Error is the typed failure returned by booking rules and services.
// Resource and ID name the record involved, when there is one.
type Error struct {
	Kind       Kind
	Resource   string
	ID         uint64
	Message    string
	Violations Violations
}

func (e *Error) Error() string { return e.Message }

// Is matches sentinels by kind, so errors.Is(err, ErrConflict) holds for
// every conflict regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
)

// NotFound reports a missing reservation or table.
func NotFound(resource string, id uint64) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: resource,
		ID:       id,
		Message:  fmt.Sprintf("%s %d not found", resource, id),
	}
}

// Conflict reports a request that contradicts the current state.
func Conflict(resource string, id uint64, msg string) *Error {
	return &Error{Kind: KindConflict, Resource: resource, ID: id, Message: msg}
}

// InvalidState reports an operation that needs a state the record is not in.
func InvalidState(resource string, id uint64, msg string) *Error {
	return &Error{Kind: KindInvalidState, Resource: resource, ID: id, Message: msg}
}
