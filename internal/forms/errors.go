package forms

import (
	"fmt"
	"strings"
)

// FieldErrors is an ordered field→failure mapping. A failure is one of:
// []string (flat messages), FieldErrors (a nested object), or []FieldErrors
// (per-array-item, empty item meaning the item passed). Anything else is
// rendered as a space-joined fallback message.
type FieldErrors []FieldError

type FieldError struct {
	Field   string
	Failure any
}

// Add appends a failure, keeping insertion order.
func (fe FieldErrors) Add(field string, failure any) FieldErrors {
	return append(fe, FieldError{Field: field, Failure: failure})
}

// Empty reports whether no field failed. A []FieldErrors item list counts as
// failed only when at least one item is non-empty.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Get returns the failure recorded for a field.
func (fe FieldErrors) Get(field string) (any, bool) {
	for _, entry := range fe {
		if entry.Field == field {
			return entry.Failure, true
		}
	}
	return nil, false
}

func (fe FieldErrors) String() string {
	parts := make([]string, 0, len(fe))
	for _, entry := range fe {
		parts = append(parts, fmt.Sprintf("%s: %v", entry.Field, entry.Failure))
	}
	return strings.Join(parts, "; ")
}

// NonFieldErrors is the key used for failures not tied to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries structured per-field failures. Mutations recover it
// into an {ok:false} payload.
type ValidationError struct {
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Errors.String()
}

// NewValidationError wraps a single non-field message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Errors: FieldErrors{}.Add(NonFieldErrors, []string{message})}
}
