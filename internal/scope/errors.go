package scope

import "fmt"

// AuthError reports an operation that requires an authenticated viewer.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return e.Reason
}

// ConflictError reports a bind attempt against a context already holding a
// different project.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason == "" {
		return "conflicting project scope"
	}
	return e.Reason
}

// PreconditionError reports a permission check made before any project was
// bound.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Reason == "" {
		return "no project bound"
	}
	return e.Reason
}

// PermissionError reports a denied permission. Mutations recover it into an
// {ok:false} payload rather than failing the request.
type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Permission)
}
