package graph

import (
	"context"
	"time"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/scope"
)

// RequestContext carries per-request GraphQL state: the authenticated viewer,
// the raw session token, and the active-project scope. One instance per HTTP
// request, discarded at request end.
type RequestContext struct {
	RequestID string
	Viewer    *authdomain.User
	RawToken  string
	Scope     *scope.ProjectContext

	// Cookie writes happen after execution; resolvers record intent here.
	SetSessionToken   string
	SetSessionExpiry  time.Time
	ClearSessionToken bool
}

// Authenticated reports whether a viewer is attached.
func (rc *RequestContext) Authenticated() bool {
	return rc != nil && rc.Viewer != nil
}

type requestContextKey struct{}

func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func RequestContextFrom(ctx context.Context) (*RequestContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc, ok
}
