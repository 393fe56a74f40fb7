package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inqira/inqira/internal/graph"
	"github.com/inqira/inqira/internal/observability"
	"github.com/inqira/inqira/internal/scope"
)

type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// handleGraphQL executes one operation. Application-level failures travel
// inside the payload with HTTP 200; only malformed requests get a 4xx.
func (s *Server) handleGraphQL(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": "invalid request body"}},
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"message": "query is required"}},
		})
		return
	}

	rc := &graph.RequestContext{
		RequestID: requestID(c),
		Scope:     scope.NewProjectContext(s.projects, s.authz),
	}
	s.attachViewer(c, rc)

	ctx := graph.WithRequestContext(c.Request.Context(), rc)
	ctx = scope.WithProjectContext(ctx, rc.Scope)

	start := time.Now()
	result := s.schema.Exec(ctx, req.Query, req.Variables, req.OperationName)

	status := observability.StatusOK
	if len(result.Errors) > 0 {
		status = observability.StatusError
	}
	s.metrics.ObserveOperation(operationType(req.Query), status, time.Since(start))

	s.applyCookieIntents(c, rc)
	c.JSON(http.StatusOK, result)
}

// attachViewer resolves the session cookie into a viewer. A stale or revoked
// cookie is cleared and the request proceeds anonymously.
func (s *Server) attachViewer(c *gin.Context, rc *graph.RequestContext) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		return
	}

	sess, err := s.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		s.sessions.Clear(c)
		return
	}
	user, err := s.auth.UserByID(c.Request.Context(), sess.UserID)
	if err != nil {
		s.sessions.Clear(c)
		s.log.Warn("session user lookup failed", zap.Error(err))
		return
	}

	rc.Viewer = user
	rc.RawToken = token
}

func (s *Server) applyCookieIntents(c *gin.Context, rc *graph.RequestContext) {
	switch {
	case rc.ClearSessionToken:
		s.sessions.Clear(c)
		s.metrics.SessionRevoked()
	case rc.SetSessionToken != "":
		s.sessions.Set(c, rc.SetSessionToken, rc.SetSessionExpiry)
		s.metrics.SessionIssued()
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDContextKey); id != "" {
		return id
	}
	return uuid.NewString()
}

// operationType sniffs the operation keyword for metrics labels. Shorthand
// documents with no keyword are queries.
func operationType(query string) string {
	trimmed := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(trimmed, "mutation"):
		return "mutation"
	case strings.HasPrefix(trimmed, "subscription"):
		return "subscription"
	default:
		return "query"
	}
}
