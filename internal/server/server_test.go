package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	authrepository "github.com/inqira/inqira/internal/auth/repository"
	authservice "github.com/inqira/inqira/internal/auth/service"
	"github.com/inqira/inqira/internal/auth/session"
	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/cache"
	"github.com/inqira/inqira/internal/config"
	"github.com/inqira/inqira/internal/graph"
	"github.com/inqira/inqira/internal/observability"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	projectrepository "github.com/inqira/inqira/internal/project/repository"
	projectservice "github.com/inqira/inqira/internal/project/service"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
	questionnairerepository "github.com/inqira/inqira/internal/questionnaire/repository"
	questionnaireservice "github.com/inqira/inqira/internal/questionnaire/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&authdomain.User{}, &authdomain.Session{},
		&projectdomain.Project{}, &projectdomain.Membership{},
		&questionnairedomain.Questionnaire{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	cfg := config.Config{
		AppName:          "inqira-test",
		AppVersion:       "test",
		Environment:      "test",
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}

	authRepo, sessionRepo := authrepository.New(dbConn)
	authSvc := authservice.New(log, authRepo, sessionRepo, node)
	projectSvc := projectservice.NewService(dbConn, projectrepository.NewRepository(dbConn), node, log)
	questionnaireSvc := questionnaireservice.NewService(questionnairerepository.NewRepository(dbConn), node, log)

	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)
	authzSvc := authorization.NewService(log, enforcer)

	schema, err := graph.New(graph.Params{
		Log:            log,
		Auth:           authSvc,
		Projects:       projectSvc,
		Questionnaires: questionnaireSvc,
		ClientIDs:      cache.NewClientIDCache(),
	})
	require.NoError(t, err)

	return New(Params{
		Config:   cfg,
		Log:      log,
		Schema:   schema,
		Auth:     authSvc,
		Projects: projectSvc,
		Authz:    authzSvc,
		Sessions: session.NewManager(cfg),
		Metrics:  observability.NewMetrics(cfg),
	})
}

func postGraphQL(t *testing.T, s *Server, cookie *http.Cookie, query string, variables map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGraphQLRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphQLRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	rec, _ := postGraphQL(t, s, nil, "   ", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCookieLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec, body := postGraphQL(t, s, nil, `mutation {
		public {
			register(data: {email: "alice@example.com", password: "server-test-password", firstName: "Alice", lastName: "Smith"}) { ok }
		}
	}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["errors"])

	rec, body = postGraphQL(t, s, nil, `mutation {
		public {
			login(data: {email: "alice@example.com", password: "server-test-password"}) { ok }
		}
	}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["errors"])

	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)

	rec, body = postGraphQL(t, s, cookie, `query { public { me { email } } }`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	me := data["public"].(map[string]any)["me"].(map[string]any)
	require.Equal(t, "alice@example.com", me["email"])

	rec, _ = postGraphQL(t, s, cookie, `mutation { public { logout { ok } } }`, nil)
	cleared := sessionCookie(t, rec)
	require.Empty(t, cleared.Value)

	// The revoked session no longer authenticates.
	rec, body = postGraphQL(t, s, cookie, `query { public { me { email } } }`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	require.Nil(t, data["public"].(map[string]any)["me"])
}

func TestApplicationErrorsKeepHTTP200(t *testing.T) {
	s := newTestServer(t)

	rec, body := postGraphQL(t, s, nil, `mutation {
		public {
			login(data: {email: "nobody@example.com", password: "whatever-password"}) { ok errors }
		}
	}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	login := data["public"].(map[string]any)["login"].(map[string]any)
	require.Equal(t, false, login["ok"])
	require.NotNil(t, login["errors"])
}

func TestPrivateQueryWithoutSession(t *testing.T) {
	s := newTestServer(t)

	rec, body := postGraphQL(t, s, nil, `query { private { projects { count } } }`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body["errors"])
}

func TestProjectFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	postGraphQL(t, s, nil, `mutation {
		public {
			register(data: {email: "owner@example.com", password: "server-test-password", firstName: "O", lastName: "W"}) { ok }
		}
	}`, nil)
	rec, _ := postGraphQL(t, s, nil, `mutation {
		public {
			login(data: {email: "owner@example.com", password: "server-test-password"}) { ok }
		}
	}`, nil)
	cookie := sessionCookie(t, rec)

	rec, body := postGraphQL(t, s, cookie, `mutation {
		private {
			createProject(data: {title: "HTTP Project"}) {
				ok
				result { id title currentUserRole }
			}
		}
	}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["errors"])

	data := body["data"].(map[string]any)
	created := data["private"].(map[string]any)["createProject"].(map[string]any)
	require.Equal(t, true, created["ok"])
	result := created["result"].(map[string]any)
	require.Equal(t, "HTTP Project", result["title"])
	require.Equal(t, "ADMIN", result["currentUserRole"])

	projectID := result["id"].(string)
	query := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				createQuestionnaire(data: {title: "First Survey"}) {
					ok
					result { title }
				}
			}
		}
	}`, projectID)
	rec, body = postGraphQL(t, s, cookie, query, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, body["errors"])
}
