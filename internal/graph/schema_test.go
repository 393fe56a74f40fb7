package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inqira/inqira/internal/auth/domain"
	authrepository "github.com/inqira/inqira/internal/auth/repository"
	authservice "github.com/inqira/inqira/internal/auth/service"
	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/cache"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	projectrepository "github.com/inqira/inqira/internal/project/repository"
	projectservice "github.com/inqira/inqira/internal/project/service"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
	questionnairerepository "github.com/inqira/inqira/internal/questionnaire/repository"
	questionnaireservice "github.com/inqira/inqira/internal/questionnaire/service"
	"github.com/inqira/inqira/internal/scope"
)

type fixture struct {
	t      *testing.T
	schema *Schema

	auth           domain.Service
	projects       projectdomain.Service
	questionnaires questionnairedomain.Service
	authz          authorization.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&domain.User{}, &domain.Session{},
		&projectdomain.Project{}, &projectdomain.Membership{},
		&questionnairedomain.Questionnaire{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	authRepo, sessionRepo := authrepository.New(dbConn)
	authSvc := authservice.New(log, authRepo, sessionRepo, node)
	projectSvc := projectservice.NewService(dbConn, projectrepository.NewRepository(dbConn), node, log)
	questionnaireSvc := questionnaireservice.NewService(questionnairerepository.NewRepository(dbConn), node, log)

	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)
	authzSvc := authorization.NewService(log, enforcer)

	schema, err := New(Params{
		Log:            log,
		Auth:           authSvc,
		Projects:       projectSvc,
		Questionnaires: questionnaireSvc,
		ClientIDs:      cache.NewClientIDCache(),
	})
	require.NoError(t, err)

	return &fixture{
		t:              t,
		schema:         schema,
		auth:           authSvc,
		projects:       projectSvc,
		questionnaires: questionnaireSvc,
		authz:          authzSvc,
	}
}

// exec runs one operation as the given viewer, requiring a clean transport
// result. Application-level failures still land inside data.
func (f *fixture) exec(viewer *domain.User, query string, vars map[string]any) (map[string]any, *RequestContext) {
	f.t.Helper()

	rc := &RequestContext{
		RequestID: uuid.NewString(),
		Viewer:    viewer,
		Scope:     scope.NewProjectContext(f.projects, f.authz),
	}
	ctx := WithRequestContext(context.Background(), rc)

	result := f.schema.Exec(ctx, query, vars, "")
	require.Empty(f.t, result.Errors, "unexpected transport errors: %v", result.Errors)

	data, ok := result.Data.(map[string]any)
	require.True(f.t, ok)
	return data, rc
}

func (f *fixture) register(email string) *domain.User {
	f.t.Helper()
	user, err := f.auth.Register(context.Background(), domain.RegisterRequest{
		Email:     email,
		Password:  "schema-test-password",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(f.t, err)
	return user
}

func (f *fixture) createProject(owner *domain.User, title string) *projectdomain.Project {
	f.t.Helper()
	project, err := f.projects.Create(context.Background(), owner.ID, projectdomain.CreateProjectRequest{Title: title})
	require.NoError(f.t, err)
	return project
}

// dig walks nested map results, failing loudly on a broken path.
func dig(t *testing.T, data any, path ...string) any {
	t.Helper()
	current := data
	for _, key := range path {
		obj, ok := current.(map[string]any)
		require.True(t, ok, "expected object at %q, got %T", key, current)
		current, ok = obj[key]
		require.True(t, ok, "missing key %q", key)
	}
	return current
}

func TestRegisterLoginAndMe(t *testing.T) {
	f := newFixture(t)

	data, _ := f.exec(nil, `mutation {
		public {
			register(data: {email: "new@example.com", password: "schema-test-password", firstName: "New", lastName: "Person"}) {
				ok
				result { email firstName }
			}
		}
	}`, nil)
	require.Equal(t, true, dig(t, data, "public", "register", "ok"))
	require.Equal(t, "new@example.com", dig(t, data, "public", "register", "result", "email"))

	data, rc := f.exec(nil, `mutation {
		public {
			login(data: {email: "new@example.com", password: "schema-test-password"}) {
				ok
				result { email }
			}
		}
	}`, nil)
	require.Equal(t, true, dig(t, data, "public", "login", "ok"))
	require.NotEmpty(t, rc.SetSessionToken)
	require.NotNil(t, rc.Viewer)

	data, _ = f.exec(rc.Viewer, `query { public { me { email firstName } } }`, nil)
	require.Equal(t, "new@example.com", dig(t, data, "public", "me", "email"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	f.register("user@example.com")

	data, rc := f.exec(nil, `mutation {
		public {
			login(data: {email: "user@example.com", password: "wrong-password"}) { ok errors }
		}
	}`, nil)
	require.Equal(t, false, dig(t, data, "public", "login", "ok"))
	require.Empty(t, rc.SetSessionToken)

	records, ok := dig(t, data, "public", "login", "errors").([]map[string]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	require.Equal(t, "nonFieldErrors", records[0]["field"])
}

func TestMeWithoutViewerIsNull(t *testing.T) {
	f := newFixture(t)
	data, _ := f.exec(nil, `query { public { me { email } } }`, nil)
	require.Nil(t, dig(t, data, "public", "me"))
}

func TestPrivateRootRequiresAuth(t *testing.T) {
	f := newFixture(t)

	rc := &RequestContext{RequestID: uuid.NewString(), Scope: scope.NewProjectContext(f.projects, f.authz)}
	ctx := WithRequestContext(context.Background(), rc)
	result := f.schema.Exec(ctx, `query { private { projects { count } } }`, nil, "")

	require.NotEmpty(t, result.Errors)
	require.Contains(t, result.Errors[0].Message, "logged in")
}

func TestCreateAndListProjects(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")

	data, _ := f.exec(user, `mutation {
		private {
			createProject(data: {title: "Research"}) {
				ok
				result { title currentUserRole }
			}
		}
	}`, nil)
	require.Equal(t, true, dig(t, data, "private", "createProject", "ok"))
	require.Equal(t, "Research", dig(t, data, "private", "createProject", "result", "title"))
	require.Equal(t, "ADMIN", dig(t, data, "private", "createProject", "result", "currentUserRole"))

	data, _ = f.exec(user, `query {
		private {
			projects {
				count
				items { title currentUserRole }
			}
		}
	}`, nil)
	require.Equal(t, 1, dig(t, data, "private", "projects", "count"))
}

func TestProjectValidationErrorShape(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")

	data, _ := f.exec(user, `mutation ($title: String!) {
		private {
			createProject(data: {title: $title}) { ok errors }
		}
	}`, map[string]any{"title": strings.Repeat("x", 300)})

	require.Equal(t, false, dig(t, data, "private", "createProject", "ok"))
	records := dig(t, data, "private", "createProject", "errors").([]map[string]any)
	require.Len(t, records, 1)
	require.Equal(t, "title", records[0]["field"])
	require.Equal(t, "Ensure this field has no more than 255 characters.", records[0]["messages"])
}

func TestProjectScopeBindsAndUpdates(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")
	project := f.createProject(user, "Before")

	query := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				updateProject(data: {title: "After"}) {
					ok
					result { title }
				}
			}
		}
	}`, project.ID)

	data, rc := f.exec(user, query, nil)
	require.Equal(t, true, dig(t, data, "private", "projectScope", "updateProject", "ok"))
	require.Equal(t, "After", dig(t, data, "private", "projectScope", "updateProject", "result", "title"))
	require.True(t, rc.Scope.Bound())
	require.Equal(t, project.ID, rc.Scope.Project().ID)
}

func TestProjectScopeUnknownProjectIsNull(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")

	data, rc := f.exec(user, `query {
		private { projectScope(pk: "999999999") { project { id } } }
	}`, nil)
	require.Nil(t, dig(t, data, "private", "projectScope"))
	require.False(t, rc.Scope.Bound())
}

func TestMemberCannotUpdateProject(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com")
	member := f.register("member@example.com")
	project := f.createProject(admin, "Locked")

	role := projectdomain.RoleMember
	_, err := f.projects.UpsertMembership(context.Background(), admin.ID, project.ID, projectdomain.MembershipRequest{
		MemberID: &member.ID,
		Role:     &role,
	})
	require.NoError(t, err)

	query := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				updateProject(data: {title: "Hijacked"}) { ok errors }
			}
		}
	}`, project.ID)

	data, _ := f.exec(member, query, nil)
	require.Equal(t, false, dig(t, data, "private", "projectScope", "updateProject", "ok"))
	require.Nil(t, dig(t, data, "private", "projectScope", "updateProject", "errors"))
}

func TestUpdateMembershipsEchoesClientID(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com")
	invitee := f.register("invitee@example.com")
	project := f.createProject(admin, "Team")

	query := fmt.Sprintf(`mutation ($member: ID!) {
		private {
			projectScope(pk: "%s") {
				updateMemberships(items: [{clientId: "tmp-1", member: $member, role: MEMBER}]) {
					ok
					results { clientId memberId role }
				}
			}
		}
	}`, project.ID)

	data, _ := f.exec(admin, query, map[string]any{"member": invitee.ID.String()})
	require.Equal(t, true, dig(t, data, "private", "projectScope", "updateMemberships", "ok"))

	results := dig(t, data, "private", "projectScope", "updateMemberships", "results").([]any)
	require.Len(t, results, 1)
	require.Equal(t, "tmp-1", dig(t, results[0], "clientId"))
	require.Equal(t, invitee.ID.String(), dig(t, results[0], "memberId"))
	require.Equal(t, "MEMBER", dig(t, results[0], "role"))
}

func TestUpdateMembershipsDuplicateReportsPerItem(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com")
	project := f.createProject(admin, "Team")

	// The creator already holds an Admin membership.
	query := fmt.Sprintf(`mutation ($member: ID!) {
		private {
			projectScope(pk: "%s") {
				updateMemberships(items: [{clientId: "dup-1", member: $member, role: MEMBER}]) {
					ok
					errors
				}
			}
		}
	}`, project.ID)

	data, _ := f.exec(admin, query, map[string]any{"member": admin.ID.String()})
	require.Equal(t, false, dig(t, data, "private", "projectScope", "updateMemberships", "ok"))

	records := dig(t, data, "private", "projectScope", "updateMemberships", "errors").([]map[string]any)
	require.Len(t, records, 1)
	require.Equal(t, "items", records[0]["field"])

	arrayErrors := records[0]["arrayErrors"].([]map[string]any)
	require.Len(t, arrayErrors, 1)
	require.Equal(t, "dup-1", arrayErrors[0]["key"])
}

func TestUpdateMembershipsDeletes(t *testing.T) {
	f := newFixture(t)
	admin := f.register("admin@example.com")
	member := f.register("member@example.com")
	project := f.createProject(admin, "Team")

	role := projectdomain.RoleMember
	membership, err := f.projects.UpsertMembership(context.Background(), admin.ID, project.ID, projectdomain.MembershipRequest{
		MemberID: &member.ID,
		Role:     &role,
	})
	require.NoError(t, err)

	query := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				updateMemberships(deleteIds: ["%s"]) {
					ok
					deleted { id }
				}
			}
		}
	}`, project.ID, membership.ID)

	data, _ := f.exec(admin, query, nil)
	require.Equal(t, true, dig(t, data, "private", "projectScope", "updateMemberships", "ok"))
	deleted := dig(t, data, "private", "projectScope", "updateMemberships", "deleted").([]any)
	require.Len(t, deleted, 1)
	require.Equal(t, membership.ID.String(), dig(t, deleted[0], "id"))
}

func TestQuestionnaireLifecycle(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")
	project := f.createProject(user, "Research")

	create := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				createQuestionnaire(data: {title: "Survey"}) {
					ok
					result { id title }
				}
			}
		}
	}`, project.ID)
	data, _ := f.exec(user, create, nil)
	require.Equal(t, true, dig(t, data, "private", "projectScope", "createQuestionnaire", "ok"))
	questionnaireID := dig(t, data, "private", "projectScope", "createQuestionnaire", "result", "id").(string)

	update := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				updateQuestionnaire(id: "%s", data: {title: "Survey v2"}) {
					ok
					result { title }
				}
			}
		}
	}`, project.ID, questionnaireID)
	data, _ = f.exec(user, update, nil)
	require.Equal(t, "Survey v2", dig(t, data, "private", "projectScope", "updateQuestionnaire", "result", "title"))

	list := fmt.Sprintf(`query {
		private {
			projectScope(pk: "%s") {
				questionnaires { count items { title } }
			}
		}
	}`, project.ID)
	data, _ = f.exec(user, list, nil)
	require.Equal(t, 1, dig(t, data, "private", "projectScope", "questionnaires", "count"))

	del := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				deleteQuestionnaire(id: "%s") {
					ok
					results { id }
				}
			}
		}
	}`, project.ID, questionnaireID)
	data, _ = f.exec(user, del, nil)
	require.Equal(t, true, dig(t, data, "private", "projectScope", "deleteQuestionnaire", "ok"))
	results := dig(t, data, "private", "projectScope", "deleteQuestionnaire", "results").([]any)
	require.Len(t, results, 1)

	data, _ = f.exec(user, list, nil)
	require.Equal(t, 0, dig(t, data, "private", "projectScope", "questionnaires", "count"))
}

func TestDeleteQuestionnaireMissing(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")
	project := f.createProject(user, "Research")

	query := fmt.Sprintf(`mutation {
		private {
			projectScope(pk: "%s") {
				deleteQuestionnaire(id: "42") { ok errors }
			}
		}
	}`, project.ID)
	data, _ := f.exec(user, query, nil)
	require.Equal(t, false, dig(t, data, "private", "projectScope", "deleteQuestionnaire", "ok"))
	require.NotNil(t, dig(t, data, "private", "projectScope", "deleteQuestionnaire", "errors"))
}

func TestUpdateMePartial(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")

	data, _ := f.exec(user, `mutation {
		private {
			updateMe(data: {firstName: "Renamed"}) {
				ok
				result { firstName lastName }
			}
		}
	}`, nil)
	require.Equal(t, true, dig(t, data, "private", "updateMe", "ok"))
	require.Equal(t, "Renamed", dig(t, data, "private", "updateMe", "result", "firstName"))
	// lastName untouched by the partial update
	require.Equal(t, "User", dig(t, data, "private", "updateMe", "result", "lastName"))
}

func TestChangeUserPassword(t *testing.T) {
	f := newFixture(t)
	user := f.register("owner@example.com")

	data, _ := f.exec(user, `mutation {
		private {
			changeUserPassword(data: {oldPassword: "wrong-password", newPassword: "next-password-1"}) { ok errors }
		}
	}`, nil)
	require.Equal(t, false, dig(t, data, "private", "changeUserPassword", "ok"))
	records := dig(t, data, "private", "changeUserPassword", "errors").([]map[string]any)
	require.Equal(t, "oldPassword", records[0]["field"])

	data, _ = f.exec(user, `mutation {
		private {
			changeUserPassword(data: {oldPassword: "schema-test-password", newPassword: "next-password-1"}) { ok }
		}
	}`, nil)
	require.Equal(t, true, dig(t, data, "private", "changeUserPassword", "ok"))

	_, err := f.auth.Login(context.Background(), domain.LoginRequest{Email: "owner@example.com", Password: "next-password-1"})
	require.NoError(t, err)
}
