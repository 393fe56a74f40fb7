package scope

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inqira/inqira/internal/authorization"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
)

// roleStub serves RoleFor from a fixed member→role table.
type roleStub struct {
	projectdomain.Service

	roles map[snowflake.ID]projectdomain.Role
}

func (s *roleStub) RoleFor(_ context.Context, _ snowflake.ID, userID snowflake.ID) (*projectdomain.Role, error) {
	role, ok := s.roles[userID]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func newTestProjectContext(t *testing.T, roles map[snowflake.ID]projectdomain.Role) *ProjectContext {
	t.Helper()
	enforcer, err := authorization.NewEnforcer()
	require.NoError(t, err)
	authz := authorization.NewService(zap.NewNop(), enforcer)
	return NewProjectContext(&roleStub{roles: roles}, authz)
}

func testProject(id int64) *projectdomain.Project {
	return &projectdomain.Project{ID: snowflake.ID(id), Title: "Test"}
}

func TestBindRequiresViewer(t *testing.T) {
	pc := newTestProjectContext(t, nil)

	err := pc.Bind(context.Background(), nil, testProject(1))
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)

	zero := snowflake.ID(0)
	err = pc.Bind(context.Background(), &zero, testProject(1))
	require.ErrorAs(t, err, &authErr)
}

func TestBindIdempotentSameProject(t *testing.T) {
	viewer := snowflake.ID(7)
	pc := newTestProjectContext(t, map[snowflake.ID]projectdomain.Role{viewer: projectdomain.RoleAdmin})

	require.NoError(t, pc.Bind(context.Background(), &viewer, testProject(1)))
	require.NoError(t, pc.Bind(context.Background(), &viewer, testProject(1)))
	require.True(t, pc.Bound())
}

func TestBindConflictDifferentProject(t *testing.T) {
	viewer := snowflake.ID(7)
	pc := newTestProjectContext(t, map[snowflake.ID]projectdomain.Role{viewer: projectdomain.RoleAdmin})

	require.NoError(t, pc.Bind(context.Background(), &viewer, testProject(1)))

	err := pc.Bind(context.Background(), &viewer, testProject(2))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestHasPermissionBeforeBind(t *testing.T) {
	pc := newTestProjectContext(t, nil)

	_, err := pc.HasPermission(authorization.PermViewQuestionnaire)
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
}

func TestPermissionSetsPerRole(t *testing.T) {
	admin := snowflake.ID(1)
	member := snowflake.ID(2)
	outsider := snowflake.ID(3)
	roles := map[snowflake.ID]projectdomain.Role{
		admin:  projectdomain.RoleAdmin,
		member: projectdomain.RoleMember,
	}

	cases := []struct {
		name    string
		viewer  snowflake.ID
		granted map[authorization.Permission]bool
	}{
		{
			name:   "admin holds everything",
			viewer: admin,
			granted: map[authorization.Permission]bool{
				authorization.PermUpdateProject:       true,
				authorization.PermUpdateMemberships:   true,
				authorization.PermViewQuestionnaire:   true,
				authorization.PermCreateQuestionnaire: true,
				authorization.PermUpdateQuestionnaire: true,
				authorization.PermDeleteQuestionnaire: true,
			},
		},
		{
			name:   "member holds questionnaire scope only",
			viewer: member,
			granted: map[authorization.Permission]bool{
				authorization.PermUpdateProject:       false,
				authorization.PermUpdateMemberships:   false,
				authorization.PermViewQuestionnaire:   true,
				authorization.PermCreateQuestionnaire: true,
				authorization.PermUpdateQuestionnaire: true,
				authorization.PermDeleteQuestionnaire: true,
			},
		},
		{
			name:   "non-member holds nothing",
			viewer: outsider,
			granted: map[authorization.Permission]bool{
				authorization.PermUpdateProject:       false,
				authorization.PermViewQuestionnaire:   false,
				authorization.PermDeleteQuestionnaire: false,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pc := newTestProjectContext(t, roles)
			viewer := tc.viewer
			require.NoError(t, pc.Bind(context.Background(), &viewer, testProject(1)))
			for perm, want := range tc.granted {
				ok, err := pc.HasPermission(perm)
				require.NoError(t, err)
				require.Equal(t, want, ok, "permission %s", perm)
			}
		})
	}
}

func TestRequireDeniedPermission(t *testing.T) {
	member := snowflake.ID(2)
	pc := newTestProjectContext(t, map[snowflake.ID]projectdomain.Role{member: projectdomain.RoleMember})

	require.NoError(t, pc.Bind(context.Background(), &member, testProject(1)))
	require.NoError(t, pc.Require(authorization.PermViewQuestionnaire))

	err := pc.Require(authorization.PermUpdateProject)
	var denied *PermissionError
	require.ErrorAs(t, err, &denied)
}

func TestContextCarrier(t *testing.T) {
	pc := newTestProjectContext(t, nil)

	_, ok := ProjectContextFrom(context.Background())
	require.False(t, ok)

	ctx := WithProjectContext(context.Background(), pc)
	got, ok := ProjectContextFrom(ctx)
	require.True(t, ok)
	require.Same(t, pc, got)
}
