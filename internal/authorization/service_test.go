package authorization

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	projectdomain "github.com/inqira/inqira/internal/project/domain"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer()
	require.NoError(t, err)
	return NewService(zap.NewNop(), enforcer)
}

func TestAdminHasAllPermissions(t *testing.T) {
	svc := newTestService(t)
	for _, perm := range AllPermissions {
		ok, err := svc.Can(projectdomain.RoleAdmin, perm)
		require.NoError(t, err)
		require.True(t, ok, "admin should hold %s", perm)
	}
}

func TestMemberQuestionnairePermissionsOnly(t *testing.T) {
	svc := newTestService(t)

	granted := map[Permission]bool{
		PermViewQuestionnaire:   true,
		PermCreateQuestionnaire: true,
		PermUpdateQuestionnaire: true,
		PermDeleteQuestionnaire: true,
		PermUpdateProject:       false,
		PermUpdateMemberships:   false,
	}
	for perm, want := range granted {
		ok, err := svc.Can(projectdomain.RoleMember, perm)
		require.NoError(t, err)
		require.Equal(t, want, ok, "member permission %s", perm)
	}
}

func TestPermissionsForRole(t *testing.T) {
	svc := newTestService(t)

	adminPerms, err := svc.PermissionsForRole(projectdomain.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, adminPerms, len(AllPermissions))

	memberPerms, err := svc.PermissionsForRole(projectdomain.RoleMember)
	require.NoError(t, err)
	require.ElementsMatch(t, []Permission{
		PermViewQuestionnaire,
		PermCreateQuestionnaire,
		PermUpdateQuestionnaire,
		PermDeleteQuestionnaire,
	}, memberPerms)
}

func TestInvalidRoleAndPermission(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Can(projectdomain.Role(42), PermUpdateProject)
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Can(projectdomain.RoleAdmin, Permission("bogus"))
	require.ErrorIs(t, err, ErrInvalidPermission)

	_, err = svc.PermissionsForRole(projectdomain.Role(-1))
	require.ErrorIs(t, err, ErrInvalidRole)
}
