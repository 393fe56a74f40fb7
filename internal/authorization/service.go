package authorization

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	projectdomain "github.com/inqira/inqira/internal/project/domain"
)

//go:embed model.conf
var modelText string

// Permission names an operation a project member may perform. The set is
// closed; resolvers compare against these constants rather than raw strings.
type Permission string

const (
	PermUpdateProject       Permission = "project.update"
	PermUpdateMemberships   Permission = "project.update_memberships"
	PermViewQuestionnaire   Permission = "questionnaire.view"
	PermCreateQuestionnaire Permission = "questionnaire.create"
	PermUpdateQuestionnaire Permission = "questionnaire.update"
	PermDeleteQuestionnaire Permission = "questionnaire.delete"
)

// AllPermissions lists every known permission in a stable order.
var AllPermissions = []Permission{
	PermUpdateProject,
	PermUpdateMemberships,
	PermViewQuestionnaire,
	PermCreateQuestionnaire,
	PermUpdateQuestionnaire,
	PermDeleteQuestionnaire,
}

var (
	ErrInvalidRole       = errors.New("authorization: invalid role")
	ErrInvalidPermission = errors.New("authorization: invalid permission")
)

// Valid reports whether p is one of the declared permissions.
func (p Permission) Valid() bool {
	switch p {
	case PermUpdateProject, PermUpdateMemberships,
		PermViewQuestionnaire, PermCreateQuestionnaire,
		PermUpdateQuestionnaire, PermDeleteQuestionnaire:
		return true
	}
	return false
}

// Service answers role/permission questions for project memberships.
type Service interface {
	Can(role projectdomain.Role, perm Permission) (bool, error)
	PermissionsForRole(role projectdomain.Role) ([]Permission, error)
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer seeded with the fixed
// role-to-permission mapping. Policies never change at runtime, so no
// persistent adapter is attached.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(log *zap.Logger, enforcer *casbin.SyncedEnforcer) Service {
	return &ServiceImpl{
		log:      log.Named("authorization.service"),
		enforcer: enforcer,
	}
}

func (s *ServiceImpl) Can(role projectdomain.Role, perm Permission) (bool, error) {
	subject, err := roleSubject(role)
	if err != nil {
		return false, err
	}
	if !perm.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidPermission, perm)
	}
	return s.enforcer.Enforce(subject, string(perm))
}

func (s *ServiceImpl) PermissionsForRole(role projectdomain.Role) ([]Permission, error) {
	subject, err := roleSubject(role)
	if err != nil {
		return nil, err
	}
	granted := make([]Permission, 0, len(AllPermissions))
	for _, perm := range AllPermissions {
		ok, err := s.enforcer.Enforce(subject, string(perm))
		if err != nil {
			return nil, err
		}
		if ok {
			granted = append(granted, perm)
		}
	}
	sort.Slice(granted, func(i, j int) bool { return granted[i] < granted[j] })
	return granted, nil
}

func roleSubject(role projectdomain.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidRole, role)
	}
	return "role:" + strings.ToLower(role.String()), nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Member permissions (questionnaire scope only)
		{"role:member", string(PermViewQuestionnaire)},
		{"role:member", string(PermCreateQuestionnaire)},
		{"role:member", string(PermUpdateQuestionnaire)},
		{"role:member", string(PermDeleteQuestionnaire)},
	}
	for _, perm := range AllPermissions {
		policies = append(policies, []string{"role:admin", string(perm)})
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1]); err != nil {
			return err
		}
	}
	return nil
}
