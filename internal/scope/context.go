// Package scope carries the active project of a request and the permission
// set the viewer holds in it.
package scope

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/inqira/inqira/internal/authorization"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
)

// ProjectContext tracks the project a request has bound itself to. It is
// created per request and never shared across goroutines, so it carries no
// locking.
type ProjectContext struct {
	projects projectdomain.Service
	authz    authorization.Service

	project *projectdomain.Project
	role    *projectdomain.Role
	perms   map[authorization.Permission]struct{}
}

func NewProjectContext(projects projectdomain.Service, authz authorization.Service) *ProjectContext {
	return &ProjectContext{
		projects: projects,
		authz:    authz,
	}
}

// Bind attaches the project to this context and resolves the viewer's
// permission set. Binding the same project again is a no-op; binding a
// different one is a conflict. A viewer without a membership binds fine and
// simply holds no permissions.
func (pc *ProjectContext) Bind(ctx context.Context, viewerID *snowflake.ID, project *projectdomain.Project) error {
	if viewerID == nil || *viewerID == 0 {
		return &AuthError{Reason: "project scope requires an authenticated viewer"}
	}
	if project == nil {
		return projectdomain.ErrInvalidProject
	}

	if pc.project != nil {
		if pc.project.ID == project.ID {
			return nil
		}
		return &ConflictError{Reason: "request is already scoped to a different project"}
	}

	role, err := pc.projects.RoleFor(ctx, project.ID, *viewerID)
	if err != nil {
		return err
	}

	perms := map[authorization.Permission]struct{}{}
	if role != nil {
		granted, err := pc.authz.PermissionsForRole(*role)
		if err != nil {
			return err
		}
		for _, perm := range granted {
			perms[perm] = struct{}{}
		}
	}

	pc.project = project
	pc.role = role
	pc.perms = perms
	return nil
}

// Bound reports whether a project has been attached.
func (pc *ProjectContext) Bound() bool { return pc.project != nil }

// Project returns the bound project, or nil.
func (pc *ProjectContext) Project() *projectdomain.Project { return pc.project }

// Role returns the viewer's role in the bound project, or nil when the viewer
// holds no membership.
func (pc *ProjectContext) Role() *projectdomain.Role { return pc.role }

// HasPermission reports whether the bound viewer holds the permission.
func (pc *ProjectContext) HasPermission(perm authorization.Permission) (bool, error) {
	if pc.project == nil {
		return false, &PreconditionError{Reason: "HasPermission called before Bind"}
	}
	_, ok := pc.perms[perm]
	return ok, nil
}

// Require returns a PermissionError unless the bound viewer holds the
// permission.
func (pc *ProjectContext) Require(perm authorization.Permission) error {
	ok, err := pc.HasPermission(perm)
	if err != nil {
		return err
	}
	if !ok {
		return &PermissionError{Permission: string(perm)}
	}
	return nil
}

type projectContextKey struct{}

// WithProjectContext stores the per-request project context.
func WithProjectContext(ctx context.Context, pc *ProjectContext) context.Context {
	return context.WithValue(ctx, projectContextKey{}, pc)
}

// ProjectContextFrom returns the request's project context, if present.
func ProjectContextFrom(ctx context.Context) (*ProjectContext, bool) {
	if ctx == nil {
		return nil, false
	}
	pc, ok := ctx.Value(projectContextKey{}).(*ProjectContext)
	return pc, ok
}
