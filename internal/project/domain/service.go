package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create stores the project and, in the same transaction, an Admin
	// membership for its creator.
	Create(ctx context.Context, userID snowflake.ID, req CreateProjectRequest) (*Project, error)
	Update(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, req UpdateProjectRequest) (*Project, error)

	GetForUser(ctx context.Context, userID snowflake.ID, projectID snowflake.ID) (*ProjectListItem, error)
	ListForUser(ctx context.Context, userID snowflake.ID, filter ListFilter) ([]ProjectListItem, int64, error)
	RoleFor(ctx context.Context, projectID snowflake.ID, userID snowflake.ID) (*Role, error)

	ListMemberships(ctx context.Context, projectID snowflake.ID, filter MembershipListFilter) ([]Membership, int64, error)
	UpsertMembership(ctx context.Context, actorID snowflake.ID, projectID snowflake.ID, req MembershipRequest) (*Membership, error)
	DeleteMemberships(ctx context.Context, projectID snowflake.ID, ids []snowflake.ID) ([]Membership, error)
}

type CreateProjectRequest struct {
	Title string
}

type UpdateProjectRequest struct {
	Title *string
}

// MembershipRequest is one item of a bulk membership mutation. A nil ID means
// create; a set ID means update that row.
type MembershipRequest struct {
	ID       *snowflake.ID
	MemberID *snowflake.ID
	Role     *Role
}
