package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows project visibility queries.
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

// MembershipListFilter narrows membership queries within one project. Search
// matches the member's email and names.
type MembershipListFilter struct {
	Search string
	Offset int
	Limit  int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProject(ctx context.Context, project Project) error
	UpdateProject(ctx context.Context, projectID snowflake.ID, fields map[string]any) error
	FindProjectByID(ctx context.Context, projectID snowflake.ID) (*Project, error)

	// ListForUser returns only projects where the user holds a membership,
	// each annotated with the user's role. This is the read-authorization
	// boundary: everything list-shaped routes through it.
	ListForUser(ctx context.Context, userID snowflake.ID, filter ListFilter) ([]ProjectListItem, int64, error)
	FindForUser(ctx context.Context, userID snowflake.ID, projectID snowflake.ID) (*ProjectListItem, error)

	AddMembership(ctx context.Context, membership Membership) error
	UpdateMembership(ctx context.Context, membershipID snowflake.ID, fields map[string]any) error
	DeleteMemberships(ctx context.Context, projectID snowflake.ID, ids []snowflake.ID) ([]Membership, error)
	FindMembership(ctx context.Context, projectID snowflake.ID, memberID snowflake.ID) (*Membership, error)
	FindMembershipByID(ctx context.Context, projectID snowflake.ID, membershipID snowflake.ID) (*Membership, error)
	ListMemberships(ctx context.Context, projectID snowflake.ID, filter MembershipListFilter) ([]Membership, int64, error)
	MembershipExists(ctx context.Context, projectID snowflake.ID, memberID snowflake.ID, excludeID *snowflake.ID) (bool, error)
}
