// Package domain contains persistence models for the project service.
package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role orders memberships by privilege: lower values carry more rights.
type Role int16

const (
	RoleAdmin  Role = 0
	RoleMember Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleMember:
		return "MEMBER"
	default:
		return fmt.Sprintf("Role(%d)", int16(r))
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Value implements driver.Valuer so gorm stores the raw smallint.
func (r Role) Value() (driver.Value, error) {
	return int64(r), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*r = Role(v)
		return nil
	case int:
		*r = Role(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

// Project is the tenant boundary for questionnaires.
type Project struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title        string        `gorm:"type:text;not null" json:"title"`
	CreatedByID  *snowflake.ID `gorm:"column:created_by_id;index" json:"created_by_id"`
	ModifiedByID *snowflake.ID `gorm:"column:modified_by_id" json:"modified_by_id"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ModifiedAt   time.Time     `gorm:"column:modified_at;not null;default:CURRENT_TIMESTAMP" json:"modified_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// Membership links one user to one project with a role. The
// (member_id, project_id) unique index enforces at-most-one row per pair.
type Membership struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_project_memberships_member_project,priority:2" json:"project_id"`
	MemberID  snowflake.ID  `gorm:"not null;uniqueIndex:ux_project_memberships_member_project,priority:1" json:"member_id"`
	Role      Role          `gorm:"type:smallint;not null;default:1" json:"role"`
	JoinedAt  time.Time     `gorm:"column:joined_at;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
	AddedByID *snowflake.ID `gorm:"column:added_by_id" json:"added_by_id"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "project_memberships" }

// ProjectListItem is a project row annotated with the requesting user's role.
type ProjectListItem struct {
	Project
	CurrentUserRole Role `gorm:"column:current_user_role"`
}
