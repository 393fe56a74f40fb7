// Package domain contains core types for the auth service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User represents a registered account.
type User struct {
	ID           snowflake.ID   `gorm:"primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex:ux_users_email"`
	PasswordHash *string        `gorm:"column:password_hash;type:text"`
	FirstName    string         `gorm:"column:first_name;type:text;not null;default:''"`
	LastName     string         `gorm:"column:last_name;type:text;not null;default:''"`
	EmailOptOuts datatypes.JSON `gorm:"column:email_opt_outs;type:jsonb;not null;default:'[]'"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	ModifiedAt   time.Time      `gorm:"column:modified_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// FullName joins the user's first and last names for display.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index:ix_sessions_user_id"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex:ux_sessions_token_hash"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index:ix_sessions_expires_at"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
