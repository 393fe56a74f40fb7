package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	UserByID(ctx context.Context, id snowflake.ID) (*User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, req ChangePasswordRequest) error
	UpdateMe(ctx context.Context, userID snowflake.ID, req UpdateMeRequest) (*User, error)
}

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

type ChangePasswordRequest struct {
	OldPassword string
	NewPassword string
}

// UpdateMeRequest carries partial profile updates. Nil fields are untouched.
type UpdateMeRequest struct {
	FirstName    *string
	LastName     *string
	EmailOptOuts *[]string
}
