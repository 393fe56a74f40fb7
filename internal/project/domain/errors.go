package domain

import "errors"

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidProject   = errors.New("invalid_project")
	ErrProjectNotFound  = errors.New("project_not_found")
	ErrMembershipExists = errors.New("membership_exists")
	ErrNotFound         = errors.New("not_found")
)
