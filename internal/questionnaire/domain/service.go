package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound     = errors.New("questionnaire_not_found")
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidTitle = errors.New("invalid_title")
)

// ListFilter narrows questionnaire queries within the active project.
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, req CreateRequest) (*Questionnaire, error)
	Update(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, questionnaireID snowflake.ID, req UpdateRequest) (*Questionnaire, error)
	Delete(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*Questionnaire, error)

	// Get and List are scoped to one project; callers resolve project
	// visibility before reaching this service.
	Get(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*Questionnaire, error)
	List(ctx context.Context, projectID snowflake.ID, filter ListFilter) ([]Questionnaire, int64, error)
}

type CreateRequest struct {
	Title string
}

type UpdateRequest struct {
	ID    snowflake.ID
	Title *string
}

type Repository interface {
	Create(ctx context.Context, questionnaire Questionnaire) error
	Update(ctx context.Context, questionnaireID snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) error
	FindByID(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*Questionnaire, error)
	List(ctx context.Context, projectID snowflake.ID, filter ListFilter) ([]Questionnaire, int64, error)
}
