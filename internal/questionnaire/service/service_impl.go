package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/inqira/inqira/internal/questionnaire/domain"
	"go.uber.org/zap"
)

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		repo:  repo,
		genID: genID,
		log:   log.Named("questionnaire.service"),
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, req domain.CreateRequest) (*domain.Questionnaire, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	questionnaire := domain.Questionnaire{
		ID:           s.genID.Generate(),
		ProjectID:    projectID,
		Title:        title,
		CreatedByID:  &userID,
		ModifiedByID: &userID,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := s.repo.Create(ctx, questionnaire); err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

func (s *service) Update(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, questionnaireID snowflake.ID, req domain.UpdateRequest) (*domain.Questionnaire, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if _, err := s.repo.FindByID(ctx, projectID, questionnaireID); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"modified_by_id": userID,
		"modified_at":    time.Now().UTC(),
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = title
	}

	if err := s.repo.Update(ctx, questionnaireID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, projectID, questionnaireID)
}

func (s *service) Delete(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*domain.Questionnaire, error) {
	questionnaire, err := s.repo.FindByID(ctx, projectID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, projectID, questionnaireID); err != nil {
		return nil, err
	}
	return questionnaire, nil
}

func (s *service) Get(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*domain.Questionnaire, error) {
	return s.repo.FindByID(ctx, projectID, questionnaireID)
}

func (s *service) List(ctx context.Context, projectID snowflake.ID, filter domain.ListFilter) ([]domain.Questionnaire, int64, error) {
	return s.repo.List(ctx, projectID, filter)
}
