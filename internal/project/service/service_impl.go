package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/inqira/inqira/internal/project/domain"
	"github.com/inqira/inqira/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(conn *gorm.DB, repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		db:    conn,
		repo:  repo,
		genID: genID,
		log:   log.Named("project.service"),
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateProjectRequest) (*domain.Project, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidProject
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:           s.genID.Generate(),
		Title:        title,
		CreatedByID:  &userID,
		ModifiedByID: &userID,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateProject(ctx, project); err != nil {
			return err
		}

		// The creator's Admin membership exists before any other membership
		// can be attached to the project.
		membership := domain.Membership{
			ID:        s.genID.Generate(),
			ProjectID: project.ID,
			MemberID:  userID,
			Role:      domain.RoleAdmin,
			JoinedAt:  now,
		}
		return repo.AddMembership(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *service) Update(ctx context.Context, userID snowflake.ID, projectID snowflake.ID, req domain.UpdateProjectRequest) (*domain.Project, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	fields := map[string]any{
		"modified_by_id": userID,
		"modified_at":    time.Now().UTC(),
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidProject
		}
		fields["title"] = title
	}

	if err := s.repo.UpdateProject(ctx, projectID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindProjectByID(ctx, projectID)
}

func (s *service) GetForUser(ctx context.Context, userID snowflake.ID, projectID snowflake.ID) (*domain.ProjectListItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.FindForUser(ctx, userID, projectID)
}

func (s *service) ListForUser(ctx context.Context, userID snowflake.ID, filter domain.ListFilter) ([]domain.ProjectListItem, int64, error) {
	if userID == 0 {
		return nil, 0, domain.ErrInvalidUser
	}
	return s.repo.ListForUser(ctx, userID, filter)
}

func (s *service) RoleFor(ctx context.Context, projectID snowflake.ID, userID snowflake.ID) (*domain.Role, error) {
	membership, err := s.repo.FindMembership(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No membership means no permissions, not a fault.
			return nil, nil
		}
		return nil, err
	}
	role := membership.Role
	return &role, nil
}

func (s *service) ListMemberships(ctx context.Context, projectID snowflake.ID, filter domain.MembershipListFilter) ([]domain.Membership, int64, error) {
	return s.repo.ListMemberships(ctx, projectID, filter)
}

func (s *service) UpsertMembership(ctx context.Context, actorID snowflake.ID, projectID snowflake.ID, req domain.MembershipRequest) (*domain.Membership, error) {
	if actorID == 0 {
		return nil, domain.ErrInvalidUser
	}

	if req.ID == nil {
		if req.MemberID == nil {
			return nil, domain.ErrInvalidUser
		}

		exists, err := s.repo.MembershipExists(ctx, projectID, *req.MemberID, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrMembershipExists
		}

		role := domain.RoleMember
		if req.Role != nil {
			role = *req.Role
		}
		membership := domain.Membership{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			MemberID:  *req.MemberID,
			Role:      role,
			JoinedAt:  time.Now().UTC(),
			AddedByID: &actorID,
		}
		if err := s.repo.AddMembership(ctx, membership); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return nil, domain.ErrMembershipExists
			}
			return nil, err
		}
		return &membership, nil
	}

	existing, err := s.repo.FindMembershipByID(ctx, projectID, *req.ID)
	if err != nil {
		return nil, err
	}

	if req.MemberID != nil && *req.MemberID != existing.MemberID {
		exists, err := s.repo.MembershipExists(ctx, projectID, *req.MemberID, req.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrMembershipExists
		}
	}

	fields := map[string]any{}
	if req.MemberID != nil {
		fields["member_id"] = *req.MemberID
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateMembership(ctx, *req.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindMembershipByID(ctx, projectID, *req.ID)
}

func (s *service) DeleteMemberships(ctx context.Context, projectID snowflake.ID, ids []snowflake.ID) ([]domain.Membership, error) {
	return s.repo.DeleteMemberships(ctx, projectID, ids)
}
