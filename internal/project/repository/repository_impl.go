package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/inqira/inqira/internal/project/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateProject(ctx context.Context, project domain.Project) error {
	return r.db.WithContext(ctx).Create(&project).Error
}

func (r *repository) UpdateProject(ctx context.Context, projectID snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", projectID).
		Updates(fields).Error
}

func (r *repository) FindProjectByID(ctx context.Context, projectID snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// roleSubquery annotates each project row with the requesting user's role.
// Ordering by role ascending and taking the first row keeps the lowest role
// value when more than one could match; the unique (member, project) index
// makes that a formality, but the query stays faithful to it.
const roleSubquery = `(SELECT m.role FROM project_memberships m
	 WHERE m.project_id = p.id AND m.member_id = ?
	 ORDER BY m.role ASC LIMIT 1)`

func (r *repository) ListForUser(ctx context.Context, userID snowflake.ID, filter domain.ListFilter) ([]domain.ProjectListItem, int64, error) {
	base := r.db.WithContext(ctx).
		Table("projects AS p").
		Joins("JOIN project_memberships pm ON pm.project_id = p.id AND pm.member_id = ?", userID)
	if filter.Search != "" {
		base = base.Where("p.title LIKE ?", "%"+filter.Search+"%")
	}

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.ProjectListItem
	query := base.Session(&gorm.Session{}).
		Select("p.*, "+roleSubquery+" AS current_user_role", userID).
		Order("p.created_at ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Scan(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *repository) FindForUser(ctx context.Context, userID snowflake.ID, projectID snowflake.ID) (*domain.ProjectListItem, error) {
	var item domain.ProjectListItem
	err := r.db.WithContext(ctx).
		Table("projects AS p").
		Joins("JOIN project_memberships pm ON pm.project_id = p.id AND pm.member_id = ?", userID).
		Where("p.id = ?", projectID).
		Select("p.*, "+roleSubquery+" AS current_user_role", userID).
		Limit(1).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return &item, nil
}

func (r *repository) AddMembership(ctx context.Context, membership domain.Membership) error {
	return r.db.WithContext(ctx).Create(&membership).Error
}

func (r *repository) UpdateMembership(ctx context.Context, membershipID snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("id = ?", membershipID).
		Updates(fields).Error
}

func (r *repository) DeleteMemberships(ctx context.Context, projectID snowflake.ID, ids []snowflake.ID) ([]domain.Membership, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var doomed []domain.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Find(&doomed).Error
	if err != nil {
		return nil, err
	}
	if len(doomed) == 0 {
		return nil, nil
	}

	err = r.db.WithContext(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Delete(&domain.Membership{}).Error
	if err != nil {
		return nil, err
	}
	return doomed, nil
}

func (r *repository) FindMembership(ctx context.Context, projectID snowflake.ID, memberID snowflake.ID) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND member_id = ?", projectID, memberID).
		Order("role ASC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) FindMembershipByID(ctx context.Context, projectID snowflake.ID, membershipID snowflake.ID) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, membershipID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) ListMemberships(ctx context.Context, projectID snowflake.ID, filter domain.MembershipListFilter) ([]domain.Membership, int64, error) {
	base := r.db.WithContext(ctx).
		Table("project_memberships AS pm").
		Where("pm.project_id = ?", projectID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.
			Joins("JOIN users u ON u.id = pm.member_id").
			Where("u.email LIKE ? OR u.first_name LIKE ? OR u.last_name LIKE ?", pattern, pattern, pattern)
	}

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var memberships []domain.Membership
	query := base.Session(&gorm.Session{}).
		Select("pm.*").
		Order("pm.joined_at ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Scan(&memberships).Error; err != nil {
		return nil, 0, err
	}

	return memberships, count, nil
}

func (r *repository) MembershipExists(ctx context.Context, projectID snowflake.ID, memberID snowflake.ID, excludeID *snowflake.ID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("project_id = ? AND member_id = ?", projectID, memberID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
