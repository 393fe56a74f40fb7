package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/inqira/inqira/internal/questionnaire/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, questionnaire domain.Questionnaire) error {
	return r.db.WithContext(ctx).Create(&questionnaire).Error
}

func (r *repository) Update(ctx context.Context, questionnaireID snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Questionnaire{}).
		Where("id = ?", questionnaireID).
		Updates(fields).Error
}

func (r *repository) Delete(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, questionnaireID).
		Delete(&domain.Questionnaire{}).Error
}

func (r *repository) FindByID(ctx context.Context, projectID snowflake.ID, questionnaireID snowflake.ID) (*domain.Questionnaire, error) {
	var questionnaire domain.Questionnaire
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, questionnaireID).
		First(&questionnaire).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &questionnaire, nil
}

func (r *repository) List(ctx context.Context, projectID snowflake.ID, filter domain.ListFilter) ([]domain.Questionnaire, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&domain.Questionnaire{}).
		Where("project_id = ?", projectID)
	if filter.Search != "" {
		base = base.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := base.Session(&gorm.Session{}).Order("created_at ASC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var items []domain.Questionnaire
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
