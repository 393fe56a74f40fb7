// Package domain contains persistence models for the questionnaire service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Questionnaire belongs to exactly one project and goes away with it.
type Questionnaire struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProjectID    snowflake.ID  `gorm:"not null;index" json:"project_id"`
	Title        string        `gorm:"type:text;not null" json:"title"`
	CreatedByID  *snowflake.ID `gorm:"column:created_by_id" json:"created_by_id"`
	ModifiedByID *snowflake.ID `gorm:"column:modified_by_id" json:"modified_by_id"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ModifiedAt   time.Time     `gorm:"column:modified_at;not null;default:CURRENT_TIMESTAMP" json:"modified_at"`
}

// TableName sets the database table name.
func (Questionnaire) TableName() string { return "questionnaires" }
