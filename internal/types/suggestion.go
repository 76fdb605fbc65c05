package types

import (
	"time"

	"github.com/google/uuid"
)

type Suggestion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null;column:title" json:"title"`
	Content   string    `gorm:"not null;column:content" json:"content"`
	Category  string    `gorm:"not null;column:category" json:"category"`
	Status    string    `gorm:"column:status;not null;default:'pending'" json:"status"`
	Priority  string    `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Suggestion) TableName() string { return "suggestion" }
