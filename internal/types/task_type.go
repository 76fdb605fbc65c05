package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskWatering    = "watering"
	TaskFertilizing = "fertilizing"
	TaskPruning     = "pruning"
	TaskRepotting   = "repotting"
	TaskSpraying    = "spraying"
)

// TaskType is an immutable system catalog entry, seeded at startup.
type TaskType struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"not null;column:name" json:"name"`
	Code            string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Icon            *string   `gorm:"column:icon" json:"icon,omitempty"`
	Description     *string   `gorm:"column:description" json:"description,omitempty"`
	DefaultInterval int       `gorm:"column:default_interval;not null;default:7" json:"default_interval"`
	IsSystem        bool      `gorm:"column:is_system;not null;default:true" json:"is_system"`
	SortOrder       int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (TaskType) TableName() string { return "task_type" }
