package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinIntervalDays = 1
	MaxIntervalDays = 365
	MinWindowPeriod = 0
	MaxWindowPeriod = 30
)

// CareConfig is a recurring-task schedule for one (plant, task-type) pair.
// NextDueAt, once established, only advances forward: each completion adds one
// full interval to the previously planned due date, not to the completion time.
type CareConfig struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"plant_id"`
	Plant        *Plant     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	TaskTypeID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"task_type_id"`
	TaskType     *TaskType  `gorm:"foreignKey:TaskTypeID;references:ID" json:"task_type,omitempty"`
	IntervalDays int        `gorm:"column:interval_days;not null;default:7" json:"interval_days"`
	WindowPeriod int        `gorm:"column:window_period;not null;default:0" json:"window_period"`
	LastDoneAt   *time.Time `gorm:"column:last_done_at" json:"last_done_at,omitempty"`
	NextDueAt    *time.Time `gorm:"column:next_due_at;index" json:"next_due_at,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Season       *string    `gorm:"column:season" json:"season,omitempty"`
	Notes        *string    `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (CareConfig) TableName() string { return "care_config" }
