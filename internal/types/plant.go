package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlantSourceManual   = "manual"
	PlantSourceIdentify = "identify"

	HealthHealthy  = "healthy"
	HealthSick     = "sick"
	HealthCritical = "critical"
	HealthDead     = "dead"
)

type Plant struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"room_id"`
	Room             *Room      `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	ShelfID          *uuid.UUID `gorm:"type:uuid;index" json:"shelf_id,omitempty"`
	ShelfOrder       int        `gorm:"column:shelf_order;not null;default:0" json:"shelf_order"`
	Name             string     `gorm:"not null;column:name" json:"name"`
	ScientificName   *string    `gorm:"column:scientific_name" json:"scientific_name,omitempty"`
	Description      *string    `gorm:"column:description" json:"description,omitempty"`
	PurchaseDate     *time.Time `gorm:"column:purchase_date" json:"purchase_date,omitempty"`
	HealthStatus     string     `gorm:"column:health_status;not null;default:'healthy'" json:"health_status"`
	IsActive         bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IdentificationID *uuid.UUID `gorm:"type:uuid;column:identification_id" json:"identification_id,omitempty"`
	Source           string     `gorm:"column:source;not null;default:'manual'" json:"source"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (Plant) TableName() string { return "plant" }

func ValidHealthStatus(v string) bool {
	switch v {
	case HealthHealthy, HealthSick, HealthCritical, HealthDead:
		return true
	default:
		return false
	}
}
