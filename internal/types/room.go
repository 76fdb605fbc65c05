package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	LocationIndoor  = "indoor"
	LocationOutdoor = "outdoor"
	LocationBalcony = "balcony"
	LocationGarden  = "garden"
)

type Room struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	Description  *string   `gorm:"column:description" json:"description,omitempty"`
	LocationType string    `gorm:"column:location_type;not null;default:'indoor'" json:"location_type"`
	Icon         *string   `gorm:"column:icon" json:"icon,omitempty"`
	Color        *string   `gorm:"column:color" json:"color,omitempty"`
	SortOrder    int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Room) TableName() string { return "room" }

func ValidLocationType(v string) bool {
	switch v {
	case LocationIndoor, LocationOutdoor, LocationBalcony, LocationGarden:
		return true
	default:
		return false
	}
}
