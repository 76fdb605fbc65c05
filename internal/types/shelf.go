package types

import (
	"time"

	"github.com/google/uuid"
)

// Shelf holds an ordered row of plants inside a room. Every room has exactly
// one shelf with IsDefault=true, created together with the room; the default
// shelf cannot be deleted or reordered by the user and always lists first.
type Shelf struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID      uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`
	Room        *Room     `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	Capacity    int       `gorm:"column:capacity;not null;default:10" json:"capacity"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsDefault   bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Shelf) TableName() string { return "shelf" }
