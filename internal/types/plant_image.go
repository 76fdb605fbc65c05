package types

import (
	"time"

	"github.com/google/uuid"
)

// PlantImage records one photo of a plant. At most one image per plant carries
// IsPrimary=true; when none is flagged, the earliest-created image is the
// de facto primary for read purposes.
type PlantImage struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"plant_id"`
	Plant        *Plant     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlantID;references:ID" json:"plant,omitempty"`
	URL          string     `gorm:"not null;column:url" json:"url"`
	ThumbnailURL *string    `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	Caption      *string    `gorm:"column:caption" json:"caption,omitempty"`
	IsPrimary    bool       `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	FileSize     *int64     `gorm:"column:file_size" json:"file_size,omitempty"`
	Width        *int       `gorm:"column:width" json:"width,omitempty"`
	Height       *int       `gorm:"column:height" json:"height,omitempty"`
	TakenAt      *time.Time `gorm:"column:taken_at" json:"taken_at,omitempty"`
	SortOrder    int        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (PlantImage) TableName() string { return "plant_image" }
