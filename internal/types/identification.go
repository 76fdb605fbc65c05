package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	FeedbackCorrect   = "correct"
	FeedbackIncorrect = "incorrect"
	FeedbackSkipped   = "skipped"
)

// Prediction is one candidate species from the recognizer, rank 1 being the
// highest-confidence match. Rank matches list position (1-based).
type Prediction struct {
	Rank           int     `json:"rank"`
	Name           string  `json:"name"`
	ScientificName *string `json:"scientific_name,omitempty"`
	Confidence     float64 `json:"confidence"`
	BaikeURL       *string `json:"baike_url,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// Identification stores one recognition request and its ranked predictions.
// ImageHash dedupes byte-identical requests inside the TTL window. A plant
// created from a record back-references it via Plant.IdentificationID; the
// link here (SelectedPlantID) is weak, deleting the record never deletes the
// plant and vice versa.
type Identification struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ImageURL        string         `gorm:"not null;column:image_url" json:"image_url"`
	ImageHash       *string        `gorm:"column:image_hash;index" json:"image_hash,omitempty"`
	APIProvider     string         `gorm:"column:api_provider;not null;default:'baidu'" json:"api_provider"`
	RequestID       *string        `gorm:"column:request_id" json:"request_id,omitempty"`
	Predictions     datatypes.JSON `gorm:"column:predictions;not null" json:"predictions"`
	SelectedPlantID *uuid.UUID     `gorm:"type:uuid;column:selected_plant_id;index" json:"selected_plant_id,omitempty"`
	Feedback        *string        `gorm:"column:feedback" json:"feedback,omitempty"`
	CorrectName     *string        `gorm:"column:correct_name" json:"correct_name,omitempty"`
	ProcessingTime  *float64       `gorm:"column:processing_time" json:"processing_time,omitempty"`
	Cached          bool           `gorm:"column:cached;not null;default:false" json:"cached"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (Identification) TableName() string { return "identification" }

func (i *Identification) PredictionList() ([]Prediction, error) {
	var out []Prediction
	if len(i.Predictions) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(i.Predictions, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func ValidFeedback(v string) bool {
	switch v {
	case FeedbackCorrect, FeedbackIncorrect, FeedbackSkipped:
		return true
	default:
		return false
	}
}
