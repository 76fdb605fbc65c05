package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

// IdentifyResult is one recognition outcome. Cached marks a dedup hit: the
// predictions come from an earlier byte-identical request and no provider
// call was made.
type IdentifyResult struct {
	Identification *types.Identification `json:"identification"`
	Predictions    []types.Prediction    `json:"predictions"`
	Cached         bool                  `json:"cached"`
}

type AdoptInput struct {
	RoomID       uuid.UUID
	ShelfID      *uuid.UUID
	Name         *string
	Description  *string
	PurchaseDate *time.Time
	HealthStatus *string
	SelectedRank int
}

type IdentificationService interface {
	Identify(ctx context.Context, filename string, image []byte) (*IdentifyResult, error)
	GetIdentification(ctx context.Context, id uuid.UUID) (*types.Identification, error)
	History(ctx context.Context, plantID *uuid.UUID, offset, limit int) ([]*types.Identification, int64, error)
	CreatePlantFromIdentification(ctx context.Context, id uuid.UUID, in AdoptInput) (*types.Plant, []string, error)
	SubmitFeedback(ctx context.Context, id uuid.UUID, feedback string, plantID *uuid.UUID, correctName *string) (*types.Identification, error)
	DeleteIdentification(ctx context.Context, id uuid.UUID) ([]string, error)
}

type identificationService struct {
	db         *gorm.DB
	log        *logger.Logger
	identRepo  repos.IdentificationRepo
	plantRepo  repos.PlantRepo
	roomRepo   repos.RoomRepo
	shelfRepo  repos.ShelfRepo
	imageRepo  repos.PlantImageRepo
	shelfSvc   ShelfService
	media      *MediaStore
	recognizer Recognizer
	dedupTTL   time.Duration
}

func NewIdentificationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	identRepo repos.IdentificationRepo,
	plantRepo repos.PlantRepo,
	roomRepo repos.RoomRepo,
	shelfRepo repos.ShelfRepo,
	imageRepo repos.PlantImageRepo,
	shelfSvc ShelfService,
	media *MediaStore,
	recognizer Recognizer,
	dedupTTL time.Duration,
) IdentificationService {
	if dedupTTL <= 0 {
		dedupTTL = 24 * time.Hour
	}
	return &identificationService{
		db:         db,
		log:        baseLog.With("service", "IdentificationService"),
		identRepo:  identRepo,
		plantRepo:  plantRepo,
		roomRepo:   roomRepo,
		shelfRepo:  shelfRepo,
		imageRepo:  imageRepo,
		shelfSvc:   shelfSvc,
		media:      media,
		recognizer: recognizer,
		dedupTTL:   dedupTTL,
	}
}

func imageHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Identify hashes the upload before anything else. A record with the same
// hash inside the dedup window answers from storage; otherwise the image is
// persisted, sent to the recognizer and the result recorded. A failed
// provider call removes the stored file so retries start clean.
func (s *identificationService) Identify(ctx context.Context, filename string, image []byte) (*IdentifyResult, error) {
	if len(image) == 0 {
		return nil, apierr.Validation("empty upload")
	}
	if len(image) > maxUploadBytes {
		return nil, apierr.Validation("upload exceeds %d bytes", maxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedImageExt(ext) {
		return nil, apierr.Validation("unsupported image extension %q", ext)
	}

	hash := imageHash(image)
	cached, err := s.identRepo.GetByHashSince(ctx, nil, hash, time.Now().Add(-s.dedupTTL))
	if err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if cached != nil {
		predictions, err := cached.PredictionList()
		if err != nil {
			return nil, fmt.Errorf("decode cached predictions: %w", err)
		}
		s.log.Info("Identification served from cache", "identification_id", cached.ID, "image_hash", hash)
		return &IdentifyResult{Identification: cached, Predictions: predictions, Cached: true}, nil
	}

	url, err := s.media.Save("identifications", filename, image)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	started := time.Now()
	recognition, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		if cleanupErr := s.media.Delete(url); cleanupErr != nil {
			s.log.Warn("Failed-request cleanup", "url", url, "error", cleanupErr)
		}
		return nil, err
	}
	elapsed := time.Since(started).Seconds()
	predictions := recognition.Predictions

	raw, err := json.Marshal(predictions)
	if err != nil {
		return nil, fmt.Errorf("encode predictions: %w", err)
	}
	row := &types.Identification{
		ID:             uuid.New(),
		ImageURL:       url,
		ImageHash:      &hash,
		APIProvider:    "baidu",
		RequestID:      recognition.RequestID,
		Predictions:    datatypes.JSON(raw),
		ProcessingTime: &elapsed,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.identRepo.Create(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("store identification: %w", err)
	}
	s.log.Info("Identification completed",
		"identification_id", row.ID,
		"results", len(predictions),
		"elapsed_s", elapsed,
	)
	return &IdentifyResult{Identification: row, Predictions: predictions, Cached: false}, nil
}

func (s *identificationService) GetIdentification(ctx context.Context, id uuid.UUID) (*types.Identification, error) {
	row, err := s.identRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load identification: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("identification")
	}
	return row, nil
}

func (s *identificationService) History(ctx context.Context, plantID *uuid.UUID, offset, limit int) ([]*types.Identification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.identRepo.List(ctx, nil, plantID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list identifications: %w", err)
	}
	total, err := s.identRepo.Count(ctx, nil, plantID)
	if err != nil {
		return nil, 0, fmt.Errorf("count identifications: %w", err)
	}
	return rows, total, nil
}

// CreatePlantFromIdentification adopts one recognition result as a plant.
// The selected prediction seeds the name and scientific name, the adopted
// plant lands on a shelf like any manual creation, and the record is marked
// correct with a back-reference both ways. Copying the recognition photo
// onto the new plant is best-effort and reported through warnings.
func (s *identificationService) CreatePlantFromIdentification(ctx context.Context, id uuid.UUID, in AdoptInput) (*types.Plant, []string, error) {
	row, err := s.identRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load identification: %w", err)
	}
	if row == nil {
		return nil, nil, apierr.NotFound("identification")
	}
	predictions, err := row.PredictionList()
	if err != nil {
		return nil, nil, fmt.Errorf("decode predictions: %w", err)
	}
	if len(predictions) == 0 {
		return nil, nil, apierr.Validation("identification has no predictions to adopt")
	}
	rank := in.SelectedRank
	if rank == 0 {
		rank = 1
	}
	if rank < 1 || rank > len(predictions) {
		return nil, nil, apierr.Validation("selected rank %d out of range 1..%d", rank, len(predictions))
	}
	selected := predictions[rank-1]

	room, err := s.roomRepo.GetByID(ctx, nil, in.RoomID)
	if err != nil {
		return nil, nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, nil, apierr.NotFound("room")
	}

	name := selected.Name
	if in.Name != nil && *in.Name != "" {
		name = *in.Name
	}
	health := types.HealthHealthy
	if in.HealthStatus != nil {
		if !types.ValidHealthStatus(*in.HealthStatus) {
			return nil, nil, apierr.Validation("invalid health status %q", *in.HealthStatus)
		}
		health = *in.HealthStatus
	}

	now := time.Now()
	plant := &types.Plant{
		ID:               uuid.New(),
		RoomID:           in.RoomID,
		Name:             name,
		ScientificName:   selected.ScientificName,
		Description:      in.Description,
		PurchaseDate:     in.PurchaseDate,
		HealthStatus:     health,
		IsActive:         true,
		IdentificationID: &row.ID,
		Source:           types.PlantSourceIdentify,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if plant.Description == nil && selected.Description != nil {
		plant.Description = selected.Description
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.ShelfID != nil {
			shelf, err := s.shelfRepo.GetByID(ctx, tx, *in.ShelfID)
			if err != nil {
				return fmt.Errorf("load shelf: %w", err)
			}
			if shelf == nil {
				return apierr.NotFound("shelf")
			}
			if shelf.RoomID != in.RoomID {
				return apierr.Validation("shelf belongs to a different room")
			}
			count, err := s.plantRepo.CountByShelfID(ctx, tx, shelf.ID)
			if err != nil {
				return fmt.Errorf("count shelf plants: %w", err)
			}
			plant.ShelfID = &shelf.ID
			plant.ShelfOrder = int(count)
		} else {
			if err := s.shelfSvc.AssignDefaultShelf(ctx, tx, plant); err != nil {
				return err
			}
		}
		if err := s.plantRepo.Create(ctx, tx, plant); err != nil {
			return fmt.Errorf("create plant: %w", err)
		}
		feedback := types.FeedbackCorrect
		row.Feedback = &feedback
		row.SelectedPlantID = &plant.ID
		row.UpdatedAt = now
		return s.identRepo.Save(ctx, tx, row)
	})
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	warnings = append(warnings, s.copyRecognitionPhoto(ctx, row, plant)...)
	for _, warning := range warnings {
		s.log.Warn("Adoption side effect failed", "plant_id", plant.ID, "warning", warning)
	}
	return plant, warnings, nil
}

// copyRecognitionPhoto duplicates the identification image as the new
// plant's primary photo. Every step is best-effort.
func (s *identificationService) copyRecognitionPhoto(ctx context.Context, row *types.Identification, plant *types.Plant) []string {
	ext := filepath.Ext(row.ImageURL)
	if ext == "" {
		ext = ".jpg"
	}
	destURL, err := s.media.Copy(row.ImageURL, filepath.Join("plant_images", plant.ID.String()), "identified"+ext)
	if err != nil {
		return []string{fmt.Sprintf("copy recognition photo: %v", err)}
	}

	var warnings []string
	var thumbURL *string
	if t, err := s.media.Thumbnail(destURL); err != nil {
		warnings = append(warnings, fmt.Sprintf("thumbnail: %v", err))
	} else {
		thumbURL = &t
	}

	img := &types.PlantImage{
		ID:           uuid.New(),
		PlantID:      plant.ID,
		URL:          destURL,
		ThumbnailURL: thumbURL,
		IsPrimary:    true,
		CreatedAt:    time.Now(),
	}
	if err := s.imageRepo.Create(ctx, nil, img); err != nil {
		warnings = append(warnings, fmt.Sprintf("record recognition photo: %v", err))
	}
	return warnings
}

// SubmitFeedback records whether a prediction was right. Last write wins
// across feedback, the linked plant and the corrected name; a submission
// without a plant id clears the link.
func (s *identificationService) SubmitFeedback(ctx context.Context, id uuid.UUID, feedback string, plantID *uuid.UUID, correctName *string) (*types.Identification, error) {
	if !types.ValidFeedback(feedback) {
		return nil, apierr.Validation("invalid feedback %q", feedback)
	}
	row, err := s.identRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load identification: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("identification")
	}
	row.Feedback = &feedback
	row.SelectedPlantID = plantID
	row.CorrectName = correctName
	row.UpdatedAt = time.Now()
	if err := s.identRepo.Save(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return row, nil
}

// DeleteIdentification removes the record. Plants adopted from it survive
// with their back-reference cleared; the image file removal is best-effort.
func (s *identificationService) DeleteIdentification(ctx context.Context, id uuid.UUID) ([]string, error) {
	row, err := s.identRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load identification: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("identification")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.plantRepo.ClearIdentificationRef(ctx, tx, id); err != nil {
			return fmt.Errorf("clear plant references: %w", err)
		}
		return s.identRepo.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	if err := s.media.Delete(row.ImageURL); err != nil {
		warnings = append(warnings, fmt.Sprintf("delete file %s: %v", row.ImageURL, err))
	}
	for _, warning := range warnings {
		s.log.Warn("Identification file cleanup failed", "identification_id", id, "warning", warning)
	}
	return warnings, nil
}
