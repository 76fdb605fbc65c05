package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

const maxUploadBytes = 10 << 20

type ImageInput struct {
	URL          string
	ThumbnailURL *string
	Caption      *string
	IsPrimary    bool
	TakenAt      *time.Time
	SortOrder    int
}

type ImageUpdate struct {
	Caption   *string
	TakenAt   *time.Time
	SortOrder *int
}

type ImageService interface {
	GetImages(ctx context.Context, plantID uuid.UUID) ([]*types.PlantImage, error)
	GetImage(ctx context.Context, plantID, imageID uuid.UUID) (*types.PlantImage, error)
	AddImage(ctx context.Context, plantID uuid.UUID, in ImageInput) (*types.PlantImage, error)
	UploadImage(ctx context.Context, plantID uuid.UUID, filename string, data []byte, caption *string, isPrimary bool, takenAt *time.Time) (*types.PlantImage, []string, error)
	UpdateImage(ctx context.Context, imageID uuid.UUID, in ImageUpdate) (*types.PlantImage, error)
	SetPrimary(ctx context.Context, plantID, imageID uuid.UUID) (*types.PlantImage, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) ([]string, error)
}

type imageService struct {
	db        *gorm.DB
	log       *logger.Logger
	imageRepo repos.PlantImageRepo
	plantRepo repos.PlantRepo
	media     *MediaStore
}

func NewImageService(
	db *gorm.DB,
	baseLog *logger.Logger,
	imageRepo repos.PlantImageRepo,
	plantRepo repos.PlantRepo,
	media *MediaStore,
) ImageService {
	return &imageService{
		db:        db,
		log:       baseLog.With("service", "ImageService"),
		imageRepo: imageRepo,
		plantRepo: plantRepo,
		media:     media,
	}
}

func (s *imageService) requirePlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, tx, plantID)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}
	return plant, nil
}

func (s *imageService) GetImages(ctx context.Context, plantID uuid.UUID) ([]*types.PlantImage, error) {
	if _, err := s.requirePlant(ctx, nil, plantID); err != nil {
		return nil, err
	}
	return s.imageRepo.ListByPlantID(ctx, nil, plantID)
}

func (s *imageService) GetImage(ctx context.Context, plantID, imageID uuid.UUID) (*types.PlantImage, error) {
	img, err := s.imageRepo.GetByID(ctx, nil, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil || img.PlantID != plantID {
		return nil, apierr.NotFound("image")
	}
	return img, nil
}

// AddImage records an externally hosted image. Flagging it primary unsets any
// existing primary in the same transaction so readers never observe two.
func (s *imageService) AddImage(ctx context.Context, plantID uuid.UUID, in ImageInput) (*types.PlantImage, error) {
	if in.URL == "" {
		return nil, apierr.Validation("image url must not be empty")
	}
	if _, err := s.requirePlant(ctx, nil, plantID); err != nil {
		return nil, err
	}

	img := &types.PlantImage{
		ID:           uuid.New(),
		PlantID:      plantID,
		URL:          in.URL,
		ThumbnailURL: in.ThumbnailURL,
		Caption:      in.Caption,
		IsPrimary:    in.IsPrimary,
		TakenAt:      in.TakenAt,
		SortOrder:    in.SortOrder,
		CreatedAt:    time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.IsPrimary {
			if err := s.imageRepo.UnsetPrimaryForPlant(ctx, tx, plantID); err != nil {
				return fmt.Errorf("unset primary: %w", err)
			}
		}
		return s.imageRepo.Create(ctx, tx, img)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// UploadImage stores raw bytes, generates a thumbnail and records the image.
// Thumbnail and dimension failures are warnings; the upload itself succeeds.
func (s *imageService) UploadImage(ctx context.Context, plantID uuid.UUID, filename string, data []byte, caption *string, isPrimary bool, takenAt *time.Time) (*types.PlantImage, []string, error) {
	if len(data) == 0 {
		return nil, nil, apierr.Validation("empty upload")
	}
	if len(data) > maxUploadBytes {
		return nil, nil, apierr.Validation("upload exceeds %d bytes", maxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedImageExt(ext) {
		return nil, nil, apierr.Validation("unsupported image extension %q", ext)
	}
	if mime := http.DetectContentType(data); !strings.HasPrefix(mime, "image/") {
		return nil, nil, apierr.Validation("unsupported content type %q", mime)
	}
	if _, err := s.requirePlant(ctx, nil, plantID); err != nil {
		return nil, nil, err
	}

	url, err := s.media.Save(filepath.Join("plant_images", plantID.String()), filename, data)
	if err != nil {
		return nil, nil, fmt.Errorf("store upload: %w", err)
	}

	var warnings []string
	var thumbURL *string
	if t, err := s.media.Thumbnail(url); err != nil {
		warnings = append(warnings, fmt.Sprintf("thumbnail: %v", err))
	} else {
		thumbURL = &t
	}
	var width, height *int
	if w, h, err := s.media.Dimensions(data); err != nil {
		warnings = append(warnings, fmt.Sprintf("dimensions: %v", err))
	} else {
		width, height = &w, &h
	}

	size := int64(len(data))
	img := &types.PlantImage{
		ID:           uuid.New(),
		PlantID:      plantID,
		URL:          url,
		ThumbnailURL: thumbURL,
		Caption:      caption,
		IsPrimary:    isPrimary,
		FileSize:     &size,
		Width:        width,
		Height:       height,
		TakenAt:      takenAt,
		CreatedAt:    time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if isPrimary {
			if err := s.imageRepo.UnsetPrimaryForPlant(ctx, tx, plantID); err != nil {
				return fmt.Errorf("unset primary: %w", err)
			}
		}
		return s.imageRepo.Create(ctx, tx, img)
	})
	if err != nil {
		// The record failed; do not leave the stored file behind.
		if cleanupErr := s.media.Delete(url); cleanupErr != nil {
			s.log.Warn("Orphaned upload cleanup failed", "url", url, "error", cleanupErr)
		}
		return nil, nil, err
	}
	for _, warning := range warnings {
		s.log.Warn("Upload side effect failed", "plant_id", plantID, "warning", warning)
	}
	return img, warnings, nil
}

func (s *imageService) UpdateImage(ctx context.Context, imageID uuid.UUID, in ImageUpdate) (*types.PlantImage, error) {
	img, err := s.imageRepo.GetByID(ctx, nil, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil {
		return nil, apierr.NotFound("image")
	}
	if in.Caption != nil {
		img.Caption = in.Caption
	}
	if in.TakenAt != nil {
		img.TakenAt = in.TakenAt
	}
	if in.SortOrder != nil {
		img.SortOrder = *in.SortOrder
	}
	if err := s.imageRepo.Save(ctx, nil, img); err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	return img, nil
}

// SetPrimary flips the primary flag to the given image. Unset-then-set runs
// inside one transaction: readers never see zero or two primaries where one
// existed before.
func (s *imageService) SetPrimary(ctx context.Context, plantID, imageID uuid.UUID) (*types.PlantImage, error) {
	img, err := s.imageRepo.GetByID(ctx, nil, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil || img.PlantID != plantID {
		return nil, apierr.NotFound("image")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.imageRepo.UnsetPrimaryForPlant(ctx, tx, plantID); err != nil {
			return fmt.Errorf("unset primary: %w", err)
		}
		return s.imageRepo.SetPrimary(ctx, tx, imageID)
	})
	if err != nil {
		return nil, err
	}
	img.IsPrimary = true
	return img, nil
}

// DeleteImage removes the record, then the files best-effort.
func (s *imageService) DeleteImage(ctx context.Context, imageID uuid.UUID) ([]string, error) {
	img, err := s.imageRepo.GetByID(ctx, nil, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil {
		return nil, apierr.NotFound("image")
	}
	if err := s.imageRepo.DeleteByID(ctx, nil, imageID); err != nil {
		return nil, fmt.Errorf("delete image: %w", err)
	}

	var warnings []string
	if err := s.media.Delete(img.URL); err != nil {
		warnings = append(warnings, fmt.Sprintf("delete file %s: %v", img.URL, err))
	}
	if img.ThumbnailURL != nil {
		if err := s.media.Delete(*img.ThumbnailURL); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete thumbnail %s: %v", *img.ThumbnailURL, err))
		}
	}
	for _, warning := range warnings {
		s.log.Warn("Image file cleanup failed", "image_id", imageID, "warning", warning)
	}
	return warnings, nil
}
