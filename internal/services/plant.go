package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type PlantInput struct {
	RoomID         uuid.UUID
	ShelfID        *uuid.UUID
	Name           string
	ScientificName *string
	Description    *string
	PurchaseDate   *time.Time
	HealthStatus   string
}

type PlantUpdate struct {
	Name           *string
	ScientificName *string
	Description    *string
	PurchaseDate   *time.Time
	HealthStatus   *string
}

// PlantView is a plant joined with its primary image for list rendering.
type PlantView struct {
	*types.Plant
	PrimaryImage *types.PlantImage `json:"primary_image,omitempty"`
}

type PlantService interface {
	CreatePlant(ctx context.Context, in PlantInput) (*types.Plant, error)
	GetPlant(ctx context.Context, id uuid.UUID) (*PlantView, error)
	GetPlants(ctx context.Context, filter repos.PlantFilter, offset, limit int) ([]*PlantView, int64, error)
	UpdatePlant(ctx context.Context, id uuid.UUID, in PlantUpdate) (*types.Plant, error)
	ArchivePlant(ctx context.Context, id uuid.UUID) error
	RestorePlant(ctx context.Context, id uuid.UUID) (*types.Plant, error)
	PermanentDeletePlant(ctx context.Context, id uuid.UUID) ([]string, error)
}

type plantService struct {
	db         *gorm.DB
	log        *logger.Logger
	plantRepo  repos.PlantRepo
	roomRepo   repos.RoomRepo
	shelfRepo  repos.ShelfRepo
	imageRepo  repos.PlantImageRepo
	configRepo repos.CareConfigRepo
	shelfSvc   ShelfService
	media      *MediaStore
}

func NewPlantService(
	db *gorm.DB,
	baseLog *logger.Logger,
	plantRepo repos.PlantRepo,
	roomRepo repos.RoomRepo,
	shelfRepo repos.ShelfRepo,
	imageRepo repos.PlantImageRepo,
	configRepo repos.CareConfigRepo,
	shelfSvc ShelfService,
	media *MediaStore,
) PlantService {
	return &plantService{
		db:         db,
		log:        baseLog.With("service", "PlantService"),
		plantRepo:  plantRepo,
		roomRepo:   roomRepo,
		shelfRepo:  shelfRepo,
		imageRepo:  imageRepo,
		configRepo: configRepo,
		shelfSvc:   shelfSvc,
		media:      media,
	}
}

// CreatePlant stores a manually added plant. Without an explicit shelf the
// plant is appended to its room's default shelf.
func (s *plantService) CreatePlant(ctx context.Context, in PlantInput) (*types.Plant, error) {
	if in.Name == "" {
		return nil, apierr.Validation("plant name must not be empty")
	}
	healthStatus := in.HealthStatus
	if healthStatus == "" {
		healthStatus = types.HealthHealthy
	}
	if !types.ValidHealthStatus(healthStatus) {
		return nil, apierr.Validation("invalid health_status %q", healthStatus)
	}

	room, err := s.roomRepo.GetByID(ctx, nil, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("room")
	}

	now := time.Now()
	plant := &types.Plant{
		ID:             uuid.New(),
		RoomID:         in.RoomID,
		Name:           in.Name,
		ScientificName: in.ScientificName,
		Description:    in.Description,
		PurchaseDate:   in.PurchaseDate,
		HealthStatus:   healthStatus,
		IsActive:       true,
		Source:         types.PlantSourceManual,
		CreatedAt:      now,
		UpdatedAt:      now,
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
				return fmt.Errorf("count plants: %w", err)
			}
			plant.ShelfID = &shelf.ID
			plant.ShelfOrder = int(count)
		} else {
			if err := s.shelfSvc.AssignDefaultShelf(ctx, tx, plant); err != nil {
				return err
			}
		}
		return s.plantRepo.Create(ctx, tx, plant)
	})
	if err != nil {
		s.log.Error("CreatePlant failed", "error", err)
		return nil, err
	}
	return plant, nil
}

func (s *plantService) GetPlant(ctx context.Context, id uuid.UUID) (*PlantView, error) {
	plant, err := s.plantRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}
	primary, err := s.imageRepo.GetPrimary(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load primary image: %w", err)
	}
	return &PlantView{Plant: plant, PrimaryImage: primary}, nil
}

func (s *plantService) GetPlants(ctx context.Context, filter repos.PlantFilter, offset, limit int) ([]*PlantView, int64, error) {
	plants, err := s.plantRepo.List(ctx, nil, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list plants: %w", err)
	}
	total, err := s.plantRepo.Count(ctx, nil, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count plants: %w", err)
	}
	views := make([]*PlantView, 0, len(plants))
	for _, plant := range plants {
		primary, err := s.imageRepo.GetPrimary(ctx, nil, plant.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("load primary image: %w", err)
		}
		views = append(views, &PlantView{Plant: plant, PrimaryImage: primary})
	}
	return views, total, nil
}

func (s *plantService) UpdatePlant(ctx context.Context, id uuid.UUID, in PlantUpdate) (*types.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apierr.Validation("plant name must not be empty")
		}
		plant.Name = *in.Name
	}
	if in.HealthStatus != nil {
		if !types.ValidHealthStatus(*in.HealthStatus) {
			return nil, apierr.Validation("invalid health_status %q", *in.HealthStatus)
		}
		plant.HealthStatus = *in.HealthStatus
	}
	if in.ScientificName != nil {
		plant.ScientificName = in.ScientificName
	}
	if in.Description != nil {
		plant.Description = in.Description
	}
	if in.PurchaseDate != nil {
		plant.PurchaseDate = in.PurchaseDate
	}
	plant.UpdatedAt = time.Now()

	if err := s.plantRepo.Save(ctx, nil, plant); err != nil {
		return nil, fmt.Errorf("save plant: %w", err)
	}
	return plant, nil
}

// ArchivePlant soft-deletes: the plant drops out of default listings but
// keeps its images, configs and shelf position, and can be restored.
func (s *plantService) ArchivePlant(ctx context.Context, id uuid.UUID) error {
	plant, err := s.plantRepo.GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return apierr.NotFound("plant")
	}
	plant.IsActive = false
	plant.UpdatedAt = time.Now()
	return s.plantRepo.Save(ctx, nil, plant)
}

func (s *plantService) RestorePlant(ctx context.Context, id uuid.UUID) (*types.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}
	plant.IsActive = true
	plant.UpdatedAt = time.Now()
	if err := s.plantRepo.Save(ctx, nil, plant); err != nil {
		return nil, fmt.Errorf("save plant: %w", err)
	}
	return plant, nil
}

// PermanentDeletePlant removes the plant with its images and care configs in
// one transaction. Image files on disk are removed after commit, best-effort;
// failures come back as warnings, never as an error.
func (s *plantService) PermanentDeletePlant(ctx context.Context, id uuid.UUID) ([]string, error) {
	plant, err := s.plantRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}

	images, err := s.imageRepo.ListByPlantID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.configRepo.DeleteByPlantID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete configs: %w", err)
		}
		if err := s.imageRepo.DeleteByPlantID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := s.plantRepo.DeleteByID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete plant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, img := range images {
		if err := s.media.Delete(img.URL); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete image file %s: %v", img.URL, err))
		}
		if img.ThumbnailURL != nil {
			if err := s.media.Delete(*img.ThumbnailURL); err != nil {
				warnings = append(warnings, fmt.Sprintf("delete thumbnail %s: %v", *img.ThumbnailURL, err))
			}
		}
	}
	for _, warning := range warnings {
		s.log.Warn("Cleanup after permanent delete", "plant_id", id, "warning", warning)
	}
	return warnings, nil
}
