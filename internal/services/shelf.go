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

type ShelfInput struct {
	Name        string
	Description *string
	Capacity    *int
}

type ShelfUpdate struct {
	Name        *string
	Description *string
	Capacity    *int
	IsActive    *bool
}

// ShelfView is a shelf joined with its plant count (and, for detail reads,
// the plants themselves in shelf order).
type ShelfView struct {
	*types.Shelf
	PlantCount int64          `json:"plant_count"`
	Plants     []*types.Plant `json:"plants,omitempty"`
}

// PlantOrder is one (plant, order) pair for reordering a shelf.
type PlantOrder struct {
	PlantID uuid.UUID `json:"plant_id"`
	Order   int       `json:"order"`
}

// MoveResult reports a shelf move for observability: which shelf the plant
// left and which it landed on.
type MoveResult struct {
	Plant      *types.Plant `json:"plant"`
	OldShelfID *uuid.UUID   `json:"old_shelf_id,omitempty"`
	NewShelfID *uuid.UUID   `json:"new_shelf_id,omitempty"`
}

type ShelfService interface {
	CreateShelf(ctx context.Context, roomID uuid.UUID, in ShelfInput) (*ShelfView, error)
	GetShelf(ctx context.Context, id uuid.UUID) (*ShelfView, error)
	GetShelves(ctx context.Context, roomID uuid.UUID) ([]*ShelfView, error)
	UpdateShelf(ctx context.Context, id uuid.UUID, in ShelfUpdate) (*ShelfView, error)
	DeleteShelf(ctx context.Context, id uuid.UUID) error
	ReorderShelves(ctx context.Context, roomID uuid.UUID, orderedShelfIDs []uuid.UUID) error
	MoveToShelf(ctx context.Context, plantID uuid.UUID, targetShelfID *uuid.UUID, newOrder *int) (*MoveResult, error)
	ReorderPlants(ctx context.Context, shelfID uuid.UUID, orders []PlantOrder) error
	// AssignDefaultShelf appends the plant to its room's default shelf.
	// Invoked on plant creation when no shelf was specified.
	AssignDefaultShelf(ctx context.Context, tx *gorm.DB, plant *types.Plant) error
}

type shelfService struct {
	db        *gorm.DB
	log       *logger.Logger
	shelfRepo repos.ShelfRepo
	plantRepo repos.PlantRepo
	roomRepo  repos.RoomRepo
}

func NewShelfService(
	db *gorm.DB,
	baseLog *logger.Logger,
	shelfRepo repos.ShelfRepo,
	plantRepo repos.PlantRepo,
	roomRepo repos.RoomRepo,
) ShelfService {
	return &shelfService{
		db:        db,
		log:       baseLog.With("service", "ShelfService"),
		shelfRepo: shelfRepo,
		plantRepo: plantRepo,
		roomRepo:  roomRepo,
	}
}

func (s *shelfService) CreateShelf(ctx context.Context, roomID uuid.UUID, in ShelfInput) (*ShelfView, error) {
	if in.Name == "" {
		return nil, apierr.Validation("shelf name must not be empty")
	}
	capacity := 10
	if in.Capacity != nil {
		capacity = *in.Capacity
	}
	if capacity < 0 {
		return nil, apierr.Validation("capacity must be >= 0, got %d", capacity)
	}

	room, err := s.roomRepo.GetByID(ctx, nil, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("room")
	}

	count, err := s.shelfRepo.CountByRoomID(ctx, nil, roomID)
	if err != nil {
		return nil, fmt.Errorf("count shelves: %w", err)
	}

	now := time.Now()
	shelf := &types.Shelf{
		ID:          uuid.New(),
		RoomID:      roomID,
		Name:        in.Name,
		Description: in.Description,
		SortOrder:   int(count),
		Capacity:    capacity,
		IsActive:    true,
		IsDefault:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.shelfRepo.Create(ctx, nil, shelf); err != nil {
		return nil, fmt.Errorf("create shelf: %w", err)
	}
	return &ShelfView{Shelf: shelf, PlantCount: 0}, nil
}

func (s *shelfService) GetShelf(ctx context.Context, id uuid.UUID) (*ShelfView, error) {
	shelf, err := s.shelfRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load shelf: %w", err)
	}
	if shelf == nil {
		return nil, apierr.NotFound("shelf")
	}
	plants, err := s.plantRepo.ListByShelfID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	return &ShelfView{Shelf: shelf, PlantCount: int64(len(plants)), Plants: plants}, nil
}

func (s *shelfService) GetShelves(ctx context.Context, roomID uuid.UUID) ([]*ShelfView, error) {
	shelves, err := s.shelfRepo.ListByRoomID(ctx, nil, roomID)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	views := make([]*ShelfView, 0, len(shelves))
	for _, shelf := range shelves {
		count, err := s.plantRepo.CountByShelfID(ctx, nil, shelf.ID)
		if err != nil {
			return nil, fmt.Errorf("count plants: %w", err)
		}
		views = append(views, &ShelfView{Shelf: shelf, PlantCount: count})
	}
	return views, nil
}

// UpdateShelf never touches IsDefault: the flag is set at room creation and
// stays put for the shelf's lifetime.
func (s *shelfService) UpdateShelf(ctx context.Context, id uuid.UUID, in ShelfUpdate) (*ShelfView, error) {
	shelf, err := s.shelfRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load shelf: %w", err)
	}
	if shelf == nil {
		return nil, apierr.NotFound("shelf")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apierr.Validation("shelf name must not be empty")
		}
		shelf.Name = *in.Name
	}
	if in.Capacity != nil {
		if *in.Capacity < 0 {
			return nil, apierr.Validation("capacity must be >= 0, got %d", *in.Capacity)
		}
		shelf.Capacity = *in.Capacity
	}
	if in.Description != nil {
		shelf.Description = in.Description
	}
	if in.IsActive != nil {
		shelf.IsActive = *in.IsActive
	}
	shelf.UpdatedAt = time.Now()

	if err := s.shelfRepo.Save(ctx, nil, shelf); err != nil {
		return nil, fmt.Errorf("save shelf: %w", err)
	}
	count, err := s.plantRepo.CountByShelfID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("count plants: %w", err)
	}
	return &ShelfView{Shelf: shelf, PlantCount: count}, nil
}

// DeleteShelf detaches the shelf's plants (shelf_id goes NULL, shelf_order is
// left untouched) and removes the shelf. The default shelf is not deletable.
func (s *shelfService) DeleteShelf(ctx context.Context, id uuid.UUID) error {
	shelf, err := s.shelfRepo.GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("load shelf: %w", err)
	}
	if shelf == nil {
		return apierr.NotFound("shelf")
	}
	if shelf.IsDefault {
		return apierr.Validation("the default shelf cannot be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.plantRepo.DetachFromShelf(ctx, tx, id); err != nil {
			return fmt.Errorf("detach plants: %w", err)
		}
		if err := s.shelfRepo.DeleteByID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete shelf: %w", err)
		}
		return nil
	})
}

// ReorderShelves assigns sort_order = position for the given sequence,
// restricted to the room's non-default shelves. The default shelf never takes
// part; it sorts first through the default-first read comparator instead. The
// whole batch applies in one transaction.
func (s *shelfService) ReorderShelves(ctx context.Context, roomID uuid.UUID, orderedShelfIDs []uuid.UUID) error {
	shelves, err := s.shelfRepo.ListNonDefaultByRoomID(ctx, nil, roomID)
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}
	inRoom := make(map[uuid.UUID]bool, len(shelves))
	for _, shelf := range shelves {
		inRoom[shelf.ID] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for index, shelfID := range orderedShelfIDs {
			if !inRoom[shelfID] {
				s.log.Warn("Skipping shelf not reorderable in room", "shelf_id", shelfID, "room_id", roomID)
				continue
			}
			if err := s.shelfRepo.UpdateSortOrder(ctx, tx, shelfID, index); err != nil {
				return fmt.Errorf("update shelf order: %w", err)
			}
		}
		return nil
	})
}

// MoveToShelf reassigns a plant's shelf. A nil target detaches the plant
// without renumbering the vacated shelf (gaps are tolerated). Moving onto a
// shelf in another room also moves the plant to that room; that coupling is
// deliberate and logged.
func (s *shelfService) MoveToShelf(ctx context.Context, plantID uuid.UUID, targetShelfID *uuid.UUID, newOrder *int) (*MoveResult, error) {
	plant, err := s.plantRepo.GetByID(ctx, nil, plantID)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}

	oldShelfID := plant.ShelfID

	if targetShelfID == nil {
		plant.ShelfID = nil
		plant.UpdatedAt = time.Now()
		if err := s.plantRepo.Save(ctx, nil, plant); err != nil {
			return nil, fmt.Errorf("save plant: %w", err)
		}
		s.log.Debug("Plant detached from shelf", "plant_id", plantID, "old_shelf_id", oldShelfID)
		return &MoveResult{Plant: plant, OldShelfID: oldShelfID, NewShelfID: nil}, nil
	}

	shelf, err := s.shelfRepo.GetByID(ctx, nil, *targetShelfID)
	if err != nil {
		return nil, fmt.Errorf("load shelf: %w", err)
	}
	if shelf == nil {
		return nil, apierr.NotFound("shelf")
	}

	// Append position is computed before the move so that a plant already on
	// the target shelf does not count itself twice.
	order := 0
	if newOrder != nil {
		order = *newOrder
	} else {
		count, err := s.plantRepo.CountByShelfID(ctx, nil, shelf.ID)
		if err != nil {
			return nil, fmt.Errorf("count plants: %w", err)
		}
		order = int(count)
	}

	if plant.RoomID != shelf.RoomID {
		s.log.Info("Cross-room shelf move, plant follows the shelf's room",
			"plant_id", plantID, "from_room_id", plant.RoomID, "to_room_id", shelf.RoomID)
		plant.RoomID = shelf.RoomID
	}
	plant.ShelfID = &shelf.ID
	plant.ShelfOrder = order
	plant.UpdatedAt = time.Now()

	if err := s.plantRepo.Save(ctx, nil, plant); err != nil {
		return nil, fmt.Errorf("save plant: %w", err)
	}
	return &MoveResult{Plant: plant, OldShelfID: oldShelfID, NewShelfID: &shelf.ID}, nil
}

// ReorderPlants applies (plant, order) pairs in one transaction. Pairs naming
// plants that are not on the shelf are skipped, not rejected.
func (s *shelfService) ReorderPlants(ctx context.Context, shelfID uuid.UUID, orders []PlantOrder) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range orders {
			plant, err := s.plantRepo.GetByID(ctx, tx, item.PlantID)
			if err != nil {
				return fmt.Errorf("load plant: %w", err)
			}
			if plant == nil || plant.ShelfID == nil || *plant.ShelfID != shelfID {
				s.log.Warn("Skipping plant not on shelf", "plant_id", item.PlantID, "shelf_id", shelfID)
				continue
			}
			if err := s.plantRepo.UpdateShelfOrder(ctx, tx, item.PlantID, item.Order); err != nil {
				return fmt.Errorf("update shelf order: %w", err)
			}
		}
		return nil
	})
}

func (s *shelfService) AssignDefaultShelf(ctx context.Context, tx *gorm.DB, plant *types.Plant) error {
	defaultShelf, err := s.shelfRepo.GetDefaultByRoomID(ctx, tx, plant.RoomID)
	if err != nil {
		return fmt.Errorf("load default shelf: %w", err)
	}
	if defaultShelf == nil {
		// Every room-creation path provisions one; a missing default shelf
		// leaves the plant shelf-less rather than failing creation.
		s.log.Warn("Room has no default shelf, plant left unshelved", "room_id", plant.RoomID)
		return nil
	}
	count, err := s.plantRepo.CountByShelfID(ctx, tx, defaultShelf.ID)
	if err != nil {
		return fmt.Errorf("count plants: %w", err)
	}
	plant.ShelfID = &defaultShelf.ID
	plant.ShelfOrder = int(count)
	return nil
}
