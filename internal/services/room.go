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

type RoomInput struct {
	Name         string
	Description  *string
	LocationType string
	Icon         *string
	Color        *string
	SortOrder    int
}

type RoomUpdate struct {
	Name         *string
	Description  *string
	LocationType *string
	Icon         *string
	Color        *string
	SortOrder    *int
}

// RoomView is a room joined with its plant count.
type RoomView struct {
	*types.Room
	PlantCount int64 `json:"plant_count"`
}

type RoomService interface {
	CreateRoom(ctx context.Context, in RoomInput) (*types.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*RoomView, error)
	GetRooms(ctx context.Context, locationType string, offset, limit int) ([]*RoomView, int64, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, in RoomUpdate) (*types.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

type roomService struct {
	db        *gorm.DB
	log       *logger.Logger
	roomRepo  repos.RoomRepo
	shelfRepo repos.ShelfRepo
	plantRepo repos.PlantRepo
}

func NewRoomService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roomRepo repos.RoomRepo,
	shelfRepo repos.ShelfRepo,
	plantRepo repos.PlantRepo,
) RoomService {
	return &roomService{
		db:        db,
		log:       baseLog.With("service", "RoomService"),
		roomRepo:  roomRepo,
		shelfRepo: shelfRepo,
		plantRepo: plantRepo,
	}
}

// CreateRoom provisions the room together with its default shelf in one
// transaction. Every room has exactly one default shelf from birth; nothing
// else in the system is allowed to create or remove one.
func (s *roomService) CreateRoom(ctx context.Context, in RoomInput) (*types.Room, error) {
	if in.Name == "" {
		return nil, apierr.Validation("room name must not be empty")
	}
	locationType := in.LocationType
	if locationType == "" {
		locationType = types.LocationIndoor
	}
	if !types.ValidLocationType(locationType) {
		return nil, apierr.Validation("invalid location_type %q", locationType)
	}

	now := time.Now()
	room := &types.Room{
		ID:           uuid.New(),
		Name:         in.Name,
		Description:  in.Description,
		LocationType: locationType,
		Icon:         in.Icon,
		Color:        in.Color,
		SortOrder:    in.SortOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.roomRepo.Create(ctx, tx, room); err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		defaultShelf := &types.Shelf{
			ID:        uuid.New(),
			RoomID:    room.ID,
			Name:      "Default",
			Capacity:  10,
			IsActive:  true,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.shelfRepo.Create(ctx, tx, defaultShelf); err != nil {
			return fmt.Errorf("create default shelf: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("CreateRoom failed", "error", err)
		return nil, err
	}
	s.log.Info("Room created", "room_id", room.ID, "name", room.Name)
	return room, nil
}

func (s *roomService) GetRoom(ctx context.Context, id uuid.UUID) (*RoomView, error) {
	room, err := s.roomRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("room")
	}
	counts, err := s.plantRepo.CountByRoomIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("count plants: %w", err)
	}
	return &RoomView{Room: room, PlantCount: counts[id]}, nil
}

func (s *roomService) GetRooms(ctx context.Context, locationType string, offset, limit int) ([]*RoomView, int64, error) {
	rooms, err := s.roomRepo.List(ctx, nil, locationType, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	total, err := s.roomRepo.Count(ctx, nil, locationType)
	if err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	counts, err := s.plantRepo.CountByRoomIDs(ctx, nil, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("count plants: %w", err)
	}

	views := make([]*RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, &RoomView{Room: room, PlantCount: counts[room.ID]})
	}
	return views, total, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, id uuid.UUID, in RoomUpdate) (*types.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("room")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apierr.Validation("room name must not be empty")
		}
		room.Name = *in.Name
	}
	if in.LocationType != nil {
		if !types.ValidLocationType(*in.LocationType) {
			return nil, apierr.Validation("invalid location_type %q", *in.LocationType)
		}
		room.LocationType = *in.LocationType
	}
	if in.Description != nil {
		room.Description = in.Description
	}
	if in.Icon != nil {
		room.Icon = in.Icon
	}
	if in.Color != nil {
		room.Color = in.Color
	}
	if in.SortOrder != nil {
		room.SortOrder = *in.SortOrder
	}
	room.UpdatedAt = time.Now()

	if err := s.roomRepo.Save(ctx, nil, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}
	return room, nil
}

// DeleteRoom removes the room and its shelves. Rooms holding plants are
// rejected; the caller has to move or delete the plants first.
func (s *roomService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	room, err := s.roomRepo.GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return apierr.NotFound("room")
	}

	counts, err := s.plantRepo.CountByRoomIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("count plants: %w", err)
	}
	if counts[id] > 0 {
		return apierr.Validation("room still holds %d plant(s)", counts[id])
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		shelves, err := s.shelfRepo.ListByRoomID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("list shelves: %w", err)
		}
		for _, shelf := range shelves {
			if err := s.shelfRepo.DeleteByID(ctx, tx, shelf.ID); err != nil {
				return fmt.Errorf("delete shelf: %w", err)
			}
		}
		if err := s.roomRepo.DeleteByID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
}
