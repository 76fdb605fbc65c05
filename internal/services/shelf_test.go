package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
)

func TestCreateRoomProvisionsDefaultShelf(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Living Room")

	shelf, err := e.shelfRepo.GetDefaultByRoomID(ctx, nil, room.ID)
	require.NoError(t, err)
	require.NotNil(t, shelf, "room must be born with a default shelf")
	require.True(t, shelf.IsDefault)

	views, err := e.shelves.GetShelves(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestDefaultShelfSortsFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Balcony")
	_, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "Window sill"})
	require.NoError(t, err)
	_, err = e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "Corner rack"})
	require.NoError(t, err)

	views, err := e.shelves.GetShelves(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.True(t, views[0].IsDefault, "default shelf must list first")
	require.Equal(t, "Window sill", views[1].Name)
	require.Equal(t, "Corner rack", views[2].Name)
}

func TestPlantsAppendToDefaultShelf(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Study")
	names := []string{"Monstera", "Pothos", "Snake Plant"}
	for _, name := range names {
		_, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: name})
		require.NoError(t, err)
	}

	shelf, err := e.shelfRepo.GetDefaultByRoomID(ctx, nil, room.ID)
	require.NoError(t, err)
	view, err := e.shelves.GetShelf(ctx, shelf.ID)
	require.NoError(t, err)
	require.Len(t, view.Plants, 3)
	for i, plant := range view.Plants {
		require.Equal(t, names[i], plant.Name, "append order must be creation order")
		require.Equal(t, i, plant.ShelfOrder)
	}
}

func TestDefaultShelfNotDeletable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Hall")
	shelf, err := e.shelfRepo.GetDefaultByRoomID(ctx, nil, room.ID)
	require.NoError(t, err)

	err = e.shelves.DeleteShelf(ctx, shelf.ID)
	require.Error(t, err)
	require.True(t, apierr.IsValidation(err))
}

func TestDeleteShelfDetachesPlants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Kitchen")
	shelf, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "Herb rack"})
	require.NoError(t, err)
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, ShelfID: &shelf.ID, Name: "Basil"})
	require.NoError(t, err)

	require.NoError(t, e.shelves.DeleteShelf(ctx, shelf.ID))

	reloaded, err := e.plantRepo.GetByID(ctx, nil, plant.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.ShelfID, "plant survives shelf deletion unshelved")
}

func TestMoveToShelfAppends(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Bedroom")
	shelf, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "Nightstand"})
	require.NoError(t, err)

	_, err = e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, ShelfID: &shelf.ID, Name: "Aloe"})
	require.NoError(t, err)
	mover, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Cactus"})
	require.NoError(t, err)

	result, err := e.shelves.MoveToShelf(ctx, mover.ID, &shelf.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.Plant.ShelfOrder, "move without order appends after existing plants")
	require.NotNil(t, result.OldShelfID)
	require.Equal(t, shelf.ID, *result.NewShelfID)
}

func TestMoveToShelfAcrossRoomsFollowsRoom(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	roomA := e.mustCreateRoom(t, ctx, "Room A")
	roomB := e.mustCreateRoom(t, ctx, "Room B")
	shelfB, err := e.shelves.CreateShelf(ctx, roomB.ID, ShelfInput{Name: "B rack"})
	require.NoError(t, err)

	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: roomA.ID, Name: "Fern"})
	require.NoError(t, err)

	result, err := e.shelves.MoveToShelf(ctx, plant.ID, &shelfB.ID, nil)
	require.NoError(t, err)
	require.Equal(t, roomB.ID, result.Plant.RoomID, "plant follows the target shelf's room")
}

func TestMoveToNilDetaches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Porch")
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Ivy"})
	require.NoError(t, err)
	require.NotNil(t, plant.ShelfID)

	result, err := e.shelves.MoveToShelf(ctx, plant.ID, nil, nil)
	require.NoError(t, err)
	require.Nil(t, result.Plant.ShelfID)
	require.Nil(t, result.NewShelfID)
}

func TestReorderPlantsSkipsForeign(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Office")
	shelf, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "Desk"})
	require.NoError(t, err)

	onShelf, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, ShelfID: &shelf.ID, Name: "Bonsai"})
	require.NoError(t, err)
	elsewhere, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Palm"})
	require.NoError(t, err)

	err = e.shelves.ReorderPlants(ctx, shelf.ID, []PlantOrder{
		{PlantID: onShelf.ID, Order: 5},
		{PlantID: elsewhere.ID, Order: 9},
	})
	require.NoError(t, err, "foreign plants are skipped, not rejected")

	reloaded, err := e.plantRepo.GetByID(ctx, nil, onShelf.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.ShelfOrder)

	untouched, err := e.plantRepo.GetByID(ctx, nil, elsewhere.ID)
	require.NoError(t, err)
	require.NotEqual(t, 9, untouched.ShelfOrder)
}

func TestReorderShelvesIgnoresDefault(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Lounge")
	defaultShelf, err := e.shelfRepo.GetDefaultByRoomID(ctx, nil, room.ID)
	require.NoError(t, err)
	a, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "A"})
	require.NoError(t, err)
	b, err := e.shelves.CreateShelf(ctx, room.ID, ShelfInput{Name: "B"})
	require.NoError(t, err)

	err = e.shelves.ReorderShelves(ctx, room.ID, []uuid.UUID{b.ID, defaultShelf.ID, a.ID})
	require.NoError(t, err)

	views, err := e.shelves.GetShelves(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.True(t, views[0].IsDefault, "default stays first regardless of the request")
	require.Equal(t, "B", views[1].Name)
	require.Equal(t, "A", views[2].Name)
}
