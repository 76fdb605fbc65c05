package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

func TestCreatePlantValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.mustCreateRoom(t, ctx, "Validation")

	_, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: ""})
	require.True(t, apierr.IsValidation(err))

	_, err = e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "X", HealthStatus: "thriving"})
	require.True(t, apierr.IsValidation(err))

	otherRoom := e.mustCreateRoom(t, ctx, "Other")
	foreignShelf, err := e.shelves.CreateShelf(ctx, otherRoom.ID, ShelfInput{Name: "Elsewhere"})
	require.NoError(t, err)
	_, err = e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, ShelfID: &foreignShelf.ID, Name: "X"})
	require.True(t, apierr.IsValidation(err), "a shelf from another room must be rejected")
}

func TestArchiveHidesPlantFromDefaultListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.mustCreateRoom(t, ctx, "Archive room")

	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Begonia"})
	require.NoError(t, err)
	require.NoError(t, e.plants.ArchivePlant(ctx, plant.ID))

	active := true
	views, total, err := e.plants.GetPlants(ctx, repos.PlantFilter{IsActive: &active}, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
	require.Empty(t, views)

	// Unfiltered it is still there, and restore brings it back.
	_, total, err = e.plants.GetPlants(ctx, repos.PlantFilter{}, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	restored, err := e.plants.RestorePlant(ctx, plant.ID)
	require.NoError(t, err)
	require.True(t, restored.IsActive)
}

func TestGetPlantsFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	roomA := e.mustCreateRoom(t, ctx, "Room A")
	roomB := e.mustCreateRoom(t, ctx, "Room B")

	_, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: roomA.ID, Name: "Monstera deliciosa"})
	require.NoError(t, err)
	_, err = e.plants.CreatePlant(ctx, PlantInput{RoomID: roomA.ID, Name: "Sick fern", HealthStatus: types.HealthSick})
	require.NoError(t, err)
	_, err = e.plants.CreatePlant(ctx, PlantInput{RoomID: roomB.ID, Name: "Monstera adansonii"})
	require.NoError(t, err)

	_, total, err := e.plants.GetPlants(ctx, repos.PlantFilter{RoomID: &roomA.ID}, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	_, total, err = e.plants.GetPlants(ctx, repos.PlantFilter{HealthStatus: types.HealthSick}, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	views, total, err := e.plants.GetPlants(ctx, repos.PlantFilter{Search: "Monstera"}, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, views, 2)
}

func TestPermanentDeleteRemovesEverything(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.mustCreateRoom(t, ctx, "Delete room")

	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Doomed"})
	require.NoError(t, err)
	img, _, err := e.images.UploadImage(ctx, plant.ID, "photo.png", pngBytes(t, 40, 40), nil, true, nil)
	require.NoError(t, err)
	taskType, err := e.taskTypeRepo.GetByCode(ctx, nil, types.TaskWatering)
	require.NoError(t, err)
	config, err := e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{TaskTypeID: taskType.ID, IntervalDays: 7})
	require.NoError(t, err)

	warnings, err := e.plants.PermanentDeletePlant(ctx, plant.ID)
	require.NoError(t, err)
	require.Empty(t, warnings)

	gonePlant, err := e.plantRepo.GetByID(ctx, nil, plant.ID)
	require.NoError(t, err)
	require.Nil(t, gonePlant)
	goneImage, err := e.imageRepo.GetByID(ctx, nil, img.ID)
	require.NoError(t, err)
	require.Nil(t, goneImage)
	goneConfig, err := e.configRepo.GetByID(ctx, nil, config.ID)
	require.NoError(t, err)
	require.Nil(t, goneConfig)
	_, err = e.media.Read(img.URL)
	require.Error(t, err, "image files are removed with the plant")
}

func TestDeleteRoomRejectedWhileOccupied(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.mustCreateRoom(t, ctx, "Occupied")

	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Squatter"})
	require.NoError(t, err)

	err = e.rooms.DeleteRoom(ctx, room.ID)
	require.True(t, apierr.IsValidation(err), "a room holding plants must not be deletable")

	_, err = e.plants.PermanentDeletePlant(ctx, plant.ID)
	require.NoError(t, err)
	require.NoError(t, e.rooms.DeleteRoom(ctx, room.ID))

	shelf, err := e.shelfRepo.GetDefaultByRoomID(ctx, nil, room.ID)
	require.NoError(t, err)
	require.Nil(t, shelf, "shelves go with their room")
}

func TestRoomPlantCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	room := e.mustCreateRoom(t, ctx, "Counted")

	for _, name := range []string{"One", "Two"} {
		_, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: name})
		require.NoError(t, err)
	}
	view, err := e.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, view.PlantCount)
}
