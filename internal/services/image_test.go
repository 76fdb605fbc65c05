package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

func (e *env) mustCreatePlant(t *testing.T, ctx context.Context, name string) *types.Plant {
	t.Helper()
	room := e.mustCreateRoom(t, ctx, "Room for "+name)
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: name})
	require.NoError(t, err)
	return plant
}

func (e *env) countPrimaries(t *testing.T, ctx context.Context, plantID uuid.UUID) int {
	t.Helper()
	images, err := e.imageRepo.ListByPlantID(ctx, nil, plantID)
	require.NoError(t, err)
	primaries := 0
	for _, img := range images {
		if img.IsPrimary {
			primaries++
		}
	}
	return primaries
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAddImagePrimaryStaysUnique(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Calathea")

	first, err := e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/a.jpg", IsPrimary: true})
	require.NoError(t, err)
	second, err := e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/b.jpg", IsPrimary: true})
	require.NoError(t, err)

	require.Equal(t, 1, e.countPrimaries(t, ctx, plant.ID))
	reloaded, err := e.imageRepo.GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsPrimary, "flagging a new primary unsets the old one")
	require.True(t, second.IsPrimary)
}

func TestSetPrimaryFlips(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Peace Lily")

	a, err := e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/a.jpg", IsPrimary: true})
	require.NoError(t, err)
	b, err := e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/b.jpg"})
	require.NoError(t, err)

	_, err = e.images.SetPrimary(ctx, plant.ID, b.ID)
	require.NoError(t, err)

	require.Equal(t, 1, e.countPrimaries(t, ctx, plant.ID))
	primary, err := e.imageRepo.GetPrimary(ctx, nil, plant.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, primary.ID)

	// Back again.
	_, err = e.images.SetPrimary(ctx, plant.ID, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, e.countPrimaries(t, ctx, plant.ID))
}

func TestSetPrimaryRejectsForeignImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plantA := e.mustCreatePlant(t, ctx, "Plant A")
	plantB := e.mustCreatePlant(t, ctx, "Plant B")

	img, err := e.images.AddImage(ctx, plantA.ID, ImageInput{URL: "/uploads/a.jpg"})
	require.NoError(t, err)

	_, err = e.images.SetPrimary(ctx, plantB.ID, img.ID)
	require.True(t, apierr.IsNotFound(err), "another plant's image must read as missing")
}

func TestGetPrimaryFallsBackToEarliest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Rubber Plant")

	first, err := e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/a.jpg"})
	require.NoError(t, err)
	_, err = e.images.AddImage(ctx, plant.ID, ImageInput{URL: "/uploads/b.jpg"})
	require.NoError(t, err)

	primary, err := e.imageRepo.GetPrimary(ctx, nil, plant.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, primary.ID, "with no flagged primary the earliest image serves")
}

func TestUploadImageStoresFileAndThumbnail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Dracaena")

	data := pngBytes(t, 400, 200)
	img, warnings, err := e.images.UploadImage(ctx, plant.ID, "photo.png", data, nil, true, nil)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.True(t, img.IsPrimary)
	require.NotNil(t, img.ThumbnailURL)
	require.NotNil(t, img.Width)
	require.Equal(t, 400, *img.Width)
	require.Equal(t, 200, *img.Height)
	require.NotNil(t, img.FileSize)
	require.Equal(t, int64(len(data)), *img.FileSize)

	stored, err := e.media.Read(img.URL)
	require.NoError(t, err)
	require.Equal(t, data, stored)
	_, err = e.media.Read(*img.ThumbnailURL)
	require.NoError(t, err)
}

func TestUploadImageRejectsBadExtension(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Yucca")

	_, _, err := e.images.UploadImage(ctx, plant.ID, "notes.txt", []byte("hello"), nil, false, nil)
	require.True(t, apierr.IsValidation(err))
}

func TestDeleteImageRemovesFiles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plant := e.mustCreatePlant(t, ctx, "Jade")

	img, _, err := e.images.UploadImage(ctx, plant.ID, "photo.png", pngBytes(t, 50, 50), nil, false, nil)
	require.NoError(t, err)

	warnings, err := e.images.DeleteImage(ctx, img.ID)
	require.NoError(t, err)
	require.Empty(t, warnings)

	_, err = e.media.Read(img.URL)
	require.Error(t, err, "file must be gone after delete")
	gone, err := e.imageRepo.GetByID(ctx, nil, img.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}
