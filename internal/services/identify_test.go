package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type fakeRecognizer struct {
	calls       int
	predictions []types.Prediction
	requestID   *string
	err         error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Recognition{Predictions: f.predictions, RequestID: f.requestID}, nil
}

func (f *fakeRecognizer) Healthy(ctx context.Context) bool { return f.err == nil }

func pothosPredictions() []types.Prediction {
	sci := "Epipremnum aureum"
	desc := "Hardy trailing vine, tolerates low light"
	return []types.Prediction{
		{Rank: 1, Name: "绿萝", ScientificName: &sci, Confidence: 0.92, Description: &desc},
		{Rank: 2, Name: "吊兰", Confidence: 0.05},
		{Rank: 3, Name: "常春藤", Confidence: 0.02},
	}
}

func TestIdentifyRecordsPredictions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	requestID := "1755042611"
	recognizer := &fakeRecognizer{predictions: pothosPredictions(), requestID: &requestID}
	svc := e.identService(recognizer)

	result, err := svc.Identify(ctx, "pothos.jpg", []byte("leafy photo bytes"))
	require.NoError(t, err)
	require.False(t, result.Cached)
	require.Len(t, result.Predictions, 3)
	require.Equal(t, "绿萝", result.Predictions[0].Name)
	require.Equal(t, 1, recognizer.calls)
	require.NotNil(t, result.Identification.ImageHash)
	require.NotNil(t, result.Identification.RequestID)
	require.Equal(t, requestID, *result.Identification.RequestID)

	stored, err := svc.GetIdentification(ctx, result.Identification.ID)
	require.NoError(t, err)
	predictions, err := stored.PredictionList()
	require.NoError(t, err)
	require.Equal(t, "绿萝", predictions[0].Name)
}

func TestIdentifyDedupesByteIdenticalUploads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recognizer := &fakeRecognizer{predictions: pothosPredictions()}
	svc := e.identService(recognizer)

	photo := []byte("the same photo twice")
	first, err := svc.Identify(ctx, "a.jpg", photo)
	require.NoError(t, err)
	second, err := svc.Identify(ctx, "b.jpg", photo)
	require.NoError(t, err)

	require.True(t, second.Cached)
	require.Equal(t, first.Identification.ID, second.Identification.ID, "a cache hit returns the stored record, no new row")
	require.Equal(t, 1, recognizer.calls, "the provider must be called once for identical bytes")
	require.Equal(t, first.Predictions, second.Predictions)

	// Different bytes are a fresh request.
	_, err = svc.Identify(ctx, "c.jpg", []byte("a different photo"))
	require.NoError(t, err)
	require.Equal(t, 2, recognizer.calls)
}

func TestIdentifyProviderFailureCleansUp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	recognizer := &fakeRecognizer{err: apierr.Dependency(errors.New("provider down"))}
	svc := e.identService(recognizer)

	_, err := svc.Identify(ctx, "a.jpg", []byte("photo"))
	require.Error(t, err)
	ae := apierr.From(err)
	require.Equal(t, apierr.CodeDependencyFailure, ae.Code)

	// Nothing recorded; a retry hits the provider again instead of a cache.
	recognizer.err = nil
	recognizer.predictions = pothosPredictions()
	result, err := svc.Identify(ctx, "a.jpg", []byte("photo"))
	require.NoError(t, err)
	require.False(t, result.Cached)
	require.Equal(t, 2, recognizer.calls)
}

func TestIdentifyRejectsBadUploads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{})

	_, err := svc.Identify(ctx, "a.jpg", nil)
	require.True(t, apierr.IsValidation(err))
	_, err = svc.Identify(ctx, "a.exe", []byte("photo"))
	require.True(t, apierr.IsValidation(err))
}

func TestCreatePlantFromIdentification(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{predictions: pothosPredictions()})

	room := e.mustCreateRoom(t, ctx, "Sunroom")
	result, err := svc.Identify(ctx, "pothos.jpg", []byte("photo"))
	require.NoError(t, err)

	plant, _, err := svc.CreatePlantFromIdentification(ctx, result.Identification.ID, AdoptInput{RoomID: room.ID})
	require.NoError(t, err)
	require.Equal(t, "绿萝", plant.Name, "rank-1 prediction seeds the name")
	require.NotNil(t, plant.ScientificName)
	require.Equal(t, "Epipremnum aureum", *plant.ScientificName)
	require.Equal(t, types.PlantSourceIdentify, plant.Source)
	require.NotNil(t, plant.IdentificationID)
	require.Equal(t, result.Identification.ID, *plant.IdentificationID)
	require.NotNil(t, plant.ShelfID, "adopted plants land on the default shelf")

	record, err := svc.GetIdentification(ctx, result.Identification.ID)
	require.NoError(t, err)
	require.NotNil(t, record.Feedback)
	require.Equal(t, types.FeedbackCorrect, *record.Feedback)
	require.NotNil(t, record.SelectedPlantID)
	require.Equal(t, plant.ID, *record.SelectedPlantID)

	// The recognition photo was copied onto the plant.
	images, err := e.images.GetImages(ctx, plant.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.True(t, images[0].IsPrimary)
}

func TestCreatePlantFromIdentificationSelectedRank(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{predictions: pothosPredictions()})

	room := e.mustCreateRoom(t, ctx, "Hallway")
	result, err := svc.Identify(ctx, "photo.jpg", []byte("photo"))
	require.NoError(t, err)

	plant, _, err := svc.CreatePlantFromIdentification(ctx, result.Identification.ID, AdoptInput{RoomID: room.ID, SelectedRank: 2})
	require.NoError(t, err)
	require.Equal(t, "吊兰", plant.Name)

	_, _, err = svc.CreatePlantFromIdentification(ctx, result.Identification.ID, AdoptInput{RoomID: room.ID, SelectedRank: 9})
	require.True(t, apierr.IsValidation(err))
}

func TestSubmitFeedbackLastWriteWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{predictions: pothosPredictions()})

	room := e.mustCreateRoom(t, ctx, "Balcony")
	result, err := svc.Identify(ctx, "photo.jpg", []byte("photo"))
	require.NoError(t, err)
	id := result.Identification.ID

	_, err = svc.SubmitFeedback(ctx, id, "bogus", nil, nil)
	require.True(t, apierr.IsValidation(err))

	name := "绿萝"
	record, err := svc.SubmitFeedback(ctx, id, types.FeedbackIncorrect, nil, &name)
	require.NoError(t, err)
	require.Equal(t, types.FeedbackIncorrect, *record.Feedback)
	require.Equal(t, name, *record.CorrectName)

	record, err = svc.SubmitFeedback(ctx, id, types.FeedbackCorrect, nil, nil)
	require.NoError(t, err)
	require.Equal(t, types.FeedbackCorrect, *record.Feedback)
	require.Nil(t, record.CorrectName)

	// Every submission overwrites the plant link; omitting it clears an
	// earlier one, including the link set by adopting the record.
	plant, _, err := svc.CreatePlantFromIdentification(ctx, id, AdoptInput{RoomID: room.ID})
	require.NoError(t, err)
	record, err = svc.GetIdentification(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, record.SelectedPlantID)

	record, err = svc.SubmitFeedback(ctx, id, types.FeedbackIncorrect, nil, &name)
	require.NoError(t, err)
	require.Nil(t, record.SelectedPlantID)

	record, err = svc.SubmitFeedback(ctx, id, types.FeedbackCorrect, &plant.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, record.SelectedPlantID)
	require.Equal(t, plant.ID, *record.SelectedPlantID)

	record, err = svc.SubmitFeedback(ctx, id, types.FeedbackSkipped, nil, nil)
	require.NoError(t, err)
	require.Nil(t, record.SelectedPlantID)
}

func TestDeleteIdentificationKeepsAdoptedPlant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{predictions: pothosPredictions()})

	room := e.mustCreateRoom(t, ctx, "Loggia")
	result, err := svc.Identify(ctx, "photo.jpg", []byte("photo"))
	require.NoError(t, err)
	plant, _, err := svc.CreatePlantFromIdentification(ctx, result.Identification.ID, AdoptInput{RoomID: room.ID})
	require.NoError(t, err)

	_, err = svc.DeleteIdentification(ctx, result.Identification.ID)
	require.NoError(t, err)

	_, err = svc.GetIdentification(ctx, result.Identification.ID)
	require.True(t, apierr.IsNotFound(err))

	survivor, err := e.plantRepo.GetByID(ctx, nil, plant.ID)
	require.NoError(t, err)
	require.NotNil(t, survivor)
	require.Nil(t, survivor.IdentificationID, "the back-reference is cleared, the plant survives")
}

func TestIdentificationHistoryFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.identService(&fakeRecognizer{predictions: pothosPredictions()})

	room := e.mustCreateRoom(t, ctx, "Atrium")
	first, err := svc.Identify(ctx, "a.jpg", []byte("photo one"))
	require.NoError(t, err)
	_, err = svc.Identify(ctx, "b.jpg", []byte("photo two"))
	require.NoError(t, err)

	plant, _, err := svc.CreatePlantFromIdentification(ctx, first.Identification.ID, AdoptInput{RoomID: room.ID})
	require.NoError(t, err)

	all, total, err := svc.History(ctx, nil, 0, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)

	mine, total, err := svc.History(ctx, &plant.ID, 0, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	require.Equal(t, first.Identification.ID, mine[0].ID)
}
