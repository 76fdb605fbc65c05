package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

func (e *env) mustCreatePlantWithConfig(t *testing.T, ctx context.Context, intervalDays int, nextDue time.Time) *types.CareConfig {
	t.Helper()
	room := e.mustCreateRoom(t, ctx, "Config room "+t.Name())
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Plant " + t.Name()})
	require.NoError(t, err)
	taskType, err := e.taskTypeRepo.GetByCode(ctx, nil, types.TaskWatering)
	require.NoError(t, err)
	require.NotNil(t, taskType)
	config, err := e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{
		TaskTypeID:   taskType.ID,
		IntervalDays: intervalDays,
		NextDueAt:    &nextDue,
	})
	require.NoError(t, err)
	return config
}

func TestCreateConfigValidatesRanges(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Validation room")
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Ficus"})
	require.NoError(t, err)
	taskType, err := e.taskTypeRepo.GetByCode(ctx, nil, types.TaskWatering)
	require.NoError(t, err)

	_, err = e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{TaskTypeID: taskType.ID, IntervalDays: 0})
	require.True(t, apierr.IsValidation(err), "interval below range must be rejected")

	_, err = e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{TaskTypeID: taskType.ID, IntervalDays: 366})
	require.True(t, apierr.IsValidation(err), "interval above range must be rejected")

	_, err = e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{TaskTypeID: taskType.ID, IntervalDays: 7, WindowPeriod: 31})
	require.True(t, apierr.IsValidation(err), "window above range must be rejected")
}

func TestCreateConfigDefaultsDueOneIntervalOut(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Default due room")
	plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: "Orchid"})
	require.NoError(t, err)
	taskType, err := e.taskTypeRepo.GetByCode(ctx, nil, types.TaskFertilizing)
	require.NoError(t, err)

	before := time.Now()
	config, err := e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{TaskTypeID: taskType.ID, IntervalDays: 30})
	require.NoError(t, err)
	require.NotNil(t, config.NextDueAt)
	require.WithinDuration(t, before.AddDate(0, 0, 30), *config.NextDueAt, time.Minute)
}

func TestCompleteTaskAnchorsToPlannedDate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	planned := day(2026, 8, 10)
	config := e.mustCreatePlantWithConfig(t, ctx, 7, planned)

	// Completed four days late; cadence must not slip.
	executed := day(2026, 8, 14)
	updated, err := e.configs.CompleteTask(ctx, config.ID, &executed)
	require.NoError(t, err)
	require.NotNil(t, updated.NextDueAt)
	require.True(t, updated.NextDueAt.Equal(day(2026, 8, 17)), "next due = planned + interval, got %v", updated.NextDueAt)
	require.NotNil(t, updated.LastDoneAt)
	require.True(t, updated.LastDoneAt.Equal(executed))
}

func TestCompleteTaskTwiceAdvancesTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	planned := day(2026, 8, 10)
	config := e.mustCreatePlantWithConfig(t, ctx, 7, planned)

	executed := day(2026, 8, 10)
	_, err := e.configs.CompleteTask(ctx, config.ID, &executed)
	require.NoError(t, err)
	updated, err := e.configs.CompleteTask(ctx, config.ID, &executed)
	require.NoError(t, err)
	require.True(t, updated.NextDueAt.Equal(day(2026, 8, 24)), "two completions advance two intervals, got %v", updated.NextDueAt)
}

func TestClassifyTasksBucketsAndExclusions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	room := e.mustCreateRoom(t, ctx, "Task room")
	taskType, err := e.taskTypeRepo.GetByCode(ctx, nil, types.TaskWatering)
	require.NoError(t, err)

	reference := day(2026, 8, 15)
	addConfig := func(name string, due time.Time) *types.CareConfig {
		plant, err := e.plants.CreatePlant(ctx, PlantInput{RoomID: room.ID, Name: name})
		require.NoError(t, err)
		config, err := e.configs.CreateConfig(ctx, plant.ID, CareConfigInput{
			TaskTypeID: taskType.ID, IntervalDays: 7, NextDueAt: &due,
		})
		require.NoError(t, err)
		return config
	}

	addConfig("Overdue plant", day(2026, 8, 12))
	addConfig("Today plant", day(2026, 8, 15))
	addConfig("Horizon plant", day(2026, 8, 22))
	addConfig("Midweek plant", day(2026, 8, 18))

	// An archived plant's tasks disappear from every bucket.
	archived := addConfig("Archived plant", day(2026, 8, 12))
	require.NoError(t, e.plants.ArchivePlant(ctx, archived.PlantID))

	// A deactivated config disappears too.
	inactive := addConfig("Paused plant", day(2026, 8, 15))
	off := false
	_, err = e.configs.UpdateConfig(ctx, inactive.ID, CareConfigUpdate{IsActive: &off})
	require.NoError(t, err)

	buckets, err := e.configs.ClassifyTasks(ctx, reference, 7)
	require.NoError(t, err)

	require.Len(t, buckets.Overdue, 1)
	require.Equal(t, "Overdue plant", buckets.Overdue[0].PlantName)
	require.Len(t, buckets.Today, 1)
	require.Equal(t, "Today plant", buckets.Today[0].PlantName)
	require.Len(t, buckets.Upcoming, 1, "only the exact horizon day is upcoming")
	require.Equal(t, "Horizon plant", buckets.Upcoming[0].PlantName)
	require.NotEmpty(t, buckets.Upcoming[0].TaskTypeName)
}

func TestListTaskTypesSeeded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	taskTypes, err := e.configs.ListTaskTypes(ctx)
	require.NoError(t, err)
	require.Len(t, taskTypes, 5)

	codes := make(map[string]bool, len(taskTypes))
	for _, tt := range taskTypes {
		codes[tt.Code] = true
	}
	for _, code := range []string{types.TaskWatering, types.TaskFertilizing, types.TaskPruning, types.TaskRepotting, types.TaskSpraying} {
		require.True(t, codes[code], "missing seeded task type %s", code)
	}
}
