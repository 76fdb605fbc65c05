package db

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

func strPtr(s string) *string { return &s }

// SeedTaskTypes installs the immutable care-task catalog. Skipped when any
// task types already exist.
func SeedTaskTypes(gdb *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := gdb.Model(&types.TaskType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug("Task type catalog already seeded", "count", count)
		return nil
	}

	catalog := []*types.TaskType{
		{ID: uuid.New(), Name: "Watering", Code: types.TaskWatering, Icon: strPtr("💧"), Description: strPtr("Water regularly to keep the soil moist"), DefaultInterval: 7, IsSystem: true, SortOrder: 1},
		{ID: uuid.New(), Name: "Fertilizing", Code: types.TaskFertilizing, Icon: strPtr("🌱"), Description: strPtr("Fertilize monthly to support growth"), DefaultInterval: 30, IsSystem: true, SortOrder: 2},
		{ID: uuid.New(), Name: "Pruning", Code: types.TaskPruning, Icon: strPtr("✂️"), Description: strPtr("Trim dead leaves and crowded stems"), DefaultInterval: 60, IsSystem: true, SortOrder: 3},
		{ID: uuid.New(), Name: "Repotting", Code: types.TaskRepotting, Icon: strPtr("🪴"), Description: strPtr("Repot every year or two"), DefaultInterval: 365, IsSystem: true, SortOrder: 4},
		{ID: uuid.New(), Name: "Spraying", Code: types.TaskSpraying, Icon: strPtr("🌿"), Description: strPtr("Mist to raise air humidity"), DefaultInterval: 3, IsSystem: true, SortOrder: 5},
	}

	if err := gdb.Create(&catalog).Error; err != nil {
		return err
	}
	log.Info("Seeded task type catalog", "count", len(catalog))
	return nil
}
