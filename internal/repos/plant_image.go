package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type PlantImageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.PlantImage) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PlantImage, error)
	ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) ([]*types.PlantImage, error)
	GetPrimary(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.PlantImage, error)
	UnsetPrimaryForPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
	SetPrimary(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Save(ctx context.Context, tx *gorm.DB, row *types.PlantImage) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
}

type plantImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantImageRepo(db *gorm.DB, baseLog *logger.Logger) PlantImageRepo {
	return &plantImageRepo{db: db, log: baseLog.With("repo", "PlantImageRepo")}
}

func (r *plantImageRepo) Create(ctx context.Context, tx *gorm.DB, row *types.PlantImage) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *plantImageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PlantImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.PlantImage
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *plantImageRepo) ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) ([]*types.PlantImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.PlantImage
	err := transaction.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("sort_order ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPrimary returns the flagged primary image, falling back to the
// earliest-created image when none is flagged.
func (r *plantImageRepo) GetPrimary(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) (*types.PlantImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.PlantImage
	err := transaction.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("is_primary DESC, created_at ASC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *plantImageRepo) UnsetPrimaryForPlant(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.PlantImage{}).
		Where("plant_id = ? AND is_primary = ?", plantID, true).
		Update("is_primary", false).Error
}

func (r *plantImageRepo) SetPrimary(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.PlantImage{}).
		Where("id = ?", id).
		Update("is_primary", true).Error
}

func (r *plantImageRepo) Save(ctx context.Context, tx *gorm.DB, row *types.PlantImage) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *plantImageRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.PlantImage{}).Error
}

func (r *plantImageRepo) DeleteByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("plant_id = ?", plantID).Delete(&types.PlantImage{}).Error
}
