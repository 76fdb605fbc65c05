package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type CareConfigRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CareConfig) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CareConfig, error)
	ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) ([]*types.CareConfig, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.CareConfig, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.CareConfig) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error
}

type careConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareConfigRepo(db *gorm.DB, baseLog *logger.Logger) CareConfigRepo {
	return &careConfigRepo{db: db, log: baseLog.With("repo", "CareConfigRepo")}
}

func (r *careConfigRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CareConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *careConfigRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CareConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.CareConfig
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *careConfigRepo) ListByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) ([]*types.CareConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.CareConfig
	err := transaction.WithContext(ctx).
		Preload("TaskType").
		Where("plant_id = ?", plantID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActive loads every active config with plant and task type joined in,
// for due-date classification. Archived plants are excluded.
func (r *careConfigRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.CareConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.CareConfig
	err := transaction.WithContext(ctx).
		Preload("Plant").
		Preload("TaskType").
		Joins("JOIN plant ON plant.id = care_config.plant_id AND plant.is_active = ?", true).
		Where("care_config.is_active = ?", true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *careConfigRepo) Save(ctx context.Context, tx *gorm.DB, row *types.CareConfig) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *careConfigRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.CareConfig{}).Error
}

func (r *careConfigRepo) DeleteByPlantID(ctx context.Context, tx *gorm.DB, plantID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("plant_id = ?", plantID).Delete(&types.CareConfig{}).Error
}
