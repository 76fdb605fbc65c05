package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type IdentificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Identification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Identification, error)
	// GetByHashSince is the dedup-window lookup: the newest record with this
	// content hash created at or after the cutoff, or nil.
	GetByHashSince(ctx context.Context, tx *gorm.DB, hash string, since time.Time) (*types.Identification, error)
	List(ctx context.Context, tx *gorm.DB, plantID *uuid.UUID, offset, limit int) ([]*types.Identification, error)
	Count(ctx context.Context, tx *gorm.DB, plantID *uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Identification) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type identificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdentificationRepo(db *gorm.DB, baseLog *logger.Logger) IdentificationRepo {
	return &identificationRepo{db: db, log: baseLog.With("repo", "IdentificationRepo")}
}

func (r *identificationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Identification) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *identificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Identification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Identification
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *identificationRepo) GetByHashSince(ctx context.Context, tx *gorm.DB, hash string, since time.Time) (*types.Identification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Identification
	err := transaction.WithContext(ctx).
		Where("image_hash = ? AND created_at >= ?", hash, since).
		Order("created_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *identificationRepo) List(ctx context.Context, tx *gorm.DB, plantID *uuid.UUID, offset, limit int) ([]*types.Identification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Identification{})
	if plantID != nil {
		q = q.Where("selected_plant_id = ?", *plantID)
	}
	var rows []*types.Identification
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *identificationRepo) Count(ctx context.Context, tx *gorm.DB, plantID *uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Identification{})
	if plantID != nil {
		q = q.Where("selected_plant_id = ?", *plantID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *identificationRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Identification) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *identificationRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Identification{}).Error
}
