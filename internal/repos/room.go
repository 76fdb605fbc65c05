package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type RoomRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Room) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Room, error)
	List(ctx context.Context, tx *gorm.DB, locationType string, offset, limit int) ([]*types.Room, error)
	Count(ctx context.Context, tx *gorm.DB, locationType string) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Room) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type roomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return &roomRepo{db: db, log: baseLog.With("repo", "RoomRepo")}
}

func (r *roomRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Room) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *roomRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Room, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Room
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *roomRepo) List(ctx context.Context, tx *gorm.DB, locationType string, offset, limit int) ([]*types.Room, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Room{})
	if locationType != "" {
		q = q.Where("location_type = ?", locationType)
	}
	var rows []*types.Room
	if err := q.Order("sort_order ASC, created_at ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roomRepo) Count(ctx context.Context, tx *gorm.DB, locationType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Room{})
	if locationType != "" {
		q = q.Where("location_type = ?", locationType)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roomRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Room) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *roomRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Room{}).Error
}
