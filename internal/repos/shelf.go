package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type ShelfRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Shelf) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Shelf, error)
	GetDefaultByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (*types.Shelf, error)
	ListByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.Shelf, error)
	ListNonDefaultByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.Shelf, error)
	CountByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Shelf) error
	UpdateSortOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID, sortOrder int) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type shelfRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShelfRepo(db *gorm.DB, baseLog *logger.Logger) ShelfRepo {
	return &shelfRepo{db: db, log: baseLog.With("repo", "ShelfRepo")}
}

func (r *shelfRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Shelf) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *shelfRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Shelf, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Shelf
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *shelfRepo) GetDefaultByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (*types.Shelf, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Shelf
	err := transaction.WithContext(ctx).
		Where("room_id = ? AND is_default = ?", roomID, true).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByRoomID returns the room's shelves with the default shelf first, then
// the remainder by sort order.
func (r *shelfRepo) ListByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.Shelf, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Shelf
	err := transaction.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("is_default DESC, sort_order ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shelfRepo) ListNonDefaultByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.Shelf, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Shelf
	err := transaction.WithContext(ctx).
		Where("room_id = ? AND is_default = ?", roomID, false).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shelfRepo) CountByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Shelf{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *shelfRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Shelf) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *shelfRepo) UpdateSortOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID, sortOrder int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Shelf{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder).Error
}

func (r *shelfRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Shelf{}).Error
}
