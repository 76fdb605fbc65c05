package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

// PlantFilter narrows plant listings. Zero values mean "no filter"; IsActive
// is a pointer because both true and false are meaningful filters.
type PlantFilter struct {
	RoomID       *uuid.UUID
	HealthStatus string
	Search       string
	IsActive     *bool
}

type PlantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Plant) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Plant, error)
	List(ctx context.Context, tx *gorm.DB, filter PlantFilter, offset, limit int) ([]*types.Plant, error)
	Count(ctx context.Context, tx *gorm.DB, filter PlantFilter) (int64, error)
	ListByShelfID(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) ([]*types.Plant, error)
	CountByShelfID(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) (int64, error)
	CountByRoomIDs(ctx context.Context, tx *gorm.DB, roomIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Plant) error
	UpdateShelfOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID, order int) error
	DetachFromShelf(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) error
	ClearIdentificationRef(ctx context.Context, tx *gorm.DB, identificationID uuid.UUID) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type plantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantRepo(db *gorm.DB, baseLog *logger.Logger) PlantRepo {
	return &plantRepo{db: db, log: baseLog.With("repo", "PlantRepo")}
}

func (r *plantRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Plant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *plantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Plant
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func applyPlantFilter(q *gorm.DB, filter PlantFilter) *gorm.DB {
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.HealthStatus != "" {
		q = q.Where("health_status = ?", filter.HealthStatus)
	}
	if filter.Search != "" {
		q = q.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	return q
}

func (r *plantRepo) List(ctx context.Context, tx *gorm.DB, filter PlantFilter, offset, limit int) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := applyPlantFilter(transaction.WithContext(ctx).Model(&types.Plant{}), filter)
	var rows []*types.Plant
	if err := q.Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *plantRepo) Count(ctx context.Context, tx *gorm.DB, filter PlantFilter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := applyPlantFilter(transaction.WithContext(ctx).Model(&types.Plant{}), filter)
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByShelfID is the ordering read contract: shelf order ascending, ties
// broken by creation order for determinism.
func (r *plantRepo) ListByShelfID(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Plant
	err := transaction.WithContext(ctx).
		Where("shelf_id = ?", shelfID).
		Order("shelf_order ASC, created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *plantRepo) CountByShelfID(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("shelf_id = ?", shelfID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *plantRepo) CountByRoomIDs(ctx context.Context, tx *gorm.DB, roomIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	counts := make(map[uuid.UUID]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		RoomID uuid.UUID
		Count  int64
	}
	err := transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Select("room_id, COUNT(id) AS count").
		Where("room_id IN ?", roomIDs).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.RoomID] = row.Count
	}
	return counts, nil
}

func (r *plantRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Plant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *plantRepo) UpdateShelfOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID, order int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("id = ?", id).
		Update("shelf_order", order).Error
}

// DetachFromShelf nulls shelf_id on every plant of the shelf. Shelf deletion
// never cascades into plant deletion.
func (r *plantRepo) DetachFromShelf(ctx context.Context, tx *gorm.DB, shelfID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("shelf_id = ?", shelfID).
		Update("shelf_id", nil).Error
}

func (r *plantRepo) ClearIdentificationRef(ctx context.Context, tx *gorm.DB, identificationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("identification_id = ?", identificationID).
		Update("identification_id", nil).Error
}

func (r *plantRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Plant{}).Error
}
