package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type SuggestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Suggestion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Suggestion, error)
	List(ctx context.Context, tx *gorm.DB, isActive bool, offset, limit int) ([]*types.Suggestion, error)
	Count(ctx context.Context, tx *gorm.DB, isActive bool) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Suggestion) error
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{db: db, log: baseLog.With("repo", "SuggestionRepo")}
}

func (r *suggestionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Suggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *suggestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Suggestion
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *suggestionRepo) List(ctx context.Context, tx *gorm.DB, isActive bool, offset, limit int) ([]*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Suggestion
	err := transaction.WithContext(ctx).
		Where("is_active = ?", isActive).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *suggestionRepo) Count(ctx context.Context, tx *gorm.DB, isActive bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Suggestion{}).
		Where("is_active = ?", isActive).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *suggestionRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Suggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}
