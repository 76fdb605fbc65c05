package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type TaskTypeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.TaskType, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TaskType, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.TaskType, error)
}

type taskTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskTypeRepo(db *gorm.DB, baseLog *logger.Logger) TaskTypeRepo {
	return &taskTypeRepo{db: db, log: baseLog.With("repo", "TaskTypeRepo")}
}

func (r *taskTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.TaskType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.TaskType
	if err := transaction.WithContext(ctx).Order("sort_order ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskTypeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TaskType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TaskType
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *taskTypeRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.TaskType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TaskType
	err := transaction.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
