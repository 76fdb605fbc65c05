package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/apierr"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type SuggestionInput struct {
	Title    string
	Content  string
	Category string
	Priority string
}

type SuggestionUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Status   *string
	Priority *string
}

type SuggestionService interface {
	CreateSuggestion(ctx context.Context, in SuggestionInput) (*types.Suggestion, error)
	GetSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error)
	GetSuggestions(ctx context.Context, offset, limit int) ([]*types.Suggestion, int64, error)
	UpdateSuggestion(ctx context.Context, id uuid.UUID, in SuggestionUpdate) (*types.Suggestion, error)
	DeleteSuggestion(ctx context.Context, id uuid.UUID) error
}

type suggestionService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.SuggestionRepo
}

func NewSuggestionService(db *gorm.DB, baseLog *logger.Logger, repo repos.SuggestionRepo) SuggestionService {
	return &suggestionService{
		db:   db,
		log:  baseLog.With("service", "SuggestionService"),
		repo: repo,
	}
}

func (s *suggestionService) CreateSuggestion(ctx context.Context, in SuggestionInput) (*types.Suggestion, error) {
	if in.Title == "" {
		return nil, apierr.Validation("suggestion title must not be empty")
	}
	if in.Content == "" {
		return nil, apierr.Validation("suggestion content must not be empty")
	}
	if in.Category == "" {
		return nil, apierr.Validation("suggestion category must not be empty")
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}

	now := time.Now()
	row := &types.Suggestion{
		ID:        uuid.New(),
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Status:    "pending",
		Priority:  priority,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}
	return row, nil
}

func (s *suggestionService) GetSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load suggestion: %w", err)
	}
	if row == nil || !row.IsActive {
		return nil, apierr.NotFound("suggestion")
	}
	return row, nil
}

func (s *suggestionService) GetSuggestions(ctx context.Context, offset, limit int) ([]*types.Suggestion, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.repo.List(ctx, nil, true, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list suggestions: %w", err)
	}
	total, err := s.repo.Count(ctx, nil, true)
	if err != nil {
		return nil, 0, fmt.Errorf("count suggestions: %w", err)
	}
	return rows, total, nil
}

func (s *suggestionService) UpdateSuggestion(ctx context.Context, id uuid.UUID, in SuggestionUpdate) (*types.Suggestion, error) {
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load suggestion: %w", err)
	}
	if row == nil || !row.IsActive {
		return nil, apierr.NotFound("suggestion")
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, apierr.Validation("suggestion title must not be empty")
		}
		row.Title = *in.Title
	}
	if in.Content != nil {
		row.Content = *in.Content
	}
	if in.Category != nil {
		row.Category = *in.Category
	}
	if in.Status != nil {
		row.Status = *in.Status
	}
	if in.Priority != nil {
		row.Priority = *in.Priority
	}
	row.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("save suggestion: %w", err)
	}
	return row, nil
}

// DeleteSuggestion is a soft delete; the row stays for audit.
func (s *suggestionService) DeleteSuggestion(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("load suggestion: %w", err)
	}
	if row == nil || !row.IsActive {
		return apierr.NotFound("suggestion")
	}
	row.IsActive = false
	row.UpdatedAt = time.Now()
	return s.repo.Save(ctx, nil, row)
}
