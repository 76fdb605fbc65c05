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

type CareConfigInput struct {
	TaskTypeID   uuid.UUID
	IntervalDays int
	WindowPeriod int
	NextDueAt    *time.Time
	Season       *string
	Notes        *string
}

type CareConfigUpdate struct {
	IntervalDays *int
	WindowPeriod *int
	NextDueAt    *time.Time
	IsActive     *bool
	Season       *string
	Notes        *string
}

// TaskEntry is one classified care task with the names the task list renders.
type TaskEntry struct {
	Config       *types.CareConfig `json:"config"`
	PlantName    string            `json:"plant_name"`
	TaskTypeName string            `json:"task_type_name"`
	TaskTypeIcon *string           `json:"task_type_icon,omitempty"`
}

// TaskBuckets is the outcome of classifying every active config against a
// reference date.
type TaskBuckets struct {
	Today    []TaskEntry `json:"today"`
	Upcoming []TaskEntry `json:"upcoming"`
	Overdue  []TaskEntry `json:"overdue"`
}

type CareConfigService interface {
	CreateConfig(ctx context.Context, plantID uuid.UUID, in CareConfigInput) (*types.CareConfig, error)
	GetConfig(ctx context.Context, id uuid.UUID) (*types.CareConfig, error)
	GetConfigs(ctx context.Context, plantID uuid.UUID) ([]*types.CareConfig, error)
	UpdateConfig(ctx context.Context, id uuid.UUID, in CareConfigUpdate) (*types.CareConfig, error)
	DeleteConfig(ctx context.Context, id uuid.UUID) error
	CompleteTask(ctx context.Context, configID uuid.UUID, executedAt *time.Time) (*types.CareConfig, error)
	ClassifyTasks(ctx context.Context, referenceDate time.Time, horizonDays int) (*TaskBuckets, error)
	ListTaskTypes(ctx context.Context) ([]*types.TaskType, error)
}

type careConfigService struct {
	db           *gorm.DB
	log          *logger.Logger
	configRepo   repos.CareConfigRepo
	plantRepo    repos.PlantRepo
	taskTypeRepo repos.TaskTypeRepo
}

func NewCareConfigService(
	db *gorm.DB,
	baseLog *logger.Logger,
	configRepo repos.CareConfigRepo,
	plantRepo repos.PlantRepo,
	taskTypeRepo repos.TaskTypeRepo,
) CareConfigService {
	return &careConfigService{
		db:           db,
		log:          baseLog.With("service", "CareConfigService"),
		configRepo:   configRepo,
		plantRepo:    plantRepo,
		taskTypeRepo: taskTypeRepo,
	}
}

func validateConfigRanges(intervalDays, windowPeriod int) error {
	if intervalDays < types.MinIntervalDays || intervalDays > types.MaxIntervalDays {
		return apierr.Validation("interval_days must be within [%d,%d], got %d", types.MinIntervalDays, types.MaxIntervalDays, intervalDays)
	}
	if windowPeriod < types.MinWindowPeriod || windowPeriod > types.MaxWindowPeriod {
		return apierr.Validation("window_period must be within [%d,%d], got %d", types.MinWindowPeriod, types.MaxWindowPeriod, windowPeriod)
	}
	return nil
}

func (s *careConfigService) CreateConfig(ctx context.Context, plantID uuid.UUID, in CareConfigInput) (*types.CareConfig, error) {
	if err := validateConfigRanges(in.IntervalDays, in.WindowPeriod); err != nil {
		return nil, err
	}

	plant, err := s.plantRepo.GetByID(ctx, nil, plantID)
	if err != nil {
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if plant == nil {
		return nil, apierr.NotFound("plant")
	}
	taskType, err := s.taskTypeRepo.GetByID(ctx, nil, in.TaskTypeID)
	if err != nil {
		return nil, fmt.Errorf("load task type: %w", err)
	}
	if taskType == nil {
		return nil, apierr.NotFound("task type")
	}

	now := time.Now()
	nextDue := in.NextDueAt
	if nextDue == nil {
		due := initialDueAt(in.IntervalDays, now)
		nextDue = &due
	}

	config := &types.CareConfig{
		ID:           uuid.New(),
		PlantID:      plantID,
		TaskTypeID:   in.TaskTypeID,
		IntervalDays: in.IntervalDays,
		WindowPeriod: in.WindowPeriod,
		NextDueAt:    nextDue,
		IsActive:     true,
		Season:       in.Season,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.configRepo.Create(ctx, nil, config); err != nil {
		s.log.Error("CreateConfig failed", "error", err, "plant_id", plantID)
		return nil, fmt.Errorf("create config: %w", err)
	}
	config.TaskType = taskType
	return config, nil
}

func (s *careConfigService) GetConfig(ctx context.Context, id uuid.UUID) (*types.CareConfig, error) {
	config, err := s.configRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if config == nil {
		return nil, apierr.NotFound("care config")
	}
	return config, nil
}

func (s *careConfigService) GetConfigs(ctx context.Context, plantID uuid.UUID) ([]*types.CareConfig, error) {
	return s.configRepo.ListByPlantID(ctx, nil, plantID)
}

func (s *careConfigService) UpdateConfig(ctx context.Context, id uuid.UUID, in CareConfigUpdate) (*types.CareConfig, error) {
	config, err := s.configRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if config == nil {
		return nil, apierr.NotFound("care config")
	}

	intervalDays := config.IntervalDays
	if in.IntervalDays != nil {
		intervalDays = *in.IntervalDays
	}
	windowPeriod := config.WindowPeriod
	if in.WindowPeriod != nil {
		windowPeriod = *in.WindowPeriod
	}
	if err := validateConfigRanges(intervalDays, windowPeriod); err != nil {
		return nil, err
	}

	config.IntervalDays = intervalDays
	config.WindowPeriod = windowPeriod
	if in.NextDueAt != nil {
		config.NextDueAt = in.NextDueAt
	}
	if in.IsActive != nil {
		config.IsActive = *in.IsActive
	}
	if in.Season != nil {
		config.Season = in.Season
	}
	if in.Notes != nil {
		config.Notes = in.Notes
	}
	config.UpdatedAt = time.Now()

	if err := s.configRepo.Save(ctx, nil, config); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return config, nil
}

func (s *careConfigService) DeleteConfig(ctx context.Context, id uuid.UUID) error {
	config, err := s.configRepo.GetByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if config == nil {
		return apierr.NotFound("care config")
	}
	return s.configRepo.DeleteByID(ctx, nil, id)
}

// CompleteTask records one completion. The new due date is anchored to the
// previously planned one; repeated calls keep advancing it by one interval
// each (not idempotent, each call means "one more completion happened").
func (s *careConfigService) CompleteTask(ctx context.Context, configID uuid.UUID, executedAt *time.Time) (*types.CareConfig, error) {
	config, err := s.configRepo.GetByID(ctx, nil, configID)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if config == nil {
		return nil, apierr.NotFound("care config")
	}

	done := time.Now()
	if executedAt != nil {
		done = *executedAt
	}

	nextDue := nextDueOnCompletion(config.IntervalDays, config.NextDueAt, done)
	config.LastDoneAt = &done
	config.NextDueAt = &nextDue
	config.UpdatedAt = time.Now()

	if err := s.configRepo.Save(ctx, nil, config); err != nil {
		s.log.Error("CompleteTask failed", "error", err, "config_id", configID)
		return nil, fmt.Errorf("save config: %w", err)
	}
	s.log.Debug("Task completed", "config_id", configID, "next_due_at", nextDue)
	return config, nil
}

func (s *careConfigService) ClassifyTasks(ctx context.Context, referenceDate time.Time, horizonDays int) (*TaskBuckets, error) {
	configs, err := s.configRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load active configs: %w", err)
	}

	buckets := &TaskBuckets{
		Today:    []TaskEntry{},
		Upcoming: []TaskEntry{},
		Overdue:  []TaskEntry{},
	}
	for _, config := range configs {
		entry := TaskEntry{Config: config}
		if config.Plant != nil {
			entry.PlantName = config.Plant.Name
		}
		if config.TaskType != nil {
			entry.TaskTypeName = config.TaskType.Name
			entry.TaskTypeIcon = config.TaskType.Icon
		}
		switch classifyDue(config, referenceDate, horizonDays) {
		case dueOverdue:
			buckets.Overdue = append(buckets.Overdue, entry)
		case dueToday:
			buckets.Today = append(buckets.Today, entry)
		case dueUpcoming:
			buckets.Upcoming = append(buckets.Upcoming, entry)
		}
	}
	return buckets, nil
}

func (s *careConfigService) ListTaskTypes(ctx context.Context) ([]*types.TaskType, error) {
	rows, err := s.taskTypeRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list task types: %w", err)
	}
	return rows, nil
}
