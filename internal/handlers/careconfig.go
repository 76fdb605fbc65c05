package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type CareConfigHandler struct {
	log           *logger.Logger
	configService services.CareConfigService
}

func NewCareConfigHandler(log *logger.Logger, configService services.CareConfigService) *CareConfigHandler {
	return &CareConfigHandler{
		log:           log.With("handler", "CareConfigHandler"),
		configService: configService,
	}
}

type createConfigRequest struct {
	TaskTypeID   uuid.UUID  `json:"task_type_id" binding:"required"`
	IntervalDays int        `json:"interval_days" binding:"required"`
	WindowPeriod int        `json:"window_period"`
	NextDueAt    *time.Time `json:"next_due_at"`
	Season       *string    `json:"season"`
	Notes        *string    `json:"notes"`
}

type updateConfigRequest struct {
	IntervalDays *int       `json:"interval_days"`
	WindowPeriod *int       `json:"window_period"`
	NextDueAt    *time.Time `json:"next_due_at"`
	IsActive     *bool      `json:"is_active"`
	Season       *string    `json:"season"`
	Notes        *string    `json:"notes"`
}

type completeTaskRequest struct {
	ExecutedAt *time.Time `json:"executed_at"`
}

func (h *CareConfigHandler) CreateConfig(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	var req createConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	config, err := h.configService.CreateConfig(c.Request.Context(), plantID, services.CareConfigInput{
		TaskTypeID:   req.TaskTypeID,
		IntervalDays: req.IntervalDays,
		WindowPeriod: req.WindowPeriod,
		NextDueAt:    req.NextDueAt,
		Season:       req.Season,
		Notes:        req.Notes,
	})
	if err != nil {
		h.log.Error("CreateConfig failed", "error", err, "plant_id", plantID)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, config)
}

func (h *CareConfigHandler) ListConfigs(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	configs, err := h.configService.GetConfigs(c.Request.Context(), plantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"configs": configs})
}

func (h *CareConfigHandler) GetConfig(c *gin.Context) {
	id, ok := pathUUID(c, "config_id")
	if !ok {
		return
	}
	config, err := h.configService.GetConfig(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, config)
}

func (h *CareConfigHandler) UpdateConfig(c *gin.Context) {
	id, ok := pathUUID(c, "config_id")
	if !ok {
		return
	}
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	config, err := h.configService.UpdateConfig(c.Request.Context(), id, services.CareConfigUpdate{
		IntervalDays: req.IntervalDays,
		WindowPeriod: req.WindowPeriod,
		NextDueAt:    req.NextDueAt,
		IsActive:     req.IsActive,
		Season:       req.Season,
		Notes:        req.Notes,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, config)
}

func (h *CareConfigHandler) DeleteConfig(c *gin.Context) {
	id, ok := pathUUID(c, "config_id")
	if !ok {
		return
	}
	if err := h.configService.DeleteConfig(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// CompleteTask marks one care task done; the next due date advances from the
// previous planned date, not from when the user actually did it.
func (h *CareConfigHandler) CompleteTask(c *gin.Context) {
	id, ok := pathUUID(c, "config_id")
	if !ok {
		return
	}
	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	config, err := h.configService.CompleteTask(c.Request.Context(), id, req.ExecutedAt)
	if err != nil {
		h.log.Error("CompleteTask failed", "error", err, "config_id", id)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, config)
}

// ListTasks classifies every active config into today, upcoming and overdue
// buckets for the task dashboard.
func (h *CareConfigHandler) ListTasks(c *gin.Context) {
	buckets, ok := h.classifyForRequest(c)
	if !ok {
		return
	}
	RespondOK(c, buckets)
}

func (h *CareConfigHandler) ListTodayTasks(c *gin.Context) {
	buckets, ok := h.classifyForRequest(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"tasks": buckets.Today})
}

func (h *CareConfigHandler) ListUpcomingTasks(c *gin.Context) {
	buckets, ok := h.classifyForRequest(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"tasks": buckets.Upcoming})
}

func (h *CareConfigHandler) ListOverdueTasks(c *gin.Context) {
	buckets, ok := h.classifyForRequest(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"tasks": buckets.Overdue})
}

func (h *CareConfigHandler) classifyForRequest(c *gin.Context) (*services.TaskBuckets, bool) {
	horizon, err := strconv.Atoi(c.DefaultQuery("days_ahead", "7"))
	if err != nil || horizon < 0 {
		horizon = 7
	}
	reference := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, 400, "invalid_request", err)
			return nil, false
		}
		reference = parsed
	}
	buckets, err := h.configService.ClassifyTasks(c.Request.Context(), reference, horizon)
	if err != nil {
		h.log.Error("ClassifyTasks failed", "error", err)
		RespondServiceError(c, err)
		return nil, false
	}
	return buckets, true
}

func (h *CareConfigHandler) ListTaskTypes(c *gin.Context) {
	taskTypes, err := h.configService.ListTaskTypes(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"task_types": taskTypes})
}
