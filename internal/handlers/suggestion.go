package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type SuggestionHandler struct {
	log               *logger.Logger
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(log *logger.Logger, suggestionService services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		log:               log.With("handler", "SuggestionHandler"),
		suggestionService: suggestionService,
	}
}

type createSuggestionRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required"`
	Priority string `json:"priority"`
}

type updateSuggestionRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

func (h *SuggestionHandler) CreateSuggestion(c *gin.Context) {
	var req createSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	row, err := h.suggestionService.CreateSuggestion(c.Request.Context(), services.SuggestionInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, row)
}

func (h *SuggestionHandler) GetSuggestion(c *gin.Context) {
	id, ok := pathUUID(c, "suggestion_id")
	if !ok {
		return
	}
	row, err := h.suggestionService.GetSuggestion(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows, total, err := h.suggestionService.GetSuggestions(c.Request.Context(), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, Paged{Items: rows, Total: total, Limit: limit, Skip: skip})
}

func (h *SuggestionHandler) UpdateSuggestion(c *gin.Context) {
	id, ok := pathUUID(c, "suggestion_id")
	if !ok {
		return
	}
	var req updateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	row, err := h.suggestionService.UpdateSuggestion(c.Request.Context(), id, services.SuggestionUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *SuggestionHandler) DeleteSuggestion(c *gin.Context) {
	id, ok := pathUUID(c, "suggestion_id")
	if !ok {
		return
	}
	if err := h.suggestionService.DeleteSuggestion(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
