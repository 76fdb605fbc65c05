package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type ShelfHandler struct {
	log          *logger.Logger
	shelfService services.ShelfService
}

func NewShelfHandler(log *logger.Logger, shelfService services.ShelfService) *ShelfHandler {
	return &ShelfHandler{
		log:          log.With("handler", "ShelfHandler"),
		shelfService: shelfService,
	}
}

type createShelfRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

type updateShelfRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

type reorderShelvesRequest struct {
	ShelfIDs []uuid.UUID `json:"shelf_ids" binding:"required"`
}

type movePlantRequest struct {
	ShelfID *uuid.UUID `json:"shelf_id"`
	Order   *int       `json:"order"`
}

type reorderPlantsRequest struct {
	Orders []services.PlantOrder `json:"orders" binding:"required"`
}

func (h *ShelfHandler) CreateShelf(c *gin.Context) {
	roomID, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	view, err := h.shelfService.CreateShelf(c.Request.Context(), roomID, services.ShelfInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		h.log.Error("CreateShelf failed", "error", err, "room_id", roomID)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, view)
}

func (h *ShelfHandler) ListShelves(c *gin.Context) {
	roomID, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	views, err := h.shelfService.GetShelves(c.Request.Context(), roomID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"shelves": views})
}

func (h *ShelfHandler) GetShelf(c *gin.Context) {
	id, ok := pathUUID(c, "shelf_id")
	if !ok {
		return
	}
	view, err := h.shelfService.GetShelf(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *ShelfHandler) UpdateShelf(c *gin.Context) {
	id, ok := pathUUID(c, "shelf_id")
	if !ok {
		return
	}
	var req updateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	view, err := h.shelfService.UpdateShelf(c.Request.Context(), id, services.ShelfUpdate{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		IsActive:    req.IsActive,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *ShelfHandler) DeleteShelf(c *gin.Context) {
	id, ok := pathUUID(c, "shelf_id")
	if !ok {
		return
	}
	if err := h.shelfService.DeleteShelf(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *ShelfHandler) ReorderShelves(c *gin.Context) {
	roomID, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	var req reorderShelvesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	if err := h.shelfService.ReorderShelves(c.Request.Context(), roomID, req.ShelfIDs); err != nil {
		h.log.Error("ReorderShelves failed", "error", err, "room_id", roomID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reordered": true})
}

func (h *ShelfHandler) MovePlant(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	var req movePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	result, err := h.shelfService.MoveToShelf(c.Request.Context(), plantID, req.ShelfID, req.Order)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ShelfHandler) ReorderPlants(c *gin.Context) {
	shelfID, ok := pathUUID(c, "shelf_id")
	if !ok {
		return
	}
	var req reorderPlantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	if err := h.shelfService.ReorderPlants(c.Request.Context(), shelfID, req.Orders); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reordered": true})
}
