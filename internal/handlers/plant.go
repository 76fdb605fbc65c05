package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type PlantHandler struct {
	log          *logger.Logger
	plantService services.PlantService
}

func NewPlantHandler(log *logger.Logger, plantService services.PlantService) *PlantHandler {
	return &PlantHandler{
		log:          log.With("handler", "PlantHandler"),
		plantService: plantService,
	}
}

type createPlantRequest struct {
	RoomID         uuid.UUID  `json:"room_id" binding:"required"`
	ShelfID        *uuid.UUID `json:"shelf_id"`
	Name           string     `json:"name" binding:"required"`
	ScientificName *string    `json:"scientific_name"`
	Description    *string    `json:"description"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	HealthStatus   string     `json:"health_status"`
}

type updatePlantRequest struct {
	Name           *string    `json:"name"`
	ScientificName *string    `json:"scientific_name"`
	Description    *string    `json:"description"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	HealthStatus   *string    `json:"health_status"`
}

func (h *PlantHandler) CreatePlant(c *gin.Context) {
	var req createPlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	plant, err := h.plantService.CreatePlant(c.Request.Context(), services.PlantInput{
		RoomID:         req.RoomID,
		ShelfID:        req.ShelfID,
		Name:           req.Name,
		ScientificName: req.ScientificName,
		Description:    req.Description,
		PurchaseDate:   req.PurchaseDate,
		HealthStatus:   req.HealthStatus,
	})
	if err != nil {
		h.log.Error("CreatePlant failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, plant)
}

func (h *PlantHandler) GetPlant(c *gin.Context) {
	id, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	view, err := h.plantService.GetPlant(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *PlantHandler) ListPlants(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	filter := repos.PlantFilter{
		HealthStatus: c.Query("health_status"),
		Search:       c.Query("search"),
	}
	if raw := c.Query("room_id"); raw != "" {
		roomID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, 400, "invalid_id", err)
			return
		}
		filter.RoomID = &roomID
	}
	active := true
	if c.Query("include_inactive") != "true" {
		filter.IsActive = &active
	}

	views, total, err := h.plantService.GetPlants(c.Request.Context(), filter, skip, limit)
	if err != nil {
		h.log.Error("ListPlants failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, Paged{Items: views, Total: total, Limit: limit, Skip: skip})
}

func (h *PlantHandler) UpdatePlant(c *gin.Context) {
	id, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	var req updatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	plant, err := h.plantService.UpdatePlant(c.Request.Context(), id, services.PlantUpdate{
		Name:           req.Name,
		ScientificName: req.ScientificName,
		Description:    req.Description,
		PurchaseDate:   req.PurchaseDate,
		HealthStatus:   req.HealthStatus,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, plant)
}

// ArchivePlant is the default delete: the plant drops out of listings and
// task classification but keeps its data.
func (h *PlantHandler) ArchivePlant(c *gin.Context) {
	id, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	if err := h.plantService.ArchivePlant(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"archived": true})
}

func (h *PlantHandler) RestorePlant(c *gin.Context) {
	id, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	plant, err := h.plantService.RestorePlant(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, plant)
}

func (h *PlantHandler) PermanentDeletePlant(c *gin.Context) {
	id, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	warnings, err := h.plantService.PermanentDeletePlant(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "warnings": warnings})
}
