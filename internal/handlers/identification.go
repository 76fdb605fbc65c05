package handlers

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type IdentificationHandler struct {
	log          *logger.Logger
	identService services.IdentificationService
}

func NewIdentificationHandler(log *logger.Logger, identService services.IdentificationService) *IdentificationHandler {
	return &IdentificationHandler{
		log:          log.With("handler", "IdentificationHandler"),
		identService: identService,
	}
}

type adoptRequest struct {
	RoomID       uuid.UUID  `json:"room_id" binding:"required"`
	ShelfID      *uuid.UUID `json:"shelf_id"`
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	PurchaseDate *time.Time `json:"purchase_date"`
	HealthStatus *string    `json:"health_status"`
	SelectedRank int        `json:"selected_rank"`
}

type feedbackRequest struct {
	Feedback    string     `json:"feedback" binding:"required"`
	PlantID     *uuid.UUID `json:"plant_id"`
	CorrectName *string    `json:"correct_name"`
}

// Identify accepts a photo under the "file" multipart field and returns
// ranked species predictions.
func (h *IdentificationHandler) Identify(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}

	result, err := h.identService.Identify(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.log.Error("Identify failed", "error", err, "filename", fileHeader.Filename)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *IdentificationHandler) GetIdentification(c *gin.Context) {
	id, ok := pathUUID(c, "identification_id")
	if !ok {
		return
	}
	row, err := h.identService.GetIdentification(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *IdentificationHandler) History(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var plantID *uuid.UUID
	if raw := c.Query("plant_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, 400, "invalid_id", err)
			return
		}
		plantID = &parsed
	}

	rows, total, err := h.identService.History(c.Request.Context(), plantID, skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, Paged{Items: rows, Total: total, Limit: limit, Skip: skip})
}

func (h *IdentificationHandler) CreatePlant(c *gin.Context) {
	id, ok := pathUUID(c, "identification_id")
	if !ok {
		return
	}
	var req adoptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	plant, warnings, err := h.identService.CreatePlantFromIdentification(c.Request.Context(), id, services.AdoptInput{
		RoomID:       req.RoomID,
		ShelfID:      req.ShelfID,
		Name:         req.Name,
		Description:  req.Description,
		PurchaseDate: req.PurchaseDate,
		HealthStatus: req.HealthStatus,
		SelectedRank: req.SelectedRank,
	})
	if err != nil {
		h.log.Error("CreatePlant from identification failed", "error", err, "identification_id", id)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"plant": plant, "warnings": warnings})
}

func (h *IdentificationHandler) SubmitFeedback(c *gin.Context) {
	id, ok := pathUUID(c, "identification_id")
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	row, err := h.identService.SubmitFeedback(c.Request.Context(), id, req.Feedback, req.PlantID, req.CorrectName)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (h *IdentificationHandler) DeleteIdentification(c *gin.Context) {
	id, ok := pathUUID(c, "identification_id")
	if !ok {
		return
	}
	warnings, err := h.identService.DeleteIdentification(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "warnings": warnings})
}
