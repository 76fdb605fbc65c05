package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type ImageHandler struct {
	log          *logger.Logger
	imageService services.ImageService
}

func NewImageHandler(log *logger.Logger, imageService services.ImageService) *ImageHandler {
	return &ImageHandler{
		log:          log.With("handler", "ImageHandler"),
		imageService: imageService,
	}
}

type addImageRequest struct {
	URL          string     `json:"url" binding:"required"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	Caption      *string    `json:"caption"`
	IsPrimary    bool       `json:"is_primary"`
	TakenAt      *time.Time `json:"taken_at"`
	SortOrder    int        `json:"sort_order"`
}

type updateImageRequest struct {
	Caption   *string    `json:"caption"`
	TakenAt   *time.Time `json:"taken_at"`
	SortOrder *int       `json:"sort_order"`
}

func (h *ImageHandler) ListImages(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	images, err := h.imageService.GetImages(c.Request.Context(), plantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"images": images})
}

func (h *ImageHandler) GetImage(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(c, "image_id")
	if !ok {
		return
	}
	image, err := h.imageService.GetImage(c.Request.Context(), plantID, imageID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, image)
}

func (h *ImageHandler) AddImage(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	var req addImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	image, err := h.imageService.AddImage(c.Request.Context(), plantID, services.ImageInput{
		URL:          req.URL,
		ThumbnailURL: req.ThumbnailURL,
		Caption:      req.Caption,
		IsPrimary:    req.IsPrimary,
		TakenAt:      req.TakenAt,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, image)
}

// UploadImage accepts a multipart photo upload under the "file" field.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
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

	var caption *string
	if v := c.PostForm("caption"); v != "" {
		caption = &v
	}
	isPrimary := c.PostForm("is_primary") == "true"
	var takenAt *time.Time
	if v := c.PostForm("taken_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			takenAt = &t
		}
	}

	image, warnings, err := h.imageService.UploadImage(c.Request.Context(), plantID, fileHeader.Filename, data, caption, isPrimary, takenAt)
	if err != nil {
		h.log.Error("UploadImage failed", "error", err, "plant_id", plantID)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"image": image, "warnings": warnings})
}

func (h *ImageHandler) UpdateImage(c *gin.Context) {
	imageID, ok := pathUUID(c, "image_id")
	if !ok {
		return
	}
	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	image, err := h.imageService.UpdateImage(c.Request.Context(), imageID, services.ImageUpdate{
		Caption:   req.Caption,
		TakenAt:   req.TakenAt,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, image)
}

func (h *ImageHandler) SetPrimary(c *gin.Context) {
	plantID, ok := pathUUID(c, "plant_id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(c, "image_id")
	if !ok {
		return
	}
	image, err := h.imageService.SetPrimary(c.Request.Context(), plantID, imageID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, image)
}

func (h *ImageHandler) DeleteImage(c *gin.Context) {
	imageID, ok := pathUUID(c, "image_id")
	if !ok {
		return
	}
	warnings, err := h.imageService.DeleteImage(c.Request.Context(), imageID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "warnings": warnings})
}
