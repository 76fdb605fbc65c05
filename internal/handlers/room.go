package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type RoomHandler struct {
	log         *logger.Logger
	roomService services.RoomService
}

func NewRoomHandler(log *logger.Logger, roomService services.RoomService) *RoomHandler {
	return &RoomHandler{
		log:         log.With("handler", "RoomHandler"),
		roomService: roomService,
	}
}

type createRoomRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	LocationType string  `json:"location_type"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	SortOrder    int     `json:"sort_order"`
}

type updateRoomRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	LocationType *string `json:"location_type"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	SortOrder    *int    `json:"sort_order"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	room, err := h.roomService.CreateRoom(c.Request.Context(), services.RoomInput{
		Name:         req.Name,
		Description:  req.Description,
		LocationType: req.LocationType,
		Icon:         req.Icon,
		Color:        req.Color,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		h.log.Error("CreateRoom failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, room)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	view, err := h.roomService.GetRoom(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	views, total, err := h.roomService.GetRooms(c.Request.Context(), c.Query("location_type"), skip, limit)
	if err != nil {
		h.log.Error("ListRooms failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, Paged{Items: views, Total: total, Limit: limit, Skip: skip})
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "invalid_request", err)
		return
	}
	room, err := h.roomService.UpdateRoom(c.Request.Context(), id, services.RoomUpdate{
		Name:         req.Name,
		Description:  req.Description,
		LocationType: req.LocationType,
		Icon:         req.Icon,
		Color:        req.Color,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, room)
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id, ok := pathUUID(c, "room_id")
	if !ok {
		return
	}
	if err := h.roomService.DeleteRoom(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "deleted_at": time.Now()})
}
