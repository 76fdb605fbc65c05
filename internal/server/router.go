package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/handlers"
	"github.com/leafkeep/plantcare-backend/internal/middleware"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

type RouterConfig struct {
	Log                   *logger.Logger
	DB                    *gorm.DB
	Recognizer            services.Recognizer
	UploadDir             string
	AllowOrigins          []string
	RoomHandler           *handlers.RoomHandler
	ShelfHandler          *handlers.ShelfHandler
	PlantHandler          *handlers.PlantHandler
	ImageHandler          *handlers.ImageHandler
	CareConfigHandler     *handlers.CareConfigHandler
	IdentificationHandler *handlers.IdentificationHandler
	SuggestionHandler     *handlers.SuggestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/readiness", handlers.Readiness(cfg.DB, cfg.Recognizer))
	router.Static("/uploads", cfg.UploadDir)

	api := router.Group("/api/v1")

	// Rooms and their shelves
	api.POST("/rooms", cfg.RoomHandler.CreateRoom)
	api.GET("/rooms", cfg.RoomHandler.ListRooms)
	api.GET("/rooms/:room_id", cfg.RoomHandler.GetRoom)
	api.PUT("/rooms/:room_id", cfg.RoomHandler.UpdateRoom)
	api.DELETE("/rooms/:room_id", cfg.RoomHandler.DeleteRoom)
	api.POST("/rooms/:room_id/shelves", cfg.ShelfHandler.CreateShelf)
	api.GET("/rooms/:room_id/shelves", cfg.ShelfHandler.ListShelves)
	api.PUT("/rooms/:room_id/shelves/reorder", cfg.ShelfHandler.ReorderShelves)

	// Shelves
	api.GET("/shelves/:shelf_id", cfg.ShelfHandler.GetShelf)
	api.PUT("/shelves/:shelf_id", cfg.ShelfHandler.UpdateShelf)
	api.DELETE("/shelves/:shelf_id", cfg.ShelfHandler.DeleteShelf)
	api.PUT("/shelves/:shelf_id/plants/reorder", cfg.ShelfHandler.ReorderPlants)

	// Plants
	api.POST("/plants", cfg.PlantHandler.CreatePlant)
	api.GET("/plants", cfg.PlantHandler.ListPlants)
	api.GET("/plants/:plant_id", cfg.PlantHandler.GetPlant)
	api.PUT("/plants/:plant_id", cfg.PlantHandler.UpdatePlant)
	api.DELETE("/plants/:plant_id", cfg.PlantHandler.ArchivePlant)
	api.POST("/plants/:plant_id/restore", cfg.PlantHandler.RestorePlant)
	api.DELETE("/plants/:plant_id/permanent", cfg.PlantHandler.PermanentDeletePlant)
	api.PUT("/plants/:plant_id/move", cfg.ShelfHandler.MovePlant)

	// Plant photos
	api.GET("/plants/:plant_id/images", cfg.ImageHandler.ListImages)
	api.POST("/plants/:plant_id/images", cfg.ImageHandler.AddImage)
	api.POST("/plants/:plant_id/images/upload", cfg.ImageHandler.UploadImage)
	api.GET("/plants/:plant_id/images/:image_id", cfg.ImageHandler.GetImage)
	api.PUT("/plants/:plant_id/images/:image_id", cfg.ImageHandler.UpdateImage)
	api.PUT("/plants/:plant_id/images/:image_id/primary", cfg.ImageHandler.SetPrimary)
	api.DELETE("/plants/:plant_id/images/:image_id", cfg.ImageHandler.DeleteImage)

	// Care configs and the task dashboard
	api.POST("/plants/:plant_id/care-configs", cfg.CareConfigHandler.CreateConfig)
	api.GET("/plants/:plant_id/care-configs", cfg.CareConfigHandler.ListConfigs)
	api.GET("/care-configs/:config_id", cfg.CareConfigHandler.GetConfig)
	api.PUT("/care-configs/:config_id", cfg.CareConfigHandler.UpdateConfig)
	api.DELETE("/care-configs/:config_id", cfg.CareConfigHandler.DeleteConfig)
	api.POST("/care-configs/:config_id/complete", cfg.CareConfigHandler.CompleteTask)
	api.GET("/tasks", cfg.CareConfigHandler.ListTasks)
	api.GET("/tasks/today", cfg.CareConfigHandler.ListTodayTasks)
	api.GET("/tasks/upcoming", cfg.CareConfigHandler.ListUpcomingTasks)
	api.GET("/tasks/overdue", cfg.CareConfigHandler.ListOverdueTasks)
	api.GET("/task-types", cfg.CareConfigHandler.ListTaskTypes)

	// Species identification
	api.POST("/identifications", cfg.IdentificationHandler.Identify)
	api.GET("/identifications", cfg.IdentificationHandler.History)
	api.GET("/identifications/:identification_id", cfg.IdentificationHandler.GetIdentification)
	api.POST("/identifications/:identification_id/plants", cfg.IdentificationHandler.CreatePlant)
	api.POST("/identifications/:identification_id/feedback", cfg.IdentificationHandler.SubmitFeedback)
	api.DELETE("/identifications/:identification_id", cfg.IdentificationHandler.DeleteIdentification)

	// Suggestions
	api.POST("/suggestions", cfg.SuggestionHandler.CreateSuggestion)
	api.GET("/suggestions", cfg.SuggestionHandler.ListSuggestions)
	api.GET("/suggestions/:suggestion_id", cfg.SuggestionHandler.GetSuggestion)
	api.PUT("/suggestions/:suggestion_id", cfg.SuggestionHandler.UpdateSuggestion)
	api.DELETE("/suggestions/:suggestion_id", cfg.SuggestionHandler.DeleteSuggestion)

	return router
}
