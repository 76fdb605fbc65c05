package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leafkeep/plantcare-backend/internal/db"
	"github.com/leafkeep/plantcare-backend/internal/handlers"
	"github.com/leafkeep/plantcare-backend/internal/platform/envutil"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
	"github.com/leafkeep/plantcare-backend/internal/server"
	"github.com/leafkeep/plantcare-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := envutil.Str("PORT", "8000")
	uploadDir := envutil.Str("UPLOAD_DIR", "./uploads")
	allowOrigins := strings.Split(envutil.Str("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	baiduAPIKey := envutil.Str("BAIDU_API_KEY", "")
	baiduSecretKey := envutil.Str("BAIDU_SECRET_KEY", "")
	baiduTopNum := envutil.Int("BAIDU_TOP_NUM", 5)
	baiduTimeout := envutil.Seconds("BAIDU_TIMEOUT", 15*time.Second)
	dedupTTL := envutil.Seconds("IDENTIFY_CACHE_TTL", 24*time.Hour)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	if err = db.SeedTaskTypes(thePG, log); err != nil {
		log.Warn("Task type seeding failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	roomRepo := repos.NewRoomRepo(thePG, log)
	shelfRepo := repos.NewShelfRepo(thePG, log)
	plantRepo := repos.NewPlantRepo(thePG, log)
	plantImageRepo := repos.NewPlantImageRepo(thePG, log)
	taskTypeRepo := repos.NewTaskTypeRepo(thePG, log)
	careConfigRepo := repos.NewCareConfigRepo(thePG, log)
	identificationRepo := repos.NewIdentificationRepo(thePG, log)
	suggestionRepo := repos.NewSuggestionRepo(thePG, log)

	// Media + recognizer
	media := services.NewMediaStore(log, uploadDir)
	recognizer := services.NewBaiduRecognizer(log, services.BaiduConfig{
		APIKey:    baiduAPIKey,
		SecretKey: baiduSecretKey,
		TopNum:    baiduTopNum,
		Timeout:   baiduTimeout,
	})

	// Services
	log.Info("Setting up Services from main...")
	shelfService := services.NewShelfService(thePG, log, shelfRepo, plantRepo, roomRepo)
	roomService := services.NewRoomService(thePG, log, roomRepo, shelfRepo, plantRepo)
	plantService := services.NewPlantService(thePG, log, plantRepo, roomRepo, shelfRepo, plantImageRepo, careConfigRepo, shelfService, media)
	imageService := services.NewImageService(thePG, log, plantImageRepo, plantRepo, media)
	careConfigService := services.NewCareConfigService(thePG, log, careConfigRepo, plantRepo, taskTypeRepo)
	identificationService := services.NewIdentificationService(thePG, log, identificationRepo, plantRepo, roomRepo, shelfRepo, plantImageRepo, shelfService, media, recognizer, dedupTTL)
	suggestionService := services.NewSuggestionService(thePG, log, suggestionRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	roomHandler := handlers.NewRoomHandler(log, roomService)
	shelfHandler := handlers.NewShelfHandler(log, shelfService)
	plantHandler := handlers.NewPlantHandler(log, plantService)
	imageHandler := handlers.NewImageHandler(log, imageService)
	careConfigHandler := handlers.NewCareConfigHandler(log, careConfigService)
	identificationHandler := handlers.NewIdentificationHandler(log, identificationService)
	suggestionHandler := handlers.NewSuggestionHandler(log, suggestionService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:                   log,
		DB:                    thePG,
		Recognizer:            recognizer,
		UploadDir:             uploadDir,
		AllowOrigins:          allowOrigins,
		RoomHandler:           roomHandler,
		ShelfHandler:          shelfHandler,
		PlantHandler:          plantHandler,
		ImageHandler:          imageHandler,
		CareConfigHandler:     careConfigHandler,
		IdentificationHandler: identificationHandler,
		SuggestionHandler:     suggestionHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
