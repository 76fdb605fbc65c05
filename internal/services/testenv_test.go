package services

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/leafkeep/plantcare-backend/internal/db"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/repos"
)

// env bundles a fully wired service stack over an in-memory database.
type env struct {
	db      *gorm.DB
	log     *logger.Logger
	rooms   RoomService
	shelves ShelfService
	plants  PlantService
	images  ImageService
	configs CareConfigService
	media   *MediaStore

	roomRepo     repos.RoomRepo
	shelfRepo    repos.ShelfRepo
	plantRepo    repos.PlantRepo
	imageRepo    repos.PlantImageRepo
	taskTypeRepo repos.TaskTypeRepo
	configRepo   repos.CareConfigRepo
	identRepo    repos.IdentificationRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A second pooled connection would see an empty in-memory database.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if err := db.SeedTaskTypes(gdb, log); err != nil {
		t.Fatalf("seed task types: %v", err)
	}

	e := &env{
		db:           gdb,
		log:          log,
		roomRepo:     repos.NewRoomRepo(gdb, log),
		shelfRepo:    repos.NewShelfRepo(gdb, log),
		plantRepo:    repos.NewPlantRepo(gdb, log),
		imageRepo:    repos.NewPlantImageRepo(gdb, log),
		taskTypeRepo: repos.NewTaskTypeRepo(gdb, log),
		configRepo:   repos.NewCareConfigRepo(gdb, log),
		identRepo:    repos.NewIdentificationRepo(gdb, log),
	}
	e.media = NewMediaStore(log, t.TempDir())
	e.shelves = NewShelfService(gdb, log, e.shelfRepo, e.plantRepo, e.roomRepo)
	e.rooms = NewRoomService(gdb, log, e.roomRepo, e.shelfRepo, e.plantRepo)
	e.plants = NewPlantService(gdb, log, e.plantRepo, e.roomRepo, e.shelfRepo, e.imageRepo, e.configRepo, e.shelves, e.media)
	e.images = NewImageService(gdb, log, e.imageRepo, e.plantRepo, e.media)
	e.configs = NewCareConfigService(gdb, log, e.configRepo, e.plantRepo, e.taskTypeRepo)
	return e
}

func (e *env) identService(recognizer Recognizer) IdentificationService {
	return NewIdentificationService(e.db, e.log, e.identRepo, e.plantRepo, e.roomRepo, e.shelfRepo, e.imageRepo, e.shelves, e.media, recognizer, 0)
}

func (e *env) mustCreateRoom(t *testing.T, ctx context.Context, name string) *RoomView {
	t.Helper()
	room, err := e.rooms.CreateRoom(ctx, RoomInput{Name: name, LocationType: "indoor"})
	if err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	view, err := e.rooms.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("load room %q: %v", name, err)
	}
	return view
}
