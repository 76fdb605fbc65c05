package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/platform/envutil"
	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
	"github.com/leafkeep/plantcare-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.Str("POSTGRES_HOST", "localhost")
	port := envutil.Str("POSTGRES_PORT", "5432")
	user := envutil.Str("POSTGRES_USER", "postgres")
	password := envutil.Str("POSTGRES_PASSWORD", "")
	name := envutil.Str("POSTGRES_NAME", "plantcare")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates the schema on any GORM dialect. Shared with the sqlite
// databases the tests run against.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Room{},
		&types.Shelf{},
		&types.Plant{},
		&types.PlantImage{},
		&types.TaskType{},
		&types.CareConfig{},
		&types.Identification{},
		&types.Suggestion{},
	)
}
