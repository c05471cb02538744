package database

import (
	"fmt"

	"github.com/dewgenenny/facesinq/internal/config"
	logging "github.com/dewgenenny/facesinq/internal/logging"
	"github.com/dewgenenny/facesinq/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects using the global config and runs migrations. It is fatal on
// failure; the bot cannot do anything without its store.
func Init(log *zap.Logger) {
	dbConf := config.Conf.Database
	if err := Open(dbConf, log); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection established successfully.")
	runMigrations(log)
}

// Open connects to the configured database and assigns the package-level
// handle. Split out from Init so tests can point DB at an in-memory sqlite.
func Open(dbConf config.DatabaseConfig, log *zap.Logger) error {
	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	var dialector gorm.Dialector
	switch dbConf.Driver {
	case "sqlite":
		dialector = sqlite.Open(dbConf.DSN)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unknown database driver %q", dbConf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Migrate creates tables and indexes. Exposed for tests.
func Migrate() error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.User{},
		&models.QuizSession{},
		&models.Score{},
		&models.ScoreHistory{},
	)
	if err != nil {
		return err
	}

	// Windowed leaderboards scan history by time, newest first.
	historyIndex := `CREATE INDEX IF NOT EXISTS idx_score_history_window ON score_history (user_id, created_at DESC);`
	return DB.Exec(historyIndex).Error
}

func runMigrations(log *zap.Logger) {
	if err := Migrate(); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")
}
