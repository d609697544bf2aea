package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/config"
	logging "github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/logging"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn // queries are read-heavy; only surface slow ones

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.QuestionnaireEntry{},
		&models.ScanSession{},
		&models.Demographic{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	sessionsIndex := `CREATE INDEX IF NOT EXISTS idx_scan_sessions_query ON scan_sessions (session_id, created_at DESC);`
	if err := DB.Exec(sessionsIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on scan_sessions", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
