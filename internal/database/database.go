package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"aura/internal/config"
	logging "aura/internal/logging"
	"aura/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
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
		&models.Session{},
		&models.MotorTrace{},
		&models.MotorAttempt{},
		&models.RoundSummary{},
		&models.SessionSummary{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	attemptIndex := `CREATE INDEX IF NOT EXISTS idx_attempt_query ON motor_attempts (session_id, round, created_at DESC);`
	if err := DB.Exec(attemptIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on attempts table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
