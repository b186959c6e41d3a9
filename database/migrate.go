package database

import (
	"fmt"
	"time"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect открывает GORM поверх postgres и проверяет соединение
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// AutoMigrate выполняет миграцию моделей портарии
func AutoMigrate(db *gorm.DB) error {
	start := time.Now()
	err := db.AutoMigrate(
		&models.Condominium{},
		&models.Resident{},
		&models.Package{},
	)
	logger.DBLog("auto_migrate", "condominiums, residents, packages", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
