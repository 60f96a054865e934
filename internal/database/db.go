package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stockwise-system/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logrus.Info("Database connected")
	return db, nil
}

func MigrateInventoryDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&models.StockMovement{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&models.Store{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.Transaction{})
}

func MigrateUserDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Role{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.User{})
}
