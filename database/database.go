package database

import (
	"aerograph/config"
	"aerograph/models"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide database handle opened by InitDB
var DB *gorm.DB

// Open connects to the SQLite file described by cfg, applies pool limits and
// pragmas, and migrates the key/value settings table.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(buildSQLiteDSN(cfg.DatabaseURL, cfg)), &gorm.Config{
		Logger: sqliteMetricsLogger{Interface: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		)},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.DatabaseURL, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	pool := poolConfigFrom(cfg)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.maxLifeSec) * time.Second)

	// DSN params cover new connections; re-apply for files created by older builds.
	if cfg.SQLitePragmasEnabled {
		for _, stmt := range pragmaStatements(cfg) {
			db.Exec(stmt)
		}
	}

	if err := db.AutoMigrate(&models.AppSetting{}); err != nil {
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	return db, nil
}

// InitDB opens the database from config.Settings and stores it in DB
func InitDB() error {
	db, err := Open(config.Settings)
	if err != nil {
		return err
	}
	DB = db
	log.Println("Database initialized successfully")
	return nil
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}
