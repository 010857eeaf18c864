package db

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/blog-publisher/internal/config"
)

const (
	maxOpenConns = 10
	maxIdleConns = 2
)

// Database bundles the gorm handle with the pool underneath it.
type Database struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// Connect opens the PostgreSQL audit database.
func Connect(cfg config.DatabaseConfig, debug bool) (*Database, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
}

// Open wraps any gorm dialector; tests pass one backed by sqlmock.
func Open(dialector gorm.Dialector, gormCfg *gorm.Config) (*Database, error) {
	gormDB, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	return &Database{Gorm: gormDB, SQL: sqlDB}, nil
}

func (d *Database) AutoMigrate(modelsToMigrate ...any) error {
	return d.Gorm.AutoMigrate(modelsToMigrate...)
}

// EnsureTagsIndex adds a GIN index so audit rows can be filtered by tag.
func (d *Database) EnsureTagsIndex() error {
	return d.Gorm.Exec("CREATE INDEX IF NOT EXISTS idx_activity_logs_tags_gin ON activity_logs USING GIN (tags)").Error
}

func (d *Database) Close() error {
	if d.SQL != nil {
		return d.SQL.Close()
	}
	return nil
}
