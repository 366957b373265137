package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flipledger/internal/infrastructure/store"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB for driver "sqlite" (dsn is a file path or ":memory:") or "postgres".
// PreferSimpleProtocol disables prepared statement caching, which breaks behind poolers such as PgBouncer.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch strings.ToLower(driver) {
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// SQLite allows one writer; a single connection also keeps :memory: databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// AutoMigrate creates the build_records table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&store.BuildRecordRow{})
}
