// Package repo implements the data persistence layer for the usage ledger,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/dramalab/go-drama-agent/internal/domain"
)

// pragmas are applied on every open. WAL keeps readers (usage listing) from
// blocking the per-request ledger writes; busy_timeout covers the rare
// write/write overlap.
var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// OpenSQLite opens (or creates) a SQLite database, applies the pragmas, and
// installs query tracing.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Ledger queries become child spans of the request trace. Metrics stay
	// with the Prometheus middleware, so the plugin's own are disabled.
	if err := db.Use(tracing.NewPlugin(tracing.WithDBName("usage_ledger"), tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	for _, p := range pragmas {
		db.Exec(p)
	}

	// Pool: the ledger takes one short write per admitted request, so a small
	// pool is plenty.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the ledger schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.UsageLog{})
}
