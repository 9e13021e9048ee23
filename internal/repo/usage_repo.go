// Package repo implements the data persistence layer for the usage ledger,
// backed by GORM. This file provides repository functions for the UsageLog
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated; the ledger has no not-found case
//     because rows are only listed, never fetched by ID.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dramalab/go-drama-agent/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertUsage appends one ledger row for an admitted provider call. The row
// ID is a randomly generated UUID and CreatedAt is set to UTC.
func InsertUsage(ctx context.Context, db *gorm.DB, identity, mode, op, providerName, status string, latency time.Duration) (*domain.UsageLog, error) {
	row := &domain.UsageLog{
		ID:        uuid.NewString(),
		Identity:  identity,
		Mode:      mode,
		Op:        op,
		Provider:  providerName,
		Status:    status,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// CountUsage returns the total number of ledger rows, optionally scoped to
// one identity (empty identity counts everything).
func CountUsage(ctx context.Context, db *gorm.DB, identity string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.UsageLog{})
	if identity != "" {
		q = q.Where("identity = ?", identity)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListUsagePage returns a paginated slice of ledger rows ordered by creation
// time descending (most recent first), optionally scoped to one identity.
// Use CountUsage to obtain the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListUsagePage(ctx context.Context, db *gorm.DB, identity string, offset, limit int) ([]domain.UsageLog, error) {
	q := db.WithContext(ctx).Model(&domain.UsageLog{})
	if identity != "" {
		q = q.Where("identity = ?", identity)
	}
	var out []domain.UsageLog
	err := q.Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
