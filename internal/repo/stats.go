// Package repo implements the data persistence layer for the usage ledger,
// backed by GORM. This file provides small aggregate queries used primarily
// for conditional responses (e.g., ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dramalab/go-drama-agent/internal/domain"
)

// UsageStats returns aggregate metadata for ledger rows, optionally scoped to
// one identity: the total number of rows and the maximum CreatedAt timestamp
// among them.
//
// When there are no matching rows, the returned count is 0 and maxCreatedAt
// is nil. Because the ledger is append-only, (count, maxCreatedAt) changes
// with every insert and is a sound ETag source.
//
// Return values:
//   - count:        total matching rows
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func UsageStats(ctx context.Context, db *gorm.DB, identity string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.UsageLog{})
	if identity != "" {
		q = q.Where("identity = ?", identity)
	}

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
