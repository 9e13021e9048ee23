// Package services – UsageService
//
// This file implements UsageService, which exposes the usage ledger for the
// history endpoint. It is read-only: rows are appended by the chat and
// speech pipelines, never through this service. Pagination defaults mirror
// the rest of the API (page 1, twenty rows per page).
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dramalab/go-drama-agent/internal/domain"
)

// UsageRepo defines the repository contract required by UsageService.
type UsageRepo interface {
	// CountUsage returns the number of ledger rows for an identity
	// (empty identity counts everything).
	CountUsage(ctx context.Context, db *gorm.DB, identity string) (int64, error)

	// ListUsagePage returns a page of ledger rows, most recent first.
	ListUsagePage(ctx context.Context, db *gorm.DB, identity string, offset, limit int) ([]domain.UsageLog, error)

	// UsageStats returns the row count and greatest CreatedAt for
	// conditional-response metadata.
	UsageStats(ctx context.Context, db *gorm.DB, identity string) (int64, *time.Time, error)
}

// UsageService provides read access to the usage ledger.
type UsageService struct {
	// DB is the GORM handle used for queries.
	DB *gorm.DB
	// Repo is the ledger repository used by this service.
	Repo UsageRepo
}

// NewUsageService constructs a UsageService.
func NewUsageService(db *gorm.DB, r UsageRepo) *UsageService {
	return &UsageService{DB: db, Repo: r}
}

// ListPage returns a page of ledger rows for an identity (empty identity
// lists everything). It applies defaults for invalid page/pageSize and
// returns the total count.
func (s *UsageService) ListPage(ctx context.Context, identity string, page, pageSize int) ([]domain.UsageLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountUsage(ctx, s.DB, identity)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.UsageLog{}, 0, nil
	}

	items, err := s.Repo.ListUsagePage(ctx, s.DB, identity, offset, pageSize)
	return items, total, err
}

// Stats returns the ledger row count and latest insertion time for an
// identity, for ETag generation at the HTTP layer.
func (s *UsageService) Stats(ctx context.Context, identity string) (int64, *time.Time, error) {
	return s.Repo.UsageStats(ctx, s.DB, identity)
}
