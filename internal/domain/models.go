// Package domain defines the persistence models of the agent backend. The
// only durable aggregate is the usage ledger: one append-only row per
// admitted provider call, holding request metadata but never message content
// or audio. Quota state itself is deliberately not persisted; the in-memory
// tracker is the single source of truth for admission.
package domain

import "time"

// Operation values recorded in the usage ledger.
const (
	OpChat   = "chat"
	OpSpeech = "speech"
)

// Status values recorded in the usage ledger.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// UsageLog is one admitted request that reached a provider. Rows are
// append-only; nothing updates or deletes them.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Identity: caller-supplied quota key; indexed with CreatedAt for
//     per-identity history queries.
//   - Mode: canonical persona mode after alias normalization.
//   - Op: "chat" or "speech".
//   - Provider: adapter label that served the call (e.g. "openai").
//   - Status: "ok" or "error"; quota rejections never reach a provider and
//     are not recorded.
//   - LatencyMs: wall time of the provider call in milliseconds.
//   - CreatedAt: insertion timestamp.
type UsageLog struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Identity  string    `json:"identity"   gorm:"type:varchar(64);not null;index:idx_usage_identity,priority:1"`
	Mode      string    `json:"mode"       gorm:"type:varchar(32);not null"`
	Op        string    `json:"op"         gorm:"type:varchar(16);not null;check:op IN ('chat','speech')"`
	Provider  string    `json:"provider"   gorm:"type:varchar(32);not null"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null;check:status IN ('ok','error')"`
	LatencyMs int64     `json:"latency_ms" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_usage_identity,priority:2"`
}

// TableName returns the database table name for UsageLog.
func (UsageLog) TableName() string { return "usage_logs" }
