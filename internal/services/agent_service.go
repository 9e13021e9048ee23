// Package services – AgentService
//
// This file implements AgentService, the application-level component that
// owns the chat pipeline: admit the request against the caller's daily
// quota, resolve the requested persona, wrap the user text with the
// persona's template, and invoke the chat provider once. The reply text is
// returned verbatim; no retries are performed, and a consumed quota slot is
// never refunded when the provider call fails or times out.
//
// Each admitted call is appended to the usage ledger as metadata (identity,
// mode, outcome, latency). Ledger writes are best-effort and never fail the
// request.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the identity and canonical mode but never the message text.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dramalab/go-drama-agent/internal/domain"
	"github.com/dramalab/go-drama-agent/internal/persona"
	"github.com/dramalab/go-drama-agent/internal/quota"
	"github.com/dramalab/go-drama-agent/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChatProvider is the single upstream call the chat pipeline depends on.
// Implementations live in the provider package and map their failures into
// that package's error taxonomy.
type ChatProvider interface {
	// Complete sends one system instruction and one user message and
	// returns the generated reply text.
	Complete(ctx context.Context, systemInstruction, userMessage string) (string, error)
}

// AgentService coordinates quota admission, persona resolution, and the
// provider call for the chat endpoint.
type AgentService struct {
	// DB is the GORM handle for the usage ledger. Nil disables ledger writes.
	DB *gorm.DB
	// Quota is the per-identity daily admission tracker.
	Quota *quota.Tracker
	// Provider produces the reply text.
	Provider ChatProvider
	// ProviderName labels ledger rows and spans, e.g. "openai".
	ProviderName string

	// CallTimeout bounds each outbound provider call. Zero means no bound
	// beyond the request context.
	CallTimeout time.Duration
	// MaxMessageRunes caps accepted message length by rune count.
	MaxMessageRunes int
}

// NewAgentService constructs an AgentService with the default guards.
func NewAgentService(db *gorm.DB, tracker *quota.Tracker, p ChatProvider, providerName string) *AgentService {
	return &AgentService{
		DB:              db,
		Quota:           tracker,
		Provider:        p,
		ProviderName:    providerName,
		CallTimeout:     60 * time.Second,
		MaxMessageRunes: 4000,
	}
}

// Chat runs the full pipeline for one request and returns the reply text.
//
// Error contract, in the order checked:
//   - ErrEmptyIdentity / ErrEmptyMessage / ErrTooLong for invalid input
//     (rejected before a quota slot is consumed)
//   - *QuotaExceededError when the identity's daily budget is exhausted
//     (no provider call is made)
//   - provider taxonomy errors when the upstream call fails; the quota slot
//     consumed at admission stays consumed
func (s *AgentService) Chat(ctx context.Context, identity, mode, message string) (string, error) {
	p := persona.Resolve(mode)

	tr := otel.Tracer("services/AgentService")
	ctx, span := tr.Start(ctx, "Chat",
		trace.WithAttributes(
			attribute.String("user.id", identity),
			attribute.String("agent.mode", string(p.Mode)),
		),
	)
	defer span.End()

	message = strings.TrimSpace(message)
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	if message == "" {
		return "", ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return "", ErrTooLong
	}

	d := s.Quota.Admit(identity)
	if !d.Allowed {
		return "", &QuotaExceededError{
			Identity:   identity,
			Limit:      s.Quota.Limit(),
			ResetAt:    d.ResetAt,
			RetryAfter: d.RetryAfter,
		}
	}

	callCtx := ctx
	if s.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.Provider.Complete(callCtx, p.SystemInstruction, p.Wrap(message))
	// Ledger writes use the parent context so a timed-out provider call can
	// still be recorded.
	recordUsage(ctx, s.DB, identity, string(p.Mode), domain.OpChat, s.ProviderName, err, time.Since(start))
	if err != nil {
		return "", err
	}
	return reply, nil
}

// QuotaStatus reports the identity's current budget without consuming a slot.
func (s *AgentService) QuotaStatus(identity string) quota.Decision {
	return s.Quota.Peek(identity)
}

// recordUsage appends one ledger row for a finished provider call. A nil DB
// disables the ledger; a write failure is logged and swallowed so it never
// surfaces to the caller.
func recordUsage(ctx context.Context, db *gorm.DB, identity, mode, op, providerName string, callErr error, latency time.Duration) {
	if db == nil {
		return
	}
	status := domain.StatusOK
	if callErr != nil {
		status = domain.StatusError
	}
	if _, err := repo.InsertUsage(ctx, db, identity, mode, op, providerName, status, latency); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("usage ledger write failed")
	}
}
