// Agent HTTP handlers.
//
// This file exposes the conversational endpoints of the public API:
//   - POST /agent/chat   (persona-driven chat turn, quota-gated)
//   - POST /agent/speak  (text-to-speech synthesis)
//   - GET  /agent/quota  (current quota snapshot, non-consuming)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate service and provider errors into the HTTP error taxonomy
// (429 quota, 500 configuration, 502 upstream, 402 upstream billing).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/dramalab/go-drama-agent/internal/domain"
	"github.com/dramalab/go-drama-agent/internal/persona"
	"github.com/dramalab/go-drama-agent/internal/provider"
	"github.com/dramalab/go-drama-agent/internal/quota"
	"github.com/dramalab/go-drama-agent/internal/services"
)

//
// Service contracts (context-aware)
//

// AgentService defines the chat pipeline consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AgentService interface {
	// Chat runs one quota-gated chat turn and returns the assistant reply.
	Chat(ctx context.Context, identity, mode, message string) (string, error)
	// QuotaStatus reports current usage for identity without consuming quota.
	QuotaStatus(identity string) quota.Decision
}

// SpeechService defines text-to-speech synthesis operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SpeechService interface {
	// Speak synthesizes text into audio using the configured voice.
	Speak(ctx context.Context, identity, text, voice string) (provider.Audio, error)
}

// UsageService defines read access to the usage ledger.
type UsageService interface {
	// ListPage returns a page of usage rows (newest first) and the total count.
	ListPage(ctx context.Context, identity string, page, pageSize int) ([]domain.UsageLog, int64, error)
	// Stats returns the row count and newest timestamp for ETag computation.
	Stats(ctx context.Context, identity string) (int64, *time.Time, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for chat, speech, quota, and usage.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	agentSvc  AgentService
	speechSvc SpeechService
	usageSvc  UsageService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(agentSvc AgentService, speechSvc SpeechService, usageSvc UsageService) *Handlers {
	return &Handlers{agentSvc: agentSvc, speechSvc: speechSvc, usageSvc: usageSvc}
}

// userID extracts the caller identity from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// ChatRequest is the JSON payload for one chat turn.
type ChatRequest struct {
	// UserID identifies the caller for quota accounting (caller-supplied).
	UserID string `json:"user_id" binding:"required" example:"web-demo"`
	// Mode selects the persona. Deprecated aliases are accepted, a blank
	// mode defaults to "daily", and unknown modes fall back to the generic
	// assistant.
	Mode string `json:"mode" example:"daily"`
	// Message is the free-text user input forwarded to the model.
	Message string `json:"message" binding:"required" example:"教我一句便利店常用的日语"`
	// Episode is an optional scene context marker; accepted and ignored.
	Episode *int `json:"episode,omitempty" example:"3"`
	// LineID is an optional script line reference; accepted and ignored.
	LineID *string `json:"line_id,omitempty" example:"ep03-l042"`
}

// ChatResponse carries the assistant reply for a chat turn.
type ChatResponse struct {
	Reply string `json:"reply" example:"「袋はいりません」と言えば大丈夫です。"`
}

// SpeakRequest is the JSON payload for speech synthesis.
type SpeakRequest struct {
	// UserID optionally attributes the synthesis in the usage ledger.
	UserID string `json:"user_id" example:"web-demo"`
	// Text is the content to synthesize.
	Text string `json:"text" binding:"required" example:"いらっしゃいませ"`
	// Voice overrides the configured default voice when set.
	Voice string `json:"voice" example:"alloy"`
}

// QuotaStatusResponse is a snapshot of an identity's daily budget.
type QuotaStatusResponse struct {
	Identity  string `json:"identity" example:"web-demo"`
	Used      int    `json:"used" example:"3"`
	Limit     int    `json:"limit" example:"5"`
	Remaining int    `json:"remaining" example:"2"`
	// ResetAt is absent until the identity's first admitted request.
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

//
// Quota exhaustion messaging
//

// quotaLangs are the supported response languages for the quota message, in
// preference order; Simplified Chinese is the fallback.
var quotaLangs = language.NewMatcher([]language.Tag{
	language.SimplifiedChinese,
	language.Japanese,
})

// quotaMessage renders the bilingual quota-exhausted message, ordering the
// Chinese and Japanese halves by the caller's Accept-Language preference.
// Both halves name the reset time and how to obtain extended access.
func quotaMessage(resetAt time.Time, acceptLanguage string) string {
	reset := resetAt.UTC().Format("15:04 UTC")
	zh := fmt.Sprintf("今日的免费对话次数已用完，将于 %s 重置。如需更多次数，请联系管理员开通。", reset)
	ja := fmt.Sprintf("本日の無料利用回数を使い切りました。%s にリセットされます。追加利用は管理者までお問い合わせください。", reset)

	_, idx := language.MatchStrings(quotaLangs, acceptLanguage)
	if idx == 1 { // Japanese preferred
		return ja + "／" + zh
	}
	return zh + "／" + ja
}

// retryAfterSeconds converts a duration into a Retry-After header value,
// rounding up so clients never retry before the reset.
func retryAfterSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

//
// Handlers
//

// AgentChat godoc
// @ID          agentChat
// @Summary     Chat with a persona
// @Description Runs one chat turn: checks the caller's daily quota, resolves the requested persona mode (deprecated aliases accepted), and forwards the message to the configured model.
// @Tags        Agent
// @Accept      json
// @Produce     json
//
// @Param       Accept-Language  header  string  false "Preferred language for quota messages"  example(ja)
// @Param       body             body    handlers.ChatRequest  true  "Chat payload"
//
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Daily quota exhausted"
// @Failure     500  {object}  handlers.ErrorResponse  "Provider configuration missing"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream provider failure"
// @Router      /agent/chat [post]
func (h *Handlers) AgentChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: user_id and message are required")
		return
	}
	if strings.TrimSpace(req.Mode) == "" {
		req.Mode = string(persona.DefaultMode)
	}

	reply, err := h.agentSvc.Chat(c.Request.Context(), req.UserID, req.Mode, req.Message)
	if err != nil {
		h.failChat(c, err)
		return
	}
	ok(c, http.StatusOK, ChatResponse{Reply: reply})
}

// failChat translates chat pipeline errors into HTTP responses.
func (h *Handlers) failChat(c *gin.Context, err error) {
	var qe *services.QuotaExceededError
	switch {
	case errors.As(err, &qe):
		c.Header("Retry-After", retryAfterSeconds(qe.RetryAfter))
		c.Header("X-Quota-Reset", qe.ResetAt.UTC().Format(time.RFC3339))
		fail(c, http.StatusTooManyRequests, ErrCodeRateLimited,
			quotaMessage(qe.ResetAt, c.GetHeader("Accept-Language")))
	case errors.Is(err, services.ErrEmptyIdentity),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, provider.ErrNotConfigured):
		fail(c, http.StatusInternalServerError, ErrCodeConfig, "LLM configuration missing")
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpstream, "LLM request failed: "+err.Error())
	}
}

// AgentSpeak godoc
// @ID          agentSpeak
// @Summary     Synthesize speech
// @Description Converts text to audio via the configured speech provider and returns raw audio bytes. Speech is not quota-gated; upstream billing exhaustion is reported as 402 so clients can fall back to text.
// @Tags        Agent
// @Accept      json
// @Produce     audio/mpeg
//
// @Param       body  body  handlers.SpeakRequest  true  "Speech payload"
//
// @Success     200  {string}  binary  "Raw audio bytes"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     402  {object}  handlers.ErrorResponse  "Upstream quota/billing exhausted"
// @Failure     500  {object}  handlers.ErrorResponse  "Provider configuration missing"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream provider failure"
// @Router      /agent/speak [post]
func (h *Handlers) AgentSpeak(c *gin.Context) {
	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: text is required")
		return
	}
	identity := req.UserID
	if identity == "" {
		identity = userID(c)
	}

	audio, err := h.speechSvc.Speak(c.Request.Context(), identity, req.Text, req.Voice)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyText), errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, provider.ErrQuotaExhausted):
			fail(c, http.StatusPaymentRequired, ErrCodePaymentRequired,
				"语音暂不可用（服务商配额已用尽），文字对话仍可正常使用。／音声出力は現在ご利用いただけません（プロバイダーのクォータ上限）。テキストでの会話は引き続きご利用いただけます。")
		case errors.Is(err, provider.ErrNotConfigured):
			fail(c, http.StatusInternalServerError, ErrCodeConfig, "speech provider configuration missing")
		default:
			fail(c, http.StatusBadGateway, ErrCodeUpstream, "speech request failed: "+err.Error())
		}
		return
	}

	c.Data(http.StatusOK, audio.ContentType, audio.Bytes)
}

// AgentQuota godoc
// @ID          agentQuota
// @Summary     Current quota snapshot
// @Description Reports how much of the daily budget the identity has used without consuming quota.
// @Tags        Agent
// @Produce     json
//
// @Param       user_id  query  string  true  "Caller identity"  example(web-demo)
//
// @Success     200  {object}  handlers.QuotaStatusResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /agent/quota [get]
func (h *Handlers) AgentQuota(c *gin.Context) {
	identity := strings.TrimSpace(c.Query("user_id"))
	if identity == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id query parameter required")
		return
	}

	d := h.agentSvc.QuotaStatus(identity)
	resp := QuotaStatusResponse{
		Identity:  identity,
		Used:      d.Used,
		Limit:     d.Used + d.Remaining,
		Remaining: d.Remaining,
	}
	if !d.ResetAt.IsZero() {
		t := d.ResetAt.UTC()
		resp.ResetAt = &t
	}
	ok(c, http.StatusOK, resp)
}
