// Package handlers wires HTTP requests to the feedback pipeline services.
//
// Responsibilities:
//   - Validate and bind request payloads (dates, batch sizes, channel IDs).
//   - Translate service-layer sentinel errors into stable HTTP error codes.
//   - Keep transport concerns (status codes, envelopes) out of the services.
//
// The handlers are deliberately thin: all pipeline semantics live in
// internal/services, and all persistence in internal/repo.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/http/middleware"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// Ingester pulls feedback from an external channel API and lands it in the
// raw staging table.
type Ingester interface {
	Ingest(ctx context.Context, channelID string, from, to time.Time) (services.IngestionResult, error)
}

// Processor normalizes staged raw records into the relational model.
type Processor interface {
	ProcessBatch(ctx context.Context, channelID string, batchSize int) (services.ProcessingResult, error)
	ProcessAll(ctx context.Context, channelID string, batchSize int)
}

// Aggregator rolls up normalized visits into per-day store aggregates.
type Aggregator interface {
	AggregateRange(ctx context.Context, from, to time.Time) (services.AggregationResult, error)
}

// Handlers bundles the pipeline services and the DB handle used by the
// read-only lookup endpoints (channels, ingest status, aggregates).
type Handlers struct {
	DB        *gorm.DB
	Ingest    Ingester
	Process   Processor
	Aggregate Aggregator

	// DefaultChannel is used when a request omits the channel identifier.
	DefaultChannel string
	// DefaultBatchSize bounds normalization batches when a request omits
	// an explicit size.
	DefaultBatchSize int
	// IdempotencyTTL is how long a recorded Idempotency-Key answers retries
	// of a batch trigger without re-running the stage.
	IdempotencyTTL time.Duration
}

// New constructs the handler set used by the router.
func New(db *gorm.DB, ingest Ingester, process Processor, aggregate Aggregator, defaultChannel string, batchSize int, idemTTL time.Duration) *Handlers {
	return &Handlers{
		DB:               db,
		Ingest:           ingest,
		Process:          process,
		Aggregate:        aggregate,
		DefaultChannel:   defaultChannel,
		DefaultBatchSize: batchSize,
		IdempotencyTTL:   idemTTL,
	}
}

// TriggerReplayResponse acknowledges a batch trigger that was answered from a
// stored idempotency record instead of being re-run.
type TriggerReplayResponse struct {
	Replayed bool   `json:"replayed" example:"true"`
	Route    string `json:"route" example:"/api/v1/process/feedback-raw"`
}

// idemKey returns the request's idempotency key. It prefers the value the
// validator middleware stashed and falls back to reading the header directly
// when no middleware is mounted (tests, embedded use).
func idemKey(c *gin.Context) string {
	if key, okKey := middleware.GetIdempotencyKey(c); okKey {
		return key
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// replayedTrigger serves a retried batch POST from its stored idempotency
// record. It reports true when the request was answered as a replay and the
// handler must not run the stage again.
func (h *Handlers) replayedTrigger(c *gin.Context) bool {
	key := idemKey(c)
	if key == "" || h.DB == nil {
		return false
	}
	rec, err := repo.GetIdempotency(c.Request.Context(), h.DB, userID(c), c.FullPath(), key, time.Now().UTC())
	if err != nil || rec == nil {
		return false
	}
	c.Header("Idempotency-Replayed", "true")
	ok(c, rec.Status, TriggerReplayResponse{Replayed: true, Route: rec.Route})
	return true
}

// recordTrigger stores the idempotency key after a successful run so a client
// retry replays instead of re-executing the stage. Best effort: a storage
// failure must not fail the request that already succeeded.
func (h *Handlers) recordTrigger(c *gin.Context, status int) {
	key := idemKey(c)
	if key == "" || h.DB == nil {
		return
	}
	ttl := h.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), h.DB, userID(c), c.FullPath(), key, status, ttl)
}

// userID extracts the caller identity set by upstream middleware, falling back
// to the X-User-ID header and finally to "demo-user".
func userID(c *gin.Context) string {
	if v, okv := c.Get("userID"); okv {
		if s, oks := v.(string); oks && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if hd := strings.TrimSpace(c.GetHeader("X-User-ID")); hd != "" {
			return hd
		}
	}
	return "demo-user"
}
