// Normalization HTTP handlers.
//
// This file exposes the REST endpoints for the normalization stage:
//   - POST /process/feedback-raw      (normalize one batch, synchronous)
//   - POST /process/feedback-raw/all  (drain the backlog, detached)
//
// The /all variant acknowledges with 202 and runs detached from the request;
// progress is observable through GET /ingest/status.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/services"
	"github.com/tbourn/go-feedback-backend/internal/utils"
)

// ProcessResponse reports the outcome of a synchronous normalization batch.
type ProcessResponse struct {
	Channel   string `json:"channel" example:"instore"`
	Processed int    `json:"processed" example:"87"`
	Skipped   int    `json:"skipped" example:"2"`
}

// ProcessBatch godoc
// @ID          processBatch
// @Summary     Normalize one batch of raw feedback
// @Description Normalizes up to batchSize staged records for the channel, oldest
// @Description first. Records whose store cannot be resolved are skipped and left
// @Description for a later run; records that fail unexpectedly are marked FAILED.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Processing
// @Produce     json
//
// @Param       channel          query   string  false "Channel identifier (defaults to the configured default channel)" example(instore)
// @Param       batchSize        query   int     false "Maximum records to normalize" example(100)
// @Param       Idempotency-Key  header  string  false "Key answering retries without re-running"
//
// @Success     200  {object} handlers.ProcessResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid batch size"
// @Failure     500  {object} handlers.ErrorResponse "Processing failed"
// @Router      /process/feedback-raw [post]
func (h *Handlers) ProcessBatch(c *gin.Context) {
	channelID := c.Query("channel")
	if channelID == "" {
		channelID = h.DefaultChannel
	}
	batchSize := utils.AtoiDefault(c.Query("batchSize"), h.DefaultBatchSize)

	if h.replayedTrigger(c) {
		return
	}

	res, err := h.Process.ProcessBatch(c.Request.Context(), channelID, batchSize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidBatchSize) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "batchSize must be positive")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeProcessFailed, err.Error())
		return
	}

	h.recordTrigger(c, http.StatusOK)
	ok(c, http.StatusOK, ProcessResponse{
		Channel:   channelID,
		Processed: res.Processed,
		Skipped:   res.Skipped,
	})
}

// ProcessAllResponse acknowledges a detached backlog drain.
type ProcessAllResponse struct {
	Channel string `json:"channel" example:"instore"`
	Status  string `json:"status" example:"processing started"`
}

// ProcessAll godoc
// @ID          processAll
// @Summary     Normalize the full raw backlog
// @Description Starts draining the channel's staged backlog batch by batch and
// @Description returns immediately with 202. The run continues after the response;
// @Description failures are logged server-side, not reported to the caller.
// @Tags        Processing
// @Produce     json
//
// @Param       channel          query   string  false "Channel identifier (defaults to the configured default channel)" example(instore)
// @Param       batchSize        query   int     false "Records per batch" example(100)
// @Param       Idempotency-Key  header  string  false "Key answering retries without re-starting the drain"
//
// @Success     202  {object} handlers.ProcessAllResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid batch size"
// @Router      /process/feedback-raw/all [post]
func (h *Handlers) ProcessAll(c *gin.Context) {
	channelID := c.Query("channel")
	if channelID == "" {
		channelID = h.DefaultChannel
	}
	batchSize := utils.AtoiDefault(c.Query("batchSize"), h.DefaultBatchSize)
	if batchSize <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "batchSize must be positive")
		return
	}

	if h.replayedTrigger(c) {
		return
	}

	// Detached from the request context on purpose: the drain must outlive
	// this HTTP exchange.
	go h.Process.ProcessAll(context.Background(), channelID, batchSize)

	h.recordTrigger(c, http.StatusAccepted)
	ok(c, http.StatusAccepted, ProcessAllResponse{
		Channel: channelID,
		Status:  "processing started",
	})
}
