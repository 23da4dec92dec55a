// Ingestion HTTP handlers.
//
// This file exposes the REST endpoints for the raw ingestion stage:
//   - POST /ingest/{channel}  (pull feedback for a date range)
//   - GET  /ingest/status     (staging table counts per status)
//
// Handlers in this file are transport-thin: they validate input, delegate to
// application services, and translate domain/service errors into HTTP results.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// IngestRequest is the JSON payload for triggering an ingestion run.
//
// Both dates are inclusive and must be formatted YYYY-MM-DD.
type IngestRequest struct {
	FromDate string `json:"fromDate" binding:"required" example:"2026-08-01"`
	ToDate   string `json:"toDate" binding:"required" example:"2026-08-07"`
}

// IngestResponse reports what an ingestion run landed in the staging table.
type IngestResponse struct {
	Channel  string `json:"channel" example:"instore"`
	FromDate string `json:"fromDate" example:"2026-08-01"`
	ToDate   string `json:"toDate" example:"2026-08-07"`
	Inserted int    `json:"inserted" example:"42"`
	Skipped  int    `json:"skipped" example:"3"`
}

// TriggerIngest godoc
// @ID          triggerIngest
// @Summary     Ingest raw feedback for a channel
// @Description Polls the channel's external API for every day in [fromDate, toDate]
// @Description and stages the fetched items. Duplicate items (same channel and
// @Description external ID) are skipped. A fetch or persistence failure aborts the
// @Description run; counts accumulated before the failure are included in the error body.
// @Description Supports idempotency via the Idempotency-Key header (a retried key replays
// @Description the stored outcome instead of re-running the stage).
// @Tags        Ingestion
// @Accept      json
// @Produce     json
//
// @Param       channel          path    string                  true  "Channel identifier" example(instore)
// @Param       Idempotency-Key  header  string                  false "Key answering retries without re-running"
// @Param       body             body    handlers.IngestRequest  true  "Date range (inclusive, YYYY-MM-DD)"
//
// @Success     200  {object} handlers.IngestResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or date range"
// @Failure     404  {object} handlers.ErrorResponse "Channel not found or inactive"
// @Failure     500  {object} handlers.ErrorResponse "Ingestion failed"
// @Router      /ingest/{channel} [post]
func (h *Handlers) TriggerIngest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "fromDate and toDate are required")
		return
	}

	from, to, err := services.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if h.replayedTrigger(c) {
		return
	}

	channelID := c.Param("channel")
	res, err := h.Ingest.Ingest(c.Request.Context(), channelID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelNotFound):
			fail(c, http.StatusNotFound, ErrCodeChannelNotFound, "channel not found or inactive")
		case errors.Is(err, services.ErrInvalidDateRange):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		}
		return
	}

	h.recordTrigger(c, http.StatusOK)
	ok(c, http.StatusOK, IngestResponse{
		Channel:  channelID,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Inserted: res.Inserted,
		Skipped:  res.Skipped,
	})
}

// IngestStatusResponse summarizes the staging table for one channel.
type IngestStatusResponse struct {
	Channel        string                `json:"channel" example:"instore"`
	Counts         []repo.RawStatusCount `json:"counts"`
	LastIngestedAt *string               `json:"lastIngestedAt,omitempty" example:"2026-08-07T14:03:22Z"`
}

// IngestStatus godoc
// @ID          ingestStatus
// @Summary     Staging table status
// @Description Returns per-status record counts and the most recent ingestion
// @Description timestamp for a channel's staged feedback.
// @Tags        Ingestion
// @Produce     json
//
// @Param       channel  query  string  false "Channel identifier (defaults to the configured default channel)" example(instore)
//
// @Success     200  {object} handlers.IngestStatusResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /ingest/status [get]
func (h *Handlers) IngestStatus(c *gin.Context) {
	channelID := c.Query("channel")
	if channelID == "" {
		channelID = h.DefaultChannel
	}

	counts, last, err := repo.RawStats(c.Request.Context(), h.DB, channelID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	resp := IngestStatusResponse{Channel: channelID, Counts: counts}
	if last != nil {
		s := last.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastIngestedAt = &s
	}
	ok(c, http.StatusOK, resp)
}
