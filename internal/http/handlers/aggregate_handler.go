// Aggregation HTTP handlers.
//
// This file exposes the REST endpoints for the daily rollup stage:
//   - POST /aggregate/daily  (recompute rollups for a date range)
//   - GET  /aggregates       (read stored rollups)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// AggregateRequest is the JSON payload for triggering an aggregation run.
//
// Both dates are inclusive and must be formatted YYYY-MM-DD.
type AggregateRequest struct {
	FromDate string `json:"fromDate" binding:"required" example:"2026-08-01"`
	ToDate   string `json:"toDate" binding:"required" example:"2026-08-07"`
}

// TriggerAggregation godoc
// @ID          triggerAggregation
// @Summary     Recompute daily aggregates
// @Description Recomputes per-store, per-channel daily rollups for every day in
// @Description [fromDate, toDate]. Days are independent: a failed day is reported
// @Description in the errors list and does not stop the remaining days.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Aggregation
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                     false "Key answering retries without re-running"
// @Param       body             body    handlers.AggregateRequest  true  "Date range (inclusive, YYYY-MM-DD)"
//
// @Success     200  {object} services.AggregationResult
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload or date range"
// @Failure     500  {object} handlers.ErrorResponse "Aggregation failed"
// @Router      /aggregate/daily [post]
func (h *Handlers) TriggerAggregation(c *gin.Context) {
	var req AggregateRequest
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

	res, err := h.Aggregate.AggregateRange(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeAggregateFailed, err.Error())
		return
	}

	h.recordTrigger(c, http.StatusOK)
	ok(c, http.StatusOK, res)
}

// ListAggregates godoc
// @ID          listAggregates
// @Summary     List stored daily aggregates
// @Description Returns the stored rollup rows for a date range, ordered by date,
// @Description store and channel.
// @Tags        Aggregation
// @Produce     json
//
// @Param       fromDate  query  string  true "Range start (YYYY-MM-DD)" example(2026-08-01)
// @Param       toDate    query  string  true "Range end (YYYY-MM-DD)"   example(2026-08-07)
//
// @Success     200  {array}  domain.DailyAggregate
// @Failure     400  {object} handlers.ErrorResponse "Invalid date range"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /aggregates [get]
func (h *Handlers) ListAggregates(c *gin.Context) {
	fromDate := c.Query("fromDate")
	toDate := c.Query("toDate")
	if _, _, err := services.ParseDateRange(fromDate, toDate); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	rows, err := repo.ListDailyAggregates(c.Request.Context(), h.DB, fromDate, toDate)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rows)
}
