// Package services – AggregateService
//
// This file implements the daily aggregation stage: for each calendar day in
// a range, compute per-(store, channel) rollups over the normalized tables
// and upsert them into the daily aggregate table.
//
// Unlike raw ingestion (fail-fast), aggregation is deliberately fail-soft:
// a day that errors is recorded in the result's error list and the
// remaining days still run. The rollup is a pure recomputation from current
// normalized state, so rerunning a range is idempotent and self-correcting.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// DayError records one failed day of an aggregation run.
type DayError struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// AggregationResult summarizes one aggregation run. DaysProcessed counts
// days that completed (including days with zero visits); Errors lists the
// days that failed.
type AggregationResult struct {
	DaysProcessed int        `json:"daysProcessed"`
	Errors        []DayError `json:"errors,omitempty"`
}

// AggregateService implements the daily aggregation stage.
type AggregateService struct {
	// DB is the GORM handle used for the rollup query and upserts.
	DB *gorm.DB
}

// NewAggregateService constructs an AggregateService.
func NewAggregateService(db *gorm.DB) *AggregateService {
	return &AggregateService{DB: db}
}

// AggregateRange recomputes daily rollups for every calendar day in
// [from, to] inclusive. Each day is independent: its groups are computed
// from the normalized tables and upserted keyed by (store, channel, date).
// A day with zero matching visits writes nothing and is not an error.
func (s *AggregateService) AggregateRange(ctx context.Context, from, to time.Time) (AggregationResult, error) {
	var res AggregationResult
	if from.After(to) {
		return res, ErrInvalidDateRange
	}

	log.Info().
		Str("from", from.Format(dateLayout)).
		Str("to", to.Format(dateLayout)).
		Msg("starting daily aggregation")

	for day := truncateToDay(from); !day.After(truncateToDay(to)); day = day.AddDate(0, 0, 1) {
		dateStr := day.Format(dateLayout)
		if err := s.aggregateDay(ctx, day); err != nil {
			log.Error().Str("date", dateStr).Err(err).Msg("failed to aggregate day")
			res.Errors = append(res.Errors, DayError{Date: dateStr, Error: err.Error()})
			continue
		}
		res.DaysProcessed++
	}

	log.Info().
		Int("days_processed", res.DaysProcessed).
		Int("errors", len(res.Errors)).
		Msg("daily aggregation completed")
	return res, nil
}

// aggregateDay computes and upserts the rollup groups for one day.
func (s *AggregateService) aggregateDay(ctx context.Context, day time.Time) error {
	rows, err := repo.AggregateRowsForDay(ctx, s.DB, day)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Info().Str("date", day.Format(dateLayout)).Msg("no visits for date")
		return nil
	}

	for _, row := range rows {
		if err := repo.UpsertDailyAggregate(ctx, s.DB, row); err != nil {
			return err
		}
	}
	log.Info().Str("date", day.Format(dateLayout)).Int("rows", len(rows)).Msg("aggregated rollup rows")
	return nil
}
