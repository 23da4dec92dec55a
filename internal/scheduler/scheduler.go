// Package scheduler wires the daily ingestion trigger: a cron entry that
// polls every configured active channel for yesterday's feedback. The
// pipeline itself is batch/date-range oriented; this is the only in-process
// clock.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

// Scheduler owns the cron runner for the daily ingestion job.
type Scheduler struct {
	cron   *cron.Cron
	db     *gorm.DB
	ingest *services.IngestService
}

// New constructs a Scheduler around the given ingest service. Nothing runs
// until Start.
func New(db *gorm.DB, ingest *services.IngestService) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		ingest: ingest,
	}
}

// Start registers the daily job with the given cron spec (e.g. "0 2 * * *"
// for 02:00 every day) and starts the runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runDailyIngestion); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", spec).Msg("daily ingestion scheduler started")
	return nil
}

// Stop halts the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runDailyIngestion ingests yesterday's feedback for every active channel.
// Failures are logged per channel; one channel's failure does not block the
// others.
func (s *Scheduler) runDailyIngestion() {
	ctx := context.Background()
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	dateStr := yesterday.Format("2006-01-02")

	channels, err := repo.ListChannels(ctx, s.db)
	if err != nil {
		log.Error().Err(err).Msg("scheduled ingestion: listing channels failed")
		return
	}

	for _, ch := range channels {
		if !ch.IsActive {
			continue
		}
		lg := log.With().Str("channel", ch.ChannelID).Str("date", dateStr).Logger()
		lg.Info().Msg("starting scheduled ingestion")

		res, err := s.ingest.Ingest(ctx, ch.ChannelID, yesterday, yesterday)
		if err != nil {
			lg.Error().Err(err).Msg("scheduled ingestion failed")
			continue
		}
		lg.Info().
			Int("inserted", res.Inserted).
			Int("skipped", res.Skipped).
			Msg("scheduled ingestion completed")
	}
}
