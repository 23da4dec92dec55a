// Package services – IngestService
//
// This file implements the raw ingestion stage: drive the ChannelFetcher
// across an inclusive date range and persist every reported feedback item as
// an immutable FeedbackRaw row with status NEW.
//
// Dedup relies on the (channel, external id) unique constraint: re-running
// ingestion over overlapping ranges re-fetches items but every duplicate
// insert is rejected by the database and counted as a skip. The stage is
// fail-fast across the range: any error other than a duplicate aborts the
// run, while days already processed stay committed (there is no cross-day
// transaction).
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/payload"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// Fallback key lists used when a channel defines no response schema hints.
var (
	externalIDKeys = []string{"id", "feedback_id", "externalId", "external_id"}
	timestampKeys  = []string{"timestamp", "created_at", "createdAt", "date"}
)

// IngestionResult summarizes one ingestion run. Counts are cumulative across
// the whole date range.
type IngestionResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// IngestService drives raw feedback ingestion for one channel at a time.
type IngestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Fetcher polls the external channel API.
	Fetcher *ChannelFetcher
}

// NewIngestService constructs an IngestService with a default fetcher.
func NewIngestService(db *gorm.DB) *IngestService {
	return &IngestService{DB: db, Fetcher: NewChannelFetcher()}
}

// Ingest polls channelID for every calendar day in [from, to] and persists
// the fetched items.
//
// Per item: the external identifier and source timestamp are extracted using
// the channel's response-schema hints when present, else the fixed fallback
// key lists (items without a resolvable identifier are counted as skipped
// and dropped; a missing timestamp falls back to the current time). Inserts
// rejected by the (channel, external id) unique constraint count as skipped.
//
// Errors: ErrChannelNotFound when the channel is missing or inactive;
// ErrInvalidDateRange when from is after to. Any fetch or non-duplicate
// persistence error aborts the remainder of the range; the partial result
// accumulated so far is returned alongside the error.
func (s *IngestService) Ingest(ctx context.Context, channelID string, from, to time.Time) (IngestionResult, error) {
	var res IngestionResult

	if from.After(to) {
		return res, ErrInvalidDateRange
	}

	ch, err := repo.GetActiveChannel(ctx, s.DB, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
		}
		return res, err
	}

	for day := truncateToDay(from); !day.After(truncateToDay(to)); day = day.AddDate(0, 0, 1) {
		lg := log.With().Str("channel", channelID).Str("date", day.Format(dateLayout)).Logger()
		lg.Info().Msg("ingesting feedback for date")

		items, err := s.Fetcher.FetchForDate(ctx, ch, day)
		if err != nil {
			lg.Error().Err(err).Msg("fetch failed, aborting range")
			return res, fmt.Errorf("fetch %s: %w", day.Format(dateLayout), err)
		}
		lg.Info().Int("items", len(items)).Msg("fetched feedback items")

		for _, item := range items {
			externalID, ok := extractExternalID(item, ch)
			if !ok {
				lg.Warn().Msg("feedback item missing external id, skipping")
				res.Skipped++
				continue
			}
			ts := extractTimestamp(item, ch)

			_, err := repo.CreateFeedbackRaw(ctx, s.DB, channelID, externalID, ts,
				domain.JSONMap(item), SourceHash(channelID, externalID))
			if err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					lg.Debug().Str("external_id", externalID).Msg("duplicate feedback skipped")
					res.Skipped++
					continue
				}
				lg.Error().Err(err).Str("external_id", externalID).Msg("insert failed, aborting range")
				return res, err
			}
			res.Inserted++
		}
	}

	log.Info().
		Str("channel", channelID).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("ingestion completed")
	return res, nil
}

// SourceHash derives the deterministic dedup-bookkeeping hash for one
// external item: sha256 of "channelID:externalFeedbackId", hex encoded.
func SourceHash(channelID, externalID string) string {
	sum := sha256.Sum256([]byte(channelID + ":" + externalID))
	return hex.EncodeToString(sum[:])
}

// extractExternalID pulls the channel-scoped identifier from an item. A
// schema hint (responseSchema.externalIdField) takes priority, then the
// common fallback keys.
func extractExternalID(item payload.Document, ch *domain.Channel) (string, bool) {
	if field, ok := schemaHint(ch, "externalIdField"); ok {
		if id, ok := item.FirstString(field); ok {
			return id, true
		}
	}
	return item.FirstString(externalIDKeys...)
}

// extractTimestamp pulls the source-reported timestamp from an item, via
// schema hint then fallback keys; a missing or unparseable timestamp falls
// back to the current time.
func extractTimestamp(item payload.Document, ch *domain.Channel) time.Time {
	if field, ok := schemaHint(ch, "timestampField"); ok {
		if ts, ok := item.FirstTime(field); ok {
			return ts
		}
	}
	if ts, ok := item.FirstTime(timestampKeys...); ok {
		return ts
	}
	return time.Now().UTC()
}

// schemaHint reads a field-mapping hint from the channel's response schema.
func schemaHint(ch *domain.Channel, key string) (string, bool) {
	if ch.ResponseSchema == nil {
		return "", false
	}
	s, ok := ch.ResponseSchema[key].(string)
	return s, ok && s != ""
}
