// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// FeedbackRaw model: idempotent inserts keyed by the (channel, external id)
// unique constraint, batch selection for normalization, and status updates.
//
// Error semantics:
//   - CreateFeedbackRaw translates a unique-constraint violation into
//     ErrDuplicate so the ingestion stage can count it as a skip instead of
//     a failure. All other DB errors propagate raw.
//   - Status updates on a missing row return ErrNotFound.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// ErrDuplicate indicates that a row violating a unique constraint already
// exists (e.g., a raw feedback item ingested twice, or a replayed
// idempotency key).
var ErrDuplicate = errors.New("duplicate")

// IsUniqueViolation reports whether err is a unique-constraint violation,
// in a driver-agnostic way. glebarez/sqlite often returns plain-text errors
// for UNIQUE violations instead of gorm.ErrDuplicatedKey.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// CreateFeedbackRaw inserts one raw feedback row with status NEW. The
// (channel_id, external_feedback_id) unique index is the real dedup
// mechanism; on violation the function returns ErrDuplicate so callers can
// treat re-ingestion of an already-seen item as a skip.
func CreateFeedbackRaw(ctx context.Context, db *gorm.DB, channelID, externalID string, feedbackTS time.Time, payload domain.JSONMap, sourceHash string) (*domain.FeedbackRaw, error) {
	now := time.Now().UTC()
	rec := &domain.FeedbackRaw{
		ID:                 uuid.NewString(),
		ChannelID:          channelID,
		ExternalFeedbackID: externalID,
		FeedbackTimestamp:  feedbackTS,
		RawPayload:         payload,
		IngestedAt:         now,
		SourceHash:         sourceHash,
		ProcessingStatus:   domain.StatusNew,
		CreatedAt:          now,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// ListUnprocessed returns up to limit raw records for channelID with status
// NEW, oldest first. The status filter keeps concurrent normalization runs
// from repeatedly picking rows another run already finished; the occasional
// benign double-pick is resolved by the duplicate-visit check downstream.
func ListUnprocessed(ctx context.Context, db *gorm.DB, channelID string, limit int) ([]domain.FeedbackRaw, error) {
	var out []domain.FeedbackRaw
	err := db.WithContext(ctx).
		Where("channel_id = ? AND processing_status = ?", channelID, domain.StatusNew).
		Order("created_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountUnprocessed returns the number of NEW raw records for channelID.
func CountUnprocessed(ctx context.Context, db *gorm.DB, channelID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.FeedbackRaw{}).
		Where("channel_id = ? AND processing_status = ?", channelID, domain.StatusNew).
		Count(&total).Error
	return total, err
}

// UpdateProcessingStatus sets the processing status of a raw record.
// Returns ErrNotFound when the record does not exist.
func UpdateProcessingStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.FeedbackRaw{}).
		Where("id = ?", id).
		Update("processing_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RawStatusCount is one row of the per-status ingestion breakdown.
type RawStatusCount struct {
	ProcessingStatus string `json:"processing_status"`
	Count            int64  `json:"count"`
}

// RawStats returns aggregate metadata for a channel's raw records: counts
// per processing status and the most recent ingestion timestamp. When the
// channel has no raw records, counts is empty and lastIngestedAt is nil.
func RawStats(ctx context.Context, db *gorm.DB, channelID string) (counts []RawStatusCount, lastIngestedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.FeedbackRaw{}).Where("channel_id = ?", channelID)

	if err = q.Select("processing_status, COUNT(*) as count").
		Group("processing_status").
		Order("processing_status asc").
		Scan(&counts).Error; err != nil {
		return nil, nil, err
	}
	if len(counts) == 0 {
		return counts, nil, nil
	}

	// Get latest ingested_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		IngestedAt time.Time
	}
	if err = q.Select("ingested_at").Order("ingested_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return nil, nil, err
	}
	return counts, &row.IngestedAt, nil
}
