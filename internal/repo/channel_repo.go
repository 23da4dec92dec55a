// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Channel
// configuration model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a channel is not found (or is inactive, for GetActiveChannel),
//     functions return gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// GetActiveChannel fetches the configuration for channelID, restricted to
// active channels. The pipeline treats a missing or inactive channel as a
// configuration error, so both cases surface as ErrNotFound.
func GetActiveChannel(ctx context.Context, db *gorm.DB, channelID string) (*domain.Channel, error) {
	var ch domain.Channel
	err := db.WithContext(ctx).
		Where("channel_id = ? AND is_active = ?", channelID, true).
		First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// ListChannels returns all configured channels ordered by channel_id,
// including inactive ones (the admin listing wants the full registry).
func ListChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error) {
	var out []domain.Channel
	err := db.WithContext(ctx).
		Order("channel_id asc").
		Find(&out).Error
	return out, err
}

// UpsertChannel inserts or updates a channel configuration keyed by its
// unique channel_id. Used by startup seeding so repeated boots converge on
// the seed file's contents without duplicating rows.
func UpsertChannel(ctx context.Context, db *gorm.DB, ch *domain.Channel) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = now
	}
	ch.UpdatedAt = now

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"channel_name", "base_url", "http_method", "auth_type",
			"auth_config", "date_from_param", "date_to_param", "date_format",
			"pagination_type", "page_param", "start_page",
			"request_schema", "response_schema", "is_active", "updated_at",
		}),
	}).Create(ch).Error
}
