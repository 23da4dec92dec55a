// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookup functions for the Store model,
// which is read-only to the pipeline (stores are pre-populated).
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// ResolveStore finds a store by trying, in priority order: the external
// store_id, the store_code, and finally the free-text store_location.
// First match wins. Returns ErrNotFound when nothing matches.
func ResolveStore(ctx context.Context, db *gorm.DB, identifier string) (*domain.Store, error) {
	for _, col := range []string{"store_id", "store_code", "store_location"} {
		var s domain.Store
		err := db.WithContext(ctx).
			Where(col+" = ?", identifier).
			First(&s).Error
		if err == nil {
			return &s, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ListStores returns all stores ordered by store_id.
func ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	var out []domain.Store
	err := db.WithContext(ctx).
		Order("store_id asc").
		Find(&out).Error
	return out, err
}
