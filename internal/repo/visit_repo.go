// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the normalized
// visit aggregate: CustomerVisit plus its 1:1 Rating and Feedback rows.
//
// All writes here are expected to run on a transaction-bound *gorm.DB
// supplied by the normalization stage, so one raw record commits or rolls
// back as a unit.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// FindVisitByRawID returns the visit produced from the given raw record, or
// ErrNotFound. Used as the idempotency check before creating a visit.
func FindVisitByRawID(ctx context.Context, db *gorm.DB, feedbackRawID string) (*domain.CustomerVisit, error) {
	var v domain.CustomerVisit
	err := db.WithContext(ctx).
		Where("feedback_raw_id = ?", feedbackRawID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VisitExistsForRaw reports whether a visit already references the raw
// record. DB errors other than not-found propagate.
func VisitExistsForRaw(ctx context.Context, db *gorm.DB, feedbackRawID string) (bool, error) {
	_, err := FindVisitByRawID(ctx, db, feedbackRawID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// CreateVisit inserts a CustomerVisit row. The visit's ID is generated here;
// derived temporal fields and sentiment are computed by the caller. The
// unique index on feedback_raw_id serializes concurrent attempts to
// normalize the same raw record.
func CreateVisit(ctx context.Context, db *gorm.DB, v *domain.CustomerVisit) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(v).Error
}

// CreateRating inserts the 1:1 rating row for a visit.
func CreateRating(ctx context.Context, db *gorm.DB, visitID string, overall int, food, beverage *int) error {
	r := &domain.Rating{
		ID:              uuid.NewString(),
		CustomerVisitID: visitID,
		OverallRating:   overall,
		FoodRating:      food,
		BeverageRating:  beverage,
		CreatedAt:       time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(r).Error
}

// CreateTextFeedback inserts the 1:1 free-text feedback row for a visit,
// always with status Pending (the response workflow mutates it later).
func CreateTextFeedback(ctx context.Context, db *gorm.DB, visitID string, foodOrdered, commentsOnFood, beveragesOrdered, commentsOnBeverage, overallComments *string) error {
	f := &domain.Feedback{
		ID:                 uuid.NewString(),
		CustomerVisitID:    visitID,
		FoodOrdered:        foodOrdered,
		CommentsOnFood:     commentsOnFood,
		BeveragesOrdered:   beveragesOrdered,
		CommentsOnBeverage: commentsOnBeverage,
		OverallComments:    overallComments,
		FeedbackStatus:     domain.FeedbackPending,
		CreatedAt:          time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(f).Error
}
