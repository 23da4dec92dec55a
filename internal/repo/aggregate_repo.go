// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file implements the SQL rollup behind the daily
// aggregation stage: a GROUP BY over the normalized visit tables and an
// upsert into the store_feedback_daily_agg materialized view.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// AggregateRow is one (store, channel, day) group computed from the
// normalized tables. Average columns are nil when no rating row exists for
// any visit in the group.
type AggregateRow struct {
	StoreID             string   `gorm:"column:store_id"`
	ChannelID           string   `gorm:"column:channel_id"`
	VisitDate           string   `gorm:"column:visit_date"`
	City                string   `gorm:"column:city"`
	RegionID            string   `gorm:"column:region_id"`
	TotalVisits         int      `gorm:"column:total_visits"`
	UniqueCustomerCount int      `gorm:"column:unique_customer_count"`
	RepeatCustomerCount int      `gorm:"column:repeat_customer_count"`
	AvgOverallRating    *float64 `gorm:"column:avg_overall_rating"`
	AvgFoodRating       *float64 `gorm:"column:avg_food_rating"`
	AvgBeverageRating   *float64 `gorm:"column:avg_beverage_rating"`
	PositiveCount       int      `gorm:"column:positive_count"`
	NeutralCount        int      `gorm:"column:neutral_count"`
	NegativeCount       int      `gorm:"column:negative_count"`
	PendingCount        int      `gorm:"column:pending_count"`
	RespondedCount      int      `gorm:"column:responded_count"`
}

// aggregateQuery groups visits (joined with stores, customers, ratings and
// feedbacks) by (store, channel, day). AVG skips NULL food/beverage ratings;
// the overall rating is never NULL (0 means "not provided") so it always
// participates.
const aggregateQuery = `
SELECT
  cv.store_id,
  cv.channel_id,
  DATE(cv.visit_date) AS visit_date,
  s.city,
  s.region_id,
  COUNT(cv.id) AS total_visits,
  COUNT(DISTINCT cv.customer_id) AS unique_customer_count,
  COUNT(DISTINCT CASE WHEN c.repeat_customer = 1 THEN cv.customer_id END) AS repeat_customer_count,
  AVG(r.overall_rating) AS avg_overall_rating,
  AVG(r.food_rating) AS avg_food_rating,
  AVG(r.beverage_rating) AS avg_beverage_rating,
  COUNT(CASE WHEN cv.sentiment = 'Positive' THEN 1 END) AS positive_count,
  COUNT(CASE WHEN cv.sentiment = 'Neutral' THEN 1 END) AS neutral_count,
  COUNT(CASE WHEN cv.sentiment = 'Negative' THEN 1 END) AS negative_count,
  COUNT(CASE WHEN f.feedback_status = 'Pending' THEN 1 END) AS pending_count,
  COUNT(CASE WHEN f.feedback_status = 'Responded' THEN 1 END) AS responded_count
FROM customer_visits cv
INNER JOIN stores s ON cv.store_id = s.id
INNER JOIN customers c ON cv.customer_id = c.id
LEFT JOIN ratings r ON cv.id = r.customer_visit_id
LEFT JOIN feedbacks f ON cv.id = f.customer_visit_id
WHERE cv.visit_date >= ? AND cv.visit_date < ?
GROUP BY cv.store_id, cv.channel_id, DATE(cv.visit_date), s.city, s.region_id
`

// AggregateRowsForDay computes the rollup groups for the UTC day containing
// day. Zero matching visits yields an empty slice, not an error.
func AggregateRowsForDay(ctx context.Context, db *gorm.DB, day time.Time) ([]AggregateRow, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var rows []AggregateRow
	err := db.WithContext(ctx).
		Raw(aggregateQuery, start, end).
		Scan(&rows).Error
	return rows, err
}

// UpsertDailyAggregate writes one rollup row keyed by the composite
// (store_id, channel_id, agg_date) unique index. Reruns over the same day
// recompute and overwrite the previous measures rather than appending.
func UpsertDailyAggregate(ctx context.Context, db *gorm.DB, row AggregateRow) error {
	now := time.Now().UTC()
	agg := &domain.DailyAggregate{
		ID:                  uuid.NewString(),
		StoreID:             row.StoreID,
		ChannelID:           row.ChannelID,
		AggDate:             row.VisitDate,
		City:                row.City,
		RegionID:            row.RegionID,
		TotalFeedbackCount:  row.TotalVisits,
		UniqueCustomerCount: row.UniqueCustomerCount,
		RepeatCustomerCount: row.RepeatCustomerCount,
		AvgOverallRating:    row.AvgOverallRating,
		AvgFoodRating:       row.AvgFoodRating,
		AvgBeverageRating:   row.AvgBeverageRating,
		PositiveCount:       row.PositiveCount,
		NeutralCount:        row.NeutralCount,
		NegativeCount:       row.NegativeCount,
		PendingCount:        row.PendingCount,
		RespondedCount:      row.RespondedCount,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "channel_id"}, {Name: "agg_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"city", "region_id",
			"total_feedback_count", "unique_customer_count", "repeat_customer_count",
			"avg_overall_rating", "avg_food_rating", "avg_beverage_rating",
			"positive_count", "neutral_count", "negative_count",
			"pending_count", "responded_count", "updated_at",
		}),
	}).Create(agg).Error
}

// ListDailyAggregates returns rollup rows for an inclusive date range
// (YYYY-MM-DD strings), ordered by date then store. Used by the reporting
// read endpoint.
func ListDailyAggregates(ctx context.Context, db *gorm.DB, fromDate, toDate string) ([]domain.DailyAggregate, error) {
	var out []domain.DailyAggregate
	err := db.WithContext(ctx).
		Where("agg_date >= ? AND agg_date <= ?", fromDate, toDate).
		Order("agg_date asc, store_id asc, channel_id asc").
		Find(&out).Error
	return out, err
}
