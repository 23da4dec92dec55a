// Package services – ProcessService
//
// This file implements the normalization stage: map raw feedback payloads
// into structured CustomerVisit/Rating/Feedback rows, resolving the store
// and resolving-or-creating the customer along the way.
//
// Each raw record is normalized inside its own transaction. Success commits
// visit, rating, text feedback and the PROCESSED status flip atomically. A
// failure rolls back that record only: expected skip conditions (store not
// resolved, visit already exists) leave the record NEW, while unexpected
// errors mark it FAILED outside the transaction. One bad record never
// aborts the batch.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/payload"
	"github.com/tbourn/go-feedback-backend/internal/repo"
)

// Ordered candidate keys per logical field, evaluated first-match-wins
// against the heterogeneous raw payloads.
var (
	storeIdentifierKeys = []string{"store_id", "storeId", "store_code", "storeCode", "store_location", "storeLocation", "location"}
	emailKeys           = []string{"email", "customer_email", "customerEmail"}
	phoneKeys           = []string{"phone", "mobile", "customer_phone", "customerPhone"}
	nameKeys            = []string{"name", "customer_name", "customerName", "full_name", "fullName"}
	overallRatingKeys   = []string{"overall_rating", "overallRating", "rating", "overall_score", "overallScore"}
	foodRatingKeys      = []string{"food_rating", "foodRating", "food_score", "foodScore"}
	beverageRatingKeys  = []string{"beverage_rating", "beverageRating", "beverage_score", "beverageScore"}
	foodOrderedKeys     = []string{"food_ordered", "foodOrdered", "food_items", "foodItems"}
	beverageOrderedKeys = []string{"beverages_ordered", "beveragesOrdered", "beverage_items", "beverageItems"}
	foodCommentKeys     = []string{"comments_on_food", "commentsOnFood", "food_comments", "foodComments", "food_feedback", "foodFeedback"}
	beverageCommentKeys = []string{"comments_on_beverage", "commentsOnBeverage", "beverage_comments", "beverageComments", "beverage_feedback", "beverageFeedback"}
	overallCommentKeys  = []string{"overall_comments", "overallComments", "comments", "feedback", "remarks", "overall_feedback", "overallFeedback"}
)

// nameCaser normalizes customer full names to title case regardless of how
// the source payload shouted or whispered them.
var nameCaser = cases.Title(language.Und)

// ProcessingResult summarizes one normalization batch.
type ProcessingResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// ProcessService implements the normalization stage.
type ProcessService struct {
	// DB is the GORM handle; each record opens its own transaction on it.
	DB *gorm.DB
}

// NewProcessService constructs a ProcessService.
func NewProcessService(db *gorm.DB) *ProcessService {
	return &ProcessService{DB: db}
}

// ProcessBatch normalizes up to batchSize NEW raw records for channelID,
// oldest first.
//
// Per-record outcomes:
//   - processed: visit + rating + feedback written, status PROCESSED.
//   - skipped, left NEW: store identifier missing/unresolved (retryable
//     after store data is fixed) or a visit already references the record.
//   - skipped, marked FAILED: any unexpected error; the mark happens outside
//     the rolled-back transaction and the batch continues.
func (s *ProcessService) ProcessBatch(ctx context.Context, channelID string, batchSize int) (ProcessingResult, error) {
	var res ProcessingResult
	if batchSize <= 0 {
		return res, ErrInvalidBatchSize
	}

	batch, err := repo.ListUnprocessed(ctx, s.DB, channelID, batchSize)
	if err != nil {
		return res, err
	}
	if len(batch) == 0 {
		log.Info().Str("channel", channelID).Msg("no unprocessed feedback records")
		return res, nil
	}
	log.Info().Str("channel", channelID).Int("batch", len(batch)).Msg("processing feedback records")

	for i := range batch {
		raw := &batch[i]
		err := s.processOne(ctx, raw)
		switch {
		case err == nil:
			res.Processed++
		case errors.Is(err, ErrStoreNotResolved) || errors.Is(err, ErrAlreadyNormalized):
			// Expected skips: record stays NEW (store data may be fixed
			// later; an existing visit means another run won the race).
			log.Debug().Str("raw_id", raw.ID).Err(err).Msg("skipping raw record")
			res.Skipped++
		default:
			log.Error().Str("raw_id", raw.ID).Err(err).Msg("failed to process raw record")
			res.Skipped++
			if markErr := repo.UpdateProcessingStatus(ctx, s.DB, raw.ID, domain.StatusFailed); markErr != nil {
				log.Error().Str("raw_id", raw.ID).Err(markErr).Msg("failed to mark record FAILED")
			}
		}
	}

	log.Info().
		Str("channel", channelID).
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Msg("batch processing completed")
	return res, nil
}

// ProcessAll repeatedly calls ProcessBatch until no NEW records remain or a
// batch makes no forward progress (every remaining record skipped). It is
// intended to run detached from the triggering request; errors are logged,
// not surfaced to the original caller.
func (s *ProcessService) ProcessAll(ctx context.Context, channelID string, batchSize int) {
	var total ProcessingResult
	for {
		res, err := s.ProcessBatch(ctx, channelID, batchSize)
		if err != nil {
			log.Error().Str("channel", channelID).Err(err).Msg("process-all batch failed")
			return
		}
		total.Processed += res.Processed
		total.Skipped += res.Skipped
		if res.Processed == 0 {
			// Either the backlog is drained or what's left is all
			// skip-and-stay-NEW records; looping again would spin.
			break
		}
	}
	log.Info().
		Str("channel", channelID).
		Int("processed", total.Processed).
		Int("skipped", total.Skipped).
		Msg("process-all completed")
}

// processOne normalizes a single raw record inside its own transaction.
// Returns nil on success, ErrStoreNotResolved / ErrAlreadyNormalized for
// expected skips (rolled back, record left NEW), or the underlying error
// for unexpected failures (rolled back; caller marks FAILED).
func (s *ProcessService) processOne(ctx context.Context, raw *domain.FeedbackRaw) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc := payload.Document(raw.RawPayload)

		// 1) Idempotency: a visit may already reference this raw record
		// (previous partial run, concurrent batch). Checked before any
		// other work so a replayed record skips without touching store or
		// customer rows.
		exists, err := repo.VisitExistsForRaw(ctx, tx, raw.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyNormalized
		}

		// 2) Resolve the store; without one the visit has no home.
		storeIdent, ok := doc.FirstString(storeIdentifierKeys...)
		if !ok {
			return fmt.Errorf("%w: no store identifier in payload", ErrStoreNotResolved)
		}
		store, err := repo.ResolveStore(ctx, tx, storeIdent)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrStoreNotResolved, storeIdent)
			}
			return err
		}

		// 3) Resolve or lazily create the customer.
		customer, err := s.resolveOrCreateCustomer(ctx, tx, doc)
		if err != nil {
			return err
		}

		// 4) Derived temporal and sentiment attributes.
		visitDate := truncateToDay(raw.FeedbackTimestamp)
		overall, hasRating := doc.FirstInt(overallRatingKeys...)
		sentiment := domain.SentimentNeutral
		if hasRating && overall > 0 {
			sentiment = deriveSentiment(overall)
		}
		foodOrdered := optString(doc, foodOrderedKeys...)
		beveragesOrdered := optString(doc, beverageOrderedKeys...)

		visit := &domain.CustomerVisit{
			ID:               uuid.NewString(),
			CustomerID:       customer.ID,
			StoreID:          store.ID,
			ChannelID:        raw.ChannelID,
			FeedbackRawID:    raw.ID,
			FeedbackDate:     raw.FeedbackTimestamp,
			VisitDate:        visitDate,
			VisitDay:         visitDate.Weekday().String(),
			VisitWeek:        weekNumber(visitDate),
			VisitMonth:       int(visitDate.Month()),
			VisitQuarter:     quarter(int(visitDate.Month())),
			VisitYear:        visitDate.Year(),
			Sentiment:        sentiment,
			HasFoodOrder:     foodOrdered != nil,
			HasBeverageOrder: beveragesOrdered != nil,
		}
		if err := repo.CreateVisit(ctx, tx, visit); err != nil {
			return err
		}

		// 5) Rating: overall defaults to 0 when the payload carried none.
		if err := repo.CreateRating(ctx, tx, visit.ID, overall,
			optInt(doc, foodRatingKeys...), optInt(doc, beverageRatingKeys...)); err != nil {
			return err
		}

		// 6) Free-text feedback, always Pending.
		if err := repo.CreateTextFeedback(ctx, tx, visit.ID,
			foodOrdered,
			optString(doc, foodCommentKeys...),
			beveragesOrdered,
			optString(doc, beverageCommentKeys...),
			optString(doc, overallCommentKeys...)); err != nil {
			return err
		}

		// 7) Flip the raw record inside the same transaction.
		if err := repo.UpdateProcessingStatus(ctx, tx, raw.ID, domain.StatusProcessed); err != nil {
			return err
		}

		log.Info().Str("raw_id", raw.ID).Str("visit_id", visit.ID).Msg("normalized raw record")
		return nil
	})
}

// resolveOrCreateCustomer matches an existing customer by email first, then
// phone; a returning customer gets its repeat flag set. When nothing
// matches, a new customer is created with a synthetic id (email, else
// phone, else an anonymous uuid).
func (s *ProcessService) resolveOrCreateCustomer(ctx context.Context, tx *gorm.DB, doc payload.Document) (*domain.Customer, error) {
	email, _ := doc.FirstString(emailKeys...)
	phone, _ := doc.FirstString(phoneKeys...)

	if email != "" {
		c, err := repo.FindCustomerByEmail(ctx, tx, email)
		if err == nil {
			return c, repo.MarkRepeatCustomer(ctx, tx, c.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if phone != "" {
		c, err := repo.FindCustomerByPhone(ctx, tx, phone)
		if err == nil {
			return c, repo.MarkRepeatCustomer(ctx, tx, c.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if email == "" && phone == "" {
		log.Warn().Msg("no email or phone in payload, creating anonymous customer")
	}

	customerID := email
	if customerID == "" {
		customerID = phone
	}
	if customerID == "" {
		customerID = "anon_" + uuid.NewString()
	}

	var fullName *string
	if name, ok := doc.FirstString(nameKeys...); ok {
		normalized := nameCaser.String(name)
		fullName = &normalized
	}
	return repo.CreateCustomer(ctx, tx, customerID, fullName, optNonEmpty(email), optNonEmpty(phone))
}

// deriveSentiment maps an overall rating to its three-valued sentiment.
func deriveSentiment(overall int) string {
	switch {
	case overall >= 4:
		return domain.SentimentPositive
	case overall <= 2:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// optString extracts an optional string field as a nullable pointer.
func optString(doc payload.Document, keys ...string) *string {
	if s, ok := doc.FirstString(keys...); ok {
		return &s
	}
	return nil
}

// optInt extracts an optional numeric field as a nullable pointer.
func optInt(doc payload.Document, keys ...string) *int {
	if n, ok := doc.FirstInt(keys...); ok {
		return &n
	}
	return nil
}

// optNonEmpty converts an already-extracted string to a nullable pointer.
func optNonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
