package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

func seedRaw(t *testing.T, db *gorm.DB, channelID, externalID string) *domain.FeedbackRaw {
	t.Helper()
	rec, err := CreateFeedbackRaw(context.Background(), db, channelID, externalID,
		time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC),
		domain.JSONMap{"id": externalID, "overall_rating": float64(4)},
		fmt.Sprintf("hash-%s-%s", channelID, externalID))
	if err != nil {
		t.Fatalf("seed raw %s/%s: %v", channelID, externalID, err)
	}
	return rec
}

func TestCreateFeedbackRaw_DuplicateIsErrDuplicate(t *testing.T) {
	db := newChannelDB(t, "rawrepo1", &domain.FeedbackRaw{})
	ctx := context.Background()

	first := seedRaw(t, db, "instore", "ext-1")
	if first.ProcessingStatus != domain.StatusNew {
		t.Fatalf("new rows must start NEW, got %q", first.ProcessingStatus)
	}

	_, err := CreateFeedbackRaw(ctx, db, "instore", "ext-1", time.Now().UTC(), domain.JSONMap{"id": "ext-1"}, "h")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same external id on a different channel is a distinct item.
	if _, err := CreateFeedbackRaw(ctx, db, "swiggy", "ext-1", time.Now().UTC(), domain.JSONMap{"id": "ext-1"}, "h2"); err != nil {
		t.Fatalf("cross-channel insert should succeed: %v", err)
	}
}

func TestListUnprocessed_FiltersStatusAndChannel_OldestFirst(t *testing.T) {
	db := newChannelDB(t, "rawrepo2", &domain.FeedbackRaw{})
	ctx := context.Background()

	a := seedRaw(t, db, "instore", "a")
	time.Sleep(5 * time.Millisecond) // created_at ordering
	b := seedRaw(t, db, "instore", "b")
	time.Sleep(5 * time.Millisecond)
	seedRaw(t, db, "swiggy", "c")
	done := seedRaw(t, db, "instore", "d")
	if err := UpdateProcessingStatus(ctx, db, done.ID, domain.StatusProcessed); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	batch, err := ListUnprocessed(ctx, db, "instore", 10)
	if err != nil {
		t.Fatalf("ListUnprocessed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 NEW instore rows, got %d", len(batch))
	}
	if batch[0].ID != a.ID || batch[1].ID != b.ID {
		t.Fatalf("expected oldest-first order %s,%s got %s,%s", a.ID, b.ID, batch[0].ID, batch[1].ID)
	}

	// Limit respected.
	one, err := ListUnprocessed(ctx, db, "instore", 1)
	if err != nil {
		t.Fatalf("ListUnprocessed limit: %v", err)
	}
	if len(one) != 1 || one[0].ID != a.ID {
		t.Fatalf("limit=1 should return only the oldest row")
	}

	n, err := CountUnprocessed(ctx, db, "instore")
	if err != nil || n != 2 {
		t.Fatalf("CountUnprocessed = %d, %v", n, err)
	}
}

func TestUpdateProcessingStatus_MissingRow(t *testing.T) {
	db := newChannelDB(t, "rawrepo3", &domain.FeedbackRaw{})
	err := UpdateProcessingStatus(context.Background(), db, "no-such-id", domain.StatusFailed)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRawStats_CountsAndLatestIngestion(t *testing.T) {
	db := newChannelDB(t, "rawrepo4", &domain.FeedbackRaw{})
	ctx := context.Background()

	// Empty channel: no counts, no timestamp.
	counts, last, err := RawStats(ctx, db, "instore")
	if err != nil {
		t.Fatalf("RawStats empty: %v", err)
	}
	if len(counts) != 0 || last != nil {
		t.Fatalf("expected empty stats, got %v %v", counts, last)
	}

	seedRaw(t, db, "instore", "s1")
	seedRaw(t, db, "instore", "s2")
	failed := seedRaw(t, db, "instore", "s3")
	if err := UpdateProcessingStatus(ctx, db, failed.ID, domain.StatusFailed); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	counts, last, err = RawStats(ctx, db, "instore")
	if err != nil {
		t.Fatalf("RawStats: %v", err)
	}
	byStatus := map[string]int64{}
	for _, c := range counts {
		byStatus[c.ProcessingStatus] = c.Count
	}
	if byStatus[domain.StatusNew] != 2 || byStatus[domain.StatusFailed] != 1 {
		t.Fatalf("unexpected counts: %v", byStatus)
	}
	if last == nil || last.IsZero() {
		t.Fatalf("expected a last ingestion timestamp")
	}
}

func TestIsUniqueViolation_Matches(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{ErrDuplicate, true},
		{errors.New("UNIQUE constraint failed: feedback_raw.channel_id"), true},
		{errors.New("constraint failed: UNIQUE constraint failed"), true},
		{errors.New("duplicate key value violates unique constraint"), true},
		{errors.New("connection refused"), false},
	}
	for _, c := range cases {
		if got := IsUniqueViolation(c.err); got != c.want {
			t.Fatalf("IsUniqueViolation(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
