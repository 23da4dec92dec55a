package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

func newSchedDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+dsn+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fastIngest(db *gorm.DB) *services.IngestService {
	svc := services.NewIngestService(db)
	svc.Fetcher.PageDelay = 0
	svc.Fetcher.DateDelay = 0
	return svc
}

func TestStart_InvalidSpec(t *testing.T) {
	db := newSchedDB(t, "sched1")
	s := New(db, fastIngest(db))
	if err := s.Start("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestStartStop(t *testing.T) {
	db := newSchedDB(t, "sched2")
	s := New(db, fastIngest(db))
	if err := s.Start("0 2 * * *"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestRunDailyIngestion_ActiveChannelsOnly(t *testing.T) {
	db := newSchedDB(t, "sched3")
	ctx := context.Background()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fromDate"); got != yesterday {
			t.Errorf("fromDate = %q, want %q", got, yesterday)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page > 1 {
			json.NewEncoder(w).Encode([]any{})
			return
		}
		json.NewEncoder(w).Encode([]any{
			map[string]any{"id": "sched-1"},
			map[string]any{"id": "sched-2"},
		})
	}))
	defer srv.Close()

	seed := func(channelID string, active bool) {
		ch := &domain.Channel{
			ChannelID: channelID, ChannelName: channelID, BaseURL: srv.URL,
			HTTPMethod: http.MethodGet, AuthType: domain.AuthNone,
			DateFromParam: "fromDate", DateToParam: "toDate", DateFormat: "YYYY-MM-DD",
			PaginationType: domain.PaginationPage, PageParam: "page", StartPage: 1,
			IsActive: active,
		}
		if err := repo.UpsertChannel(ctx, db, ch); err != nil {
			t.Fatalf("seed channel %s: %v", channelID, err)
		}
	}
	seed("instore", true)
	seed("dormant", false)

	New(db, fastIngest(db)).runDailyIngestion()

	var activeRows, dormantRows int64
	db.Model(&domain.FeedbackRaw{}).Where("channel_id = ?", "instore").Count(&activeRows)
	db.Model(&domain.FeedbackRaw{}).Where("channel_id = ?", "dormant").Count(&dormantRows)
	if activeRows != 2 {
		t.Fatalf("active channel rows = %d, want 2", activeRows)
	}
	if dormantRows != 0 {
		t.Fatalf("dormant channel rows = %d, want 0", dormantRows)
	}
}
