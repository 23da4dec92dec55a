package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/repo"
	"github.com/tbourn/go-feedback-backend/internal/services"
)

type stubIngester struct {
	res        services.IngestionResult
	err        error
	gotChannel string
	gotFrom    time.Time
	gotTo      time.Time
}

func (s *stubIngester) Ingest(_ context.Context, channelID string, from, to time.Time) (services.IngestionResult, error) {
	s.gotChannel, s.gotFrom, s.gotTo = channelID, from, to
	return s.res, s.err
}

type stubProcessor struct {
	res        services.ProcessingResult
	err        error
	gotChannel string
	gotBatch   int
	calls      int
	allStarted chan struct{}
}

func (s *stubProcessor) ProcessBatch(_ context.Context, channelID string, batchSize int) (services.ProcessingResult, error) {
	s.gotChannel, s.gotBatch = channelID, batchSize
	s.calls++
	return s.res, s.err
}

func (s *stubProcessor) ProcessAll(_ context.Context, channelID string, batchSize int) {
	s.gotChannel, s.gotBatch = channelID, batchSize
	if s.allStarted != nil {
		close(s.allStarted)
	}
}

type stubAggregator struct {
	res services.AggregationResult
	err error
}

func (s *stubAggregator) AggregateRange(_ context.Context, _, _ time.Time) (services.AggregationResult, error) {
	return s.res, s.err
}

func newHandlerDB(t *testing.T, dsn string) *gorm.DB {
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

func newPipelineRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/channels", h.ListChannels)
	r.GET("/stores", h.ListStores)
	r.POST("/ingest/:channel", h.TriggerIngest)
	r.GET("/ingest/status", h.IngestStatus)
	r.POST("/process/feedback-raw", h.ProcessBatch)
	r.POST("/process/feedback-raw/all", h.ProcessAll)
	r.POST("/aggregate/daily", h.TriggerAggregation)
	r.GET("/aggregates", h.ListAggregates)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTriggerIngest_Success(t *testing.T) {
	ing := &stubIngester{res: services.IngestionResult{Inserted: 42, Skipped: 3}}
	h := New(nil, ing, nil, nil, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	w := doJSON(r, http.MethodPost, "/ingest/swiggy", `{"fromDate":"2026-08-01","toDate":"2026-08-07"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var resp IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Channel != "swiggy" || resp.Inserted != 42 || resp.Skipped != 3 {
		t.Fatalf("response unexpected: %+v", resp)
	}
	if ing.gotChannel != "swiggy" {
		t.Fatalf("service called with channel %q", ing.gotChannel)
	}
	if !ing.gotFrom.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", ing.gotFrom)
	}
}

func TestTriggerIngest_Errors(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		svcErr   error
		status   int
		wantCode string
	}{
		{"missing fields", `{}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"malformed date", `{"fromDate":"01-08-2026","toDate":"2026-08-07"}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"inverted range", `{"fromDate":"2026-08-07","toDate":"2026-08-01"}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"channel not found", `{"fromDate":"2026-08-01","toDate":"2026-08-02"}`, services.ErrChannelNotFound, http.StatusNotFound, ErrCodeChannelNotFound},
		{"ingestion failure", `{"fromDate":"2026-08-01","toDate":"2026-08-02"}`, errors.New("upstream 503"), http.StatusInternalServerError, ErrCodeIngestFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(nil, &stubIngester{err: tc.svcErr}, nil, nil, "instore", 100, time.Hour)
			w := doJSON(newPipelineRouter(h), http.MethodPost, "/ingest/instore", tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.status, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestIngestStatus_DefaultsChannel(t *testing.T) {
	db := newHandlerDB(t, "handlers1")
	if _, err := repo.CreateFeedbackRaw(context.Background(), db, "instore", "x-1",
		time.Now().UTC(), domain.JSONMap{"id": "x-1"}, services.SourceHash("instore", "x-1")); err != nil {
		t.Fatalf("seed raw: %v", err)
	}
	h := New(db, nil, nil, nil, "instore", 100, time.Hour)

	w := doJSON(newPipelineRouter(h), http.MethodGet, "/ingest/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var resp IngestStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Channel != "instore" {
		t.Fatalf("channel = %q, want the configured default", resp.Channel)
	}
	if len(resp.Counts) != 1 || resp.Counts[0].ProcessingStatus != domain.StatusNew || resp.Counts[0].Count != 1 {
		t.Fatalf("counts unexpected: %+v", resp.Counts)
	}
	if resp.LastIngestedAt == nil {
		t.Fatal("lastIngestedAt missing")
	}
}

func TestProcessBatch_QueryParamsAndErrors(t *testing.T) {
	p := &stubProcessor{res: services.ProcessingResult{Processed: 7, Skipped: 1}}
	h := New(nil, nil, p, nil, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	w := doJSON(r, http.MethodPost, "/process/feedback-raw?channel=swiggy&batchSize=25", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if p.gotChannel != "swiggy" || p.gotBatch != 25 {
		t.Fatalf("service called with %q/%d", p.gotChannel, p.gotBatch)
	}
	var resp ProcessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Processed != 7 || resp.Skipped != 1 {
		t.Fatalf("response unexpected: %+v", resp)
	}

	// Defaults apply when params are omitted.
	doJSON(r, http.MethodPost, "/process/feedback-raw", "")
	if p.gotChannel != "instore" || p.gotBatch != 100 {
		t.Fatalf("defaults not applied: %q/%d", p.gotChannel, p.gotBatch)
	}

	// Service-level batch size rejection surfaces as 400.
	h2 := New(nil, nil, &stubProcessor{err: services.ErrInvalidBatchSize}, nil, "instore", 100, time.Hour)
	w = doJSON(newPipelineRouter(h2), http.MethodPost, "/process/feedback-raw?batchSize=-1", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	h3 := New(nil, nil, &stubProcessor{err: errors.New("db locked")}, nil, "instore", 100, time.Hour)
	w = doJSON(newPipelineRouter(h3), http.MethodPost, "/process/feedback-raw", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestProcessAll_AcceptsAndDetaches(t *testing.T) {
	p := &stubProcessor{allStarted: make(chan struct{})}
	h := New(nil, nil, p, nil, "instore", 100, time.Hour)

	w := doJSON(newPipelineRouter(h), http.MethodPost, "/process/feedback-raw/all?batchSize=50", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	select {
	case <-p.allStarted:
	case <-time.After(time.Second):
		t.Fatal("detached drain never started")
	}
	if p.gotBatch != 50 {
		t.Fatalf("batch = %d, want 50", p.gotBatch)
	}

	// Batch size is validated before the goroutine launches.
	w = doJSON(newPipelineRouter(h), http.MethodPost, "/process/feedback-raw/all?batchSize=0", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestProcessBatch_IdempotencyKeyReplays(t *testing.T) {
	db := newHandlerDB(t, "handlers4")
	p := &stubProcessor{res: services.ProcessingResult{Processed: 5}}
	h := New(db, nil, p, nil, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/process/feedback-raw", nil)
		req.Header.Set("Idempotency-Key", key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("drain-2026-08-29")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
	if w.Header().Get("Idempotency-Replayed") != "" {
		t.Fatal("first run must not be marked as a replay")
	}

	// Retrying with the same key answers from the stored record.
	w = post("drain-2026-08-29")
	if w.Code != http.StatusOK {
		t.Fatalf("replay status = %d body %s", w.Code, w.Body.String())
	}
	if p.calls != 1 {
		t.Fatalf("retried POST re-ran the stage: calls = %d", p.calls)
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatal("replay header missing on retried POST")
	}
	var replay TriggerReplayResponse
	if err := json.Unmarshal(w.Body.Bytes(), &replay); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !replay.Replayed || replay.Route != "/process/feedback-raw" {
		t.Fatalf("replay body unexpected: %+v", replay)
	}

	// A fresh key runs the stage again.
	if w = post("drain-2026-08-30"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if p.calls != 2 {
		t.Fatalf("calls = %d, want 2", p.calls)
	}

	// Keys are scoped per route: the same key on another trigger is not a replay.
	agg := &stubAggregator{res: services.AggregationResult{DaysProcessed: 1}}
	h.Aggregate = agg
	req := httptest.NewRequest(http.MethodPost, "/aggregate/daily",
		strings.NewReader(`{"fromDate":"2026-08-01","toDate":"2026-08-01"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "drain-2026-08-29")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("aggregate trigger status = %d replayed %q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}
}

func TestTriggerAggregation(t *testing.T) {
	agg := &stubAggregator{res: services.AggregationResult{
		DaysProcessed: 6,
		Errors:        []services.DayError{{Date: "2026-08-03", Error: "disk full"}},
	}}
	h := New(nil, nil, nil, agg, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	w := doJSON(r, http.MethodPost, "/aggregate/daily", `{"fromDate":"2026-08-01","toDate":"2026-08-07"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var resp services.AggregationResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DaysProcessed != 6 || len(resp.Errors) != 1 || resp.Errors[0].Date != "2026-08-03" {
		t.Fatalf("response unexpected: %+v", resp)
	}

	w = doJSON(r, http.MethodPost, "/aggregate/daily", `{"fromDate":"2026-08-07","toDate":"2026-08-01"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", w.Code)
	}

	h2 := New(nil, nil, nil, &stubAggregator{err: errors.New("query failed")}, "instore", 100, time.Hour)
	w = doJSON(newPipelineRouter(h2), http.MethodPost, "/aggregate/daily", `{"fromDate":"2026-08-01","toDate":"2026-08-02"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestListAggregates_ValidatesRange(t *testing.T) {
	db := newHandlerDB(t, "handlers2")
	h := New(db, nil, nil, nil, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	w := doJSON(r, http.MethodGet, "/aggregates?fromDate=2026-08-01&toDate=2026-08-07", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var rows []domain.DailyAggregate
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}

	for _, q := range []string{"", "?fromDate=2026-08-01", "?fromDate=2026-08-07&toDate=2026-08-01"} {
		w = doJSON(r, http.MethodGet, "/aggregates"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("query %q status = %d, want 400", q, w.Code)
		}
	}
}

func TestListChannelsAndStores(t *testing.T) {
	db := newHandlerDB(t, "handlers3")
	ctx := context.Background()
	ch := &domain.Channel{
		ChannelID: "instore", ChannelName: "In-Store", BaseURL: "http://x",
		HTTPMethod: "GET", AuthType: domain.AuthNone,
		DateFromParam: "fromDate", DateToParam: "toDate", DateFormat: "YYYY-MM-DD",
		PaginationType: domain.PaginationPage, PageParam: "page", StartPage: 1, IsActive: true,
	}
	if err := repo.UpsertChannel(ctx, db, ch); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	h := New(db, nil, nil, nil, "instore", 100, time.Hour)
	r := newPipelineRouter(h)

	w := doJSON(r, http.MethodGet, "/channels", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var channels []domain.Channel
	if err := json.Unmarshal(w.Body.Bytes(), &channels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(channels) != 1 || channels[0].ChannelID != "instore" {
		t.Fatalf("channels unexpected: %+v", channels)
	}

	w = doJSON(r, http.MethodGet, "/stores", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stores []domain.Store
	if err := json.Unmarshal(w.Body.Bytes(), &stores); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stores) != 0 {
		t.Fatalf("stores unexpected: %+v", stores)
	}
}
