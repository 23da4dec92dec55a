package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// testFetcher returns a fetcher with pacing disabled so tests run fast.
func testFetcher() *ChannelFetcher {
	f := NewChannelFetcher()
	f.PageDelay = 0
	f.DateDelay = 0
	return f
}

func pagedChannel(baseURL string) *domain.Channel {
	return &domain.Channel{
		ChannelID:      "swiggy",
		BaseURL:        baseURL,
		HTTPMethod:     http.MethodGet,
		AuthType:       domain.AuthNone,
		DateFromParam:  "fromDate",
		DateToParam:    "toDate",
		DateFormat:     "YYYY-MM-DD",
		PaginationType: domain.PaginationPage,
		PageParam:      "page",
		StartPage:      1,
	}
}

func TestFetchForDate_PaginatedWalk(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("fromDate"); got != "2026-08-15" {
			t.Errorf("fromDate = %q, want 2026-08-15", got)
		}
		if got := r.URL.Query().Get("toDate"); got != "2026-08-15" {
			t.Errorf("toDate = %q, want 2026-08-15", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var items []map[string]any
		if page <= 2 {
			for i := 0; i < 10; i++ {
				items = append(items, map[string]any{"id": fmt.Sprintf("p%d-%d", page, i)})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": items})
	}))
	defer srv.Close()

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	items, err := testFetcher().FetchForDate(context.Background(), pagedChannel(srv.URL), date)
	if err != nil {
		t.Fatalf("FetchForDate: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("items = %d, want 20", len(items))
	}
	if requests != 3 {
		t.Fatalf("requests = %d, want 3 (two full pages plus the empty one)", requests)
	}
	if id, _ := items[0]["id"].(string); id != "p1-0" {
		t.Fatalf("first item id = %q, want p1-0", id)
	}
}

func TestFetchForDate_NoPagination(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Has("page") {
			t.Error("page parameter sent on a non-paginated channel")
		}
		json.NewEncoder(w).Encode(map[string]any{"feedbacks": []map[string]any{
			{"id": "a"}, {"id": "b"},
		}})
	}))
	defer srv.Close()

	ch := pagedChannel(srv.URL)
	ch.PaginationType = domain.PaginationNone

	items, err := testFetcher().FetchForDate(context.Background(), ch, time.Now().UTC())
	if err != nil {
		t.Fatalf("FetchForDate: %v", err)
	}
	if len(items) != 2 || requests != 1 {
		t.Fatalf("items = %d requests = %d, want 2 items from a single request", len(items), requests)
	}
}

func TestFetchForDate_AuthHeaders(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Channel-Key")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	jwt := pagedChannel(srv.URL)
	jwt.PaginationType = domain.PaginationNone
	jwt.AuthType = domain.AuthJWT
	jwt.AuthConfig = domain.JSONMap{"token": "tok-123"}
	if _, err := testFetcher().FetchForDate(context.Background(), jwt, time.Now().UTC()); err != nil {
		t.Fatalf("jwt fetch: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}

	key := pagedChannel(srv.URL)
	key.PaginationType = domain.PaginationNone
	key.AuthType = domain.AuthAPIKey
	key.AuthConfig = domain.JSONMap{"apiKeyHeaderName": "X-Channel-Key", "apiKey": "secret"}
	if _, err := testFetcher().FetchForDate(context.Background(), key, time.Now().UTC()); err != nil {
		t.Fatalf("api key fetch: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("X-Channel-Key = %q, want secret", gotKey)
	}
}

func TestFetchForDate_CustomDateFormat(t *testing.T) {
	var gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("fromDate")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	ch := pagedChannel(srv.URL)
	ch.PaginationType = domain.PaginationNone
	ch.DateFormat = "DD/MM/YYYY"

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if _, err := testFetcher().FetchForDate(context.Background(), ch, date); err != nil {
		t.Fatalf("FetchForDate: %v", err)
	}
	if gotFrom != "15/08/2026" {
		t.Fatalf("fromDate = %q, want 15/08/2026", gotFrom)
	}
}

func TestFetchForDate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchForDate(context.Background(), pagedChannel(srv.URL), time.Now().UTC())
	if err == nil {
		t.Fatal("expected error on 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error %q does not mention the status code", err)
	}
}

func TestFetchForDate_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "x"}}})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testFetcher().FetchForDate(ctx, pagedChannel(srv.URL), time.Now().UTC()); err == nil {
		t.Fatal("expected error with canceled context")
	}
}

func TestUnwrapItems(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"top-level array", []any{map[string]any{"a": 1}, map[string]any{"b": 2}}, 2},
		{"data wrapper", map[string]any{"data": []any{map[string]any{"a": 1}}}, 1},
		{"feedbacks wrapper", map[string]any{"feedbacks": []any{map[string]any{"a": 1}}}, 1},
		{"non-object entries dropped", []any{"scalar", map[string]any{"a": 1}, 7}, 1},
		{"unknown wrapper", map[string]any{"results": []any{map[string]any{"a": 1}}}, 0},
		{"scalar", "nope", 0},
		{"nil", nil, 0},
	}
	for _, tc := range cases {
		if got := len(unwrapItems(tc.in)); got != tc.want {
			t.Errorf("%s: got %d items, want %d", tc.name, got, tc.want)
		}
	}
}
