// Package services – ChannelFetcher
//
// This file implements the HTTP polling layer of the ingestion stage: given
// a channel configuration and a single calendar date, fetch every raw
// feedback item the external source reports for that date.
//
// The fetcher attaches channel-specific auth headers (bearer token or static
// API key), walks page-numbered pagination until an empty page, unwraps the
// common response envelopes, and paces its requests with small fixed delays
// so a multi-day ingestion run does not hammer the external API. It performs
// no retries: a non-2xx response or transport failure is returned to the
// calling stage, whose policy decides whether the run aborts.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-feedback-backend/internal/domain"
	"github.com/tbourn/go-feedback-backend/internal/payload"
)

// Default inter-request pacing. PageDelay separates successive page requests
// within one date; DateDelay follows a non-paginated fetch so consecutive
// dates are spaced out.
const (
	defaultPageDelay = 100 * time.Millisecond
	defaultDateDelay = 500 * time.Millisecond
)

// ChannelFetcher polls one external channel API. The zero value is not
// usable; construct with NewChannelFetcher.
type ChannelFetcher struct {
	// Client is the HTTP client used for all requests.
	Client *http.Client
	// PageDelay is slept between page requests of a paginated fetch.
	PageDelay time.Duration
	// DateDelay is slept after a non-paginated fetch.
	DateDelay time.Duration
}

// NewChannelFetcher constructs a ChannelFetcher with a timeout-bounded
// client and the default request pacing.
func NewChannelFetcher() *ChannelFetcher {
	return &ChannelFetcher{
		Client:    &http.Client{Timeout: 30 * time.Second},
		PageDelay: defaultPageDelay,
		DateDelay: defaultDateDelay,
	}
}

// FetchForDate returns all raw feedback items the channel reports for the
// given calendar date.
//
// Behavior by pagination mode:
//   - NONE: one request with the from/to date parameters both set to the
//     formatted date, followed by a DateDelay sleep.
//   - PAGE: successive requests incrementing the page parameter from
//     StartPage; a page with zero items terminates the walk; PageDelay is
//     slept between pages.
//
// Any non-2xx response or transport error aborts the fetch for that
// page/date and is returned as-is; retry policy lives in the caller.
func (f *ChannelFetcher) FetchForDate(ctx context.Context, ch *domain.Channel, date time.Time) ([]payload.Document, error) {
	formatted := formatChannelDate(date, ch.DateFormat)

	if ch.PaginationType == domain.PaginationNone {
		u, err := f.buildURL(ch, formatted, 0, false)
		if err != nil {
			return nil, err
		}
		log.Info().Str("channel", ch.ChannelID).Str("url", u).Msg("fetching feedback")

		data, err := f.doRequest(ctx, ch, u)
		if err != nil {
			return nil, err
		}
		if err := sleep(ctx, f.DateDelay); err != nil {
			return nil, err
		}
		return unwrapItems(data), nil
	}

	var all []payload.Document
	page := ch.StartPage
	for {
		u, err := f.buildURL(ch, formatted, page, true)
		if err != nil {
			return nil, err
		}
		log.Info().Str("channel", ch.ChannelID).Int("page", page).Str("url", u).Msg("fetching feedback page")

		data, err := f.doRequest(ctx, ch, u)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		items := unwrapItems(data)
		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)
		page++

		if err := sleep(ctx, f.PageDelay); err != nil {
			return nil, err
		}
	}
}

// buildURL composes the request URL from the channel base URL, the date
// window parameters (from == to == the polled date) and, when paging, the
// page parameter.
func (f *ChannelFetcher) buildURL(ch *domain.Channel, formattedDate string, page int, paged bool) (string, error) {
	u, err := url.Parse(ch.BaseURL)
	if err != nil {
		return "", fmt.Errorf("channel base url: %w", err)
	}
	q := u.Query()
	q.Set(ch.DateFromParam, formattedDate)
	q.Set(ch.DateToParam, formattedDate)
	if paged {
		q.Set(ch.PageParam, fmt.Sprintf("%d", page))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doRequest issues one authenticated request and decodes the JSON body.
// Non-2xx statuses are errors; the caller decides whether they are fatal.
func (f *ChannelFetcher) doRequest(ctx context.Context, ch *domain.Channel, rawURL string) (any, error) {
	method := ch.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req, ch)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("api request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return data, nil
}

// applyAuth attaches the channel's auth header, if any. Tokens and keys are
// static values from the channel's auth config; there is no login call.
func applyAuth(req *http.Request, ch *domain.Channel) {
	switch ch.AuthType {
	case domain.AuthJWT:
		header := configString(ch.AuthConfig, "authHeaderName", "Authorization")
		prefix := configString(ch.AuthConfig, "headerPrefix", "Bearer")
		if token := configString(ch.AuthConfig, "token", ""); token != "" {
			req.Header.Set(header, prefix+" "+token)
		}
	case domain.AuthAPIKey:
		header := configString(ch.AuthConfig, "apiKeyHeaderName", "x-api-key")
		if key := configString(ch.AuthConfig, "apiKey", ""); key != "" {
			req.Header.Set(header, key)
		}
	}
}

// configString reads a string entry from an auth config map with a default.
func configString(m domain.JSONMap, key, def string) string {
	if m == nil {
		return def
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

// unwrapItems extracts the feedback item list from a decoded response body.
// Accepted shapes: a top-level array, or a wrapper object exposing the array
// under "data" or "feedbacks". Anything else yields an empty list.
// Non-object array entries are dropped.
func unwrapItems(data any) []payload.Document {
	var arr []any
	switch t := data.(type) {
	case []any:
		arr = t
	case map[string]any:
		for _, key := range []string{"data", "feedbacks"} {
			if inner, ok := t[key].([]any); ok {
				arr = inner
				break
			}
		}
	}
	if len(arr) == 0 {
		return nil
	}
	out := make([]payload.Document, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, payload.Document(obj))
		}
	}
	return out
}

// sleep waits for d unless the context is canceled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
