package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadChannelSeeds_ParsesAndDefaults(t *testing.T) {
	path := writeSeedFile(t, `
channels:
  - channel_id: instore
    channel_name: Instore Feedback
    base_url: https://surveys.example.com/api/v1/feedbacks
    auth_type: API_KEY
    auth_config:
      apiKey: secret
      apiKeyHeaderName: x-api-key
    date_from_param: startDate
    date_to_param: endDate
    pagination_type: PAGE
    start_page: 0
  - channel_id: swiggy
    base_url: https://partner.example.com/feedback
    auth_type: JWT
    auth_config:
      token: tok
    pagination_type: NONE
    response_schema:
      externalIdField: feedbackRef
    active: false
`)

	chs, err := LoadChannelSeeds(path)
	if err != nil {
		t.Fatalf("LoadChannelSeeds: %v", err)
	}
	if len(chs) != 2 {
		t.Fatalf("channels = %d, want 2", len(chs))
	}

	instore := chs[0]
	if instore.ChannelID != "instore" || instore.ChannelName != "Instore Feedback" {
		t.Fatalf("instore identity unexpected: %+v", instore)
	}
	if instore.AuthType != domain.AuthAPIKey || instore.AuthConfig["apiKey"] != "secret" {
		t.Fatalf("instore auth unexpected: %+v", instore)
	}
	if instore.DateFromParam != "startDate" || instore.DateToParam != "endDate" {
		t.Fatalf("instore date params unexpected: %+v", instore)
	}
	// Defaults: method, date format, page param, start page bumped to 1.
	if instore.HTTPMethod != "GET" || instore.DateFormat != "YYYY-MM-DD" ||
		instore.PageParam != "page" || instore.StartPage != 1 || !instore.IsActive {
		t.Fatalf("instore defaults unexpected: %+v", instore)
	}

	swiggy := chs[1]
	if swiggy.ChannelName != "swiggy" {
		t.Fatalf("channel_name should default to channel_id, got %q", swiggy.ChannelName)
	}
	if swiggy.PaginationType != domain.PaginationNone || swiggy.IsActive {
		t.Fatalf("swiggy flags unexpected: %+v", swiggy)
	}
	if swiggy.DateFromParam != "fromDate" || swiggy.DateToParam != "toDate" {
		t.Fatalf("swiggy date param defaults unexpected: %+v", swiggy)
	}
	if swiggy.ResponseSchema["externalIdField"] != "feedbackRef" {
		t.Fatalf("swiggy response schema unexpected: %+v", swiggy.ResponseSchema)
	}
}

func TestLoadChannelSeeds_Errors(t *testing.T) {
	if _, err := LoadChannelSeeds(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := writeSeedFile(t, "channels: [not a mapping")
	if _, err := LoadChannelSeeds(bad); err == nil {
		t.Fatal("expected error for malformed yaml")
	}

	incomplete := writeSeedFile(t, `
channels:
  - channel_name: anonymous
`)
	if _, err := LoadChannelSeeds(incomplete); err == nil {
		t.Fatal("expected error for entry without channel_id and base_url")
	}
}
