// Package config – channel seed file.
//
// Channel configurations are administered out of band; for fresh
// deployments and local development a YAML seed file can describe the
// initial registry. The file is loaded at startup and upserted by
// channel_id, so repeated boots converge on its contents.
//
// Example:
//
//	channels:
//	  - channel_id: instore
//	    channel_name: Instore Feedback
//	    base_url: https://surveys.example.com/api/v1/feedbacks
//	    auth_type: API_KEY
//	    auth_config:
//	      apiKey: your-api-key-here
//	      apiKeyHeaderName: x-api-key
//	    date_from_param: startDate
//	    date_to_param: endDate
//	    pagination_type: PAGE
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-feedback-backend/internal/domain"
)

// ChannelSeed is one entry of the YAML seed file. Zero values fall back to
// the model defaults used by the fetcher (GET, NONE auth, PAGE pagination
// from page 1, YYYY-MM-DD dates).
type ChannelSeed struct {
	ChannelID      string         `yaml:"channel_id"`
	ChannelName    string         `yaml:"channel_name"`
	BaseURL        string         `yaml:"base_url"`
	HTTPMethod     string         `yaml:"http_method"`
	AuthType       string         `yaml:"auth_type"`
	AuthConfig     map[string]any `yaml:"auth_config"`
	DateFromParam  string         `yaml:"date_from_param"`
	DateToParam    string         `yaml:"date_to_param"`
	DateFormat     string         `yaml:"date_format"`
	PaginationType string         `yaml:"pagination_type"`
	PageParam      string         `yaml:"page_param"`
	StartPage      int            `yaml:"start_page"`
	ResponseSchema map[string]any `yaml:"response_schema"`
	Active         *bool          `yaml:"active"`
}

type channelSeedFile struct {
	Channels []ChannelSeed `yaml:"channels"`
}

// LoadChannelSeeds parses the YAML seed file at path and returns channel
// models ready for upserting. Entries without a channel_id or base_url are
// rejected.
func LoadChannelSeeds(path string) ([]domain.Channel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file channelSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse channel seed file: %w", err)
	}

	out := make([]domain.Channel, 0, len(file.Channels))
	for i, seed := range file.Channels {
		if seed.ChannelID == "" || seed.BaseURL == "" {
			return nil, fmt.Errorf("channel seed entry %d: channel_id and base_url are required", i)
		}
		out = append(out, seed.toModel())
	}
	return out, nil
}

// toModel converts a seed entry to a domain.Channel, applying defaults.
func (s ChannelSeed) toModel() domain.Channel {
	ch := domain.Channel{
		ChannelID:      s.ChannelID,
		ChannelName:    defaultStr(s.ChannelName, s.ChannelID),
		BaseURL:        s.BaseURL,
		HTTPMethod:     defaultStr(s.HTTPMethod, "GET"),
		AuthType:       defaultStr(s.AuthType, domain.AuthNone),
		DateFromParam:  defaultStr(s.DateFromParam, "fromDate"),
		DateToParam:    defaultStr(s.DateToParam, "toDate"),
		DateFormat:     defaultStr(s.DateFormat, "YYYY-MM-DD"),
		PaginationType: defaultStr(s.PaginationType, domain.PaginationPage),
		PageParam:      defaultStr(s.PageParam, "page"),
		StartPage:      s.StartPage,
		IsActive:       true,
	}
	if ch.StartPage == 0 {
		ch.StartPage = 1
	}
	if s.AuthConfig != nil {
		ch.AuthConfig = domain.JSONMap(s.AuthConfig)
	}
	if s.ResponseSchema != nil {
		ch.ResponseSchema = domain.JSONMap(s.ResponseSchema)
	}
	if s.Active != nil {
		ch.IsActive = *s.Active
	}
	return ch
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
