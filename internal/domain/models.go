// Package domain defines the persistence models for the feedback warehouse:
// channel configurations, raw ingested feedback, resolved customers and
// stores, normalized visits with their ratings and free-text feedback, and
// the daily rollup table. All types are mapped with GORM and shared across
// the repository and service layers.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AuthType enumerates how the fetcher authenticates against a channel API.
const (
	AuthNone   = "NONE"
	AuthJWT    = "JWT"
	AuthAPIKey = "API_KEY"
)

// PaginationType enumerates how a channel API pages its results.
const (
	PaginationPage = "PAGE"
	PaginationNone = "NONE"
)

// ProcessingStatus values for FeedbackRaw records.
const (
	StatusNew       = "NEW"
	StatusProcessed = "PROCESSED"
	StatusFailed    = "FAILED"
)

// Sentiment values derived from the overall rating during normalization.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// FeedbackStatus values for the text-feedback response workflow.
const (
	FeedbackPending   = "Pending"
	FeedbackResponded = "Responded"
)

// JSONMap stores an arbitrary JSON object in a single column. It is used for
// channel auth configuration, optional field-mapping schemas, and the
// verbatim raw payload of ingested feedback items.
type JSONMap map[string]any

// Value implements driver.Valuer by marshaling the map to JSON.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner, accepting []byte or string column values.
func (m *JSONMap) Scan(v any) error {
	if v == nil {
		*m = nil
		return nil
	}
	switch b := v.(type) {
	case []byte:
		return json.Unmarshal(b, m)
	case string:
		return json.Unmarshal([]byte(b), m)
	default:
		return errors.New("domain: unsupported JSONMap column type")
	}
}

// Channel is the static configuration for one external feedback source
// (a delivery platform or the in-store survey API). Channels are created and
// edited by administrators; the pipeline only reads them.
//
// Fields:
//   - ChannelID: short stable identifier ("instore", "swiggy", ...), unique.
//   - BaseURL / HTTPMethod: endpoint polled by the fetcher.
//   - AuthType / AuthConfig: NONE, JWT (bearer token) or API_KEY (static
//     header); AuthConfig carries header names, prefixes and secrets.
//   - DateFromParam / DateToParam / DateFormat: query-parameter names and
//     format pattern ("YYYY-MM-DD" style) for the polled date window.
//   - PaginationType / PageParam / StartPage: PAGE walks successive pages
//     until an empty one; NONE issues a single request per date.
//   - ResponseSchema: optional field-mapping hints (externalIdField,
//     timestampField) for payloads whose identifiers use uncommon keys.
type Channel struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ChannelID      string    `json:"channel_id"      gorm:"type:varchar(20);not null;uniqueIndex"`
	ChannelName    string    `json:"channel_name"    gorm:"type:varchar(50);not null"`
	BaseURL        string    `json:"base_url"        gorm:"type:text;not null"`
	HTTPMethod     string    `json:"http_method"     gorm:"type:varchar(8);not null;default:'GET'"`
	AuthType       string    `json:"auth_type"       gorm:"type:varchar(10);not null;default:'NONE';check:auth_type IN ('NONE','JWT','API_KEY')"`
	AuthConfig     JSONMap   `json:"-"               gorm:"type:text"`
	DateFromParam  string    `json:"date_from_param" gorm:"type:varchar(50);not null"`
	DateToParam    string    `json:"date_to_param"   gorm:"type:varchar(50);not null"`
	DateFormat     string    `json:"date_format"     gorm:"type:varchar(20);not null;default:'YYYY-MM-DD'"`
	PaginationType string    `json:"pagination_type" gorm:"type:varchar(10);not null;default:'PAGE';check:pagination_type IN ('PAGE','NONE')"`
	PageParam      string    `json:"page_param"      gorm:"type:varchar(50);not null;default:'page'"`
	StartPage      int       `json:"start_page"      gorm:"not null;default:1"`
	RequestSchema  JSONMap   `json:"-"               gorm:"type:text"`
	ResponseSchema JSONMap   `json:"-"               gorm:"type:text"`
	IsActive       bool      `json:"is_active"       gorm:"not null;default:true;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string { return "channels" }

// FeedbackRaw is one externally observed feedback item, stored verbatim.
// Rows are immutable evidence: created only by the ingestion stage and never
// deleted; only ProcessingStatus is mutated (by the normalization stage).
//
// The (channel_id, external_feedback_id) pair is unique, which makes
// ingestion idempotent regardless of how many times overlapping date ranges
// are polled. SourceHash is a deterministic sha256 of
// "channelID:externalFeedbackId" kept for dedup bookkeeping.
type FeedbackRaw struct {
	ID                 string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	ChannelID          string    `json:"channel_id"           gorm:"type:varchar(20);not null;uniqueIndex:ux_raw_channel_external,priority:1"`
	ExternalFeedbackID string    `json:"external_feedback_id" gorm:"type:varchar(128);not null;uniqueIndex:ux_raw_channel_external,priority:2"`
	FeedbackTimestamp  time.Time `json:"feedback_timestamp"   gorm:"not null;index"`
	RawPayload         JSONMap   `json:"raw_payload"          gorm:"type:text;not null"`
	IngestedAt         time.Time `json:"ingested_at"          gorm:"not null"`
	SourceHash         string    `json:"source_hash"          gorm:"type:char(64);not null;index"`
	ProcessingStatus   string    `json:"processing_status"    gorm:"type:varchar(10);not null;default:'NEW';index;check:processing_status IN ('NEW','PROCESSED','FAILED')"`
	CreatedAt          time.Time `json:"created_at"           gorm:"index"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the database table name for FeedbackRaw.
func (FeedbackRaw) TableName() string { return "feedback_raw" }

// Store identifies a physical location. Stores are pre-populated by an
// out-of-scope admin flow; the pipeline resolves them by external StoreID,
// then StoreCode, then free-text StoreLocation.
type Store struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	StoreID       string    `json:"store_id"       gorm:"type:varchar(20);not null;uniqueIndex"`
	StoreCode     string    `json:"store_code"     gorm:"type:varchar(20);not null;index"`
	StoreName     string    `json:"store_name"     gorm:"type:varchar(100)"`
	StoreLocation string    `json:"store_location" gorm:"type:varchar(255);index"`
	RegionID      string    `json:"region_id"      gorm:"type:char(36);not null;index"`
	City          string    `json:"city"           gorm:"type:varchar(100);not null;index"`
	IsActive      bool      `json:"is_active"      gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }

// Customer is a deduplicated person entity created lazily during
// normalization. CustomerID is synthetic: the email when present, else the
// phone, else a generated anonymous identifier. At least one of Email/Phone
// is set unless the record is anonymous.
type Customer struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	CustomerID     string    `json:"customer_id"     gorm:"type:varchar(64);not null;uniqueIndex"`
	FullName       *string   `json:"full_name"       gorm:"type:varchar(100)"`
	Email          *string   `json:"email"           gorm:"type:varchar(255);index"`
	Phone          *string   `json:"phone"           gorm:"type:varchar(20);index"`
	RepeatCustomer bool      `json:"repeat_customer" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// CustomerVisit is one normalized visit, produced 1:1 from a FeedbackRaw.
// FeedbackRawID is unique so reprocessing a raw record can never create a
// duplicate visit. Temporal fields are derived from the source timestamp
// truncated to the UTC day.
type CustomerVisit struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	CustomerID       string    `json:"customer_id"        gorm:"type:char(36);not null;index"`
	StoreID          string    `json:"store_id"           gorm:"type:char(36);not null;index:idx_visit_store_date,priority:1"`
	ChannelID        string    `json:"channel_id"         gorm:"type:varchar(20);not null;index"`
	FeedbackRawID    string    `json:"feedback_raw_id"    gorm:"type:char(36);not null;uniqueIndex"`
	FeedbackDate     time.Time `json:"feedback_date"      gorm:"not null"`
	VisitDate        time.Time `json:"visit_date"         gorm:"not null;index:idx_visit_store_date,priority:2"`
	VisitDay         string    `json:"visit_day"          gorm:"type:varchar(10);not null"`
	VisitWeek        int       `json:"visit_week"         gorm:"not null"`
	VisitMonth       int       `json:"visit_month"        gorm:"not null"`
	VisitQuarter     int       `json:"visit_quarter"      gorm:"not null"`
	VisitYear        int       `json:"visit_year"         gorm:"not null"`
	Sentiment        string    `json:"sentiment"          gorm:"type:varchar(10);not null;check:sentiment IN ('Positive','Negative','Neutral')"`
	HasFoodOrder     bool      `json:"has_food_order"     gorm:"not null;default:false"`
	HasBeverageOrder bool      `json:"has_beverage_order" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Customer Customer    `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Store    Store       `json:"-" gorm:"foreignKey:StoreID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Raw      FeedbackRaw `json:"-" gorm:"foreignKey:FeedbackRawID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for CustomerVisit.
func (CustomerVisit) TableName() string { return "customer_visits" }

// Rating holds the numeric scores for a visit (1:1). OverallRating is
// required (0–5, with 0 meaning "not provided"); food and beverage ratings
// are optional.
type Rating struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	CustomerVisitID string    `json:"customer_visit_id" gorm:"type:char(36);not null;uniqueIndex"`
	OverallRating   int       `json:"overall_rating"    gorm:"not null;check:overall_rating BETWEEN 0 AND 5"`
	FoodRating      *int      `json:"food_rating"       gorm:"check:food_rating IS NULL OR food_rating BETWEEN 0 AND 5"`
	BeverageRating  *int      `json:"beverage_rating"   gorm:"check:beverage_rating IS NULL OR beverage_rating BETWEEN 0 AND 5"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Visit CustomerVisit `json:"-" gorm:"foreignKey:CustomerVisitID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string { return "ratings" }

// Feedback holds the free-text portion of a visit (1:1): what was ordered
// and the customer's comments. FeedbackStatus is mutated later by the
// response workflow (out of scope for the pipeline, which always writes
// Pending).
type Feedback struct {
	ID                 string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	CustomerVisitID    string    `json:"customer_visit_id"    gorm:"type:char(36);not null;uniqueIndex"`
	FoodOrdered        *string   `json:"food_ordered"         gorm:"type:text"`
	CommentsOnFood     *string   `json:"comments_on_food"     gorm:"type:text"`
	BeveragesOrdered   *string   `json:"beverages_ordered"    gorm:"type:text"`
	CommentsOnBeverage *string   `json:"comments_on_beverage" gorm:"type:text"`
	OverallComments    *string   `json:"overall_comments"     gorm:"type:text"`
	FeedbackStatus     string    `json:"feedback_status"      gorm:"type:varchar(10);not null;default:'Pending';check:feedback_status IN ('Pending','Responded')"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Visit CustomerVisit `json:"-" gorm:"foreignKey:CustomerVisitID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedbacks" }

// DailyAggregate is the fully derived per-(store, channel, day) rollup.
// Uniqueness on (store_id, channel_id, agg_date) makes the write an upsert;
// the table can be dropped and recomputed from the normalized tables at any
// time without information loss. AggDate is stored as a YYYY-MM-DD string so
// the composite key compares exactly across recomputations.
type DailyAggregate struct {
	ID                  string    `json:"id"                    gorm:"type:char(36);primaryKey"`
	StoreID             string    `json:"store_id"              gorm:"type:char(36);not null;uniqueIndex:ux_agg_store_channel_date,priority:1"`
	ChannelID           string    `json:"channel_id"            gorm:"type:varchar(20);not null;uniqueIndex:ux_agg_store_channel_date,priority:2"`
	AggDate             string    `json:"agg_date"              gorm:"type:date;not null;uniqueIndex:ux_agg_store_channel_date,priority:3"`
	City                string    `json:"city"                  gorm:"type:varchar(100)"`
	RegionID            string    `json:"region_id"             gorm:"type:char(36)"`
	TotalFeedbackCount  int       `json:"total_feedback_count"  gorm:"not null;default:0"`
	UniqueCustomerCount int       `json:"unique_customer_count" gorm:"not null;default:0"`
	RepeatCustomerCount int       `json:"repeat_customer_count" gorm:"not null;default:0"`
	AvgOverallRating    *float64  `json:"avg_overall_rating"`
	AvgFoodRating       *float64  `json:"avg_food_rating"`
	AvgBeverageRating   *float64  `json:"avg_beverage_rating"`
	PositiveCount       int       `json:"positive_count"        gorm:"not null;default:0"`
	NeutralCount        int       `json:"neutral_count"         gorm:"not null;default:0"`
	NegativeCount       int       `json:"negative_count"        gorm:"not null;default:0"`
	PendingCount        int       `json:"pending_count"         gorm:"not null;default:0"`
	RespondedCount      int       `json:"responded_count"       gorm:"not null;default:0"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyAggregate.
func (DailyAggregate) TableName() string { return "store_feedback_daily_agg" }
