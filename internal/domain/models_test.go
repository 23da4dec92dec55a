package domain

import (
	"database/sql/driver"
	"testing"
)

func TestTableNames(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"Channel", Channel{}.TableName(), "channels"},
		{"FeedbackRaw", FeedbackRaw{}.TableName(), "feedback_raw"},
		{"Store", Store{}.TableName(), "stores"},
		{"Customer", Customer{}.TableName(), "customers"},
		{"CustomerVisit", CustomerVisit{}.TableName(), "customer_visits"},
		{"Rating", Rating{}.TableName(), "ratings"},
		{"Feedback", Feedback{}.TableName(), "feedbacks"},
		{"DailyAggregate", DailyAggregate{}.TableName(), "store_feedback_daily_agg"},
		{"Idempotency", Idempotency{}.TableName(), "idempotency"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s.TableName() = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestJSONMap_ValueScanRoundTrip(t *testing.T) {
	in := JSONMap{"rating": float64(5), "email": "a@b.com", "nested": map[string]any{"k": "v"}}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	raw, ok := v.([]byte)
	if !ok {
		t.Fatalf("Value type = %T, want []byte", v)
	}

	var out JSONMap
	if err := out.Scan(raw); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	if out["email"] != "a@b.com" || out["rating"] != float64(5) {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Drivers may hand back TEXT columns as string.
	var outStr JSONMap
	if err := outStr.Scan(string(raw)); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if outStr["email"] != "a@b.com" {
		t.Fatalf("string scan mismatch: %+v", outStr)
	}
}

func TestJSONMap_NilAndBadInput(t *testing.T) {
	var nilMap JSONMap
	v, err := nilMap.Value()
	if err != nil || v != driver.Value(nil) {
		t.Fatalf("nil map Value = (%v, %v), want (nil, nil)", v, err)
	}

	var m JSONMap
	if err := m.Scan(nil); err != nil || m != nil {
		t.Fatalf("Scan(nil) = (%v, %v), want nil map", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Fatalf("Scan(int) should fail")
	}
}
