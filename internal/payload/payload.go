// Package payload implements ordered-fallback field extraction over the
// schema-less JSON documents delivered by external feedback channels.
//
// External payload shapes are heterogeneous: one channel reports
// "overall_rating", another "rating", a third "overallScore". Rather than
// per-channel mapping code, each logical field is described by an ordered
// list of candidate keys evaluated in sequence against the document; the
// first present, non-empty value wins. There is no schema inference, just
// priority lookup.
package payload

import (
	"strconv"
	"strings"
	"time"
)

// Document is a parsed JSON object from an external channel, stored and
// accessed without a schema.
type Document map[string]any

// First returns the first present, non-nil, non-empty-string value among
// keys, in order. The boolean reports whether any candidate matched.
func (d Document) First(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := d[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// FirstString returns the first matching value coerced to a string.
// Numeric values are formatted (external ids are sometimes numbers).
func (d Document) FirstString(keys ...string) (string, bool) {
	v, ok := d.First(keys...)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		// JSON numbers decode as float64; ids are integral in practice.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// FirstInt returns the first matching value coerced to an int. String values
// are parsed; fractional numbers are truncated toward zero.
func (d Document) FirstInt(keys ...string) (int, bool) {
	v, ok := d.First(keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// timestampLayouts are tried in order when parsing source timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FirstTime returns the first matching value parsed as a timestamp.
// Strings are tried against common layouts; numeric values are read as Unix
// seconds. Unparseable candidates are skipped rather than treated as a
// match, so a later key can still win.
func (d Document) FirstTime(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := d[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			for _, layout := range timestampLayouts {
				if ts, err := time.Parse(layout, s); err == nil {
					return ts.UTC(), true
				}
			}
		case float64:
			if t > 0 {
				return time.Unix(int64(t), 0).UTC(), true
			}
		}
	}
	return time.Time{}, false
}
