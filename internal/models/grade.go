package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Grade is one inspection. Grades are kept most recent first.
type Grade struct {
	Date  *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	Grade string     `json:"grade,omitempty" bson:"grade,omitempty"`
	Score int        `json:"score" bson:"score"`
}

// UnmarshalJSON requires a score and accepts every date form ParseDate does.
func (g *Grade) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date  json.RawMessage `json:"date"`
		Grade string          `json:"grade"`
		Score *int            `json:"score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Score == nil {
		return Invalidf("grade score is required")
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Invalidf("grade date: %v", err)
	}
	*g = Grade{Date: date, Grade: raw.Grade, Score: *raw.Score}
	return nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate decodes an inspection date: RFC3339 or date-only strings, epoch
// milliseconds as a number or string, and extended JSON {"$date": ...}
// wrappers including {"$numberLong": "..."}. Absent and null give nil.
func ParseDate(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t := time.UnixMilli(ms).UTC()
			return &t, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				t = t.UTC()
				return &t, nil
			}
		}
		return nil, fmt.Errorf("unrecognized date %q", s)
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		for _, key := range []string{"$date", "$numberLong"} {
			if inner, ok := wrapped[key]; ok {
				return ParseDate(inner)
			}
		}
		return nil, fmt.Errorf("unsupported date object %s", raw)
	default:
		var ms int64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return nil, err
		}
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
}
