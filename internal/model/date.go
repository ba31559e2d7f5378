package model

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the canonical day format used for every date column.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// Date is a calendar day that may be undefined (unparseable input).
type Date struct {
	Time  time.Time
	Valid bool
}

// DateOf returns a defined Date truncated to the day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate coerces a raw cell to a Date. Blank or unparseable cells are undefined.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

// String formats the date as YYYY-MM-DD, or "" when undefined.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Before reports whether d is strictly before o. False if either is undefined.
func (d Date) Before(o Date) bool {
	return d.Valid && o.Valid && d.Time.Before(o.Time)
}

// After reports whether d is strictly after o. False if either is undefined.
func (d Date) After(o Date) bool {
	return d.Valid && o.Valid && d.Time.After(o.Time)
}

// MarshalJSON encodes undefined dates as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}
