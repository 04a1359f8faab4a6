package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used by quote providers.
const DateLayout = "2006-01-02"

// Date is a civil calendar date. Comparisons are chronological, never lexical.
// The zero value is an empty date.
type Date struct {
	t time.Time
}

// NewDate builds a date from its calendar fields.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date format %q, expected YYYY-MM-DD: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseTargetDate accepts an ISO-8601 date or the sentinel "today" (any case),
// which resolves to the calendar date of now.
func ParseTargetDate(input string, now time.Time) (Date, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "today") {
		return DateOf(now), nil
	}
	return ParseDate(input)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.t.Compare(o.t)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
