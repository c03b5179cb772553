package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates used by the backend.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
// All comparisons happen at UTC midnight so that timestamp skew from
// parsing or arithmetic can never influence interval checks.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both values name the same calendar date.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Time returns the date as a UTC midnight timestamp.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string, a full RFC 3339 timestamp
// (the time component is discarded) or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("unmarshal date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// DateRange is a half-open [CheckIn, CheckOut) stay interval.
type DateRange struct {
	CheckIn  Date `json:"checkInDate"`
	CheckOut Date `json:"checkOutDate"`
}

// Valid reports whether the range holds at least one night.
func (r DateRange) Valid() bool {
	return !r.CheckIn.IsZero() && !r.CheckOut.IsZero() && r.CheckIn.Before(r.CheckOut)
}

func (r DateRange) String() string {
	return r.CheckIn.String() + " - " + r.CheckOut.String()
}
