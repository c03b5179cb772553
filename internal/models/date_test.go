package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	assert.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.March, 15), d)

	_, err = ParseDate("15.03.2026")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	stamp := time.Date(2026, time.March, 15, 23, 45, 1, 0, loc)

	d := DateOf(stamp)
	assert.Equal(t, NewDate(2026, time.March, 15), d)
	assert.Equal(t, time.UTC, d.Time().Location())
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2026, time.January, 30)

	assert.Equal(t, NewDate(2026, time.February, 2), d.AddDays(3))
	assert.Equal(t, NewDate(2026, time.January, 27), d.AddDays(-3))
	assert.Equal(t, 3, d.DaysUntil(NewDate(2026, time.February, 2)))
	assert.Equal(t, -3, d.DaysUntil(NewDate(2026, time.January, 27)))
}

func TestDate_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Date
	}{
		{"plain date", `"2026-03-15"`, NewDate(2026, time.March, 15)},
		{"timestamp is truncated", `"2026-03-15T18:30:00Z"`, NewDate(2026, time.March, 15)},
		{"null is the zero date", `null`, Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			assert.NoError(t, json.Unmarshal([]byte(tt.in), &d))
			assert.True(t, tt.want.Equal(d), "got %s", d)
		})
	}

	out, err := json.Marshal(NewDate(2026, time.March, 15))
	assert.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(out))

	out, err = json.Marshal(Date{})
	assert.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestDate_JSON_Invalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &d))
}

func TestDateRange_Valid(t *testing.T) {
	tests := []struct {
		name  string
		r     DateRange
		valid bool
	}{
		{
			name:  "one night",
			r:     DateRange{CheckIn: NewDate(2026, 1, 15), CheckOut: NewDate(2026, 1, 16)},
			valid: true,
		},
		{
			name:  "zero nights",
			r:     DateRange{CheckIn: NewDate(2026, 1, 15), CheckOut: NewDate(2026, 1, 15)},
			valid: false,
		},
		{
			name:  "reversed",
			r:     DateRange{CheckIn: NewDate(2026, 1, 16), CheckOut: NewDate(2026, 1, 15)},
			valid: false,
		},
		{
			name:  "missing check-out",
			r:     DateRange{CheckIn: NewDate(2026, 1, 15)},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.r.Valid())
		})
	}
}
