package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"concierge/internal/availability"
	"concierge/internal/models"
)

func day(year int, month time.Month, d int) models.Date {
	return models.NewDate(year, month, d)
}

func price(v float64) *float64 { return &v }

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  models.Date
		checkOut models.Date
		nights   int
		wantErr  bool
	}{
		{
			name:     "single night",
			checkIn:  day(2024, 1, 1),
			checkOut: day(2024, 1, 2),
			nights:   1,
		},
		{
			name:     "three nights",
			checkIn:  day(2024, 1, 1),
			checkOut: day(2024, 1, 4),
			nights:   3,
		},
		{
			name:     "across a month boundary",
			checkIn:  day(2024, 1, 30),
			checkOut: day(2024, 2, 2),
			nights:   3,
		},
		{
			name:     "across a DST change stays whole days",
			checkIn:  day(2024, 3, 30),
			checkOut: day(2024, 4, 1),
			nights:   2,
		},
		{
			name:     "zero-length stay is invalid",
			checkIn:  day(2024, 1, 1),
			checkOut: day(2024, 1, 1),
			wantErr:  true,
		},
		{
			name:     "reversed interval is invalid",
			checkIn:  day(2024, 1, 4),
			checkOut: day(2024, 1, 1),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Nights(tt.checkIn, tt.checkOut)
			if tt.wantErr {
				assert.ErrorIs(t, err, availability.ErrInvalidInterval)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.nights, got)
		})
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name        string
		reservation models.Reservation
		total       float64
		wantErr     bool
	}{
		{
			name: "backend total wins over derived",
			reservation: models.Reservation{
				CheckInDate:       day(2024, 1, 1),
				CheckOutDate:      day(2024, 1, 4),
				RoomPricePerNight: 100,
				TotalPrice:        price(500),
			},
			total: 500,
		},
		{
			name: "derived from nightly rate",
			reservation: models.Reservation{
				CheckInDate:       day(2024, 1, 1),
				CheckOutDate:      day(2024, 1, 4),
				RoomPricePerNight: 100,
			},
			total: 300,
		},
		{
			name: "backend total survives a broken interval",
			reservation: models.Reservation{
				CheckInDate:  day(2024, 1, 4),
				CheckOutDate: day(2024, 1, 1),
				TotalPrice:   price(250),
			},
			total: 250,
		},
		{
			name: "zero nightly rate derives zero",
			reservation: models.Reservation{
				CheckInDate:  day(2024, 1, 1),
				CheckOutDate: day(2024, 1, 2),
			},
			total: 0,
		},
		{
			name: "broken interval without a total",
			reservation: models.Reservation{
				CheckInDate:       day(2024, 1, 4),
				CheckOutDate:      day(2024, 1, 1),
				RoomPricePerNight: 100,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Total(tt.reservation)
			if tt.wantErr {
				assert.ErrorIs(t, err, availability.ErrInvalidInterval)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.total, got)
		})
	}
}

func TestQuote(t *testing.T) {
	room := models.Room{PricePerNight: 79.5}

	got, err := Quote(room, day(2026, 6, 1), day(2026, 6, 5))
	assert.NoError(t, err)
	assert.Equal(t, 318.0, got)

	_, err = Quote(room, day(2026, 6, 5), day(2026, 6, 5))
	assert.ErrorIs(t, err, availability.ErrInvalidInterval)
}
