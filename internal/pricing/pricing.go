// Package pricing derives reservation totals when the backend does not
// supply an authoritative one.
package pricing

import (
	"math"

	"concierge/internal/availability"
	"concierge/internal/models"
)

// Nights returns the number of nights in [checkIn, checkOut). The day
// difference is rounded up so that any partial-day skew in upstream
// timestamps still counts as a full night.
func Nights(checkIn, checkOut models.Date) (int, error) {
	if checkIn.IsZero() || checkOut.IsZero() || !checkIn.Before(checkOut) {
		return 0, availability.ErrInvalidInterval
	}
	hours := checkOut.Time().Sub(checkIn.Time()).Hours()
	return int(math.Ceil(hours / 24)), nil
}

// Total returns the price of a reservation. A TotalPrice supplied by
// the backend is the source of truth and is returned unchanged;
// otherwise the total is nights times the nightly rate.
func Total(r models.Reservation) (float64, error) {
	if r.TotalPrice != nil {
		return *r.TotalPrice, nil
	}
	nights, err := Nights(r.CheckInDate, r.CheckOutDate)
	if err != nil {
		return 0, err
	}
	return float64(nights) * r.RoomPricePerNight, nil
}

// Quote prices a prospective stay in a room before a reservation exists.
func Quote(room models.Room, checkIn, checkOut models.Date) (float64, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	return float64(nights) * room.PricePerNight, nil
}
