// Package availability decides whether a room is bookable for a
// candidate stay given the booked intervals the backend reports.
package availability

import (
	"errors"

	"concierge/internal/models"
)

// ErrInvalidInterval is returned when a candidate check-out does not
// fall strictly after its check-in. Callers validate input before
// asking for availability; hitting this error indicates a bug upstream.
var ErrInvalidInterval = errors.New("check-out date must be after check-in date")

// Conflicts reports whether two half-open [checkIn, checkOut) stays
// overlap. Abutting stays, where one ends the day the other begins, do
// not conflict. The test is symmetric in its arguments.
func Conflicts(a, b models.DateRange) bool {
	return a.CheckIn.Before(b.CheckOut) && b.CheckIn.Before(a.CheckOut)
}

// IsAvailableForDates reports whether a room with the given booked
// intervals is free for the whole of [checkIn, checkOut). The backend
// guarantees booked intervals of active reservations never overlap each
// other, so a single pass with early exit is sufficient.
func IsAvailableForDates(booked []models.DateRange, checkIn, checkOut models.Date) (bool, error) {
	if checkIn.IsZero() || checkOut.IsZero() || !checkIn.Before(checkOut) {
		return false, ErrInvalidInterval
	}
	candidate := models.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	for _, b := range booked {
		if Conflicts(candidate, b) {
			return false, nil
		}
	}
	return true, nil
}

// HasAnyAvailability is the coarse check used when no candidate dates
// have been chosen yet. It deliberately reports every room as available:
// a room with bookings still has free periods outside them, and the
// backend does not expose enough calendar to prove otherwise. Callers
// may rely on it only for a default "available" badge, never for
// booking decisions.
func HasAnyAvailability(booked []models.DateRange) bool {
	_ = booked
	return true
}
