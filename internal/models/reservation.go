package models

import "time"

// ReservationStatus is the reservation lifecycle state.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a stay request as returned by the backend. TotalPrice
// is optional; when the backend omits it the client derives a total
// from the nightly rate (see the pricing package).
type Reservation struct {
	ID                int64             `json:"id"`
	RoomID            int64             `json:"roomId,omitempty"`
	RoomNumber        int               `json:"roomNumber"`
	RoomType          RoomType          `json:"roomType,omitempty"`
	RoomCapacity      int               `json:"roomCapacity,omitempty"`
	RoomPricePerNight float64           `json:"roomPricePerNight,omitempty"`
	CheckInDate       Date              `json:"checkInDate"`
	CheckOutDate      Date              `json:"checkOutDate"`
	Status            ReservationStatus `json:"status"`
	TotalPrice        *float64          `json:"totalPrice,omitempty"`
	CreatedAt         time.Time         `json:"createdAt,omitempty"`
}

// Range returns the stay as a half-open date interval.
func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}
}

// CanTransition reports whether the lifecycle allows moving to target.
// PENDING may become CONFIRMED or CANCELLED, CONFIRMED may still be
// CANCELLED, and CANCELLED is terminal.
func (r *Reservation) CanTransition(target ReservationStatus) bool {
	switch r.Status {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCancelled
	}
	return false
}

// CanConfirm reports whether the reservation accepts a confirm action.
func (r *Reservation) CanConfirm() bool { return r.CanTransition(StatusConfirmed) }

// CanCancel reports whether the reservation accepts a cancel action.
func (r *Reservation) CanCancel() bool { return r.CanTransition(StatusCancelled) }

// Active reports whether the reservation still occupies its dates.
func (r *Reservation) Active() bool { return r.Status != StatusCancelled }
