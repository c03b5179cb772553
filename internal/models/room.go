package models

import "fmt"

// RoomType enumerates the room categories the backend knows about.
type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomDeluxe RoomType = "DELUXE"
)

// Valid reports whether the type is one of the backend enum values.
func (t RoomType) Valid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomSuite, RoomDeluxe:
		return true
	}
	return false
}

// Room is a bookable room as returned by GET /rooms.
// BookedDates is a read-only projection of other guests' active
// reservations; it is refreshed on every fetch and never mutated here.
type Room struct {
	ID            int64       `json:"id"`
	RoomNumber    int         `json:"roomNumber"`
	Type          RoomType    `json:"type"`
	Capacity      int         `json:"capacity"`
	PricePerNight float64     `json:"pricePerNight"`
	Description   string      `json:"description,omitempty"`
	Amenities     []string    `json:"amenities,omitempty"`
	BookedDates   []DateRange `json:"bookedDates,omitempty"`
}

// Validate checks the fields an admin submits when creating a room.
func (r *Room) Validate() error {
	if r.RoomNumber <= 0 {
		return fmt.Errorf("room number must be positive")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown room type %q", r.Type)
	}
	if r.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1")
	}
	if r.PricePerNight < 0 {
		return fmt.Errorf("price per night must not be negative")
	}
	return nil
}
