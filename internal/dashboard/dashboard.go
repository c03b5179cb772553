// Package dashboard assembles the admin overview from independent
// backend fetches.
package dashboard

import (
	"context"
	"sync"

	"concierge/internal/hotelapi"
	"concierge/internal/models"
)

// AdminAPI is the slice of the gateway the overview needs.
type AdminAPI interface {
	Users(ctx context.Context) ([]models.User, error)
	SearchRooms(ctx context.Context, q hotelapi.RoomQuery) ([]models.Room, error)
	MyReservations(ctx context.Context) ([]models.Reservation, error)
}

// Overview holds the joined results. Each section carries its own
// error: one failed fetch must not discard data the others returned.
type Overview struct {
	Users   []models.User
	Rooms   []models.Room
	MyStays []models.Reservation

	UsersErr   error
	RoomsErr   error
	MyStaysErr error
}

// Failed reports whether every fetch failed.
func (o *Overview) Failed() bool {
	return o.UsersErr != nil && o.RoomsErr != nil && o.MyStaysErr != nil
}

// Load issues the three fetches concurrently and joins them before
// returning. The fetches have no ordering dependency on each other.
func Load(ctx context.Context, api AdminAPI) Overview {
	var (
		ov Overview
		wg sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		ov.Users, ov.UsersErr = api.Users(ctx)
	}()
	go func() {
		defer wg.Done()
		ov.Rooms, ov.RoomsErr = api.SearchRooms(ctx, hotelapi.RoomQuery{})
	}()
	go func() {
		defer wg.Done()
		ov.MyStays, ov.MyStaysErr = api.MyReservations(ctx)
	}()
	wg.Wait()

	return ov
}
