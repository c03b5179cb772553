package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"concierge/internal/hotelapi"
	"concierge/internal/models"
)

type fakeAdminAPI struct {
	users    []models.User
	usersErr error

	rooms    []models.Room
	roomsErr error

	stays    []models.Reservation
	staysErr error

	delay time.Duration
}

func (f *fakeAdminAPI) Users(ctx context.Context) ([]models.User, error) {
	time.Sleep(f.delay)
	return f.users, f.usersErr
}

func (f *fakeAdminAPI) SearchRooms(ctx context.Context, q hotelapi.RoomQuery) ([]models.Room, error) {
	time.Sleep(f.delay)
	return f.rooms, f.roomsErr
}

func (f *fakeAdminAPI) MyReservations(ctx context.Context) ([]models.Reservation, error) {
	time.Sleep(f.delay)
	return f.stays, f.staysErr
}

func TestLoad_AllSucceed(t *testing.T) {
	api := &fakeAdminAPI{
		users: []models.User{{ID: 1}, {ID: 2}},
		rooms: []models.Room{{ID: 10}},
		stays: []models.Reservation{{ID: 100}},
	}

	ov := Load(context.Background(), api)

	assert.False(t, ov.Failed())
	assert.Len(t, ov.Users, 2)
	assert.Len(t, ov.Rooms, 1)
	assert.Len(t, ov.MyStays, 1)
	assert.NoError(t, ov.UsersErr)
	assert.NoError(t, ov.RoomsErr)
	assert.NoError(t, ov.MyStaysErr)
}

func TestLoad_PartialFailureKeepsTheRest(t *testing.T) {
	boom := errors.New("users route down")
	api := &fakeAdminAPI{
		usersErr: boom,
		rooms:    []models.Room{{ID: 10}},
		stays:    []models.Reservation{{ID: 100}},
	}

	ov := Load(context.Background(), api)

	assert.False(t, ov.Failed())
	assert.ErrorIs(t, ov.UsersErr, boom)
	assert.Nil(t, ov.Users)
	assert.Len(t, ov.Rooms, 1)
	assert.Len(t, ov.MyStays, 1)
}

func TestLoad_AllFail(t *testing.T) {
	boom := errors.New("backend down")
	api := &fakeAdminAPI{usersErr: boom, roomsErr: boom, staysErr: boom}

	ov := Load(context.Background(), api)

	assert.True(t, ov.Failed())
}

func TestLoad_FetchesRunConcurrently(t *testing.T) {
	api := &fakeAdminAPI{delay: 50 * time.Millisecond}

	start := time.Now()
	Load(context.Background(), api)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 120*time.Millisecond, "three 50ms fetches should overlap")
}
