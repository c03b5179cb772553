package hotelapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/internal/models"
)

type fakeCreds struct {
	token     string
	evictions int
}

func (f *fakeCreds) Token() string { return f.token }

func (f *fakeCreds) InvalidateToken() {
	f.token = ""
	f.evictions++
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := &fakeCreds{token: "tok-123"}
	return NewClient(srv.URL, 2*time.Second).WithCredentials(creds), creds
}

func TestClient_BearerInjection(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.User{ID: 1, Email: "a@b.c"})
	})

	_, err := client.Me(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	var present bool
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode([]models.Room{})
	})
	creds.token = ""

	_, err := client.SearchRooms(context.Background(), RoomQuery{})
	assert.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.False(t, present, "Authorization header must be absent, not empty")
}

func TestClient_EvictsCredentialOn401(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	})

	_, err := client.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 1, creds.evictions, "eviction fires exactly once per 401 response")
	assert.Empty(t, creds.token)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		sentinel error
	}{
		{"401 maps to unauthenticated", http.StatusUnauthorized, "bad token", ErrUnauthenticated},
		{"403 maps to forbidden", http.StatusForbidden, "not verified", ErrForbidden},
		{"409 maps to conflict", http.StatusConflict, "room taken", ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": tt.message})
			})

			_, err := client.Me(context.Background())
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClient_ServerErrorKeepsMessage(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Me(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, creds.evictions, "5xx must not evict the credential")
}

func TestClient_ConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Me(context.Background())

	assert.True(t, IsConnectivity(err))
	var connErr *ConnectivityError
	assert.ErrorAs(t, err, &connErr)
}

func TestRoomQuery_Values(t *testing.T) {
	num := 101
	capacity := 2
	maxPrice := 150.5
	in := models.NewDate(2026, time.June, 1)
	out := models.NewDate(2026, time.June, 5)

	tests := []struct {
		name  string
		query RoomQuery
		want  string
	}{
		{
			name:  "empty query sends nothing",
			query: RoomQuery{},
			want:  "",
		},
		{
			name: "all filters present",
			query: RoomQuery{
				RoomNumber:       &num,
				Type:             models.RoomDouble,
				MinCapacity:      &capacity,
				MaxPricePerNight: &maxPrice,
				CheckIn:          &in,
				CheckOut:         &out,
			},
			want: "checkInDate=2026-06-01&checkOutDate=2026-06-05&maxPricePerNight=150.5&minCapacity=2&roomNumber=101&type=DOUBLE",
		},
		{
			name:  "partial query omits the rest",
			query: RoomQuery{Type: models.RoomSuite},
			want:  "type=SUITE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Values().Encode())
		})
	}
}

func TestClient_AdminUserRoutes(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/users":
			_ = json.NewEncoder(w).Encode([]models.User{{ID: 1}})
		case "/users/7":
			_ = json.NewEncoder(w).Encode(models.User{ID: 7})
		case "/users/7/reservations":
			_ = json.NewEncoder(w).Encode([]models.Reservation{{ID: 70}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	users, err := client.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	user, err := client.User(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	reservations, err := client.UserReservations(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)

	assert.Equal(t, []string{"/users", "/users/7", "/users/7/reservations"}, paths)
}

func TestClient_SearchRoomsSendsFilters(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]models.Room{})
	})

	capacity := 3
	_, err := client.SearchRooms(context.Background(), RoomQuery{MinCapacity: &capacity})
	assert.NoError(t, err)
	assert.Equal(t, "minCapacity=3", gotQuery)
}

func TestClient_CreateReservationIdempotencyKey(t *testing.T) {
	keys := map[string]bool{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		keys[r.Header.Get("Idempotency-Key")] = true
		_ = json.NewEncoder(w).Encode(models.Reservation{ID: 7, Status: models.StatusPending})
	})

	req := ReservationRequest{
		RoomID:       1,
		CheckInDate:  models.NewDate(2026, time.June, 1),
		CheckOutDate: models.NewDate(2026, time.June, 5),
	}
	_, err := client.CreateReservation(context.Background(), req)
	require.NoError(t, err)
	_, err = client.CreateReservation(context.Background(), req)
	require.NoError(t, err)

	delete(keys, "")
	assert.Len(t, keys, 2, "each submission carries its own idempotency key")
}

func TestClient_RoomsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hits := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			hits++
			_ = json.NewEncoder(w).Encode([]models.Room{{ID: 1, RoomNumber: 101, Type: models.RoomSingle, Capacity: 1}})
		default:
			_ = json.NewEncoder(w).Encode(models.Room{ID: 2})
		}
	})
	client.UseRedisCache(rdb, time.Minute)

	ctx := context.Background()

	rooms, err := client.SearchRooms(ctx, RoomQuery{})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, hits)

	// Second identical search is served from the cache.
	rooms, err = client.SearchRooms(ctx, RoomQuery{})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, hits)

	// A mutation bumps the cache version, forcing a refetch.
	_, err = client.CreateRoom(ctx, models.Room{RoomNumber: 102, Type: models.RoomSingle, Capacity: 1})
	require.NoError(t, err)

	_, err = client.SearchRooms(ctx, RoomQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"wrapped message", `{"message":"room taken"}`, "room taken"},
		{"plain json string", `"room taken"`, "room taken"},
		{"raw text", "room taken", "room taken"},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Me(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}
