// Package hotelapi is a typed HTTP client for the hotel reservation
// backend. It owns the cross-cutting request policy: bearer credential
// injection, credential eviction on 401, error classification and an
// optional Redis read-through cache for room searches.
package hotelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"concierge/internal/models"
)

// CredentialSource supplies the bearer token for outgoing requests and
// accepts the eviction callback when the backend rejects it.
type CredentialSource interface {
	// Token returns the current bearer token, or "" when logged out.
	Token() string
	// InvalidateToken discards the stored credential. The client calls
	// it exactly once per 401 response, before the error propagates.
	InvalidateToken()
}

// Client talks to the hotel backend. The zero credential source means
// requests go out unauthenticated; use WithCredentials to bind a
// per-user session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for baseURL with the given request
// timeout. The timeout is fixed configuration; a request that exceeds
// it is reported as a connectivity failure.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithCredentials returns a copy of the client bound to a credential
// source. The copy shares the underlying HTTP client and cache.
func (c *Client) WithCredentials(src CredentialSource) *Client {
	clone := *c
	clone.creds = src
	return &clone
}

// UseRedisCache configures read-through caching of room searches.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// --- auth ---

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the body of a successful POST /auth/login.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Register creates an unverified account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", RegisterRequest{Email: email, Password: password}, nil)
}

// Verify submits the emailed verification code.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "verificationCode": code}
	return c.doJSON(ctx, http.MethodPost, "/auth/verify", body, nil)
}

// ResendCode requests a fresh verification code.
func (c *Client) ResendCode(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/resend", map[string]string{"email": email}, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", RegisterRequest{Email: email, Password: password}, &out)
	return out, err
}

// --- users ---

// Me fetches the identity behind the current credential.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

// MyReservations lists the current user's reservations.
func (c *Client) MyReservations(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := c.doJSON(ctx, http.MethodGet, "/users/me/reservations", nil, &out)
	return out, err
}

// Users lists all accounts (admin only).
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.doJSON(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

// User fetches one account by id (admin only).
func (c *Client) User(ctx context.Context, id int64) (models.User, error) {
	var out models.User
	err := c.doJSON(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// UserReservations lists another user's reservations (admin only).
func (c *Client) UserReservations(ctx context.Context, id int64) ([]models.Reservation, error) {
	var out []models.Reservation
	err := c.doJSON(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10)+"/reservations", nil, &out)
	return out, err
}

// --- rooms ---

// RoomQuery holds the optional GET /rooms filters. Nil or zero fields
// are omitted from the query string entirely: the backend treats an
// absent filter differently from an empty one.
type RoomQuery struct {
	RoomNumber       *int
	Type             models.RoomType
	MinCapacity      *int
	MaxPricePerNight *float64
	CheckIn          *models.Date
	CheckOut         *models.Date
}

// Values encodes the present filters as query parameters.
func (q RoomQuery) Values() url.Values {
	v := url.Values{}
	if q.RoomNumber != nil {
		v.Set("roomNumber", strconv.Itoa(*q.RoomNumber))
	}
	if q.Type != "" {
		v.Set("type", string(q.Type))
	}
	if q.MinCapacity != nil {
		v.Set("minCapacity", strconv.Itoa(*q.MinCapacity))
	}
	if q.MaxPricePerNight != nil {
		v.Set("maxPricePerNight", strconv.FormatFloat(*q.MaxPricePerNight, 'f', -1, 64))
	}
	if q.CheckIn != nil && !q.CheckIn.IsZero() {
		v.Set("checkInDate", q.CheckIn.String())
	}
	if q.CheckOut != nil && !q.CheckOut.IsZero() {
		v.Set("checkOutDate", q.CheckOut.String())
	}
	return v
}

// SearchRooms lists rooms matching the query, via the cache when one
// is configured.
func (c *Client) SearchRooms(ctx context.Context, q RoomQuery) ([]models.Room, error) {
	path := "/rooms"
	if enc := q.Values().Encode(); enc != "" {
		path += "?" + enc
	}

	cacheKey, cacheable := c.roomsCacheKey(ctx, path)
	var rooms []models.Room
	if cacheable && c.readCache(ctx, cacheKey, &rooms) {
		return rooms, nil
	}

	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rooms); err != nil {
		return nil, err
	}
	if cacheable {
		c.writeCache(ctx, cacheKey, rooms)
	}
	return rooms, nil
}

// CreateRoom adds a room (admin only).
func (c *Client) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	var out models.Room
	err := c.doJSON(ctx, http.MethodPost, "/rooms", room, &out)
	if err == nil {
		c.invalidateRoomsCache(ctx)
	}
	return out, err
}

// RoomUpdate carries the PATCH /rooms/{id} fields; nil means unchanged.
type RoomUpdate struct {
	Type          *models.RoomType `json:"type,omitempty"`
	Capacity      *int             `json:"capacity,omitempty"`
	PricePerNight *float64         `json:"pricePerNight,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Amenities     []string         `json:"amenities,omitempty"`
}

// UpdateRoom patches a room (admin only).
func (c *Client) UpdateRoom(ctx context.Context, id int64, update RoomUpdate) (models.Room, error) {
	var out models.Room
	err := c.doJSON(ctx, http.MethodPatch, "/rooms/"+strconv.FormatInt(id, 10), update, &out)
	if err == nil {
		c.invalidateRoomsCache(ctx)
	}
	return out, err
}

// DeleteRoom removes a room (admin only).
func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	err := c.doJSON(ctx, http.MethodDelete, "/rooms/"+strconv.FormatInt(id, 10), nil, nil)
	if err == nil {
		c.invalidateRoomsCache(ctx)
	}
	return err
}

// --- reservations ---

// ReservationRequest is the body for POST /reservations.
type ReservationRequest struct {
	RoomID       int64       `json:"roomId"`
	CheckInDate  models.Date `json:"checkInDate"`
	CheckOutDate models.Date `json:"checkOutDate"`
}

// CreateReservation books a room. The request carries an idempotency
// key so an ambiguous timeout can be resubmitted without double-booking.
func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (models.Reservation, error) {
	var out models.Reservation
	err := c.do(ctx, http.MethodPost, "/reservations", req, &out, map[string]string{
		"Idempotency-Key": uuid.New().String(),
	})
	if err == nil {
		c.invalidateRoomsCache(ctx)
	}
	return out, err
}

// ConfirmReservation confirms a pending reservation.
func (c *Client) ConfirmReservation(ctx context.Context, id int64) (models.Reservation, error) {
	var out models.Reservation
	err := c.doJSON(ctx, http.MethodPatch, "/reservations/"+strconv.FormatInt(id, 10)+"/confirm", nil, &out)
	return out, err
}

// CancelReservation cancels a reservation.
func (c *Client) CancelReservation(ctx context.Context, id int64) (models.Reservation, error) {
	var out models.Reservation
	err := c.doJSON(ctx, http.MethodPatch, "/reservations/"+strconv.FormatInt(id, 10)+"/cancel", nil, &out)
	if err == nil {
		c.invalidateRoomsCache(ctx)
	}
	return out, err
}

// --- transport ---

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
		// Evict the rejected credential before the caller sees the
		// error. do runs once per response, so this fires once.
		c.creds.InvalidateToken()
	}

	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts a human-readable message from an error
// payload, accepting either {"message": ...} or a plain string body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wrap struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wrap); err == nil && wrap.Message != "" {
		return wrap.Message
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain
	}
	return string(data)
}

// --- rooms cache ---

const roomsCacheVersionKey = "rooms:ver"

// roomsCacheKey derives the cache key for a search path. The key embeds
// a version counter; mutations bump the counter, which invalidates
// every cached search at once without tracking individual keys.
func (c *Client) roomsCacheKey(ctx context.Context, path string) (string, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return "", false
	}
	ver, err := c.redis.Get(ctx, roomsCacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return fmt.Sprintf("rooms:%d:%s", ver, path), true
}

func (c *Client) invalidateRoomsCache(ctx context.Context) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	_ = c.redis.Incr(ctx, roomsCacheVersionKey).Err()
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}
