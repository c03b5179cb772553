package hotelapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the backend failure classes callers branch on.
var (
	// ErrUnauthenticated is a 401: the credential is missing, invalid
	// or expired. The client has already evicted it by the time the
	// error reaches the caller.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is a 403: account inactive/unverified or the role
	// does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is a 409, e.g. registering an email twice.
	ErrConflict = errors.New("conflict")
)

// APIError is any non-2xx response with a message payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Is maps status codes onto the sentinel errors so call sites can use
// errors.Is without inspecting the struct.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// ConnectivityError wraps transport-level failures: unreachable host,
// timeout, connection reset. These are surfaced to the user as a
// generic connectivity message and are never retried automatically.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is a transport-level failure.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
