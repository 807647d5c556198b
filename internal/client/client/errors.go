package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches an *APIError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable matches transport failures and 502/503/504 responses.
	ErrUnavailable = errors.New("server unavailable")
)

// GenericErrorMessage is used when a failed response says nothing readable.
const GenericErrorMessage = "request failed"

// ErrorKind classifies an APIError.
type ErrorKind int

const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork ErrorKind = iota + 1
	// KindHTTPStatus: the server answered with a non-2xx status.
	KindHTTPStatus
	// KindMalformedBody: a 2xx response whose body could not be decoded.
	KindMalformedBody
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedBody:
		return "malformed_body"
	default:
		return "unknown"
	}
}

// APIError is returned by every APIClient call that fails after the request
// was attempted. Message is what the server said, suitable for showing to
// the user.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindHTTPStatus && e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		if e.Kind == KindNetwork {
			return true
		}
		return e.Kind == KindHTTPStatus && (e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout)
	}
	return false
}

// Message returns the user-facing message of err: the server text for an
// *APIError, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
