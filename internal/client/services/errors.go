package services

import "errors"

var (
	// ErrNotAuthenticated: an authenticated call was made with no access token.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshCredential: a refresh was needed but no refresh token is known.
	ErrNoRefreshCredential = errors.New("no refresh credential")
	// ErrSessionExpired wraps the cause of a failed refresh. The session has
	// been cleared by the time it is returned.
	ErrSessionExpired = errors.New("session expired")
	// ErrRetryUnauthorized: the request was rejected again after a
	// successful refresh.
	ErrRetryUnauthorized = errors.New("unauthorized after refresh")
	// ErrRefreshWaitTimeout: the caller gave up waiting for a refresh in
	// flight. The refresh itself keeps going.
	ErrRefreshWaitTimeout = errors.New("timed out waiting for token refresh")
	// ErrStore wraps credential store failures.
	ErrStore = errors.New("credential store failure")

	errSessionChanged = errors.New("session changed during refresh")
)

// Messages put in Session.LastError.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgStoreFailed    = "Failed to save authentication data"
	MsgCheckFailed    = "Authentication check failed"
	MsgLogoutFailed   = "Logout failed"
)
