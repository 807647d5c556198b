// Package common contains shared constants and sentinel errors used across
// mealkeeper components.
package common

// Keys under which the session triple is persisted in the credential store.
// The three are always written together (see repositories/credentials).
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserDataKey     = "userData"
)

// SessionKeys lists every persisted key of the session triple.
var SessionKeys = []string{AccessTokenKey, RefreshTokenKey, UserDataKey}

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)
