// Package common defines shared constants and sentinel errors used across
// the client layers of mealkeeper. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
