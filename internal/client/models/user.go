// Package models defines the client-side data shapes exchanged with the
// meal-tracking API and persisted by the credential store.
package models

import "strings"

// Profile is the authenticated user as returned by GET /users/me. It is also
// what gets cached under the userData key.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	MealCount   int64  `json:"mealCount,omitempty"`
}

// DisplayName returns "First Last" when known, otherwise the username.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// RegisterAck is whatever the server sends back after registration: either
// the created user or a plain message.
type RegisterAck struct {
	Message string `json:"message,omitempty"`
	Profile
}
