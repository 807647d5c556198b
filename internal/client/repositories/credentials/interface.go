package credentials

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("credential not found")
	// ErrCorrupt is returned when a sealed value cannot be decrypted.
	ErrCorrupt = errors.New("credential corrupt")
)

type Reader interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

type Writer interface {
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store is a small key/value store for session credentials.
type Store interface {
	Reader
	Writer

	// Update runs fn and applies every write fn made through w together.
	// If fn or the apply fails, none of them take effect.
	Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error

	Close() error
}
