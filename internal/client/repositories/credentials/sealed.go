package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/common"
	"github.com/dmitrijs2005/mealkeeper/internal/cryptox"
)

// SaltKey holds the random argon2 salt, stored in the clear next to the
// sealed values. It is not a credential.
const SaltKey = "sealSalt"

const saltSize = 16

// SealedStore encrypts every value with AES-256-GCM before handing it to
// the wrapped Store. The key name is bound as additional data, so a value
// copied under another key does not open.
type SealedStore struct {
	inner Store
	key   []byte
}

// NewSealedStore derives the sealing key from secret and the salt kept in
// inner, creating the salt on first use.
func NewSealedStore(ctx context.Context, inner Store, secret string) (*SealedStore, error) {
	if secret == "" {
		return nil, errors.New("sealed store: empty secret")
	}

	salt, err := inner.Get(ctx, SaltKey)
	if errors.Is(err, ErrNotFound) {
		salt = common.GenerateRandByteArray(saltSize)
		if err := inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}

	return &SealedStore{inner: inner, key: cryptox.DeriveKey([]byte(secret), salt)}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := cryptox.Open(s.key, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return plain, nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value []byte) error {
	return sealedWriter{w: s.inner, key: s.key}.Set(ctx, key, value)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	return s.inner.Update(ctx, func(ctx context.Context, w Writer) error {
		return fn(ctx, sealedWriter{w: w, key: s.key})
	})
}

func (s *SealedStore) Close() error {
	common.WipeByteArray(s.key)
	return s.inner.Close()
}

type sealedWriter struct {
	w   Writer
	key []byte
}

func (sw sealedWriter) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(sw.key, value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal credential[%s]: %w", key, err)
	}
	return sw.w.Set(ctx, key, sealed)
}

func (sw sealedWriter) Delete(ctx context.Context, key string) error {
	return sw.w.Delete(ctx, key)
}
