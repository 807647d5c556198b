package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealedStore_EncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	s, err := NewSealedStore(ctx, inner, "device-secret")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "accessToken", []byte("A1")))

	raw, err := inner.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "A1")

	v, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("A1"), v)
}

func TestSealedStore_ReopenWithSameSecret(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s1, err := NewSealedStore(ctx, inner, "device-secret")
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "refreshToken", []byte("R1")))

	s2, err := NewSealedStore(ctx, inner, "device-secret")
	require.NoError(t, err)
	v, err := s2.Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("R1"), v)

	s3, err := NewSealedStore(ctx, inner, "other-secret")
	require.NoError(t, err)
	_, err = s3.Get(ctx, "refreshToken")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestSealedStore_DetectsTamperingAndSwaps(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	s, err := NewSealedStore(ctx, inner, "device-secret")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "accessToken", []byte("A1")))
	require.NoError(t, s.Set(ctx, "refreshToken", []byte("R1")))

	raw, err := inner.Get(ctx, "accessToken")
	require.NoError(t, err)

	// same ciphertext under another key
	require.NoError(t, inner.Set(ctx, "refreshToken", raw))
	_, err = s.Get(ctx, "refreshToken")
	require.ErrorIs(t, err, ErrCorrupt)

	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, inner.Set(ctx, "accessToken", raw))
	_, err = s.Get(ctx, "accessToken")
	require.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, inner.Set(ctx, "userData", []byte{1, 2}))
	_, err = s.Get(ctx, "userData")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestNewSealedStore_EmptySecret(t *testing.T) {
	_, err := NewSealedStore(context.Background(), NewMemoryStore(), "")
	require.Error(t, err)
}
