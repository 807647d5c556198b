package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	require.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestGenerateRandByteArray_Length(t *testing.T) {
	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	require.Len(t, a, 24)
	require.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	require.Equal(t, make([]byte, 6), buf)

	require.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSessionKeys_CoverTriple(t *testing.T) {
	require.ElementsMatch(t, []string{"accessToken", "refreshToken", "userData"}, SessionKeys)
}
