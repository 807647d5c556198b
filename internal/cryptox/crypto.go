// Package cryptox holds the symmetric primitives used to keep credentials
// encrypted at rest: argon2id key derivation and AES-GCM sealing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/mealkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys produced by DeriveKey (AES-256).
const KeySize = 32

// ErrShortCiphertext is returned by Open when the input cannot even hold a nonce.
var ErrShortCiphertext = errors.New("ciphertext too short")

// DeriveKey stretches a device secret into an AES-256 key with argon2id.
// Same secret and salt always give the same key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext, so the output is self-contained.
//
// additional is authenticated but not encrypted; pass the storage key so a
// value copied under a different key fails to open.
func Seal(key, plaintext, additional []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)

	return aead.Seal(out, nonce, plaintext, additional), nil
}

// Open reverses Seal. Any modification of the sealed bytes or a mismatched
// key or additional data yields an error.
func Open(key, sealed, additional []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrShortCiphertext
	}

	return aead.Open(nil, sealed[:ns], sealed[ns:], additional)
}
