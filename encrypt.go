package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives a 32-byte AES-256 key from password and salt using PBKDF2-HMAC-SHA256.
// The same inputs always yield the same key. Callers own the returned slice and should wipe it.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, aesKeySize, sha256.New)
}

// Encrypt seals plaintext with AES-256-GCM under a key derived from password.
// A fresh salt and IV are generated for every call; there is no way to supply them.
//
// Empty plaintext is rejected with ErrEmptyPlaintext. The iteration count must be in
// (0, MaxIterations]. The derived key is wiped before returning.
func Encrypt(plaintext, password []byte, iterations int) (*Envelope, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}
	if iterations <= 0 || iterations > MaxIterations {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, iterations)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("secrets: failed to generate salt: %w", err)
	}
	iv := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("secrets: failed to generate iv: %w", err)
	}

	key := DeriveKey(password, salt, iterations)
	defer memguard.WipeBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag to the ciphertext; the envelope stores them separately.
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - gcmTagSize

	return &Envelope{
		Version:    CurrentVersion,
		Ciphertext: sealed[:split:split],
		IV:         iv,
		Salt:       salt,
		AuthTag:    sealed[split:],
		Iterations: iterations,
	}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to create GCM: %w", err)
	}
	return gcm, nil
}
