// Package secrets encrypts application credentials at rest with AES-256-GCM under keys
// derived by PBKDF2 from a caller-supplied master key.
//
// Envelopes are versioned JSON documents carrying their own salt, IV, tag and iteration
// count. StoredCredential lets a store hold legacy plaintext values next to encrypted ones
// while they are migrated. Persisting documents durably is the job of package atomicfile.
package secrets

import (
	"fmt"

	"github.com/rbaliyan/config/codec"
)

// Codec wraps an inner codec with password-based encryption.
// On Encode, the inner codec serializes the value, the result is sealed under the
// current key, and the envelope's JSON form is returned.
// On Decode, the envelope is parsed and opened, then the inner codec deserializes the plaintext.
//
// Codec is safe for concurrent use if the underlying KeyProvider and inner codec are safe
// for concurrent use. StaticKeyProvider satisfies this requirement.
type Codec struct {
	inner codec.Codec
	store *TokenStore
	name  string
}

// Compile-time interface check.
var _ codec.Codec = (*Codec)(nil)

// NewCodec creates an encrypting codec that wraps the given inner codec.
// The codec name is "encrypted:<inner>", e.g. "encrypted:json".
// Returns an error if inner or provider is nil.
func NewCodec(inner codec.Codec, provider KeyProvider, opts ...Option) (*Codec, error) {
	if inner == nil {
		return nil, fmt.Errorf("secrets: NewCodec inner codec is nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("secrets: NewCodec provider is nil")
	}
	store, err := NewTokenStore(provider, opts...)
	if err != nil {
		return nil, err
	}
	return &Codec{
		inner: inner,
		store: store,
		name:  "encrypted:" + inner.Name(),
	}, nil
}

// Name returns the codec name, e.g. "encrypted:json".
func (c *Codec) Name() string {
	return c.name
}

// Encode serializes the value using the inner codec, then encrypts the result.
func (c *Codec) Encode(v any) ([]byte, error) {
	plaintext, err := c.inner.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("secrets: inner encode failed: %w", err)
	}
	defer clear(plaintext)

	key, err := c.store.provider.CurrentKey()
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to get current key: %w", err)
	}
	defer key.wipe()

	env, err := Encrypt(plaintext, key.Bytes, c.store.iterations)
	if err != nil {
		return nil, err
	}
	return env.Marshal()
}

// Decode decrypts the data, then deserializes the plaintext using the inner codec.
func (c *Codec) Decode(data []byte, v any) error {
	env, err := ParseEnvelope(data)
	if err != nil {
		return fmt.Errorf("secrets: decrypt failed: %w", err)
	}
	plaintext, _, err := c.store.open(Encrypted(env))
	if err != nil {
		return fmt.Errorf("secrets: decrypt failed: %w", err)
	}

	if err := c.inner.Decode([]byte(plaintext), v); err != nil {
		return fmt.Errorf("secrets: inner decode failed: %w", err)
	}
	return nil
}
