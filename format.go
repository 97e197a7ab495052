package secrets

import (
	"encoding/json"
	"fmt"
)

// Envelope format constants.
const (
	// CurrentVersion is the newest envelope version this code writes and understands.
	CurrentVersion = 1

	// DefaultIterations is the PBKDF2 iteration count used when callers do not pick one.
	DefaultIterations = 100_000

	// MaxIterations bounds the iteration count accepted from a stored envelope.
	MaxIterations = 10_000_000

	// aesKeySize is the derived key size in bytes (AES-256).
	aesKeySize = 32

	// saltSize is the per-envelope PBKDF2 salt size.
	saltSize = 32

	// gcmNonceSize is the nonce size for AES-GCM (12 bytes).
	gcmNonceSize = 12

	// gcmTagSize is the authentication tag size for GCM (16 bytes).
	gcmTagSize = 16
)

// Envelope is the self-describing unit of encrypted-at-rest data. It carries everything
// needed to decrypt the payload except the password.
//
// Byte fields are encoded as standard base64 in JSON. An Envelope is immutable once
// produced by Encrypt.
type Envelope struct {
	Version    int    `json:"version"`
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	Salt       []byte `json:"salt"`
	AuthTag    []byte `json:"authTag"`
	Iterations int    `json:"iterations"`
}

// Validate checks the envelope structure. It does not check the version against
// CurrentVersion; Decrypt does that after validation.
func (e *Envelope) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil envelope", ErrMalformedEnvelope)
	}
	if e.Version < 1 {
		return fmt.Errorf("%w: missing version", ErrMalformedEnvelope)
	}
	switch {
	case len(e.Ciphertext) == 0:
		return fmt.Errorf("%w: missing ciphertext", ErrMalformedEnvelope)
	case len(e.Salt) == 0:
		return fmt.Errorf("%w: missing salt", ErrMalformedEnvelope)
	case len(e.IV) != gcmNonceSize:
		return fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedEnvelope, gcmNonceSize, len(e.IV))
	case len(e.AuthTag) != gcmTagSize:
		return fmt.Errorf("%w: auth tag must be %d bytes, got %d", ErrMalformedEnvelope, gcmTagSize, len(e.AuthTag))
	}
	if e.Iterations <= 0 || e.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations %d out of range", ErrMalformedEnvelope, e.Iterations)
	}
	return nil
}

// Marshal returns the persisted JSON form of the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes the persisted JSON form. Structural validation is left to Decrypt
// so that a parsed envelope can still be inspected.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &e, nil
}

// clone returns a deep copy so callers cannot mutate shared byte slices.
func (e *Envelope) clone() *Envelope {
	return &Envelope{
		Version:    e.Version,
		Ciphertext: append([]byte(nil), e.Ciphertext...),
		IV:         append([]byte(nil), e.IV...),
		Salt:       append([]byte(nil), e.Salt...),
		AuthTag:    append([]byte(nil), e.AuthTag...),
		Iterations: e.Iterations,
	}
}
