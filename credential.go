package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CredentialKind tags the variant held by a StoredCredential.
type CredentialKind int

const (
	// KindPlaintext is a legacy value stored without encryption.
	KindPlaintext CredentialKind = iota
	// KindEncrypted is a value sealed in an Envelope.
	KindEncrypted
)

// String returns the kind name.
func (k CredentialKind) String() string {
	switch k {
	case KindPlaintext:
		return "plaintext"
	case KindEncrypted:
		return "encrypted"
	default:
		return fmt.Sprintf("CredentialKind(%d)", int(k))
	}
}

// StoredCredential is either a plaintext value or an encrypted envelope. Stores may hold
// a mix of both while legacy values are being migrated; both are valid input to decryption.
//
// The zero value is an empty plaintext credential.
type StoredCredential struct {
	kind      CredentialKind
	plaintext string
	envelope  *Envelope
}

// Plaintext returns a plaintext credential.
func Plaintext(s string) StoredCredential {
	return StoredCredential{kind: KindPlaintext, plaintext: s}
}

// Encrypted returns an encrypted credential holding a copy of env.
func Encrypted(env *Envelope) StoredCredential {
	if env == nil {
		return StoredCredential{kind: KindEncrypted}
	}
	return StoredCredential{kind: KindEncrypted, envelope: env.clone()}
}

// Kind reports which variant the credential holds.
func (c StoredCredential) Kind() CredentialKind { return c.kind }

// IsEncrypted reports whether the credential holds an envelope.
func (c StoredCredential) IsEncrypted() bool { return c.kind == KindEncrypted }

// PlaintextValue returns the plaintext and true for plaintext credentials.
func (c StoredCredential) PlaintextValue() (string, bool) {
	if c.kind != KindPlaintext {
		return "", false
	}
	return c.plaintext, true
}

// Envelope returns a copy of the envelope and true for encrypted credentials.
func (c StoredCredential) Envelope() (*Envelope, bool) {
	if c.kind != KindEncrypted || c.envelope == nil {
		return nil, false
	}
	return c.envelope.clone(), true
}

// credentialRecord is the persisted shape of a StoredCredential.
type credentialRecord struct {
	Encrypted *bool           `json:"encrypted,omitempty"`
	Value     *string         `json:"value,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	// Present when a bare envelope object was stored.
	Ciphertext json.RawMessage `json:"ciphertext,omitempty"`
}

// MarshalJSON writes {"encrypted":false,"value":...} or {"encrypted":true,"data":{envelope}}.
func (c StoredCredential) MarshalJSON() ([]byte, error) {
	if c.kind == KindEncrypted {
		if c.envelope == nil {
			return nil, fmt.Errorf("%w: encrypted credential without envelope", ErrMalformedEnvelope)
		}
		return json.Marshal(struct {
			Encrypted bool      `json:"encrypted"`
			Data      *Envelope `json:"data"`
		}{true, c.envelope})
	}
	return json.Marshal(struct {
		Encrypted bool   `json:"encrypted"`
		Value     string `json:"value"`
	}{false, c.plaintext})
}

// UnmarshalJSON accepts a bare string, a plaintext record, an encrypted record, or a bare
// envelope object. The variant is resolved here and nowhere else.
func (c *StoredCredential) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		*c = Plaintext(s)
		return nil
	}

	var rec credentialRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	switch {
	case rec.Encrypted != nil && !*rec.Encrypted:
		if rec.Value == nil {
			return fmt.Errorf("%w: plaintext record without value", ErrMalformedEnvelope)
		}
		*c = Plaintext(*rec.Value)
	case rec.Encrypted != nil && *rec.Encrypted:
		if len(rec.Data) == 0 {
			return fmt.Errorf("%w: encrypted record without data", ErrMalformedEnvelope)
		}
		env, err := ParseEnvelope(rec.Data)
		if err != nil {
			return err
		}
		*c = StoredCredential{kind: KindEncrypted, envelope: env}
	case len(rec.Ciphertext) > 0:
		env, err := ParseEnvelope(data)
		if err != nil {
			return err
		}
		*c = StoredCredential{kind: KindEncrypted, envelope: env}
	default:
		return fmt.Errorf("%w: unrecognized credential shape", ErrMalformedEnvelope)
	}
	return nil
}
