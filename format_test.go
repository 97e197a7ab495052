package secrets

import (
	"bytes"
	"encoding/json"
	"testing"
)

func validEnvelope() *Envelope {
	return &Envelope{
		Version:    CurrentVersion,
		Ciphertext: []byte("ciphertext"),
		IV:         bytes.Repeat([]byte{0xAA}, gcmNonceSize),
		Salt:       bytes.Repeat([]byte{0xBB}, saltSize),
		AuthTag:    bytes.Repeat([]byte{0xCC}, gcmTagSize),
		Iterations: DefaultIterations,
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Envelope)
	}{
		{"zero version", func(e *Envelope) { e.Version = 0 }},
		{"missing ciphertext", func(e *Envelope) { e.Ciphertext = nil }},
		{"missing salt", func(e *Envelope) { e.Salt = nil }},
		{"missing iv", func(e *Envelope) { e.IV = nil }},
		{"short iv", func(e *Envelope) { e.IV = e.IV[:8] }},
		{"missing tag", func(e *Envelope) { e.AuthTag = nil }},
		{"short tag", func(e *Envelope) { e.AuthTag = e.AuthTag[:12] }},
		{"zero iterations", func(e *Envelope) { e.Iterations = 0 }},
		{"negative iterations", func(e *Envelope) { e.Iterations = -5 }},
		{"excessive iterations", func(e *Envelope) { e.Iterations = MaxIterations + 1 }},
	}

	if err := validEnvelope().Validate(); err != nil {
		t.Fatalf("valid envelope: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEnvelope()
			tt.mutate(e)
			if err := e.Validate(); !IsMalformedEnvelope(err) {
				t.Errorf("expected ErrMalformedEnvelope, got %v", err)
			}
			if _, err := Decrypt(e, []byte("password")); !IsMalformedEnvelope(err) {
				t.Errorf("Decrypt: expected ErrMalformedEnvelope, got %v", err)
			}
		})
	}
}

func TestEnvelopeValidateBeforeVersion(t *testing.T) {
	e := validEnvelope()
	e.Version = CurrentVersion + 1
	e.Salt = nil

	if _, err := Decrypt(e, []byte("password")); !IsMalformedEnvelope(err) {
		t.Errorf("expected ErrMalformedEnvelope before version check, got %v", err)
	}
}

func TestEnvelopeJSONFieldNames(t *testing.T) {
	data, err := validEnvelope().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"version", "ciphertext", "iv", "salt", "authTag", "iterations"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing field %q in %s", field, data)
		}
	}
	if len(raw) != 6 {
		t.Errorf("field count: got %d, want 6", len(raw))
	}
	if raw["iv"] != "qqqqqqqqqqqqqqqq" {
		t.Errorf("iv encoding: got %v, want base64 text", raw["iv"])
	}
}

func TestParseEnvelope(t *testing.T) {
	original := validEnvelope()
	data, err := original.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if parsed.Version != original.Version || parsed.Iterations != original.Iterations {
		t.Errorf("scalars: got %+v, want %+v", parsed, original)
	}
	if !bytes.Equal(parsed.IV, original.IV) || !bytes.Equal(parsed.Salt, original.Salt) ||
		!bytes.Equal(parsed.AuthTag, original.AuthTag) || !bytes.Equal(parsed.Ciphertext, original.Ciphertext) {
		t.Error("byte fields did not survive the round trip")
	}
}

func TestParseEnvelopeInvalid(t *testing.T) {
	for _, input := range []string{"", "not json", `{"iv": "***"}`, `[]`} {
		if _, err := ParseEnvelope([]byte(input)); !IsMalformedEnvelope(err) {
			t.Errorf("ParseEnvelope(%q): expected ErrMalformedEnvelope, got %v", input, err)
		}
	}
}

func TestEnvelopeCloneIsolated(t *testing.T) {
	original := validEnvelope()
	c := original.clone()
	c.IV[0] ^= 0xFF
	c.Ciphertext[0] ^= 0xFF

	if original.IV[0] != 0xAA || original.Ciphertext[0] != 'c' {
		t.Error("mutating the clone changed the original")
	}
}
