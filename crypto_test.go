package secrets

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rbaliyan/config/codec"
)

func testProvider(t *testing.T) *StaticKeyProvider {
	t.Helper()
	p, err := NewStaticKeyProvider(testMasterKey)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(codec.JSON(), testProvider(t), WithIterations(testIterations))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestCodecName(t *testing.T) {
	c := testCodec(t)
	if c.Name() != "encrypted:json" {
		t.Errorf("Name(): got %q, want %q", c.Name(), "encrypted:json")
	}
}

func TestCodecRoundTripString(t *testing.T) {
	c := testCodec(t)

	data, err := c.Encode("hello world")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Encrypted data should not contain plaintext
	if bytes.Contains(data, []byte("hello world")) {
		t.Error("encrypted data contains plaintext")
	}

	// Output is the persisted envelope form
	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.Version != CurrentVersion {
		t.Errorf("Version: got %d, want %d", env.Version, CurrentVersion)
	}

	var got string
	if err := c.Decode(data, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Decode: got %q, want %q", got, "hello world")
	}
}

func TestCodecRoundTripStruct(t *testing.T) {
	type Settings struct {
		Theme       string                      `json:"theme"`
		Credentials map[string]StoredCredential `json:"credentials"`
		MaxParallel int                         `json:"maxParallel"`
	}

	c := testCodec(t)

	original := Settings{
		Theme:       "dark",
		Credentials: map[string]StoredCredential{"github": Plaintext("ghp_x")},
		MaxParallel: 4,
	}
	data, err := c.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got Settings
	if err := c.Decode(data, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Theme != original.Theme || got.MaxParallel != original.MaxParallel {
		t.Errorf("Decode: got %+v, want %+v", got, original)
	}
	if v, ok := got.Credentials["github"].PlaintextValue(); !ok || v != "ghp_x" {
		t.Errorf("credential: got (%q, %v)", v, ok)
	}
}

func TestCodecKeyRotation(t *testing.T) {
	// Encrypt with old key
	oldProvider, err := NewStaticKeyProvider(oldMasterKey)
	if err != nil {
		t.Fatal(err)
	}
	oldCodec, err := NewCodec(codec.JSON(), oldProvider, WithIterations(testIterations))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	data, err := oldCodec.Encode("secret")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Decrypt with new provider that has both keys
	newProvider, err := NewStaticKeyProvider(testMasterKey, WithOldKey(oldMasterKey))
	if err != nil {
		t.Fatal(err)
	}
	newCodec, err := NewCodec(codec.JSON(), newProvider)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	var got string
	if err := newCodec.Decode(data, &got); err != nil {
		t.Fatalf("Decode with rotated key: %v", err)
	}
	if got != "secret" {
		t.Errorf("got %q, want %q", got, "secret")
	}
}

func TestCodecWrongKey(t *testing.T) {
	c := testCodec(t)

	data, err := c.Encode("secret")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wrongProvider, err := NewStaticKeyProvider(strings.Repeat("f", 64))
	if err != nil {
		t.Fatal(err)
	}
	wrongCodec, err := NewCodec(codec.JSON(), wrongProvider)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	var got string
	err = wrongCodec.Decode(data, &got)
	if !IsAuthenticationFailed(err) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestCodecTamperedData(t *testing.T) {
	c := testCodec(t)

	data, err := c.Encode("secret")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	env.AuthTag[len(env.AuthTag)-1] ^= 0xFF
	tampered, err := env.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var got string
	err = c.Decode(tampered, &got)
	if !IsAuthenticationFailed(err) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestCodecInvalidFormat(t *testing.T) {
	c := testCodec(t)

	var got string
	err := c.Decode([]byte("not encrypted"), &got)
	if !IsMalformedEnvelope(err) {
		t.Errorf("expected ErrMalformedEnvelope, got %v", err)
	}
}

func TestCodecConcurrent(t *testing.T) {
	c := testCodec(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			data, err := c.Encode(n)
			if err != nil {
				t.Errorf("Encode(%d): %v", n, err)
				return
			}

			var got int
			if err := c.Decode(data, &got); err != nil {
				t.Errorf("Decode(%d): %v", n, err)
				return
			}
			if got != n {
				t.Errorf("got %d, want %d", got, n)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewCodecReturnsErrorOnNilInner(t *testing.T) {
	_, err := NewCodec(nil, testProvider(t))
	if err == nil {
		t.Error("expected error for nil inner codec")
	}
}

func TestNewCodecReturnsErrorOnNilProvider(t *testing.T) {
	_, err := NewCodec(codec.JSON(), nil)
	if err == nil {
		t.Error("expected error for nil provider")
	}
}

// failingProvider is a KeyProvider that always returns errors.
type failingProvider struct{}

func (p *failingProvider) CurrentKey() (Key, error) {
	return Key{}, errors.New("key unavailable")
}

func (p *failingProvider) Keys() ([]Key, error) {
	return nil, errors.New("key unavailable")
}

func TestCodecEncodeCurrentKeyFailure(t *testing.T) {
	c, err := NewCodec(codec.JSON(), &failingProvider{})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	_, err = c.Encode("test")
	if err == nil {
		t.Error("expected error when CurrentKey fails")
	}
	if !strings.Contains(err.Error(), "failed to get current key") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestCodecDecodeInnerCodecFailure(t *testing.T) {
	c := testCodec(t)

	data, err := c.Encode("hello")
	if err != nil {
		t.Fatal(err)
	}

	var got struct{ X chan int } // channels can't be unmarshalled
	err = c.Decode(data, &got)
	if err == nil {
		t.Error("expected error for inner decode failure")
	}
	if !strings.Contains(err.Error(), "inner decode failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestCodecEncodeInnerCodecFailure(t *testing.T) {
	c := testCodec(t)

	// channels can't be JSON-encoded
	_, err := c.Encode(make(chan int))
	if err == nil {
		t.Error("expected error for inner encode failure")
	}
	if !strings.Contains(err.Error(), "inner encode failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}
