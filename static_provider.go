package secrets

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// sealedKey is a master key held in an encrypted memguard enclave.
type sealedKey struct {
	id      string
	enclave *memguard.Enclave
}

func (k sealedKey) open() (Key, error) {
	buf, err := k.enclave.Open()
	if err != nil {
		return Key{}, fmt.Errorf("secrets: failed to open key %s: %w", k.id, err)
	}
	defer buf.Destroy()
	b := make([]byte, buf.Size())
	copy(b, buf.Bytes())
	return Key{ID: k.id, Bytes: b}, nil
}

// StaticKeyProvider is a KeyProvider backed by in-memory master keys sealed with memguard.
// It is safe for concurrent use.
type StaticKeyProvider struct {
	mu      sync.RWMutex
	current sealedKey
	old     []sealedKey
	err     error // deferred validation error from options
}

// StaticOption configures a StaticKeyProvider.
type StaticOption func(*StaticKeyProvider)

// WithOldKey adds a previous master key accepted for decryption during key rotation.
// Old keys are tried in the order they were added.
func WithOldKey(masterKey string) StaticOption {
	return func(p *StaticKeyProvider) {
		if p.err != nil {
			return
		}
		k, err := seal(masterKey)
		if err != nil {
			p.err = fmt.Errorf("old key: %w", err)
			return
		}
		p.old = append(p.old, k)
	}
}

// NewStaticKeyProvider creates a KeyProvider with the given current master key.
// Keys must pass IsValidMasterKey. Key material is copied into enclaves; strings cannot
// be wiped, so callers holding the key in a []byte may wipe their own copy afterwards.
func NewStaticKeyProvider(masterKey string, opts ...StaticOption) (*StaticKeyProvider, error) {
	current, err := seal(masterKey)
	if err != nil {
		return nil, err
	}
	p := &StaticKeyProvider{current: current}

	for _, opt := range opts {
		opt(p)
	}

	if p.err != nil {
		return nil, p.err
	}

	return p, nil
}

func seal(masterKey string) (sealedKey, error) {
	if !IsValidMasterKey(masterKey) {
		return sealedKey{}, ErrInvalidMasterKey
	}
	// NewEnclave wipes the buffer it is given.
	return sealedKey{
		id:      HashMasterKey(masterKey),
		enclave: memguard.NewEnclave([]byte(masterKey)),
	}, nil
}

// CurrentKey returns the current key for new encryptions.
func (p *StaticKeyProvider) CurrentKey() (Key, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.open()
}

// Keys returns the current key followed by old keys.
func (p *StaticKeyProvider) Keys() ([]Key, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]Key, 0, 1+len(p.old))
	for _, sk := range append([]sealedKey{p.current}, p.old...) {
		k, err := sk.open()
		if err != nil {
			for _, opened := range keys {
				opened.wipe()
			}
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Rotate makes masterKey the current key. The previous current key becomes the first
// old key so values sealed under it stay readable.
func (p *StaticKeyProvider) Rotate(masterKey string) error {
	k, err := seal(masterKey)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.old = append([]sealedKey{p.current}, p.old...)
	p.current = k
	return nil
}

// CurrentKeyID returns the display identifier of the current key.
func (p *StaticKeyProvider) CurrentKeyID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.id
}

// Compile-time interface check.
var _ KeyProvider = (*StaticKeyProvider)(nil)
