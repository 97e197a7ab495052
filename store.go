package secrets

import (
	"errors"
	"fmt"
	"log/slog"
)

// TokenStore encrypts and decrypts credentials with keys from a KeyProvider.
// Decryption tries the current key first, then older keys, which lets a store
// keep reading values written before a key rotation.
//
// TokenStore is safe for concurrent use if its KeyProvider is.
type TokenStore struct {
	provider   KeyProvider
	iterations int
	logger     *slog.Logger
}

// Option configures a TokenStore.
type Option func(*TokenStore)

// WithIterations sets the PBKDF2 iteration count for new envelopes.
// Existing envelopes always decrypt with their own stored count.
func WithIterations(n int) Option {
	return func(s *TokenStore) {
		s.iterations = n
	}
}

// WithLogger sets the logger used for decryption diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *TokenStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewTokenStore creates a TokenStore. Returns an error if provider is nil or the
// iteration count is out of range.
func NewTokenStore(provider KeyProvider, opts ...Option) (*TokenStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("secrets: NewTokenStore provider is nil")
	}
	s := &TokenStore{
		provider:   provider,
		iterations: DefaultIterations,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.iterations <= 0 || s.iterations > MaxIterations {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, s.iterations)
	}
	return s, nil
}

// Encrypt seals plaintext under the current key.
func (s *TokenStore) Encrypt(plaintext string) (StoredCredential, error) {
	key, err := s.provider.CurrentKey()
	if err != nil {
		return StoredCredential{}, fmt.Errorf("secrets: failed to get current key: %w", err)
	}
	defer key.wipe()
	return sealToken(plaintext, key.Bytes, s.iterations)
}

// Decrypt returns the plaintext of cred, or ("", false) if no key opens it.
func (s *TokenStore) Decrypt(cred StoredCredential) (string, bool) {
	plaintext, _, err := s.open(cred)
	if err != nil {
		s.logger.Debug("token decryption failed", slog.Any("error", err))
		return "", false
	}
	return plaintext, true
}

// open returns the plaintext and the index of the key that opened it.
func (s *TokenStore) open(cred StoredCredential) (string, int, error) {
	if !cred.IsEncrypted() {
		return cred.plaintext, 0, nil
	}
	keys, err := s.provider.Keys()
	if err != nil {
		return "", -1, fmt.Errorf("secrets: failed to get keys: %w", err)
	}
	defer func() {
		for _, k := range keys {
			k.wipe()
		}
	}()
	if len(keys) == 0 {
		return "", -1, ErrNoKeys
	}

	var lastErr error
	for i, k := range keys {
		plaintext, err := openToken(cred, k.Bytes)
		if err == nil {
			return plaintext, i, nil
		}
		// Structural and version errors will not change with a different key.
		if !errors.Is(err, ErrAuthenticationFailed) {
			return "", -1, err
		}
		s.logger.Debug("key did not open credential", slog.String("key_id", k.ID))
		lastErr = err
	}
	return "", -1, lastErr
}

// Migrate encrypts a legacy plaintext value. Empty values return ErrEmptyPlaintext.
func (s *TokenStore) Migrate(plaintext string) (StoredCredential, error) {
	return s.Encrypt(plaintext)
}

// BatchMigrate encrypts every non-empty value under the current key, skipping empty ones.
func (s *TokenStore) BatchMigrate(values map[string]string) (map[string]StoredCredential, error) {
	key, err := s.provider.CurrentKey()
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to get current key: %w", err)
	}
	defer key.wipe()
	return batchSeal(values, key.Bytes, s.iterations)
}

// BatchDecrypt decrypts every credential it can and skips the rest.
func (s *TokenStore) BatchDecrypt(creds map[string]StoredCredential) map[string]string {
	out := make(map[string]string, len(creds))
	for name, cred := range creds {
		plaintext, ok := s.Decrypt(cred)
		if !ok {
			s.logger.Warn("skipping credential that failed to decrypt", slog.String("name", name))
			continue
		}
		out[name] = plaintext
	}
	return out
}

// Reencrypt returns cred sealed under the current key. Plaintext credentials and
// credentials opened by an old key are re-sealed and changed is true; credentials
// already readable with the current key are returned unchanged. Empty plaintext
// credentials are returned unchanged.
func (s *TokenStore) Reencrypt(cred StoredCredential) (StoredCredential, bool, error) {
	plaintext, idx, err := s.open(cred)
	if err != nil {
		return cred, false, err
	}
	if cred.IsEncrypted() && idx == 0 {
		return cred, false, nil
	}
	if plaintext == "" {
		return cred, false, nil
	}
	sealed, err := s.Encrypt(plaintext)
	if err != nil {
		return cred, false, err
	}
	return sealed, true, nil
}
