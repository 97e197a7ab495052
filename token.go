package secrets

import (
	"fmt"
	"log/slog"
)

// EncryptToken encrypts a credential for storage under masterKey using DefaultIterations.
// Empty plaintext returns ErrEmptyPlaintext.
func EncryptToken(plaintext, masterKey string) (StoredCredential, error) {
	return sealToken(plaintext, []byte(masterKey), DefaultIterations)
}

// DecryptToken returns the plaintext of a stored credential. Plaintext credentials are
// returned as-is. Any decryption failure returns ("", false) so callers can treat the
// credential as absent.
func DecryptToken(cred StoredCredential, masterKey string) (string, bool) {
	s, err := openToken(cred, []byte(masterKey))
	if err != nil {
		slog.Debug("secrets: token decryption failed", slog.Any("error", err))
		return "", false
	}
	return s, true
}

// MigrateToEncrypted encrypts a legacy plaintext value. Unlike the batch form, an empty
// value is an error.
func MigrateToEncrypted(plaintext, masterKey string) (StoredCredential, error) {
	return EncryptToken(plaintext, masterKey)
}

// BatchMigrateToEncrypted encrypts every non-empty value. Empty values are skipped and do
// not appear in the result.
func BatchMigrateToEncrypted(values map[string]string, masterKey string) (map[string]StoredCredential, error) {
	return batchSeal(values, []byte(masterKey), DefaultIterations)
}

// BatchDecrypt decrypts every credential it can. Entries that fail are left out of the
// result rather than aborting the batch.
func BatchDecrypt(creds map[string]StoredCredential, masterKey string) map[string]string {
	out := make(map[string]string, len(creds))
	for name, cred := range creds {
		if s, ok := DecryptToken(cred, masterKey); ok {
			out[name] = s
		}
	}
	return out
}

func sealToken(plaintext string, key []byte, iterations int) (StoredCredential, error) {
	env, err := Encrypt([]byte(plaintext), key, iterations)
	if err != nil {
		return StoredCredential{}, err
	}
	return StoredCredential{kind: KindEncrypted, envelope: env}, nil
}

func openToken(cred StoredCredential, key []byte) (string, error) {
	if cred.kind == KindPlaintext {
		return cred.plaintext, nil
	}
	plaintext, err := Decrypt(cred.envelope, key)
	if err != nil {
		return "", err
	}
	defer clear(plaintext)
	return string(plaintext), nil
}

func batchSeal(values map[string]string, key []byte, iterations int) (map[string]StoredCredential, error) {
	out := make(map[string]StoredCredential, len(values))
	for name, v := range values {
		if v == "" {
			continue
		}
		cred, err := sealToken(v, key, iterations)
		if err != nil {
			return nil, fmt.Errorf("secrets: failed to encrypt %q: %w", name, err)
		}
		out[name] = cred
	}
	return out, nil
}
