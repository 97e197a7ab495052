package secrets

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// Decrypt opens an envelope produced by Encrypt.
//
// The envelope is validated first (ErrMalformedEnvelope), then its version is checked
// (ErrUnsupportedVersion). The key is derived from the envelope's own salt and iteration
// count. A wrong password and tampered ciphertext, IV or tag all yield ErrAuthenticationFailed.
func Decrypt(env *Envelope, password []byte) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if env.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d (newest supported is %d)", ErrUnsupportedVersion, env.Version, CurrentVersion)
	}

	key := DeriveKey(password, env.Salt, env.Iterations)
	defer memguard.WipeBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.AuthTag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.AuthTag...)

	plaintext, err := gcm.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
