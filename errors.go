package secrets

import "errors"

var (
	// ErrMalformedEnvelope is returned when an envelope fails structural validation
	// before any cryptographic work is attempted.
	ErrMalformedEnvelope = errors.New("secrets: malformed envelope")

	// ErrUnsupportedVersion is returned when an envelope was written by a newer format.
	ErrUnsupportedVersion = errors.New("secrets: unsupported envelope version")

	// ErrAuthenticationFailed is returned when decryption fails (wrong key, tampered data).
	// It intentionally does not say which of the two happened.
	ErrAuthenticationFailed = errors.New("secrets: authentication failed")

	// ErrEmptyPlaintext is returned when asked to encrypt an empty value.
	ErrEmptyPlaintext = errors.New("secrets: refusing to encrypt empty plaintext")

	// ErrInvalidIterations is returned when a PBKDF2 iteration count is out of range.
	ErrInvalidIterations = errors.New("secrets: invalid PBKDF2 iteration count")

	// ErrInvalidMasterKey is returned when a master key is not 64 hex characters.
	ErrInvalidMasterKey = errors.New("secrets: invalid master key")

	// ErrNoKeys is returned when a KeyProvider has no keys to offer.
	ErrNoKeys = errors.New("secrets: no keys available")
)

// IsMalformedEnvelope returns true if the error is or wraps ErrMalformedEnvelope.
func IsMalformedEnvelope(err error) bool {
	return errors.Is(err, ErrMalformedEnvelope)
}

// IsUnsupportedVersion returns true if the error is or wraps ErrUnsupportedVersion.
func IsUnsupportedVersion(err error) bool {
	return errors.Is(err, ErrUnsupportedVersion)
}

// IsAuthenticationFailed returns true if the error is or wraps ErrAuthenticationFailed.
func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsEmptyPlaintext returns true if the error is or wraps ErrEmptyPlaintext.
func IsEmptyPlaintext(err error) bool {
	return errors.Is(err, ErrEmptyPlaintext)
}

// IsInvalidIterations returns true if the error is or wraps ErrInvalidIterations.
func IsInvalidIterations(err error) bool {
	return errors.Is(err, ErrInvalidIterations)
}

// IsInvalidMasterKey returns true if the error is or wraps ErrInvalidMasterKey.
func IsInvalidMasterKey(err error) bool {
	return errors.Is(err, ErrInvalidMasterKey)
}

// IsNoKeys returns true if the error is or wraps ErrNoKeys.
func IsNoKeys(err error) bool {
	return errors.Is(err, ErrNoKeys)
}
