package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// masterKeySize is the master key entropy in bytes; encoded as 64 hex characters.
const masterKeySize = 32

// constantTimeCompare is swapped in tests to observe comparison sizes.
var constantTimeCompare = subtle.ConstantTimeCompare

// GenerateMasterKey returns 256 bits of cryptographically secure randomness, hex encoded.
func GenerateMasterKey() (string, error) {
	b := make([]byte, masterKeySize)
	defer memguard.WipeBytes(b)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("secrets: failed to generate master key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IsValidMasterKey reports whether s is exactly 64 hex characters.
// It does not check that the key decrypts anything.
func IsValidMasterKey(s string) bool {
	if len(s) != masterKeySize*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// HashMasterKey returns an 8-character identifier for display and logging.
// It is a truncated SHA-256, not a MAC, and must not gate any security decision.
func HashMasterKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}

// SecureCompare reports whether a and b are equal in constant time.
// On a length mismatch it still performs a comparison of len(a) bytes before returning false.
func SecureCompare(a, b string) bool {
	x, y := []byte(a), []byte(b)
	if len(x) != len(y) {
		constantTimeCompare(x, x)
		return false
	}
	return constantTimeCompare(x, y) == 1
}
