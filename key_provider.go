package secrets

// Key is a master key together with its display identifier.
type Key struct {
	// ID is HashMasterKey of the key. Only for logs and display.
	ID string

	// Bytes is the master key text as bytes. Callers should wipe it after use.
	Bytes []byte
}

// wipe zeroes the key material.
func (k Key) wipe() {
	clear(k.Bytes)
}

// KeyProvider abstracts master key retrieval for encryption and decryption.
// Implementations must be safe for concurrent use.
type KeyProvider interface {
	// CurrentKey returns the key to use for new encryptions.
	CurrentKey() (Key, error)

	// Keys returns every key usable for decryption, current key first.
	Keys() ([]Key, error)
}
