package secrets_test

import (
	"fmt"
	"strings"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config/codec"
)

func ExampleEncryptToken() {
	masterKey := strings.Repeat("0123456789abcdef", 4)

	cred, err := secrets.EncryptToken("sk-ant-xyz", masterKey)
	if err != nil {
		panic(err)
	}
	env, _ := cred.Envelope()
	fmt.Println("Envelope version:", env.Version)

	plaintext, ok := secrets.DecryptToken(cred, masterKey)
	fmt.Println("Decrypted:", plaintext, ok)

	_, ok = secrets.DecryptToken(cred, "wrong-key")
	fmt.Println("Wrong key:", ok)

	// Output:
	// Envelope version: 1
	// Decrypted: sk-ant-xyz true
	// Wrong key: false
}

func ExampleHashMasterKey() {
	fmt.Println(secrets.HashMasterKey(""))

	// Output:
	// e3b0c442
}

func ExampleNewCodec() {
	provider, err := secrets.NewStaticKeyProvider(strings.Repeat("a", 64))
	if err != nil {
		panic(err)
	}

	// Wrap the JSON codec with encryption
	encJSON, err := secrets.NewCodec(codec.JSON(), provider)
	if err != nil {
		panic(err)
	}
	fmt.Println("Codec name:", encJSON.Name())

	data, err := encJSON.Encode(map[string]string{"theme": "dark"})
	if err != nil {
		panic(err)
	}

	var result map[string]string
	if err := encJSON.Decode(data, &result); err != nil {
		panic(err)
	}
	fmt.Println("Decrypted:", result["theme"])

	// Output:
	// Codec name: encrypted:json
	// Decrypted: dark
}

func ExampleNewStaticKeyProvider_rotation() {
	oldKey := strings.Repeat("a", 64)
	newKey := strings.Repeat("b", 64)

	// Encrypt with original key
	oldProvider, err := secrets.NewStaticKeyProvider(oldKey)
	if err != nil {
		panic(err)
	}
	oldStore, err := secrets.NewTokenStore(oldProvider)
	if err != nil {
		panic(err)
	}
	cred, err := oldStore.Encrypt("secret-data")
	if err != nil {
		panic(err)
	}

	// Rotate: new key is current, old key available for decryption
	newProvider, err := secrets.NewStaticKeyProvider(newKey, secrets.WithOldKey(oldKey))
	if err != nil {
		panic(err)
	}
	newStore, err := secrets.NewTokenStore(newProvider)
	if err != nil {
		panic(err)
	}

	plaintext, ok := newStore.Decrypt(cred)
	fmt.Println("Decrypted with rotated provider:", plaintext, ok)

	// Re-seal under the new key
	cred, changed, err := newStore.Reencrypt(cred)
	if err != nil {
		panic(err)
	}
	fmt.Println("Re-encrypted:", changed)

	_, ok = secrets.DecryptToken(cred, newKey)
	fmt.Println("Readable with new key alone:", ok)

	// Output:
	// Decrypted with rotated provider: secret-data true
	// Re-encrypted: true
	// Readable with new key alone: true
}
