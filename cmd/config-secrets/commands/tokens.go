package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	secrets "github.com/rbaliyan/config-secrets"
)

// RunEncrypt encrypts value under the current key and prints the stored credential JSON.
func RunEncrypt(ctx context.Context, tokens *secrets.TokenStore, logger *slog.Logger, w io.Writer, value string) error {
	cred, err := tokens.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	_, _ = fmt.Fprintln(w, string(data))
	return nil
}

// RunDecrypt parses a stored credential in any accepted shape and prints its plaintext.
func RunDecrypt(ctx context.Context, tokens *secrets.TokenStore, logger *slog.Logger, w io.Writer, credential string) error {
	var cred secrets.StoredCredential
	if err := json.Unmarshal([]byte(credential), &cred); err != nil {
		return fmt.Errorf("invalid credential: %w", err)
	}
	plaintext, ok := tokens.Decrypt(cred)
	if !ok {
		logger.DebugContext(ctx, "credential did not decrypt with any configured key")
		return errors.New("unable to decrypt credential with the configured keys")
	}
	_, _ = fmt.Fprintln(w, plaintext)
	return nil
}
