package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secrets "github.com/rbaliyan/config-secrets"
)

// RunGenerateKey prints a freshly generated master key and its identifier in .env form.
func RunGenerateKey(ctx context.Context, logger *slog.Logger, w io.Writer) error {
	key, err := secrets.GenerateMasterKey()
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	id := secrets.HashMasterKey(key)

	_, _ = fmt.Fprintln(w, "# Master key configuration")
	_, _ = fmt.Fprintln(w, "# Copy this to your .env file or secrets manager; it cannot be recovered if lost")
	_, _ = fmt.Fprintf(w, "# Key ID: %s\n", id)
	_, _ = fmt.Fprintf(w, "CONFIG_SECRETS_MASTER_KEY=\"%s\"\n", key)

	logger.InfoContext(ctx, "master key generated", slog.String("key_id", id))
	return nil
}

// RunKeyID prints the identifier of a master key without revealing the key.
func RunKeyID(ctx context.Context, logger *slog.Logger, w io.Writer, key string) error {
	if !secrets.IsValidMasterKey(key) {
		return secrets.ErrInvalidMasterKey
	}
	_, _ = fmt.Fprintln(w, secrets.HashMasterKey(key))
	return nil
}
