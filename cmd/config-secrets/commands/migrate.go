package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config-secrets/atomicfile"
)

// RunMigrate encrypts every non-empty plaintext credential in the document at path and
// writes the document back atomically. Encrypted and empty entries are left alone.
func RunMigrate(
	ctx context.Context,
	tokens *secrets.TokenStore,
	files *atomicfile.Store,
	logger *slog.Logger,
	w io.Writer,
	path string,
) error {
	doc, err := loadDocument(ctx, files, logger, path)
	if err != nil {
		return err
	}

	plain := make(map[string]string)
	for name, cred := range doc {
		if v, ok := cred.PlaintextValue(); ok && v != "" {
			plain[name] = v
		}
	}
	if len(plain) == 0 {
		success(w, "No plaintext credentials to migrate in %s", path)
		return nil
	}

	sealed, err := tokens.BatchMigrate(plain)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	for name, cred := range sealed {
		doc[name] = cred
	}

	if err := files.Write(ctx, path, doc); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.InfoContext(ctx, "credentials migrated",
		slog.String("path", path),
		slog.Int("migrated", len(sealed)),
		slog.Int("total", len(doc)),
	)
	success(w, "Encrypted %d of %d credentials in %s", len(sealed), len(doc), path)
	return nil
}
