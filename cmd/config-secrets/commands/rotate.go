package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config-secrets/atomicfile"
)

// RunRotate re-encrypts every credential in the document at path under the current key
// of tokens. Credentials that no configured key opens are kept as they are and reported.
// The document is only written when something changed.
func RunRotate(
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

	var rotated, failed int
	for _, name := range sortedNames(doc) {
		cred, changed, err := tokens.Reencrypt(doc[name])
		if err != nil {
			failed++
			logger.WarnContext(ctx, "credential not rotated",
				slog.String("name", name), slog.Any("error", err))
			continue
		}
		if changed {
			doc[name] = cred
			rotated++
		}
	}

	if rotated > 0 {
		if err := files.Write(ctx, path, doc); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	success(w, "Rotated %d of %d credentials in %s", rotated, len(doc), path)
	if failed > 0 {
		warning(w, "%d credential(s) could not be opened with the configured keys", failed)
	}
	return nil
}
