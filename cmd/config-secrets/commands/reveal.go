package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config-secrets/atomicfile"
)

// RunReveal prints name=value for every credential in the document that decrypts with
// the configured keys. Entries that do not decrypt are reported as skipped.
func RunReveal(
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

	values := tokens.BatchDecrypt(doc)
	for _, name := range sortedNames(values) {
		_, _ = fmt.Fprintf(w, "%s=%s\n", name, values[name])
	}
	if skipped := len(doc) - len(values); skipped > 0 {
		warning(w, "%d credential(s) could not be decrypted", skipped)
	}
	return nil
}
