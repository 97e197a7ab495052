// Package commands contains CLI command implementations for config-secrets.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/fatih/color"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config-secrets/atomicfile"
	"github.com/rbaliyan/config-secrets/internal/config"
)

// Document is the on-disk credentials document: credential name to stored credential.
type Document map[string]secrets.StoredCredential

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// NewKeyProvider builds a key provider from the configured master key and old keys.
// A non-empty current overrides the configured master key, which then becomes the
// newest old key.
func NewKeyProvider(cfg *config.Config, current string) (*secrets.StaticKeyProvider, error) {
	var opts []secrets.StaticOption
	if current != "" && current != cfg.MasterKey && cfg.MasterKey != "" {
		opts = append(opts, secrets.WithOldKey(cfg.MasterKey))
	}
	if current == "" {
		current = cfg.MasterKey
	}
	if current == "" {
		return nil, errors.New("master key is required (set CONFIG_SECRETS_MASTER_KEY)")
	}
	for _, old := range cfg.OldMasterKeys {
		opts = append(opts, secrets.WithOldKey(old))
	}
	return secrets.NewStaticKeyProvider(current, opts...)
}

// NewTokenStore builds a token store over provider using the configured iteration count.
func NewTokenStore(cfg *config.Config, provider secrets.KeyProvider, logger *slog.Logger) (*secrets.TokenStore, error) {
	return secrets.NewTokenStore(provider,
		secrets.WithIterations(cfg.Iterations),
		secrets.WithLogger(logger),
	)
}

// NewFileStore builds an atomic file store from the configured backup and directory settings.
func NewFileStore(cfg *config.Config, logger *slog.Logger) (*atomicfile.Store, error) {
	return atomicfile.New(
		atomicfile.WithBackupCount(cfg.BackupCount),
		atomicfile.WithCreateDirs(cfg.CreateDirs),
		atomicfile.WithAutoRestore(cfg.AutoRestore),
		atomicfile.WithLogger(logger),
	)
}

// loadDocument reads the credentials document at path through the recovery cascade.
// A missing document is empty; a document that exists but cannot be recovered is an error.
func loadDocument(ctx context.Context, files *atomicfile.Store, logger *slog.Logger, path string) (Document, error) {
	res := atomicfile.ReadWithRecovery(ctx, files, path, Document{})
	switch res.Source {
	case atomicfile.SourceMain:
	case atomicfile.SourceDefault:
		if res.Err != nil && !errors.Is(res.Err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no readable credentials document at %s: %w", path, res.Err)
		}
	default:
		logger.Warn("credentials document recovered",
			slog.String("path", path),
			slog.String("source", res.Source.String()),
			slog.String("from", res.Path),
		)
	}
	if res.Data == nil {
		return Document{}, nil
	}
	return res.Data, nil
}

// sortedNames returns the keys of m in lexical order.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

func warning(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}
