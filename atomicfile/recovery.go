package atomicfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Source identifies which file satisfied a recovery read.
type Source int

const (
	// SourceMain is the primary file.
	SourceMain Source = iota
	// SourceTemp is a temp file left behind by an interrupted write.
	SourceTemp
	// SourceBackup is one of the numbered backups.
	SourceBackup
	// SourceDefault means no file could be parsed and the caller default was used.
	SourceDefault
)

// String returns the lower-case source name.
func (s Source) String() string {
	switch s {
	case SourceMain:
		return "main"
	case SourceTemp:
		return "temp"
	case SourceBackup:
		return "backup"
	case SourceDefault:
		return "default"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// RecoveryResult reports the outcome of ReadWithRecovery.
type RecoveryResult[T any] struct {
	// Data is the decoded document, or the caller default for SourceDefault.
	Data T
	// Recovered is false only when the primary file parsed on the first attempt.
	Recovered bool
	// Source is where Data came from.
	Source Source
	// Path is the file Data was read from. Empty for SourceDefault.
	Path string
	// Err is why the primary file could not be used. Nil for SourceMain.
	Err error
}

// ReadWithRecovery reads path, falling back to the newest parseable temp file, then
// backups from newest to oldest, then def. With auto-restore enabled a recovered temp
// or backup is put back on the primary path; a failed restore is logged and does not
// affect the result.
func ReadWithRecovery[T any](ctx context.Context, s *Store, path string, def T) (res RecoveryResult[T]) {
	ctx, span := s.tel.tracer.Start(ctx, "atomicfile.ReadWithRecovery",
		trace.WithAttributes(attribute.String("path", path)))
	defer func() {
		s.tel.recordRead(ctx, res.Source)
		span.SetAttributes(
			attribute.String("source", res.Source.String()),
			attribute.Bool("recovered", res.Recovered),
		)
		endSpan(span, nil)
	}()

	v, _, mainErr := decodeFile[T](s, path)
	if mainErr == nil {
		return RecoveryResult[T]{Data: v, Source: SourceMain, Path: path}
	}
	if !errors.Is(mainErr, fs.ErrNotExist) {
		s.logger.WarnContext(ctx, "primary document unreadable, attempting recovery",
			slog.String("path", path), slog.Any("error", mainErr))
	}

	for _, tmp := range tempCandidates(path) {
		v, _, err := decodeFile[T](s, tmp)
		if err != nil {
			s.logger.DebugContext(ctx, "temp file unreadable",
				slog.String("path", tmp), slog.Any("error", err))
			continue
		}
		s.logger.WarnContext(ctx, "recovered document from temp file",
			slog.String("path", path), slog.String("source", tmp))
		if s.autoRestore {
			s.restoreTemp(ctx, tmp, path)
		}
		return RecoveryResult[T]{Data: v, Recovered: true, Source: SourceTemp, Path: tmp, Err: mainErr}
	}

	for i := 1; i <= s.backupCount; i++ {
		bak := BackupPath(path, i)
		v, data, err := decodeFile[T](s, bak)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.DebugContext(ctx, "backup unreadable",
					slog.String("path", bak), slog.Any("error", err))
			}
			continue
		}
		s.logger.WarnContext(ctx, "recovered document from backup",
			slog.String("path", path), slog.String("source", bak))
		if s.autoRestore {
			s.restoreBackup(ctx, data, path)
		}
		return RecoveryResult[T]{Data: v, Recovered: true, Source: SourceBackup, Path: bak, Err: mainErr}
	}

	return RecoveryResult[T]{Data: def, Recovered: true, Source: SourceDefault, Err: mainErr}
}

// tempCandidates lists temp files of path, newest first. The listing is not cached.
func tempCandidates(path string) []string {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + tempMarker

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var suffixes []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		suffixes = append(suffixes, strings.TrimPrefix(name, prefix))
	}

	// Longer numeric suffixes are newer even when not zero-padded.
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] > suffixes[j]
	})

	paths := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		paths[i] = filepath.Join(dir, prefix+suffix)
	}
	return paths
}

// restoreTemp moves a recovered temp file onto the primary path.
func (s *Store) restoreTemp(ctx context.Context, tmp, path string) {
	if err := s.rename(tmp, path); err != nil {
		s.logger.WarnContext(ctx, "failed to restore primary from temp file",
			slog.String("path", path), slog.String("source", tmp), slog.Any("error", err))
		return
	}
	syncDir(filepath.Dir(path))
}

// restoreBackup rewrites the primary path with backup content without rotating
// the chain, so the good backups stay where they are.
func (s *Store) restoreBackup(ctx context.Context, data []byte, path string) {
	if err := s.writeBytes(ctx, path, data, false); err != nil {
		s.logger.WarnContext(ctx, "failed to restore primary from backup",
			slog.String("path", path), slog.Any("error", err))
	}
}
