package atomicfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tempMarker separates a primary path from the unique suffix of its temp files.
const tempMarker = ".tmp."

// lastSuffix is the most recently issued temp suffix in this process.
var lastSuffix atomic.Int64

// nextSuffix returns a nanosecond timestamp that is strictly greater than every suffix
// issued before it, zero-padded so lexicographic order matches issue order.
func nextSuffix() string {
	for {
		last := lastSuffix.Load()
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if lastSuffix.CompareAndSwap(last, now) {
			return fmt.Sprintf("%020d", now)
		}
	}
}

// TempPath returns a fresh temp file path for path.
func TempPath(path string) string {
	return path + tempMarker + nextSuffix()
}

// Write serializes v and atomically replaces path with it. Backups are rotated first
// when the Store keeps any. If anything fails before the rename completes the temp file
// is removed and path keeps its previous content.
func (s *Store) Write(ctx context.Context, path string, v any) (err error) {
	ctx, span := s.tel.tracer.Start(ctx, "atomicfile.Write",
		trace.WithAttributes(attribute.String("path", path)))
	start := time.Now()
	defer func() {
		s.tel.recordWrite(ctx, time.Since(start), err)
		endSpan(span, err)
	}()

	if path == "" {
		return ErrInvalidPath
	}

	data, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return s.writeBytes(ctx, path, data, true)
}

// writeBytes puts data at path through a temp file and rename.
func (s *Store) writeBytes(ctx context.Context, path string, data []byte, rotate bool) error {
	dir := filepath.Dir(path)
	if s.createDirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("atomicfile: failed to create directory %s: %w", dir, err)
		}
	}

	if rotate && s.backupCount > 0 {
		if err := RotateBackups(path, s.backupCount); err != nil {
			return err
		}
	}

	tmp := TempPath(path)
	if err := writeFileSync(tmp, data, s.perm); err != nil {
		s.removeTemp(ctx, tmp)
		return fmt.Errorf("atomicfile: failed to write temp file: %w", err)
	}

	if err := s.rename(tmp, path); err != nil {
		s.removeTemp(ctx, tmp)
		return fmt.Errorf("atomicfile: failed to rename %s: %w", tmp, err)
	}

	syncDir(dir)
	return nil
}

// removeTemp deletes a temp file, swallowing failures.
func (s *Store) removeTemp(ctx context.Context, tmp string) {
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.DebugContext(ctx, "failed to remove temp file",
			slog.String("path", tmp), slog.Any("error", err))
	}
}

// writeFileSync creates path exclusively, writes data and fsyncs it.
func writeFileSync(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// syncDir flushes the directory entry after a rename. Best-effort: some platforms
// cannot fsync directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
