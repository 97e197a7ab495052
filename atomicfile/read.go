package atomicfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// decodeFile reads path and decodes it into a fresh T.
func decodeFile[T any](s *Store, path string) (T, []byte, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, nil, err
	}
	if err := s.codec.Decode(data, &v); err != nil {
		var zero T
		return zero, nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return v, data, nil
}

// ReadWithDefault returns the document at path, or def when the file is absent or
// cannot be parsed. Parse and I/O failures are logged, never returned.
//
// def is returned as-is, so a mutable default (map, slice, pointer) is shared with the caller.
func ReadWithDefault[T any](ctx context.Context, s *Store, path string, def T) T {
	v, _, err := decodeFile[T](s, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "failed to read document, using default",
				slog.String("path", path), slog.Any("error", err))
		}
		return def
	}
	return v
}

// Update reads the document at path (or def), applies fn and writes the result.
// It returns the written document. If fn or the write fails, the current document is
// returned with the error and nothing is written.
//
// Update does not lock: concurrent updaters of one path must be serialized by the caller.
func Update[T any](ctx context.Context, s *Store, path string, def T, fn func(T) (T, error)) (T, error) {
	cur := ReadWithDefault(ctx, s, path, def)
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := s.Write(ctx, path, next); err != nil {
		return cur, err
	}
	return next, nil
}
