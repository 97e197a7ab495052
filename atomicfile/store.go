package atomicfile

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rbaliyan/config/codec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBackupCount is the number of backups kept when none is configured.
	DefaultBackupCount = 3

	// DefaultPerm is the mode of files created by a Store.
	DefaultPerm os.FileMode = 0o600

	dirPerm os.FileMode = 0o700
)

// Store writes and reads documents at file paths. A Store holds no per-path state,
// so one Store can serve many paths. It is safe for concurrent use, subject to the
// single-writer-per-path rule described in the package documentation.
type Store struct {
	codec       codec.Codec
	logger      *slog.Logger
	backupCount int
	createDirs  bool
	autoRestore bool
	perm        os.FileMode

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	tel            *telemetry

	// rename is os.Rename; tests replace it to simulate a crash before the swap.
	rename func(oldpath, newpath string) error
}

// Option configures a Store.
type Option func(*Store)

// WithBackupCount sets how many prior versions are kept. Zero disables backups.
func WithBackupCount(n int) Option {
	return func(s *Store) {
		s.backupCount = n
	}
}

// WithCreateDirs creates missing parent directories on write.
func WithCreateDirs(create bool) Option {
	return func(s *Store) {
		s.createDirs = create
	}
}

// WithAutoRestore controls whether a recovered temp or backup file is copied back
// onto the primary path. Enabled by default.
func WithAutoRestore(restore bool) Option {
	return func(s *Store) {
		s.autoRestore = restore
	}
}

// WithPerm sets the mode of newly written files.
func WithPerm(perm os.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// WithCodec sets the document codec. Defaults to the JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger for recovery and cleanup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Store) {
		if mp != nil {
			s.meterProvider = mp
		}
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracerProvider = tp
		}
	}
}

// New creates a Store with DefaultBackupCount backups, auto-restore enabled,
// DefaultPerm files and the JSON codec.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		codec:          codec.JSON(),
		logger:         slog.Default(),
		backupCount:    DefaultBackupCount,
		autoRestore:    true,
		perm:           DefaultPerm,
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
		rename:         os.Rename,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.backupCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBackupCount, s.backupCount)
	}

	tel, err := newTelemetry(s.meterProvider, s.tracerProvider)
	if err != nil {
		return nil, err
	}
	s.tel = tel
	return s, nil
}

// BackupCount returns the number of backups this Store keeps and probes.
func (s *Store) BackupCount() int {
	return s.backupCount
}
