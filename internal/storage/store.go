package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Load and save outcomes reported to an Observer.
const (
	OutcomeOK      = "ok"
	OutcomeMissing = "missing"
	OutcomeCorrupt = "corrupt"
	OutcomeError   = "error"
)

// Observer receives load and save outcomes, typically for metrics.
type Observer interface {
	StoreLoaded(kind, outcome string)
	StoreSaved(kind, outcome string)
}

// Store loads and saves one value of type T at a fixed path.
type Store[T any] struct {
	path       string
	codec      Codec
	kind       string
	strict     bool
	compress   bool
	newDefault func() T
	logger     *zap.Logger
	observer   Observer
}

// Options configures a Store. The zero value is a lenient, uncompressed
// store whose codec follows the file extension.
type Options struct {
	// Codec overrides the codec chosen from the file extension.
	Codec Codec
	// Strict makes Load and Save return errors instead of only logging them.
	Strict bool
	// Compress enables zstd compression of the payload.
	Compress bool
	// Kind overrides the kind tag checked on load. It defaults to the Go
	// type name of T.
	Kind     string
	Logger   *zap.Logger
	Observer Observer
}

// New creates a store for path. newDefault constructs the value returned
// whenever nothing valid is stored; nil means the zero value of T.
func New[T any](path string, newDefault func() T, opts Options) *Store[T] {
	var zero T
	s := &Store[T]{
		path:       path,
		codec:      opts.Codec,
		kind:       opts.Kind,
		strict:     opts.Strict,
		compress:   opts.Compress,
		newDefault: newDefault,
		logger:     opts.Logger,
		observer:   opts.Observer,
	}
	if s.codec == nil {
		s.codec = CodecForPath(path)
	}
	if s.kind == "" {
		s.kind = fmt.Sprintf("%T", zero)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("path", path), zap.String("kind", s.kind))
	return s
}

// Path returns the backing file path.
func (s *Store[T]) Path() string { return s.path }

// Strict reports whether errors are returned to callers.
func (s *Store[T]) Strict() bool { return s.strict }

// Default returns a freshly constructed default value.
func (s *Store[T]) Default() T {
	if s.newDefault != nil {
		return s.newDefault()
	}
	var zero T
	return zero
}

// Load reads the stored value. Any failure yields a fresh default value; the
// error is returned only in strict mode.
func (s *Store[T]) Load() (T, error) {
	v, err := s.read()
	switch {
	case err == nil:
		s.observeLoad(OutcomeOK)
		return v, nil
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("No stored value, using defaults")
		s.observeLoad(OutcomeMissing)
		return s.Default(), nil
	default:
		s.logger.Warn("Failed to load stored value, using defaults", zap.Error(err))
		s.observeLoad(OutcomeCorrupt)
		if s.strict {
			return s.Default(), fmt.Errorf("load %s: %w", s.path, err)
		}
		return s.Default(), nil
	}
}

// Save replaces the stored value with v. The error is returned only in
// strict mode; callers must not assume the write succeeded otherwise.
func (s *Store[T]) Save(v T) error {
	if err := s.write(v); err != nil {
		s.logger.Error("Failed to save value", zap.Error(err))
		s.observeSave(OutcomeError)
		if s.strict {
			return fmt.Errorf("save %s: %w", s.path, err)
		}
		return nil
	}
	s.logger.Debug("Saved value")
	s.observeSave(OutcomeOK)
	return nil
}

func (s *Store[T]) read() (T, error) {
	var v T

	data, err := os.ReadFile(s.path)
	if err != nil {
		return v, err
	}

	env, err := decodeEnvelope(data)
	if err != nil {
		return v, err
	}
	if env.kind != s.kind {
		return v, fmt.Errorf("%w: stored %q, want %q", ErrKindMismatch, env.kind, s.kind)
	}

	codec, err := CodecByID(env.codec)
	if err != nil {
		return v, err
	}

	payload := env.payload
	if env.compressed() {
		if payload, err = decompress(payload); err != nil {
			return v, fmt.Errorf("decompress: %w", err)
		}
	}

	if isEmptyPayload(payload) {
		return v, ErrEmptyPayload
	}
	if err := codec.Unmarshal(payload, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s payload: %w", codec.Name(), err)
	}
	return v, nil
}

// isEmptyPayload reports payloads that every codec decodes to nothing:
// blank documents and null literals.
func isEmptyPayload(payload []byte) bool {
	p := bytes.TrimSpace(payload)
	return len(p) == 0 || bytes.EqualFold(p, []byte("null")) || bytes.Equal(p, []byte("~"))
}

func (s *Store[T]) write(v T) error {
	payload, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", s.codec.Name(), err)
	}

	env := envelope{
		version: FormatVersion,
		codec:   s.codec.ID(),
		kind:    s.kind,
		payload: payload,
	}
	if s.compress {
		if env.payload, err = compress(payload); err != nil {
			return fmt.Errorf("compress: %w", err)
		}
		env.flags |= flagZstd
	}

	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

func (s *Store[T]) observeLoad(outcome string) {
	if s.observer != nil {
		s.observer.StoreLoaded(s.kind, outcome)
	}
}

func (s *Store[T]) observeSave(outcome string) {
	if s.observer != nil {
		s.observer.StoreSaved(s.kind, outcome)
	}
}
