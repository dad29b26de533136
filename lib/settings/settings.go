// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings persists the small amount of state birch keeps
// between runs: the install UUID, the user-set identifier and custom
// properties, the server-pushed log level and flush period, and the
// opt-out flag.
//
// [FileStore] keeps the values in memory and rewrites a CBOR document
// atomically on every change. [MemoryStore] keeps them in memory only.
// Both are safe for concurrent use; concurrent writers are last write
// wins.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bureau-foundation/birch/lib/codec"
	"github.com/bureau-foundation/birch/lib/level"
)

// DefaultFlushPeriod is returned by FlushPeriod until a value is set.
const DefaultFlushPeriod = 30 * time.Minute

// Store is the settings contract the engine and source depend on.
type Store interface {
	UUID() string
	SetUUID(uuid string) error

	// Identifier returns "" when unset.
	Identifier() string
	SetIdentifier(identifier string) error

	// CustomProperties returns a copy; nil when unset.
	CustomProperties() map[string]string
	SetCustomProperties(properties map[string]string) error

	LogLevel() level.Level
	SetLogLevel(l level.Level) error

	FlushPeriod() time.Duration
	SetFlushPeriod(period time.Duration) error

	OptOut() bool
	SetOptOut(optOut bool) error
}

// document is the persisted form. Zero values mean unset.
type document struct {
	UUID               string            `cbor:"uuid,omitempty"`
	Identifier         string            `cbor:"identifier,omitempty"`
	CustomProperties   map[string]string `cbor:"custom_properties,omitempty"`
	LogLevel           *level.Level      `cbor:"log_level,omitempty"`
	FlushPeriodSeconds int64             `cbor:"flush_period,omitempty"`
	OptOut             bool              `cbor:"opt_out,omitempty"`
}

// values holds the shared in-memory implementation. persist, when set,
// is called with the candidate document before it replaces the current
// one; a persist error leaves the current document unchanged.
type values struct {
	mu           sync.RWMutex
	current      document
	defaultLevel level.Level
	persist      func(document) error
}

func (v *values) update(change func(*document)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	candidate := v.current
	candidate.CustomProperties = maps.Clone(v.current.CustomProperties)
	change(&candidate)

	if v.persist != nil {
		if err := v.persist(candidate); err != nil {
			return err
		}
	}
	v.current = candidate
	return nil
}

func (v *values) UUID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current.UUID
}

func (v *values) SetUUID(uuid string) error {
	return v.update(func(d *document) { d.UUID = uuid })
}

func (v *values) Identifier() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current.Identifier
}

func (v *values) SetIdentifier(identifier string) error {
	return v.update(func(d *document) { d.Identifier = identifier })
}

func (v *values) CustomProperties() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.current.CustomProperties)
}

func (v *values) SetCustomProperties(properties map[string]string) error {
	cloned := maps.Clone(properties)
	if len(cloned) == 0 {
		cloned = nil
	}
	return v.update(func(d *document) { d.CustomProperties = cloned })
}

func (v *values) LogLevel() level.Level {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.current.LogLevel == nil {
		return v.defaultLevel
	}
	return *v.current.LogLevel
}

func (v *values) SetLogLevel(l level.Level) error {
	if !l.Valid() {
		return fmt.Errorf("settings: invalid log level %d", int(l))
	}
	return v.update(func(d *document) { d.LogLevel = &l })
}

func (v *values) FlushPeriod() time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.current.FlushPeriodSeconds <= 0 {
		return DefaultFlushPeriod
	}
	return time.Duration(v.current.FlushPeriodSeconds) * time.Second
}

// SetFlushPeriod stores period rounded down to whole seconds.
func (v *values) SetFlushPeriod(period time.Duration) error {
	seconds := int64(period / time.Second)
	if seconds <= 0 {
		return fmt.Errorf("settings: flush period must be at least one second, got %v", period)
	}
	return v.update(func(d *document) { d.FlushPeriodSeconds = seconds })
}

func (v *values) OptOut() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current.OptOut
}

func (v *values) SetOptOut(optOut bool) error {
	return v.update(func(d *document) { d.OptOut = optOut })
}

// MemoryStore is a Store that does not persist.
type MemoryStore struct {
	values
}

// NewMemoryStore returns an empty MemoryStore. LogLevel returns
// defaultLevel until set.
func NewMemoryStore(defaultLevel level.Level) *MemoryStore {
	return &MemoryStore{values: values{defaultLevel: defaultLevel}}
}

// FileStore is a Store backed by a CBOR file.
type FileStore struct {
	values
	path string
}

// NewFileStore loads path, or starts empty when it does not exist. The
// parent directory is created if needed. A file that exists but does
// not decode is an error rather than silently reset, since it holds the
// install UUID.
func NewFileStore(path string, defaultLevel level.Level) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("settings: creating directory for %s: %w", path, err)
	}

	store := &FileStore{values: values{defaultLevel: defaultLevel}, path: path}
	store.persist = store.write

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return store, nil
	case err != nil:
		return nil, fmt.Errorf("settings: reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return store, nil
	}
	if err := codec.Unmarshal(data, &store.current); err != nil {
		return nil, fmt.Errorf("settings: parsing %s: %w", path, err)
	}
	if store.current.LogLevel != nil && !store.current.LogLevel.Valid() {
		store.current.LogLevel = nil
	}
	return store, nil
}

// Path returns the settings file location.
func (s *FileStore) Path() string { return s.path }

// write replaces the settings file atomically: temporary file, fsync,
// rename, then fsync of the parent directory.
func (s *FileStore) write(d document) error {
	data, err := codec.Marshal(d)
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}

	temporaryPath := s.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("settings: creating temporary file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("settings: writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("settings: syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("settings: closing temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, s.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("settings: renaming into place: %w", err)
	}

	if parent, err := os.Open(filepath.Dir(s.path)); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
