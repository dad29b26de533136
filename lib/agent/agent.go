// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/birch/lib/clock"
	"github.com/bureau-foundation/birch/lib/device"
	"github.com/bureau-foundation/birch/lib/engine"
	"github.com/bureau-foundation/birch/lib/envelope"
	"github.com/bureau-foundation/birch/lib/eventbus"
	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/logfile"
	"github.com/bureau-foundation/birch/lib/policy"
	"github.com/bureau-foundation/birch/lib/remote"
	"github.com/bureau-foundation/birch/lib/scrub"
	"github.com/bureau-foundation/birch/lib/settings"
	"github.com/bureau-foundation/birch/lib/source"
)

// DefaultDirectory is the directory name used by the CLI.
const DefaultDirectory = "birch"

// DebugFlushPeriod replaces the flush period while debug is on.
const DebugFlushPeriod = 30 * time.Second

// ErrNotInitialized is returned by setters that need Init first.
var ErrNotInitialized = errors.New("agent: not initialized")

// Options configures Init.
type Options struct {
	// APIKey authenticates with the collector. Required unless Remote
	// is set.
	APIKey string

	// PublicKey is the collector's RSA public key, base64 PEM as the
	// dashboard shows it, or raw PEM. Empty disables encryption.
	PublicKey string

	// Root holds the log directory and settings file. Defaults to
	// "birch" under os.UserCacheDir().
	Root string

	// BaseURL overrides the collector URL. A bare host is taken as
	// https.
	BaseURL string

	// DefaultLevel is the level used until the server sends one. The
	// zero value is level.Trace.
	DefaultLevel level.Level

	// Scrubbers run over every message before it is written. Nil means
	// scrub.Defaults().
	Scrubbers []scrub.Scrubber

	// App names the host application for the source snapshot.
	App device.App

	// Device overrides host probing.
	Device device.Provider

	// Remote replaces the HTTP collector client.
	Remote engine.Remote

	HTTPClient *http.Client

	// MaxFileSize is the rotation threshold. Zero means
	// logfile.DefaultMaxFileSize.
	MaxFileSize int64

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger receives console echo and diagnostics. Echo is emitted at
	// the entry's level, TRACE as level.LevelTrace, so a handler with a
	// higher threshold hides those entries from the console; they are
	// still written for upload. Defaults to a text handler on stderr
	// that shows every level.
	Logger *slog.Logger
}

// Agent is safe for concurrent use.
type Agent struct {
	directory string
	policy    *policy.Policy

	mu            sync.Mutex
	pendingOptOut *bool
	logger        *slog.Logger

	running atomic.Pointer[runtime]
}

// runtime is everything Init builds.
type runtime struct {
	engine   *engine.Engine
	writer   *logfile.Writer
	source   *source.Source
	settings *settings.FileStore
}

// New returns an uninitialized Agent for directory. Console echo and
// remote delivery start on.
func New(directory string) *Agent {
	p := policy.New()
	p.SetConsole(true)
	return &Agent{directory: directory, policy: p, logger: consoleLogger()}
}

// consoleLogger is the default echo logger. Unlike slog.Default, it does
// not hide TRACE and DEBUG entries.
func consoleLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.LevelTrace}))
}

// Directory returns the directory name.
func (a *Agent) Directory() string { return a.directory }

// Init builds the agent and starts its background jobs. A second call
// logs a warning and returns nil. An unparseable PublicKey returns an
// error wrapping envelope.ErrInvalidPublicKey.
func (a *Agent) Init(ctx context.Context, options Options) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if options.Logger != nil {
		a.logger = options.Logger
	}
	if a.running.Load() != nil {
		a.logger.Warn("birch: ignored duplicate Init", "directory", a.directory)
		return nil
	}

	if a.directory == "" || strings.ContainsAny(a.directory, `/\`) || a.directory == "." || a.directory == ".." {
		return fmt.Errorf("agent: invalid directory name %q", a.directory)
	}
	if options.APIKey == "" && options.Remote == nil {
		return fmt.Errorf("agent: API key is required")
	}

	var seal *envelope.Envelope
	if options.PublicKey != "" {
		var err error
		if seal, err = envelope.Parse(options.PublicKey); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}

	root := options.Root
	if root == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("agent: locating cache directory: %w", err)
		}
		root = filepath.Join(cache, "birch")
	}

	store, err := settings.NewFileStore(filepath.Join(root, a.directory+".settings"), options.DefaultLevel)
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if a.pendingOptOut != nil {
		if err := store.SetOptOut(*a.pendingOptOut); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		a.pendingOptOut = nil
	}
	a.policy.SetOptOut(store.OptOut())

	provider := options.Device
	if provider == nil {
		provider = device.Host(options.App)
	}
	bus := &eventbus.Bus{}
	src, err := source.New(provider.Identity(), store, bus)
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}

	writer, err := logfile.NewWriter(logfile.Config{
		Directory:   filepath.Join(root, a.directory),
		Policy:      a.policy,
		Level:       store.LogLevel(),
		Envelope:    seal,
		Clock:       options.Clock,
		Logger:      a.logger,
		MaxFileSize: options.MaxFileSize,
	})
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}

	collector := options.Remote
	if collector == nil {
		client, err := remote.NewClient(remote.Config{
			APIKey:     options.APIKey,
			BaseURL:    options.BaseURL,
			HTTPClient: options.HTTPClient,
			Logger:     a.logger,
			Policy:     a.policy,
		})
		if err != nil {
			writer.Close()
			return fmt.Errorf("agent: %w", err)
		}
		collector = client
	}

	e := engine.New(engine.Config{
		Source:    src,
		Writer:    writer,
		Settings:  store,
		Remote:    collector,
		Policy:    a.policy,
		Bus:       bus,
		Scrubbers: options.Scrubbers,
		Clock:     options.Clock,
		Logger:    a.logger,
	})
	a.running.Store(&runtime{engine: e, writer: writer, source: src, settings: store})
	e.Start(ctx)
	return nil
}

// Initialized reports whether Init has succeeded.
func (a *Agent) Initialized() bool { return a.running.Load() != nil }

// Log records message at l. It returns false when the agent is not
// initialized or is opted out. Entries below the level, or arriving
// with the disk full, are still dropped silently.
func (a *Agent) Log(l level.Level, message func() string) bool {
	r := a.running.Load()
	if r == nil {
		return false
	}
	return r.engine.Log(l, message)
}

// Flush uploads rotated files in the background.
func (a *Agent) Flush() {
	if r := a.running.Load(); r != nil {
		r.engine.Flush()
	}
}

// FlushSynchronous rolls and uploads on the calling goroutine. It
// returns false when not initialized or opted out.
func (a *Agent) FlushSynchronous(ctx context.Context) bool {
	r := a.running.Load()
	if r == nil {
		return false
	}
	return r.engine.FlushSynchronous(ctx)
}

// SyncConfiguration fetches the server configuration in the
// background.
func (a *Agent) SyncConfiguration() {
	if r := a.running.Load(); r != nil {
		r.engine.SyncConfiguration()
	}
}

// DebugEnabled reports whether debug mode is on.
func (a *Agent) DebugEnabled() bool { return a.policy.Debug() }

// SetDebug toggles debug mode. While on, every level is accepted and
// the flush period is DebugFlushPeriod. Either way the server
// configuration is fetched again.
func (a *Agent) SetDebug(on bool) {
	a.policy.SetDebug(on)
	period := time.Duration(0)
	if on {
		period = DebugFlushPeriod
	}

	r := a.running.Load()
	if r == nil {
		a.policy.SetFlushPeriodOverride(period)
		return
	}
	r.engine.SetFlushPeriodOverride(period)
	r.engine.SyncConfiguration()
}

// OptOut reports whether collection is disabled.
func (a *Agent) OptOut() bool { return a.policy.OptOut() }

// SetOptOut disables or enables log collection and source sync. The
// choice is persisted; before Init it is persisted by Init.
func (a *Agent) SetOptOut(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.policy.SetOptOut(on)
	r := a.running.Load()
	if r == nil {
		a.pendingOptOut = &on
		return nil
	}
	if err := r.settings.SetOptOut(on); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}

// Console reports whether entries are echoed to the logger.
func (a *Agent) Console() bool { return a.policy.Console() }

// SetConsole toggles console echo.
func (a *Agent) SetConsole(on bool) { a.policy.SetConsole(on) }

// Remote reports whether entries are written for upload.
func (a *Agent) Remote() bool { return a.policy.Remote() }

// SetRemote toggles writing entries to disk for upload. Console echo
// is unaffected.
func (a *Agent) SetRemote(on bool) { a.policy.SetRemote(on) }

// Synchronous reports whether calls wait for their work to finish.
func (a *Agent) Synchronous() bool { return a.policy.Synchronous() }

// SetSynchronous makes logging and background jobs run on the calling
// goroutine.
func (a *Agent) SetSynchronous(on bool) { a.policy.SetSynchronous(on) }

// Level returns the local level override.
func (a *Agent) Level() (level.Level, bool) { return a.policy.LevelOverride() }

// SetLevel overrides the server level until ClearLevel.
func (a *Agent) SetLevel(l level.Level) { a.policy.SetLevelOverride(l) }

// ClearLevel removes the override.
func (a *Agent) ClearLevel() { a.policy.ClearLevelOverride() }

// CurrentLevel is the level in effect: the override if set, otherwise
// the server's. It is false before Init.
func (a *Agent) CurrentLevel() (level.Level, bool) {
	r := a.running.Load()
	if r == nil {
		return 0, false
	}
	return r.writer.EffectiveLevel(), true
}

// FlushPeriod is the upload period in effect. It is false before Init.
func (a *Agent) FlushPeriod() (time.Duration, bool) {
	r := a.running.Load()
	if r == nil {
		return 0, false
	}
	return r.engine.FlushPeriod(), true
}

// UUID returns the install UUID, or "" before Init.
func (a *Agent) UUID() string {
	if r := a.running.Load(); r != nil {
		return r.source.UUID()
	}
	return ""
}

// Identifier returns the source identifier.
func (a *Agent) Identifier() string {
	if r := a.running.Load(); r != nil {
		return r.source.Identifier()
	}
	return ""
}

// SetIdentifier sets an identifier, such as a user ID, for locating the
// source on the dashboard. The source is pushed to the collector.
func (a *Agent) SetIdentifier(identifier string) error {
	r := a.running.Load()
	if r == nil {
		return ErrNotInitialized
	}
	return r.source.SetIdentifier(identifier)
}

// CustomProperties returns a copy of the custom properties.
func (a *Agent) CustomProperties() map[string]string {
	if r := a.running.Load(); r != nil {
		return r.source.CustomProperties()
	}
	return map[string]string{}
}

// SetCustomProperties replaces the properties attached to every entry.
func (a *Agent) SetCustomProperties(properties map[string]string) error {
	r := a.running.Load()
	if r == nil {
		return ErrNotInitialized
	}
	return r.source.SetCustomProperties(properties)
}

// Dropped is the number of entries lost to a full disk.
func (a *Agent) Dropped() uint64 {
	if r := a.running.Load(); r != nil {
		return r.writer.Dropped()
	}
	return 0
}

// Close stops background jobs and closes the log file after writing
// everything queued. The agent cannot be initialized again.
func (a *Agent) Close() error {
	r := a.running.Load()
	if r == nil {
		return nil
	}
	r.engine.Close()
	return r.writer.Close()
}
