// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/birch/lib/clock"
	"github.com/bureau-foundation/birch/lib/eventbus"
	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/logfile"
	"github.com/bureau-foundation/birch/lib/policy"
	schema "github.com/bureau-foundation/birch/lib/schema/log"
	"github.com/bureau-foundation/birch/lib/scrub"
	"github.com/bureau-foundation/birch/lib/settings"
	"github.com/bureau-foundation/birch/lib/source"
)

// Schedule of the periodic jobs.
const (
	TrimDelay  = 5 * time.Second
	TrimPeriod = 24 * time.Hour

	SyncDelay  = 10 * time.Second
	SyncPeriod = 15 * time.Minute

	FlushDelay = 15 * time.Second

	// MaxFileAge is how long a rotated file is kept when it cannot be
	// uploaded.
	MaxFileAge = 3 * 24 * time.Hour
)

// Remote is the collector client. *remote.Client implements it.
type Remote interface {
	UploadLogs(ctx context.Context, path string) bool
	SyncSource(ctx context.Context, snapshot json.RawMessage) bool
	GetConfiguration(ctx context.Context, uuid string) (schema.SourceConfiguration, bool)
}

// Config configures an Engine.
type Config struct {
	// Source, Writer, Settings, Remote and Policy are required.
	Source   *source.Source
	Writer   *logfile.Writer
	Settings settings.Store
	Remote   Remote
	Policy   *policy.Policy

	// Bus, when set, is watched for source changes, each of which
	// pushes the source to the remote.
	Bus *eventbus.Bus

	// Scrubbers run in order over every message. Nil means
	// scrub.Defaults(); an empty non-nil slice disables scrubbing.
	Scrubbers []scrub.Scrubber

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine is safe for concurrent use.
type Engine struct {
	source    *source.Source
	writer    *logfile.Writer
	settings  settings.Store
	remote    Remote
	policy    *policy.Policy
	scrubbers []scrub.Scrubber
	clock     clock.Clock
	logger    *slog.Logger

	// ctx is passed to executor tasks and cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	// pending holds at most one waiting run per job kind, in the order
	// the kinds were first requested. wake signals the executor.
	jobsMu  sync.Mutex
	pending [jobKinds]func(context.Context)
	order   []jobKind
	wake    chan struct{}

	closing   chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	unsubscribe func()

	started    atomic.Bool
	loops      sync.WaitGroup
	reschedule chan time.Duration

	// flushMu is held for a whole flush cycle so no file is uploaded
	// twice.
	flushMu sync.Mutex
}

type jobKind int

const (
	flushJob jobKind = iota
	updateSourceJob
	syncConfigurationJob
	trimJob
	jobKinds
)

var jobNames = [jobKinds]string{"flush", "update source", "sync configuration", "trim files"}

// New returns an Engine and starts its executor. The periodic jobs do
// not run until Start.
func New(config Config) *Engine {
	switch {
	case config.Source == nil:
		panic("engine: Config.Source is required")
	case config.Writer == nil:
		panic("engine: Config.Writer is required")
	case config.Settings == nil:
		panic("engine: Config.Settings is required")
	case config.Remote == nil:
		panic("engine: Config.Remote is required")
	case config.Policy == nil:
		panic("engine: Config.Policy is required")
	}
	if config.Scrubbers == nil {
		config.Scrubbers = scrub.Defaults()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		source:     config.Source,
		writer:     config.Writer,
		settings:   config.Settings,
		remote:     config.Remote,
		policy:     config.Policy,
		scrubbers:  config.Scrubbers,
		clock:      config.Clock,
		logger:     config.Logger,
		ctx:        ctx,
		cancel:     cancel,
		wake:       make(chan struct{}, 1),
		closing:    make(chan struct{}),
		stopped:    make(chan struct{}),
		reschedule: make(chan time.Duration, 1),
	}
	if config.Bus != nil {
		e.unsubscribe = config.Bus.Subscribe(func(event eventbus.Event) {
			if _, ok := event.(eventbus.SourceUpdated); ok {
				e.UpdateSource()
			}
		})
	}
	go e.run()
	return e
}

// Started reports whether Start has been called.
func (e *Engine) Started() bool { return e.started.Load() }

// FlushPeriod returns the effective flush period: the override when
// set, otherwise the persisted period.
func (e *Engine) FlushPeriod() time.Duration {
	if period, ok := e.policy.FlushPeriodOverride(); ok {
		return period
	}
	return e.settings.FlushPeriod()
}

// Log timestamps and scrubs an entry and hands it to the writer. It
// returns false only when opted out; the writer may still drop the
// entry. message is called at most once, after the level gate.
func (e *Engine) Log(l level.Level, message func() string) bool {
	if e.policy.OptOut() {
		return false
	}

	timestamp := schema.FormatTimestamp(e.clock.Now())
	scrubbed := func() string { return scrub.Apply(e.scrubbers, message()) }
	record := func(chunk string) ([]byte, error) {
		return schema.Encode(schema.Entry{
			Timestamp: timestamp,
			Level:     int(l),
			Source:    e.source.JSON(),
			Message:   chunk,
		})
	}

	e.writer.Log(l, scrubbed, record)
	return true
}

// Flush runs FlushSynchronous on the executor.
func (e *Engine) Flush() {
	e.enqueue(flushJob, func(ctx context.Context) { e.FlushSynchronous(ctx) })
}

// FlushSynchronous rolls the current file and uploads every rotated
// file in name order. Empty files are deleted without an upload; others
// are deleted only after a successful upload, so a failed file is
// retried next cycle. It returns false when opted out.
func (e *Engine) FlushSynchronous(ctx context.Context) bool {
	if e.policy.OptOut() {
		return false
	}

	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	if err := e.writer.RollFile(ctx); err != nil {
		e.diagnose("birch: rolling before flush", "error", err)
	}

	paths, err := e.writer.NonCurrentFiles()
	if err != nil {
		e.diagnose("birch: listing log files", "error", err)
		return true
	}
	slices.Sort(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() == 0 {
			e.remove(path)
			continue
		}
		if e.remote.UploadLogs(ctx, path) {
			e.diagnose("birch: removing uploaded file", "file", filepath.Base(path))
			e.remove(path)
		}
	}
	return true
}

// UpdateSource runs UpdateSourceSynchronous on the executor.
func (e *Engine) UpdateSource() {
	e.enqueue(updateSourceJob, func(ctx context.Context) { e.UpdateSourceSynchronous(ctx) })
}

// UpdateSourceSynchronous pushes the current source snapshot. It
// returns false when opted out.
func (e *Engine) UpdateSourceSynchronous(ctx context.Context) bool {
	if e.policy.OptOut() {
		return false
	}
	e.remote.SyncSource(ctx, e.source.JSON())
	return true
}

// SyncConfiguration runs SyncConfigurationSynchronous on the executor.
func (e *Engine) SyncConfiguration() {
	e.enqueue(syncConfigurationJob, func(ctx context.Context) { e.SyncConfigurationSynchronous(ctx) })
}

// SyncConfigurationSynchronous fetches the source configuration and
// applies it: the level and flush period are persisted, the writer's
// level is updated, and the flush job is restarted if the effective
// period changed. A configuration with an invalid field is logged and
// ignored as a whole. It returns false when opted out.
func (e *Engine) SyncConfigurationSynchronous(ctx context.Context) bool {
	if e.policy.OptOut() {
		return false
	}

	configuration, ok := e.remote.GetConfiguration(ctx, e.source.UUID())
	if !ok {
		return true
	}
	resolvedLevel, period, err := configuration.Resolve()
	if err != nil {
		e.logger.Warn("birch: ignoring source configuration", "error", err)
		return true
	}

	before := e.FlushPeriod()
	if err := e.settings.SetLogLevel(resolvedLevel); err != nil {
		e.logger.Warn("birch: persisting log level", "error", err)
	}
	e.writer.SetLevel(resolvedLevel)
	if err := e.settings.SetFlushPeriod(period); err != nil {
		e.logger.Warn("birch: persisting flush period", "error", err)
	}
	if after := e.FlushPeriod(); after != before {
		e.rescheduleFlush(after)
	}
	e.diagnose("birch: applied source configuration", "level", resolvedLevel, "flush_period", period)
	return true
}

// TrimFiles runs TrimFilesSynchronous on the executor. If a trim is
// already waiting, it runs with the later now.
func (e *Engine) TrimFiles(now time.Time) {
	e.enqueue(trimJob, func(context.Context) { e.TrimFilesSynchronous(now) })
}

// TrimFilesSynchronous deletes rotated files whose name timestamp is
// before now minus MaxFileAge, uploaded or not. Files whose names are
// not epoch milliseconds are left alone.
func (e *Engine) TrimFilesSynchronous(now time.Time) {
	paths, err := e.writer.NonCurrentFiles()
	if err != nil {
		e.diagnose("birch: listing log files", "error", err)
		return
	}
	cutoff := now.Add(-MaxFileAge).UnixMilli()
	for _, path := range paths {
		millis, err := strconv.ParseInt(filepath.Base(path), 10, 64)
		if err != nil {
			continue
		}
		if millis < cutoff {
			e.diagnose("birch: trimming expired file", "file", filepath.Base(path))
			e.remove(path)
		}
	}
}

// SetFlushPeriodOverride sets a local flush period that wins over the
// persisted one. A non-positive period clears it. The flush job is
// restarted when the effective period changes.
func (e *Engine) SetFlushPeriodOverride(period time.Duration) {
	before := e.FlushPeriod()
	e.policy.SetFlushPeriodOverride(period)
	if after := e.FlushPeriod(); after != before {
		e.rescheduleFlush(after)
	}
}

// Close stops the periodic jobs and the executor. Jobs still waiting
// are discarded. It does not close the writer.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
		e.cancel()
		close(e.closing)
	})
	e.loops.Wait()
	<-e.stopped
}

func (e *Engine) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.diagnose("birch: removing log file", "file", filepath.Base(path), "error", err)
	}
}

// diagnose logs at debug level when the debug switch is on.
func (e *Engine) diagnose(message string, attributes ...any) {
	if e.policy.Debug() {
		e.logger.Debug(message, attributes...)
	}
}
