// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bureau-foundation/birch/lib/clock"
	"github.com/bureau-foundation/birch/lib/diskspace"
	"github.com/bureau-foundation/birch/lib/envelope"
	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/policy"
)

// CurrentName is the active file in a log directory.
const CurrentName = "current"

// Defaults for zero Config fields.
const (
	DefaultMaxFileSize  = 512 * 1024
	DefaultMaxChunkSize = 8 * 1024
	DefaultQueueDepth   = 4096
	DefaultSyncTimeout  = 2 * time.Second
)

// Separator ends every record in a log file. The collector reads a file
// as a JSON array body with the brackets left off.
const Separator = ",\n"

// ErrClosed is returned by operations on a closed Writer.
var ErrClosed = errors.New("logfile: writer closed")

// RecordFunc renders one chunk of a message as a single JSON record,
// without the trailing Separator.
type RecordFunc func(chunk string) ([]byte, error)

// Config configures a Writer.
type Config struct {
	// Directory is created if missing. Required.
	Directory string

	// Policy supplies the debug, console, remote, synchronous, and
	// level override switches. Required.
	Policy *policy.Policy

	// Level is the initial threshold, normally the persisted level.
	Level level.Level

	// Envelope, when set, encrypts every record.
	Envelope *envelope.Envelope

	// Clock names rotated files. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives console echo and diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// FreeSpace reports available bytes for a path. Defaults to
	// diskspace.Available. An error is treated as "unknown" and does
	// not reject the entry.
	FreeSpace func(path string) (uint64, error)

	MaxFileSize  int64
	MaxChunkSize int

	// QueueDepth is how many entries may wait for the worker before Log
	// blocks.
	QueueDepth int

	// SyncTimeout bounds how long a caller waits for a synchronous
	// write or a rotation.
	SyncTimeout time.Duration
}

// Writer appends records to a log directory. Safe for concurrent use.
type Writer struct {
	directory   string
	currentPath string

	policy       *policy.Policy
	envelope     *envelope.Envelope
	clock        clock.Clock
	logger       *slog.Logger
	freeSpace    func(string) (uint64, error)
	maxFileSize  int64
	maxChunkSize int
	syncTimeout  time.Duration

	level   atomic.Int32
	dropped atomic.Uint64

	tasks     chan task
	closing   chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// Owned by the worker goroutine.
	file         *os.File
	size         int64
	lastRotation int64
}

type task struct {
	run  func()
	done chan struct{}
}

// NewWriter creates the directory and "current", then starts the
// worker goroutine. Call Close to stop it.
func NewWriter(config Config) (*Writer, error) {
	if config.Directory == "" {
		panic("logfile: Config.Directory is required")
	}
	if config.Policy == nil {
		panic("logfile: Config.Policy is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.FreeSpace == nil {
		config.FreeSpace = diskspace.Available
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultMaxChunkSize
	}
	if config.MaxChunkSize < utf8.UTFMax {
		config.MaxChunkSize = utf8.UTFMax
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = DefaultQueueDepth
	}
	if config.SyncTimeout <= 0 {
		config.SyncTimeout = DefaultSyncTimeout
	}
	if !config.Level.Valid() {
		config.Level = level.Trace
	}

	if err := os.MkdirAll(config.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("logfile: creating %s: %w", config.Directory, err)
	}

	writer := &Writer{
		directory:    config.Directory,
		currentPath:  filepath.Join(config.Directory, CurrentName),
		policy:       config.Policy,
		envelope:     config.Envelope,
		clock:        config.Clock,
		logger:       config.Logger,
		freeSpace:    config.FreeSpace,
		maxFileSize:  config.MaxFileSize,
		maxChunkSize: config.MaxChunkSize,
		syncTimeout:  config.SyncTimeout,
		tasks:        make(chan task, config.QueueDepth),
		closing:      make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	writer.level.Store(int32(config.Level))

	if err := writer.open(); err != nil {
		return nil, err
	}

	go writer.run()
	return writer, nil
}

// Directory returns the log directory.
func (w *Writer) Directory() string { return w.directory }

// Level returns the threshold without the local override.
func (w *Writer) Level() level.Level { return level.Level(w.level.Load()) }

// SetLevel changes the threshold. Invalid levels are ignored.
func (w *Writer) SetLevel(l level.Level) {
	if l.Valid() {
		w.level.Store(int32(l))
	}
}

// EffectiveLevel is the local override when set, otherwise Level.
func (w *Writer) EffectiveLevel() level.Level {
	if override, ok := w.policy.LevelOverride(); ok {
		return override
	}
	return w.Level()
}

// Dropped returns the number of entries dropped because the disk was
// full.
func (w *Writer) Dropped() uint64 { return w.dropped.Load() }

// Log queues an entry for the worker. It returns false without queueing
// when level is None, when the disk is full, when level is below
// EffectiveLevel and debug is off, when message panics, or after Close.
//
// Once the entry passes those checks, message is called once and record
// once per chunk, both on the calling goroutine, so they may call back
// into the Writer. A full queue blocks until the worker catches up. In
// synchronous mode Log also waits for the write to finish, bounded by
// the sync timeout.
func (w *Writer) Log(l level.Level, message func() string, record RecordFunc) bool {
	if l == level.None || !l.Valid() {
		return false
	}
	if !w.diskAvailable() {
		w.dropped.Add(1)
		return false
	}
	if !w.policy.Debug() && l < w.EffectiveLevel() {
		return false
	}

	text, lines, ok := w.prepare(message, record)
	if !ok {
		return false
	}

	t := task{run: func() { w.write(l, text, lines) }}
	synchronous := w.policy.Synchronous()
	if synchronous {
		t.done = make(chan struct{})
	}
	if !w.enqueue(t) {
		return false
	}
	if synchronous {
		ctx, cancel := context.WithTimeout(context.Background(), w.syncTimeout)
		defer cancel()
		select {
		case <-t.done:
		case <-ctx.Done():
		}
	}
	return true
}

// RollFile rotates "current" on the worker, after every write queued
// before it. It waits for completion bounded by ctx and the sync
// timeout. Writes that overflow the size limit roll inline on the
// worker instead.
func (w *Writer) RollFile(ctx context.Context) error {
	var rollErr error
	if err := w.submit(ctx, func() { rollErr = w.roll() }); err != nil {
		return err
	}
	return rollErr
}

// Wait returns once every write queued before the call is on disk.
func (w *Writer) Wait(ctx context.Context) error {
	return w.submit(ctx, func() {})
}

// NonCurrentFiles returns the paths of every rotated file, unsorted.
func (w *Writer) NonCurrentFiles() ([]string, error) {
	entries, err := os.ReadDir(w.directory)
	if err != nil {
		return nil, fmt.Errorf("logfile: listing %s: %w", w.directory, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.Name() == CurrentName || !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(w.directory, entry.Name()))
	}
	return paths, nil
}

// Close stops accepting entries, writes everything already queued,
// and closes "current". Safe to call more than once.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() { close(w.closing) })
	<-w.stopped
	return nil
}

func (w *Writer) closed() bool {
	select {
	case <-w.closing:
		return true
	default:
		return false
	}
}

func (w *Writer) enqueue(t task) bool {
	if w.closed() {
		return false
	}
	select {
	case w.tasks <- t:
		return true
	case <-w.closing:
		return false
	}
}

// submit runs fn on the worker and waits for it.
func (w *Writer) submit(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, w.syncTimeout)
	defer cancel()

	t := task{run: fn, done: make(chan struct{})}
	if w.closed() {
		return ErrClosed
	}
	select {
	case w.tasks <- t:
	case <-w.closing:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("logfile: queueing task: %w", ctx.Err())
	}
	select {
	case <-t.done:
		return nil
	case <-w.stopped:
		select {
		case <-t.done:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return fmt.Errorf("logfile: waiting for task: %w", ctx.Err())
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case t := <-w.tasks:
			w.execute(t)
		case <-w.closing:
			for {
				select {
				case t := <-w.tasks:
					w.execute(t)
				default:
					w.closeFile()
					return
				}
			}
		}
	}
}

func (w *Writer) execute(t task) {
	defer func() {
		if recovered := recover(); recovered != nil && w.policy.Debug() {
			w.logger.ErrorContext(echoContext, "birch: log writer task panicked", "panic", recovered)
		}
		if t.done != nil {
			close(t.done)
		}
	}()
	t.run()
}

func (w *Writer) diskAvailable() bool {
	free, err := w.freeSpace(w.directory)
	if err != nil {
		return true
	}
	return free > 0
}

// prepare evaluates message and renders its chunks. With remote off no
// records are rendered. ok is false when message or record panics.
func (w *Writer) prepare(message func() string, record RecordFunc) (text string, lines [][]byte, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			w.diagnose("birch: evaluating log message", fmt.Errorf("panic: %v", recovered))
			ok = false
		}
	}()

	text = message()
	if !w.policy.Remote() {
		return text, nil, true
	}
	for _, piece := range split(text, w.maxChunkSize) {
		line, err := w.render(record, piece)
		if err != nil {
			w.diagnose("birch: rendering log record", err)
			continue
		}
		lines = append(lines, line)
	}
	return text, lines, true
}

// write runs on the worker.
func (w *Writer) write(l level.Level, text string, lines [][]byte) {
	for _, line := range lines {
		if err := w.append(line); err != nil {
			w.diagnose("birch: appending log record", err)
			continue
		}
		if w.size > w.maxFileSize {
			if err := w.roll(); err != nil {
				w.diagnose("birch: rolling log file", err)
			}
		}
	}

	if w.policy.Console() {
		w.logger.Log(echoContext, l.Slog(), text)
	}
}

func (w *Writer) render(record RecordFunc, piece string) ([]byte, error) {
	line, err := record(piece)
	if err != nil {
		return nil, err
	}
	if w.envelope == nil {
		return line, nil
	}
	return w.envelope.Seal(line)
}

func (w *Writer) append(line []byte) error {
	if w.file == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	line = append(line[:len(line):len(line)], Separator...)
	n, err := w.file.Write(line)
	w.size += int64(n)
	if err != nil {
		w.closeFile()
		return fmt.Errorf("logfile: writing %s: %w", w.currentPath, err)
	}
	return nil
}

// open opens "current" for appending, creating it if needed.
func (w *Writer) open() error {
	file, err := os.OpenFile(w.currentPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logfile: opening %s: %w", w.currentPath, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("logfile: stat %s: %w", w.currentPath, err)
	}
	w.file = file
	w.size = info.Size()
	return nil
}

func (w *Writer) closeFile() {
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
}

// roll runs on the worker. "current" is renamed even when empty; the
// engine deletes empty rotated files without uploading them.
func (w *Writer) roll() error {
	w.closeFile()

	if _, err := os.Lstat(w.currentPath); errors.Is(err, os.ErrNotExist) {
		if err := w.open(); err != nil {
			return err
		}
		w.closeFile()
	}

	name := w.rotationName()
	rotated := filepath.Join(w.directory, name)
	if err := os.Rename(w.currentPath, rotated); err != nil {
		// Keep writing to the old file rather than losing entries.
		if openErr := w.open(); openErr != nil {
			return errors.Join(fmt.Errorf("logfile: rotating: %w", err), openErr)
		}
		return fmt.Errorf("logfile: rotating: %w", err)
	}

	if err := w.open(); err != nil {
		return err
	}
	if w.policy.Debug() {
		w.logger.DebugContext(echoContext, "birch: rolled log file", "file", name)
	}
	return nil
}

// rotationName returns the rotation time in epoch milliseconds, bumped
// past the previous rotation and any existing file so that names are
// unique and increasing.
func (w *Writer) rotationName() string {
	millis := w.clock.Now().UnixMilli()
	if millis <= w.lastRotation {
		millis = w.lastRotation + 1
	}
	for {
		name := strconv.FormatInt(millis, 10)
		if _, err := os.Lstat(filepath.Join(w.directory, name)); errors.Is(err, os.ErrNotExist) {
			w.lastRotation = millis
			return name
		}
		millis++
	}
}

func (w *Writer) diagnose(message string, err error) {
	if w.policy.Debug() {
		w.logger.ErrorContext(echoContext, message, "error", err)
	}
}

type echoKey struct{}

// echoContext marks records the Writer itself hands to its logger.
var echoContext = context.WithValue(context.Background(), echoKey{}, true)

// Echoed reports whether ctx came from the Writer's console echo or
// diagnostics. A slog.Handler that feeds entries back into a Writer
// uses it to avoid logging its own output again.
func Echoed(ctx context.Context) bool {
	echoed, _ := ctx.Value(echoKey{}).(bool)
	return echoed
}

// split cuts s into pieces of at most limit bytes on rune boundaries.
// An empty s is one empty piece.
func split(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}
	pieces := make([]string, 0, len(s)/limit+1)
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		pieces = append(pieces, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		pieces = append(pieces, s)
	}
	return pieces
}
