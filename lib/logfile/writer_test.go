// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logfile

import (
	"bufio"
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/birch/lib/clock"
	"github.com/bureau-foundation/birch/lib/envelope"
	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/policy"
	schema "github.com/bureau-foundation/birch/lib/schema/log"
	"github.com/bureau-foundation/birch/lib/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	writer *Writer
	policy *policy.Policy
	clock  *clock.FakeClock
	dir    string
}

func newFixture(t *testing.T, configure func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		policy: policy.New(),
		clock:  clock.Fake(epoch),
		dir:    filepath.Join(t.TempDir(), "birch"),
	}
	config := Config{
		Directory: f.dir,
		Policy:    f.policy,
		Level:     level.Trace,
		Clock:     f.clock,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		FreeSpace: func(string) (uint64, error) { return 1 << 30, nil },
	}
	if configure != nil {
		configure(&config)
	}
	writer, err := NewWriter(config)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	t.Cleanup(func() { writer.Close() })
	f.writer = writer
	return f
}

// plain renders a chunk as a minimal JSON record.
func plain(chunk string) ([]byte, error) {
	return json.Marshal(map[string]string{"message": chunk})
}

func text(s string) func() string { return func() string { return s } }

func (f *fixture) wait(t *testing.T) {
	t.Helper()
	if err := f.writer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if !bytes.HasSuffix(data, []byte(Separator)) {
		t.Fatalf("%s does not end with %q", path, Separator)
	}
	return strings.Split(strings.TrimSuffix(string(data), Separator), Separator)
}

func messages(t *testing.T, lines []string) []string {
	t.Helper()
	var out []string
	for _, line := range lines {
		var record map[string]string
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		out = append(out, record["message"])
	}
	return out
}

func TestNewWriterCreatesCurrent(t *testing.T) {
	f := newFixture(t, nil)
	info, err := os.Stat(filepath.Join(f.dir, CurrentName))
	if err != nil {
		t.Fatalf("current missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("new current has %d bytes", info.Size())
	}
	files, err := f.writer.NonCurrentFiles()
	if err != nil || len(files) != 0 {
		t.Errorf("NonCurrentFiles() = %v, %v; want none", files, err)
	}
}

func TestLevelGate(t *testing.T) {
	levels := []level.Level{level.Trace, level.Debug, level.Info, level.Warn, level.Error}
	for _, threshold := range levels {
		for _, entry := range levels {
			f := newFixture(t, func(c *Config) { c.Level = threshold })
			got := f.writer.Log(entry, text("x"), plain)
			if want := entry >= threshold; got != want {
				t.Errorf("threshold %s, entry %s: Log = %v, want %v", threshold, entry, got, want)
			}
		}
	}
}

func TestDebugAcceptsEverything(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Level = level.Error })
	f.policy.SetDebug(true)
	if !f.writer.Log(level.Trace, text("x"), plain) {
		t.Error("debug mode rejected a trace entry")
	}
}

func TestNoneRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.policy.SetDebug(true)
	if f.writer.Log(level.None, text("x"), plain) {
		t.Error("Log accepted a NONE entry")
	}
}

func TestLevelOverride(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Level = level.Trace })
	f.policy.SetLevelOverride(level.Error)
	if f.writer.EffectiveLevel() != level.Error {
		t.Errorf("EffectiveLevel() = %s", f.writer.EffectiveLevel())
	}
	if f.writer.Log(level.Info, text("x"), plain) {
		t.Error("override did not raise the threshold")
	}
	f.policy.ClearLevelOverride()
	f.writer.SetLevel(level.Warn)
	if f.writer.EffectiveLevel() != level.Warn {
		t.Errorf("EffectiveLevel() after clear = %s", f.writer.EffectiveLevel())
	}
}

func TestDiskFull(t *testing.T) {
	var free uint64
	var freeErr error
	f := newFixture(t, func(c *Config) {
		c.FreeSpace = func(string) (uint64, error) { return free, freeErr }
	})
	if f.writer.Log(level.Error, text("x"), plain) {
		t.Error("Log accepted with zero free space")
	}
	if f.writer.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", f.writer.Dropped())
	}
	freeErr = errors.New("statfs unavailable")
	if !f.writer.Log(level.Error, text("x"), plain) {
		t.Error("Log rejected when free space is unknown")
	}
}

func TestRecordsAreLines(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 5; i++ {
		f.writer.Log(level.Info, text(fmt.Sprintf("entry %d", i)), plain)
	}
	f.wait(t)

	got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName)))
	want := []string{"entry 0", "entry 1", "entry 2", "entry 3", "entry 4"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("messages = %v, want %v", got, want)
	}
}

func TestRecordFraming(t *testing.T) {
	f := newFixture(t, nil)
	f.writer.Log(level.Info, text("a"), plain)
	f.writer.Log(level.Info, text("b"), plain)
	f.wait(t)

	data, err := os.ReadFile(filepath.Join(f.dir, CurrentName))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"message":"a"},` + "\n" + `{"message":"b"},` + "\n"; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestSynchronousWritesBeforeReturn(t *testing.T) {
	f := newFixture(t, nil)
	f.policy.SetSynchronous(true)
	f.writer.Log(level.Info, text("now"), plain)

	lines := readLines(t, filepath.Join(f.dir, CurrentName))
	if len(lines) != 1 {
		t.Fatalf("synchronous Log returned before the write: %v", lines)
	}
}

func TestChunking(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.MaxChunkSize = 10 })
	f.writer.Log(level.Info, text("0123456789abcdefghijKLMNO"), plain)
	f.writer.Log(level.Info, text(""), plain)
	f.wait(t)

	got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName)))
	want := []string{"0123456789", "abcdefghij", "KLMNO", ""}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("chunks = %q, want %q", got, want)
	}
}

func TestSplitRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 7) // 14 bytes
	pieces := split(s, 5)
	if strings.Join(pieces, "") != s {
		t.Fatalf("pieces do not reassemble: %q", pieces)
	}
	for _, piece := range pieces {
		if len(piece) > 5 {
			t.Errorf("piece %q exceeds limit", piece)
		}
		if !strings.HasPrefix(piece, "é") {
			t.Errorf("piece %q starts mid-rune", piece)
		}
	}
	if got := split("", 5); len(got) != 1 || got[0] != "" {
		t.Errorf("split(\"\") = %q", got)
	}
}

func TestRollFileInvariant(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const rotations = 5
	for i := 0; i < rotations; i++ {
		f.writer.Log(level.Info, text("x"), plain)
		if err := f.writer.RollFile(ctx); err != nil {
			t.Fatalf("RollFile: %v", err)
		}
	}

	files, err := f.writer.NonCurrentFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != rotations {
		t.Fatalf("got %d rotated files, want %d", len(files), rotations)
	}
	if _, err := os.Stat(filepath.Join(f.dir, CurrentName)); err != nil {
		t.Fatalf("current missing after rotation: %v", err)
	}

	os.Remove(files[0])
	os.Remove(files[1])
	remaining, _ := f.writer.NonCurrentFiles()
	if len(remaining) != rotations-2 {
		t.Errorf("got %d files after deleting 2, want %d", len(remaining), rotations-2)
	}
}

func TestRotationNamesAreUniqueMillis(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// The fake clock does not move, so every rotation asks for the
	// same millisecond.
	for i := 0; i < 3; i++ {
		if err := f.writer.RollFile(ctx); err != nil {
			t.Fatal(err)
		}
	}
	files, _ := f.writer.NonCurrentFiles()
	var names []string
	for _, file := range files {
		names = append(names, filepath.Base(file))
	}
	sort.Strings(names)

	base := epoch.UnixMilli()
	for i, name := range names {
		if name != strconv.FormatInt(base+int64(i), 10) {
			t.Errorf("rotation %d named %s, want %d", i, name, base+int64(i))
		}
	}
}

func TestRotatesWhenOversize(t *testing.T) {
	const maxSize = 256
	f := newFixture(t, func(c *Config) { c.MaxFileSize = maxSize })
	line, _ := plain(strings.Repeat("a", 50))
	lineSize := int64(len(line) + len(Separator))

	for i := 0; i < 40; i++ {
		f.writer.Log(level.Info, text(strings.Repeat("a", 50)), plain)
	}
	f.wait(t)

	files, _ := f.writer.NonCurrentFiles()
	if len(files) == 0 {
		t.Fatal("no rotation happened")
	}
	total := 0
	for _, path := range append(files, filepath.Join(f.dir, CurrentName)) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() > maxSize+lineSize {
			t.Errorf("%s is %d bytes, past the limit by more than one line", filepath.Base(path), info.Size())
		}
		total += len(readLines(t, path))
	}
	current, _ := os.Stat(filepath.Join(f.dir, CurrentName))
	if current.Size() > maxSize {
		t.Errorf("current is %d bytes, over the limit without rotating", current.Size())
	}
	if total != 40 {
		t.Errorf("found %d lines, want 40", total)
	}
}

func TestConcurrentProducers(t *testing.T) {
	const producers, perProducer = 4, 5000
	f := newFixture(t, nil)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				f.writer.Log(level.Debug, text(fmt.Sprintf("producer %d entry %d", p, i)), plain)
			}
		}(p)
	}
	wg.Wait()
	f.wait(t)

	if f.writer.Dropped() != 0 {
		t.Fatalf("dropped %d entries", f.writer.Dropped())
	}

	files, _ := f.writer.NonCurrentFiles()
	files = append(files, filepath.Join(f.dir, CurrentName))
	total := 0
	perProducerOrder := make(map[int]int)
	sort.Strings(files) // rotated names sort by age; "current" sorts last
	for _, path := range files {
		for _, message := range messages(t, readLines(t, path)) {
			total++
			var p, i int
			if _, err := fmt.Sscanf(message, "producer %d entry %d", &p, &i); err != nil {
				t.Fatalf("corrupt record %q", message)
			}
			if i != perProducerOrder[p] {
				t.Fatalf("producer %d: entry %d out of order, expected %d", p, i, perProducerOrder[p])
			}
			perProducerOrder[p]++
		}
	}
	if total != producers*perProducer {
		t.Errorf("found %d lines, want %d", total, producers*perProducer)
	}

	current, _ := os.Stat(filepath.Join(f.dir, CurrentName))
	if current.Size() > DefaultMaxFileSize {
		t.Errorf("current is %d bytes, over the limit", current.Size())
	}
}

func TestFullQueueBlocksCaller(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.QueueDepth = 1 })

	release := make(chan struct{})
	started := make(chan struct{})
	if !f.writer.enqueue(task{run: func() { close(started); <-release }}) {
		t.Fatal("enqueue refused")
	}
	testutil.RequireClosed(t, started, 5*time.Second, "worker never picked up the blocking task")

	if !f.writer.Log(level.Info, text("queued"), plain) {
		t.Fatal("entry rejected with room in the queue")
	}
	returned := make(chan bool, 1)
	go func() { returned <- f.writer.Log(level.Info, text("waiting"), plain) }()
	testutil.RequireNoReceive(t, returned, 50*time.Millisecond, "Log returned while the queue was full")

	close(release)
	if !testutil.RequireReceive(t, returned, 5*time.Second, "Log still blocked after the worker caught up") {
		t.Error("blocked entry was rejected")
	}
	f.wait(t)
	got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName)))
	if strings.Join(got, ",") != "queued,waiting" {
		t.Errorf("messages = %v", got)
	}
	if f.writer.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", f.writer.Dropped())
	}
}

func TestCloseReleasesBlockedCaller(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.QueueDepth = 1 })

	release := make(chan struct{})
	started := make(chan struct{})
	f.writer.enqueue(task{run: func() { close(started); <-release }})
	testutil.RequireClosed(t, started, 5*time.Second)
	f.writer.Log(level.Info, text("fills the queue"), plain)

	returned := make(chan bool, 1)
	go func() { returned <- f.writer.Log(level.Info, text("late"), plain) }()
	testutil.RequireNoReceive(t, returned, 50*time.Millisecond)

	closed := make(chan struct{})
	go func() { f.writer.Close(); close(closed) }()
	testutil.RequireReceive(t, returned, 5*time.Second, "Close did not release a blocked Log")
	close(release)
	testutil.RequireClosed(t, closed, 5*time.Second)
}

func TestRemoteOffWritesNothing(t *testing.T) {
	var console bytes.Buffer
	f := newFixture(t, func(c *Config) {
		c.Logger = slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: level.LevelTrace}))
	})
	f.policy.SetRemote(false)
	f.policy.SetConsole(true)

	if !f.writer.Log(level.Warn, text("console only"), plain) {
		t.Fatal("Log rejected with remote off")
	}
	f.wait(t)

	if lines := readLines(t, filepath.Join(f.dir, CurrentName)); len(lines) != 0 {
		t.Errorf("remote off still wrote %v", lines)
	}
	if !strings.Contains(console.String(), "console only") {
		t.Errorf("console output = %q", console.String())
	}
}

func TestConsoleEcho(t *testing.T) {
	var console bytes.Buffer
	f := newFixture(t, func(c *Config) {
		c.MaxChunkSize = 4
		c.Logger = slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: level.LevelTrace}))
	})
	f.policy.SetConsole(true)

	f.writer.Log(level.Warn, text("long message"), plain)
	f.wait(t)

	output := console.String()
	if strings.Count(output, "long message") != 1 {
		t.Errorf("message echoed %d times, want once: %q", strings.Count(output, "long message"), output)
	}
	if !strings.Contains(output, "level=WARN") {
		t.Errorf("echo not at warn: %q", output)
	}
}

func TestConsoleOffIsQuiet(t *testing.T) {
	var console bytes.Buffer
	f := newFixture(t, func(c *Config) {
		c.Logger = slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: level.LevelTrace}))
	})
	f.writer.Log(level.Error, text("quiet"), plain)
	f.wait(t)
	if console.Len() != 0 {
		t.Errorf("console output with console off: %q", console.String())
	}
}

func TestEncryptedRecords(t *testing.T) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	sealer, err := envelope.New(&private.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, func(c *Config) { c.Envelope = sealer })

	f.writer.Log(level.Info, text("top secret"), plain)
	f.wait(t)

	lines := readLines(t, filepath.Join(f.dir, CurrentName))
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	var sealed schema.Sealed
	if err := json.Unmarshal([]byte(lines[0]), &sealed); err != nil {
		t.Fatal(err)
	}
	if sealed.EncryptedKey != sealer.EncryptedKey() {
		t.Error("record carries a different wrapped key")
	}
	if strings.Contains(lines[0], "top secret") {
		t.Error("plaintext visible in encrypted record")
	}

	wrapped, _ := base64.StdEncoding.DecodeString(sealed.EncryptedKey)
	sessionKey, err := rsa.DecryptPKCS1v15(nil, private, wrapped)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(sealed.EncryptedMessage)
	block, _ := aes.NewCipher(sessionKey)
	plainText := make([]byte, len(raw)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, raw[:aes.BlockSize]).CryptBlocks(plainText, raw[aes.BlockSize:])
	plainText = plainText[:len(plainText)-int(plainText[len(plainText)-1])]

	if got := messages(t, []string{string(plainText)}); got[0] != "top secret" {
		t.Errorf("decrypted message = %q", got[0])
	}
}

func TestMessageEvaluatedOnlyWhenAccepted(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Level = level.Warn })
	calls := 0
	thunk := func() string { calls++; return "x" }

	f.writer.Log(level.Info, thunk, plain)
	f.writer.Log(level.Error, thunk, plain)
	f.wait(t)
	if calls != 1 {
		t.Errorf("message evaluated %d times, want 1 (rejected entries must not evaluate)", calls)
	}
}

func TestCloseDrainsAndRejects(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 100; i++ {
		f.writer.Log(level.Info, text("x"), plain)
	}
	if err := f.writer.Close(); err != nil {
		t.Fatal(err)
	}
	if lines := readLines(t, filepath.Join(f.dir, CurrentName)); len(lines) != 100 {
		t.Errorf("Close left %d of 100 entries written", len(lines))
	}
	if f.writer.Log(level.Info, text("late"), plain) {
		t.Error("Log accepted after Close")
	}
	if err := f.writer.RollFile(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("RollFile after Close = %v, want ErrClosed", err)
	}
	f.writer.Close()
}

func TestRollRecreatesMissingCurrent(t *testing.T) {
	f := newFixture(t, nil)
	f.wait(t)
	// The worker holds the file open; removing the name simulates an
	// external cleanup.
	os.Remove(filepath.Join(f.dir, CurrentName))
	if err := f.writer.RollFile(context.Background()); err != nil {
		t.Fatalf("RollFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.dir, CurrentName)); err != nil {
		t.Errorf("current not recreated: %v", err)
	}
}

func TestLinesAreCompleteJSON(t *testing.T) {
	f := newFixture(t, nil)
	f.writer.Log(level.Info, text("line\nbreak and \"quotes\""), plain)
	f.wait(t)

	file, err := os.Open(filepath.Join(f.dir, CurrentName))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() {
		count++
		if !json.Valid(bytes.TrimSuffix(scanner.Bytes(), []byte(","))) {
			t.Errorf("line %q is not valid JSON", scanner.Text())
		}
	}
	if count != 1 {
		t.Errorf("embedded newline produced %d lines", count)
	}
}

func TestMessageMayRollFile(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.SyncTimeout = 5 * time.Second })
	f.policy.SetSynchronous(true)

	var rollErr error
	start := time.Now()
	accepted := f.writer.Log(level.Info, func() string {
		rollErr = f.writer.RollFile(context.Background())
		return "after roll"
	}, plain)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Log took %v; the roll waited on itself", elapsed)
	}
	if !accepted {
		t.Fatal("Log rejected the entry")
	}
	if rollErr != nil {
		t.Fatalf("RollFile from a message: %v", rollErr)
	}

	files, _ := f.writer.NonCurrentFiles()
	if len(files) != 1 {
		t.Errorf("got %d rotated files, want 1", len(files))
	}
	if got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName))); len(got) != 1 || got[0] != "after roll" {
		t.Errorf("current = %v, want the entry written after the roll", got)
	}
}

func TestMessageMayLog(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.QueueDepth = 1 })
	f.policy.SetSynchronous(true)

	f.writer.Log(level.Info, func() string {
		f.writer.Log(level.Info, text("inner"), plain)
		return "outer"
	}, plain)

	got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName)))
	if strings.Join(got, ",") != "inner,outer" {
		t.Errorf("messages = %v", got)
	}
}

func TestPanickingMessageIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	if f.writer.Log(level.Error, func() string { panic("bad formatter") }, plain) {
		t.Error("Log accepted an entry whose message panicked")
	}
	f.writer.Log(level.Error, text("still working"), plain)
	f.wait(t)
	if got := messages(t, readLines(t, filepath.Join(f.dir, CurrentName))); len(got) != 1 {
		t.Errorf("messages = %v, want only the healthy entry", got)
	}
}

// contextRecorder is a slog.Handler that keeps each record's context.
type contextRecorder struct {
	mu       sync.Mutex
	contexts []context.Context
}

func (r *contextRecorder) Enabled(context.Context, slog.Level) bool { return true }
func (r *contextRecorder) WithAttrs([]slog.Attr) slog.Handler       { return r }
func (r *contextRecorder) WithGroup(string) slog.Handler            { return r }
func (r *contextRecorder) Handle(ctx context.Context, _ slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts = append(r.contexts, ctx)
	return nil
}

func TestEchoIsMarked(t *testing.T) {
	recorder := &contextRecorder{}
	f := newFixture(t, func(c *Config) { c.Logger = slog.New(recorder) })
	f.policy.SetConsole(true)
	f.policy.SetDebug(true)

	f.writer.Log(level.Info, text("echo me"), plain)
	if err := f.writer.RollFile(context.Background()); err != nil {
		t.Fatal(err)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.contexts) < 2 {
		t.Fatalf("got %d records, want the echo and the roll diagnostic", len(recorder.contexts))
	}
	for i, ctx := range recorder.contexts {
		if !Echoed(ctx) {
			t.Errorf("record %d is not marked as echo", i)
		}
	}
	if Echoed(context.Background()) {
		t.Error("a plain context reports as echo")
	}
}
