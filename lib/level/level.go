// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package level defines birch's severity levels.
//
// Levels are totally ordered by integer rank. The rank is what travels
// on the wire (log records and server configuration); the lowercase
// name is what appears in configuration files.
package level

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error

	// None means "log nothing". It is a threshold, never the level of
	// an actual entry.
	None
)

// LevelTrace is the slog level used when echoing trace entries to the
// console. slog has no trace level; this sits one step below Debug.
const LevelTrace = slog.LevelDebug - 4

var names = [...]string{"trace", "debug", "info", "warn", "error", "none"}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool { return l >= Trace && l <= None }

// String returns the lowercase name, or "level(N)" for out-of-range
// values.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return names[l]
}

// Enabled reports whether an entry at l passes a threshold of
// minimum. A None threshold enables nothing.
func (l Level) Enabled(minimum Level) bool {
	return l < None && minimum < None && l >= minimum
}

// Slog maps l to the slog level used for console echo.
func (l Level) Slog() slog.Level {
	switch l {
	case Trace:
		return LevelTrace
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// FromSlog maps an slog level to the nearest Level at or below it.
// Anything below slog.LevelDebug is Trace; anything above
// slog.LevelError is Error.
func FromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelDebug:
		return Trace
	case l < slog.LevelInfo:
		return Debug
	case l < slog.LevelWarn:
		return Info
	case l < slog.LevelError:
		return Warn
	default:
		return Error
	}
}

// FromInt converts a wire rank to a Level.
func FromInt(rank int) (Level, error) {
	l := Level(rank)
	if !l.Valid() {
		return 0, fmt.Errorf("level: unknown rank %d", rank)
	}
	return l, nil
}

// Parse converts a case-insensitive name to a Level. "warning" is
// accepted as an alias for "warn".
func Parse(name string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "warning" {
		return Warn, nil
	}
	for i, candidate := range names {
		if candidate == normalized {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("level: unknown name %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("level: cannot marshal rank %d", int(l))
	}
	return []byte(names[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
