// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bureau-foundation/birch/lib/level"
)

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Entry is one log record as written to a log file, one per line and
// followed by a comma.
type Entry struct {
	Timestamp string `json:"timestamp"`

	// Level is the integer rank of the entry's level.Level.
	Level int `json:"level"`

	// Source is the serialized source snapshot at write time.
	Source json.RawMessage `json:"source"`

	Message string `json:"message"`
}

// Sealed is an encrypted record. It replaces the Entry on its line.
type Sealed struct {
	// EncryptedKey is the base64 RSA-wrapped session key.
	EncryptedKey string `json:"ek"`

	// EncryptedMessage is base64(IV || ciphertext of the Entry JSON).
	EncryptedMessage string `json:"em"`
}

// Encode renders v as compact JSON without HTML escaping, so log text
// containing <, > or & is stored as written.
func Encode(v any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}

// SourceRequest is the body of POST /api/v1/sources.
type SourceRequest struct {
	Source json.RawMessage `json:"source"`
}

// ConfigurationResponse is the body of
// GET /api/v1/sources/{uuid}/configuration.
type ConfigurationResponse struct {
	SourceConfiguration *SourceConfiguration `json:"source_configuration"`
}

// Defaults applied to fields the server omits.
const (
	DefaultLevel       = level.Error
	DefaultFlushPeriod = 30 * time.Minute
)

// SourceConfiguration is the server-pushed configuration. Nil fields
// were absent from the response.
type SourceConfiguration struct {
	LogLevel           *int   `json:"log_level,omitempty"`
	FlushPeriodSeconds *int64 `json:"flush_period_seconds,omitempty"`
}

// Resolve applies defaults to absent fields and validates the rest. An
// error means nothing in the configuration should be applied.
func (c SourceConfiguration) Resolve() (level.Level, time.Duration, error) {
	resolvedLevel := DefaultLevel
	if c.LogLevel != nil {
		parsed, err := level.FromInt(*c.LogLevel)
		if err != nil {
			return 0, 0, fmt.Errorf("source configuration: %w", err)
		}
		resolvedLevel = parsed
	}

	period := DefaultFlushPeriod
	if c.FlushPeriodSeconds != nil {
		if *c.FlushPeriodSeconds <= 0 {
			return 0, 0, fmt.Errorf("source configuration: flush_period_seconds must be positive, got %d", *c.FlushPeriodSeconds)
		}
		period = time.Duration(*c.FlushPeriodSeconds) * time.Second
	}
	return resolvedLevel, period, nil
}
