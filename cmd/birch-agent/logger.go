// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/birch/lib/level"
)

// newLogger writes to stderr: text on a terminal, JSON otherwise. It
// carries both agent diagnostics and console echo, so it accepts every
// level down to trace.
func newLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level.Trace.Slog()}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
