// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"fmt"

	"github.com/bureau-foundation/birch/lib/level"
)

// withError renders message followed by err.
func withError(message string, err error) func() string {
	return func() string {
		if err == nil {
			return message
		}
		if message == "" {
			return fmt.Sprintf("%+v", err)
		}
		return fmt.Sprintf("%s\n\n%+v", message, err)
	}
}

// Trace logs message at TRACE.
func (a *Agent) Trace(message string) { a.Log(level.Trace, func() string { return message }) }

// Tracef logs a formatted message at TRACE. Formatting happens only
// if the entry is written.
func (a *Agent) Tracef(format string, args ...any) {
	a.Log(level.Trace, func() string { return fmt.Sprintf(format, args...) })
}

// TraceFunc logs the result of message at TRACE.
func (a *Agent) TraceFunc(message func() string) { a.Log(level.Trace, message) }

// TraceErr logs message and err at TRACE.
func (a *Agent) TraceErr(message string, err error) { a.Log(level.Trace, withError(message, err)) }

// Debug logs message at DEBUG.
func (a *Agent) Debug(message string) { a.Log(level.Debug, func() string { return message }) }

// Debugf logs a formatted message at DEBUG. Formatting happens only
// if the entry is written.
func (a *Agent) Debugf(format string, args ...any) {
	a.Log(level.Debug, func() string { return fmt.Sprintf(format, args...) })
}

// DebugFunc logs the result of message at DEBUG.
func (a *Agent) DebugFunc(message func() string) { a.Log(level.Debug, message) }

// DebugErr logs message and err at DEBUG.
func (a *Agent) DebugErr(message string, err error) { a.Log(level.Debug, withError(message, err)) }

// Info logs message at INFO.
func (a *Agent) Info(message string) { a.Log(level.Info, func() string { return message }) }

// Infof logs a formatted message at INFO. Formatting happens only
// if the entry is written.
func (a *Agent) Infof(format string, args ...any) {
	a.Log(level.Info, func() string { return fmt.Sprintf(format, args...) })
}

// InfoFunc logs the result of message at INFO.
func (a *Agent) InfoFunc(message func() string) { a.Log(level.Info, message) }

// InfoErr logs message and err at INFO.
func (a *Agent) InfoErr(message string, err error) { a.Log(level.Info, withError(message, err)) }

// Warn logs message at WARN.
func (a *Agent) Warn(message string) { a.Log(level.Warn, func() string { return message }) }

// Warnf logs a formatted message at WARN. Formatting happens only
// if the entry is written.
func (a *Agent) Warnf(format string, args ...any) {
	a.Log(level.Warn, func() string { return fmt.Sprintf(format, args...) })
}

// WarnFunc logs the result of message at WARN.
func (a *Agent) WarnFunc(message func() string) { a.Log(level.Warn, message) }

// WarnErr logs message and err at WARN.
func (a *Agent) WarnErr(message string, err error) { a.Log(level.Warn, withError(message, err)) }

// Error logs message at ERROR.
func (a *Agent) Error(message string) { a.Log(level.Error, func() string { return message }) }

// Errorf logs a formatted message at ERROR. Formatting happens only
// if the entry is written.
func (a *Agent) Errorf(format string, args ...any) {
	a.Log(level.Error, func() string { return fmt.Sprintf(format, args...) })
}

// ErrorFunc logs the result of message at ERROR.
func (a *Agent) ErrorFunc(message func() string) { a.Log(level.Error, message) }

// ErrorErr logs message and err at ERROR.
func (a *Agent) ErrorErr(message string, err error) { a.Log(level.Error, withError(message, err)) }
