// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy holds the runtime switches shared by the log writer
// and the engine. Every switch is an atomic so the hot logging path
// never takes a lock to read one.
package policy

import (
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/birch/lib/level"
)

// Policy is safe for concurrent use. The zero value has every switch
// off, including Remote; use New for the normal defaults.
type Policy struct {
	debug       atomic.Bool
	optOut      atomic.Bool
	console     atomic.Bool
	remote      atomic.Bool
	synchronous atomic.Bool

	// levelOverride is the override rank plus one; zero means unset.
	levelOverride atomic.Int32

	flushOverride atomic.Int64
}

// New returns a Policy with Remote on and everything else off.
func New() *Policy {
	p := &Policy{}
	p.remote.Store(true)
	return p
}

// Debug accepts every level regardless of the threshold.
func (p *Policy) Debug() bool { return p.debug.Load() }

func (p *Policy) SetDebug(on bool) { p.debug.Store(on) }

// OptOut disables logging and all network work.
func (p *Policy) OptOut() bool { return p.optOut.Load() }

func (p *Policy) SetOptOut(on bool) { p.optOut.Store(on) }

// Console echoes accepted entries to the console logger.
func (p *Policy) Console() bool { return p.console.Load() }

func (p *Policy) SetConsole(on bool) { p.console.Store(on) }

// Remote controls whether accepted entries are written to disk for
// upload. Console echo is unaffected.
func (p *Policy) Remote() bool { return p.remote.Load() }
func (p *Policy) SetRemote(on bool) { p.remote.Store(on) }

// Synchronous makes logging calls wait for their write and runs engine
// work on the calling goroutine.
func (p *Policy) Synchronous() bool { return p.synchronous.Load() }
func (p *Policy) SetSynchronous(on bool) { p.synchronous.Store(on) }

// LevelOverride returns the local level override, if set.
func (p *Policy) LevelOverride() (level.Level, bool) {
	stored := p.levelOverride.Load()
	if stored == 0 {
		return 0, false
	}
	return level.Level(stored - 1), true
}

// SetLevelOverride sets the override. Invalid levels are ignored.
func (p *Policy) SetLevelOverride(l level.Level) {
	if !l.Valid() {
		return
	}
	p.levelOverride.Store(int32(l) + 1)
}

// ClearLevelOverride removes the override.
func (p *Policy) ClearLevelOverride() { p.levelOverride.Store(0) }

// FlushPeriodOverride returns the local flush period override, if set.
func (p *Policy) FlushPeriodOverride() (time.Duration, bool) {
	d := time.Duration(p.flushOverride.Load())
	return d, d > 0
}

// SetFlushPeriodOverride sets the override; zero or negative clears it.
func (p *Policy) SetFlushPeriodOverride(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.flushOverride.Store(int64(d))
}
