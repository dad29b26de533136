// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"testing"
	"time"

	"github.com/bureau-foundation/birch/lib/level"
)

func TestDefaults(t *testing.T) {
	p := New()
	if !p.Remote() {
		t.Error("Remote() = false by default")
	}
	if p.Debug() || p.OptOut() || p.Console() || p.Synchronous() {
		t.Error("a switch other than Remote is on by default")
	}
	if _, ok := p.LevelOverride(); ok {
		t.Error("level override set by default")
	}
	if _, ok := p.FlushPeriodOverride(); ok {
		t.Error("flush override set by default")
	}
}

func TestLevelOverride(t *testing.T) {
	p := New()
	p.SetLevelOverride(level.Trace)
	if l, ok := p.LevelOverride(); !ok || l != level.Trace {
		t.Errorf("LevelOverride() = %s, %v; want trace, true", l, ok)
	}
	p.SetLevelOverride(level.Level(-3))
	if l, _ := p.LevelOverride(); l != level.Trace {
		t.Errorf("invalid override replaced the previous one: %s", l)
	}
	p.ClearLevelOverride()
	if _, ok := p.LevelOverride(); ok {
		t.Error("override still set after Clear")
	}
}

func TestFlushOverride(t *testing.T) {
	p := New()
	p.SetFlushPeriodOverride(30 * time.Second)
	if d, ok := p.FlushPeriodOverride(); !ok || d != 30*time.Second {
		t.Errorf("FlushPeriodOverride() = %v, %v", d, ok)
	}
	p.SetFlushPeriodOverride(0)
	if _, ok := p.FlushPeriodOverride(); ok {
		t.Error("zero did not clear the override")
	}
}

func TestSwitches(t *testing.T) {
	p := New()
	p.SetDebug(true)
	p.SetOptOut(true)
	p.SetConsole(true)
	p.SetRemote(false)
	p.SetSynchronous(true)
	if !p.Debug() || !p.OptOut() || !p.Console() || p.Remote() || !p.Synchronous() {
		t.Error("switch did not take")
	}
}
