// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"time"

	"github.com/bureau-foundation/birch/lib/clock"
)

// Start schedules the periodic jobs and pushes the source once. Later
// calls do nothing. The jobs stop when ctx is cancelled or the Engine
// is closed.
func (e *Engine) Start(ctx context.Context) {
	if !e.started.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.loops.Add(4)
	go func() {
		defer e.loops.Done()
		defer cancel()
		select {
		case <-ctx.Done():
		case <-e.closing:
		}
	}()
	go func() {
		defer e.loops.Done()
		e.runPeriodic(ctx, TrimDelay, TrimPeriod, func() { e.TrimFiles(e.clock.Now()) })
	}()
	go func() {
		defer e.loops.Done()
		e.runPeriodic(ctx, SyncDelay, SyncPeriod, e.SyncConfiguration)
	}()
	go func() {
		defer e.loops.Done()
		e.runFlushLoop(ctx)
	}()

	e.UpdateSource()
}

// runPeriodic calls fn after delay and then every period.
func (e *Engine) runPeriodic(ctx context.Context, delay, period time.Duration, fn func()) {
	select {
	case <-e.clock.After(delay):
	case <-ctx.Done():
		return
	}
	fn()

	ticker := e.clock.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// runFlushLoop is runPeriodic for the flush job, with a period that
// can change. A new period flushes immediately and restarts the ticker.
func (e *Engine) runFlushLoop(ctx context.Context) {
	delay := e.clock.After(FlushDelay)

	var ticker *clock.Ticker
	var ticks <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()
	restart := func(period time.Duration) {
		if ticker == nil {
			ticker = e.clock.NewTicker(period)
			ticks = ticker.C
			return
		}
		ticker.Reset(period)
	}

	for {
		select {
		case <-delay:
			delay = nil
			restart(e.FlushPeriod())
			e.Flush()
		case <-ticks:
			e.Flush()
		case period := <-e.reschedule:
			delay = nil
			restart(period)
			e.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// rescheduleFlush hands a new period to the flush loop, replacing any
// period it has not picked up yet. Before Start there is no loop and
// the period is read when it starts.
func (e *Engine) rescheduleFlush(period time.Duration) {
	if !e.Started() {
		return
	}
	for {
		select {
		case e.reschedule <- period:
			return
		default:
		}
		select {
		case <-e.reschedule:
		default:
		}
	}
}

// enqueue hands a job to the executor, or runs it inline in
// synchronous mode. A job of a kind that is already waiting replaces
// the waiting one instead of queueing twice. A job of a kind that is
// running waits for it and then runs again, so a request made during a
// run is never absorbed by it.
func (e *Engine) enqueue(kind jobKind, run func(context.Context)) {
	if e.policy.Synchronous() {
		e.execute(kind, run)
		return
	}
	select {
	case <-e.closing:
		return
	default:
	}

	e.jobsMu.Lock()
	if e.pending[kind] == nil {
		e.order = append(e.order, kind)
	}
	e.pending[kind] = run
	e.jobsMu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// next takes the oldest waiting job.
func (e *Engine) next() (jobKind, func(context.Context), bool) {
	e.jobsMu.Lock()
	defer e.jobsMu.Unlock()
	if len(e.order) == 0 {
		return 0, nil, false
	}
	kind := e.order[0]
	e.order = e.order[1:]
	run := e.pending[kind]
	e.pending[kind] = nil
	return kind, run, true
}

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.wake:
		case <-e.closing:
			return
		}
		for {
			select {
			case <-e.closing:
				return
			default:
			}
			kind, run, ok := e.next()
			if !ok {
				break
			}
			e.execute(kind, run)
		}
	}
}

// execute runs one job. A panic is recovered and, in debug mode,
// reported to the console logger.
func (e *Engine) execute(kind jobKind, run func(context.Context)) {
	defer func() {
		if recovered := recover(); recovered != nil && e.policy.Debug() {
			e.logger.Error("birch: background task panicked", "task", jobNames[kind], "panic", recovered)
		}
	}()
	run(e.ctx)
}
