// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock stopped at initial. Time moves only when
// Advance is called. Safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*waiter
	changed *sync.Cond
}

// waiter is a pending After or ticker registration.
type waiter struct {
	deadline time.Time
	channel  chan time.Time

	// interval is non-zero for tickers, which are rescheduled after
	// firing instead of being removed.
	interval time.Duration

	// stopped is only meaningful for tickers; a stopped ticker is not
	// in the pending list.
	stopped bool
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a one-shot waiter. d <= 0 fires immediately without
// registering.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.addLocked(&waiter{deadline: c.current.Add(d), channel: channel})
	return channel
}

// NewTicker registers a periodic waiter. Panics if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	registration := &waiter{deadline: c.current.Add(d), channel: channel, interval: d}
	c.addLocked(registration)

	return &Ticker{
		C: channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if registration.stopped {
				return
			}
			registration.stopped = true
			c.removeLocked(registration)
		},
		reset: func(d time.Duration) {
			if d <= 0 {
				panic("clock: non-positive interval for Ticker.Reset")
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			registration.interval = d
			registration.deadline = c.current.Add(d)
			if registration.stopped {
				registration.stopped = false
				c.addLocked(registration)
			}
		},
	}
}

func (c *FakeClock) addLocked(w *waiter) {
	c.pending = append(c.pending, w)
	c.changed.Broadcast()
}

func (c *FakeClock) removeLocked(w *waiter) {
	for i, candidate := range c.pending {
		if candidate == w {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline is reached, in deadline order. Sends never block: a ticker
// whose buffered tick has not been consumed drops the new one, as
// time.Ticker does.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current

	var due []*waiter
	for {
		expired := c.collectLocked(target)
		if len(expired) == 0 {
			break
		}
		due = append(due, expired...)
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, w := range due {
		select {
		case w.channel <- target:
		default:
		}
	}
}

// collectLocked removes expired waiters and reschedules tickers. A
// ticker spanning several intervals is returned once per interval.
func (c *FakeClock) collectLocked(target time.Time) []*waiter {
	var expired, remaining []*waiter
	for _, w := range c.pending {
		if w.deadline.After(target) {
			remaining = append(remaining, w)
			continue
		}
		expired = append(expired, &waiter{deadline: w.deadline, channel: w.channel})
		if w.interval > 0 {
			w.deadline = w.deadline.Add(w.interval)
			remaining = append(remaining, w)
		}
	}
	c.pending = remaining
	return expired
}

// WaitForTimers blocks until at least n waiters are pending.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of active waiters.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
