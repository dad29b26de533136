// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	if got, want := clock.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfter(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(5 * time.Second)

	clock.Advance(3 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before deadline")
	default:
	}

	clock.Advance(2 * time.Second)
	select {
	case <-channel:
	default:
		t.Fatal("After did not fire at deadline")
	}
	if clock.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after firing, want 0", clock.PendingCount())
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	clock := Fake(epoch)
	select {
	case <-clock.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
	if clock.PendingCount() != 0 {
		t.Errorf("After(0) registered a waiter")
	}
}

func TestFakeClockTicker(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d not delivered", i)
		}
	}
}

func TestFakeClockTickerDropsWhenBehind(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	clock.Advance(5 * time.Second)
	<-ticker.C
	select {
	case <-ticker.C:
		t.Fatal("ticker buffered more than one tick")
	default:
	}
}

func TestFakeClockTickerStopAndReset(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(time.Second)

	ticker.Stop()
	ticker.Stop()
	if clock.PendingCount() != 0 {
		t.Fatalf("PendingCount() = %d after Stop, want 0", clock.PendingCount())
	}
	clock.Advance(2 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}

	ticker.Reset(10 * time.Second)
	if clock.PendingCount() != 1 {
		t.Fatalf("PendingCount() = %d after Reset, want 1", clock.PendingCount())
	}
	clock.Advance(9 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("reset ticker fired early")
	default:
	}
	clock.Advance(time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("reset ticker did not fire at new interval")
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	fired := make(chan struct{})
	go func() {
		<-clock.After(time.Minute)
		close(fired)
	}()

	clock.WaitForTimers(1)
	clock.Advance(time.Minute)

	select {
	case <-fired:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("goroutine did not observe the advance")
	}
}
