// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source used by birch's schedulers.
//
// Components that wait or timestamp accept a [Clock] instead of calling
// the time package directly. Production code passes [Real]; tests pass
// [Fake] and drive time with [FakeClock.Advance]. Call
// [FakeClock.WaitForTimers] before advancing so that the goroutine under
// test has registered its timer or ticker, otherwise the advance can
// happen before the registration and the tick is missed.
package clock
