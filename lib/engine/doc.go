// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine schedules and gates the agent's background work.
//
// An [Engine] sits between the host-facing facade and the three moving
// parts: the log writer, the remote client, and the settings store. It
// owns three periodic jobs driven by an injected [clock.Clock]:
//
//   - trim: delete rotated files older than [MaxFileAge], first after
//     [TrimDelay] and then every [TrimPeriod]
//   - sync: fetch and apply the source configuration, first after
//     [SyncDelay] and then every [SyncPeriod]
//   - flush: roll the current file and upload every rotated file, first
//     after [FlushDelay] and then every effective flush period
//
// The flush period can change at runtime (server configuration or a
// local override). A change restarts the flush job, which flushes
// immediately and then ticks at the new period.
//
// Job bodies run on a single executor goroutine, so uploads,
// configuration syncs and trims never overlap. Requests coalesce per
// job kind: while a flush is waiting, further flush requests join it,
// and a request made while its kind is running schedules one more run.
// No request is dropped, and the queue never holds more than one job of
// each kind. Each body is
// wrapped in panic recovery. The Synchronous policy switch runs them
// inline instead, which is how the facade offers blocking variants and
// how tests avoid waiting on the executor.
//
// Opting out turns every operation into a no-op that returns false
// before touching the disk or the network.
package engine
