// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent is the host-facing birch handle.
//
// An [Agent] is bound to one log directory. Create it with [New],
// adjust switches (debug, console, remote, synchronous, level
// override), then call [Agent.Init] once with an API key. Several
// agents can run in one process as long as their directories differ.
//
// On disk an agent named "birch" under root R owns:
//
//	R/birch/current           the file being written
//	R/birch/<epoch millis>    rotated files awaiting upload
//	R/birch.settings          CBOR settings document
//
// Logging never blocks on I/O unless the synchronous switch is on and
// never panics into the caller. Calls made before Init are dropped.
//
// Each level has four entry points:
//
//	a.Info("plain message")
//	a.Infof("formatted %d", n)
//	a.InfoFunc(func() string { return expensive() })
//	a.InfoErr("context", err)
//
// The Func variant is only evaluated when the entry passes the level
// gate.
package agent
