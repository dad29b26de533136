// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for birch packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests do not call time.After directly. A timeout here is a
// hang guard, never a synchronization mechanism; tests synchronize on
// channels and the fake clock.
//
// Helpers call t.Fatalf on failure.
package testutil
