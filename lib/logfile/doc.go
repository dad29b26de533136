// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logfile owns a birch log directory: the append-only
// "current" file and the immutable rotated files beside it.
//
// All file mutation happens on one worker goroutine per [Writer].
// Callers render their records, hand them to a bounded queue and
// return; a full queue makes the caller wait, so entries are only
// dropped when the disk is full. Rotation renames "current" to the rotation time in epoch
// milliseconds and opens a fresh "current", so once the directory
// exists there is always exactly one "current" and rotated names sort
// by age.
//
// Records are written straight to the file descriptor, one line per
// record ending in [Separator], with no user-space buffering: a
// crash loses at most the entries still in the queue, never part of a
// line already written.
package logfile
