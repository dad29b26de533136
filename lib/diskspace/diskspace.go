// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diskspace reports free space on the filesystem holding a
// path. The log writer consults it before every accepted entry and
// drops entries when the filesystem is full.
package diskspace

import "errors"

// ErrUnsupported is returned on platforms without a statfs
// implementation. Callers treat it as "unknown", not "full".
var ErrUnsupported = errors.New("diskspace: unsupported platform")
