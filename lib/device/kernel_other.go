// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(linux || darwin || freebsd)

package device

import "runtime"

func kernel() (name, release string) {
	return runtime.GOOS, ""
}
