// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(linux || darwin)

package diskspace

// Available always returns ErrUnsupported.
func Available(path string) (uint64, error) {
	return 0, ErrUnsupported
}
