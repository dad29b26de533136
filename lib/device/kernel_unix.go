// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin || freebsd

package device

import "golang.org/x/sys/unix"

// kernel returns the OS name and release from uname(2).
func kernel() (name, release string) {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return "", ""
	}
	return unix.ByteSliceToString(utsname.Sysname[:]), unix.ByteSliceToString(utsname.Release[:])
}
