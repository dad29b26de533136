// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoDirty(t *testing.T) {
	saved := GitDirty
	defer func() { GitDirty = saved }()

	GitDirty = "true"
	if !strings.Contains(Info(), "-dirty") {
		t.Errorf("Info() = %q, want a -dirty marker", Info())
	}
	GitDirty = "false"
	if strings.Contains(Info(), "-dirty") {
		t.Errorf("Info() = %q, want no -dirty marker", Info())
	}
}

func TestUserAgent(t *testing.T) {
	if !strings.HasPrefix(UserAgent(), "birch-go/"+Version+" ") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
