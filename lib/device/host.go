// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"os"
	"path/filepath"
	"strings"
)

// Host returns a Provider that probes the running machine. Probing
// never fails: unreadable sources leave fields empty.
func Host(app App) Provider {
	return hostProvider{app: app, sysRoot: "/sys"}
}

type hostProvider struct {
	app     App
	sysRoot string
}

func (h hostProvider) Identity() Identity {
	identity := Identity{
		PackageName:    h.app.PackageName,
		AppVersion:     h.app.Version,
		AppBuildNumber: h.app.BuildNumber,
	}
	if identity.PackageName == "" {
		if executable, err := os.Executable(); err == nil {
			identity.PackageName = filepath.Base(executable)
		}
	}
	if identity.AppBuildNumber == "" {
		identity.AppBuildNumber = "0"
	}

	identity.OS, identity.OSVersion = kernel()

	dmi := filepath.Join(h.sysRoot, "class/dmi/id")
	identity.Manufacturer = readString(filepath.Join(dmi, "sys_vendor"))
	identity.Brand = readString(filepath.Join(dmi, "board_vendor"))
	if identity.Brand == "" {
		identity.Brand = identity.Manufacturer
	}
	identity.Model = readString(filepath.Join(dmi, "product_name"))
	return identity
}

// readString returns the trimmed contents of a sysfs file, or "".
func readString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
