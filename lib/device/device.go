// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package device describes the application and machine a birch agent
// runs on. The identity is read once at agent start and embedded in
// every log record through the source snapshot.
//
// [Host] probes the running machine. [Static] returns a fixed identity
// and is what embedders use when they already know better (a mobile
// shell passing through platform build info, or a test).
package device

// Identity is the static part of a source.
type Identity struct {
	PackageName    string
	AppVersion     string
	AppBuildNumber string
	Brand          string
	Manufacturer   string
	Model          string
	OS             string
	OSVersion      string
}

// Provider supplies an Identity.
type Provider interface {
	Identity() Identity
}

// Static is a Provider returning itself.
type Static Identity

// Identity implements Provider.
func (s Static) Identity() Identity { return Identity(s) }

// App names the host application. Empty fields are filled by Host with
// the executable name and "0".
type App struct {
	PackageName string
	Version     string
	BuildNumber string
}
