// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the birch-agent configuration file.
//
// Configuration comes from a single file named by the BIRCH_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no search path. Files ending in .json or .jsonc
// are parsed as JSON with comments and trailing commas allowed; every
// other file is YAML.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. Production forces
// debug and synchronous mode off unless its section says otherwise.
//
// After loading, ${HOME}, ${BIRCH_ROOT}, ${VAR} and ${VAR:-default}
// patterns are expanded in paths and collector settings, so the API key
// can live in the environment:
//
//	collector:
//	  api_key: ${BIRCH_API_KEY}
//
// This package depends only on lib/level.
package config
