// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package log defines the JSON shapes birch exchanges with the
// collector: the per-line log record written to disk and uploaded in
// bulk, its encrypted form, and the request and response bodies of the
// sources endpoints.
package log
