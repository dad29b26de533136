// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is birch's CBOR configuration for on-disk state.
//
// JSON is the wire format toward the collector; CBOR is used for local
// state that only birch reads back, currently the settings document.
// Encoding is Core Deterministic (RFC 8949 §4.2) so the same settings
// always produce the same file bytes.
package codec
