// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response reads.
//
// The collector answers with small JSON documents. Reads are capped at
// MaxResponseSize so a misbehaving proxy or server can not make the
// agent buffer an unbounded body inside the host process.
package netutil

import (
	"io"
	"unicode/utf8"
)

// MaxResponseSize caps response body reads.
const MaxResponseSize int64 = 1 << 20

// maxSnippet caps the body text included in diagnostics.
const maxSnippet = 256

// ReadResponse reads body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// Snippet returns the start of body for a log line, cut on a rune
// boundary and marked when truncated.
func Snippet(body []byte) string {
	if len(body) <= maxSnippet {
		return string(body)
	}
	cut := maxSnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
