// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote is the collector client: the three HTTP operations the
// engine needs (upload a rotated log file, push the source snapshot,
// fetch the source's configuration).
//
// Every operation reports plain success or failure. Transport errors,
// non-2xx/3xx responses, and unparseable bodies are logged and turned
// into false; nothing is returned to the caller to retry or classify.
// Retrying is the engine's job, by leaving the file in place for the
// next flush. A 401 is logged as an invalid API key at error level and
// otherwise treated like any other failure.
//
// Uploads are gzip compressed with klauspost/compress and sent as a
// multipart form with the file in the "logs" field.
package remote
