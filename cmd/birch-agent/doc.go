// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// birch-agent ships the output of a process to a birch collector.
//
// With no command it reads lines from stdin:
//
//	some-daemon 2>&1 | birch-agent --config birch.yaml
//
// With a command after the flags it runs the command, logs its stdout
// lines at --level and its stderr lines at --stderr-level, forwards
// SIGINT, SIGTERM, SIGHUP and SIGQUIT to it, and exits with its exit
// code:
//
//	birch-agent --config birch.yaml -- some-daemon --port 8080
//
// Each line becomes one log entry and goes through the same scrubbing,
// buffering, rotation and upload as entries from an embedded agent. On
// exit the agent flushes once more so nothing written during the run
// waits for the next process to upload it (disable with
// --flush-on-exit=false).
//
// Configuration is read from --config or BIRCH_CONFIG; see lib/config.
package main
