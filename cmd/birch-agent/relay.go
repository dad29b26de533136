// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/bureau-foundation/birch/lib/level"
)

// logFunc is agent.Agent.Log.
type logFunc func(level.Level, func() string) bool

// relayLines logs every line of r at l until EOF. Line terminators are
// dropped; a final line without one is still logged.
func relayLines(r io.Reader, l level.Level, log logFunc) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			text := strings.TrimRight(line, "\r\n")
			log(l, func() string { return text })
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// relayUntilDone relays r until EOF or ctx is cancelled. A cancelled
// relay leaves the reader goroutine blocked, which is fine at process
// exit.
func relayUntilDone(ctx context.Context, r io.Reader, l level.Level, log logFunc) error {
	done := make(chan error, 1)
	go func() { done <- relayLines(r, l, log) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

// runChild runs command, logging its output, and returns its exit code.
// 126 means the command could not be started.
func runChild(command []string, stdoutLevel, stderrLevel level.Level, log logFunc, logger *slog.Logger) int {
	child := exec.Command(command[0], command[1:]...)
	child.Stdin = os.Stdin

	stdout, err := child.StdoutPipe()
	if err != nil {
		logger.Error("creating stdout pipe", "error", err)
		return 1
	}
	stderr, err := child.StderrPipe()
	if err != nil {
		logger.Error("creating stderr pipe", "error", err)
		return 1
	}
	if err := child.Start(); err != nil {
		logger.Error("starting child", "command", command[0], "error", err)
		return 126
	}

	signals := make(chan os.Signal, 4)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer func() {
		signal.Stop(signals)
		close(signals)
	}()
	go forwardSignals(signals, child.Process)

	var relays sync.WaitGroup
	relays.Add(2)
	for _, stream := range []struct {
		reader io.Reader
		level  level.Level
		name   string
	}{
		{stdout, stdoutLevel, "stdout"},
		{stderr, stderrLevel, "stderr"},
	} {
		go func() {
			defer relays.Done()
			if err := relayLines(stream.reader, stream.level, log); err != nil {
				logger.Warn("reading child output", "stream", stream.name, "error", err)
			}
		}()
	}
	// Pipes must be drained before Wait closes them.
	relays.Wait()

	if err := child.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitCode(exitErr)
		}
		logger.Error("waiting for child", "error", err)
		return 1
	}
	return 0
}

// exitCode is the child's exit status, or 128 plus the signal number
// when a signal killed it, as a shell reports it.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}

// forwardSignals sends every signal received to process until signals
// is closed. Delivery errors mean the child already exited.
func forwardSignals(signals <-chan os.Signal, process *os.Process) {
	for sig := range signals {
		if sysSig, ok := sig.(syscall.Signal); ok {
			_ = process.Signal(sysSig)
		}
	}
}
