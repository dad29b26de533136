// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/birch/lib/agent"
	"github.com/bureau-foundation/birch/lib/config"
	"github.com/bureau-foundation/birch/lib/device"
	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/version"
)

// exitFlushTimeout bounds the final flush.
const exitFlushTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

// arguments is the parsed command line.
type arguments struct {
	configPath  string
	stdoutLevel level.Level
	stderrLevel level.Level
	flushOnExit bool
	showVersion bool
	command     []string
}

// levelValue adapts level.Level to pflag.Value.
type levelValue struct{ target *level.Level }

func (v levelValue) String() string {
	if v.target == nil {
		return ""
	}
	return v.target.String()
}

func (v levelValue) Set(name string) error {
	parsed, err := level.Parse(name)
	if err != nil {
		return err
	}
	if parsed == level.None {
		return fmt.Errorf("level none cannot be assigned to a line")
	}
	*v.target = parsed
	return nil
}

func (levelValue) Type() string { return "level" }

// parseArgs parses flags up to the first non-flag argument or "--";
// everything after is the child command.
func parseArgs(args []string) (*arguments, error) {
	parsed := &arguments{stdoutLevel: level.Info, stderrLevel: level.Error}

	flagSet := pflag.NewFlagSet("birch-agent", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&parsed.configPath, "config", "", "configuration file (default: $BIRCH_CONFIG)")
	flagSet.Var(levelValue{&parsed.stdoutLevel}, "level", "level for stdin or child stdout lines")
	flagSet.Var(levelValue{&parsed.stderrLevel}, "stderr-level", "level for child stderr lines")
	flagSet.BoolVar(&parsed.flushOnExit, "flush-on-exit", true, "upload buffered logs before exiting")
	flagSet.BoolVar(&parsed.showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	parsed.command = flagSet.Args()
	return parsed, nil
}

// run returns the process exit code.
func run(args []string, stdin io.Reader) int {
	parsed, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, usage)
			return 0
		}
		fmt.Fprintf(os.Stderr, "birch-agent: %v\n\n%s\n", err, usage)
		return 2
	}
	if parsed.showVersion {
		fmt.Println("birch-agent", version.Info())
		return 0
	}

	logger := newLogger()

	cfg, err := loadConfig(parsed.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "birch-agent: %v\n", err)
		return 1
	}

	a, err := startAgent(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "birch-agent: %v\n", err)
		return 1
	}

	code := 0
	if len(parsed.command) == 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		if err := relayUntilDone(ctx, stdin, parsed.stdoutLevel, a.Log); err != nil {
			logger.Error("reading stdin", "error", err)
			code = 1
		}
		stop()
	} else {
		code = runChild(parsed.command, parsed.stdoutLevel, parsed.stderrLevel, a.Log, logger)
	}

	if parsed.flushOnExit {
		ctx, cancel := context.WithTimeout(context.Background(), exitFlushTimeout)
		if !a.FlushSynchronous(ctx) {
			logger.Debug("final flush skipped")
		}
		cancel()
	}
	if err := a.Close(); err != nil {
		logger.Warn("closing agent", "error", err)
	}
	return code
}

const usage = `usage: birch-agent [flags] [--] [command [args...]]

flags:
  --config path          configuration file (default: $BIRCH_CONFIG)
  --level level          level for stdin or child stdout lines (default info)
  --stderr-level level   level for child stderr lines (default error)
  --flush-on-exit        upload buffered logs before exiting (default true)
  --version              print version and exit`

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// startAgent builds and initializes the agent described by cfg.
func startAgent(cfg *config.Config, logger *slog.Logger) (*agent.Agent, error) {
	publicKey, err := cfg.PublicKeyMaterial()
	if err != nil {
		return nil, err
	}

	a := agent.New(cfg.Agent.Directory)
	a.SetConsole(cfg.Agent.Console)
	a.SetSynchronous(cfg.Agent.Synchronous)
	a.SetDebug(cfg.Agent.Debug)
	if cfg.Agent.Level != nil {
		a.SetLevel(*cfg.Agent.Level)
	}

	err = a.Init(context.Background(), agent.Options{
		APIKey:       cfg.Collector.APIKey,
		PublicKey:    publicKey,
		Root:         cfg.Agent.Root,
		BaseURL:      cfg.Collector.URL,
		DefaultLevel: cfg.Agent.DefaultLevel,
		MaxFileSize:  cfg.Agent.MaxFileSize,
		App: device.App{
			PackageName: cfg.App.PackageName,
			Version:     cfg.App.Version,
			BuildNumber: cfg.App.BuildNumber,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
