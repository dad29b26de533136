// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/birch/lib/level"
)

// Environment is the deployment type.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the birch-agent configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment"`

	Agent     AgentConfig     `yaml:"agent" json:"agent"`
	Collector CollectorConfig `yaml:"collector" json:"collector"`
	App       AppConfig       `yaml:"app" json:"app"`

	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// AgentConfig configures the local agent.
type AgentConfig struct {
	// Root holds the log directory and settings file.
	// Default: ${HOME}/.cache/birch
	Root string `yaml:"root" json:"root"`

	// Directory names the log directory under Root. Default: birch
	Directory string `yaml:"directory" json:"directory"`

	// DefaultLevel applies until the server sends a level.
	// Default: trace
	DefaultLevel level.Level `yaml:"default_level" json:"default_level"`

	// Level, when set, overrides the server level.
	Level *level.Level `yaml:"level,omitempty" json:"level,omitempty"`

	Debug       bool `yaml:"debug" json:"debug"`
	Console     bool `yaml:"console" json:"console"`
	Synchronous bool `yaml:"synchronous" json:"synchronous"`

	// MaxFileSize is the rotation threshold in bytes. Zero keeps the
	// writer's default.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
}

// CollectorConfig configures the remote collector.
type CollectorConfig struct {
	// URL of the collector. Empty uses the hosted collector.
	URL string `yaml:"url" json:"url"`

	APIKey string `yaml:"api_key" json:"api_key"`

	// PublicKey is inline key material. PublicKeyFile is read when
	// PublicKey is empty. Neither set disables encryption.
	PublicKey     string `yaml:"public_key" json:"public_key"`
	PublicKeyFile string `yaml:"public_key_file" json:"public_key_file"`
}

// AppConfig names the application in the source snapshot.
type AppConfig struct {
	PackageName string `yaml:"package_name" json:"package_name"`
	Version     string `yaml:"version" json:"version"`
	BuildNumber string `yaml:"build_number" json:"build_number"`
}

// Overrides are applied over the base values for the matching
// environment. Nil and empty fields leave the base value.
type Overrides struct {
	Root        string `yaml:"root,omitempty" json:"root,omitempty"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Debug       *bool  `yaml:"debug,omitempty" json:"debug,omitempty"`
	Console     *bool  `yaml:"console,omitempty" json:"console,omitempty"`
	Synchronous *bool  `yaml:"synchronous,omitempty" json:"synchronous,omitempty"`
}

// Default returns the base configuration that a file is merged over.
func Default() *Config {
	return &Config{
		Environment: Development,
		Agent: AgentConfig{
			Root:         "${HOME}/.cache/birch",
			Directory:    "birch",
			DefaultLevel: level.Trace,
			Console:      true,
		},
	}
}

// Load loads the file named by BIRCH_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv("BIRCH_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("BIRCH_CONFIG environment variable not set; " +
			"set it to the path of your birch.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads path over Default, applies the environment section,
// and expands variables. It does not validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			off := false
			overrides = &Overrides{Debug: &off, Synchronous: &off}
		}
	}
	if overrides == nil {
		return
	}

	if overrides.Root != "" {
		c.Agent.Root = overrides.Root
	}
	if overrides.URL != "" {
		c.Collector.URL = overrides.URL
	}
	if overrides.Debug != nil {
		c.Agent.Debug = *overrides.Debug
	}
	if overrides.Console != nil {
		c.Agent.Console = *overrides.Console
	}
	if overrides.Synchronous != nil {
		c.Agent.Synchronous = *overrides.Synchronous
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Agent.Root = expandVars(c.Agent.Root, vars)
	vars["BIRCH_ROOT"] = c.Agent.Root

	c.Collector.URL = expandVars(c.Collector.URL, vars)
	c.Collector.APIKey = expandVars(c.Collector.APIKey, vars)
	c.Collector.PublicKey = expandVars(c.Collector.PublicKey, vars)
	c.Collector.PublicKeyFile = expandVars(c.Collector.PublicKeyFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// PublicKeyMaterial returns the configured public key, reading
// PublicKeyFile when the inline key is empty. Empty means no
// encryption.
func (c *Config) PublicKeyMaterial() (string, error) {
	if c.Collector.PublicKey != "" || c.Collector.PublicKeyFile == "" {
		return c.Collector.PublicKey, nil
	}
	data, err := os.ReadFile(c.Collector.PublicKeyFile)
	if err != nil {
		return "", fmt.Errorf("config: reading public key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Agent.Root == "" {
		errs = append(errs, fmt.Errorf("agent.root is required"))
	}
	if c.Agent.Directory == "" || strings.ContainsAny(c.Agent.Directory, `/\`) || c.Agent.Directory == "." || c.Agent.Directory == ".." {
		errs = append(errs, fmt.Errorf("agent.directory must be a plain name, got %q", c.Agent.Directory))
	}
	if !c.Agent.DefaultLevel.Valid() {
		errs = append(errs, fmt.Errorf("agent.default_level is invalid: %v", c.Agent.DefaultLevel))
	}
	if c.Agent.Level != nil && !c.Agent.Level.Valid() {
		errs = append(errs, fmt.Errorf("agent.level is invalid: %v", *c.Agent.Level))
	}
	if c.Agent.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("agent.max_file_size must not be negative"))
	}
	if c.Collector.APIKey == "" {
		errs = append(errs, fmt.Errorf("collector.api_key is required"))
	}
	if c.Collector.PublicKey != "" && c.Collector.PublicKeyFile != "" {
		errs = append(errs, fmt.Errorf("collector.public_key and collector.public_key_file are mutually exclusive"))
	}

	return errors.Join(errs...)
}
