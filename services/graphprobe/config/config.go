// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads graphprobe settings from YAML, environment variables
// and defaults, in increasing order of precedence defaults < file < env.
// Command-line flags are applied by the caller on top of the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/graphprobe/pkg/logging"
	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
	"github.com/AleutianAI/graphprobe/services/graphprobe/telemetry"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "graphprobe.yaml"

// ErrInvalidConfig wraps every parse and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// configValidate is the shared validator instance.
var configValidate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full graphprobe configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	Graph     GraphConfig      `yaml:"graph"`
	Search    SearchConfig     `yaml:"search"`
	Log       LogConfig        `yaml:"log"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Server    ServerConfig     `yaml:"server"`
}

// GraphConfig controls graph loading.
type GraphConfig struct {
	// Path is the graph file to load.
	Path string `yaml:"path"`

	// MaxNodes and MaxEdges cap the store size.
	MaxNodes int `yaml:"max_nodes" validate:"gte=1"`
	MaxEdges int `yaml:"max_edges" validate:"gte=1"`

	// SampleLimit bounds how many dropped edges and malformed lines are kept
	// for reporting.
	SampleLimit int `yaml:"sample_limit" validate:"gte=0"`
}

// SearchConfig controls the parallel strategies.
type SearchConfig struct {
	Workers         int           `yaml:"workers" validate:"gte=1,lte=1024"`
	QueueSize       int           `yaml:"queue_size" validate:"gte=1"`
	PollTimeout     time.Duration `yaml:"poll_timeout" validate:"gt=0"`
	MaxPollTimeouts int           `yaml:"max_poll_timeouts" validate:"gte=0"`
	MaxDepth        int           `yaml:"max_depth" validate:"gte=0"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir"`
	Quiet bool   `yaml:"quiet"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"hostname_port"`

	// RateLimit is the sustained query rate per second. Zero disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `yaml:"burst" validate:"gte=1"`

	// Watch reloads the graph when its file changes.
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Graph: GraphConfig{
			MaxNodes:    graph.DefaultMaxNodes,
			MaxEdges:    graph.DefaultMaxEdges,
			SampleLimit: graph.DefaultSampleLimit,
		},
		Search: SearchConfig{
			Workers:         search.DefaultWorkers,
			QueueSize:       search.DefaultQueueSize,
			PollTimeout:     search.DefaultPollTimeout,
			MaxPollTimeouts: search.DefaultMaxPollTimeouts,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: telemetry.DefaultConfig(),
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 50,
			Burst:     100,
			Debounce:  graph.DefaultDebounceWindow,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// GRAPHPROBE_* environment variables, then validates it.
//
// Inputs:
//
//	path - YAML file. Empty means DefaultPath. A missing file is not an
//	error.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - Wraps ErrInvalidConfig on parse or validation failure.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode reads YAML into cfg, rejecting unknown keys.
func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides cfg from GRAPHPROBE_* variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("GRAPHPROBE_GRAPH"); v != "" {
		cfg.Graph.Path = v
	}
	if v := os.Getenv("GRAPHPROBE_WORKERS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPHPROBE_WORKERS: %w", err)
		}
		cfg.Search.Workers = i
	}
	if v := os.Getenv("GRAPHPROBE_QUEUE_SIZE"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPHPROBE_QUEUE_SIZE: %w", err)
		}
		cfg.Search.QueueSize = i
	}
	if v := os.Getenv("GRAPHPROBE_POLL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GRAPHPROBE_POLL_TIMEOUT: %w", err)
		}
		cfg.Search.PollTimeout = d
	}
	if v := os.Getenv("GRAPHPROBE_MAX_DEPTH"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPHPROBE_MAX_DEPTH: %w", err)
		}
		cfg.Search.MaxDepth = i
	}
	if v := os.Getenv("GRAPHPROBE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GRAPHPROBE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	return nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SearchOptions converts the search section to search options.
func (c Config) SearchOptions() []search.Option {
	return []search.Option{
		search.WithWorkers(c.Search.Workers),
		search.WithQueueSize(c.Search.QueueSize),
		search.WithPollTimeout(c.Search.PollTimeout),
		search.WithMaxPollTimeouts(c.Search.MaxPollTimeouts),
		search.WithMaxDepth(c.Search.MaxDepth),
	}
}

// LoadOptions converts the graph section to loader options.
func (c Config) LoadOptions() []graph.LoadOption {
	return []graph.LoadOption{
		graph.WithSampleLimit(c.Graph.SampleLimit),
		graph.WithGraphOptions(
			graph.WithMaxNodes(c.Graph.MaxNodes),
			graph.WithMaxEdges(c.Graph.MaxEdges),
		),
	}
}

// LoggingConfig converts the log section to a logging.Config.
func (c Config) LoggingConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		Level:   level,
		JSON:    c.Log.JSON,
		LogDir:  c.Log.Dir,
		Quiet:   c.Log.Quiet,
		Service: c.Telemetry.ServiceName,
	}, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
