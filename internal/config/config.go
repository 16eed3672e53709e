// Copyright 2026 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads the optional TOML configuration file shared by the
// changesets commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/packers"
	"m4o.io/changesets/osmapi"
)

// Config represents the configuration of the changesets commands.
type Config struct {
	LogLevel   string           `toml:"log_level"`
	API        APIConfig        `toml:"api"`
	Server     ServerConfig     `toml:"server"`
	Output     OutputConfig     `toml:"output"`
	Processing ProcessingConfig `toml:"processing"`
}

// APIConfig configures the OpenStreetMap API client.
type APIConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
	Rate      float64  `toml:"rate"`  // requests per second, 0 for unlimited
	Burst     int      `toml:"burst"` // must be positive
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// OutputConfig configures the documents written by the command line.
type OutputConfig struct {
	Dir       string `toml:"dir"`
	Compress  string `toml:"compress"` // "raw", "zlib", "lzma", "xz", "lz4" or "zstd"
	Generator string `toml:"generator"`
	Copyright string `toml:"copyright"`
}

// ProcessingConfig configures how changesets are backfilled.
type ProcessingConfig struct {
	Concurrency        int    `toml:"concurrency"`
	HistoryCache       bool   `toml:"history_cache"`
	MemberWayTime      string `toml:"member_way_time"` // "way" or "relation"
	StrictDeletedNodes bool   `toml:"strict_deleted_nodes"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}

	d.Duration = v

	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		API: APIConfig{
			BaseURL:   osmapi.DefaultBaseURL,
			UserAgent: osmapi.DefaultUserAgent,
			Timeout:   Duration{osmapi.DefaultTimeout},
			Rate:      osmapi.DefaultRate,
			Burst:     osmapi.DefaultBurst,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Output: OutputConfig{
			Dir:       ".",
			Compress:  packers.RAW.String(),
			Generator: changesets.DefaultGenerator,
			Copyright: changesets.DefaultCopyright,
		},
		Processing: ProcessingConfig{
			Concurrency:   changesets.DefaultConcurrency,
			HistoryCache:  true,
			MemberWayTime: "way",
		},
	}
}

// Read decodes a configuration from r. Values missing from r keep their
// defaults; unknown keys are an error.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()

	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Write encodes cfg to w.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Load reads the configuration file at path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid value of c.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must be set"))
	}

	if c.API.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout))
	}

	if c.API.Rate < 0 {
		errs = append(errs, fmt.Errorf("api.rate must not be negative, got %g", c.API.Rate))
	}

	if c.API.Burst < 1 {
		errs = append(errs, fmt.Errorf("api.burst must be positive, got %d", c.API.Burst))
	}

	if _, err := c.Compression(); err != nil {
		errs = append(errs, fmt.Errorf("output.compress: %w", err))
	}

	if c.Processing.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("processing.concurrency must be positive, got %d", c.Processing.Concurrency))
	}

	if _, err := changesets.ParseMemberWayTime(c.Processing.MemberWayTime); err != nil {
		errs = append(errs, fmt.Errorf("processing.member_way_time: %w", err))
	}

	return errors.Join(errs...)
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}

	return level, nil
}

// Compression returns the configured output compression.
func (c *Config) Compression() (packers.Compression, error) {
	return packers.ParseCompression(c.Output.Compress)
}

// ClientOptions returns the options for an OpenStreetMap API client.
func (c *Config) ClientOptions() []osmapi.Option {
	return []osmapi.Option{
		osmapi.WithBaseURL(c.API.BaseURL),
		osmapi.WithUserAgent(c.API.UserAgent),
		osmapi.WithTimeout(c.API.Timeout.Duration),
		osmapi.WithRateLimit(c.API.Rate, c.API.Burst),
	}
}

// ProcessorOptions returns the options for a changeset processor.
func (c *Config) ProcessorOptions() ([]changesets.Option, error) {
	mwt, err := changesets.ParseMemberWayTime(c.Processing.MemberWayTime)
	if err != nil {
		return nil, err
	}

	return []changesets.Option{
		changesets.WithGenerator(c.Output.Generator),
		changesets.WithCopyright(c.Output.Copyright),
		changesets.WithConcurrency(c.Processing.Concurrency),
		changesets.WithHistoryCache(c.Processing.HistoryCache),
		changesets.WithMemberWayTime(mwt),
		changesets.WithStrictDeletedNodes(c.Processing.StrictDeletedNodes),
	}, nil
}
