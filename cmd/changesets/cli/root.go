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

// Package cli holds the root command of the changesets binary and the
// helpers shared by its subcommands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"m4o.io/changesets/internal/config"
	"m4o.io/changesets/internal/packers"
)

var (
	cfg = config.Default()

	compression packers.Compression
)

// RootCmd backfills a single changeset and writes it to a file.
var RootCmd = &cobra.Command{
	Use:   "changesets <changeset id>",
	Short: "Backfill the geometry of an OpenStreetMap changeset",
	Long: "Fetch an OpenStreetMap changeset and write the before and after state of\n" +
		"every entity it changed, with geometry resolved at each version's timestamp.",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runBackfill,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	persistent := RootCmd.PersistentFlags()
	persistent.String("config", "", "TOML configuration file")
	persistent.String("log-level", "info", "log level: debug, info, warn or error")
	persistent.String("api-url", "", "OpenStreetMap API base URL")

	flags := RootCmd.Flags()
	flags.StringP("output-dir", "o", ".", "directory the document is written to")
	flags.VarP(NewCompressionValue(packers.RAW, &compression), "compress", "z",
		"compress the document: raw, zlib, lzma, xz, lz4 or zstd")
	flags.BoolP("geojson", "g", false, "write a GeoJSON feature collection instead")
	flags.BoolP("progress", "p", false, "show a progress bar on a terminal")
	flags.IntP("concurrency", "c", 1, "number of changes backfilled at once")
}

// Execute runs the command line until it completes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RootCmd.ExecuteContext(ctx)
}

// Config returns the configuration loaded for the running command.
func Config() *config.Config {
	return cfg
}

// loadConfig reads the configuration file, applies the flags that override
// it and sets up logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return err
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		if c.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}

	if flags.Changed("api-url") {
		if c.API.BaseURL, err = flags.GetString("api-url"); err != nil {
			return err
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := c.Level()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg = c

	return nil
}
