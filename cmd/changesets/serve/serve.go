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

package serve

import (
	"github.com/spf13/cobra"

	"m4o.io/changesets"
	"m4o.io/changesets/cmd/changesets/cli"
	"m4o.io/changesets/internal/metrics"
	"m4o.io/changesets/internal/server"
	"m4o.io/changesets/osmapi"
)

func init() {
	cli.RootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringP("listen", "l", ":8080", "address to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve backfilled changesets over HTTP",
	Long:  "Serve backfilled changesets over HTTP, as JSON and GeoJSON, with Prometheus metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cli.Config()
		flags := cmd.Flags()

		if flags.Changed("listen") {
			listen, err := flags.GetString("listen")
			if err != nil {
				return err
			}

			cfg.Server.Listen = listen
		}

		opts, err := cfg.ProcessorOptions()
		if err != nil {
			return err
		}

		store := metrics.Instrument(osmapi.New(cfg.ClientOptions()...))
		handlers := server.NewHandlers(changesets.NewProcessor(store, opts...))

		return server.Run(cmd.Context(), cfg.Server.Listen, server.NewRouter(handlers))
	},
}
