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

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	humanize "github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/packers"
	"m4o.io/changesets/osmapi"
)

// Output describes the document written for a changeset.
type Output struct {
	Dir         string
	Compression packers.Compression
	GeoJSON     bool
	Progress    bool
}

func runBackfill(cmd *cobra.Command, args []string) error {
	id, err := changesets.ParseChangesetID(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	if flags.Changed("output-dir") {
		if cfg.Output.Dir, err = flags.GetString("output-dir"); err != nil {
			return err
		}
	}

	if flags.Changed("concurrency") {
		if cfg.Processing.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}

	if !flags.Changed("compress") {
		if compression, err = cfg.Compression(); err != nil {
			return err
		}
	}

	out := Output{Dir: cfg.Output.Dir, Compression: compression}

	if out.GeoJSON, err = flags.GetBool("geojson"); err != nil {
		return err
	}

	if out.Progress, err = flags.GetBool("progress"); err != nil {
		return err
	}

	opts, err := cfg.ProcessorOptions()
	if err != nil {
		return err
	}

	_, err = Backfill(cmd.Context(), osmapi.New(cfg.ClientOptions()...), id, out, opts...)

	return err
}

// Backfill processes changeset id from store and writes the result as
// described by out. The document is only written, as a whole, when
// processing succeeds. It returns the path written.
func Backfill(ctx context.Context, store changesets.Store, id int64, out Output, opts ...changesets.Option) (string, error) {
	if out.Progress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar := &progressBar{}
		defer bar.Close()

		opts = append(opts, changesets.WithProgress(bar.Update))
	}

	r, err := changesets.NewProcessor(store, opts...).Process(ctx, id)
	if err != nil {
		return "", err
	}

	name := strconv.FormatInt(id, 10) + ".json"
	render := r.WriteJSON

	if out.GeoJSON {
		name = strconv.FormatInt(id, 10) + ".geojson"
		render = func(w io.Writer) error {
			b, err := r.FeatureCollection().MarshalJSON()
			if err != nil {
				return err
			}

			_, err = w.Write(b)

			return err
		}
	}

	path, size, err := writeFile(filepath.Join(out.Dir, name), out.Compression, render)
	if err != nil {
		return "", err
	}

	slog.Info("Wrote out", "path", path, "size", humanize.Bytes(uint64(size)))

	return path, nil
}

// writeFile renders into a temporary file next to path, compressed with c,
// and renames it into place once complete. It returns the final path and
// its size.
func writeFile(path string, c packers.Compression, render func(io.Writer) error) (_ string, _ int64, err error) {
	path += c.Extension()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", 0, fmt.Errorf("could not create %s: %w", path, err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w, err := packers.NewWriter(tmp, c)
	if err != nil {
		return "", 0, err
	}

	if err = render(w); err != nil {
		return "", 0, fmt.Errorf("could not write %s: %w", path, err)
	}

	if err = w.Close(); err != nil {
		return "", 0, fmt.Errorf("could not compress %s: %w", path, err)
	}

	fi, err := tmp.Stat()
	if err != nil {
		return "", 0, err
	}

	if err = tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("could not close %s: %w", path, err)
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", 0, err
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("could not write %s: %w", path, err)
	}

	return path, fi.Size(), nil
}
