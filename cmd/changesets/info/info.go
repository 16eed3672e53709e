// Copyright 2017-26 the original author or authors.
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

package info

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/changesets"
	"m4o.io/changesets/cmd/changesets/cli"
	"m4o.io/changesets/internal/packers"
	"m4o.io/changesets/model"
)

var out io.Writer = os.Stdout

// summary describes a written changeset document.
type summary struct {
	changesets.Meta

	Changeset   int64              `json:"changeset"`
	User        string             `json:"user"`
	CreatedAt   time.Time          `json:"created_at"`
	ClosedAt    *time.Time         `json:"closed_at"`
	BoundingBox *model.BoundingBox `json:"bbox"`

	ChangeCount   int64 `json:"changes"`
	CreateCount   int64 `json:"created"`
	ModifyCount   int64 `json:"modified"`
	DeleteCount   int64 `json:"deleted"`
	NodeCount     int64 `json:"nodes"`
	WayCount      int64 `json:"ways"`
	RelationCount int64 `json:"relations"`
}

// document is the subset of a written changeset read back for the summary.
type document struct {
	Meta      changesets.Meta  `json:"meta"`
	Changeset *model.Changeset `json:"changeset"`
	Changes   []struct {
		Old json.RawMessage `json:"old"`
		New struct {
			Visible bool            `json:"visible"`
			Nodes   json.RawMessage `json:"nodes"`
			Members json.RawMessage `json:"members"`
		} `json:"new"`
	} `json:"changes"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
}

var infoCmd = &cobra.Command{
	Use:   "info <changeset document>",
	Short: "Print information about a written changeset document",
	Long:  "Print information about a changeset document, decompressing it according to its extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}

		in, err := cli.WrapInputFile(f)
		if err != nil {
			return err
		}

		info, err := runInfo(in, packers.ForFilename(args[0]))
		if cerr := in.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			return err
		}

		jsonfmt, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(info)
		}

		renderTxt(info)

		return nil
	},
}

func runInfo(in io.Reader, c packers.Compression) (*summary, error) {
	r, err := packers.NewReader(in, c)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not read changeset document: %w", err)
	}

	if doc.Changeset == nil {
		return nil, fmt.Errorf("not a changeset document: missing changeset")
	}

	info := &summary{
		Meta:        doc.Meta,
		Changeset:   doc.Changeset.ID,
		User:        doc.Changeset.User,
		CreatedAt:   doc.Changeset.CreatedAt,
		ClosedAt:    doc.Changeset.ClosedAt,
		BoundingBox: doc.Changeset.BoundingBox,
		ChangeCount: int64(len(doc.Changes)),
	}

	for _, c := range doc.Changes {
		// the action is implied by the presence of the previous version and
		// the visibility of the new one
		switch {
		case len(c.Old) == 0 || string(c.Old) == "null":
			info.CreateCount++
		case !c.New.Visible:
			info.DeleteCount++
		default:
			info.ModifyCount++
		}

		switch {
		case c.New.Members != nil:
			info.RelationCount++
		case c.New.Nodes != nil:
			info.WayCount++
		default:
			info.NodeCount++
		}
	}

	return info, nil
}

func renderJSON(info *summary) error {
	b, err := json.Marshal(info)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, string(b))

	return err
}

func renderTxt(info *summary) {
	fmt.Fprintf(out, "Changeset: %d\n", info.Changeset)
	fmt.Fprintf(out, "User: %s\n", info.User)
	fmt.Fprintf(out, "CreatedAt: %s\n", info.CreatedAt.UTC().Format(time.RFC3339))
	if info.ClosedAt != nil {
		fmt.Fprintf(out, "ClosedAt: %s\n", info.ClosedAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(out, "ClosedAt: open\n")
	}
	if info.BoundingBox != nil {
		fmt.Fprintf(out, "BoundingBox: %s\n", info.BoundingBox)
	}
	fmt.Fprintf(out, "Generator: %s\n", info.Generator)
	fmt.Fprintf(out, "Changes: %s\n", humanize.Comma(info.ChangeCount))
	fmt.Fprintf(out, "Created: %s\n", humanize.Comma(info.CreateCount))
	fmt.Fprintf(out, "Modified: %s\n", humanize.Comma(info.ModifyCount))
	fmt.Fprintf(out, "Deleted: %s\n", humanize.Comma(info.DeleteCount))
	fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
	fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
	fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))
}
