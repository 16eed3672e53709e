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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/memstore"
	"m4o.io/changesets/internal/packers"
	"m4o.io/changesets/model"
)

var epoch = time.Date(2017, 6, 1, 9, 0, 0, 0, time.UTC)

func info(version int32, minutes int, visible bool) *model.Info {
	return &model.Info{
		Version:   version,
		Timestamp: epoch.Add(time.Duration(minutes) * time.Minute),
		Changeset: 1000,
		User:      "mapper",
		Visible:   visible,
	}
}

// writeDocument backfills a changeset creating a node, modifying a way and
// deleting a node, and writes it compressed with c.
func writeDocument(t *testing.T, c packers.Compression) *bytes.Buffer {
	t.Helper()

	closed := epoch.Add(time.Hour)

	store := memstore.New()
	store.Add(
		&model.Node{ID: 1, Info: info(1, 0, true), Lat: 51.0, Lon: -0.5},
		&model.Node{ID: 2, Info: info(1, 0, true), Lat: 51.2, Lon: -0.3},
		&model.Node{ID: 5, Info: info(1, 0, true), Lat: 51.1, Lon: -0.4},
		&model.Node{ID: 5, Info: info(2, 30, false)},
		&model.Way{ID: 10, Info: info(1, 10, true), NodeIDs: []model.ID{1, 5}},
		&model.Way{ID: 10, Info: info(2, 30, true), NodeIDs: []model.ID{1, 2}},
	)
	store.AddChangeset(
		&model.Changeset{
			ID:          1000,
			User:        "mapper",
			CreatedAt:   epoch,
			ClosedAt:    &closed,
			BoundingBox: &model.BoundingBox{Top: 51.2, Left: -0.5, Bottom: 51.0, Right: -0.3},
		},
		model.Change{Action: model.CREATE, Ref: model.Ref{Type: model.NODE, ID: 2, Version: 1}},
		model.Change{Action: model.MODIFY, Ref: model.Ref{Type: model.WAY, ID: 10, Version: 2}},
		model.Change{Action: model.DELETE, Ref: model.Ref{Type: model.NODE, ID: 5, Version: 2}},
	)

	r, err := changesets.NewProcessor(store).Process(context.Background(), 1000)
	require.NoError(t, err)

	buf := &bytes.Buffer{}

	w, err := packers.NewWriter(buf, c)
	require.NoError(t, err)
	require.NoError(t, r.WriteJSON(w))
	require.NoError(t, w.Close())

	return buf
}

func TestRunInfo(t *testing.T) {
	for _, c := range []packers.Compression{packers.RAW, packers.ZLIB, packers.LZ4} {
		t.Run(c.String(), func(t *testing.T) {
			info, err := runInfo(writeDocument(t, c), c)
			require.NoError(t, err)

			assert.Equal(t, changesets.DefaultGenerator, info.Generator)
			assert.Equal(t, int64(1000), info.Changeset)
			assert.Equal(t, int64(3), info.ChangeCount)
			assert.Equal(t, int64(1), info.CreateCount)
			assert.Equal(t, int64(1), info.ModifyCount)
			assert.Equal(t, int64(1), info.DeleteCount)
			assert.Equal(t, int64(2), info.NodeCount)
			assert.Equal(t, int64(1), info.WayCount)
			assert.Equal(t, int64(0), info.RelationCount)
		})
	}
}

func TestRunInfo_NotADocument(t *testing.T) {
	_, err := runInfo(strings.NewReader(`{"meta": {}}`), packers.RAW)
	assert.Error(t, err)

	_, err = runInfo(strings.NewReader(`not json`), packers.RAW)
	assert.Error(t, err)
}

func TestRenderJSON(t *testing.T) {
	info, err := runInfo(writeDocument(t, packers.RAW), packers.RAW)
	require.NoError(t, err)

	// mock out to collect JSON output
	buf := bytes.NewBuffer(make([]byte, 8192))
	buf.Reset()

	saved := out

	defer func() { out = saved }()

	out = buf

	require.NoError(t, renderJSON(info))

	got := &summary{}
	if err := json.Unmarshal(buf.Bytes(), got); err != nil {
		t.Fatalf("Unable to unmarshal json %v", err)
	}

	assert.Equal(t, info.Meta, got.Meta)
	assert.Equal(t, info.Changeset, got.Changeset)
	assert.Equal(t, info.CreatedAt, got.CreatedAt)
	assert.Equal(t, *info.ClosedAt, *got.ClosedAt)
	assert.True(t, info.BoundingBox.EqualWithin(got.BoundingBox, model.E7))
	assert.Equal(t, info.NodeCount, got.NodeCount)
	assert.Equal(t, info.WayCount, got.WayCount)
}

func TestRenderText(t *testing.T) {
	info, err := runInfo(writeDocument(t, packers.RAW), packers.RAW)
	require.NoError(t, err)

	// mock out to collect text output
	buf := bytes.NewBuffer(make([]byte, 8192))
	buf.Reset()

	saved := out

	defer func() { out = saved }()

	out = buf

	info.NodeCount = 2729006
	info.WayCount = 459055
	info.RelationCount = 12833

	renderTxt(info)

	assert.Equal(t, `Changeset: 1000
User: mapper
CreatedAt: 2017-06-01T09:00:00Z
ClosedAt: 2017-06-01T10:00:00Z
BoundingBox: [(51.2, -0.5) (51, -0.3)]
Generator: m4o.io/changesets
Changes: 3
Created: 1
Modified: 1
Deleted: 1
NodeCount: 2,729,006
WayCount: 459,055
RelationCount: 12,833
`, buf.String())
}

func TestRenderText_OpenChangeset(t *testing.T) {
	buf := &bytes.Buffer{}

	saved := out

	defer func() { out = saved }()

	out = buf

	renderTxt(&summary{Changeset: 7, CreatedAt: epoch})

	assert.Contains(t, buf.String(), "ClosedAt: open\n")
	assert.NotContains(t, buf.String(), "BoundingBox")
}
