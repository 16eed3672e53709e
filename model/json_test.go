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

package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/changesets/model"
)

var ts = time.Date(2017, 3, 4, 12, 30, 0, 0, time.UTC)

func info(version int32, visible bool) *model.Info {
	return &model.Info{Version: version, UID: 42, Timestamp: ts, Changeset: 1001, User: "mapper", Visible: visible}
}

func TestBackfilledNode_JSON(t *testing.T) {
	n := &model.Node{ID: 5, Tags: map[string]string{"amenity": "cafe"}, Info: info(1, true), Lat: 51.5072178, Lon: -0.1275862}

	b, err := json.Marshal(model.BackfilledNode{Node: n})
	require.NoError(t, err)
	assert.Equal(t, `{"id":5,"version":1,"timestamp":"2017-03-04T12:30:00Z","changeset":1001,"visible":true,"user":"mapper","uid":42,"tags":{"amenity":"cafe"},"lat":51.5072178,"lon":-0.1275862}`, string(b))
}

func TestBackfilledNode_JSONDeleted(t *testing.T) {
	n := &model.Node{ID: 5, Info: info(2, false)}

	b, err := json.Marshal(model.BackfilledNode{Node: n})
	require.NoError(t, err)
	assert.Equal(t, `{"id":5,"version":2,"timestamp":"2017-03-04T12:30:00Z","changeset":1001,"visible":false,"user":"mapper","uid":42,"tags":{}}`, string(b))
}

func TestBackfilledWay_JSON(t *testing.T) {
	w := &model.Way{ID: 10, Info: info(2, true), NodeIDs: []model.ID{1, 2}}
	bw := model.BackfilledWay{Way: w, Geometry: orb.LineString{{-0.5, 51.25}, {-0.25, 51.5}}}

	b, err := json.Marshal(bw)
	require.NoError(t, err)
	assert.Equal(t, `{"id":10,"version":2,"timestamp":"2017-03-04T12:30:00Z","changeset":1001,"visible":true,"user":"mapper","uid":42,"tags":{},"nodes":[1,2],"geometry":[[-0.5,51.25],[-0.25,51.5]]}`, string(b))
}

func TestBackfilledWay_JSONEmpty(t *testing.T) {
	w := &model.Way{ID: 10, Info: info(3, false)}

	b, err := json.Marshal(model.BackfilledWay{Way: w})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"nodes":[],"geometry":[]`)
}

func TestBackfilledRelation_JSON(t *testing.T) {
	r := &model.Relation{
		ID:   7,
		Tags: map[string]string{"type": "multipolygon"},
		Info: info(1, true),
		Members: []model.Member{
			{ID: 1, Type: model.NODE, Role: "label"},
			{ID: 10, Type: model.WAY, Role: "outer"},
			{ID: 8, Type: model.RELATION, Role: "subarea"},
		},
	}
	p := orb.Point{-0.5, 51.25}
	br := model.BackfilledRelation{
		Relation: r,
		Members: []model.ResolvedMember{
			{Member: r.Members[0], Point: &p},
			{Member: r.Members[1], Geometry: orb.LineString{{-0.5, 51.25}, {-0.25, 51.5}}},
			{Member: r.Members[2], Unresolved: true},
		},
	}

	b, err := json.Marshal(br)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"version":1,"timestamp":"2017-03-04T12:30:00Z","changeset":1001,"visible":true,"user":"mapper","uid":42,"tags":{"type":"multipolygon"},"members":[`+
		`{"type":"node","ref":1,"role":"label","lat":51.25,"lon":-0.5},`+
		`{"type":"way","ref":10,"role":"outer","geometry":[[-0.5,51.25],[-0.25,51.5]]},`+
		`{"type":"relation","ref":8,"role":"subarea","unresolved":true}]}`, string(b))
}

func TestChangeset_JSON(t *testing.T) {
	closed := ts.Add(time.Hour)
	c := &model.Changeset{
		ID:          1001,
		User:        "mapper",
		UID:         42,
		CreatedAt:   ts,
		ClosedAt:    &closed,
		BoundingBox: &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437},
		Tags:        map[string]string{"comment": "fix roads"},
	}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1001,"user":"mapper","uid":42,"created_at":"2017-03-04T12:30:00Z","closed_at":"2017-03-04T13:30:00Z","open":false,"min_lat":51.28554,"min_lon":-0.511482,"max_lat":51.69344,"max_lon":0.335437,"tags":{"comment":"fix roads"}}`, string(b))

	var decoded model.Changeset
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, c.ID, decoded.ID)
	assert.True(t, c.BoundingBox.EqualWithin(decoded.BoundingBox, model.E7))
	assert.True(t, closed.Equal(*decoded.ClosedAt))
}

func TestChangeset_JSONOpenWithoutBounds(t *testing.T) {
	c := &model.Changeset{ID: 1002, User: "mapper", UID: 42, CreatedAt: ts, Open: true}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1002,"user":"mapper","uid":42,"created_at":"2017-03-04T12:30:00Z","closed_at":null,"open":true,"min_lat":null,"min_lon":null,"max_lat":null,"max_lon":null,"tags":{}}`, string(b))
}
