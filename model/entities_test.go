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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/changesets/model"
)

func TestEntityType_String(t *testing.T) {
	assert.Equal(t, "node", model.NODE.String())
	assert.Equal(t, "way", model.WAY.String())
	assert.Equal(t, "relation", model.RELATION.String())
	assert.Equal(t, "EntityType(7)", model.EntityType(7).String())
}

func TestParseEntityType(t *testing.T) {
	for _, et := range []model.EntityType{model.NODE, model.WAY, model.RELATION} {
		parsed, err := model.ParseEntityType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, parsed)
	}

	_, err := model.ParseEntityType("area")
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	test_cases := []struct {
		name        string
		action      model.Action
		hasPrevious bool
	}{
		{"create", model.CREATE, false},
		{"modify", model.MODIFY, true},
		{"delete", model.DELETE, true},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := model.ParseAction(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.action, a)
			assert.Equal(t, tc.name, a.String())
			assert.Equal(t, tc.hasPrevious, a.HasPrevious())
		})
	}

	_, err := model.ParseAction("upsert")
	assert.Error(t, err)
}

func TestRef(t *testing.T) {
	w := &model.Way{ID: 10, Info: &model.Info{Version: 2}}
	ref := model.RefOf(w)

	assert.Equal(t, model.Ref{Type: model.WAY, ID: 10, Version: 2}, ref)
	assert.Equal(t, model.Ref{Type: model.WAY, ID: 10, Version: 1}, ref.Previous())
	assert.Equal(t, "way/10/2", ref.String())
}

func TestBackfilled_Entity(t *testing.T) {
	n := &model.Node{ID: 1, Lat: 51.5, Lon: -0.12}
	w := &model.Way{ID: 2}
	r := &model.Relation{ID: 3}

	assert.Same(t, n, model.BackfilledNode{Node: n}.Entity())
	assert.Same(t, w, model.BackfilledWay{Way: w}.Entity())
	assert.Same(t, r, model.BackfilledRelation{Relation: r}.Entity())
	assert.Equal(t, 51.5, model.BackfilledNode{Node: n}.Point().Lat())
	assert.Equal(t, -0.12, model.BackfilledNode{Node: n}.Point().Lon())
}
