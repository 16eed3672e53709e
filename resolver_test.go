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

package changesets_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/memstore"
	"m4o.io/changesets/model"
)

func TestResolver_NodeAt(t *testing.T) {
	store := memstore.New()
	store.Add(
		node(1, 1, at(10), 51.0, -0.1),
		node(1, 2, at(20), 51.1, -0.1),
		deletedNode(1, 3, at(30)),
	)

	r := changesets.NewResolver(store)

	test_cases := []struct {
		name    string
		at      time.Time
		version int32
	}{
		{"first version exactly", at(10), 1},
		{"between versions", at(15), 1},
		{"second version exactly", at(20), 2},
		{"just before deletion", at(29), 2},
		{"deletion", at(30), 3},
		{"after deletion", at(600), 3},
	}

	for _, tc := range test_cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := r.NodeAt(context.Background(), 1, tc.at)
			require.NoError(t, err)
			assert.Equal(t, tc.version, n.Info.Version)
		})
	}
}

func TestResolver_NodeAtBeforeCreation(t *testing.T) {
	store := memstore.New()
	store.Add(node(7, 1, at(10), 51.0, -0.1))

	_, err := changesets.NewResolver(store).NodeAt(context.Background(), 7, at(9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, changesets.ErrInconsistentHistory))

	var he *changesets.HistoryError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, model.NODE, he.Type)
	assert.Equal(t, model.ID(7), he.ID)
	assert.Equal(t, at(9), he.At)
	assert.False(t, he.Deleted)
}

func TestResolver_UnknownEntity(t *testing.T) {
	r := changesets.NewResolver(memstore.New())

	_, err := r.NodeAt(context.Background(), 99, at(0))
	assert.True(t, errors.Is(err, changesets.ErrNotFound))

	_, err = r.WayAt(context.Background(), 99, at(0))
	assert.True(t, errors.Is(err, changesets.ErrNotFound))
}

func TestResolver_WayAt(t *testing.T) {
	store := memstore.New()
	store.Add(
		way(10, 1, at(10), 1, 2),
		way(10, 2, at(20), 1, 2, 3),
	)

	w, err := changesets.NewResolver(store).WayAt(context.Background(), 10, at(19))
	require.NoError(t, err)
	assert.Equal(t, int32(1), w.Info.Version)
	assert.Equal(t, []model.ID{1, 2}, w.NodeIDs)
}

// TestResolver_Monotonicity checks, over random histories, that the resolved
// version is the unique latest version not after the requested time.
func TestResolver_Monotonicity(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for id := model.ID(1); id <= 50; id++ {
		store := memstore.New()

		var stamps []time.Time
		minute := rnd.Intn(10)
		versions := int32(1 + rnd.Intn(8))
		for v := int32(1); v <= versions; v++ {
			minute += 1 + rnd.Intn(30)
			stamps = append(stamps, at(minute))
			store.Add(node(id, v, at(minute), model.Degrees(v), 0))
		}

		r := changesets.NewResolver(store)

		for q := 0; q < 20; q++ {
			target := at(rnd.Intn(minute + 20))

			// brute force: last version whose timestamp is not after target
			want := int32(0)
			for i, ts := range stamps {
				if !ts.After(target) {
					want = int32(i + 1)
				}
			}

			n, err := r.NodeAt(context.Background(), id, target)
			if want == 0 {
				assert.True(t, errors.Is(err, changesets.ErrInconsistentHistory), "node %d at %s", id, target)
				continue
			}

			require.NoError(t, err)
			assert.Equal(t, want, n.Info.Version, "node %d at %s", id, target)
			assert.False(t, n.Info.Timestamp.After(target))
		}
	}
}

func TestResolver_HistoryCache(t *testing.T) {
	store := memstore.New()
	store.Add(node(1, 1, at(10), 51.0, -0.1), way(10, 1, at(10), 1))

	r := changesets.NewResolver(store)
	for i := 0; i < 3; i++ {
		_, err := r.NodeAt(context.Background(), 1, at(10+i))
		require.NoError(t, err)
		_, err = r.WayAt(context.Background(), 10, at(10+i))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, store.Calls("node_history"))
	assert.Equal(t, 1, store.Calls("way_history"))
}

func TestResolver_WithoutHistoryCache(t *testing.T) {
	store := memstore.New()
	store.Add(node(1, 1, at(10), 51.0, -0.1))

	r := changesets.NewResolver(store, changesets.WithHistoryCache(false))
	for i := 0; i < 3; i++ {
		_, err := r.NodeAt(context.Background(), 1, at(10))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, store.Calls("node_history"))
}

func TestResolver_ConcurrentLookupsShareFetch(t *testing.T) {
	store := memstore.New()
	store.Add(node(1, 1, at(10), 51.0, -0.1))

	r := changesets.NewResolver(store)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.NodeAt(context.Background(), 1, at(10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Calls("node_history"))
}
