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

package changesets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"m4o.io/changesets/model"
)

// Resolver finds the version of a node or way that was valid at a given
// instant.
//
// Unless disabled with WithHistoryCache(false), a Resolver remembers every
// history it fetched, so it should be scoped to a single request. It is
// safe for concurrent use.
type Resolver struct {
	store Store
	memo  *historyMemo
}

// NewResolver returns a resolver that fetches histories from store.
func NewResolver(store Store, opts ...Option) *Resolver {
	o := newOptions(opts)

	r := &Resolver{store: store}
	if o.historyCache {
		r.memo = newHistoryMemo()
	}

	return r
}

// NodeAt returns the last version of node id with a timestamp at or before
// at. A deletion version is returned as is; a *HistoryError is returned if
// the node did not exist yet.
func (r *Resolver) NodeAt(ctx context.Context, id model.ID, at time.Time) (*model.Node, error) {
	history, err := remember(ctx, r.memo, historyKey(model.NODE, id), func(ctx context.Context) ([]*model.Node, error) {
		slog.Debug("Fetching node history", "id", id, "at", at)

		return r.store.NodeHistory(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching node %d history: %w", id, err)
	}

	return versionAt(model.NODE, id, history, at)
}

// WayAt returns the last version of way id with a timestamp at or before
// at, with the same semantics as NodeAt.
func (r *Resolver) WayAt(ctx context.Context, id model.ID, at time.Time) (*model.Way, error) {
	history, err := remember(ctx, r.memo, historyKey(model.WAY, id), func(ctx context.Context) ([]*model.Way, error) {
		slog.Debug("Fetching way history", "id", id, "at", at)

		return r.store.WayHistory(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching way %d history: %w", id, err)
	}

	return versionAt(model.WAY, id, history, at)
}

// versionAt scans a version-ordered history and returns the last version
// whose timestamp is not after at. Histories are append-only, so the scan
// stops at the first later version.
func versionAt[E model.Entity](t model.EntityType, id model.ID, history []E, at time.Time) (E, error) {
	var found E

	if len(history) == 0 {
		return found, fmt.Errorf("%s %d has no versions: %w", t, id, ErrNotFound)
	}

	ok := false
	for _, v := range history {
		if v.GetInfo().Timestamp.After(at) {
			break
		}

		found, ok = v, true
	}

	if !ok {
		return found, &HistoryError{Type: t, ID: id, At: at}
	}

	return found, nil
}

func historyKey(t model.EntityType, id model.ID) string {
	return fmt.Sprintf("%s/%d", t, id)
}

// historyMemo holds the histories fetched on behalf of one request.
// Concurrent fetches of the same history share a single upstream call.
type historyMemo struct {
	flight singleflight.Group

	mu        sync.Mutex
	histories map[string]any
}

func newHistoryMemo() *historyMemo {
	return &historyMemo{histories: make(map[string]any)}
}

func (m *historyMemo) get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histories[key]

	return h, ok
}

func (m *historyMemo) put(key string, history any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.histories[key] = history
}

// remember returns the history stored under key, calling fetch on a miss.
// A nil memo always calls fetch. Failed fetches are not remembered.
func remember[E model.Entity](
	ctx context.Context,
	m *historyMemo,
	key string,
	fetch func(context.Context) ([]E, error),
) ([]E, error) {
	if m == nil {
		return fetch(ctx)
	}

	if h, ok := m.get(key); ok {
		return h.([]E), nil
	}

	v, err, _ := m.flight.Do(key, func() (any, error) {
		// a flight for key may have completed since the check above
		if h, ok := m.get(key); ok {
			return h, nil
		}

		h, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		m.put(key, h)

		return h, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]E), nil
}
