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

// Package memstore provides an in-memory changesets.Store. Entity versions
// are added in order and served back as histories.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"m4o.io/changesets"
	"m4o.io/changesets/model"
)

// Store is an in-memory changesets.Store. It counts the calls it serves so
// callers can verify how often upstream would have been hit.
type Store struct {
	mu sync.RWMutex

	changesets map[int64]*model.Changeset
	changes    map[int64][]model.Change
	entities   map[model.EntityType]map[model.ID][]model.Entity

	calls map[string]int
}

var _ changesets.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		changesets: make(map[int64]*model.Changeset),
		changes:    make(map[int64][]model.Change),
		entities: map[model.EntityType]map[model.ID][]model.Entity{
			model.NODE:     {},
			model.WAY:      {},
			model.RELATION: {},
		},
		calls: make(map[string]int),
	}
}

// AddChangeset registers a changeset and its changes, in download order.
func (s *Store) AddChangeset(cs *model.Changeset, changes ...model.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changesets[cs.ID] = cs
	s.changes[cs.ID] = append(s.changes[cs.ID], changes...)
}

// Add registers entity versions. Versions of the same entity are kept
// ordered by version number.
func (s *Store) Add(entities ...model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entities {
		byID := s.entities[e.GetType()]
		history := append(byID[e.GetID()], e)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].GetInfo().Version < history[j].GetInfo().Version
		})
		byID[e.GetID()] = history
	}
}

// Calls returns the number of calls served for an operation: "changeset",
// "changes", "node_history", "way_history" or "entity".
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.calls[op]
}

func (s *Store) count(op string) {
	s.calls[op]++
}

func (s *Store) Changeset(_ context.Context, id int64) (*model.Changeset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("changeset")

	cs, ok := s.changesets[id]
	if !ok {
		return nil, fmt.Errorf("changeset %d: %w", id, changesets.ErrNotFound)
	}

	return cs, nil
}

func (s *Store) ChangesetChanges(_ context.Context, id int64) ([]model.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("changes")

	if _, ok := s.changesets[id]; !ok {
		return nil, fmt.Errorf("changeset %d: %w", id, changesets.ErrNotFound)
	}

	return append([]model.Change(nil), s.changes[id]...), nil
}

func (s *Store) NodeHistory(_ context.Context, id model.ID) ([]*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("node_history")

	return history[*model.Node](s.entities[model.NODE], model.NODE, id)
}

func (s *Store) WayHistory(_ context.Context, id model.ID) ([]*model.Way, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("way_history")

	return history[*model.Way](s.entities[model.WAY], model.WAY, id)
}

func (s *Store) Entity(_ context.Context, ref model.Ref) (model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("entity")

	for _, e := range s.entities[ref.Type][ref.ID] {
		if e.GetInfo().Version == ref.Version {
			return e, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", ref, changesets.ErrNotFound)
}

func history[E model.Entity](byID map[model.ID][]model.Entity, t model.EntityType, id model.ID) ([]E, error) {
	versions, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", t, id, changesets.ErrNotFound)
	}

	out := make([]E, len(versions))
	for i, v := range versions {
		out[i] = v.(E)
	}

	return out, nil
}
