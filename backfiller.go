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
	"time"

	"github.com/paulmach/orb"

	"m4o.io/changesets/model"
)

// Backfiller attaches geometry to entity versions by resolving the nodes
// they reference at the entity's own timestamp.
type Backfiller struct {
	resolver      *Resolver
	memberWayTime MemberWayTime
	strictDeleted bool
}

// NewBackfiller returns a backfiller resolving versions with resolver.
func NewBackfiller(resolver *Resolver, opts ...Option) *Backfiller {
	o := newOptions(opts)

	return &Backfiller{
		resolver:      resolver,
		memberWayTime: o.memberWayTime,
		strictDeleted: o.strictDeleted,
	}
}

// Backfill returns the entity together with its geometry as of the entity's
// timestamp. Nodes are returned unchanged. Any node or way that cannot be
// resolved fails the whole entity. Nodes deleted at that time are kept as
// positions without a location.
func (b *Backfiller) Backfill(ctx context.Context, e model.Entity) (model.Backfilled, error) {
	if e.GetInfo() == nil {
		return nil, fmt.Errorf("%w: %s %d has no version info", ErrMalformedChange, e.GetType(), e.GetID())
	}

	switch e := e.(type) {
	case *model.Node:
		return model.BackfilledNode{Node: e}, nil
	case *model.Way:
		return b.backfillWay(ctx, e)
	case *model.Relation:
		return b.backfillRelation(ctx, e)
	default:
		return nil, fmt.Errorf("%w: unknown entity %T", ErrMalformedChange, e)
	}
}

func (b *Backfiller) backfillWay(ctx context.Context, w *model.Way) (model.Backfilled, error) {
	g, deleted, err := b.lineString(ctx, w.NodeIDs, w.Info.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("way %d: %w", w.ID, err)
	}

	return model.BackfilledWay{Way: w, Geometry: g, Deleted: deleted}, nil
}

func (b *Backfiller) backfillRelation(ctx context.Context, r *model.Relation) (model.Backfilled, error) {
	at := r.Info.Timestamp
	members := make([]model.ResolvedMember, len(r.Members))

	for i, m := range r.Members {
		members[i] = model.ResolvedMember{Member: m}

		switch m.Type {
		case model.NODE:
			p, deleted, err := b.point(ctx, m.ID, at)
			if err != nil {
				return nil, fmt.Errorf("relation %d member %d: %w", r.ID, i, err)
			}

			if deleted {
				members[i].Deleted = []int{0}
			} else {
				members[i].Point = &p
			}
		case model.WAY:
			g, deleted, err := b.memberWay(ctx, m.ID, at)
			if err != nil {
				return nil, fmt.Errorf("relation %d member %d: %w", r.ID, i, err)
			}

			members[i].Geometry, members[i].Deleted = g, deleted
		default:
			slog.Warn("Not resolving relation member of relation",
				"relation", r.ID, "version", r.Info.Version, "member", m.ID)

			members[i].Unresolved = true
		}
	}

	return model.BackfilledRelation{Relation: r, Members: members}, nil
}

// memberWay resolves the way that was current at the relation's timestamp
// and then its nodes, by default at that way version's own timestamp.
func (b *Backfiller) memberWay(ctx context.Context, id model.ID, at time.Time) (orb.LineString, []int, error) {
	w, err := b.resolver.WayAt(ctx, id, at)
	if err != nil {
		return nil, nil, err
	}

	if b.memberWayTime == WayTime {
		at = w.Info.Timestamp
	}

	g, deleted, err := b.lineString(ctx, w.NodeIDs, at)
	if err != nil {
		return nil, nil, fmt.Errorf("way %d: %w", id, err)
	}

	return g, deleted, nil
}

// lineString locates ids in order. It also returns the positions of the
// nodes that were deleted at the time; those positions hold the zero point.
func (b *Backfiller) lineString(ctx context.Context, ids []model.ID, at time.Time) (orb.LineString, []int, error) {
	g := make(orb.LineString, 0, len(ids))

	var deleted []int

	for i, id := range ids {
		p, gone, err := b.point(ctx, id, at)
		if err != nil {
			return nil, nil, err
		}

		if gone {
			deleted = append(deleted, i)
		}

		g = append(g, p)
	}

	return g, deleted, nil
}

// point returns the location of a node at the given time. A node that is
// deleted at that time has no location; gone is set unless deletions are
// strict, in which case a *HistoryError is returned.
func (b *Backfiller) point(ctx context.Context, id model.ID, at time.Time) (_ orb.Point, gone bool, _ error) {
	n, err := b.resolver.NodeAt(ctx, id, at)
	if err != nil {
		return orb.Point{}, false, err
	}

	if !n.Info.Visible {
		if b.strictDeleted {
			return orb.Point{}, false, &HistoryError{Type: model.NODE, ID: id, At: at, Deleted: true}
		}

		slog.Debug("Node is deleted at reference time", "id", id, "version", n.Info.Version, "at", at)

		return orb.Point{}, true, nil
	}

	return model.PointOf(n), false, nil
}
