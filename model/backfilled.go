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

package model

import (
	"github.com/paulmach/orb"
)

// Backfilled is an entity version whose by-reference geometry has been
// resolved at the entity's own timestamp. It is one of BackfilledNode,
// BackfilledWay or BackfilledRelation.
type Backfilled interface {
	isBackfilled() // prevents extensions

	// Entity returns the entity version that was backfilled.
	Entity() Entity
}

// BackfilledNode is a node, which already carries its coordinates.
type BackfilledNode struct {
	Node *Node
}

var _ Backfilled = BackfilledNode{}

func (BackfilledNode) isBackfilled() {}

func (b BackfilledNode) Entity() Entity {
	return b.Node
}

// Point returns the coordinates of the node.
func (b BackfilledNode) Point() orb.Point {
	return PointOf(b.Node)
}

// BackfilledWay is a way and the coordinates of its nodes. Geometry[i] is
// the location of Way.NodeIDs[i].
type BackfilledWay struct {
	Way      *Way
	Geometry orb.LineString

	// Deleted lists, in increasing order, the positions of Geometry whose
	// node was deleted at the way's timestamp. They hold the zero point.
	Deleted []int
}

// Located returns the geometry without the positions of deleted nodes.
func (b BackfilledWay) Located() orb.LineString {
	return Located(b.Geometry, b.Deleted)
}

var _ Backfilled = BackfilledWay{}

func (BackfilledWay) isBackfilled() {}

func (b BackfilledWay) Entity() Entity {
	return b.Way
}

// ResolvedMember is a relation member together with its resolved geometry.
// Point is set for node members, Geometry for way members and Unresolved
// for relation members.
type ResolvedMember struct {
	Member

	// Point is set for node members that were not deleted at the time.
	Point *orb.Point

	// Geometry is set for way members.
	Geometry orb.LineString

	// Deleted lists the positions of Geometry whose node was deleted at the
	// time. A deleted node member has the single position 0 and no Point.
	Deleted []int

	// Unresolved is set for relation members, which are never expanded.
	Unresolved bool
}

// BackfilledRelation is a relation and the geometry of its members, in
// member order.
type BackfilledRelation struct {
	Relation *Relation
	Members  []ResolvedMember
}

var _ Backfilled = BackfilledRelation{}

func (BackfilledRelation) isBackfilled() {}

func (b BackfilledRelation) Entity() Entity {
	return b.Relation
}

// Located returns g without the positions listed in deleted, which must be
// in increasing order.
func Located(g orb.LineString, deleted []int) orb.LineString {
	if len(deleted) == 0 {
		return g
	}

	out := make(orb.LineString, 0, len(g)-len(deleted))
	for i, p := range g {
		if len(deleted) > 0 && deleted[0] == i {
			deleted = deleted[1:]
			continue
		}

		out = append(out, p)
	}

	return out
}

// PointOf returns the location of a node as an orb.Point.
func PointOf(n *Node) orb.Point {
	return orb.Point{float64(n.Lon), float64(n.Lat)}
}
