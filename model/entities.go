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

// Package model contains the shared model for OpenStreetMap entity history:
// versioned nodes, ways and relations, changesets, and the backfilled forms
// of entities whose geometry has been resolved at a point in time.
package model

import (
	"fmt"
	"time"
)

// UID is the primary key for a user.
type UID int32

// Info represents information common to Node, Way, and Relation entities.
type Info struct {
	Version   int32
	UID       UID
	Timestamp time.Time
	Changeset int64
	User      string
	Visible   bool
}

// Entity is one historical version of a node, way or relation.
type Entity interface {
	isEntity() // prevents extensions

	GetID() ID

	GetType() EntityType

	GetTags() map[string]string

	GetInfo() *Info
}

// ID is the primary key of an entity.
type ID int64

// Node represents a specific point on the earth's surface defined by its
// latitude and longitude. Each node comprises at least an id number and a
// pair of coordinates.
type Node struct {
	ID   ID
	Tags map[string]string
	Info *Info
	Lat  Degrees
	Lon  Degrees
}

var _ Entity = (*Node)(nil)

func (n *Node) isEntity() {}

func (n *Node) GetID() ID {
	return n.ID
}

func (n *Node) GetType() EntityType {
	return NODE
}

func (n *Node) GetTags() map[string]string {
	return n.Tags
}

func (n *Node) GetInfo() *Info {
	return n.Info
}

// Way is an ordered list of between 2 and 2,000 nodes that define a polyline.
// NodeIDs reference nodes by id only; their coordinates depend on the time
// the way is looked at.
type Way struct {
	ID      ID
	Tags    map[string]string
	Info    *Info
	NodeIDs []ID
}

var _ Entity = (*Way)(nil)

func (w *Way) isEntity() {}

func (w *Way) GetID() ID {
	return w.ID
}

func (w *Way) GetType() EntityType {
	return WAY
}

func (w *Way) GetTags() map[string]string {
	return w.Tags
}

func (w *Way) GetInfo() *Info {
	return w.Info
}

// EntityType is an enumeration of OSM entity types.
type EntityType int32

const (
	// NODE denotes that the member is a node.
	NODE EntityType = iota

	// WAY denotes that the member is a way.
	WAY

	// RELATION denotes that the member is a relation.
	RELATION
)

var entityTypeNames = [...]string{
	NODE:     "node",
	WAY:      "way",
	RELATION: "relation",
}

// String returns the name used for the type by the OSM API.
func (t EntityType) String() string {
	if t < 0 || int(t) >= len(entityTypeNames) {
		return fmt.Sprintf("EntityType(%d)", int32(t))
	}

	return entityTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t EntityType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseEntityType converts an OSM API type name into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	for t, name := range entityTypeNames {
		if name == s {
			return EntityType(t), nil
		}
	}

	return 0, fmt.Errorf("unknown entity type %q", s)
}

// Member represents an entity that is part of a relation.
type Member struct {
	ID   ID
	Type EntityType
	Role string
}

// Relation is a multipurpose data structure that documents a relationship
// between two or more data entities (nodes, ways, and/or other relations).
type Relation struct {
	ID      ID
	Tags    map[string]string
	Info    *Info
	Members []Member
}

var _ Entity = (*Relation)(nil)

func (r *Relation) isEntity() {}

func (r *Relation) GetID() ID {
	return r.ID
}

func (r *Relation) GetType() EntityType {
	return RELATION
}

func (r *Relation) GetTags() map[string]string {
	return r.Tags
}

func (r *Relation) GetInfo() *Info {
	return r.Info
}

// Ref identifies one version of one entity.
type Ref struct {
	Type    EntityType
	ID      ID
	Version int32
}

// RefOf returns the reference to the given entity version.
func RefOf(e Entity) Ref {
	return Ref{Type: e.GetType(), ID: e.GetID(), Version: e.GetInfo().Version}
}

// Previous returns the reference to the version before r.
func (r Ref) Previous() Ref {
	return Ref{Type: r.Type, ID: r.ID, Version: r.Version - 1}
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d/%d", r.Type, r.ID, r.Version)
}
