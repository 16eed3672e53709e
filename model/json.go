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
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// entityJSON holds the fields shared by every backfilled entity, in output
// order.
type entityJSON struct {
	ID        ID                `json:"id"`
	Version   int32             `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Changeset int64             `json:"changeset"`
	Visible   bool              `json:"visible"`
	User      string            `json:"user"`
	UID       UID               `json:"uid"`
	Tags      map[string]string `json:"tags"`
}

func newEntityJSON(e Entity) entityJSON {
	info := e.GetInfo()
	if info == nil {
		info = &Info{}
	}

	return entityJSON{
		ID:        e.GetID(),
		Version:   info.Version,
		Timestamp: info.Timestamp,
		Changeset: info.Changeset,
		Visible:   info.Visible,
		User:      info.User,
		UID:       info.UID,
		Tags:      nonNilTags(e.GetTags()),
	}
}

type nodeJSON struct {
	entityJSON
	Lat *Degrees `json:"lat,omitempty"`
	Lon *Degrees `json:"lon,omitempty"`
}

// MarshalJSON renders the node; deleted versions have no coordinates.
func (b BackfilledNode) MarshalJSON() ([]byte, error) {
	v := nodeJSON{entityJSON: newEntityJSON(b.Node)}
	if b.Node.Info == nil || b.Node.Info.Visible {
		v.Lat, v.Lon = &b.Node.Lat, &b.Node.Lon
	}

	return json.Marshal(v)
}

// position is a [lon, lat] pair; both are null for deleted nodes.
type position [2]*float64

func positions(g orb.LineString, deleted []int) []position {
	out := make([]position, len(g))
	for i := range g {
		p := g[i]
		out[i] = position{&p[0], &p[1]}
	}

	for _, i := range deleted {
		out[i] = position{}
	}

	return out
}

type wayJSON struct {
	entityJSON
	Nodes    []ID       `json:"nodes"`
	Geometry []position `json:"geometry"`
}

// MarshalJSON renders the way; nodes deleted at the way's timestamp have
// a null position.
func (b BackfilledWay) MarshalJSON() ([]byte, error) {
	v := wayJSON{
		entityJSON: newEntityJSON(b.Way),
		Nodes:      b.Way.NodeIDs,
		Geometry:   positions(b.Geometry, b.Deleted),
	}

	if v.Nodes == nil {
		v.Nodes = []ID{}
	}

	return json.Marshal(v)
}

type memberJSON struct {
	Type       EntityType  `json:"type"`
	Ref        ID          `json:"ref"`
	Role       string      `json:"role"`
	Lat        *Degrees    `json:"lat,omitempty"`
	Lon        *Degrees    `json:"lon,omitempty"`
	Geometry   *[]position `json:"geometry,omitempty"`
	Deleted    bool        `json:"deleted,omitempty"`
	Unresolved bool        `json:"unresolved,omitempty"`
}

func (m ResolvedMember) MarshalJSON() ([]byte, error) {
	v := memberJSON{
		Type:       m.Type,
		Ref:        m.ID,
		Role:       m.Role,
		Unresolved: m.Unresolved,
	}

	if m.Point != nil {
		lat, lon := Degrees(m.Point.Lat()), Degrees(m.Point.Lon())
		v.Lat, v.Lon = &lat, &lon
	}

	if m.Type == NODE && len(m.Deleted) > 0 {
		v.Deleted = true
	}

	if m.Type == WAY && !m.Unresolved {
		g := positions(m.Geometry, m.Deleted)
		v.Geometry = &g
	}

	return json.Marshal(v)
}

type relationJSON struct {
	entityJSON
	Members []ResolvedMember `json:"members"`
}

func (b BackfilledRelation) MarshalJSON() ([]byte, error) {
	v := relationJSON{
		entityJSON: newEntityJSON(b.Relation),
		Members:    b.Members,
	}

	if v.Members == nil {
		v.Members = []ResolvedMember{}
	}

	return json.Marshal(v)
}

type changesetJSON struct {
	ID        int64             `json:"id"`
	User      string            `json:"user"`
	UID       UID               `json:"uid"`
	CreatedAt time.Time         `json:"created_at"`
	ClosedAt  *time.Time        `json:"closed_at"`
	Open      bool              `json:"open"`
	MinLat    *Degrees          `json:"min_lat"`
	MinLon    *Degrees          `json:"min_lon"`
	MaxLat    *Degrees          `json:"max_lat"`
	MaxLon    *Degrees          `json:"max_lon"`
	Tags      map[string]string `json:"tags"`
}

// MarshalJSON flattens the bounding box into min/max latitude and longitude
// fields, which are null for changesets without a bounding box.
func (c *Changeset) MarshalJSON() ([]byte, error) {
	v := changesetJSON{
		ID:        c.ID,
		User:      c.User,
		UID:       c.UID,
		CreatedAt: c.CreatedAt,
		ClosedAt:  c.ClosedAt,
		Open:      c.Open,
		Tags:      nonNilTags(c.Tags),
	}

	if b := c.BoundingBox; b != nil {
		v.MinLat, v.MinLon = &b.Bottom, &b.Left
		v.MaxLat, v.MaxLon = &b.Top, &b.Right
	}

	return json.Marshal(v)
}

func (c *Changeset) UnmarshalJSON(data []byte) error {
	var v changesetJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*c = Changeset{
		ID:        v.ID,
		User:      v.User,
		UID:       v.UID,
		CreatedAt: v.CreatedAt,
		ClosedAt:  v.ClosedAt,
		Open:      v.Open,
		Tags:      v.Tags,
	}

	if v.MinLat != nil && v.MinLon != nil && v.MaxLat != nil && v.MaxLon != nil {
		c.BoundingBox = &BoundingBox{Top: *v.MaxLat, Left: *v.MinLon, Bottom: *v.MinLat, Right: *v.MaxLon}
	}

	return nil
}

func nonNilTags(tags map[string]string) map[string]string {
	if tags == nil {
		return map[string]string{}
	}

	return tags
}
