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

package osmapi

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"slices"
	"time"

	"m4o.io/changesets"
	"m4o.io/changesets/model"
)

// osmDocument is the <osm> root of every API response other than
// changeset downloads.
type osmDocument struct {
	XMLName    xml.Name       `xml:"osm"`
	Generator  string         `xml:"generator,attr"`
	Changesets []xmlChangeset `xml:"changeset"`
	Nodes      []xmlNode      `xml:"node"`
	Ways       []xmlWay       `xml:"way"`
	Relations  []xmlRelation  `xml:"relation"`
}

type xmlTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

type xmlChangeset struct {
	ID        int64      `xml:"id,attr"`
	CreatedAt time.Time  `xml:"created_at,attr"`
	ClosedAt  *time.Time `xml:"closed_at,attr"`
	Open      bool       `xml:"open,attr"`
	User      string     `xml:"user,attr"`
	UID       int32      `xml:"uid,attr"`
	MinLat    string     `xml:"min_lat,attr"`
	MinLon    string     `xml:"min_lon,attr"`
	MaxLat    string     `xml:"max_lat,attr"`
	MaxLon    string     `xml:"max_lon,attr"`
	Tags      []xmlTag   `xml:"tag"`
}

// xmlElement holds the attributes shared by nodes, ways and relations.
type xmlElement struct {
	ID        int64     `xml:"id,attr"`
	Version   int32     `xml:"version,attr"`
	Changeset int64     `xml:"changeset,attr"`
	Timestamp time.Time `xml:"timestamp,attr"`
	User      string    `xml:"user,attr"`
	UID       int32     `xml:"uid,attr"`
	Visible   *bool     `xml:"visible,attr"`
	Tags      []xmlTag  `xml:"tag"`
}

type xmlNode struct {
	xmlElement
	Lat string `xml:"lat,attr"`
	Lon string `xml:"lon,attr"`
}

type xmlNd struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlWay struct {
	xmlElement
	Nodes []xmlNd `xml:"nd"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type xmlRelation struct {
	xmlElement
	Members []xmlMember `xml:"member"`
}

func tagsOf(tags []xmlTag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}

	return m
}

func (e *xmlElement) info() *model.Info {
	// elements are visible unless the API says otherwise
	visible := e.Visible == nil || *e.Visible

	return &model.Info{
		Version:   e.Version,
		UID:       model.UID(e.UID),
		Timestamp: e.Timestamp.UTC(),
		Changeset: e.Changeset,
		User:      e.User,
		Visible:   visible,
	}
}

// location parses a latitude and longitude attribute pair. ok is false when
// either attribute is absent, as for deleted nodes and empty changesets.
func location(lat, lon string) (_ model.Degrees, _ model.Degrees, ok bool, err error) {
	if lat == "" || lon == "" {
		return 0, 0, false, nil
	}

	la, err := model.ParseDegrees(lat)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: latitude: %w", changesets.ErrUpstreamUnavailable, err)
	}

	lo, err := model.ParseDegrees(lon)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: longitude: %w", changesets.ErrUpstreamUnavailable, err)
	}

	if !model.World.Contains(la, lo) {
		return 0, 0, false, fmt.Errorf("%w: location (%s, %s) is off the map", changesets.ErrUpstreamUnavailable, lat, lon)
	}

	return la, lo, true, nil
}

func (c *xmlChangeset) toModel() (*model.Changeset, error) {
	cs := &model.Changeset{
		ID:        c.ID,
		User:      c.User,
		UID:       model.UID(c.UID),
		CreatedAt: c.CreatedAt.UTC(),
		Open:      c.Open,
		Tags:      tagsOf(c.Tags),
	}

	if c.ClosedAt != nil {
		closed := c.ClosedAt.UTC()
		cs.ClosedAt = &closed
	}

	bottom, left, ok, err := location(c.MinLat, c.MinLon)
	if err != nil {
		return nil, fmt.Errorf("changeset %d: %w", c.ID, err)
	}

	top, right, okMax, err := location(c.MaxLat, c.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("changeset %d: %w", c.ID, err)
	}

	if ok && okMax {
		cs.BoundingBox = &model.BoundingBox{Top: top, Left: left, Bottom: bottom, Right: right}
	}

	return cs, nil
}

func (n *xmlNode) toModel() (*model.Node, error) {
	node := &model.Node{
		ID:   model.ID(n.ID),
		Tags: tagsOf(n.Tags),
		Info: n.info(),
	}

	lat, lon, ok, err := location(n.Lat, n.Lon)
	if err != nil {
		return nil, fmt.Errorf("node %d v%d: %w", n.ID, n.Version, err)
	}

	if ok {
		node.Lat, node.Lon = lat, lon
	}

	return node, nil
}

func (w *xmlWay) toModel() *model.Way {
	ids := make([]model.ID, len(w.Nodes))
	for i, nd := range w.Nodes {
		ids[i] = model.ID(nd.Ref)
	}

	return &model.Way{
		ID:      model.ID(w.ID),
		Tags:    tagsOf(w.Tags),
		Info:    w.info(),
		NodeIDs: ids,
	}
}

func (r *xmlRelation) toModel() (*model.Relation, error) {
	members := make([]model.Member, len(r.Members))
	for i, m := range r.Members {
		t, err := model.ParseEntityType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: relation %d member %d: %w", changesets.ErrMalformedChange, r.ID, i, err)
		}

		members[i] = model.Member{ID: model.ID(m.Ref), Type: t, Role: m.Role}
	}

	return &model.Relation{
		ID:      model.ID(r.ID),
		Tags:    tagsOf(r.Tags),
		Info:    r.info(),
		Members: members,
	}, nil
}

// entities returns every node, way and relation of the document.
func (d *osmDocument) entities() ([]model.Entity, error) {
	entities := make([]model.Entity, 0, len(d.Nodes)+len(d.Ways)+len(d.Relations))

	for i := range d.Nodes {
		n, err := d.Nodes[i].toModel()
		if err != nil {
			return nil, err
		}

		entities = append(entities, n)
	}

	for i := range d.Ways {
		entities = append(entities, d.Ways[i].toModel())
	}

	for i := range d.Relations {
		r, err := d.Relations[i].toModel()
		if err != nil {
			return nil, err
		}

		entities = append(entities, r)
	}

	return entities, nil
}

func sortByVersion[E model.Entity](history []E) []E {
	slices.SortStableFunc(history, func(a, b E) int {
		return cmp.Compare(a.GetInfo().Version, b.GetInfo().Version)
	})

	return history
}
