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
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"m4o.io/changesets/model"
)

// Meta describes the output document.
type Meta struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
	Copyright string `json:"copyright"`
}

// Change is the before and after state of one entity. Old is nil for
// created entities.
type Change struct {
	Action model.Action     `json:"-"`
	Old    model.Backfilled `json:"old,omitempty"`
	New    model.Backfilled `json:"new"`
}

// Result is the backfilled content of a changeset.
type Result struct {
	Meta      Meta             `json:"meta"`
	Changeset *model.Changeset `json:"changeset"`
	Changes   []Change         `json:"changes"`
}

// WriteJSON writes the result as JSON indented with four spaces.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	return enc.Encode(r)
}

// FeatureCollection renders the new state of every changed entity as
// GeoJSON. Entities without geometry, such as deletions, are left out, as
// are the positions of nodes deleted at the entity's timestamp.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	bbox := model.InitialBoundingBox()

	for _, c := range r.Changes {
		g := geometryOf(c.New)
		if g == nil {
			continue
		}

		for _, p := range pointsOf(g) {
			bbox.ExpandWithPoint(p)
		}

		e := c.New.Entity()
		info := e.GetInfo()

		f := geojson.NewFeature(g)
		f.ID = fmt.Sprintf("%s/%d", e.GetType(), e.GetID())
		f.Properties["type"] = e.GetType().String()
		f.Properties["id"] = int64(e.GetID())
		f.Properties["version"] = info.Version
		f.Properties["changeset"] = info.Changeset
		f.Properties["timestamp"] = info.Timestamp
		f.Properties["action"] = c.Action.String()
		f.Properties["tags"] = e.GetTags()

		fc.Append(f)
	}

	if !bbox.Empty() {
		fc.BBox = geojson.NewBBox(bbox.Bound())
	}

	return fc
}

// geometryOf returns the geometry of a backfilled entity, or nil if it has
// none.
func geometryOf(b model.Backfilled) orb.Geometry {
	switch b := b.(type) {
	case model.BackfilledNode:
		if b.Node.Info != nil && !b.Node.Info.Visible {
			return nil
		}

		return b.Point()
	case model.BackfilledWay:
		g := b.Located()
		if len(g) == 0 {
			return nil
		}

		return g
	case model.BackfilledRelation:
		var collection orb.Collection

		for _, m := range b.Members {
			if m.Point != nil {
				collection = append(collection, *m.Point)
				continue
			}

			if g := model.Located(m.Geometry, m.Deleted); len(g) > 0 {
				collection = append(collection, g)
			}
		}

		if len(collection) == 0 {
			return nil
		}

		return collection
	default:
		return nil
	}
}

func pointsOf(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.LineString:
		return g
	case orb.Collection:
		var points []orb.Point
		for _, c := range g {
			points = append(points, pointsOf(c)...)
		}

		return points
	default:
		return nil
	}
}
