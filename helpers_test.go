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
	"time"

	"m4o.io/changesets/model"
)

var epoch = time.Date(2017, 6, 1, 9, 0, 0, 0, time.UTC)

// at returns the instant m minutes after epoch.
func at(m int) time.Time {
	return epoch.Add(time.Duration(m) * time.Minute)
}

func info(version int32, ts time.Time, visible bool) *model.Info {
	return &model.Info{
		Version:   version,
		UID:       1234,
		Timestamp: ts,
		Changeset: int64(1000 + version),
		User:      "mapper",
		Visible:   visible,
	}
}

func node(id model.ID, version int32, ts time.Time, lat, lon model.Degrees) *model.Node {
	return &model.Node{ID: id, Info: info(version, ts, true), Lat: lat, Lon: lon}
}

func deletedNode(id model.ID, version int32, ts time.Time) *model.Node {
	return &model.Node{ID: id, Info: info(version, ts, false)}
}

func way(id model.ID, version int32, ts time.Time, nodeIDs ...model.ID) *model.Way {
	return &model.Way{ID: id, Info: info(version, ts, true), NodeIDs: nodeIDs}
}

func relation(id model.ID, version int32, ts time.Time, members ...model.Member) *model.Relation {
	return &model.Relation{
		ID:      id,
		Tags:    map[string]string{"type": "multipolygon"},
		Info:    info(version, ts, true),
		Members: members,
	}
}

func change(a model.Action, t model.EntityType, id model.ID, version int32) model.Change {
	return model.Change{Action: a, Ref: model.Ref{Type: t, ID: id, Version: version}}
}
