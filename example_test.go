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

package changesets_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/memstore"
	"m4o.io/changesets/model"
)

func Example() {
	ts := time.Date(2017, 6, 1, 9, 0, 0, 0, time.UTC)
	info := func(version int32, ts time.Time) *model.Info {
		return &model.Info{Version: version, Timestamp: ts, Visible: true}
	}

	// any changesets.Store will do, such as an osmapi.Client
	store := memstore.New()
	store.Add(
		&model.Node{ID: 1, Info: info(1, ts), Lat: 51.5072178, Lon: -0.1275862},
		&model.Node{ID: 2, Info: info(1, ts), Lat: 51.5080000, Lon: -0.1280000},
		&model.Way{ID: 10, Info: info(1, ts.Add(time.Minute)), NodeIDs: []model.ID{1}},
		&model.Way{ID: 10, Info: info(2, ts.Add(time.Hour)), NodeIDs: []model.ID{1, 2}},
	)
	store.AddChangeset(&model.Changeset{ID: 1000, CreatedAt: ts.Add(time.Hour)},
		model.Change{Action: model.MODIFY, Ref: model.Ref{Type: model.WAY, ID: 10, Version: 2}})

	r, err := changesets.NewProcessor(store).Process(context.Background(), 1000)
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range r.Changes {
		switch b := c.New.(type) {
		case model.BackfilledNode:
			// Process node b.
		case model.BackfilledWay:
			old := c.Old.(model.BackfilledWay)
			fmt.Printf("%s way %d: %v -> %v\n", c.Action, b.Way.ID, old.Geometry, b.Geometry)
		case model.BackfilledRelation:
			// Process relation b.
		default:
			log.Fatalf("unknown type %T\n", b)
		}
	}

	// Output:
	// modify way 10: [[-0.1275862 51.5072178]] -> [[-0.1275862 51.5072178] [-0.128 51.508]]
}
