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

// Package changesets reconstructs the before and after state of every
// entity an OpenStreetMap changeset touched.
//
// Ways and relations do not carry coordinates; their geometry is derived by
// resolving, for every referenced node, the version that was current at the
// referencing entity's timestamp. A Resolver answers "which version of this
// entity was valid at time t", a Backfiller attaches resolved geometry to a
// single entity version, and a Processor assembles a whole changeset into a
// Result.
//
// Upstream data is supplied by a Store; package osmapi provides one backed
// by the OpenStreetMap API.
package changesets

import (
	"context"

	"m4o.io/changesets/model"
)

// Store is the upstream source of changesets and entity histories.
// Implementations must return ErrNotFound (possibly wrapped) for unknown
// changesets, entities or versions, and ErrUpstreamUnavailable for transport
// failures.
type Store interface {
	// Changeset returns the metadata of a changeset.
	Changeset(ctx context.Context, id int64) (*model.Changeset, error)

	// ChangesetChanges returns the changes of a changeset in the order the
	// upstream reported them.
	ChangesetChanges(ctx context.Context, id int64) ([]model.Change, error)

	// NodeHistory returns every version of a node, ordered by version.
	NodeHistory(ctx context.Context, id model.ID) ([]*model.Node, error)

	// WayHistory returns every version of a way, ordered by version.
	WayHistory(ctx context.Context, id model.ID) ([]*model.Way, error)

	// Entity returns one version of a node, way or relation.
	Entity(ctx context.Context, ref model.Ref) (model.Entity, error)
}
