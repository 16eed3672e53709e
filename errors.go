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
	"errors"
	"fmt"
	"time"

	"m4o.io/changesets/model"
)

var (
	// ErrNotFound is returned when a changeset, entity or version does not
	// exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrInconsistentHistory is returned when a referenced node or way has
	// no usable version at the time it is referenced.
	ErrInconsistentHistory = errors.New("inconsistent history")

	// ErrMalformedChange is returned for upstream changes that cannot be
	// processed, such as a modification of version 1.
	ErrMalformedChange = errors.New("malformed change")

	// ErrUpstreamUnavailable is returned when the upstream store cannot be
	// reached or answers with an unexpected status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// HistoryError describes an entity that had no usable version at the time
// it was referenced. It unwraps to ErrInconsistentHistory.
type HistoryError struct {
	Type model.EntityType
	ID   model.ID
	At   time.Time

	// Deleted is set when the version valid at At is a deletion.
	Deleted bool
}

func (e *HistoryError) Error() string {
	at := e.At.UTC().Format(time.RFC3339)
	if e.Deleted {
		return fmt.Sprintf("%s %d is deleted at %s", e.Type, e.ID, at)
	}

	return fmt.Sprintf("%s %d has no version at or before %s", e.Type, e.ID, at)
}

func (e *HistoryError) Unwrap() error {
	return ErrInconsistentHistory
}
