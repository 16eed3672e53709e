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
	"fmt"
	"time"
)

// Action is what a changeset did to an entity.
type Action int

const (
	// CREATE denotes that the entity was created.
	CREATE Action = iota

	// MODIFY denotes that the entity was modified.
	MODIFY

	// DELETE denotes that the entity was deleted.
	DELETE
)

var actionNames = [...]string{
	CREATE: "create",
	MODIFY: "modify",
	DELETE: "delete",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}

	return actionNames[a]
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// HasPrevious reports whether the action replaces an earlier version.
func (a Action) HasPrevious() bool {
	return a == MODIFY || a == DELETE
}

// ParseAction converts an osmChange block name into an Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return Action(a), nil
		}
	}

	return 0, fmt.Errorf("unknown action %q", s)
}

// Change is a single entry of a changeset download: the action and the
// entity version it produced.
type Change struct {
	Action Action
	Ref    Ref
}

// Changeset is the metadata of a changeset.
type Changeset struct {
	ID        int64
	User      string
	UID       UID
	CreatedAt time.Time
	ClosedAt  *time.Time
	Open      bool

	// BoundingBox is nil for changesets without any change.
	BoundingBox *BoundingBox

	Tags map[string]string
}
