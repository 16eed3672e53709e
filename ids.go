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
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
)

// ParseChangesetID parses a changeset id, which must be a positive integer.
func ParseChangesetID(s string) (int64, error) {
	return parsePositive[int64](s)
}

func parsePositive[T constraints.Signed](s string) (T, error) {
	var zero T

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return zero, fmt.Errorf("invalid id %q: %w", s, err)
	}

	if v < 1 || int64(T(v)) != v {
		return zero, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}

	return T(v), nil
}
