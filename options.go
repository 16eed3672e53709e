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
)

const (
	// FormatVersion is the OSM API version the output document follows.
	FormatVersion = "0.6"

	// DefaultGenerator identifies this program in the output document.
	DefaultGenerator = "m4o.io/changesets"

	// DefaultCopyright is the attribution required for OpenStreetMap data.
	DefaultCopyright = "The data included in this document is from www.openstreetmap.org. " +
		"The data is made available under ODbL."

	// DefaultConcurrency processes changes one at a time.
	DefaultConcurrency = 1
)

// MemberWayTime selects the instant at which the nodes of a relation's way
// members are resolved.
type MemberWayTime int

const (
	// WayTime resolves member way nodes at the timestamp of the way version
	// that was current for the relation, as if the way had been backfilled
	// on its own.
	WayTime MemberWayTime = iota

	// RelationTime resolves member way nodes at the relation's timestamp.
	RelationTime
)

// ParseMemberWayTime converts "way" or "relation" into a MemberWayTime.
func ParseMemberWayTime(s string) (MemberWayTime, error) {
	switch s {
	case "way", "":
		return WayTime, nil
	case "relation":
		return RelationTime, nil
	default:
		return 0, fmt.Errorf("unknown member way time %q", s)
	}
}

// ProgressFunc is called after each change of a changeset has been
// backfilled. Calls are serialized.
type ProgressFunc func(done, total int)

// options provides optional configuration parameters for Resolver,
// Backfiller and Processor construction.
type options struct {
	generator     string
	copyright     string
	concurrency   int
	historyCache  bool
	memberWayTime MemberWayTime
	strictDeleted bool
	progress      ProgressFunc
}

// Option configures how we set up resolvers, backfillers and processors.
type Option func(*options)

// WithGenerator sets the generator reported in the output meta block.
func WithGenerator(generator string) Option {
	return func(o *options) {
		o.generator = generator
	}
}

// WithCopyright sets the copyright notice reported in the output meta block.
func WithCopyright(copyright string) Option {
	return func(o *options) {
		o.copyright = copyright
	}
}

// WithConcurrency lets you set the number of changes backfilled at once.
// Output order does not depend on it.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = max(n, 1)
	}
}

// WithHistoryCache enables or disables remembering fetched histories for
// the lifetime of a Resolver. Enabled by default.
func WithHistoryCache(enabled bool) Option {
	return func(o *options) {
		o.historyCache = enabled
	}
}

// WithMemberWayTime selects when the nodes of relation way members are
// resolved. The default is WayTime.
func WithMemberWayTime(t MemberWayTime) Option {
	return func(o *options) {
		o.memberWayTime = t
	}
}

// WithStrictDeletedNodes makes a node that is deleted at the time it is
// referenced fail the entity with a *HistoryError. By default such a node
// is kept as a position without a location.
func WithStrictDeletedNodes(strict bool) Option {
	return func(o *options) {
		o.strictDeleted = strict
	}
}

// WithProgress registers a callback reporting processed changes.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// defaultOptions provides a default configuration.
var defaultOptions = options{
	generator:     DefaultGenerator,
	copyright:     DefaultCopyright,
	concurrency:   DefaultConcurrency,
	historyCache:  true,
	memberWayTime: WayTime,
}

func newOptions(opts []Option) options {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
