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

// Package metrics exposes Prometheus metrics for changeset processing and
// for the upstream store it reads from.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"m4o.io/changesets"
	"m4o.io/changesets/model"
)

const namespace = "changesets"

var (
	// storeRequests counts store calls.
	// Labels: operation, outcome
	storeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "requests_total",
		Help:      "Total store requests by operation and outcome",
	}, []string{"operation", "outcome"})

	// storeLatency measures the duration of store calls.
	// Labels: operation
	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "request_duration_seconds",
		Help:      "Store request latency in seconds",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	// processed counts processed changesets.
	// Labels: outcome
	processed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "changesets_total",
		Help:      "Total changesets processed by outcome",
	}, []string{"outcome"})

	// processLatency measures the time taken to backfill a whole changeset.
	processLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "duration_seconds",
		Help:      "Changeset processing latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)

// Outcome classifies err for use as a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, changesets.ErrNotFound):
		return "not_found"
	case errors.Is(err, changesets.ErrInconsistentHistory):
		return "inconsistent"
	case errors.Is(err, changesets.ErrMalformedChange):
		return "malformed"
	case errors.Is(err, changesets.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// ObserveProcess records one changeset processed since start.
func ObserveProcess(start time.Time, err error) {
	processed.WithLabelValues(Outcome(err)).Inc()
	processLatency.Observe(time.Since(start).Seconds())
}

// Store is a changesets.Store that records the count, outcome and latency
// of every call made to the store it wraps.
type Store struct {
	next changesets.Store
}

var _ changesets.Store = (*Store)(nil)

// Instrument wraps s.
func Instrument(s changesets.Store) *Store {
	return &Store{next: s}
}

func observe(op string, start time.Time, err error) {
	storeRequests.WithLabelValues(op, Outcome(err)).Inc()
	storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Store) Changeset(ctx context.Context, id int64) (cs *model.Changeset, err error) {
	defer func(start time.Time) { observe("changeset", start, err) }(time.Now())

	return s.next.Changeset(ctx, id)
}

func (s *Store) ChangesetChanges(ctx context.Context, id int64) (changes []model.Change, err error) {
	defer func(start time.Time) { observe("changes", start, err) }(time.Now())

	return s.next.ChangesetChanges(ctx, id)
}

func (s *Store) NodeHistory(ctx context.Context, id model.ID) (history []*model.Node, err error) {
	defer func(start time.Time) { observe("node_history", start, err) }(time.Now())

	return s.next.NodeHistory(ctx, id)
}

func (s *Store) WayHistory(ctx context.Context, id model.ID) (history []*model.Way, err error) {
	defer func(start time.Time) { observe("way_history", start, err) }(time.Now())

	return s.next.WayHistory(ctx, id)
}

func (s *Store) Entity(ctx context.Context, ref model.Ref) (e model.Entity, err error) {
	defer func(start time.Time) { observe("entity", start, err) }(time.Now())

	return s.next.Entity(ctx, ref)
}
