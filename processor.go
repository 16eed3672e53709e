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
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/destel/rill"

	"m4o.io/changesets/model"
)

// Processor assembles the full before and after state of changesets. It
// holds no per-request state and is safe for concurrent use.
type Processor struct {
	store Store
	opts  []Option
	cfg   options
}

// NewProcessor returns a processor, configured with options, that reads
// from store.
func NewProcessor(store Store, opts ...Option) *Processor {
	return &Processor{
		store: store,
		opts:  opts,
		cfg:   newOptions(opts),
	}
}

// Process backfills every change of changeset id. Changes are returned in
// the order the store reported them. The first failure aborts the whole
// changeset; no partial result is returned. With WithConcurrency, changes
// in flight at that point are abandoned rather than awaited.
func (p *Processor) Process(ctx context.Context, id int64) (*Result, error) {
	cs, err := p.store.Changeset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching changeset %d: %w", id, err)
	}

	changes, err := p.store.ChangesetChanges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching changeset %d changes: %w", id, err)
	}

	slog.Info("Processing changeset", "id", id, "changes", len(changes))

	// histories are shared between the changes of one changeset only
	backfiller := NewBackfiller(NewResolver(p.store, p.opts...), p.opts...)

	var out []Change
	if p.cfg.concurrency <= 1 {
		out, err = p.sequential(ctx, backfiller, changes)
	} else {
		out, err = p.concurrent(ctx, backfiller, changes)
	}

	if err != nil {
		return nil, fmt.Errorf("changeset %d: %w", id, err)
	}

	return &Result{
		Meta: Meta{
			Version:   FormatVersion,
			Generator: p.cfg.generator,
			Copyright: p.cfg.copyright,
		},
		Changeset: cs,
		Changes:   out,
	}, nil
}

func (p *Processor) sequential(ctx context.Context, b *Backfiller, changes []model.Change) ([]Change, error) {
	report := p.reporter(len(changes))
	out := make([]Change, 0, len(changes))

	for _, c := range changes {
		change, err := p.change(ctx, b, c)
		if err != nil {
			return nil, err
		}

		out = append(out, change)
		report()
	}

	return out, nil
}

// concurrent backfills up to the configured number of changes at once.
// OrderedMap keeps the output in input order. On the first error the
// changes still in flight are abandoned, not awaited: their context is
// canceled and their results are discarded in the background, so a store
// that ignores ctx may keep working after Process has returned.
func (p *Processor) concurrent(ctx context.Context, b *Backfiller, changes []model.Change) ([]Change, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	report := p.reporter(len(changes))

	in := rill.FromSlice(changes, nil)
	results := rill.OrderedMap(in, p.cfg.concurrency, func(c model.Change) (Change, error) {
		change, err := p.change(ctx, b, c)
		if err == nil {
			report()
		}

		return change, err
	})

	out, err := rill.ToSlice(results)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []Change{}
	}

	return out, nil
}

// change backfills the previous version of modified and deleted entities
// as Old and the reported version as New.
func (p *Processor) change(ctx context.Context, b *Backfiller, c model.Change) (Change, error) {
	out := Change{Action: c.Action}

	if c.Action.HasPrevious() {
		prev := c.Ref.Previous()
		if prev.Version < 1 {
			return out, fmt.Errorf("%w: %s of %s has no previous version", ErrMalformedChange, c.Action, c.Ref)
		}

		old, err := p.backfill(ctx, b, prev)
		if err != nil {
			return out, err
		}

		out.Old = old
	}

	bf, err := p.backfill(ctx, b, c.Ref)
	if err != nil {
		return out, err
	}

	out.New = bf

	return out, nil
}

func (p *Processor) backfill(ctx context.Context, b *Backfiller, ref model.Ref) (model.Backfilled, error) {
	e, err := p.store.Entity(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}

	bf, err := b.Backfill(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("backfilling %s: %w", ref, err)
	}

	return bf, nil
}

// reporter returns a function counting completed changes and forwarding
// the count to the progress callback, if any.
func (p *Processor) reporter(total int) func() {
	if p.cfg.progress == nil {
		return func() {}
	}

	var (
		mu   sync.Mutex
		done int
	)

	return func() {
		mu.Lock()
		defer mu.Unlock()

		done++
		p.cfg.progress(done, total)
	}
}
