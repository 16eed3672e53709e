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

// Package osmapi reads changesets and entity histories from the
// OpenStreetMap API and serves them as a changesets.Store.
package osmapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"m4o.io/changesets"
	"m4o.io/changesets/model"
)

// Client is a read-only OpenStreetMap API client. Requests are rate
// limited and never retried. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

var _ changesets.Store = (*Client)(nil)

// New returns a client configured with options.
func New(opts ...Option) *Client {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}

	limit := rate.Inf
	if o.rate > 0 {
		limit = rate.Limit(o.rate)
	}

	return &Client{
		baseURL:   strings.TrimSuffix(o.baseURL, "/"),
		http:      hc,
		userAgent: o.userAgent,
		limiter:   rate.NewLimiter(limit, o.burst),
	}
}

// Changeset returns the metadata of changeset id.
func (c *Client) Changeset(ctx context.Context, id int64) (*model.Changeset, error) {
	var doc osmDocument
	if err := c.get(ctx, fmt.Sprintf("/changeset/%d", id), decodeDocument(&doc)); err != nil {
		return nil, err
	}

	if len(doc.Changesets) == 0 {
		return nil, fmt.Errorf("changeset %d: %w", id, changesets.ErrNotFound)
	}

	return doc.Changesets[0].toModel()
}

// ChangesetChanges returns the changes of changeset id in the order the
// download lists them.
func (c *Client) ChangesetChanges(ctx context.Context, id int64) ([]model.Change, error) {
	var changes []model.Change

	err := c.get(ctx, fmt.Sprintf("/changeset/%d/download", id), func(r io.Reader) error {
		var err error
		changes, err = decodeChanges(r)

		return err
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// NodeHistory returns every version of node id, oldest first.
func (c *Client) NodeHistory(ctx context.Context, id model.ID) ([]*model.Node, error) {
	doc, err := c.history(ctx, model.NODE, id)
	if err != nil {
		return nil, err
	}

	history := make([]*model.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		if history[i], err = doc.Nodes[i].toModel(); err != nil {
			return nil, err
		}
	}

	return sortByVersion(history), nil
}

// WayHistory returns every version of way id, oldest first.
func (c *Client) WayHistory(ctx context.Context, id model.ID) ([]*model.Way, error) {
	doc, err := c.history(ctx, model.WAY, id)
	if err != nil {
		return nil, err
	}

	history := make([]*model.Way, len(doc.Ways))
	for i := range doc.Ways {
		history[i] = doc.Ways[i].toModel()
	}

	return sortByVersion(history), nil
}

// Entity returns the referenced version of a node, way or relation.
func (c *Client) Entity(ctx context.Context, ref model.Ref) (model.Entity, error) {
	var doc osmDocument
	path := fmt.Sprintf("/%s/%d/%d", ref.Type, ref.ID, ref.Version)

	if err := c.get(ctx, path, decodeDocument(&doc)); err != nil {
		return nil, err
	}

	entities, err := doc.entities()
	if err != nil {
		return nil, err
	}

	for _, e := range entities {
		if model.RefOf(e) == ref {
			return e, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", ref, changesets.ErrNotFound)
}

func (c *Client) history(ctx context.Context, t model.EntityType, id model.ID) (*osmDocument, error) {
	var doc osmDocument
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/history", t, id), decodeDocument(&doc)); err != nil {
		return nil, err
	}

	return &doc, nil
}

// get issues a GET request for path and hands the body of a successful
// response to decode.
func (c *Client) get(ctx context.Context, path string, decode func(io.Reader) error) error {
	url := c.baseURL + path

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml")

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("GET %s: %w", url, ctx.Err())
		}

		return fmt.Errorf("%w: GET %s: %w", changesets.ErrUpstreamUnavailable, url, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	slog.Debug("Requested", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return fmt.Errorf("GET %s: %s: %w", url, resp.Status, changesets.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: GET %s: %s", changesets.ErrUpstreamUnavailable, url, resp.Status)
	}

	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}

	return nil
}

func decodeDocument(doc *osmDocument) func(io.Reader) error {
	return func(r io.Reader) error {
		if err := xml.NewDecoder(r).Decode(doc); err != nil {
			return fmt.Errorf("%w: decoding response: %w", changesets.ErrUpstreamUnavailable, err)
		}

		return nil
	}
}
