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

// Package server serves backfilled changesets over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"m4o.io/changesets"
	"m4o.io/changesets/internal/metrics"
)

// Processor backfills a changeset.
type Processor interface {
	Process(ctx context.Context, id int64) (*changesets.Result, error)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// Handlers holds the HTTP handlers of the service.
type Handlers struct {
	processor Processor
}

// NewHandlers returns handlers that backfill changesets with p.
func NewHandlers(p Processor) *Handlers {
	return &Handlers{processor: p}
}

// HandleChangeset handles GET /changesets/:id.
//
// Response:
//
//	200 OK: the backfilled changeset
//	400 Bad Request: id is not a positive integer
//	404 Not Found: the changeset or an entity version does not exist
//	422 Unprocessable Entity: the changeset history is inconsistent
//	502 Bad Gateway: the OpenStreetMap API failed
func (h *Handlers) HandleChangeset(c *gin.Context) {
	r, ok := h.process(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		abort(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// HandleGeoJSON handles GET /changesets/:id/geojson with the same status
// codes as HandleChangeset.
func (h *Handlers) HandleGeoJSON(c *gin.Context) {
	r, ok := h.process(c)
	if !ok {
		return
	}

	b, err := json.Marshal(r.FeatureCollection())
	if err != nil {
		abort(c, err)
		return
	}

	c.Data(http.StatusOK, "application/geo+json", b)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// process backfills the changeset named by the id path parameter. On
// failure the error response has been written and false is returned.
func (h *Handlers) process(c *gin.Context) (*changesets.Result, bool) {
	logger := slog.With("request_id", requestID(c))

	id, err := changesets.ParseChangesetID(c.Param("id"))
	if err != nil {
		logger.Warn("Invalid changeset id", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_ID",
		})

		return nil, false
	}

	start := time.Now()
	r, err := h.processor.Process(c.Request.Context(), id)
	metrics.ObserveProcess(start, err)

	if err != nil {
		logger.Error("Processing failed", "id", id, "error", err)
		abort(c, err)

		return nil, false
	}

	logger.Info("Processed changeset", "id", id, "changes", len(r.Changes), "elapsed", time.Since(start))

	return r, true
}

func abort(c *gin.Context, err error) {
	status, code := statusOf(err)
	c.JSON(status, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// statusOf maps an error to an HTTP status and an error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, changesets.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, changesets.ErrInconsistentHistory):
		return http.StatusUnprocessableEntity, "INCONSISTENT_HISTORY"
	case errors.Is(err, changesets.ErrMalformedChange):
		return http.StatusUnprocessableEntity, "MALFORMED_CHANGE"
	case errors.Is(err, changesets.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
