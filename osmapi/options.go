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

package osmapi

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the version 0.6 endpoint of the main OpenStreetMap
	// API.
	DefaultBaseURL = "https://api.openstreetmap.org/api/0.6"

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "m4o.io/changesets"

	// DefaultTimeout bounds a single request, including reading the body.
	DefaultTimeout = 60 * time.Second

	// DefaultRate is the number of requests per second the client issues.
	DefaultRate = 10

	// DefaultBurst is the number of requests that may be issued at once.
	DefaultBurst = 10
)

// options provides optional configuration parameters for Client
// construction.
type options struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	rate       float64
	burst      int
}

// Option configures how we set up the client.
type Option func(*options)

// WithBaseURL sets the API root that endpoint paths are appended to.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for requests. The client's own
// timeout applies; WithTimeout is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit limits the client to rps requests per second with bursts
// of up to burst requests. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rate = rps
		o.burst = max(burst, 1)
	}
}

var defaultOptions = options{
	baseURL:   DefaultBaseURL,
	userAgent: DefaultUserAgent,
	timeout:   DefaultTimeout,
	rate:      DefaultRate,
	burst:     DefaultBurst,
}
