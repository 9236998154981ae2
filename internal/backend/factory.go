// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"

	"mxprobe/cli/internal/manifest"
	"mxprobe/cli/internal/metrics"
	"mxprobe/cli/internal/session"
)

// Option customises an HTTP envelope.
type Option func(*HTTP)

// WithHTTPClient replaces the transport-built client (tests use httptest clients).
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithMetrics records every action round-trip.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTP) { h.metrics = m }
}

// New creates the envelope for sess using its proxy and timeout settings.
func New(sess *session.Session, endpoints manifest.Endpoints, opts ...Option) (*HTTP, error) {
	h := &HTTP{
		sess:      sess,
		endpoints: endpoints.WithDefaults(),
		maxFile:   maxFileSize,
	}
	for _, o := range opts {
		o(h)
	}
	if h.client == nil {
		c, err := NewTransport(TransportConfig{Proxy: sess.Proxy(), Timeout: sess.Timeout()})
		if err != nil {
			return nil, err
		}
		h.client = c
	}
	return h, nil
}
