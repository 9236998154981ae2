// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	mxerrors "mxprobe/cli/internal/errors"
)

// TransportConfig holds HTTP client options.
type TransportConfig struct {
	// Proxy is the http, https or socks5 proxy URL (optional).
	Proxy string
	// Timeout is the total request timeout (default: 30s).
	Timeout time.Duration
	// DialTimeout is the timeout for establishing connections (default: 10s).
	DialTimeout time.Duration
	// TLSHandshakeTimeout is the timeout for the TLS handshake (default: 10s).
	TLSHandshakeTimeout time.Duration
}

// NewTransport creates the client used against the target server.
//
// Certificate verification is always disabled so traffic can run through an
// intercepting proxy, and redirects are returned to the caller instead of
// being followed.
func NewTransport(cfg TransportConfig) (*http.Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = 10 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		DialContext:           dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec
		},
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil || proxyURL.Scheme == "" || proxyURL.Host == "" {
			return nil, mxerrors.New(mxerrors.Config, "invalid proxy URL "+cfg.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}
