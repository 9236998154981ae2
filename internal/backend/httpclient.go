// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/manifest"
	"mxprobe/cli/internal/metrics"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
)

// DefaultSourceIPURL echoes the caller's public address.
const DefaultSourceIPURL = "https://icanhazip.com/"

// maxFileSize caps a single FileDocument download.
const maxFileSize = 512 << 20

// HTTP implements API over the single action endpoint.
// It reads the session on every call and never writes to it; the cookie jar
// absorbs Set-Cookie replies the way a browser's would.
type HTTP struct {
	// sess supplies headers, cookies and transport settings
	sess *session.Session
	// endpoints contains the action and file paths
	endpoints manifest.Endpoints
	// client is the proxy-aware, non-verifying HTTP client
	client *http.Client
	// metrics is optional
	metrics *metrics.Metrics
	// maxFile caps a single download
	maxFile int64
}

// Send posts req to the action endpoint and decodes the JSON reply.
func (h *HTTP) Send(ctx context.Context, req xas.Request) (*xas.Response, error) {
	body, err := xas.EncodeRequest(req)
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "encode request", err)
	}
	action := string(req.Action)
	logging.Logf("backend", "POST %s %s", action, string(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoints.ActionURL(h.sess.BaseURL()), bytes.NewReader(body))
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "build request", err)
	}
	h.setStandardHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := h.do(httpReq)
	if err != nil {
		h.metrics.ObserveAction(action, 0, time.Since(start))
		return nil, mxerrors.Wrap(mxerrors.Transport, action+" request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	h.metrics.ObserveAction(action, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Transport, action+" read failed", err)
	}
	logging.Logf("backend", "%s -> %d (%d bytes)", action, resp.StatusCode, len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Action: action, StatusCode: resp.StatusCode, Body: bodySnippet(raw)}
		// Error replies often carry a JSON envelope; hand it back when it parses.
		out, derr := xas.DecodeResponse(raw)
		if derr != nil {
			return nil, se
		}
		return out, se
	}
	out, err := xas.DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchFile calls GET <file path>?guid=<guid> and returns the raw bytes.
func (h *HTTP) FetchFile(ctx context.Context, guid string) ([]byte, error) {
	u := h.endpoints.FileURL(h.sess.BaseURL()) + "?" + url.Values{"guid": {guid}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "build request", err)
	}
	h.setStandardHeaders(req)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := h.do(req)
	if err != nil {
		h.metrics.ObserveAction("file", 0, time.Since(start))
		return nil, mxerrors.Wrap(mxerrors.Transport, "file request failed", err)
	}
	defer resp.Body.Close()
	h.metrics.ObserveAction("file", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Action: "file", StatusCode: resp.StatusCode, Body: bodySnippet(b)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxFile+1))
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Transport, "file read failed", err)
	}
	if int64(len(data)) > h.maxFile {
		return nil, mxerrors.New(mxerrors.Soft, fmt.Sprintf("file %s exceeds %d bytes", guid, h.maxFile))
	}
	return data, nil
}

// SourceIP calls an IP echo service through the configured proxy and returns
// the address the target would see. Session headers and cookies are not sent.
func (h *HTTP) SourceIP(ctx context.Context, echoURL string) (string, error) {
	if echoURL == "" {
		echoURL = DefaultSourceIPURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, echoURL, nil)
	if err != nil {
		return "", mxerrors.Wrap(mxerrors.Config, "build request", err)
	}
	req.Header.Set("User-Agent", session.DefaultUserAgent)
	resp, err := h.client.Do(req)
	if err != nil {
		return "", mxerrors.Wrap(mxerrors.Transport, "source ip request failed", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", mxerrors.Wrap(mxerrors.Transport, "source ip read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Action: "source-ip", StatusCode: resp.StatusCode, Body: bodySnippet(b)}
	}
	return strings.TrimSpace(string(b)), nil
}

// do sends req with the session's current cookie jar. The jar is looked up
// per call because an identity transition replaces it.
func (h *HTTP) do(req *http.Request) (*http.Response, error) {
	c := *h.client
	c.Jar = h.sess.Jar()
	return c.Do(req)
}

// setStandardHeaders copies the session header map, CSRF token included.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	for k, vals := range h.sess.Header() {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
}
