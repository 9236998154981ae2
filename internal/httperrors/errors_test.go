// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnrelated},
		{"status", mxerrors.Wrap(mxerrors.Fatal, "login", &backend.StatusError{Action: "login", StatusCode: 401}), CategoryStatus},
		{"deadline", mxerrors.Wrap(mxerrors.Transport, "send", context.DeadlineExceeded), CategoryTimeout},
		{"dns", &url.Error{Op: "Post", URL: "https://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, CategoryDNS},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), CategoryRefused},
		{"proxy", &url.Error{Op: "Post", URL: "https://x", Err: errors.New("proxyconnect tcp: EOF")}, CategoryProxy},
		{"tls", errors.New("remote error: tls: bad certificate"), CategoryTLS},
		{"transport", mxerrors.Wrap(mxerrors.Transport, "send", errors.New("EOF")), CategoryNetwork},
		{"other", errors.New("bad input"), CategoryUnrelated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFormatNetworkError(t *testing.T) {
	var buf bytes.Buffer
	err := &backend.StatusError{Action: "retrieve_by_xpath", StatusCode: 403}
	assert.Same(t, err, FormatNetworkError(&buf, err, "app.example.com", "listing objects"))
	assert.Contains(t, buf.String(), "app.example.com answered 403 to retrieve_by_xpath while listing objects")

	buf.Reset()
	plain := errors.New("bad input")
	assert.Equal(t, plain, FormatNetworkError(&buf, plain, "h", "x"))
	assert.Empty(t, buf.String())
	assert.Nil(t, FormatNetworkError(&buf, nil, "h", "x"))
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "app.example.com:8080", ExtractHostFromURL("https://app.example.com:8080"))
	assert.Equal(t, "server", ExtractHostFromURL("::"))
}
