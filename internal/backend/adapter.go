// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend implements the action envelope: the transport primitive
// every XAS operation routes through. It serializes typed requests to the
// single action endpoint, attaches the session's headers, cookie jar and
// transport settings, and hands the parsed reply back without touching
// session state.
package backend

import (
	"context"

	"mxprobe/cli/internal/xas"
)

// API defines the envelope operations the protocol components depend on.
// Implementations may call a real server or provide mocks for tests.
type API interface {
	// Send posts one action. A non-2xx reply yields *StatusError together
	// with the decoded reply when its body parses; a network failure yields
	// an error of kind transport.
	Send(ctx context.Context, req xas.Request) (*xas.Response, error)
	// FetchFile downloads the binary payload of a FileDocument.
	FetchFile(ctx context.Context, guid string) ([]byte, error)
}
