// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"errors"
	"fmt"
	"strings"
)

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	// Action is the XAS action name, or "file" for downloads.
	Action     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %d %s", e.Action, e.StatusCode, e.Body)
}

// AsStatusError returns the StatusError in err's chain, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// bodySnippet trims a reply body for inclusion in errors.
func bodySnippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}
