// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest describes the endpoint paths of an XAS server.
// Most deployments serve actions at /xas/ and files at /file, but reverse
// proxies sometimes mount the runtime under a prefix; a profile can override
// either path.
package manifest

import (
	"strings"
)

const (
	// DefaultActionPath is the single action endpoint.
	DefaultActionPath = "/xas/"
	// DefaultFilePath serves FileDocument contents by guid.
	DefaultFilePath = "/file"
)

// Endpoints contains the URL paths appended to the base URL.
type Endpoints struct {
	Action string `yaml:"action,omitempty"` // e.g., "/xas/"
	File   string `yaml:"file,omitempty"`   // e.g., "/file"
}

// Default returns the stock endpoint paths.
func Default() Endpoints {
	return Endpoints{Action: DefaultActionPath, File: DefaultFilePath}
}

// WithDefaults fills empty paths with the stock ones and makes every path
// start with a slash.
func (e Endpoints) WithDefaults() Endpoints {
	if strings.TrimSpace(e.Action) == "" {
		e.Action = DefaultActionPath
	}
	if strings.TrimSpace(e.File) == "" {
		e.File = DefaultFilePath
	}
	e.Action = ensureSlash(strings.TrimSpace(e.Action))
	e.File = ensureSlash(strings.TrimSpace(e.File))
	return e
}

// ActionURL joins the base URL and the action path.
func (e Endpoints) ActionURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + e.WithDefaults().Action
}

// FileURL joins the base URL and the file path.
func (e Endpoints) FileURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + e.WithDefaults().File
}

func ensureSlash(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}
