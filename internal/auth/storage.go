// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"

	"github.com/go-json-experiment/json"

	"mxprobe/cli/internal/keychain"
	"mxprobe/cli/internal/logging"
)

// HeaderStore persists captured headers per target host.
// *keychain.Manager implements it.
type HeaderStore interface {
	SaveCapturedHeaders(host string, data []byte) error
	LoadCapturedHeaders(host string) ([]byte, error)
	ClearCapturedHeaders(host string) error
}

// SaveHeaders stores headers for host. An empty map clears them.
func SaveHeaders(store HeaderStore, host string, headers map[string]string) error {
	if len(headers) == 0 {
		return ClearHeaders(store, host)
	}
	b, err := json.Marshal(headers, json.Deterministic(true))
	if err != nil {
		return err
	}
	logging.Logf("auth.storage", "saving %d captured headers for %s", len(headers), host)
	return store.SaveCapturedHeaders(host, b)
}

// LoadHeaders reads the headers captured for host. Missing state yields nil.
func LoadHeaders(store HeaderStore, host string) (map[string]string, error) {
	data, err := store.LoadCapturedHeaders(host)
	if errors.Is(err, keychain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logging.Logf("auth.storage", "LoadCapturedHeaders failed: %v", err)
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var h map[string]string
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	logging.Logf("auth.storage", "loaded %d captured headers for %s", len(h), host)
	return h, nil
}

// ClearHeaders removes the headers captured for host.
func ClearHeaders(store HeaderStore, host string) error {
	return store.ClearCapturedHeaders(host)
}
