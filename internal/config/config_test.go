// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/manifest"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.Targets)
}

func TestSaveAndLoad(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	var c Config
	c.LogLevel = "debug"
	c.SetTarget("staging", Target{
		URL:          "https://app.example.com",
		Timeout:      15 * time.Second,
		Headers:      map[string]string{"X-Test": "1"},
		Identities:   []string{"alice"},
		PollInterval: 500 * time.Millisecond,
		Endpoints:    manifest.Endpoints{Action: "/mx/xas/"},
	})
	require.NoError(t, Save(c))

	p := filepath.Join(base, "mxprobe", "config.yaml")
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Equal(t, []string{"staging"}, got.ProfileNames())
}

func TestLoadFrom_YAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
targets:
  prod:
    url: https://prod.example.com
    proxy: socks5://127.0.0.1:9050
    timeout: 1m
    identities: [alice, bob]
    download_dir: /tmp/files
`), 0o600))

	c, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	tgt, ok := c.Target("prod")
	require.True(t, ok)
	assert.Equal(t, "socks5://127.0.0.1:9050", tgt.Proxy)
	assert.Equal(t, time.Minute, tgt.Timeout)
	assert.Equal(t, []string{"alice", "bob"}, tgt.Identities)

	require.NoError(t, os.WriteFile(p, []byte("targets: [1, 2"), 0o600))
	_, err = LoadFrom(p)
	assert.Equal(t, mxerrors.Config, mxerrors.KindOf(err))
}

func TestTargetIdentities(t *testing.T) {
	var tgt Target
	tgt.AddIdentity("alice")
	tgt.AddIdentity("bob")
	tgt.AddIdentity("alice")
	assert.Equal(t, []string{"alice", "bob"}, tgt.Identities)
	tgt.RemoveIdentity("alice")
	assert.Equal(t, []string{"bob"}, tgt.Identities)
}
