// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/keychain"
	"mxprobe/cli/internal/session"
)

func TestStore_KeychainAndFile(t *testing.T) {
	km := keychain.NewWithRing(keyring.NewArrayKeyring(nil))
	s := NewStore("app.example.com", []string{"alice"}, km)

	require.NoError(t, s.Add("bob", "pw-bob"))
	require.NoError(t, km.SaveIdentitySecret("app.example.com", "alice", "pw-alice"))
	s.WithFile(map[string]string{"carol": "pw-carol", "alice": "from-file"})

	assert.Equal(t, []string{"alice", "bob", "carol"}, s.Names())

	known, err := s.Known()
	require.NoError(t, err)
	assert.Equal(t, []session.Identity{
		{Name: "alice", Secret: "from-file"},
		{Name: "bob", Secret: "pw-bob"},
		{Name: "carol", Secret: "pw-carol"},
	}, known)

	assert.Equal(t, SourceFile, s.Source("alice"))
	assert.Equal(t, SourceKeychain, s.Source("bob"))
	assert.Equal(t, SourceMissing, s.Source("mallory"))

	_, err = s.Lookup("mallory")
	assert.Equal(t, mxerrors.Config, mxerrors.KindOf(err))

	require.NoError(t, s.Remove("bob"))
	assert.Equal(t, []string{"alice", "carol"}, s.Names())
	_, err = km.LoadIdentitySecret("app.example.com", "bob")
	assert.ErrorIs(t, err, keychain.ErrNotFound)
}

func TestStore_MissingSecret(t *testing.T) {
	s := NewStore("app.example.com", []string{"dave"}, keychain.NewWithRing(keyring.NewArrayKeyring(nil)))
	_, err := s.Known()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no secret stored for dave")

	noKeychain := NewStore("app.example.com", nil, nil)
	assert.Error(t, noKeychain.Add("x", "y"))
	assert.Error(t, noKeychain.Add("", "y"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alice: s3cret\nbob: \"p:w\"\n"), 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "s3cret", "bob": "p:w"}, got)

	got, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(path, []byte("- not a map\n"), 0o600))
	_, err = LoadFile(path)
	assert.Equal(t, mxerrors.Config, mxerrors.KindOf(err))
}
