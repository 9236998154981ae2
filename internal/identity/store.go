// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"errors"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/keychain"
	"mxprobe/cli/internal/session"
)

// FileEnv names a YAML file of "name: secret" pairs used instead of, or in
// addition to, the keychain.
const FileEnv = "MXPROBE_IDENTITIES_FILE"

// SecretStore keeps identity secrets per host. *keychain.Manager implements it.
type SecretStore interface {
	SaveIdentitySecret(host, name, secret string) error
	LoadIdentitySecret(host, name string) (string, error)
	DeleteIdentitySecret(host, name string) error
}

// Store resolves the known identities of one target host. Names come from
// the profile and the identities file; secrets come from the file first and
// the keychain second.
type Store struct {
	host    string
	names   map[string]struct{}
	file    map[string]string
	secrets SecretStore
}

// NewStore returns a Store for host. secrets may be nil when no keychain is
// available.
func NewStore(host string, names []string, secrets SecretStore) *Store {
	s := &Store{host: host, names: map[string]struct{}{}, file: map[string]string{}, secrets: secrets}
	for _, n := range names {
		if n != "" {
			s.names[n] = struct{}{}
		}
	}
	return s
}

// WithFile merges "name: secret" pairs into the store.
func (s *Store) WithFile(pairs map[string]string) *Store {
	for n, secret := range pairs {
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
		s.file[n] = secret
	}
	return s
}

// LoadFile reads an identities file. A missing file yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "read identities file", err)
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "parse identities file "+path, err)
	}
	return out, nil
}

// Names returns the known identity names, sorted.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the identity called name with its secret.
func (s *Store) Lookup(name string) (session.Identity, error) {
	if secret, ok := s.file[name]; ok {
		return session.Identity{Name: name, Secret: secret}, nil
	}
	if _, ok := s.names[name]; !ok {
		return session.Identity{}, mxerrors.New(mxerrors.Config, "unknown identity "+name)
	}
	if s.secrets == nil {
		return session.Identity{}, mxerrors.New(mxerrors.Config, "no secret stored for "+name)
	}
	secret, err := s.secrets.LoadIdentitySecret(s.host, name)
	if errors.Is(err, keychain.ErrNotFound) {
		return session.Identity{}, mxerrors.New(mxerrors.Config, "no secret stored for "+name)
	}
	if err != nil {
		return session.Identity{}, mxerrors.Wrap(mxerrors.Config, "load secret for "+name, err)
	}
	return session.Identity{Name: name, Secret: secret}, nil
}

// Where a secret is found, as reported by Source.
const (
	SourceFile     = "file"
	SourceKeychain = "keychain"
	SourceMissing  = "missing"
)

// Source reports where the secret of name would be taken from.
func (s *Store) Source(name string) string {
	if _, ok := s.file[name]; ok {
		return SourceFile
	}
	if s.secrets == nil {
		return SourceMissing
	}
	if _, err := s.secrets.LoadIdentitySecret(s.host, name); err != nil {
		return SourceMissing
	}
	return SourceKeychain
}

// Known resolves every known identity, in name order.
func (s *Store) Known() ([]session.Identity, error) {
	names := s.Names()
	out := make([]session.Identity, 0, len(names))
	for _, n := range names {
		id, err := s.Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Add stores secret for name in the keychain and makes name known.
func (s *Store) Add(name, secret string) error {
	if name == "" || name == session.AnonymousName {
		return mxerrors.New(mxerrors.Config, "invalid identity name")
	}
	if s.secrets == nil {
		return mxerrors.New(mxerrors.Config, "no keychain available; use "+FileEnv)
	}
	if err := s.secrets.SaveIdentitySecret(s.host, name, secret); err != nil {
		return err
	}
	s.names[name] = struct{}{}
	return nil
}

// Remove forgets name and deletes its keychain secret.
func (s *Store) Remove(name string) error {
	delete(s.names, name)
	delete(s.file, name)
	if s.secrets == nil {
		return nil
	}
	return s.secrets.DeleteIdentitySecret(s.host, name)
}
