// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for mxprobe.
// It stores the secrets of named identities and externally captured session
// headers, both scoped to a target host, in the OS credential store.
//
// On macOS the native security command is tried first. Elsewhere the
// 99designs/keyring library picks a native backend (Windows Credential
// Manager, Secret Service, KWallet or pass).
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("keychain: item not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "mxprobe"

// Key prefixes. Full keys are prefix/host[/name].
const (
	prefixIdentity = "identity"
	prefixHeaders  = "headers"
)

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewWithRing(ring), nil
}

// NewWithRing wraps an already opened keyring, such as keyring.NewArrayKeyring.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{backend: ringBackend{ring: ring}}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// Encrypted-file fallbacks are not offered; headless hosts use an identities file instead.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass requires: brew install pass gnupg
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		KWalletAppID:    ServiceName,
		KWalletFolder:   ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

func identityKey(host, name string) string {
	return prefixIdentity + "/" + strings.ToLower(host) + "/" + name
}

func headersKey(host string) string {
	return prefixHeaders + "/" + strings.ToLower(host)
}

// SaveIdentitySecret stores the secret of identity name on host.
// This method is thread-safe.
func (m *Manager) SaveIdentitySecret(host, name, secret string) error {
	if name == "" {
		return errors.New("keychain: identity name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Set(identityKey(host, name), secret)
}

// LoadIdentitySecret retrieves the secret of identity name on host.
// This method is thread-safe.
func (m *Manager) LoadIdentitySecret(host, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend.Get(identityKey(host, name))
}

// DeleteIdentitySecret removes the secret of identity name on host.
// This method is thread-safe.
func (m *Manager) DeleteIdentitySecret(host, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Delete(identityKey(host, name))
}

// SaveCapturedHeaders stores a serialized header map for host.
// This method is thread-safe.
func (m *Manager) SaveCapturedHeaders(host string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Set(headersKey(host), string(data))
}

// LoadCapturedHeaders retrieves the serialized header map for host.
// This method is thread-safe.
func (m *Manager) LoadCapturedHeaders(host string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, err := m.backend.Get(headersKey(host))
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// ClearCapturedHeaders removes the captured headers for host.
// This method is thread-safe.
func (m *Manager) ClearCapturedHeaders(host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Delete(headersKey(host))
}

// ClearTarget removes every secret stored for host: the captured headers and
// the secrets of the listed identities.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearTarget(host string, identities []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, name := range identities {
		errs = append(errs, m.backend.Delete(identityKey(host, name)))
	}
	errs = append(errs, m.backend.Delete(headersKey(host)))
	return errors.Join(errs...)
}

// ringBackend adapts a keyring.Keyring to keychainBackend.
type ringBackend struct {
	ring keyring.Keyring
}

func (r ringBackend) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringBackend) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringBackend) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
