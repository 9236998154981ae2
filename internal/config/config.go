// Package config loads and stores CLI profiles in the XDG config dir.
// Only non-secret settings are kept here; identity secrets and captured
// session headers go to the OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/manifest"
	"mxprobe/cli/internal/xdg"
)

// DefaultProfile is used when --profile is not given.
const DefaultProfile = "default"

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string            `yaml:"log_level"`
	Targets  map[string]Target `yaml:"targets,omitempty"`
}

// Target is one named server profile.
type Target struct {
	URL          string             `yaml:"url"`
	Proxy        string             `yaml:"proxy,omitempty"`
	Timeout      time.Duration      `yaml:"timeout,omitempty"`
	Headers      map[string]string  `yaml:"headers,omitempty"`
	Cookies      map[string]string  `yaml:"cookies,omitempty"`
	Identities   []string           `yaml:"identities,omitempty"`
	DownloadDir  string             `yaml:"download_dir,omitempty"`
	PollInterval time.Duration      `yaml:"poll_interval,omitempty"`
	Endpoints    manifest.Endpoints `yaml:"endpoints,omitempty"`
}

// Target returns the profile called name, or a zero Target.
func (c Config) Target(name string) (Target, bool) {
	t, ok := c.Targets[name]
	return t, ok
}

// SetTarget stores t under name.
func (c *Config) SetTarget(name string, t Target) {
	if c.Targets == nil {
		c.Targets = map[string]Target{}
	}
	c.Targets[name] = t
}

// ProfileNames returns the configured profile names, sorted.
func (c Config) ProfileNames() []string {
	out := make([]string, 0, len(c.Targets))
	for n := range c.Targets {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AddIdentity records name on the target unless already present.
func (t *Target) AddIdentity(name string) {
	for _, n := range t.Identities {
		if n == name {
			return
		}
	}
	t.Identities = append(t.Identities, name)
}

// RemoveIdentity drops name from the target.
func (t *Target) RemoveIdentity(name string) {
	out := t.Identities[:0]
	for _, n := range t.Identities {
		if n != name {
			out = append(out, n)
		}
	}
	t.Identities = out
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p.
func LoadFrom(p string) (Config, error) {
	c := Config{LogLevel: "info"}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, mxerrors.Wrap(mxerrors.Config, "read config", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, mxerrors.Wrap(mxerrors.Config, "parse "+p, err)
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
