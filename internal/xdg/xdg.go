// Package xdg provides helpers to resolve XDG Base Directory paths for mxprobe.
//
// The package falls back to the traditional locations when the XDG
// environment variables are not set. Config and state directories are
// private (0700).
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "mxprobe"

// ConfigDir returns the XDG config directory for mxprobe, creating it if
// missing. It falls back to ~/.config/mxprobe when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", 0o700, ".config")
}

// DownloadsDir returns the default destination of the file monitor,
// ~/.local/share/mxprobe/files unless XDG_DATA_HOME says otherwise.
func DownloadsDir() (string, error) {
	dir, err := ensure("XDG_DATA_HOME", 0o755, ".local", "share")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "files"), nil
}

func ensure(env string, perm os.FileMode, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, perm); err != nil {
		return "", err
	}
	return dir, nil
}
