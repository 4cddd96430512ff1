// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

// Package xdg provides XDG Base Directory paths for Trailhead.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "trailhead"

// ConfigDir returns the XDG config directory for trailhead.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the path of the config file in the XDG config
// directory, or "" when no such file exists.
func DefaultConfigFile() string {
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
