// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailhead-labs/trailhead/internal/config"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	subcommands := []string{"serve", "migrate"}
	for _, sub := range subcommands {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "config flag",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/trailhead.yaml", "--help"},
			wantFlag: "/etc/trailhead.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global
			configFile = ""

			cmd := NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_LongDescription(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "trailhead", cmd.Use)
	assert.Contains(t, cmd.Long, "registration", "Long description should mention registration")
	assert.Contains(t, cmd.Long, "password", "Long description should mention the password lifecycle")
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "test-version", "Version output missing version info: %s", output)
}

func TestRootCommand_NoArgs(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	// Root command with no args should show help (no error)
	require.NoError(t, cmd.Execute())
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := NewServeCmd()

	// Flag defaults feed the posflag config layer even when unchanged, so
	// they must match the built-in configuration defaults.
	defaults := config.Default()
	want := map[string]string{
		"server.addr":  defaults.Server.Addr,
		"metrics.addr": defaults.Metrics.Addr,
		"log.format":   defaults.Log.Format,
		"log.level":    defaults.Log.Level,
	}
	for name, def := range want {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, "serve missing %q flag", name)
		assert.Equal(t, def, flag.DefValue, "flag %q default drifted from config default", name)
	}
}

func TestServeCommand_MissingConfig(t *testing.T) {
	t.Setenv("TRAILHEAD_DATABASE_URL", "")
	t.Setenv("TRAILHEAD_AUTH_JWT_SECRET", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configFile = ""
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error when database.url is not configured")
	assert.Contains(t, err.Error(), "database.url")
}

func TestMigrateCommand_Help(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "--help"})

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "--config", "Migrate missing --config flag")
	for _, sub := range []string{"up", "down", "status", "force"} {
		assert.Contains(t, output, sub, "Migrate help missing %q subcommand", sub)
	}
}

func TestMigrateCommand_NoDatabaseURL(t *testing.T) {
	t.Setenv("TRAILHEAD_DATABASE_URL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configFile = ""
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "up"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error when database.url is not set")
	assert.Contains(t, err.Error(), "database.url")
}

func TestMigrateCommand_ForceInvalidVersion(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{name: "not a number", arg: "abc"},
		{name: "negative", arg: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile = ""
			cmd := NewRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			// "--" keeps a leading dash from being parsed as a flag.
			cmd.SetArgs([]string{"migrate", "force", "--", tt.arg})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "non-negative integer")
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"nonexistent"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error for unknown command")
}

func TestInvalidFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--invalid-flag"})

	err := cmd.Execute()
	require.Error(t, err, "Expected error for invalid flag")
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		date     string
		expected string
	}{
		{
			name:     "default values",
			version:  "dev",
			commit:   "unknown",
			date:     "unknown",
			expected: "dev (commit: unknown, built: unknown)",
		},
		{
			name:     "release version",
			version:  "1.2.0",
			commit:   "abc123",
			date:     "2026-02-01",
			expected: "1.2.0 (commit: abc123, built: 2026-02-01)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatVersion(tt.version, tt.commit, tt.date)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRun_Success(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"trailhead", "--help"}

	exitCode := run()
	assert.Equal(t, 0, exitCode)
}

func TestRun_Error(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"trailhead", "nonexistent-command"}

	exitCode := run()
	assert.Equal(t, 1, exitCode)
}
