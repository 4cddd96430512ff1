// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/trailhead-labs/trailhead/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Trailhead CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trailhead",
		Short: "Trailhead - expedition booking platform account service",
		Long: `Trailhead account service handles user registration, login,
and the password lifecycle for the expedition booking platform.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if configFile == "" {
			configFile = xdg.DefaultConfigFile()
		}
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
