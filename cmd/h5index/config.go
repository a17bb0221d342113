package main

import (
	"fmt"

	"github.com/jamesainslie/h5index/pkg/h5index/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage h5index configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/h5index/config.yaml (if set)
  2. ~/.config/h5index/config.yaml

Environment variables override config file settings using the H5INDEX_ prefix:
  H5INDEX_KEY=image
  H5INDEX_READ_ONLY=true
  H5INDEX_LOGGING_LEVEL=debug`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out := cmd.OutOrStdout()
				if used := a.v.ConfigFileUsed(); used != "" {
					fmt.Fprintf(out, "Config file: %s\n\n", used)
				} else {
					fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
				}
				cfg := a.cfg
				fmt.Fprintf(out, "key:                 %s\n", cfg.Key)
				fmt.Fprintf(out, "key_for_length:      %s\n", cfg.KeyForLength)
				fmt.Fprintf(out, "read_only:           %t\n", cfg.ReadOnly)
				fmt.Fprintf(out, "extensions:          %v\n", cfg.Extensions)
				fmt.Fprintf(out, "output:              %s\n", cfg.Output)
				fmt.Fprintf(out, "catalog.enabled:     %t\n", cfg.Catalog.Enabled)
				fmt.Fprintf(out, "catalog.path:        %s\n", cfg.Catalog.Path)
				fmt.Fprintf(out, "logging.level:       %s\n", cfg.Logging.Level)
				fmt.Fprintf(out, "logging.path:        %s\n", cfg.Logging.Path)
				fmt.Fprintf(out, "watch.debounce:      %s\n", cfg.Watch.Debounce)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.WriteDefault()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
			},
		},
	)
	return cmd
}
