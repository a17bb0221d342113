package main

import (
	"fmt"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"github.com/jamesainslie/h5index/pkg/h5index/output"
	"github.com/jamesainslie/h5index/pkg/h5index/scanner"
	"github.com/spf13/cobra"
)

func newScanCmd(a *app) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan <dir>...",
		Short: "Scan directories or load their manifests",
		Long: `Builds the manifest of each directory. A directory that already has a
dataset_info.yaml is loaded from it unless --rescan is given; a fresh scan is
written back unless --no-write or --read-only is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFolder(args, &flags)
			if err != nil {
				return err
			}
			return a.render(cmd, output.FromFolder(f))
		},
	}
	flags.register(cmd)
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "validate <dir>...",
		Short: "Check that files are readable and shapes are consistent",
		Long: `Fails when any file could not be read, lacks the primary key, or when an
entry has different shapes within one directory. Shapes are not compared
across directories.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFolder(args, &flags)
			if err != nil {
				return err
			}
			r := output.FromFolder(f).WithReport(f)
			if err := a.render(cmd, r); err != nil {
				return err
			}
			if !f.Validate() {
				return errValidationFailed
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newShapesCmd(a *app) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "shapes <dir>...",
		Short: "Print one representative shape per entry",
		Long: `Prints the first shape of every entry. With several directories the last
directory that has an entry determines its shape.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFolder(args, &flags)
			if err != nil {
				return err
			}
			full := output.FromFolder(f)
			return a.render(cmd, &output.Result{
				Key:          full.Key,
				KeyForLength: full.KeyForLength,
				NumFiles:     full.NumFiles,
				Length:       full.Length,
				Shapes:       full.Shapes,
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <dir>",
		Short: "Print the cached manifest of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !manifest.Exists(args[0]) {
				return fmt.Errorf("no %s in %s; run 'h5index scan' first", manifest.FileName, args[0])
			}
			m, err := manifest.Load(manifest.PathFor(args[0]))
			if err != nil {
				return err
			}
			if err := manifest.Encode(cmd.OutOrStdout(), m.Document()); err != nil {
				return err
			}
			if s, err := scanner.CheckStale(args[0], a.cfg.Extensions); err == nil && s.Stale() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: manifest is out of date (%s); run 'h5index scan --rescan %s'\n",
					s, args[0])
			}
			return nil
		},
	}
}
