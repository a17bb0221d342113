package main

import (
	"fmt"

	"github.com/jamesainslie/h5index/pkg/h5index/catalog"
	"github.com/jamesainslie/h5index/pkg/h5index/output"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the catalog of scanned directories",
		Long: `Every scan records a summary of each directory in a catalog stored under
$XDG_DATA_HOME/h5index/catalog. The catalog is informational; manifests next
to the data remain the source of truth.`,
	}

	withCatalog := func(fn func(*cobra.Command, []string, *catalog.Catalog) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Open(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer c.Close()
			return fn(cmd, args, c)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List scanned directories",
			Args:  cobra.NoArgs,
			RunE: withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
				entries, err := c.List()
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty.")
					return nil
				}
				return a.render(cmd, output.FromCatalog(entries))
			}),
		},
		&cobra.Command{
			Use:   "show <dir>",
			Short: "Show the catalog entry of a directory",
			Args:  cobra.ExactArgs(1),
			RunE: withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
				e, err := c.Get(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				return a.render(cmd, output.FromCatalog([]*catalog.Entry{e}))
			}),
		},
		&cobra.Command{
			Use:   "forget <dir>",
			Short: "Remove a directory from the catalog",
			Args:  cobra.ExactArgs(1),
			RunE: withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
				if err := c.Delete(args[0]); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the catalog.\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every catalog entry",
			Args:  cobra.NoArgs,
			RunE: withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
				if err := c.Clear(); err != nil {
					return fmt.Errorf("failed to clear catalog: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog cleared.")
				return nil
			}),
		},
	)
	return cmd
}
