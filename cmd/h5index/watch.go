package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/output"
	"github.com/jamesainslie/h5index/pkg/h5index/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Rescan directories whenever their files change",
		Long: `Loads or scans the directories, then watches them and rebuilds the dataset
with a forced rescan after container files are added, changed or removed.
Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, args, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, paths []string, flags *scanFlags) error {
	f, err := a.openFolder(paths, flags)
	if err != nil {
		return err
	}
	if err := a.render(cmd, output.FromFolder(f).WithReport(f)); err != nil {
		return err
	}

	w, err := watcher.New(paths, a.cfg.Watch.Debounce, a.cfg.Extensions)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d directories (Ctrl+C to stop)\n", len(w.Paths()))
	build := watcher.RebuildFunc(paths, a.cfg.Key, a.folderOptions(flags)...)
	w.Run(ctx, build, func(ds *dataset.Dataset, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: rebuild failed: %v\n", err)
			return
		}
		a.record(ds.Folder())
		if err := a.render(cmd, output.FromFolder(ds.Folder()).WithReport(ds.Folder())); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
	return nil
}
