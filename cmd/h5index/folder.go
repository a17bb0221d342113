package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jamesainslie/h5index/pkg/h5index/catalog"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
	"github.com/jamesainslie/h5index/pkg/h5index/output"
	"github.com/spf13/cobra"
)

var errKeyRequired = errors.New("a primary key is required: pass --key/-k or set 'key' in the config file")

// scanFlags are the per-command scan controls.
type scanFlags struct {
	rescan  bool
	noWrite bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.rescan, "rescan", false, "ignore existing dataset_info.yaml files")
	cmd.Flags().BoolVar(&f.noWrite, "no-write", false, "do not write dataset_info.yaml after a rescan")
}

// overrides returns the scanner overrides selected by the flags.
func (f *scanFlags) overrides() map[string]any {
	o := map[string]any{}
	if f.rescan {
		o["force_rescan"] = true
	}
	if f.noWrite {
		o["persist"] = false
	}
	return o
}

// folderOptions builds the dataset options from configuration and flags.
func (a *app) folderOptions(flags *scanFlags) []dataset.FolderOption {
	overrides := map[string]any{"extensions": a.cfg.Extensions}
	if flags != nil {
		for k, v := range flags.overrides() {
			overrides[k] = v
		}
	}
	return []dataset.FolderOption{
		dataset.WithKeyForLength(a.cfg.KeyForLength),
		dataset.WithReadOnly(a.cfg.ReadOnly),
		dataset.WithOpener(a.opener),
		dataset.WithScanOverrides(overrides),
	}
}

// requireKey fails when no primary key was configured.
func (a *app) requireKey() error {
	if a.cfg.Key == "" {
		return errKeyRequired
	}
	return nil
}

// openFolder scans or loads paths and records the result in the catalog.
func (a *app) openFolder(paths []string, flags *scanFlags) (*dataset.Folder, error) {
	if err := a.requireKey(); err != nil {
		return nil, err
	}
	f, err := dataset.NewFolder(paths, a.cfg.Key, a.folderOptions(flags)...)
	if err != nil {
		return nil, err
	}
	a.record(f)
	return f, nil
}

// record adds f to the catalog when enabled. Catalog problems are logged and
// never fail the command.
func (a *app) record(f *dataset.Folder) {
	if !a.cfg.Catalog.Enabled {
		return
	}
	log := logging.Get("cli")
	c, err := catalog.Open(a.cfg.Catalog.Path)
	if err != nil {
		log.Warn("catalog unavailable", "path", a.cfg.Catalog.Path, "error", err)
		return
	}
	defer c.Close()
	if _, err := c.Record(f); err != nil {
		log.Warn("failed to record folder", "error", err)
	}
}

// render formats r with the configured formatter and writes it to the
// command output.
func (a *app) render(cmd *cobra.Command, r *output.Result) error {
	formatter, err := output.Get(a.cfg.Output)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, output.Available())
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
