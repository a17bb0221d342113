package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/h5index/pkg/h5index/config"
	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errValidationFailed is returned by commands whose dataset did not validate.
// The report has already been printed.
var errValidationFailed = errors.New("validation failed")

// app carries the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	verbose bool

	// opener reads container files; tests replace it.
	opener container.Opener
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), opener: container.HDF5{}}

	root := &cobra.Command{
		Use:   "h5index",
		Short: "Index and validate directories of HDF5 files",
		Long: `h5index scans directories of HDF5 files, caches the keys and array shapes of
every file in a dataset_info.yaml manifest next to the data, and checks that
the files of a dataset are structurally consistent.

Examples:
  h5index scan -k image /data/train          # Scan or load the manifest
  h5index scan -k image --rescan /data/train # Ignore the existing manifest
  h5index validate -k image /data/a /data/b  # Exit non-zero on inconsistencies
  h5index shapes -o json /data/train         # Representative shape per key
  h5index watch -k image /data/train         # Rescan when files change
  h5index catalog list                       # Previously scanned directories`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return logging.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/h5index/config.yaml)")
	flags.StringP("key", "k", "", "primary key every file must contain")
	flags.String("key-for-length", "", "collect the shape of this entry only")
	flags.Bool("read-only", false, "never write dataset_info.yaml")
	flags.StringP("output", "o", "", "output format (plain, json, yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug output on stderr")

	_ = a.v.BindPFlag("key", flags.Lookup("key"))
	_ = a.v.BindPFlag("key_for_length", flags.Lookup("key-for-length"))
	_ = a.v.BindPFlag("read_only", flags.Lookup("read-only"))
	_ = a.v.BindPFlag("output", flags.Lookup("output"))

	root.AddCommand(
		newScanCmd(a),
		newValidateCmd(a),
		newShapesCmd(a),
		newShowCmd(a),
		newCatalogCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errValidationFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// initialize loads the configuration and sets up logging. It runs before
// every command.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	}
	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logPath := cfg.Logging.Path
	if logPath != "" && logPath != "-" {
		if logPath, err = config.ExpandPath(logPath); err != nil {
			return err
		}
	}
	if logPath == "" {
		logPath = logging.DefaultLogPath()
	}

	console := ""
	if a.verbose {
		console = "debug"
	}
	if err := logging.Init(logging.Config{
		Level: cfg.Logging.Level,
		Path:  logPath,
		Rotation: logging.RotationConfig{
			MaxSize:    cfg.LogMaxSizeBytes(),
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
		},
		Components: cfg.Logging.Components,
		Console:    console,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logging.Get("cli").Debug("command started", "command", cmd.CommandPath(), "config", a.v.ConfigFileUsed())
	return nil
}
