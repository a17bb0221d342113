// Package config provides configuration management for h5index.
package config

import "time"

// Default configuration values for h5index.
const (
	// DefaultLogLevel is the default file log level.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the default log rotation threshold.
	DefaultLogMaxSize = "10MB"

	// DefaultLogMaxBackups is the default number of rotated log files kept.
	DefaultLogMaxBackups = 5

	// DefaultWatchDebounce is how long the watcher waits for a burst of
	// filesystem events to settle before rebuilding.
	DefaultWatchDebounce = 2 * time.Second

	// DefaultOutput is the default CLI output format.
	DefaultOutput = "plain"
)

// DefaultExtensions are the recognised container file extensions.
var DefaultExtensions = []string{".h5", ".hdf5"}
