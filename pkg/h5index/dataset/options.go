package dataset

import (
	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
)

type folderConfig struct {
	keyForLength string
	readOnly     bool
	overrides    map[string]any
	opener       container.Opener
	logger       *logging.Logger
}

// FolderOption configures a Folder.
type FolderOption func(*folderConfig)

// WithKeyForLength restricts shape collection to a single entry.
func WithKeyForLength(key string) FolderOption {
	return func(c *folderConfig) { c.keyForLength = key }
}

// WithReadOnly prevents manifests from being written.
func WithReadOnly(readOnly bool) FolderOption {
	return func(c *folderConfig) { c.readOnly = readOnly }
}

// WithScanOverrides merges scanner options on top of the folder defaults,
// for example {"force_rescan": true, "persist": false}. Later calls add to
// earlier ones.
func WithScanOverrides(overrides map[string]any) FolderOption {
	return func(c *folderConfig) {
		if c.overrides == nil {
			c.overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			c.overrides[k] = v
		}
	}
}

// WithOpener sets the container reader used for fresh scans.
func WithOpener(opener container.Opener) FolderOption {
	return func(c *folderConfig) { c.opener = opener }
}

// WithLogger sets the logger for scan and validation diagnostics.
func WithLogger(logger *logging.Logger) FolderOption {
	return func(c *folderConfig) { c.logger = logger }
}
