// Package dataset aggregates the manifests of one or more directories into
// a single logical collection of container files.
package dataset

import (
	"fmt"

	"github.com/jamesainslie/h5index/pkg/h5index/logging"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"github.com/jamesainslie/h5index/pkg/h5index/scanner"
)

// Folder holds the manifests of a fixed list of directories. Manifests are
// fetched once at construction and never change; build a new Folder with
// {"force_rescan": true} to pick up changes on disk.
type Folder struct {
	paths        []string
	key          string
	keyForLength string
	readOnly     bool
	manifests    []*manifest.Manifest
	log          *logging.Logger
}

// NewFolder scans or loads every directory in paths. key is required. The
// first scan error aborts construction.
func NewFolder(paths []string, key string, opts ...FolderOption) (*Folder, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required; it is needed for validation and determining file structure",
			scanner.ErrInvalidArgument)
	}

	var cfg folderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.Get("dataset")
	}

	base := scanner.DefaultOptions()
	base.Key = key
	base.KeyForLength = cfg.keyForLength
	base.ReadOnly = cfg.readOnly
	base.Logger = logging.Get("scanner")
	if cfg.opener != nil {
		base.Opener = cfg.opener
	}
	scanOpts, err := base.Merge(cfg.overrides)
	if err != nil {
		return nil, err
	}
	if scanOpts.Key == "" {
		return nil, fmt.Errorf("%w: key override must not be empty", scanner.ErrInvalidArgument)
	}

	f := &Folder{
		paths:        append([]string(nil), paths...),
		key:          scanOpts.Key,
		keyForLength: scanOpts.KeyForLength,
		readOnly:     scanOpts.ReadOnly,
		manifests:    make([]*manifest.Manifest, 0, len(paths)),
		log:          cfg.logger,
	}
	for _, dir := range paths {
		m, err := scanner.Scan(dir, scanOpts)
		if err != nil {
			return nil, err
		}
		f.manifests = append(f.manifests, m)
	}
	f.log.Debug("folder ready", "dirs", len(paths), "files", f.NumFiles())
	return f, nil
}

// Open is NewFolder for a single directory.
func Open(path, key string, opts ...FolderOption) (*Folder, error) {
	return NewFolder([]string{path}, key, opts...)
}

// Paths returns the directories of the folder in construction order.
func (f *Folder) Paths() []string {
	return append([]string(nil), f.paths...)
}

// Key returns the primary key.
func (f *Folder) Key() string { return f.key }

// KeyForLength returns the shape filter, or "" when all entries are collected.
func (f *Folder) KeyForLength() string { return f.keyForLength }

// ReadOnly reports whether manifests are never written.
func (f *Folder) ReadOnly() bool { return f.readOnly }

// Manifests returns the manifests, index-aligned with Paths. The manifests
// are shared and must not be modified.
func (f *Folder) Manifests() []*manifest.Manifest {
	return append([]*manifest.Manifest(nil), f.manifests...)
}

// Validate reports whether every file was read without error or warning and
// every entry has a single shape within each manifest. Problems are logged to
// the "dataset" component, which discards them until logging.Init has been
// called; use Report for the details.
func (f *Folder) Validate() bool {
	report := f.Report()
	for _, issue := range report.Issues {
		f.log.Warn("file issue", "file", issue.Path, issue.Kind, issue.Message)
	}
	for _, c := range report.Conflicts {
		f.log.Warn("inconsistent shapes", "folder", c.Folder, "key", c.Key, "shapes", c.Shapes)
	}
	return report.OK()
}

// Shapes returns one representative shape per entry: the first shape of each
// manifest, with later directories overwriting earlier ones.
func (f *Folder) Shapes() map[string]manifest.Shape {
	shapes := make(map[string]manifest.Shape)
	for _, m := range f.manifests {
		for key, list := range m.FileShapes {
			if len(list) > 0 {
				shapes[key] = list[0].Clone()
			}
		}
	}
	return shapes
}

// NumFiles returns the number of files that were read without error.
func (f *Folder) NumFiles() int {
	n := 0
	for _, m := range f.manifests {
		for _, rec := range m.Files {
			if rec.Error == "" {
				n++
			}
		}
	}
	return n
}

// Length returns the number of samples across all files: the sum of the
// first dimension of the key-for-length entry, or of the primary key when no
// filter is set.
func (f *Folder) Length() int {
	key := f.keyForLength
	if key == "" {
		key = f.key
	}
	total := 0
	for _, m := range f.manifests {
		for _, s := range m.FileShapes[key] {
			if len(s) > 0 {
				total += s[0]
			}
		}
	}
	return total
}
