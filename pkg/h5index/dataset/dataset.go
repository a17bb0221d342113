package dataset

import "github.com/jamesainslie/h5index/pkg/h5index/manifest"

// Dataset is the entry point for data loaders. It owns exactly one Folder
// and delegates everything to it.
type Dataset struct {
	folder *Folder
}

// NewDataset builds the Folder for paths. Arguments are those of NewFolder.
func NewDataset(paths []string, key string, opts ...FolderOption) (*Dataset, error) {
	f, err := NewFolder(paths, key, opts...)
	if err != nil {
		return nil, err
	}
	return &Dataset{folder: f}, nil
}

// Folder returns the underlying folder.
func (d *Dataset) Folder() *Folder { return d.folder }

// Validate delegates to Folder.Validate.
func (d *Dataset) Validate() bool { return d.folder.Validate() }

// Shapes delegates to Folder.Shapes.
func (d *Dataset) Shapes() map[string]manifest.Shape { return d.folder.Shapes() }

// Report delegates to Folder.Report.
func (d *Dataset) Report() ValidationReport { return d.folder.Report() }

// Length delegates to Folder.Length.
func (d *Dataset) Length() int { return d.folder.Length() }
