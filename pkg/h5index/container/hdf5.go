package container

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"gonum.org/v1/hdf5"
)

// HDF5 opens HDF5 files read-only through the HDF5 C library.
type HDF5 struct{}

// Open opens the file at path.
func (HDF5) Open(path string) (Container, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", path, err)
	}
	return &hdf5File{file: f}, nil
}

type hdf5File struct {
	file *hdf5.File
}

func (h *hdf5File) Keys() ([]string, error) {
	n, err := h.file.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("count objects: %w", err)
	}

	keys := make([]string, 0, n)
	for i := uint(0); i < n; i++ {
		name, err := h.file.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("object %d name: %w", i, err)
		}
		keys = append(keys, name)
	}
	return keys, nil
}

// Has checks every path component so that a missing parent group is
// reported as absent rather than as a library error.
func (h *hdf5File) Has(name string) bool {
	name = strings.Trim(name, "/")
	if name == "" {
		return false
	}

	parts := strings.Split(name, "/")
	for i := range parts {
		if !h.file.LinkExists(strings.Join(parts[:i+1], "/")) {
			return false
		}
	}
	return true
}

func (h *hdf5File) Shape(name string) (manifest.Shape, bool, error) {
	if !h.Has(name) {
		return nil, false, nil
	}

	ds, err := h.file.OpenDataset(name)
	if err != nil {
		// Groups and named datatypes have no shape.
		if g, gerr := h.file.OpenGroup(name); gerr == nil {
			_ = g.Close()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open dataset %s: %w", name, err)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, false, fmt.Errorf("dataset %s dims: %w", name, err)
	}

	shape := make(manifest.Shape, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return shape, true, nil
}

func (h *hdf5File) Close() error {
	return h.file.Close()
}

var _ Opener = HDF5{}
