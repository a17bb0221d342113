// Package container abstracts the array-container files indexed by h5index.
//
// A Container exposes the names of its root-level entries and, for entries
// that are arrays, their shapes. The scanner only depends on the Opener and
// Container interfaces; HDF5 is the production implementation.
package container

import (
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// Container is an open array-container file.
type Container interface {
	// Keys returns the names of the root-level entries.
	Keys() ([]string, error)

	// Has reports whether name (which may be a slash-separated path) exists.
	Has(name string) bool

	// Shape returns the shape of the named entry. The second result is false
	// when the entry does not exist or is not an array; an error means the
	// entry exists but could not be read.
	Shape(name string) (manifest.Shape, bool, error)

	// Close releases the underlying file handle.
	Close() error
}

// Opener opens container files.
type Opener interface {
	Open(path string) (Container, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Container, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Container, error) {
	return f(path)
}

// DefaultExtensions lists the recognised file extensions, in discovery order.
var DefaultExtensions = []string{".h5", ".hdf5"}
