// Package manifest defines the per-directory metadata manifest and its
// on-disk YAML form (dataset_info.yaml).
package manifest

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jamesainslie/h5index/pkg/h5index/normalize"
)

// FileName is the conventional manifest filename inside a scanned directory.
const FileName = "dataset_info.yaml"

// Shape is the ordered list of dimension sizes of one array entry.
type Shape []int

// Equal reports whether two shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String formats the shape as "[124, 500, 686]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// FileRecord describes one discovered container file.
type FileRecord struct {
	Path string `yaml:"path" json:"path"`
	Name string `yaml:"name" json:"name"`

	// Warning is set when the primary key is missing from the file.
	Warning string `yaml:"warning,omitempty" json:"warning,omitempty"`

	// Error is set when the file could not be opened or read. No shapes
	// were collected for the file in that case.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// HasIssue reports whether the record carries an error or a warning.
func (r FileRecord) HasIssue() bool {
	return r.Error != "" || r.Warning != ""
}

// Manifest is the cached metadata of one scanned directory.
type Manifest struct {
	FolderPath string `yaml:"folder_path" json:"folder_path"`

	// PrimaryKey is empty when the manifest was produced by an ephemeral
	// rescan without a key; it is written as null.
	PrimaryKey string `yaml:"primary_key" json:"primary_key"`

	Files []FileRecord `yaml:"files" json:"files"`

	// FileShapes maps an entry name to one shape per file exposing it, in
	// discovery order.
	FileShapes map[string][]Shape `yaml:"file_shapes" json:"file_shapes"`
}

// New returns an empty manifest for a directory.
func New(folderPath, primaryKey string) *Manifest {
	return &Manifest{
		FolderPath: folderPath,
		PrimaryKey: primaryKey,
		Files:      []FileRecord{},
		FileShapes: map[string][]Shape{},
	}
}

// AddShape appends a shape observed for key.
func (m *Manifest) AddShape(key string, shape Shape) {
	if m.FileShapes == nil {
		m.FileShapes = map[string][]Shape{}
	}
	m.FileShapes[key] = append(m.FileShapes[key], shape)
}

// Keys returns the entry names present in FileShapes, sorted.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.FileShapes))
	for k := range m.FileShapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Document returns the manifest as an ordered mapping with the top-level
// keys folder_path, primary_key, files and file_shapes, in that order.
func (m *Manifest) Document() normalize.MapSlice {
	var primaryKey any
	if m.PrimaryKey != "" {
		primaryKey = m.PrimaryKey
	}

	files := make([]any, len(m.Files))
	for i, f := range m.Files {
		record := normalize.MapSlice{
			{Key: "path", Value: f.Path},
			{Key: "name", Value: f.Name},
		}
		if f.Warning != "" {
			record = append(record, normalize.MapItem{Key: "warning", Value: f.Warning})
		}
		if f.Error != "" {
			record = append(record, normalize.MapItem{Key: "error", Value: f.Error})
		}
		files[i] = record
	}

	shapes := make(normalize.MapSlice, 0, len(m.FileShapes))
	for _, key := range m.Keys() {
		shapes = append(shapes, normalize.MapItem{Key: key, Value: m.FileShapes[key]})
	}

	return normalize.MapSlice{
		{Key: "folder_path", Value: m.FolderPath},
		{Key: "primary_key", Value: primaryKey},
		{Key: "files", Value: files},
		{Key: "file_shapes", Value: shapes},
	}
}
