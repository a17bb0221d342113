// Package output provides formatters for h5index results in various output
// formats (plain, json, yaml).
//
// The package uses a registry pattern so commands can select a formatter by
// name at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromFolder(folder)); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/h5index/pkg/h5index/catalog"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

var logger = logging.Get("output")

// FolderInfo summarises the manifest of one directory.
type FolderInfo struct {
	// Path is the scanned directory.
	Path string `json:"path" yaml:"path"`

	// Files is the number of discovered container files.
	Files int `json:"files" yaml:"files"`

	// Errors and Warnings count files carrying that condition.
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`

	// Manifest is the manifest file path, empty when nothing was written.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// ManifestTime is the modification time of the manifest file.
	ManifestTime time.Time `json:"manifest_time,omitempty" yaml:"manifest_time,omitempty"`
}

// ShapeInfo is the representative shape of one entry.
type ShapeInfo struct {
	Key   string         `json:"key" yaml:"key"`
	Shape manifest.Shape `json:"shape" yaml:"shape,flow"`
}

// Result contains the data to format. Sections that are nil or empty are
// omitted by every formatter.
type Result struct {
	Key          string                    `json:"key,omitempty" yaml:"key,omitempty"`
	KeyForLength string                    `json:"key_for_length,omitempty" yaml:"key_for_length,omitempty"`
	Folders      []FolderInfo              `json:"folders,omitempty" yaml:"folders,omitempty"`
	NumFiles     int                       `json:"num_files" yaml:"num_files"`
	Length       int                       `json:"length" yaml:"length"`
	Shapes       []ShapeInfo               `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Report       *dataset.ValidationReport `json:"report,omitempty" yaml:"report,omitempty"`
	Catalog      []*catalog.Entry          `json:"catalog,omitempty" yaml:"catalog,omitempty"`
}

// Valid reports whether the result carries a passing validation report. A
// result without a report is valid.
func (r *Result) Valid() bool {
	return r.Report == nil || r.Report.OK()
}

// FromFolder summarises f. The validation report is not included; use
// WithReport for that.
func FromFolder(f *dataset.Folder) *Result {
	r := &Result{
		Key:          f.Key(),
		KeyForLength: f.KeyForLength(),
		NumFiles:     f.NumFiles(),
		Length:       f.Length(),
	}

	paths := f.Paths()
	for i, m := range f.Manifests() {
		info := FolderInfo{Path: paths[i], Files: len(m.Files)}
		for _, rec := range m.Files {
			if rec.Error != "" {
				info.Errors++
			}
			if rec.Warning != "" {
				info.Warnings++
			}
		}
		if st, err := os.Stat(manifest.PathFor(paths[i])); err == nil {
			info.Manifest = manifest.PathFor(paths[i])
			info.ManifestTime = st.ModTime()
		}
		r.Folders = append(r.Folders, info)
	}

	shapes := f.Shapes()
	keys := make([]string, 0, len(shapes))
	for k := range shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Shapes = append(r.Shapes, ShapeInfo{Key: k, Shape: shapes[k]})
	}

	logger.Debug("built result", "folders", len(r.Folders), "shapes", len(r.Shapes))
	return r
}

// WithReport attaches the validation report of f.
func (r *Result) WithReport(f *dataset.Folder) *Result {
	report := f.Report()
	r.Report = &report
	return r
}

// FromCatalog wraps catalog entries.
func FromCatalog(entries []*catalog.Entry) *Result {
	return &Result{Catalog: entries}
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
