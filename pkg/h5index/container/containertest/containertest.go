// Package containertest provides an in-memory container.Opener for tests.
package containertest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// Entry is a root-level entry of a fake container. Entries without a shape
// behave like groups.
type Entry struct {
	Name  string
	Shape manifest.Shape
}

// Dataset returns an array entry.
func Dataset(name string, dims ...int) Entry {
	return Entry{Name: name, Shape: append(manifest.Shape{}, dims...)}
}

// Group returns an entry without a shape.
func Group(name string) Entry {
	return Entry{Name: name}
}

// Opener serves registered files from memory and records every call.
type Opener struct {
	mu      sync.Mutex
	files   map[string][]Entry
	fails   map[string]error
	keyErrs map[string]map[string]error
	listErr map[string]error
	opened  []string
	open    int
	maxOpen int
}

// NewOpener returns an empty Opener.
func NewOpener() *Opener {
	return &Opener{
		files:   make(map[string][]Entry),
		fails:   make(map[string]error),
		keyErrs: make(map[string]map[string]error),
		listErr: make(map[string]error),
	}
}

// Add registers a file and creates an empty placeholder on disk so that
// directory discovery finds it.
func (o *Opener) Add(path string, entries ...Entry) error {
	if err := touch(path); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path] = entries
	return nil
}

// Fail registers a file whose Open returns err.
func (o *Opener) Fail(path string, err error) error {
	if err := touch(path); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fails[path] = err
	return nil
}

// FailKey makes reading the shape of key in the registered file at path
// return err. The file still opens.
func (o *Opener) FailKey(path, key string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.keyErrs[path] == nil {
		o.keyErrs[path] = make(map[string]error)
	}
	o.keyErrs[path][key] = err
}

// FailKeys makes listing the entries of the file at path return err.
func (o *Opener) FailKeys(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listErr[path] = err
}

// Open implements container.Opener.
func (o *Opener) Open(path string) (container.Container, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, path)
	if err, ok := o.fails[path]; ok {
		return nil, err
	}
	entries, ok := o.files[path]
	if !ok {
		return nil, fmt.Errorf("unable to open file %s: not a container", path)
	}

	o.open++
	if o.open > o.maxOpen {
		o.maxOpen = o.open
	}
	return &file{owner: o, entries: entries, keyErrs: o.keyErrs[path], listErr: o.listErr[path]}, nil
}

// Opened returns the paths passed to Open, in call order.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// OpenHandles returns the number of containers not yet closed.
func (o *Opener) OpenHandles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// MaxOpenHandles returns the highest number of simultaneously open containers.
func (o *Opener) MaxOpenHandles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxOpen
}

type file struct {
	owner   *Opener
	entries []Entry
	keyErrs map[string]error
	listErr error
	closed  bool
}

func (f *file) Keys() ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.Name
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *file) Has(name string) bool {
	_, ok := f.lookup(name)
	return ok
}

func (f *file) Shape(name string) (manifest.Shape, bool, error) {
	if err, ok := f.keyErrs[strings.Trim(name, "/")]; ok {
		return nil, false, err
	}
	e, ok := f.lookup(name)
	if !ok || e.Shape == nil {
		return nil, false, nil
	}
	return e.Shape.Clone(), true, nil
}

func (f *file) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.owner.mu.Lock()
	f.owner.open--
	f.owner.mu.Unlock()
	return nil
}

func (f *file) lookup(name string) (Entry, bool) {
	name = strings.Trim(name, "/")
	for _, e := range f.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0o644)
}

var _ container.Opener = (*Opener)(nil)
