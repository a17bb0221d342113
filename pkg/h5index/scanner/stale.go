package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// Staleness lists the differences between a cached manifest and the files
// currently in its directory.
type Staleness struct {
	// Added are container files with no record in the manifest.
	Added []string

	// Removed are recorded files that no longer exist.
	Removed []string

	// Modified are recorded files changed after the manifest was written.
	Modified []string
}

// Stale reports whether any difference was found.
func (s *Staleness) Stale() bool {
	return len(s.Added)+len(s.Removed)+len(s.Modified) > 0
}

// String summarises the differences.
func (s *Staleness) String() string {
	return fmt.Sprintf("%d added, %d removed, %d modified", len(s.Added), len(s.Removed), len(s.Modified))
}

// CheckStale compares the cached manifest of dir with the directory. Cached
// manifests are never refreshed automatically; this only reports whether a
// forced rescan would see something different.
func CheckStale(dir string, extensions []string) (*Staleness, error) {
	path := manifest.PathFor(dir)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	written := info.ModTime()

	current, err := Discover(dir, extensions)
	if err != nil {
		return nil, err
	}
	onDisk := make(map[string]bool, len(current))
	for _, p := range current {
		onDisk[filepath.Base(p)] = true
	}

	s := &Staleness{}
	recorded := make(map[string]bool, len(m.Files))
	for _, rec := range m.Files {
		recorded[rec.Name] = true
		if !onDisk[rec.Name] {
			s.Removed = append(s.Removed, rec.Name)
			continue
		}
		st, err := os.Stat(filepath.Join(dir, rec.Name))
		if err == nil && st.ModTime().After(written) {
			s.Modified = append(s.Modified, rec.Name)
		}
	}
	for _, p := range current {
		if name := filepath.Base(p); !recorded[name] {
			s.Added = append(s.Added, name)
		}
	}
	return s, nil
}
