// Package catalog keeps a persistent registry of scanned dataset
// directories in a badger database.
package catalog

import (
	"bytes"
	"encoding/gob"
	"path/filepath"
	"time"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// Version is incremented when the entry format changes.
const Version = 1

// KeySeparator separates the key namespace from the directory path.
const KeySeparator = '\x00'

const dirNamespace = "dir"

// Entry summarises the manifest of one directory.
type Entry struct {
	ID         string           `json:"id" yaml:"id"`
	Version    int              `json:"version" yaml:"version"`
	FolderPath string           `json:"folder_path" yaml:"folder_path"`
	PrimaryKey string           `json:"primary_key" yaml:"primary_key"`
	Files      int              `json:"files" yaml:"files"`
	Errors     int              `json:"errors" yaml:"errors"`
	Warnings   int              `json:"warnings" yaml:"warnings"`
	Keys       []string         `json:"keys" yaml:"keys,flow"`
	Shapes     map[string][]int `json:"shapes" yaml:"shapes"`
	ScannedAt  time.Time        `json:"scanned_at" yaml:"scanned_at"`
	Valid      bool             `json:"valid" yaml:"valid"`
}

// Encode serializes the entry using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes data into the entry.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// EntryFor summarises m. The entry is valid when no file has an error or a
// warning and every key has a single shape.
func EntryFor(m *manifest.Manifest) *Entry {
	e := &Entry{
		Version:    Version,
		FolderPath: m.FolderPath,
		PrimaryKey: m.PrimaryKey,
		Files:      len(m.Files),
		Keys:       m.Keys(),
		Shapes:     make(map[string][]int, len(m.FileShapes)),
		ScannedAt:  time.Now().UTC(),
		Valid:      true,
	}
	for _, rec := range m.Files {
		if rec.Error != "" {
			e.Errors++
		}
		if rec.Warning != "" {
			e.Warnings++
		}
	}
	if e.Errors > 0 || e.Warnings > 0 {
		e.Valid = false
	}
	for key, shapes := range m.FileShapes {
		if len(shapes) == 0 {
			continue
		}
		e.Shapes[key] = append([]int(nil), shapes[0]...)
		for _, s := range shapes[1:] {
			if !s.Equal(shapes[0]) {
				e.Valid = false
			}
		}
	}
	return e
}

// MakeKey returns the database key of a directory.
// Format: dir\x00<absolute path>
func MakeKey(dir string) []byte {
	return []byte(dirNamespace + string(KeySeparator) + dir)
}

// ParseKey extracts the directory path from a database key.
func ParseKey(key []byte) string {
	idx := bytes.IndexByte(key, KeySeparator)
	if idx == -1 {
		return string(key)
	}
	return string(key[idx+1:])
}

func keyPrefix() []byte {
	return []byte(dirNamespace + string(KeySeparator))
}

func absPath(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
