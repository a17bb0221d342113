package catalog

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
)

// ErrNotFound is returned when a directory has no catalog entry.
var ErrNotFound = errors.New("catalog entry not found")

// Catalog wraps badger for entry storage.
type Catalog struct {
	db  *badger.DB
	log *logging.Logger
}

// Open opens or creates a catalog at path.
func Open(path string) (*Catalog, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	return &Catalog{db: db, log: logging.Get("catalog")}, nil
}

// Close closes the catalog.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put stores e under its folder path. A directory keeps its ID across
// updates; new directories get a fresh one.
func (c *Catalog) Put(e *Entry) error {
	dir := absPath(e.FolderPath)
	key := MakeKey(dir)

	return c.db.Update(func(txn *badger.Txn) error {
		if e.ID == "" {
			var existing Entry
			item, err := txn.Get(key)
			switch {
			case err == nil:
				if err := item.Value(existing.Decode); err != nil {
					return err
				}
				e.ID = existing.ID
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
		}
		e.FolderPath = dir

		value, err := e.Encode()
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
}

// Get returns the entry for dir.
func (c *Catalog) Get(dir string) (*Entry, error) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey(absPath(dir)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.Decode)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns all entries ordered by folder path.
func (c *Catalog) List() ([]*Entry, error) {
	var entries []*Entry
	prefix := keyPrefix()

	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			if err := it.Item().Value(entry.Decode); err != nil {
				c.log.Warn("skipping unreadable entry", "dir", ParseKey(it.Item().Key()), "error", err)
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	return entries, err
}

// Delete removes the entry for dir. Deleting a missing entry returns
// ErrNotFound.
func (c *Catalog) Delete(dir string) error {
	key := MakeKey(absPath(dir))
	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// Clear removes every entry.
func (c *Catalog) Clear() error {
	return c.db.DropAll()
}

// Record stores one entry per manifest of f and returns them in the order
// of f.Paths. Entries are keyed by the directory the manifest was read from,
// not the folder_path recorded inside it, which is stale for a copied or
// moved manifest.
func (c *Catalog) Record(f *dataset.Folder) ([]*Entry, error) {
	manifests := f.Manifests()
	paths := f.Paths()
	entries := make([]*Entry, 0, len(manifests))
	for i, m := range manifests {
		e := EntryFor(m)
		e.FolderPath = paths[i]
		if err := c.Put(e); err != nil {
			return nil, fmt.Errorf("record %s: %w", e.FolderPath, err)
		}
		entries = append(entries, e)
	}
	c.log.Debug("recorded folder", "dirs", len(entries))
	return entries, nil
}
