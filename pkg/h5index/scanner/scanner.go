package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
	"github.com/jamesainslie/h5index/pkg/h5index/normalize"
)

// Scan returns the manifest of dir.
//
// Unless opts.ForceRescan is set, an existing dataset_info.yaml is loaded and
// returned as is; a manifest that cannot be decoded is reported as a
// *CacheParseError. Otherwise every container file in dir is opened once,
// its shapes are collected, and the result is written back when
// opts.Persist is set and opts.ReadOnly is not.
func Scan(dir string, opts Options) (*manifest.Manifest, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	log := opts.Logger.With("dir", dir)

	if !opts.ForceRescan && manifest.Exists(dir) {
		m, err := manifest.Load(manifest.PathFor(dir))
		if err != nil {
			return nil, err
		}
		log.Debug("loaded cached manifest", "files", len(m.Files))
		return m, nil
	}

	paths, err := Discover(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	log.Debug("scanning", "files", len(paths), "key", opts.Key)

	m := manifest.New(filepath.Clean(dir), opts.Key)
	for _, path := range paths {
		res := scanFile(opts.Opener, path, opts.Key, opts.KeyForLength)
		if res.err != nil {
			res.record.Error = res.err.Error()
			log.Warn("skipping file", "file", res.record.Name, "error", res.err)
			m.Files = append(m.Files, res.record)
			continue
		}
		if res.record.Warning != "" {
			log.Warn(res.record.Warning, "file", res.record.Name)
		}
		m.Files = append(m.Files, res.record)
		for _, s := range res.shapes {
			m.AddShape(s.key, s.shape)
		}
	}

	if opts.writes() {
		doc, _ := normalize.Normalize(m.Document()).(normalize.MapSlice)
		if err := manifest.WriteDocument(manifest.PathFor(dir), doc); err != nil {
			return nil, fmt.Errorf("write manifest for %s: %w", dir, err)
		}
		log.Info("wrote manifest", "files", len(m.Files), "keys", len(m.FileShapes))
	}
	return m, nil
}

type keyShape struct {
	key   string
	shape manifest.Shape
}

// fileResult is the outcome of reading one container. Shapes are only
// committed to the manifest when err is nil.
type fileResult struct {
	record manifest.FileRecord
	shapes []keyShape
	err    error
}

func scanFile(opener container.Opener, path, key, keyForLength string) (res fileResult) {
	res.record = manifest.FileRecord{Path: path, Name: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		res.err = err
		return res
	}
	if !info.Mode().IsRegular() {
		res.err = fmt.Errorf("%s is not a regular file", res.record.Name)
		return res
	}

	c, err := opener.Open(path)
	if err != nil {
		res.err = err
		return res
	}
	defer c.Close()

	if keyForLength != "" {
		shape, ok, err := c.Shape(keyForLength)
		if err != nil {
			res.err = fmt.Errorf("read %s: %w", keyForLength, err)
			return res
		}
		if ok {
			res.shapes = append(res.shapes, keyShape{keyForLength, shape})
		}
	} else {
		keys, err := c.Keys()
		if err != nil {
			res.err = fmt.Errorf("list keys: %w", err)
			return res
		}
		for _, k := range keys {
			shape, ok, err := c.Shape(k)
			if err != nil {
				res.err = fmt.Errorf("read %s: %w", k, err)
				return res
			}
			if ok {
				res.shapes = append(res.shapes, keyShape{k, shape})
			}
		}
	}

	if key != "" && !c.Has(key) {
		res.record.Warning = fmt.Sprintf("Primary key '%s' not found in file", key)
	}
	return res
}
