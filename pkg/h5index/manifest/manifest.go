package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/h5index/pkg/h5index/normalize"
	"gopkg.in/yaml.v3"
)

// ParseError is returned when a manifest file exists but cannot be decoded.
// A corrupt manifest is never recovered from; callers must fix or delete it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PathFor returns the conventional manifest location for a directory.
func PathFor(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether a manifest is present in dir.
func Exists(dir string) bool {
	info, err := os.Stat(PathFor(dir))
	return err == nil && !info.IsDir()
}

// Load reads the manifest at path verbatim.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return m, nil
}

// Decode reads a single manifest document from r.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, err
	}
	if m.Files == nil {
		m.Files = []FileRecord{}
	}
	if m.FileShapes == nil {
		m.FileShapes = map[string][]Shape{}
	}
	return &m, nil
}

// Write normalizes m and writes it to path, replacing any existing file.
func Write(path string, m *Manifest) error {
	return WriteDocument(path, m.Document())
}

// WriteDocument writes doc to path. The file is written to a temporary name
// first and renamed into place.
func WriteDocument(path string, doc normalize.MapSlice) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := Encode(f, doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Encode writes doc as YAML. The document is normalized first, so tuples and
// arrays are written as plain sequences. MapSlice order is preserved; plain
// maps are written with sorted keys. Sequences of scalars use flow style.
func Encode(w io.Writer, doc any) error {
	node, err := toNode(normalize.Normalize(doc))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case normalize.MapSlice:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, item := range val {
			if err := appendPair(node, item.Key, item.Value); err != nil {
				return nil, err
			}
		}
		return node, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			if err := appendPair(node, k, val[k]); err != nil {
				return nil, err
			}
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		flow := true
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			if child.Kind != yaml.ScalarNode {
				flow = false
			}
			node.Content = append(node.Content, child)
		}
		if flow {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, fmt.Errorf("encode %T: %w", val, err)
		}
		return node, nil
	}
}

func appendPair(node *yaml.Node, key string, value any) error {
	valueNode, err := toNode(value)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		valueNode,
	)
	return nil
}
