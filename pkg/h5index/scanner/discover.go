package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Discover lists the entries directly inside dir whose names carry one of
// extensions, grouped by extension in the order of extensions and sorted by
// name within a group. Hidden names are skipped. Matching directories and
// symlinks are listed whether or not they resolve to a regular file; Scan
// records those as unreadable. A missing directory yields no files.
func Discover(dir string, extensions []string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidArgument, dir)
	}

	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if path == dir {
			return nil
		}
		if !strings.HasPrefix(d.Name(), ".") {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("list %s: %w", dir, walkErr)
	}

	seen := make(map[string]bool, len(found))
	var files []string
	for _, ext := range extensions {
		var group []string
		for _, path := range found {
			if seen[path] || !strings.HasSuffix(filepath.Base(path), ext) {
				continue
			}
			seen[path] = true
			group = append(group, path)
		}
		sort.Strings(group)
		files = append(files, group...)
	}
	return files, nil
}
