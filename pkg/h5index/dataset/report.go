package dataset

import (
	"sort"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// Issue kinds.
const (
	IssueError   = "error"
	IssueWarning = "warning"
)

// FileIssue is a per-file error or warning recorded during a scan.
type FileIssue struct {
	Folder  string `json:"folder" yaml:"folder"`
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// ShapeConflict lists the distinct shapes one entry has within a manifest.
type ShapeConflict struct {
	Folder string           `json:"folder" yaml:"folder"`
	Key    string           `json:"key" yaml:"key"`
	Shapes []manifest.Shape `json:"shapes" yaml:"shapes"`
}

// ValidationReport is the data behind Folder.Validate.
type ValidationReport struct {
	Folders   []string        `json:"folders" yaml:"folders"`
	Files     int             `json:"files" yaml:"files"`
	Issues    []FileIssue     `json:"issues" yaml:"issues"`
	Conflicts []ShapeConflict `json:"conflicts" yaml:"conflicts"`
}

// OK reports whether the report has no issues and no conflicts.
func (r ValidationReport) OK() bool {
	return len(r.Issues) == 0 && len(r.Conflicts) == 0
}

// Report checks each manifest on its own: shapes are compared between the
// files of one directory only.
func (f *Folder) Report() ValidationReport {
	report := ValidationReport{
		Folders:   f.Paths(),
		Issues:    []FileIssue{},
		Conflicts: []ShapeConflict{},
	}

	for i, m := range f.manifests {
		folder := f.paths[i]
		report.Files += len(m.Files)

		for _, rec := range m.Files {
			if rec.Error != "" {
				report.Issues = append(report.Issues, FileIssue{Folder: folder, Path: rec.Path, Kind: IssueError, Message: rec.Error})
			}
			if rec.Warning != "" {
				report.Issues = append(report.Issues, FileIssue{Folder: folder, Path: rec.Path, Kind: IssueWarning, Message: rec.Warning})
			}
		}

		for _, key := range m.Keys() {
			if distinct := distinctShapes(m.FileShapes[key]); len(distinct) > 1 {
				report.Conflicts = append(report.Conflicts, ShapeConflict{Folder: folder, Key: key, Shapes: distinct})
			}
		}
	}
	return report
}

// distinctShapes returns the distinct shapes in first-seen order.
func distinctShapes(shapes []manifest.Shape) []manifest.Shape {
	var out []manifest.Shape
	for _, s := range shapes {
		dup := false
		for _, seen := range out {
			if seen.Equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Keys returns the sorted union of entry names across all manifests.
func (f *Folder) Keys() []string {
	set := make(map[string]struct{})
	for _, m := range f.manifests {
		for key := range m.FileShapes {
			set[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
