package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
)

// PlainFormatter writes aligned text sections. Status words are colored
// when the terminal supports it.
type PlainFormatter struct {
	// Now is used for manifest ages. Zero means time.Now.
	Now time.Time
}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	if len(r.Folders) > 0 {
		w.WriteString(TitleStyle.Render("Folders") + "\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tFILES\tERRORS\tWARNINGS\tMANIFEST")
		for _, info := range r.Folders {
			age := "not written"
			if !info.ManifestTime.IsZero() {
				age = humanize.RelTime(info.ManifestTime, now, "ago", "from now")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", info.Path, humanize.Comma(int64(info.Files)), info.Errors, info.Warnings, age)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s readable files, %s samples\n", humanize.Comma(int64(r.NumFiles)), humanize.Comma(int64(r.Length)))
	}

	if len(r.Shapes) > 0 {
		w.WriteString("\n" + TitleStyle.Render("Shapes") + "\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSHAPE")
		for _, s := range r.Shapes {
			fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Shape)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if r.Report != nil {
		formatReport(w, r.Report)
	}

	if len(r.Catalog) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tKEY\tFILES\tSTATUS\tSCANNED")
		for _, e := range r.Catalog {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.FolderPath, e.PrimaryKey, humanize.Comma(int64(e.Files)),
				status(e.Valid), humanize.RelTime(e.ScannedAt, now, "ago", "from now"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func formatReport(w *bytes.Buffer, report *dataset.ValidationReport) {
	fmt.Fprintf(w, "\n%s %s (%s files in %d folders)\n", TitleStyle.Render("Validation"), status(report.OK()),
		humanize.Comma(int64(report.Files)), len(report.Folders))
	for _, issue := range report.Issues {
		style := WarningStyle
		if issue.Kind == dataset.IssueError {
			style = ErrorStyle
		}
		fmt.Fprintf(w, "  %s %s: %s\n", style.Render(issue.Kind), issue.Path, issue.Message)
	}
	for _, c := range report.Conflicts {
		shapes := make([]string, len(c.Shapes))
		for i, s := range c.Shapes {
			shapes[i] = s.String()
		}
		fmt.Fprintf(w, "  %s %s in %s: %s\n", ErrorStyle.Render("mismatch"), c.Key, MutedStyle.Render(c.Folder),
			strings.Join(shapes, " vs "))
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
