// Package output writes execution reports in console, JSON, and JSONL
// formats.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/redpill/redpill/pkg/engine"
	"github.com/redpill/redpill/pkg/jsonutil"
	"github.com/redpill/redpill/pkg/ui"
)

// Writer renders reports to a destination in a single format.
type Writer struct {
	w      io.Writer
	file   *os.File
	format string
	silent bool
}

// NewWriter creates a writer for the given destination path and format.
// An empty path writes to stdout. Supported formats: console, json,
// jsonl.
func NewWriter(path, format string) (*Writer, error) {
	switch format {
	case "console", "json", "jsonl":
	default:
		return nil, fmt.Errorf("output: unknown format %q", format)
	}

	out := &Writer{w: os.Stdout, format: format}
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		out.file = f
		out.w = f
	}
	return out, nil
}

// Silence suppresses the per-technique lines of console output; only
// the summary and verdict are printed. JSON formats are unaffected,
// they exist to be parsed.
func (o *Writer) Silence() { o.silent = true }

// WriteReport renders the full report.
func (o *Writer) WriteReport(r *engine.Report) error {
	switch o.format {
	case "json":
		data, err := jsonutil.MarshalIndent(r, "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.w, string(data))
		return err
	case "jsonl":
		for i := range r.Entries {
			if err := jsonutil.MarshalWrite(o.w, &r.Entries[i]); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(o.w); err != nil {
				return err
			}
		}
		return nil
	default:
		return o.writeConsole(r)
	}
}

func (o *Writer) writeConsole(r *engine.Report) error {
	if o.silent {
		return o.writeConsoleTail(r)
	}
	for _, e := range r.Entries {
		line := ui.FormatEntry(e.Name, e.Description, e.Outcome.String(), e.Elapsed)
		if e.Reason != "" {
			line += "\n      " + ui.FailedStyle.Render("-> "+e.Reason)
		}
		if _, err := fmt.Fprintln(o.w, line); err != nil {
			return err
		}
	}
	return o.writeConsoleTail(r)
}

func (o *Writer) writeConsoleTail(r *engine.Report) error {
	detected, notDetected, failed := r.Counts()
	if _, err := fmt.Fprintln(o.w, ui.FormatSummary(detected, notDetected, failed, r.Duration)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(o.w, ui.FormatVerdict(r.Verdict().String()))
	return err
}

// Close closes the underlying file if one was opened.
func (o *Writer) Close() error {
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}
