package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StringListReport collects one line per synchronized file and can be
// appended to a text file at the end of a run.
type StringListReport struct {
	Title string

	mu    sync.Mutex
	items []string
}

// NewStringListReport returns an empty report with the given title.
func NewStringListReport(title string) *StringListReport {
	return &StringListReport{Title: title}
}

// Add appends a formatted line to the report.
func (r *StringListReport) Add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, fmt.Sprintf(format, args...))
}

// Items returns a copy of the collected lines.
func (r *StringListReport) Items() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

// FileName returns the report file name, e.g. fetchurl-title.txt.
func (r *StringListReport) FileName() string {
	title := r.Title
	if title == "" {
		title = "untitled"
	}
	safeTitle := make([]rune, 0, len(title))
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			safeTitle = append(safeTitle, c)
		} else {
			safeTitle = append(safeTitle, '_')
		}
	}
	return fmt.Sprintf("fetchurl-%s.txt", string(safeTitle))
}

// WriteToDir appends the collected lines, followed by a blank line, to
// the report file under dir and clears the list.
func (r *StringListReport) WriteToDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating base path: %w", err)
	}

	reportFullPath := filepath.Join(dir, r.FileName())
	f, err := os.OpenFile(reportFullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if _, err := fmt.Fprintln(f, item); err != nil {
			return "", fmt.Errorf("writing to file: %w", err)
		}
	}
	r.items = nil
	if _, err := fmt.Fprintln(f); err != nil {
		return "", fmt.Errorf("writing new line to file: %w", err)
	}
	return reportFullPath, nil
}
