// Package report renders lint results for people and machines.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatText    Format = "text"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatCompact, FormatJSON, FormatHTML}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	for _, format := range Formats() {
		if string(format) == strings.ToLower(name) {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options tune rendering.
type Options struct {
	// Color enables ANSI colors in the text format.
	Color bool
	// BaseDir makes file paths relative when set.
	BaseDir string
	// Summary appends the per-rule table to the text format.
	Summary bool
}

// Write renders rep in format.
func Write(w io.Writer, format Format, rep *lint.Report, opts Options) error {
	switch format {
	case FormatText:
		return writeText(w, rep, opts)
	case FormatCompact:
		return writeCompact(w, rep, opts)
	case FormatJSON:
		return writeJSON(w, rep, opts)
	case FormatHTML:
		return writeHTML(w, rep, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func displayPath(path string, opts Options) string {
	if opts.BaseDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}

	rel, err := filepath.Rel(opts.BaseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}
