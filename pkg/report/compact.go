package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

// writeCompact prints one "path:line:col: message [rule]" line per
// diagnostic, a shape editors and CI annotators parse.
func writeCompact(w io.Writer, rep *lint.Report, opts Options) error {
	var out strings.Builder

	for _, file := range rep.WithProblems() {
		path := displayPath(file.Path, opts)

		for _, d := range file.Diagnostics {
			fmt.Fprintf(&out, "%s:%d:%d: %s [%s]\n", path, d.Line, d.Column, d.Message, ruleLabel(d))
		}
	}

	_, err := io.WriteString(w, out.String())
	if err != nil {
		return fmt.Errorf("write compact report: %w", err)
	}

	return nil
}

type jsonFile struct {
	FilePath     string             `json:"filePath"`
	Language     string             `json:"language"`
	Diagnostics  []rules.Diagnostic `json:"diagnostics"`
	ErrorCount   int                `json:"errorCount"`
	FatalCount   int                `json:"fatalErrorCount"`
	FixableCount int                `json:"fixableErrorCount"`
	FixesApplied int                `json:"fixesApplied,omitempty"`
	Output       *string            `json:"output,omitempty"`
}

type jsonReport struct {
	Results []jsonFile   `json:"results"`
	Summary lint.Summary `json:"summary"`
}

func writeJSON(w io.Writer, rep *lint.Report, opts Options) error {
	doc := jsonReport{Results: make([]jsonFile, 0, len(rep.Files)), Summary: rep.Summary}

	for _, file := range rep.Files {
		entry := jsonFile{
			FilePath:     displayPath(file.Path, opts),
			Language:     file.Language,
			Diagnostics:  file.Diagnostics,
			FixesApplied: file.FixesApplied,
		}

		if entry.Diagnostics == nil {
			entry.Diagnostics = []rules.Diagnostic{}
		}

		if file.Fixed() {
			output := string(file.Output)
			entry.Output = &output
		}

		for _, d := range file.Diagnostics {
			entry.ErrorCount++

			if d.Severity == rules.SeverityFatal {
				entry.FatalCount++
			}

			if d.Fixable() {
				entry.FixableCount++
			}
		}

		doc.Results = append(doc.Results, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(doc)
	if err != nil {
		return fmt.Errorf("write json report: %w", err)
	}

	return nil
}
