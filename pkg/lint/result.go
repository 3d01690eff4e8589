package lint

import (
	"time"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

// Summary aggregates a run.
type Summary struct {
	Files        int            `json:"files"`
	Problems     int            `json:"problems"`
	Fatal        int            `json:"fatal"`
	Fixable      int            `json:"fixable"`
	FixesApplied int            `json:"fixesApplied"`
	FilesFixed   int            `json:"filesFixed"`
	CacheHits    int            `json:"cacheHits"`
	ByRule       map[string]int `json:"byRule"`
	Bytes        int64          `json:"bytes"`
	Duration     time.Duration  `json:"durationNs"`
}

// Report is the result of one run.
type Report struct {
	Files   []*FileResult `json:"files"`
	Summary Summary       `json:"summary"`
}

// NewReport builds a report over already linted files.
func NewReport(files []*FileResult) *Report {
	var elapsed time.Duration
	for _, file := range files {
		elapsed += file.Duration
	}

	return newReport(files, elapsed)
}

func newReport(files []*FileResult, elapsed time.Duration) *Report {
	summary := Summary{Files: len(files), ByRule: make(map[string]int), Duration: elapsed}

	for _, file := range files {
		summary.Bytes += int64(len(file.Source))
		summary.FixesApplied += file.FixesApplied

		if file.Fixed() {
			summary.FilesFixed++
		}

		if file.CacheHit {
			summary.CacheHits++
		}

		for _, d := range file.Diagnostics {
			summary.Problems++

			if d.Severity == rules.SeverityFatal {
				summary.Fatal++

				continue
			}

			summary.ByRule[d.Rule]++

			if d.Fixable() {
				summary.Fixable++
			}
		}
	}

	return &Report{Files: files, Summary: summary}
}

// WithProblems returns the files that still have diagnostics.
func (r *Report) WithProblems() []*FileResult {
	var out []*FileResult

	for _, file := range r.Files {
		if len(file.Diagnostics) > 0 {
			out = append(out, file)
		}
	}

	return out
}
