package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

type palette struct {
	path    *color.Color
	pos     *color.Color
	problem *color.Color
	fatal   *color.Color
	rule    *color.Color
	ok      *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Underline),
		pos:     color.New(color.Faint),
		problem: color.New(color.FgRed),
		fatal:   color.New(color.FgRed, color.Bold),
		rule:    color.New(color.Faint),
		ok:      color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{p.path, p.pos, p.problem, p.fatal, p.rule, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// writeText groups diagnostics per file, the way stylish lint output does.
func writeText(w io.Writer, rep *lint.Report, opts Options) error {
	pal := newPalette(opts.Color)

	var out strings.Builder

	for _, file := range rep.WithProblems() {
		out.WriteString(pal.path.Sprint(displayPath(file.Path, opts)))
		out.WriteByte('\n')

		for _, d := range file.Diagnostics {
			severity := pal.problem.Sprint("problem")
			if d.Severity == rules.SeverityFatal {
				severity = pal.fatal.Sprint("fatal")
			}

			fmt.Fprintf(&out, "  %s  %s  %s  %s\n",
				pal.pos.Sprintf("%d:%d", d.Line, d.Column), severity, d.Message, pal.rule.Sprint(ruleLabel(d)))
		}

		out.WriteByte('\n')
	}

	sum := rep.Summary

	if sum.Problems == 0 {
		out.WriteString(pal.ok.Sprintf("✔ no problems in %s\n", plural(sum.Files, "file")))
	} else {
		line := fmt.Sprintf("✖ %s", plural(sum.Problems, "problem"))
		if sum.Fixable > 0 {
			line += fmt.Sprintf(" (%d fixable with --fix)", sum.Fixable)
		}

		out.WriteString(pal.fatal.Sprint(line))
		out.WriteByte('\n')
	}

	if sum.FixesApplied > 0 {
		fmt.Fprintf(&out, "applied %s to %s\n", plural(sum.FixesApplied, "fix"), plural(sum.FilesFixed, "file"))
	}

	if opts.Summary {
		out.WriteByte('\n')
		out.WriteString(SummaryTable(sum))
		out.WriteByte('\n')
	}

	_, err := io.WriteString(w, out.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func ruleLabel(d rules.Diagnostic) string {
	if d.Rule == "" {
		return d.MessageID
	}

	return d.Rule
}

// SummaryTable renders per-rule counts and run totals as a table.
func SummaryTable(sum lint.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Summary")
	tw.AppendHeader(table.Row{"Rule", "Problems"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	names := make([]string, 0, len(sum.ByRule))
	for name := range sum.ByRule {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		tw.AppendRow(table.Row{name, humanize.Comma(int64(sum.ByRule[name]))})
	}

	if sum.Fatal > 0 {
		tw.AppendRow(table.Row{"parse errors", strconv.Itoa(sum.Fatal)})
	}

	tw.AppendFooter(table.Row{"Total", humanize.Comma(int64(sum.Problems))})

	stats := fmt.Sprintf("%s (%s), %d cached, %s",
		plural(sum.Files, "file"),
		humanize.Bytes(uint64(max(sum.Bytes, 0))),
		sum.CacheHits,
		sum.Duration.Round(time.Millisecond),
	)

	return tw.Render() + "\n" + stats
}
