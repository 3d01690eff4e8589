package report

import (
	"bytes"
	"cmp"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/boundarylint/pkg/lint"
)

const (
	topFilesLimit = 20
	xAxisRotate   = 45
	chartHeight   = "360px"
	styleTagLen   = len("</style>")
	echartsScript = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>boundarylint report</title>
<script src="{{.Script}}"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2328; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { text-align: left; padding: .3rem .6rem; border-bottom: 1px solid #d0d7de; }
.num { text-align: right; }
.fatal { color: #cf222e; font-weight: bold; }
.echart-box { margin: 1rem 0; }
</style>
</head>
<body>
<h1>boundarylint report</h1>
<p>{{.Headline}}</p>
{{range .Charts}}{{.}}{{end}}
<h2>Findings</h2>
{{if .Rows}}<table>
<thead><tr><th>File</th><th class="num">Line</th><th class="num">Col</th><th>Rule</th><th>Message</th></tr></thead>
<tbody>
{{range .Rows}}<tr{{if .Fatal}} class="fatal"{{end}}><td>{{.Path}}</td><td class="num">{{.Line}}</td><td class="num">{{.Column}}</td><td>{{.Rule}}</td><td>{{.Message}}</td></tr>
{{end}}</tbody>
</table>{{else}}<p>No problems.</p>{{end}}
</body>
</html>
`))

type htmlRow struct {
	Path    string
	Line    int
	Column  int
	Rule    string
	Message string
	Fatal   bool
}

type htmlPage struct {
	Script   string
	Headline string
	Charts   []template.HTML
	Rows     []htmlRow
}

func writeHTML(w io.Writer, rep *lint.Report, ro Options) error {
	page := htmlPage{
		Script: echartsScript,
		Headline: fmt.Sprintf("%s in %s, %d fixable.",
			plural(rep.Summary.Problems, "problem"), plural(rep.Summary.Files, "file"), rep.Summary.Fixable),
	}

	for _, chart := range []*charts.Bar{rulesChart(rep.Summary), filesChart(rep, ro)} {
		if chart == nil {
			continue
		}

		content, err := renderChart(chart)
		if err != nil {
			return err
		}

		//nolint:gosec // Chart markup is generated by go-echarts from escaped series data.
		page.Charts = append(page.Charts, template.HTML(content))
	}

	for _, file := range rep.WithProblems() {
		path := displayPath(file.Path, ro)

		for _, d := range file.Diagnostics {
			page.Rows = append(page.Rows, htmlRow{
				Path: path, Line: d.Line, Column: d.Column,
				Rule: ruleLabel(d), Message: d.Message, Fatal: file.Fatal(),
			})
		}
	}

	err := pageTemplate.Execute(w, page)
	if err != nil {
		return fmt.Errorf("write html report: %w", err)
	}

	return nil
}

func newBar(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithGridOpts(opts.Grid{ContainLabel: opts.Bool(true), Bottom: "10%"}),
	)

	return bar
}

func rulesChart(sum lint.Summary) *charts.Bar {
	if len(sum.ByRule) == 0 {
		return nil
	}

	names := make([]string, 0, len(sum.ByRule))
	for name := range sum.ByRule {
		names = append(names, name)
	}

	slices.Sort(names)

	data := make([]opts.BarData, len(names))
	for i, name := range names {
		data[i] = opts.BarData{Value: sum.ByRule[name]}
	}

	bar := newBar("Problems by rule")
	bar.SetXAxis(names)
	bar.AddSeries("Problems", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ee6666"}))

	return bar
}

func filesChart(rep *lint.Report, ro Options) *charts.Bar {
	files := slices.Clone(rep.WithProblems())
	if len(files) == 0 {
		return nil
	}

	slices.SortStableFunc(files, func(a, b *lint.FileResult) int {
		return cmp.Compare(len(b.Diagnostics), len(a.Diagnostics))
	})

	if len(files) > topFilesLimit {
		files = files[:topFilesLimit]
	}

	labels := make([]string, len(files))
	data := make([]opts.BarData, len(files))

	for i, file := range files {
		labels[i] = displayPath(file.Path, ro)
		data[i] = opts.BarData{Value: len(file.Diagnostics)}
	}

	bar := newBar("Files with the most problems")
	bar.SetGlobalOptions(charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"}}))
	bar.SetXAxis(labels)
	bar.AddSeries("Problems", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#5470c6"}))

	return bar
}

// renderChart renders a chart and keeps only its container div and script.
func renderChart(chart *charts.Bar) (string, error) {
	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	html := buf.String()

	start := strings.Index(html, `<div class="container">`)
	end := strings.Index(html, `</body>`)

	if start == -1 || end == -1 || end < start {
		return html, nil
	}

	content := strings.ReplaceAll(html[start:end], `class="container"`, `class="echart-box"`)

	return removeStyleTags(content), nil
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
