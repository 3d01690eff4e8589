package textedit

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line-based unified diff between before and after.
// It returns "" when the contents are equal.
func UnifiedDiff(name string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}

	lines := lineDiff(string(before), string(after))

	var out strings.Builder

	fmt.Fprintf(&out, "--- a/%s\n+++ b/%s\n", name, name)

	for _, hunk := range hunks(lines) {
		writeHunk(&out, lines, hunk)
	}

	return out.String()
}

func lineDiff(before, after string) []diffLine {
	dmp := diffmatchpatch.New()

	src, dst, lineArray := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []diffLine

	for _, d := range diffs {
		for line := range strings.Lines(d.Text) {
			lines = append(lines, diffLine{op: d.Type, text: line})
		}
	}

	return lines
}

// hunk is a half-open index range into the diff lines.
type hunk struct{ from, to int }

func hunks(lines []diffLine) []hunk {
	var result []hunk

	for idx, line := range lines {
		if line.op == diffmatchpatch.DiffEqual {
			continue
		}

		from := max(0, idx-diffContext)
		to := min(len(lines), idx+diffContext+1)

		if n := len(result); n > 0 && from <= result[n-1].to {
			result[n-1].to = max(result[n-1].to, to)

			continue
		}

		result = append(result, hunk{from: from, to: to})
	}

	return result
}

func writeHunk(out *strings.Builder, lines []diffLine, h hunk) {
	oldStart, newStart := 1, 1

	for _, line := range lines[:h.from] {
		if line.op != diffmatchpatch.DiffInsert {
			oldStart++
		}

		if line.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	oldCount, newCount := 0, 0

	var body strings.Builder

	for _, line := range lines[h.from:h.to] {
		prefix := " "

		switch line.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
			oldCount++
		case diffmatchpatch.DiffInsert:
			prefix = "+"
			newCount++
		case diffmatchpatch.DiffEqual:
			oldCount++
			newCount++
		}

		body.WriteString(prefix)
		body.WriteString(line.text)

		if !strings.HasSuffix(line.text, "\n") {
			body.WriteString("\n\\ No newline at end of file\n")
		}
	}

	fmt.Fprintf(out, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	out.WriteString(body.String())
}
