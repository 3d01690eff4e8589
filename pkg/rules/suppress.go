package rules

import (
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// Suppression directives recognized in comments.
const (
	DirectiveDisable         = "boundarylint-disable"
	DirectiveEnable          = "boundarylint-enable"
	DirectiveDisableLine     = "boundarylint-disable-line"
	DirectiveDisableNextLine = "boundarylint-disable-next-line"
)

// disableRange silences rules from one line up to, but not including, to.
// to == 0 means end of file; nil rules means every rule.
type disableRange struct {
	from, to int
	rules    []string
}

// Suppressions holds the disable directives of one file.
type Suppressions struct {
	ranges []disableRange
	lines  map[int][][]string
}

// ParseSuppressions scans the comments of a tree for directives.
func ParseSuppressions(root *node.Node, src []byte) *Suppressions {
	s := &Suppressions{lines: make(map[int][][]string)}

	for _, comment := range root.Find(func(n *node.Node) bool { return n.Is(node.KindComment) }) {
		directive, rules := parseDirective(comment.Text(src))
		if directive == "" || comment.Pos == nil {
			continue
		}

		line := int(comment.Pos.StartLine)

		switch directive {
		case DirectiveDisable:
			s.ranges = append(s.ranges, disableRange{from: line, rules: rules})
		case DirectiveEnable:
			s.close(line, rules)
		case DirectiveDisableLine:
			s.lines[line] = append(s.lines[line], rules)
		case DirectiveDisableNextLine:
			next := int(comment.Pos.EndLine) + 1
			s.lines[next] = append(s.lines[next], rules)
		}
	}

	return s
}

func (s *Suppressions) close(line int, rules []string) {
	for idx := range s.ranges {
		r := &s.ranges[idx]
		if r.to != 0 {
			continue
		}

		if rules == nil || r.rules == nil || slices.ContainsFunc(r.rules, func(name string) bool {
			return slices.Contains(rules, name)
		}) {
			r.to = line
		}
	}
}

// Suppressed reports whether d is silenced by a directive.
func (s *Suppressions) Suppressed(d Diagnostic) bool {
	if s == nil {
		return false
	}

	for _, rules := range s.lines[d.Line] {
		if matchesRule(rules, d.Rule) {
			return true
		}
	}

	for _, r := range s.ranges {
		if d.Line >= r.from && (r.to == 0 || d.Line < r.to) && matchesRule(r.rules, d.Rule) {
			return true
		}
	}

	return false
}

// Filter drops suppressed diagnostics.
func (s *Suppressions) Filter(diags []Diagnostic) []Diagnostic {
	if s == nil || (len(s.ranges) == 0 && len(s.lines) == 0) {
		return diags
	}

	return slices.DeleteFunc(diags, s.Suppressed)
}

func matchesRule(rules []string, rule string) bool {
	return rules == nil || slices.Contains(rules, rule)
}

// parseDirective extracts the directive and its rule list from comment text.
// A trailing "-- reason" is ignored.
func parseDirective(text string) (string, []string) {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	default:
		return "", nil
	}

	text, _, _ = strings.Cut(text, "--")
	fields := strings.Fields(text)

	if len(fields) == 0 {
		return "", nil
	}

	switch fields[0] {
	case DirectiveDisable, DirectiveEnable, DirectiveDisableLine, DirectiveDisableNextLine:
	default:
		return "", nil
	}

	var rules []string

	for _, field := range fields[1:] {
		for name := range strings.SplitSeq(field, ",") {
			if name = strings.TrimSpace(name); name != "" {
				rules = append(rules, name)
			}
		}
	}

	return fields[0], rules
}
