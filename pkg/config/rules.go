package config

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/boundarylint/pkg/rules"
)

// RuleOptions converts the settings of the named rule to engine options.
func (c *Config) RuleOptions(name string) (rules.Options, error) {
	switch name {
	case rules.RequireBoundaryName:
		rc := c.Rules.RequireBoundary

		return rules.Options{
			BoundaryNames: rc.BoundaryComponent,
			ImportSource:  rc.ImportSource,
		}.Normalize(), nil
	case rules.RequireWithBoundaryName:
		rc := c.Rules.RequireWithBoundary

		return rules.Options{
			BoundaryNames:        rc.BoundaryComponent,
			ImportSource:         rc.ImportSource,
			WrapperFunction:      rc.WithBoundaryFunction,
			DisableHOCDetection:  !rc.EnableHOCDetection,
			AllowBoundaryElement: rc.AllowBoundaryElement,
			AllowPureWrapper:     rc.AllowPureWrapper,
		}.Normalize(), nil
	default:
		return rules.Options{}, fmt.Errorf("%w: %s", rules.ErrUnknownRule, name)
	}
}

// Enabled reports whether the named rule is switched on.
func (c *Config) Enabled(name string) bool {
	switch name {
	case rules.RequireBoundaryName:
		return c.Rules.RequireBoundary.Enabled
	case rules.RequireWithBoundaryName:
		return c.Rules.RequireWithBoundary.Enabled
	default:
		return false
	}
}

// BuildRules instantiates the rules to run. A non-empty only selects exactly
// those rules, regardless of their enabled flag.
func (c *Config) BuildRules(only []string) ([]rules.Rule, error) {
	for _, name := range only {
		if !slices.Contains(rules.Names(), name) {
			return nil, fmt.Errorf("%w: %s", rules.ErrUnknownRule, name)
		}
	}

	var out []rules.Rule

	for _, name := range rules.Names() {
		selected := c.Enabled(name)
		if len(only) > 0 {
			selected = slices.Contains(only, name)
		}

		if !selected {
			continue
		}

		opts, err := c.RuleOptions(name)
		if err != nil {
			return nil, err
		}

		rule, err := rules.New(name, opts)
		if err != nil {
			return nil, fmt.Errorf("build rule: %w", err)
		}

		out = append(out, rule)
	}

	return out, nil
}
