package rules

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownRule is returned for rule names that are not registered.
var ErrUnknownRule = errors.New("unknown rule")

// Factory builds a rule from options.
type Factory func(opts Options) Rule

// registry lists the built-in rules.
//
//nolint:gochecknoglobals // Read-only registry of built-in rules.
var registry = map[string]Factory{
	RequireBoundaryName:     func(opts Options) Rule { return NewRequireBoundary(opts) },
	RequireWithBoundaryName: func(opts Options) Rule { return NewRequireWithBoundary(opts) },
}

// Names returns the registered rule names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// New builds the named rule.
func New(name string, opts Options) (Rule, error) {
	factory, ok := registry[name]
	if !ok {
		if hint := suggest(name, Names()); hint != "" {
			return nil, fmt.Errorf("%w: %s (did you mean %q?)", ErrUnknownRule, name, hint)
		}

		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}

	return factory(opts), nil
}

// AllMeta returns metadata for every registered rule, sorted by name.
func AllMeta() []Meta {
	names := Names()
	metas := make([]Meta, 0, len(names))

	for _, name := range names {
		metas = append(metas, registry[name](DefaultOptions()).Meta())
	}

	return metas
}
