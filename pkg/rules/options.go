package rules

import "slices"

// Option defaults.
const (
	DefaultBoundaryComponent = "Boundary"
	DefaultImportSource      = "react-suspense-boundary"
	DefaultWrapperFunction   = "withBoundary"
)

// Options configures both rules. The zero value is completed by Normalize.
type Options struct {
	// BoundaryNames are the element names accepted as a structural boundary.
	BoundaryNames []string `json:"boundaryComponent,omitempty"`
	// ImportSource is the module both the element and the wrapper come from.
	ImportSource string `json:"importSource,omitempty"`
	// WrapperFunction is the higher-order wrapper required on exports.
	WrapperFunction string `json:"withBoundaryFunction,omitempty"`
	// DisableHOCDetection stops treating forwardRef/memo/lazy calls as components.
	DisableHOCDetection bool `json:"disableHOCDetection,omitempty"`
	// AllowBoundaryElement accepts exports whose root element is a boundary.
	AllowBoundaryElement bool `json:"allowBoundaryElement,omitempty"`
	// AllowPureWrapper accepts anonymous default exports that only return a
	// boundary-rooted tree.
	AllowPureWrapper bool `json:"allowPureWrapper,omitempty"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{}.Normalize()
}

// Normalize fills empty fields with defaults and drops blank or repeated
// boundary names while keeping their order.
func (o Options) Normalize() Options {
	names := make([]string, 0, len(o.BoundaryNames))

	for _, name := range o.BoundaryNames {
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		names = []string{DefaultBoundaryComponent}
	}

	o.BoundaryNames = names

	if o.ImportSource == "" {
		o.ImportSource = DefaultImportSource
	}

	if o.WrapperFunction == "" {
		o.WrapperFunction = DefaultWrapperFunction
	}

	return o
}

// PrimaryBoundary is the boundary name suggested in diagnostics.
func (o Options) PrimaryBoundary() string {
	if len(o.BoundaryNames) == 0 {
		return DefaultBoundaryComponent
	}

	return o.BoundaryNames[0]
}

// HOCDetection reports whether HOC calls count as components.
func (o Options) HOCDetection() bool {
	return !o.DisableHOCDetection
}
