// Package rules implements the boundary lint rules over lowered syntax trees.
//
// Each rule runs in two phases on one file: node-kind hooks collect imports,
// component candidates and export statements during a single traversal, and
// Finalize evaluates every export once the whole file has been seen, because
// exports may reference declarations anywhere in the file.
package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast"
)

// Meta describes a rule.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MessageID   string `json:"messageId"`
	Fixable     bool   `json:"fixable"`
	Recommended bool   `json:"recommended"`
}

// Rule creates per-file checkers.
type Rule interface {
	Meta() Meta
	NewChecker(file *uast.File) Checker
}

// Checker holds one rule's state for one file.
type Checker interface {
	// Register attaches the checker's hooks to t.
	Register(t *Traverser)
	// Finalize runs after traversal and returns the findings.
	Finalize() []Diagnostic
}
