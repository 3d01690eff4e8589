package rules

import (
	"github.com/Sumatoshi-tech/boundarylint/pkg/uast/pkg/node"
)

// ReactNamespace is the object name accepted for qualified HOC calls.
const ReactNamespace = "React"

// hocNames are the recognized higher-order component factories.
var hocNames = map[string]bool{
	"forwardRef": true,
	"memo":       true,
	"lazy":       true,
}

// IsHOCCall reports whether n is a call to forwardRef, memo or lazy, either
// bare or as a React member. Arguments are not inspected, so nested
// compositions such as memo(forwardRef(...)) classify as one component.
func IsHOCCall(n *node.Node) bool {
	n = Unparen(n)
	if !n.Is(node.KindCall) {
		return false
	}

	callee := n.Field(node.FieldFunction)

	switch {
	case callee.Is(node.KindIdentifier):
		return hocNames[callee.Token]
	case callee.Is(node.KindMember):
		object := callee.Field(node.FieldObject)
		property := callee.Field(node.FieldProperty)

		return object.Is(node.KindIdentifier) && object.Token == ReactNamespace &&
			property != nil && hocNames[property.Token]
	default:
		return false
	}
}

// CalleeName returns the identifier called by n (after unwrapping type-only
// wrappers), or "" when n is not a call of a bare identifier.
func CalleeName(n *node.Node) string {
	n = UnwrapExpression(n)
	if !n.Is(node.KindCall) {
		return ""
	}

	callee := n.Field(node.FieldFunction)
	if !callee.Is(node.KindIdentifier) {
		return ""
	}

	return callee.Token
}
