package mdast

import "iter"

// All yields root and its descendants in document order, parents before
// children. A nil root yields nothing.
func All(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		visit(root, yield)
	}
}

func visit(n *Node, yield func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !yield(n) {
		return false
	}
	for _, child := range n.Children {
		if !visit(child, yield) {
			return false
		}
	}
	return true
}

// OfKind yields the nodes under root with the given kind.
func OfKind(root *Node, kind NodeKind) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range All(root) {
			if n.Kind == kind && !yield(n) {
				return
			}
		}
	}
}

// First returns the first node under root accepted by match, or nil.
func First(root *Node, match func(*Node) bool) *Node {
	for n := range All(root) {
		if match(n) {
			return n
		}
	}
	return nil
}
