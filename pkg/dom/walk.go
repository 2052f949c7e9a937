package dom

// Nesting restricts FindAll when matches are nested inside other matches.
type Nesting int

// Nesting modes.
const (
	All       Nesting = iota // every match
	Outermost                // skip matches nested inside another match
	Innermost                // skip matches that contain another match
)

// Walk visits n and its descendants in document order. Returning false from
// fn skips the visited node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// Descendants returns every node below n in document order, n excluded.
func Descendants(n *Node) []*Node {
	var out []*Node
	for _, c := range n.children {
		Walk(c, func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// FindAll returns the descendants of root (root excluded) that satisfy match,
// in document order, filtered by nesting.
func FindAll(root *Node, match func(*Node) bool, nesting Nesting) []*Node {
	var out []*Node
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		hit := match(n)
		switch {
		case hit && nesting == Outermost:
			out = append(out, n)
			return true
		case hit && nesting == All:
			out = append(out, n)
		}
		var inner bool
		for _, c := range n.children {
			if visit(c) {
				inner = true
			}
		}
		if hit && nesting == Innermost && !inner {
			out = append(out, n)
		}
		return hit || inner
	}
	for _, c := range root.children {
		visit(c)
	}
	return out
}

// FindFirst returns the first descendant of root matching match, or nil.
func FindFirst(root *Node, match func(*Node) bool) *Node {
	var found *Node
	for _, c := range root.children {
		Walk(c, func(n *Node) bool {
			if found != nil {
				return false
			}
			if match(n) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// OfKind returns a matcher for nodes of kind k.
func OfKind(k Kind) func(*Node) bool {
	return func(n *Node) bool { return n.Kind == k }
}

// Root returns the topmost ancestor of n.
func Root(n *Node) *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// PageUnit returns the page template unit of the tree holding n, or nil when
// the tree root is not a template boundary.
func PageUnit(n *Node) *TemplateUnit {
	r := Root(n)
	if r.Kind != KindTemplate {
		return nil
	}
	return r.Unit
}

// Head returns the metadata section of the tree rooted at root, or nil.
func Head(root *Node) *Node {
	if root.Kind == KindHead {
		return root
	}
	return FindFirst(root, OfKind(KindHead))
}
