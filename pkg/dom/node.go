// Package dom provides the in-memory page tree that the host builds and the
// head repair pass rewrites: nodes, their attributes, and the template units
// that own them.
package dom

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind identifies what a Node represents.
type Kind int

// Kind constants for node types.
const (
	KindText      Kind = iota // Raw markup text, emitted verbatim
	KindComment               // Comment markup, emitted verbatim
	KindElement               // Generic server element (Tag holds the name)
	KindLink                  // <link> reference, href rebased at render time
	KindMeta                  // <meta> element
	KindScript                // <script> reference, src rebased at render time
	KindHead                  // The document's metadata section
	KindContainer             // Content placeholder
	KindTemplate              // Template unit boundary (page or wrapper)
	KindGroup                 // Ordered wrapper with no markup of its own
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindElement:
		return "element"
	case KindLink:
		return "link"
	case KindMeta:
		return "meta"
	case KindScript:
		return "script"
	case KindHead:
		return "head"
	case KindContainer:
		return "container"
	case KindTemplate:
		return "template"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// IsRecognized reports whether k is one of the typed reference kinds
// (link, meta, script).
func (k Kind) IsRecognized() bool {
	return k == KindLink || k == KindMeta || k == KindScript
}

// recognizedTags maps lower-case tag names to their typed kinds.
var recognizedTags = map[string]Kind{
	"link":   KindLink,
	"meta":   KindMeta,
	"script": KindScript,
}

// KindForTag returns the typed kind for a recognized tag name.
// Matching is case-insensitive.
func KindForTag(tag string) (Kind, bool) {
	k, ok := recognizedTags[strings.ToLower(strings.TrimSpace(tag))]
	return k, ok
}

// RecognizedTags returns the tag names the head repair turns into typed
// nodes, sorted.
func RecognizedTags() []string {
	return slices.Sorted(maps.Keys(recognizedTags))
}

// ErrNotChild is returned when an operation names a node that is not a child
// of the receiver.
var ErrNotChild = errors.New("node is not a child of this parent")

// Node is one element of the page tree.
//
// Tree ownership runs strictly parent to child. Owner is a lookup-only
// reference to the template unit the node logically belongs to.
type Node struct {
	Kind Kind

	// Tag is the element name for KindElement and KindHead nodes. Typed
	// kinds report their canonical tag through TagName.
	Tag string

	// ID names containers and template boundaries.
	ID string

	// Text holds the markup of text and comment nodes.
	Text string

	Attrs Attributes

	Visible    bool
	TrackState bool // participates in view state

	// Verbatim marks text that has already been through reconstruction.
	Verbatim bool

	// Owner is the template unit the node reports as its owner.
	Owner *TemplateUnit

	// Unit is set on KindTemplate nodes only.
	Unit *TemplateUnit

	parent   *Node
	children []*Node
}

func newNode(kind Kind) *Node {
	return &Node{Kind: kind, Visible: true}
}

// NewText creates a raw text node.
func NewText(text string) *Node {
	n := newNode(KindText)
	n.Text = text
	return n
}

// NewComment creates a comment node holding the full comment markup.
func NewComment(text string) *Node {
	n := newNode(KindComment)
	n.Text = text
	return n
}

// NewElement creates a generic element. Recognized tag names still produce
// a generic element; use NewTyped for the specialized form.
func NewElement(tag string) *Node {
	n := newNode(KindElement)
	n.Tag = strings.ToLower(tag)
	return n
}

// NewTyped creates a link, meta or script node.
func NewTyped(kind Kind) (*Node, error) {
	if !kind.IsRecognized() {
		return nil, fmt.Errorf("kind %s is not a recognized element kind", kind)
	}
	return newNode(kind), nil
}

// NewHead creates the metadata section node.
func NewHead() *Node {
	n := newNode(KindHead)
	n.Tag = "head"
	return n
}

// NewContainer creates a content placeholder defined by owner.
func NewContainer(id string, owner *TemplateUnit) *Node {
	n := newNode(KindContainer)
	n.ID = id
	n.Owner = owner
	return n
}

// NewTemplate creates a template unit boundary node.
func NewTemplate(u *TemplateUnit) *Node {
	n := newNode(KindTemplate)
	n.Unit = u
	n.Owner = u
	if u != nil {
		n.ID = u.Name
	}
	return n
}

// NewGroup creates an ordered wrapper node.
func NewGroup() *Node {
	return newNode(KindGroup)
}

// TagName returns the element name the node renders as, or "" for nodes
// without markup of their own.
func (n *Node) TagName() string {
	switch n.Kind {
	case KindLink:
		return "link"
	case KindMeta:
		return "meta"
	case KindScript:
		return "script"
	case KindElement, KindHead:
		return n.Tag
	default:
		return ""
	}
}

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// IndexOf returns the position of c among n's children, or -1.
func (n *Node) IndexOf(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// AppendChild adds c as the last child, detaching it from any previous
// parent first.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertAt inserts c at position i (clamped to the valid range), detaching
// it from any previous parent first.
func (n *Node) InsertAt(i int, c *Node) {
	c.detach()
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// RemoveChild detaches c from n. It reports whether c was a child.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.IndexOf(c)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i:i], n.children[i+1:]...)
	c.parent = nil
	return true
}

// ReplaceChild puts repl in old's position and detaches old. The child list
// is swapped in a single assignment, so no intermediate state is observable.
// Replacing a node with itself is a no-op.
func (n *Node) ReplaceChild(old *Node, repl ...*Node) error {
	i := n.IndexOf(old)
	if i < 0 {
		return ErrNotChild
	}
	if len(repl) == 1 && repl[0] == old {
		return nil
	}
	for _, r := range repl {
		if r == old {
			return errors.New("replacement list contains the replaced node")
		}
		r.detach()
	}
	// detaching a replacement may have shifted old
	i = n.IndexOf(old)

	next := make([]*Node, 0, len(n.children)-1+len(repl))
	next = append(next, n.children[:i]...)
	next = append(next, repl...)
	next = append(next, n.children[i+1:]...)
	for _, r := range repl {
		r.parent = n
	}
	n.children = next
	old.parent = nil
	return nil
}

func (n *Node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// String returns a short human-readable description of the node.
func (n *Node) String() string {
	switch n.Kind {
	case KindText, KindComment:
		return fmt.Sprintf("%s %q", n.Kind, abbreviate(n.Text, 32))
	case KindContainer, KindTemplate:
		return fmt.Sprintf("%s %s", n.Kind, n.ID)
	case KindGroup:
		return n.Kind.String()
	default:
		return fmt.Sprintf("%s <%s>", n.Kind, n.TagName())
	}
}

func abbreviate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
