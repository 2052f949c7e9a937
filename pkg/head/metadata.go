// Package head manages meta and link elements in a page's metadata section.
//
// Managers only look at typed nodes, so run the head repair pass first if the
// page places metadata inside content regions.
package head

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// ErrNoHead is returned by operations that add nodes to a page without a
// metadata section.
var ErrNoHead = errors.New("page has no metadata section")

// Filter selects which side of a pattern match Matches returns.
type Filter int

// Filter values.
const (
	ReturnMatches Filter = iota + 1
	ReturnNonMatches
)

// Pair is a meta name with its content. Content of repeated names is joined
// with commas.
type Pair struct {
	Name    string
	Content string
}

// Metadata manages named meta elements. Meta elements without a name, such
// as http-equiv ones, are ignored.
type Metadata struct {
	page *dom.Node
}

// NewMetadata creates a metadata manager for the tree rooted at page.
func NewMetadata(page *dom.Node) *Metadata {
	return &Metadata{page: page}
}

// Controls returns every meta element in the head, in document order.
func (m *Metadata) Controls() []*dom.Node {
	return ofKind(m.page, dom.KindMeta)
}

// Find returns the first meta element with the given name, compared
// case-insensitively, or nil.
func (m *Metadata) Find(name string) *dom.Node {
	for _, n := range m.Controls() {
		if v, ok := n.Attrs.Get("name"); ok && strings.EqualFold(v, name) {
			return n
		}
	}
	return nil
}

// Get returns the content of the named meta element.
func (m *Metadata) Get(name string) (string, bool) {
	n := m.Find(name)
	if n == nil {
		return "", false
	}
	return n.Attrs.Value("content"), true
}

// Set updates the content of the named meta element, appending a new one to
// the head when it does not exist yet.
func (m *Metadata) Set(name, content string) error {
	if n := m.Find(name); n != nil {
		n.Attrs.Set("content", content)
		return nil
	}

	h := dom.Head(m.page)
	if h == nil {
		return ErrNoHead
	}
	n, err := dom.NewTyped(dom.KindMeta)
	if err != nil {
		return err
	}
	n.Attrs.Set("name", name)
	n.Attrs.Set("content", content)
	n.Owner = dom.PageUnit(m.page)
	h.AppendChild(n)
	return nil
}

// Pairs returns name/content pairs in order of first appearance.
func (m *Metadata) Pairs() []Pair {
	var out []Pair
	index := make(map[string]int)
	for _, n := range m.Controls() {
		name, ok := n.Attrs.Get("name")
		if !ok {
			continue
		}
		content := n.Attrs.Value("content")
		key := strings.ToLower(name)
		if i, seen := index[key]; seen {
			out[i].Content += "," + content
			continue
		}
		index[key] = len(out)
		out = append(out, Pair{Name: name, Content: content})
	}
	return out
}

// Matches returns the named meta elements that match pattern, or those that
// do not when filter is ReturnNonMatches. Pattern is "*" for every name, or a
// list of names separated by "," or "|". Names compare case-insensitively.
func (m *Metadata) Matches(pattern string, filter Filter) []*dom.Node {
	wildcard := strings.TrimSpace(pattern) == "*"
	names := make(map[string]bool)
	for _, part := range strings.FieldsFunc(pattern, func(r rune) bool { return r == ',' || r == '|' }) {
		names[strings.ToLower(strings.TrimSpace(part))] = true
	}

	var matches, nonMatches []*dom.Node
	for _, n := range m.Controls() {
		name, ok := n.Attrs.Get("name")
		if !ok {
			continue
		}
		if wildcard || names[strings.ToLower(name)] {
			matches = append(matches, n)
		} else {
			nonMatches = append(nonMatches, n)
		}
	}

	if filter == ReturnNonMatches {
		return nonMatches
	}
	return matches
}

// Remove detaches the given nodes from the tree and returns how many were
// attached.
func Remove(nodes []*dom.Node) int {
	var removed int
	for _, n := range nodes {
		if p := n.Parent(); p != nil && p.RemoveChild(n) {
			removed++
		}
	}
	return removed
}

// Hide keeps the given nodes in the tree but stops them from rendering.
func Hide(nodes []*dom.Node) {
	for _, n := range nodes {
		n.Visible = false
		n.TrackState = false
	}
}

func ofKind(page *dom.Node, kind dom.Kind) []*dom.Node {
	h := dom.Head(page)
	if h == nil {
		return nil
	}
	return dom.FindAll(h, dom.OfKind(kind), dom.All)
}
