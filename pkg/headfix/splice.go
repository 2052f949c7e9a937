package headfix

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// ErrDetached is returned when a node to replace has no parent.
var ErrDetached = errors.New("node has no parent")

// Splice puts repl in n's position. It reports false and leaves the tree
// untouched when repl is n.
func Splice(n, repl *dom.Node) (bool, error) {
	if repl == n {
		return false, nil
	}
	parent := n.Parent()
	if parent == nil {
		return false, fmt.Errorf("splice %s: %w", n, ErrDetached)
	}
	if err := parent.ReplaceChild(n, repl); err != nil {
		return false, fmt.Errorf("splice %s: %w", n, err)
	}
	return true, nil
}

// Promotable reports whether n is a generic element whose tag has a typed
// form.
func Promotable(n *dom.Node) bool {
	if n.Kind != dom.KindElement {
		return false
	}
	_, ok := dom.KindForTag(n.Tag)
	return ok
}

// Promote replaces the generic element n with its typed equivalent. The
// replacement carries n's attributes, flags and children, and its owner is
// resolved from n. Non-promotable nodes are returned unchanged.
func Promote(n *dom.Node) (*dom.Node, error) {
	if !Promotable(n) {
		return n, nil
	}
	kind, _ := dom.KindForTag(n.Tag)

	owner, err := ResolveOwningTemplateUnit(n)
	if err != nil {
		return nil, fmt.Errorf("promote %s: %w", n, err)
	}

	repl, err := dom.NewTyped(kind)
	if err != nil {
		return nil, err
	}
	repl.Attrs = n.Attrs.Clone()
	repl.Visible = n.Visible
	repl.TrackState = n.TrackState
	repl.Owner = owner
	for _, c := range n.Children() {
		repl.AppendChild(c)
	}

	if _, err := Splice(n, repl); err != nil {
		// put the children back so n is left as it was
		for _, c := range repl.Children() {
			n.AppendChild(c)
		}
		return nil, err
	}
	return repl, nil
}
