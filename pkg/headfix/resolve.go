package headfix

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// ErrOwnerNotInChain means a node's reported owner could not be found in the
// page's wrapper chain. The host tree is structurally inconsistent.
var ErrOwnerNotInChain = errors.New("reported owner is not in the wrapper chain")

// ResolveOwningTemplateUnit returns the template unit n logically belongs to.
//
// Containers report the wrapper that defined them, and the host copies that
// report onto the content it fills them with. When a node's reported owner
// equals that of its nearest enclosing container, the report is wrong and the
// true owner is the unit directly wrapped by the reported one. In every other
// case the report is returned unchanged.
//
// It has no side effects and can be called any number of times.
func ResolveOwningTemplateUnit(n *dom.Node) (*dom.TemplateUnit, error) {
	p := n
	if n.Kind != dom.KindContainer {
		if n.Parent() == nil {
			return n.Owner, nil
		}
		p = n.Parent()
		for p.Parent() != nil && p.Kind != dom.KindContainer && p.Kind != dom.KindTemplate {
			p = p.Parent()
		}
		if p.Kind != dom.KindContainer {
			// no boundary crossed
			return n.Owner, nil
		}
	}

	if p.Owner != n.Owner {
		return n.Owner, nil
	}
	return wrappedBy(n)
}

// wrappedBy walks the page's wrapper chain and returns the unit directly
// wrapped by n's reported owner.
func wrappedBy(n *dom.Node) (*dom.TemplateUnit, error) {
	page := dom.PageUnit(n)
	if page == nil {
		return nil, fmt.Errorf("%w: %s is not attached to a page", ErrOwnerNotInChain, n)
	}

	seen := map[*dom.TemplateUnit]bool{page: true}
	prev := page
	for w := page.Wrapper; w != nil; w = w.Wrapper {
		if seen[w] {
			return nil, fmt.Errorf("%w: %w at %s", ErrOwnerNotInChain, dom.ErrCyclicChain, w.Name)
		}
		seen[w] = true
		if w == n.Owner {
			return prev, nil
		}
		prev = w
	}
	return nil, fmt.Errorf("%w: %s reports %s, page %s", ErrOwnerNotInChain, n, n.Owner, page)
}
