package dom

import (
	"errors"
	"fmt"
)

// ErrCyclicChain is returned when a wrapper chain revisits a unit.
var ErrCyclicChain = errors.New("wrapper chain is cyclic")

// TemplateUnit is one level of template composition: a page or a wrapper.
type TemplateUnit struct {
	// Name identifies the unit, usually its path relative to the template root.
	Name string

	// Dir is the directory relative references inside the unit resolve
	// against. Empty means the template root.
	Dir string

	// Wrapper is the unit that directly wraps this one, or nil at the
	// outermost wrapper.
	Wrapper *TemplateUnit
}

// NewTemplateUnit creates a unit with the given name and directory.
func NewTemplateUnit(name, dir string) *TemplateUnit {
	return &TemplateUnit{Name: name, Dir: dir}
}

// Chain returns the unit followed by every enclosing wrapper, innermost
// first.
func (u *TemplateUnit) Chain() ([]*TemplateUnit, error) {
	var chain []*TemplateUnit
	seen := make(map[*TemplateUnit]bool)
	for cur := u; cur != nil; cur = cur.Wrapper {
		if seen[cur] {
			return chain, fmt.Errorf("%w at %s", ErrCyclicChain, cur.Name)
		}
		seen[cur] = true
		chain = append(chain, cur)
	}
	return chain, nil
}

func (u *TemplateUnit) String() string {
	if u == nil {
		return "<nil>"
	}
	return u.Name
}
