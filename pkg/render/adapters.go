package render

import (
	"strings"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Element is the render-time view of an element node. Adapters may change
// Attrs and Raw freely; the node itself is never modified.
type Element struct {
	Node  *dom.Node
	Tag   string
	Attrs dom.Attributes

	// Raw lists lower-case URL attribute names written with minimal
	// encoding. Only ampersands and double quotes are escaped in them.
	Raw map[string]bool
}

// Adapter rewrites an element just before it is written.
type Adapter interface {
	Adapt(el *Element)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(el *Element)

// Adapt calls f(el).
func (f AdapterFunc) Adapt(el *Element) { f(el) }

const attrHideID = "hideid"

// HideID drops the id attribute when hideid="true". The hideid attribute
// itself is never written.
func HideID() Adapter {
	return AdapterFunc(func(el *Element) {
		v, ok := el.Attrs.Get(attrHideID)
		if !ok {
			return
		}
		if strings.EqualFold(v, "true") {
			el.Attrs.Delete("id")
		}
		el.Attrs.Delete(attrHideID)
	})
}

// HideIDAlways drops the id attribute of the given tags unless
// hideid="false". Other tags fall back to HideID.
func HideIDAlways(tags ...string) Adapter {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	fallback := HideID()
	return AdapterFunc(func(el *Element) {
		if !set[el.Tag] {
			fallback.Adapt(el)
			return
		}
		v, ok := el.Attrs.Get(attrHideID)
		el.Attrs.Delete(attrHideID)
		if ok && strings.EqualFold(v, "false") {
			return
		}
		el.Attrs.Delete("id")
	})
}

// EncodeAnchorHref writes the href of anchors fully entity encoded.
func EncodeAnchorHref() Adapter {
	return AdapterFunc(func(el *Element) {
		if el.Tag == "a" {
			delete(el.Raw, "href")
		}
	})
}

// RebaseURLs resolves link href and script src against the owning template
// unit's directory. Owners come from the node, so the head must already be
// repaired for references inside content regions to resolve correctly.
func RebaseURLs(basePath string) Adapter {
	return AdapterFunc(func(el *Element) {
		var attr string
		switch el.Node.Kind {
		case dom.KindLink:
			attr = "href"
		case dom.KindScript:
			attr = "src"
		default:
			return
		}
		v, ok := el.Attrs.Get(attr)
		if !ok {
			return
		}
		var dir string
		if el.Node.Owner != nil {
			dir = el.Node.Owner.Dir
		}
		el.Attrs.Set(attr, Rebase(basePath, dir, v))
	})
}
