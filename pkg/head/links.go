package head

import (
	"strings"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Links manages link elements in the head.
type Links struct {
	page *dom.Node
}

// NewLinks creates a link manager for the tree rooted at page.
func NewLinks(page *dom.Node) *Links {
	return &Links{page: page}
}

// Controls returns every link element in the head, in document order.
func (l *Links) Controls() []*dom.Node {
	return ofKind(l.page, dom.KindLink)
}

// Hrefs returns the href of every link element, as written.
func (l *Links) Hrefs() []string {
	links := l.Controls()
	out := make([]string, 0, len(links))
	for _, n := range links {
		out = append(out, n.Attrs.Value("href"))
	}
	return out
}

// Find returns the first link whose href equals href case-insensitively,
// or nil.
func (l *Links) Find(href string) *dom.Node {
	for _, n := range l.Controls() {
		if strings.EqualFold(n.Attrs.Value("href"), href) {
			return n
		}
	}
	return nil
}

// Add appends a stylesheet link. href may be relative to the page,
// application relative ("~/") or absolute.
func (l *Links) Add(href string) error {
	return l.AddWith(href, "stylesheet", "text/css")
}

// AddWith appends a link with the given rel and type. The new link belongs
// to the page, so relative hrefs resolve against the page's directory.
func (l *Links) AddWith(href, rel, typ string) error {
	h := dom.Head(l.page)
	if h == nil {
		return ErrNoHead
	}
	n, err := dom.NewTyped(dom.KindLink)
	if err != nil {
		return err
	}
	n.Attrs.Set("href", href)
	n.Attrs.Set("rel", rel)
	n.Attrs.Set("type", typ)
	n.Owner = dom.PageUnit(l.page)
	h.AppendChild(n)
	return nil
}

// AddIfMissing adds a stylesheet link unless one with the same href exists.
// It reports whether a link was added.
func (l *Links) AddIfMissing(href string) (bool, error) {
	if l.Find(href) != nil {
		return false, nil
	}
	if err := l.Add(href); err != nil {
		return false, err
	}
	return true, nil
}

// Remove detaches every link whose href equals href case-insensitively and
// returns how many were removed.
func (l *Links) Remove(href string) int {
	var matches []*dom.Node
	for _, n := range l.Controls() {
		if strings.EqualFold(n.Attrs.Value("href"), href) {
			matches = append(matches, n)
		}
	}
	return Remove(matches)
}
