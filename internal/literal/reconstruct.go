package literal

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Pseudo-attributes pulled out of the attribute bag into node flags.
const (
	AttrVisible         = "visible"
	AttrTrackState      = "track-state"
	AttrEnableViewState = "enableviewstate" // legacy spelling of track-state
)

// Reconstruct splits text into fragments. Recognized elements inherit owner.
//
// The first unrecognized tag ends structural extraction: it is kept as
// UnrecognizedText and everything after it becomes one trailing Literal.
func Reconstruct(text string, owner *dom.TemplateUnit) []Fragment {
	var frags []Fragment
	cursor := 0

scan:
	for cursor < len(text) {
		m, ok := NextMatch(text, cursor)
		if !ok {
			break
		}
		if m.Start > cursor {
			frags = append(frags, Literal{Text: text[cursor:m.Start]})
		}
		cursor = m.End()

		switch m.Kind {
		case MatchComment:
			frags = append(frags, Comment{Text: m.Text})
		case MatchTag:
			if m.Mismatch {
				diag := NewMismatchError(PositionOf(text, m.Start), m.TagName, m.EndTagName)
				frags = append(frags, Error{Diag: diag})
			}
			kind, ok := dom.KindForTag(m.TagName)
			if !ok {
				frags = append(frags, UnrecognizedText{Text: m.Text})
				break scan
			}
			el := newElement(kind, m, owner)
			// An end tag naming another element closes something outside
			// this text, so it stays in the output.
			var closing string
			if m.Mismatch && !strings.EqualFold(m.EndTagName, m.TagName) {
				closing = m.Closing
				el.Text = strings.TrimSuffix(m.Text, closing)
			}
			frags = append(frags, el)
			if closing != "" {
				frags = append(frags, Literal{Text: closing})
			}
		default:
			diag := NewUnclassifiedError(PositionOf(text, m.Start), m.Text)
			frags = append(frags, Error{Diag: diag, Text: m.Text})
		}
	}

	if cursor < len(text) {
		frags = append(frags, Literal{Text: text[cursor:]})
	}
	return frags
}

func newElement(kind dom.Kind, m Match, owner *dom.TemplateUnit) Element {
	el := Element{Kind: kind, Visible: true, Owner: owner, Text: m.Text}
	for _, a := range m.Attrs {
		v := a.Value
		if a.Form != FormBound {
			v = html.UnescapeString(v)
		}
		el.Attrs.Set(a.Name, v)
	}

	el.Visible, el.TrackState = TakeFlags(&el.Attrs, el.Visible, el.TrackState)
	return el
}

// TakeFlags moves the visible and track-state pseudo-attributes out of attrs
// and returns the resulting flags. Absent attributes keep the given values.
// track-state wins over its legacy spelling when both are present.
func TakeFlags(attrs *dom.Attributes, visible, trackState bool) (bool, bool) {
	if v, ok := attrs.Get(AttrVisible); ok {
		visible = strings.EqualFold(v, "true")
		attrs.Delete(AttrVisible)
	}
	for _, key := range []string{AttrTrackState, AttrEnableViewState} {
		if v, ok := attrs.Get(key); ok {
			trackState = strings.EqualFold(v, "true")
			break
		}
	}
	attrs.Delete(AttrTrackState)
	attrs.Delete(AttrEnableViewState)
	return visible, trackState
}

// Nodes converts fragments into tree nodes, in order. Literal text is marked
// verbatim so later passes leave it alone.
func Nodes(frags []Fragment, owner *dom.TemplateUnit) ([]*dom.Node, error) {
	out := make([]*dom.Node, 0, len(frags))
	text := func(s string) *dom.Node {
		n := dom.NewText(s)
		n.Verbatim = true
		n.Owner = owner
		return n
	}

	for _, f := range frags {
		switch f := f.(type) {
		case Literal:
			out = append(out, text(f.Text))
		case UnrecognizedText:
			out = append(out, text(f.Text))
		case Comment:
			c := dom.NewComment(f.Text)
			c.Owner = owner
			out = append(out, c)
		case Error:
			c := dom.NewComment(f.Marker())
			c.Owner = owner
			out = append(out, c)
			if f.Text != "" {
				out = append(out, text(f.Text))
			}
		case Element:
			n, err := f.Node()
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

// Node builds the typed tree node for the element.
func (f Element) Node() (*dom.Node, error) {
	n, err := dom.NewTyped(f.Kind)
	if err != nil {
		return nil, err
	}
	n.Attrs = f.Attrs.Clone()
	n.Visible = f.Visible
	n.TrackState = f.TrackState
	n.Owner = f.Owner
	return n, nil
}

// Build reconstructs the text node n with the given owner and returns its
// replacement: a single node, or a group holding every fragment node in
// order. When reconstruction finds no structure, n itself is returned.
func Build(n *dom.Node, owner *dom.TemplateUnit) (*dom.Node, error) {
	frags := Reconstruct(n.Text, owner)
	if len(frags) == 0 {
		return n, nil
	}
	if len(frags) == 1 {
		switch f := frags[0].(type) {
		case Literal:
			if f.Text == n.Text {
				return n, nil
			}
		case UnrecognizedText:
			if f.Text == n.Text {
				return n, nil
			}
		}
	}

	nodes, err := Nodes(frags, owner)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	g := dom.NewGroup()
	g.Owner = owner
	for _, c := range nodes {
		g.AppendChild(c)
	}
	return g, nil
}
