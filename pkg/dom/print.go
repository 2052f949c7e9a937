package dom

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the tree rooted at n, one node per
// line, with the reported owner of each node.
func Fprint(w io.Writer, n *Node) error {
	return fprint(w, n, 0)
}

func fprint(w io.Writer, n *Node, depth int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.String())
	if attrs := n.Attrs.All(); len(attrs) > 0 {
		for _, a := range attrs {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
	}
	if !n.Visible {
		b.WriteString(" [hidden]")
	}
	if n.TrackState {
		b.WriteString(" [state]")
	}
	if n.Owner != nil {
		fmt.Fprintf(&b, " (owner %s)", n.Owner.Name)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := fprint(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// LiteralContents concatenates the text of every text node below n.
func LiteralContents(n *Node) string {
	var b strings.Builder
	Walk(n, func(d *Node) bool {
		if d.Kind == KindText {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}
