package dom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestedContainers builds:
//
//	template(page)
//	  head
//	    container(outer)
//	      text
//	      container(inner)
//	        meta
//	    link
func nestedContainers(t *testing.T) (root, outer, inner *Node) {
	t.Helper()
	page := NewTemplateUnit("index.page", "")
	master := NewTemplateUnit("site.master", "")
	page.Wrapper = master

	root = NewTemplate(page)
	head := NewHead()
	root.AppendChild(head)

	outer = NewContainer("outer", master)
	head.AppendChild(outer)
	outer.AppendChild(NewText("<title>x</title>"))

	inner = NewContainer("inner", page)
	outer.AppendChild(inner)
	meta, err := NewTyped(KindMeta)
	require.NoError(t, err)
	inner.AppendChild(meta)

	link, err := NewTyped(KindLink)
	require.NoError(t, err)
	head.AppendChild(link)
	return root, outer, inner
}

func TestFindAll_Nesting(t *testing.T) {
	root, outer, inner := nestedContainers(t)

	tests := []struct {
		name    string
		nesting Nesting
		want    []*Node
	}{
		{"all", All, []*Node{outer, inner}},
		{"outermost", Outermost, []*Node{outer}},
		{"innermost", Innermost, []*Node{inner}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(root, OfKind(KindContainer), tt.nesting)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAll_DocumentOrder(t *testing.T) {
	root, _, _ := nestedContainers(t)

	got := FindAll(root, func(n *Node) bool { return n.Kind.IsRecognized() }, All)
	require.Len(t, got, 2)
	assert.Equal(t, KindMeta, got[0].Kind, "meta precedes link in document order")
	assert.Equal(t, KindLink, got[1].Kind)
}

func TestWalk_SkipChildren(t *testing.T) {
	root, _, _ := nestedContainers(t)

	var kinds []Kind
	Walk(root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindContainer
	})

	assert.Equal(t, []Kind{KindTemplate, KindHead, KindContainer, KindLink}, kinds)
}

func TestRootPageAndHead(t *testing.T) {
	root, _, inner := nestedContainers(t)

	assert.Same(t, root, Root(inner))
	assert.Equal(t, "index.page", PageUnit(inner).Name)
	assert.Same(t, root.Child(0), Head(root))

	orphan := NewText("x")
	assert.Nil(t, PageUnit(orphan), "tree without a template root has no page")
	assert.Nil(t, Head(orphan))
}

func TestDescendants(t *testing.T) {
	root, _, _ := nestedContainers(t)
	assert.Len(t, Descendants(root), 6)
}

func TestFprint(t *testing.T) {
	root, _, _ := nestedContainers(t)
	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, root))

	out := buf.String()
	assert.Contains(t, out, "template index.page (owner index.page)\n")
	assert.Contains(t, out, "    container outer (owner site.master)\n")
	assert.Contains(t, out, "      text \"<title>x</title>\"\n")
}

func TestLiteralContents(t *testing.T) {
	g := NewGroup()
	g.AppendChild(NewText("a"))
	g.AppendChild(NewComment("<!--skip-->"))
	inner := NewGroup()
	inner.AppendChild(NewText("b"))
	g.AppendChild(inner)

	assert.Equal(t, "ab", LiteralContents(g))
}
