package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

func TestReconstruct_CommentLinkMeta(t *testing.T) {
	owner := dom.NewTemplateUnit("content.page", "")
	input := `<!--c--><link href="a.css" rel="stylesheet"><meta name="x" content="y"/>`

	frags := Reconstruct(input, owner)
	require.Len(t, frags, 3, "wrong number of fragments")

	comment, ok := frags[0].(Comment)
	require.True(t, ok, "fragment[0] should be a comment, got %T", frags[0])
	assert.Equal(t, "<!--c-->", comment.Text)

	link, ok := frags[1].(Element)
	require.True(t, ok, "fragment[1] should be an element, got %T", frags[1])
	assert.Equal(t, dom.KindLink, link.Kind)
	assert.Equal(t, map[string]string{"href": "a.css", "rel": "stylesheet"}, link.Attrs.Map())
	assert.Same(t, owner, link.Owner)

	meta, ok := frags[2].(Element)
	require.True(t, ok, "fragment[2] should be an element, got %T", frags[2])
	assert.Equal(t, dom.KindMeta, meta.Kind)
	assert.Equal(t, map[string]string{"name": "x", "content": "y"}, meta.Attrs.Map())
	assert.Same(t, owner, meta.Owner)
}

func TestReconstruct_MismatchDiagnostic(t *testing.T) {
	frags := Reconstruct("<link></meta>", nil)
	require.Len(t, frags, 3)

	diag, ok := frags[0].(Error)
	require.True(t, ok, "diagnostic must lead, got %T", frags[0])
	assert.Equal(t, ReasonTagMismatch, diag.Diag.Reason())
	assert.Contains(t, diag.Marker(), "<!-- parse error:")
	assert.Empty(t, diag.Source())

	var mismatch *MismatchError
	require.ErrorAs(t, diag.Diag, &mismatch)
	assert.Equal(t, "link", mismatch.StartTag)
	assert.Equal(t, "meta", mismatch.EndTag)

	el, ok := frags[1].(Element)
	require.True(t, ok)
	assert.Equal(t, dom.KindLink, el.Kind)
	assert.Equal(t, "<link>", el.Source())
	assert.Equal(t, Literal{Text: "</meta>"}, frags[2], "the foreign end tag is kept")
	assert.Equal(t, "<link></meta>", Flatten(frags))
}

func TestReconstruct_MismatchedEndTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []string
		tail  string
	}{
		{
			name:  "end tag of an enclosing element",
			input: `<noscript><link rel="stylesheet" href="x.css"></noscript><meta name="a" content="b"/>`,
			kinds: []string{"Literal", "Error", "Element", "Literal", "Element"},
			tail:  "</noscript>",
		},
		{
			name:  "whitespace before the end tag",
			input: "<link href=\"x.css\">\n</div>",
			kinds: []string{"Error", "Element", "Literal"},
			tail:  "\n</div>",
		},
		{
			name:  "own end tag in another case",
			input: `<script src="a.js"></SCRIPT>`,
			kinds: []string{"Error", "Element"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := Reconstruct(tt.input, nil)
			kinds := make([]string, 0, len(frags))
			var literals []string
			for _, f := range frags {
				switch f := f.(type) {
				case Literal:
					kinds = append(kinds, "Literal")
					literals = append(literals, f.Text)
				case Error:
					kinds = append(kinds, "Error")
				case Element:
					kinds = append(kinds, "Element")
				default:
					kinds = append(kinds, "other")
				}
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.input, Flatten(frags))
			if tt.tail != "" {
				assert.Contains(t, literals, tt.tail)
			}
		})
	}
}

func TestReconstruct_UnrecognizedStops(t *testing.T) {
	input := `<meta name="a"/> <title></title><link href="b.css"/>`
	frags := Reconstruct(input, nil)

	require.Len(t, frags, 4)
	assert.IsType(t, Element{}, frags[0])
	assert.Equal(t, Literal{Text: " "}, frags[1])
	assert.Equal(t, UnrecognizedText{Text: "<title></title>"}, frags[2])
	assert.Equal(t, Literal{Text: `<link href="b.css"/>`}, frags[3],
		"nothing after an unrecognized tag is extracted")
}

func TestReconstruct_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"\n  <!-- comment -->\n",
		`<!--c--><link href="a.css" rel="stylesheet"><meta name="x" content="y"/>`,
		`<script src="a.js"></script><script src='b.js' />`,
		`<%-- note --%> <link rel=stylesheet href=x.css visible="false" />`,
		`<meta name="a" /><br/><meta name="b" />`,
		`<div>body</div><link href="a"/> tail`,
		`<link href="<%# Url %>" />`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, input, Flatten(Reconstruct(input, nil)))
		})
	}
}

func TestReconstruct_PseudoAttributes(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		attrs      map[string]string
		visible    bool
		trackState bool
	}{
		{
			name:    "defaults",
			input:   `<link href="a.css" />`,
			attrs:   map[string]string{"href": "a.css"},
			visible: true,
		},
		{
			name:       "explicit flags",
			input:      `<link href="a.css" visible="False" track-state="TRUE" />`,
			attrs:      map[string]string{"href": "a.css"},
			visible:    false,
			trackState: true,
		},
		{
			name:    "track-state other than true",
			input:   `<meta name="a" track-state="yes" />`,
			attrs:   map[string]string{"name": "a"},
			visible: true,
		},
		{
			name:       "legacy spelling",
			input:      `<script src="a.js" EnableViewState="true"></script>`,
			attrs:      map[string]string{"src": "a.js"},
			visible:    true,
			trackState: true,
		},
		{
			name:       "canonical spelling wins",
			input:      `<meta name="a" EnableViewState="false" track-state="true" />`,
			attrs:      map[string]string{"name": "a"},
			visible:    true,
			trackState: true,
		},
		{
			name:    "visible other than true",
			input:   `<meta name="a" Visible="1" />`,
			attrs:   map[string]string{"name": "a"},
			visible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := Reconstruct(tt.input, nil)
			require.Len(t, frags, 1)
			el, ok := frags[0].(Element)
			require.True(t, ok, "expected element, got %T", frags[0])

			assert.Equal(t, tt.attrs, el.Attrs.Map())
			assert.Equal(t, tt.visible, el.Visible, "visible")
			assert.Equal(t, tt.trackState, el.TrackState, "track state")
		})
	}
}

func TestReconstruct_AttributeValues(t *testing.T) {
	input := `<meta name="a" name="b" content="x &amp; y" scheme=<%# "a&amp;b" %> />`
	frags := Reconstruct(input, nil)
	require.Len(t, frags, 1)
	el := frags[0].(Element)

	assert.Equal(t, "b", el.Attrs.Value("name"), "later duplicates win")
	assert.Equal(t, "x & y", el.Attrs.Value("content"), "entities are decoded")
	assert.Equal(t, `<%# "a&amp;b" %>`, el.Attrs.Value("scheme"), "bound expressions are kept verbatim")
}

func TestBuild(t *testing.T) {
	owner := dom.NewTemplateUnit("index.page", "")

	t.Run("no structure returns the node", func(t *testing.T) {
		n := dom.NewText("just text")
		got, err := Build(n, owner)
		require.NoError(t, err)
		assert.Same(t, n, got)
	})

	t.Run("single fragment is not wrapped", func(t *testing.T) {
		n := dom.NewText(`<meta name="x" content="y"/>`)
		got, err := Build(n, owner)
		require.NoError(t, err)
		assert.Equal(t, dom.KindMeta, got.Kind)
		assert.Same(t, owner, got.Owner)
	})

	t.Run("several fragments are grouped", func(t *testing.T) {
		n := dom.NewText("\n<link href=\"a.css\"/>\n<title></title>\n")
		got, err := Build(n, owner)
		require.NoError(t, err)
		require.Equal(t, dom.KindGroup, got.Kind)

		kinds := make([]dom.Kind, 0, got.ChildCount())
		for _, c := range got.Children() {
			kinds = append(kinds, c.Kind)
			assert.Same(t, owner, c.Owner)
		}
		assert.Equal(t, []dom.Kind{dom.KindText, dom.KindLink, dom.KindText, dom.KindText, dom.KindText}, kinds)
		for _, c := range got.Children() {
			if c.Kind == dom.KindText {
				assert.True(t, c.Verbatim, "reconstructed text is verbatim")
			}
		}
	})

	t.Run("mismatch renders a marker", func(t *testing.T) {
		got, err := Build(dom.NewText("<link></meta>"), owner)
		require.NoError(t, err)
		require.Equal(t, 3, got.ChildCount())
		assert.Equal(t, dom.KindComment, got.Child(0).Kind)
		assert.Contains(t, got.Child(0).Text, "end tag does not match start tag")
		assert.Equal(t, dom.KindLink, got.Child(1).Kind)
		assert.Equal(t, "</meta>", got.Child(2).Text)
	})
}
