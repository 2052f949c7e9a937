package literal

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Fragment is one piece of reconstructed text. The set of implementations is
// closed: Literal, Comment, Element, UnrecognizedText and Error.
type Fragment interface {
	// Source returns the input text the fragment stands for.
	Source() string
	fragment()
}

// Literal is plain text between matches.
type Literal struct {
	Text string
}

// Comment is a comment kept verbatim.
type Comment struct {
	Text string
}

// Element is a recognized link, meta or script tag.
type Element struct {
	Kind  dom.Kind
	Attrs dom.Attributes

	Visible    bool
	TrackState bool

	// Owner is inherited from the node being reconstructed.
	Owner *dom.TemplateUnit

	Text string
}

// UnrecognizedText is a simple tag outside the recognized set. Scanning stops
// after it.
type UnrecognizedText struct {
	Text string
}

// Error is an inline diagnostic.
type Error struct {
	Diag Diagnostic

	// Text is the source the diagnostic replaces. It is empty for mismatch
	// diagnostics, which precede the element and end tag carrying the
	// source.
	Text string
}

func (Literal) fragment()          {}
func (Comment) fragment()          {}
func (Element) fragment()          {}
func (UnrecognizedText) fragment() {}
func (Error) fragment()            {}

func (f Literal) Source() string          { return f.Text }
func (f Comment) Source() string          { return f.Text }
func (f Element) Source() string          { return f.Text }
func (f UnrecognizedText) Source() string { return f.Text }
func (f Error) Source() string            { return f.Text }

// MarkerPrefix starts every diagnostic marker.
const MarkerPrefix = "<!-- parse error: "

// Marker returns the comment markup that makes the diagnostic visible in
// rendered output.
func (f Error) Marker() string {
	return fmt.Sprintf("%s%s -->", MarkerPrefix, f.Diag.Error())
}

// TagName returns the element's canonical tag name.
func (f Element) TagName() string {
	switch f.Kind {
	case dom.KindLink:
		return "link"
	case dom.KindMeta:
		return "meta"
	case dom.KindScript:
		return "script"
	default:
		return ""
	}
}

// Flatten concatenates the source of each fragment.
func Flatten(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Source())
	}
	return b.String()
}
