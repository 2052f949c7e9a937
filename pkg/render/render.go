// Package render writes a page tree as HTML.
package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/headfix/internal/literal"
	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Config holds renderer configuration.
type Config struct {
	// BasePath is the application root "~/" references resolve to.
	BasePath string
	// HideIDAlways lists tags whose id is dropped unless hideid="false".
	HideIDAlways []string
	// EncodeAnchorHref entity encodes the href of anchors.
	EncodeAnchorHref bool
	// Minify compacts the rendered HTML.
	Minify bool
	// Adapters run after the built-in adapters, in order.
	Adapters []Adapter
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Renderer writes page trees.
type Renderer struct {
	adapters []Adapter
	minifier *minify.M
	logger   *slog.Logger
}

// serverOnly attributes are consumed by the host and never written.
var serverOnly = map[string]bool{"runat": true}

// New creates a renderer.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	adapters := []Adapter{RebaseURLs(cfg.BasePath), HideIDAlways(cfg.HideIDAlways...)}
	if cfg.EncodeAnchorHref {
		adapters = append(adapters, EncodeAnchorHref())
	}
	adapters = append(adapters, cfg.Adapters...)

	r := &Renderer{adapters: adapters, logger: logger}
	if cfg.Minify {
		r.minifier = minify.New()
		r.minifier.Add("text/html", &mhtml.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
	}
	return r
}

// Render writes the tree rooted at root to w.
func (r *Renderer) Render(w io.Writer, root *dom.Node) error {
	if r.minifier == nil {
		return r.write(w, root)
	}

	var buf bytes.Buffer
	if err := r.write(&buf, root); err != nil {
		return err
	}
	size := buf.Len()
	cw := &countingWriter{w: w}
	if err := r.minifier.Minify("text/html", cw, &buf); err != nil {
		return fmt.Errorf("minify: %w", err)
	}
	r.logger.Debug("output minified", "bytes_in", size, "bytes_out", cw.n)
	return nil
}

// RenderString renders the tree rooted at root into a string.
func (r *Renderer) RenderString(root *dom.Node) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, root); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) write(w io.Writer, n *dom.Node) error {
	if !n.Visible {
		return nil
	}

	switch n.Kind {
	case dom.KindText, dom.KindComment:
		_, err := io.WriteString(w, n.Text)
		return err
	case dom.KindTemplate, dom.KindContainer, dom.KindGroup:
		return r.writeChildren(w, n)
	}

	el := r.adapt(n)
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, a := range el.Attrs.All() {
		name := strings.ToLower(a.Name)
		if serverOnly[name] {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		if el.Raw[name] {
			b.WriteString(escapeURLAttr(a.Value))
		} else {
			b.WriteString(html.EscapeString(a.Value))
		}
		b.WriteByte('"')
	}

	selfClose := n.Kind == dom.KindLink || n.Kind == dom.KindMeta ||
		(n.Kind == dom.KindElement && n.ChildCount() == 0 && literal.IsVoid(el.Tag))
	if selfClose {
		b.WriteString(" />")
		_, err := io.WriteString(w, b.String())
		return err
	}

	// script references are never self-closed
	b.WriteByte('>')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if err := r.writeChildren(w, n); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "</%s>", el.Tag)
	return err
}

var (
	ampQuoteEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")
	quoteEscaper    = strings.NewReplacer(`"`, "&quot;")
)

// escapeURLAttr encodes only what would break the attribute or read back as a
// character reference. Bound expressions keep their ampersands.
func escapeURLAttr(v string) string {
	if strings.HasPrefix(v, "<%") {
		return quoteEscaper.Replace(v)
	}
	return ampQuoteEscaper.Replace(v)
}

func (r *Renderer) writeChildren(w io.Writer, n *dom.Node) error {
	for _, c := range n.Children() {
		if err := r.write(w, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) adapt(n *dom.Node) *Element {
	el := &Element{
		Node:  n,
		Tag:   n.TagName(),
		Attrs: n.Attrs.Clone(),
		Raw:   map[string]bool{"href": true, "src": true},
	}
	for _, a := range r.adapters {
		a.Adapt(el)
	}
	return el
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
