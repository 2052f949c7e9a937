package compose

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/leapstack-labs/headfix/internal/literal"
	"github.com/leapstack-labs/headfix/pkg/dom"
)

const (
	tagPlaceholder = "tpl:placeholder"
	tagContent     = "tpl:content"
)

// frame is the context markup is built in.
type frame struct {
	// reportOwner is the owner every built node reports.
	reportOwner *template
	// definer defines the placeholders found in the markup.
	definer *template

	inHead        bool
	inPlaceholder bool
}

type builder struct {
	host  *Host
	chain []*template
	used  map[*template]map[string]bool
}

// build tokenizes markup and appends the resulting nodes to parent.
func (b *builder) build(parent *dom.Node, markup string, f frame) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	stack := []*dom.Node{parent}
	inHead := f.inHead

	var pending strings.Builder
	top := func() *dom.Node { return stack[len(stack)-1] }
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		t := dom.NewText(pending.String())
		t.Owner = f.reportOwner.unit
		top().AppendChild(t)
		pending.Reset()
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return err
			}
			flush()
			if len(stack) > 1 {
				b.host.logger.Debug("unclosed server elements", "template", f.reportOwner.file, "count", len(stack)-1)
			}
			return nil
		}

		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attrs := readAttrs(z, hasAttr)
			selfClosing := tt == html.SelfClosingTagToken

			switch {
			case tag == tagPlaceholder:
				flush()
				var body string
				if !selfClosing {
					var err error
					if body, err = captureInner(z, tagPlaceholder); err != nil {
						return err
					}
				}
				sub := f
				sub.inHead = inHead
				if err := b.placeholder(top(), &attrs, body, sub); err != nil {
					return err
				}

			case tag == "head" && !inHead:
				flush()
				h := dom.NewHead()
				h.Attrs = attrs
				h.Owner = f.reportOwner.unit
				top().AppendChild(h)
				if !selfClosing {
					stack = append(stack, h)
					inHead = true
				}

			case inHead && !f.inPlaceholder && (tag == "link" || tag == "meta"):
				flush()
				kind, _ := dom.KindForTag(tag)
				n, err := dom.NewTyped(kind)
				if err != nil {
					return err
				}
				n.Attrs = attrs
				n.Owner = f.reportOwner.unit
				applyFlags(n)
				top().AppendChild(n)

			case isServer(&attrs):
				flush()
				n := dom.NewElement(tag)
				n.Attrs = attrs
				n.Owner = f.reportOwner.unit
				applyFlags(n)
				top().AppendChild(n)
				if !selfClosing && !literal.IsVoid(tag) {
					stack = append(stack, n)
				}

			default:
				pending.WriteString(raw)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) > 1 && top().TagName() == string(name) {
				flush()
				if top().Kind == dom.KindHead {
					inHead = false
				}
				stack = stack[:len(stack)-1]
				continue
			}
			pending.WriteString(raw)

		default:
			pending.WriteString(raw)
		}
	}
}

// placeholder adds a container for a placeholder definition and fills it
// with the matching region of the directly wrapped template, or with the
// default content when that template supplies none.
func (b *builder) placeholder(parent *dom.Node, attrs *dom.Attributes, defaultBody string, f frame) error {
	id := attrs.Value("id")
	if id == "" {
		return fmt.Errorf("%s: %w", f.definer.file, ErrMissingID)
	}
	filler := b.wrappedBy(f.definer)
	if filler == nil {
		return fmt.Errorf("%s: placeholder %q: %w", f.definer.file, id, ErrPlaceholderInPage)
	}

	c := dom.NewContainer(id, f.definer.unit)
	parent.AppendChild(c)

	// content reports the defining template as its owner
	sub := frame{reportOwner: f.definer, inHead: f.inHead, inPlaceholder: true}
	if region, ok := filler.regions[id]; ok {
		if b.used[filler] == nil {
			b.used[filler] = make(map[string]bool)
		}
		b.used[filler][id] = true
		sub.definer = filler
		b.host.logger.Debug("placeholder filled", "placeholder", id, "defined_by", f.definer.file, "content_from", filler.file)
		return b.build(c, region, sub)
	}

	sub.definer = f.definer
	return b.build(c, defaultBody, sub)
}

// wrappedBy returns the template directly wrapped by t, or nil for the page.
func (b *builder) wrappedBy(t *template) *template {
	for i, c := range b.chain {
		if c == t && i > 0 {
			return b.chain[i-1]
		}
	}
	return nil
}

func (b *builder) reportUnused() {
	for _, t := range b.chain {
		for id := range t.regions {
			if !b.used[t][id] {
				b.host.logger.Warn("content region has no placeholder", "template", t.file, "region", id)
			}
		}
	}
}

// parseRegions collects the content regions of a template that has a
// wrapper. Markup outside regions is ignored.
func (h *Host) parseRegions(t *template) (map[string]string, error) {
	regions := make(map[string]string)
	z := html.NewTokenizer(strings.NewReader(t.body))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return regions, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != tagContent {
				h.logger.Debug("markup outside content regions ignored", "template", t.file, "tag", string(name))
				continue
			}
			attrs := readAttrs(z, hasAttr)
			id := attrs.Value("for")
			var body string
			if tt == html.StartTagToken {
				var err error
				if body, err = captureInner(z, tagContent); err != nil {
					return nil, err
				}
			}
			if _, dup := regions[id]; dup {
				h.logger.Warn("duplicate content region, last one wins", "template", t.file, "region", id)
			}
			regions[id] = body

		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				h.logger.Debug("text outside content regions ignored", "template", t.file)
			}
		}
	}
}

// captureInner returns the raw markup up to the end tag closing the element
// just opened, honoring nested elements of the same name.
func captureInner(z *html.Tokenizer, tag string) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return "", fmt.Errorf("<%s>: %w", tag, ErrUnterminated)
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				if depth == 0 {
					return b.String(), nil
				}
				depth--
			}
		}
		b.WriteString(raw)
	}
}

func readAttrs(z *html.Tokenizer, more bool) dom.Attributes {
	var attrs dom.Attributes
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs.Set(string(key), string(val))
	}
	return attrs
}

func isServer(attrs *dom.Attributes) bool {
	v, ok := attrs.Get("runat")
	return ok && strings.EqualFold(v, "server")
}

// applyFlags moves the visible and track-state pseudo-attributes into node
// flags, the same way the head repair does for elements it reconstructs.
func applyFlags(n *dom.Node) {
	n.Visible, n.TrackState = literal.TakeFlags(&n.Attrs, n.Visible, n.TrackState)
}
