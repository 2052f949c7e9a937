// Package compose builds page trees from template files.
//
// A page names a wrapper template in its frontmatter; wrappers may name their
// own. Wrappers define placeholders with
//
//	<tpl:placeholder id="main">default content</tpl:placeholder>
//
// and the template they directly wrap fills them with
//
//	<tpl:content for="main">...</tpl:content>
//
// The builder reproduces how the templating host treats the metadata
// section: raw text inside placeholders in the head is left unparsed, and
// everything built from a content region reports the wrapper that defined
// the placeholder as its owner. Run the head repair pass on the result.
package compose

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Errors returned while loading templates.
var (
	ErrWrapperCycle      = errors.New("wrapper chain is cyclic")
	ErrPlaceholderInPage = errors.New("pages cannot define placeholders")
	ErrMissingID         = errors.New("placeholder has no id")
	ErrUnterminated      = errors.New("unterminated template element")
)

// Config holds host configuration.
type Config struct {
	// FS holds the template files.
	FS fs.FS
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Host loads templates and builds page trees.
type Host struct {
	fsys   fs.FS
	logger *slog.Logger
}

// Page is a built page tree.
type Page struct {
	Root *dom.Node

	// Units lists the page unit followed by its wrappers, innermost first.
	Units []*dom.TemplateUnit

	// Files lists the template files the page was built from, in the same
	// order as Units.
	Files []string
}

// New creates a host.
func New(cfg Config) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Host{fsys: cfg.FS, logger: logger}
}

// template is one loaded template file.
type template struct {
	file    string
	unit    *dom.TemplateUnit
	body    string
	wrapper string
	regions map[string]string
}

// Load builds the tree for the page at name, a slash separated path
// relative to the template root.
func (h *Host) Load(name string) (*Page, error) {
	chain, err := h.loadChain(name)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	for _, t := range chain {
		page.Units = append(page.Units, t.unit)
		page.Files = append(page.Files, t.file)
	}

	b := &builder{host: h, chain: chain, used: make(map[*template]map[string]bool)}
	page.Root = dom.NewTemplate(chain[0].unit)

	outer := chain[len(chain)-1]
	target := page.Root
	if len(chain) > 1 {
		target = dom.NewTemplate(outer.unit)
		page.Root.AppendChild(target)
	}
	if err := b.build(target, outer.body, frame{reportOwner: outer, definer: outer}); err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	b.reportUnused()

	h.logger.Debug("page built", "page", name, "templates", len(chain))
	return page, nil
}

// loadChain loads the page and every wrapper above it, innermost first.
func (h *Host) loadChain(name string) ([]*template, error) {
	var chain []*template
	seen := make(map[string]bool)

	for file := cleanPath(name); file != ""; {
		if seen[file] {
			return nil, fmt.Errorf("%w: %s", ErrWrapperCycle, file)
		}
		seen[file] = true

		t, err := h.loadTemplate(file)
		if err != nil {
			return nil, err
		}
		if len(chain) > 0 {
			chain[len(chain)-1].unit.Wrapper = t.unit
		}
		chain = append(chain, t)
		file = t.wrapper
	}
	return chain, nil
}

func (h *Host) loadTemplate(file string) (*template, error) {
	data, err := fs.ReadFile(h.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	fm, err := ExtractFrontmatter(string(data))
	if err != nil {
		var parseErr *FrontmatterParseError
		var fieldErr *UnknownFieldError
		switch {
		case errors.As(err, &parseErr):
			parseErr.File = file
		case errors.As(err, &fieldErr):
			fieldErr.File = file
		}
		return nil, err
	}

	unitName := fm.Config.Name
	if unitName == "" {
		unitName = file
	}
	dir := fm.Config.Dir
	if dir == "" {
		dir = path.Dir(file)
	}
	dir = cleanPath(dir)

	t := &template{
		file:    file,
		unit:    dom.NewTemplateUnit(unitName, dir),
		body:    fm.Body,
		wrapper: cleanPath(fm.Config.Wrapper),
	}
	if t.wrapper != "" {
		t.regions, err = h.parseRegions(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	h.logger.Debug("template loaded", "file", file, "unit", unitName, "wrapper", t.wrapper, "regions", len(t.regions))
	return t, nil
}

// cleanPath returns p as a clean path relative to the template root; "" for
// the root itself.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}
