// Package headfix repairs the metadata section of a page tree after the host
// has built it.
//
// The host leaves raw text inside content regions in the head unparsed, and
// nodes under a content placeholder report the template that defined the
// placeholder rather than the one that supplied the content. Repair re-parses
// that text into typed link, meta and script nodes, promotes generic server
// elements to the same typed forms, and corrects owners along the way.
package headfix

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/headfix/internal/literal"
	"github.com/leapstack-labs/headfix/pkg/dom"
)

// Config holds repairer configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Repairer runs the head repair pass.
type Repairer struct {
	logger *slog.Logger
}

// Report summarizes one repair pass.
type Report struct {
	Skipped         bool // page has no metadata section
	TextsReparsed   int  // text nodes replaced by reconstructed nodes
	Recognized      int  // typed elements produced from text
	Diagnostics     int  // inline diagnostic markers emitted
	Promoted        int  // generic elements replaced by typed ones
	OwnersCorrected int
}

// New creates a repairer.
func New(cfg Config) *Repairer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repairer{logger: logger}
}

// RepairMetadataSection repairs the metadata section of the tree rooted at
// page with a default repairer. Call it once per render cycle, after the tree
// is built and before it is rendered.
func RepairMetadataSection(page *dom.Node) error {
	_, err := New(Config{}).Repair(page)
	return err
}

// Repair repairs the metadata section of the tree rooted at page.
//
// A resolver failure aborts the pass and is returned wrapped; anything
// already repaired stays repaired.
func (r *Repairer) Repair(page *dom.Node) (Report, error) {
	var report Report

	head := dom.Head(page)
	if head == nil {
		r.logger.Debug("no metadata section, skipping repair")
		report.Skipped = true
		return report, nil
	}

	if err := r.reparseText(head, &report); err != nil {
		return report, err
	}
	if err := r.fixContainers(head, &report); err != nil {
		return report, err
	}

	r.logger.Debug("metadata section repaired",
		"texts_reparsed", report.TextsReparsed,
		"recognized", report.Recognized,
		"promoted", report.Promoted,
		"owners_corrected", report.OwnersCorrected,
		"diagnostics", report.Diagnostics)
	return report, nil
}

// reparseText rebuilds every raw text node in the head.
func (r *Repairer) reparseText(head *dom.Node, report *Report) error {
	texts := dom.FindAll(head, func(n *dom.Node) bool {
		return n.Kind == dom.KindText && !n.Verbatim
	}, dom.All)

	for _, t := range texts {
		owner, err := ResolveOwningTemplateUnit(t)
		if err != nil {
			return fmt.Errorf("resolve owner of %s: %w", t, err)
		}
		t.Owner = owner

		repl, err := literal.Build(t, owner)
		if err != nil {
			return fmt.Errorf("reconstruct %s: %w", t, err)
		}
		changed, err := Splice(t, repl)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}

		report.TextsReparsed++
		var recognized, diagnostics int
		dom.Walk(repl, func(n *dom.Node) bool {
			switch {
			case n.Kind.IsRecognized():
				recognized++
			case n.Kind == dom.KindComment && strings.HasPrefix(n.Text, literal.MarkerPrefix):
				diagnostics++
			}
			return true
		})
		report.Recognized += recognized
		report.Diagnostics += diagnostics

		r.logger.Debug("text reparsed",
			"owner", owner.String(),
			"recognized", recognized,
			"fragments", max(repl.ChildCount(), 1))
		if diagnostics > 0 {
			r.logger.Warn("malformed markup in metadata section", "owner", owner.String(), "diagnostics", diagnostics)
		}
	}
	return nil
}

// fixContainers promotes generic elements and corrects owners below each
// outermost container in the head. Nested containers are covered by their
// outermost ancestor, so no node is visited twice.
func (r *Repairer) fixContainers(head *dom.Node, report *Report) error {
	containers := dom.FindAll(head, dom.OfKind(dom.KindContainer), dom.Outermost)

	for _, c := range containers {
		for _, d := range dom.Descendants(c) {
			switch {
			case Promotable(d):
				repl, err := Promote(d)
				if err != nil {
					return fmt.Errorf("container %s: %w", c.ID, err)
				}
				report.Promoted++
				r.logger.Debug("element promoted",
					"container", c.ID,
					"kind", repl.Kind.String(),
					"owner", repl.Owner.String())

			case d.Kind.IsRecognized():
				owner, err := ResolveOwningTemplateUnit(d)
				if err != nil {
					return fmt.Errorf("container %s: resolve owner of %s: %w", c.ID, d, err)
				}
				if owner != d.Owner {
					r.logger.Debug("owner corrected",
						"container", c.ID,
						"node", d.String(),
						"from", d.Owner.String(),
						"to", owner.String())
					d.Owner = owner
					report.OwnersCorrected++
				}
			}
		}
	}
	return nil
}
