package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/headfix/internal/cli/output"
	"github.com/leapstack-labs/headfix/pkg/dom"
	"github.com/leapstack-labs/headfix/pkg/head"
	"github.com/leapstack-labs/headfix/pkg/headfix"
)

// RenderOutput is the JSON shape of one rendered page.
type RenderOutput struct {
	Page     string      `json:"page"`
	HTML     string      `json:"html,omitempty"`
	File     string      `json:"file,omitempty"`
	Repaired bool        `json:"repaired"`
	Repair   *ReportJSON `json:"repair,omitempty"`
}

// ReportJSON is the JSON shape of a repair report.
type ReportJSON struct {
	Skipped         bool `json:"skipped"`
	TextsReparsed   int  `json:"texts_reparsed"`
	Recognized      int  `json:"recognized"`
	Diagnostics     int  `json:"diagnostics"`
	Promoted        int  `json:"promoted"`
	OwnersCorrected int  `json:"owners_corrected"`
}

func newReportJSON(r headfix.Report) *ReportJSON {
	return &ReportJSON{
		Skipped:         r.Skipped,
		TextsReparsed:   r.TextsReparsed,
		Recognized:      r.Recognized,
		Diagnostics:     r.Diagnostics,
		Promoted:        r.Promoted,
		OwnersCorrected: r.OwnersCorrected,
	}
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <page>...",
		Short: "Build, repair and render pages as HTML",
		Long: `Build each page from its template chain, repair the metadata section
and write the resulting HTML.

Pages are rendered in parallel (see --jobs); output keeps argument order.

Output adapts to environment:
  - Terminal: Plain HTML
  - Piped/Scripted: Markdown with code block`,
		Example: `  # Render a page
  headfix render blog/post/index.page

  # Render without the head repair pass
  headfix render blog/post/index.page --repair=false

  # Render several pages into a directory
  headfix render index.page about.page --out-dir public

  # Add a stylesheet and a meta tag to every page
  headfix render index.page --add-link '~/print.css' --set-meta robots=noindex`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Write each page to <out-dir>/<page>.html instead of stdout")
	cmd.Flags().StringSliceVar(&opts.links, "add-link", nil, "Stylesheet href to add to the head unless present (repeatable)")
	cmd.Flags().StringSliceVar(&opts.metas, "set-meta", nil, "Meta tag to set as name=content (repeatable)")
	return cmd
}

type renderOptions struct {
	outDir string
	links  []string
	metas  []string
}

func runRender(cmd *cobra.Command, pages []string, opts renderOptions) error {
	metas, err := parseMetaFlags(opts.metas)
	if err != nil {
		return err
	}
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	repair := cmdCtx.Cfg.Repair

	results := make([]RenderOutput, len(pages))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cmdCtx.Cfg.Jobs)

	for i, name := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, report, err := cmdCtx.Build(name, repair)
			if err != nil {
				return err
			}
			if err := editHead(page.Root, opts.links, metas); err != nil {
				return fmt.Errorf("failed to edit head of %s: %w", name, err)
			}
			html, err := cmdCtx.HTML.RenderString(page.Root)
			if err != nil {
				return fmt.Errorf("failed to render page %s: %w", name, err)
			}

			res := RenderOutput{Page: name, HTML: html, Repaired: repair}
			if repair {
				res.Repair = newReportJSON(report)
			}
			if opts.outDir != "" {
				file, err := writePage(opts.outDir, name, html)
				if err != nil {
					return err
				}
				res.File = file
				res.HTML = ""
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cmdCtx.Logger.Debug("pages rendered", "count", len(pages), "repair", repair)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(results)
	case output.ModeMarkdown:
		for _, res := range results {
			r.Println(output.FormatHeader(1, fmt.Sprintf("Rendered page: %s", res.Page)))
			r.Println("")
			if res.File != "" {
				r.Printf("Written to `%s`\n\n", res.File)
				continue
			}
			r.Println(output.FormatCodeBlock("html", res.HTML))
			r.Println("")
		}
	default:
		for _, res := range results {
			if res.File != "" {
				r.Success(fmt.Sprintf("%s -> %s", res.Page, res.File))
				continue
			}
			r.Println(res.HTML)
		}
	}
	return nil
}

// parseMetaFlags splits name=content pairs, keeping their order.
func parseMetaFlags(values []string) ([]head.Pair, error) {
	var pairs []head.Pair
	for _, v := range values {
		name, content, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set-meta value %q, expected name=content", v)
		}
		pairs = append(pairs, head.Pair{Name: strings.TrimSpace(name), Content: content})
	}
	return pairs, nil
}

// editHead adds missing stylesheet links and sets meta tags. Pages without
// a head are left alone.
func editHead(root *dom.Node, links []string, metas []head.Pair) error {
	if len(links) == 0 && len(metas) == 0 {
		return nil
	}
	if dom.Head(root) == nil {
		return nil
	}
	l := head.NewLinks(root)
	for _, href := range links {
		if _, err := l.AddIfMissing(href); err != nil {
			return err
		}
	}
	m := head.NewMetadata(root)
	for _, p := range metas {
		if err := m.Set(p.Name, p.Content); err != nil {
			return err
		}
	}
	return nil
}

// writePage writes html to outDir under the page's path with an .html
// extension and returns the file written.
func writePage(outDir, name, html string) (string, error) {
	rel := filepath.FromSlash(strings.TrimSuffix(name, filepath.Ext(name)) + ".html")
	file := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(html), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", file, err)
	}
	return file, nil
}
