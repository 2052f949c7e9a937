package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/headfix/internal/cli/output"
	"github.com/leapstack-labs/headfix/pkg/dom"
	"github.com/leapstack-labs/headfix/pkg/headfix"
)

// OwnerRow compares the owner a head node reports with the resolved one.
type OwnerRow struct {
	Node     string `json:"node"`
	Kind     string `json:"kind"`
	Reported string `json:"reported"`
	Resolved string `json:"resolved"`
	Changed  bool   `json:"changed"`
}

// NewOwnersCommand creates the owners command.
func NewOwnersCommand() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "owners <page>",
		Short: "Compare reported and resolved owners in the head",
		Long: `List the nodes of a page's metadata section with the owning template each
node reports and the one the ownership resolver computes for it.

Nodes built from content regions report the template that defined the
placeholder; the resolved owner is the template that supplied the content.
The tree is inspected as the host builds it unless --repaired is given.`,
		Example: `  # Show owners before repair
  headfix owners blog/post/index.page

  # Show owners after repair (only placeholders still differ)
  headfix owners blog/post/index.page --repaired`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOwners(cmd, args[0], repair)
		},
	}

	cmd.Flags().BoolVar(&repair, "repaired", false, "Repair the head before comparing")
	return cmd
}

func runOwners(cmd *cobra.Command, name string, repair bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	page, _, err := cmdCtx.Build(name, repair)
	if err != nil {
		return err
	}
	rows, err := ownerRows(page.Root)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rows)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Owners: %s", name)))
		r.Println("")
		if len(rows) == 0 {
			r.Println("(no head)")
			return nil
		}
		r.Println(ownersTable(rows).RenderMarkdown())
	default:
		if len(rows) == 0 {
			r.Muted("(no head)")
			return nil
		}
		t := ownersTable(rows)
		t.SetStyle(table.StyleLight)
		t.SetOutputMirror(r.Writer())
		t.Render()

		changed := 0
		for _, row := range rows {
			if row.Changed {
				changed++
			}
		}
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("(%d nodes, %d misreported)", len(rows), changed)))
	}
	return nil
}

// ownerRows lists the head nodes an owner matters for, in document order.
func ownerRows(root *dom.Node) ([]OwnerRow, error) {
	h := dom.Head(root)
	if h == nil {
		return nil, nil
	}

	var rows []OwnerRow
	for _, n := range dom.Descendants(h) {
		switch n.Kind {
		case dom.KindComment, dom.KindGroup:
			continue
		case dom.KindText:
			if strings.TrimSpace(n.Text) == "" {
				continue
			}
		}
		resolved, err := headfix.ResolveOwningTemplateUnit(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n, err)
		}
		rows = append(rows, OwnerRow{
			Node:     n.String(),
			Kind:     n.Kind.String(),
			Reported: n.Owner.String(),
			Resolved: resolved.String(),
			Changed:  resolved != n.Owner,
		})
	}
	return rows, nil
}

func ownersTable(rows []OwnerRow) table.Writer {
	titleCaser := cases.Title(language.English)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Kind", "Node", "Reported", "Resolved", ""})
	for _, row := range rows {
		mark := ""
		if row.Changed {
			mark = "*"
		}
		t.AppendRow(table.Row{titleCaser.String(row.Kind), row.Node, row.Reported, row.Resolved, mark})
	}
	return t
}
