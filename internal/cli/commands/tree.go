package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/headfix/internal/cli/output"
	"github.com/leapstack-labs/headfix/pkg/dom"
)

// TreeNode is the JSON shape of a tree node.
type TreeNode struct {
	Kind       string            `json:"kind"`
	Tag        string            `json:"tag,omitempty"`
	ID         string            `json:"id,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Owner      string            `json:"owner,omitempty"`
	Hidden     bool              `json:"hidden,omitempty"`
	TrackState bool              `json:"track_state,omitempty"`
	Children   []*TreeNode       `json:"children,omitempty"`
}

func newTreeNode(n *dom.Node) *TreeNode {
	t := &TreeNode{
		Kind:       n.Kind.String(),
		Tag:        n.TagName(),
		ID:         n.ID,
		Text:       n.Text,
		Hidden:     !n.Visible,
		TrackState: n.TrackState,
	}
	if n.Attrs.Len() > 0 {
		t.Attrs = n.Attrs.Map()
	}
	if n.Owner != nil {
		t.Owner = n.Owner.Name
	}
	for _, c := range n.Children() {
		t.Children = append(t.Children, newTreeNode(c))
	}
	return t
}

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "tree <page>",
		Short: "Print the node tree of a page",
		Long: `Print the node tree built for a page, one node per line with its
reported owning template.

By default the metadata section is repaired first; use --raw to see the tree
exactly as the templating host builds it.`,
		Example: `  # Show the repaired tree
  headfix tree blog/post/index.page

  # Show the tree before repair
  headfix tree blog/post/index.page --raw

  # Output as JSON
  headfix tree blog/post/index.page --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Skip the head repair pass")
	return cmd
}

func runTree(cmd *cobra.Command, name string, raw bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	page, _, err := cmdCtx.Build(name, !raw)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(newTreeNode(page.Root))
	case output.ModeMarkdown:
		var b strings.Builder
		if err := dom.Fprint(&b, page.Root); err != nil {
			return err
		}
		r.Println(output.FormatHeader(1, fmt.Sprintf("Tree: %s", name)))
		r.Println("")
		r.Println(output.FormatCodeBlock("", b.String()))
		return nil
	default:
		return dom.Fprint(r.Writer(), page.Root)
	}
}
