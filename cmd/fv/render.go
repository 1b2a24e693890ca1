package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/flexview/pkg/export"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

func renderCmd(ro *rootOptions) *cobra.Command {
	var (
		outputs     []string
		fit         bool
		full        bool
		expandAll   bool
		collapseAll bool
		details     []string
	)
	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render a document to SVG, PNG, layout JSON or markdown",
		Example: "  fv render plan.json -o plan.svg -o plan.png\n" +
			"  fv render plan.yaml --full --collapse-all -o overview.svg\n" +
			"  fv render plan.json > plan.svg",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expandAll && collapseAll {
				return fmt.Errorf("--expand-all and --collapse-all are mutually exclusive")
			}
			opts, err := ro.options()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := openViewer(ctx, opts, args[0])
			if err != nil {
				return err
			}

			switch {
			case expandAll:
				err = v.ExpandAll(ctx)
			case collapseAll:
				err = v.CollapseAll(ctx)
			}
			if err != nil {
				return err
			}
			for _, ref := range details {
				ids := resolveNodes(v.Forest(), ref)
				if len(ids) == 0 {
					statusSubtle.Fprintf(cmd.ErrOrStderr(), "  skipping unknown node %s\n", ref)
					continue
				}
				for _, id := range ids {
					if err := v.ToggleDetail(ctx, id); err != nil {
						return err
					}
				}
			}
			if fit {
				v.Fit()
			}

			snap := export.Snapshot{Title: titleOf(args[0]), Forest: v.Forest(), Scene: v.Scene()}
			if full {
				// A zero viewport draws the whole world
				snap.Scene.Viewport = model.Size{}
				snap.Scene.Transform = viewport.Identity
				snap.Scene.Minimap = nil
			}

			if len(outputs) == 0 {
				if isTerminal(cmd.OutOrStdout()) {
					return fmt.Errorf("refusing to write SVG to a terminal; use -o or redirect stdout")
				}
				return export.Write(cmd.OutOrStdout(), export.KindSVG, snap)
			}
			if err := export.WriteFiles(ctx, snap, outputs...); err != nil {
				return err
			}
			for _, p := range outputs {
				statusGood.Fprintf(cmd.ErrOrStderr(), "✓ wrote %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output file; format from extension (.svg .png .json .md), repeatable")
	cmd.Flags().BoolVar(&fit, "fit", false, "zoom so the whole diagram fits the canvas")
	cmd.Flags().BoolVar(&full, "full", false, "draw the whole world at scale 1 without a minimap")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "expand every node before rendering")
	cmd.Flags().BoolVar(&collapseAll, "collapse-all", false, "collapse every root before rendering")
	cmd.Flags().StringSliceVar(&details, "details", nil, "nodes whose details are shown, by id (n-0, n-1, ... depth-first) or name")
	return cmd
}

// resolveNodes matches ref against node ids first, then against names.
// A name may match several nodes.
func resolveNodes(f *model.Forest, ref string) []string {
	if _, ok := f.Find(ref); ok {
		return []string{ref}
	}
	var ids []string
	f.Walk(func(n *model.TreeNode, _ int) bool {
		if n.Name == ref {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}
