package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"craftexport.ai/internal/content"
	"craftexport.ai/internal/export"
)

func newInspectCmd() *cobra.Command {
	var byGroup bool
	cmd := &cobra.Command{
		Use:   "inspect <dataset>",
		Short: "Print a summary of an exported dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := export.Read(args[0])
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}
			summarize(cmd.OutOrStdout(), d, byGroup)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byGroup, "groups", false, "list subgroups under each group")
	return cmd
}

func summarize(w io.Writer, d *export.Dataset, byGroup bool) {
	fmt.Fprintf(w, "dataset version=%s items=%d fluids=%d fuel=%d modules=%d normal_recipes=%d alternate_recipes=%d entities=%d icons=%d width=%d hash=%s\n",
		d.Version, len(d.Items), len(d.Fluids), len(d.Fuel), len(d.Modules),
		len(d.NormalRecipes), len(d.AlternateRecipes), d.EntityCount(), len(d.Icons), d.Width, d.Sprites.Hash)

	types := content.SortedKeys(d.Entities)
	for _, typ := range types {
		fmt.Fprintf(w, "  %-20s %d\n", typ, len(d.Entities[typ]))
	}

	unresolved := 0
	for _, ic := range d.Icons {
		if ic.Source == nil {
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Fprintf(w, "unresolved icons: %d\n", unresolved)
	}

	if !byGroup {
		return
	}
	groups := content.SortedKeys(d.Groups)
	sort.SliceStable(groups, func(i, j int) bool { return d.Groups[groups[i]].Order < d.Groups[groups[j]].Order })
	for _, g := range groups {
		fmt.Fprintf(w, "%s\n", g)
		for _, sub := range content.SortedKeys(d.Groups[g].Subgroups) {
			fmt.Fprintf(w, "  %s\n", sub)
		}
	}
}
