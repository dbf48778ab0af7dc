package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/soypat/glnode"
	"github.com/soypat/glnode/nodejson"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <graph.json>",
		Short: "Summarize the nodes of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			roots, err := nodejson.Unmarshal(data)
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), roots)
		},
	}
}

func inspect(w io.Writer, roots []glnode.Node) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, root := range roots {
		seen := make(map[glnode.Node]bool)
		kinds := make(map[string]int)
		glnode.Traverse(root, func(n glnode.Node) {
			if !seen[n] {
				seen[n] = true
				kinds[glnode.TypeName(n)]++
			}
		})
		fmt.Fprintf(tw, "root\t%s\t%s\n", root.NodeBase().UUID(), glnode.TypeName(root))
		fmt.Fprintf(tw, "type\t%s\n", root.NodeType(nil, glnode.TypeNone))
		fmt.Fprintf(tw, "cache key\t%016x\n", glnode.CacheKey(root, true))
		fmt.Fprintf(tw, "nodes\t%d\n", len(seen))
		names := make([]string, 0, len(kinds))
		for name := range kinds {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(tw, "\t%s\t%d\n", name, kinds[name])
		}
	}
	return tw.Flush()
}
