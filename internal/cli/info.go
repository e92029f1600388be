package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// infoCommand creates the info command for inspecting network documents.
func (c *CLI) infoCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Show summary information about a network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(args[0], from)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: detect from extension)")

	return cmd
}

func (c *CLI) runInfo(input, from string) error {
	net, format, err := readNetworkFile(input, from)
	if err != nil {
		return err
	}

	edgeType := "undirected"
	if net.Directed() {
		edgeType = "directed"
	}

	printKeyValue("File", input)
	printKeyValue("Format", format)
	printKeyValue("Nodes", fmt.Sprintf("%d", net.NodeCount()))
	printKeyValue("Edges", fmt.Sprintf("%d", net.EdgeCount()))
	printKeyValue("Edge type", edgeType)
	printKeyValue("Mode", net.Mode)

	for _, key := range slices.Sorted(maps.Keys(net.Meta)) {
		printKeyValue(key, fmt.Sprintf("%v", net.Meta[key]))
	}

	if len(net.Model.Node) > 0 {
		printKeyValue("Node attrs", schemaSummary(net.Model.Node))
	}
	if len(net.Model.Edge) > 0 {
		printKeyValue("Edge attrs", schemaSummary(net.Model.Edge))
	}

	positioned := 0
	for _, node := range net.Nodes() {
		if node.Viz.Position != nil {
			positioned++
		}
	}
	if positioned > 0 {
		printKeyValue("Positions", fmt.Sprintf("%d/%d nodes", positioned, net.NodeCount()))
	}

	return nil
}

// schemaSummary formats an attribute declaration map as "title (type), ...".
func schemaSummary(decls map[string]string) string {
	parts := make([]string, 0, len(decls))
	for _, title := range slices.Sorted(maps.Keys(decls)) {
		parts = append(parts, fmt.Sprintf("%s (%s)", title, decls[title]))
	}
	return strings.Join(parts, ", ")
}
