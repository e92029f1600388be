package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/netweave/netweave/pkg/network"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes attribute key/value pairs in node labels.
	// When false, only the display label is shown.
	Detailed bool
	// UsePositions pins nodes to their viz positions in the output.
	// Requires a layout engine that honors pinned positions (neato, fdp).
	UsePositions bool
}

// ToDOT converts a network to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF],
// or [RenderPNG]. Directed networks become digraphs; undirected networks
// use plain graph syntax. Node colors from viz data are carried through as
// fill colors.
func ToDOT(net *network.Network, opts Options) string {
	var buf bytes.Buffer

	keyword, arrow := "graph", "--"
	if net.Directed() {
		keyword, arrow = "digraph", "->"
	}

	fmt.Fprintf(&buf, "%s G {\n", keyword)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range net.Nodes() {
		attrs := nodeAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range net.Edges() {
		if e.Weight != 1.0 {
			fmt.Fprintf(&buf, "  %q %s %q [weight=%g];\n", e.Source, arrow, e.Target, e.Weight)
		} else {
			fmt.Fprintf(&buf, "  %q %s %q;\n", e.Source, arrow, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *network.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}

	if color := fillColor(n.Viz); color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	}
	if opts.UsePositions && n.Viz.Position != nil {
		p := n.Viz.Position
		attrs = append(attrs, fmt.Sprintf("pos=%q", fmt.Sprintf("%g,%g!", p.X, p.Y)))
	}
	if n.Viz.Size != nil {
		attrs = append(attrs, fmt.Sprintf("width=%g", *n.Viz.Size/10))
	}

	return attrs
}

func fmtLabel(n *network.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || len(n.Attributes) == 0 {
		return label
	}

	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(n.Attributes)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Attributes[k]))
	}
	return strings.Join(parts, "\n")
}

// fillColor renders viz color data as a Graphviz color string. Normalized
// RGB triples become hex; raw color strings (hex codes, names) pass through.
func fillColor(viz network.Viz) string {
	if len(viz.Color) >= 3 {
		return fmt.Sprintf("#%02x%02x%02x",
			clampByte(viz.Color[0]), clampByte(viz.Color[1]), clampByte(viz.Color[2]))
	}
	return viz.RawColor
}

func clampByte(f float64) int {
	v := int(f * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
