// Package xnet implements the XNET line-oriented graph format used by the
// complex-networks community. Vertices are implicitly indexed 0..N-1 in
// declaration order, edges reference those indices, and typed property
// columns follow under "#v" and "#e" section headers.
package xnet

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

var propHeaderRe = regexp.MustCompile(`^#([ve]) "(.+)" ([sn]|v2|v3)`)

// Codec parses and writes XNET documents.
type Codec struct{}

// New creates an XNET codec.
func New() *Codec { return &Codec{} }

// Name returns the format name.
func (*Codec) Name() string { return "xnet" }

// Parse decodes an XNET document into a Network.
func (*Codec) Parse(data []byte) (*network.Network, error) {
	lines := strings.Split(string(data), "\n")
	net := network.New()
	idx := 0

	skipBlank := func() {
		for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
			idx++
		}
	}

	// Vertices header.
	skipBlank()
	if idx >= len(lines) || !headerIs(lines[idx], "#vertices") {
		return nil, errors.New(errors.ErrCodeParse, "malformed XNET: missing #vertices header")
	}
	idx++

	// Labels, one per line, until the next section.
	var labels []string
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			idx++
			continue
		}
		if strings.HasPrefix(line, "#") {
			break
		}
		labels = append(labels, unquote(line))
		idx++
	}
	for i, label := range labels {
		if err := net.AddNode(network.NewNode(strconv.Itoa(i), label)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "vertex %d", i)
		}
	}

	// Edges header carries the weighted/directed flags.
	skipBlank()
	if idx >= len(lines) || !headerIs(lines[idx], "#edges") {
		return nil, errors.New(errors.ErrCodeParse, "malformed XNET: missing #edges header")
	}
	edgeHeader := strings.ToLower(lines[idx])
	directed := strings.Contains(edgeHeader, "directed") && !strings.Contains(edgeHeader, "undirected")
	net.SetDirected(directed)
	idx++

	edgeIdx := 0
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			idx++
			continue
		}
		if strings.HasPrefix(line, "#") {
			break
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			idx++
			continue
		}
		weight := 1.0
		if len(parts) > 2 {
			if w, err := strconv.ParseFloat(parts[2], 64); err == nil {
				weight = w
			}
		}
		edge := network.NewEdge(strconv.Itoa(edgeIdx), parts[0], parts[1], weight)
		edge.Type = net.EdgeType
		net.AddEdge(edge)
		edgeIdx++
		idx++
	}

	// Property sections.
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			idx++
			continue
		}
		m := propHeaderRe.FindStringSubmatch(line)
		if m == nil {
			idx++
			continue
		}
		class, name, format := m[1], m[2], m[3]
		idx++

		var values []any
		for idx < len(lines) {
			line := strings.TrimSpace(lines[idx])
			if line == "" {
				idx++
				continue
			}
			if strings.HasPrefix(line, "#") {
				break
			}
			values = append(values, parsePropValue(unquote(line), format))
			idx++
		}

		if class == "v" {
			applyVertexProp(net, name, values)
		} else {
			applyEdgeProp(net, name, values)
		}
	}

	return net, nil
}

func parsePropValue(val, format string) any {
	switch format {
	case "n":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0.0
		}
		return f
	case "v2":
		if parts := strings.Fields(val); len(parts) >= 2 {
			return []float64{parseFloat(parts[0]), parseFloat(parts[1])}
		}
	case "v3":
		if parts := strings.Fields(val); len(parts) >= 3 {
			return []float64{parseFloat(parts[0]), parseFloat(parts[1]), parseFloat(parts[2])}
		}
	}
	return val
}

// applyVertexProp assigns a property column to vertices in index order.
// "position" and "color" are recognized as viz vectors; everything else
// lands in node attributes.
func applyVertexProp(net *network.Network, name string, values []any) {
	for i, val := range values {
		node, ok := net.Node(strconv.Itoa(i))
		if !ok {
			continue
		}
		vec, isVec := val.([]float64)
		switch {
		case strings.EqualFold(name, "position") && isVec && len(vec) >= 2:
			pos := &network.Position{X: vec[0], Y: vec[1]}
			if len(vec) > 2 {
				pos.Z = vec[2]
			}
			node.Viz.Position = pos
		case strings.EqualFold(name, "color") && isVec:
			node.Viz.Color = vec
		default:
			node.Attributes[name] = val
		}
	}
}

func applyEdgeProp(net *network.Network, name string, values []any) {
	edges := net.Edges()
	for i, val := range values {
		if i >= len(edges) {
			break
		}
		edges[i].Attributes[name] = val
	}
}

// Stringify encodes a Network as an XNET document.
func (*Codec) Stringify(net *network.Network) ([]byte, error) {
	var lines []string

	nodes := net.Nodes()
	indexOf := make(map[string]int, len(nodes))
	for i, n := range nodes {
		indexOf[n.ID] = i
	}

	lines = append(lines, fmt.Sprintf("#vertices %d", len(nodes)))
	for _, n := range nodes {
		lines = append(lines, quote(n.Label))
	}

	edges := net.Edges()
	weighted := false
	for _, e := range edges {
		if e.Weight != 1.0 {
			weighted = true
			break
		}
	}
	weightFlag := "nonweighted"
	if weighted {
		weightFlag = "weighted"
	}
	lines = append(lines, fmt.Sprintf("#edges %s %s", weightFlag, net.EdgeType))

	for _, e := range edges {
		src, okS := indexOf[e.Source]
		tgt, okT := indexOf[e.Target]
		if !okS || !okT {
			continue
		}
		if weighted {
			lines = append(lines, fmt.Sprintf("%d %d %s", src, tgt, formatFloat(e.Weight)))
		} else {
			lines = append(lines, fmt.Sprintf("%d %d", src, tgt))
		}
	}

	lines = append(lines, propSections("v", vertexColumns(nodes))...)
	lines = append(lines, propSections("e", edgeColumns(edges))...)

	return []byte(strings.Join(lines, "\n")), nil
}

// column is one property across all vertices or edges, aligned by index.
type column struct {
	name   string
	values []any
}

func vertexColumns(nodes []*network.Node) []column {
	return collectColumns(len(nodes), func(i int) network.Attributes { return nodes[i].Attributes })
}

func edgeColumns(edges []*network.Edge) []column {
	return collectColumns(len(edges), func(i int) network.Attributes { return edges[i].Attributes })
}

func collectColumns(n int, attrs func(int) network.Attributes) []column {
	byName := map[string][]any{}
	var order []string
	for i := 0; i < n; i++ {
		for k, v := range attrs(i) {
			if _, ok := byName[k]; !ok {
				byName[k] = make([]any, n)
				order = append(order, k)
			}
			byName[k][i] = v
		}
	}
	slices.Sort(order)

	cols := make([]column, 0, len(order))
	for _, name := range order {
		cols = append(cols, column{name: name, values: byName[name]})
	}
	return cols
}

func propSections(class string, cols []column) []string {
	var lines []string
	for _, col := range cols {
		numeric := true
		for _, v := range col.values {
			switch v.(type) {
			case nil, int, float64:
			default:
				numeric = false
			}
		}
		format := "s"
		if numeric {
			format = "n"
		}
		lines = append(lines, fmt.Sprintf("#%s %q %s", class, col.name, format))
		for _, v := range col.values {
			lines = append(lines, propValueString(v, format))
		}
	}
	return lines
}

func propValueString(v any, format string) string {
	if format == "n" {
		switch t := v.(type) {
		case nil:
			return "0"
		case int:
			return strconv.Itoa(t)
		case float64:
			return formatFloat(t)
		}
		return "0"
	}
	if v == nil {
		return quote("")
	}
	return quote(fmt.Sprint(v))
}

func headerIs(line, header string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[0], header)
}

func unquote(s string) string {
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
