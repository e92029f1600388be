// Package gml implements the Graph Modeling Language, a bracket-delimited
// key/value format. Parsing is a two-stage affair: a quote-aware tokenizer
// followed by a recursive descent over the token stream into nested records.
package gml

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

// Codec parses and writes GML documents.
type Codec struct{}

// New creates a GML codec.
func New() *Codec { return &Codec{} }

// Name returns the format name.
func (*Codec) Name() string { return "gml" }

// Parse decodes a GML document into a Network.
func (*Codec) Parse(data []byte) (*network.Network, error) {
	tokens := tokenize(string(data))
	pos := 0
	root := parseLevel(tokens, &pos)

	graphVal, ok := root["graph"]
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "GML must contain a 'graph' key")
	}
	graph, ok := asRecord(graphVal)
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "GML 'graph' key is not a record")
	}

	net := network.New()

	for k, v := range graph {
		switch k {
		case "directed":
			net.SetDirected(truthy(v))
		case "node", "edge":
			// handled below
		default:
			net.Meta[k] = v
		}
	}

	for _, rec := range asRecordList(graph["node"]) {
		node := parseNodeRecord(rec)
		if err := net.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "node %q", node.ID)
		}
	}

	for i, rec := range asRecordList(graph["edge"]) {
		net.AddEdge(parseEdgeRecord(rec, i))
	}

	return net, nil
}

func parseNodeRecord(rec map[string]any) *network.Node {
	id := scalarString(rec["id"])
	label := id
	if l, ok := rec["label"]; ok {
		label = scalarString(l)
	}
	node := network.NewNode(id, label)

	for k, v := range rec {
		switch k {
		case "id", "label":
		case "graphics":
			if g, ok := asRecord(v); ok {
				applyGraphics(node, g)
			}
		default:
			node.Attributes[k] = v
		}
	}
	return node
}

// applyGraphics maps the standard GML graphics block onto viz fields.
// Colors in GML are hex strings or names, so the raw value is kept as-is.
func applyGraphics(node *network.Node, g map[string]any) {
	_, hasX := g["x"]
	_, hasY := g["y"]
	if hasX && hasY {
		node.Viz.Position = &network.Position{
			X: toFloat(g["x"]),
			Y: toFloat(g["y"]),
			Z: toFloat(g["z"]),
		}
	}
	if fill, ok := g["fill"]; ok {
		node.Viz.RawColor = scalarString(fill)
	}
}

func parseEdgeRecord(rec map[string]any, index int) *network.Edge {
	id := strconv.Itoa(index)
	if v, ok := rec["id"]; ok {
		id = scalarString(v)
	}
	weight := 1.0
	if v, ok := rec["weight"]; ok {
		weight = toFloat(v)
	}
	// "value" is the older GML spelling for edge weight and wins when present.
	if v, ok := rec["value"]; ok {
		weight = toFloat(v)
	}

	edge := network.NewEdge(id, scalarString(rec["source"]), scalarString(rec["target"]), weight)
	for k, v := range rec {
		switch k {
		case "id", "source", "target", "weight", "value":
		default:
			edge.Attributes[k] = v
		}
	}
	return edge
}

// Stringify encodes a Network as a GML document.
func (*Codec) Stringify(net *network.Network) ([]byte, error) {
	var b strings.Builder
	b.WriteString("graph [\n")

	for _, k := range sortedKeys(net.Meta) {
		fmt.Fprintf(&b, "  %s %s\n", k, gmlValue(net.Meta[k]))
	}
	if net.Directed() {
		b.WriteString("  directed 1\n")
	} else {
		b.WriteString("  directed 0\n")
	}

	for _, node := range net.Nodes() {
		b.WriteString("  node [\n")
		fmt.Fprintf(&b, "    id %s\n", node.ID)
		fmt.Fprintf(&b, "    label %s\n", quote(node.Label))
		for _, k := range sortedKeys(node.Attributes) {
			fmt.Fprintf(&b, "    %s %s\n", k, gmlValue(node.Attributes[k]))
		}
		writeGraphics(&b, node.Viz)
		b.WriteString("  ]\n")
	}

	for _, edge := range net.Edges() {
		b.WriteString("  edge [\n")
		fmt.Fprintf(&b, "    source %s\n", edge.Source)
		fmt.Fprintf(&b, "    target %s\n", edge.Target)
		fmt.Fprintf(&b, "    weight %s\n", formatFloat(edge.Weight))
		for _, k := range sortedKeys(edge.Attributes) {
			fmt.Fprintf(&b, "    %s %s\n", k, gmlValue(edge.Attributes[k]))
		}
		b.WriteString("  ]\n")
	}

	b.WriteString("]")
	return []byte(b.String()), nil
}

func writeGraphics(b *strings.Builder, viz network.Viz) {
	if viz.Position == nil && viz.RawColor == "" {
		return
	}
	b.WriteString("    graphics [\n")
	if viz.Position != nil {
		fmt.Fprintf(b, "      x %s\n", formatFloat(viz.Position.X))
		fmt.Fprintf(b, "      y %s\n", formatFloat(viz.Position.Y))
		fmt.Fprintf(b, "      z %s\n", formatFloat(viz.Position.Z))
	}
	if viz.RawColor != "" {
		fmt.Fprintf(b, "      fill %s\n", quote(viz.RawColor))
	}
	b.WriteString("    ]\n")
}

// tokenize splits GML source on whitespace and brackets, keeping quoted
// strings (including embedded whitespace and brackets) as single tokens.
func tokenize(data string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range data {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			flush()
		case (r == '[' || r == ']') && !inQuote:
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// parseLevel consumes key/value pairs until a closing bracket or the end of
// the token stream. Duplicate record keys (node, edge) accumulate into a
// slice; scalar duplicates overwrite.
func parseLevel(tokens []string, pos *int) map[string]any {
	obj := map[string]any{}
	for *pos < len(tokens) {
		key := tokens[*pos]
		*pos++
		if key == "]" {
			return obj
		}
		if *pos >= len(tokens) {
			break
		}
		valueToken := tokens[*pos]
		*pos++

		if valueToken == "[" {
			val := parseLevel(tokens, pos)
			switch existing := obj[key].(type) {
			case nil:
				obj[key] = val
			case []map[string]any:
				obj[key] = append(existing, val)
			case map[string]any:
				obj[key] = []map[string]any{existing, val}
			default:
				obj[key] = val
			}
		} else {
			obj[key] = parseScalar(valueToken)
		}
	}
	return obj
}

// parseScalar types a raw token: quoted strings stay strings, tokens with a
// decimal point become floats, bare integers become ints, anything else is
// kept verbatim.
func parseScalar(token string) any {
	if strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) && len(token) >= 2 {
		return token[1 : len(token)-1]
	}
	if strings.Contains(token, ".") {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return f
		}
		return token
	}
	if i, err := strconv.Atoi(token); err == nil {
		return i
	}
	return token
}

func asRecord(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []map[string]any:
		if len(t) > 0 {
			return t[0], true
		}
	}
	return nil, false
}

func asRecordList(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []map[string]any:
		return t
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case int:
		return t != 0
	case float64:
		return t != 0
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}
	return false
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatFloat(t)
	default:
		return fmt.Sprint(t)
	}
}

// gmlValue renders an attribute value for output; strings are quoted,
// numbers are written bare.
func gmlValue(v any) string {
	switch t := v.(type) {
	case string:
		return quote(t)
	case float64:
		return formatFloat(t)
	default:
		return fmt.Sprint(t)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
