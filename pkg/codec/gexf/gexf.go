// Package gexf implements the Graph Exchange XML Format (GEXF 1.2draft).
//
// The parser is deliberately namespace-tolerant: real-world GEXF files use
// inconsistent namespace prefixes (or none at all), so element matching is
// done on local tag names, case-insensitively. Attribute declarations are
// honored for typed round trips: values are coerced to their declared types
// on parse and declarations are re-emitted on stringify.
package gexf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

const (
	xmlnsGEXF = "http://www.gexf.net/1.2draft"
	xmlnsViz  = "http://www.gexf.net/1.2draft/viz"
)

// TagName returns the local name of an element's tag, ignoring any
// namespace prefix.
func TagName(el *etree.Element) string {
	return el.Tag
}

// FindByTag returns the direct children of el whose local tag name matches
// name, case-insensitively and ignoring namespaces.
func FindByTag(el *etree.Element, name string) []*etree.Element {
	var matches []*etree.Element
	for _, child := range el.ChildElements() {
		if strings.EqualFold(TagName(child), name) {
			matches = append(matches, child)
		}
	}
	return matches
}

// firstByTag returns the first matching child or nil.
func firstByTag(el *etree.Element, name string) *etree.Element {
	for _, child := range el.ChildElements() {
		if strings.EqualFold(TagName(child), name) {
			return child
		}
	}
	return nil
}

// findDescendant walks the tree depth-first for the first element with the
// given local tag name.
func findDescendant(el *etree.Element, name string) *etree.Element {
	if strings.EqualFold(TagName(el), name) {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findDescendant(child, name); found != nil {
			return found
		}
	}
	return nil
}

// attrDef is a declared attribute: GEXF references values by numeric ID,
// while the model stores them under the human-readable title.
type attrDef struct {
	typ   string
	title string
}

// Codec parses and writes GEXF documents.
type Codec struct{}

// New creates a GEXF codec.
func New() *Codec { return &Codec{} }

// Name returns the format name.
func (*Codec) Name() string { return "gexf" }

// Parse decodes a GEXF document into a Network.
func (*Codec) Parse(data []byte) (*network.Network, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "invalid GEXF XML data")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeParse, "invalid GEXF XML data")
	}

	// Locate the gexf root; some files nest it or omit it entirely.
	gexfRoot := findDescendant(root, "gexf")
	if gexfRoot == nil {
		gexfRoot = root
	}

	graph := firstByTag(gexfRoot, "graph")
	if graph == nil {
		return nil, errors.New(errors.ErrCodeParse, "no <graph> element found in GEXF")
	}

	net := network.New()
	net.Mode = graph.SelectAttrValue("mode", network.ModeStatic)
	net.SetDirected(graph.SelectAttrValue("defaultedgetype", network.EdgeUndirected) == network.EdgeDirected)

	if meta := firstByTag(gexfRoot, "meta"); meta != nil {
		for _, child := range meta.ChildElements() {
			net.Meta[TagName(child)] = child.Text()
		}
	}

	defs := parseAttrDefs(graph, net)

	if nodes := firstByTag(graph, "nodes"); nodes != nil {
		for _, el := range FindByTag(nodes, "node") {
			node := parseNode(el, defs)
			if err := net.AddNode(node); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "node %q", node.ID)
			}
		}
	}

	if edges := firstByTag(graph, "edges"); edges != nil {
		for i, el := range FindByTag(edges, "edge") {
			net.AddEdge(parseEdge(el, i, net.EdgeType, defs))
		}
	}

	return net, nil
}

// parseAttrDefs reads <attributes> declarations and records them both in the
// per-class lookup (ID -> def) and in the network model for re-export.
func parseAttrDefs(graph *etree.Element, net *network.Network) map[string]map[string]attrDef {
	defs := map[string]map[string]attrDef{
		"node": {},
		"edge": {},
	}
	for _, attrsEl := range FindByTag(graph, "attributes") {
		class := attrsEl.SelectAttrValue("class", "node")
		classDefs, ok := defs[class]
		if !ok {
			continue
		}
		for _, attr := range FindByTag(attrsEl, "attribute") {
			id := attr.SelectAttrValue("id", "")
			typ := attr.SelectAttrValue("type", "string")
			title := attr.SelectAttrValue("title", id)
			classDefs[id] = attrDef{typ: typ, title: title}
			if class == "node" {
				net.Model.Node[title] = typ
			} else {
				net.Model.Edge[title] = typ
			}
		}
	}
	return defs
}

func parseNode(el *etree.Element, defs map[string]map[string]attrDef) *network.Node {
	node := network.NewNode(el.SelectAttrValue("id", ""), el.SelectAttrValue("label", ""))
	parseAttValues(el, node.Attributes, defs["node"])

	for _, child := range el.ChildElements() {
		switch strings.ToLower(TagName(child)) {
		case "color":
			r := child.SelectAttrValue("r", "")
			g := child.SelectAttrValue("g", "")
			b := child.SelectAttrValue("b", "")
			if r != "" && g != "" && b != "" {
				node.Viz.Color = []float64{
					parseFloat(r, 0) / 255.0,
					parseFloat(g, 0) / 255.0,
					parseFloat(b, 0) / 255.0,
				}
			}
		case "position":
			node.Viz.Position = &network.Position{
				X: parseFloat(child.SelectAttrValue("x", ""), 0),
				Y: parseFloat(child.SelectAttrValue("y", ""), 0),
				Z: parseFloat(child.SelectAttrValue("z", ""), 0),
			}
		case "size":
			size := parseFloat(child.SelectAttrValue("value", ""), 1.0)
			node.Viz.Size = &size
		}
	}
	return node
}

func parseEdge(el *etree.Element, index int, defaultType string, defs map[string]map[string]attrDef) *network.Edge {
	id := el.SelectAttrValue("id", "")
	if id == "" {
		id = strconv.Itoa(index)
	}
	edge := network.NewEdge(id,
		el.SelectAttrValue("source", ""),
		el.SelectAttrValue("target", ""),
		parseFloat(el.SelectAttrValue("weight", ""), 1.0))
	edge.Type = el.SelectAttrValue("type", defaultType)
	parseAttValues(el, edge.Attributes, defs["edge"])
	return edge
}

// parseAttValues reads an element's <attvalues> block into attrs.
// Declared attributes are stored under their title with their declared type
// enforced; undeclared references keep the raw ID and string value.
func parseAttValues(el *etree.Element, attrs network.Attributes, defs map[string]attrDef) {
	attvalues := firstByTag(el, "attvalues")
	if attvalues == nil {
		return
	}
	for _, av := range FindByTag(attvalues, "attvalue") {
		ref := av.SelectAttrValue("for", "")
		if ref == "" {
			ref = av.SelectAttrValue("id", "")
		}
		val := av.SelectAttrValue("value", "")

		if def, ok := defs[ref]; ok {
			attrs[def.title] = network.EnforceType(val, def.typ)
		} else {
			attrs[ref] = val
		}
	}
}

// Stringify encodes a Network as an indented GEXF document.
func (*Codec) Stringify(net *network.Network) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	gexf := doc.CreateElement("gexf")
	gexf.CreateAttr("xmlns", xmlnsGEXF)
	gexf.CreateAttr("xmlns:viz", xmlnsViz)
	gexf.CreateAttr("version", "1.2")

	meta := gexf.CreateElement("meta")
	for _, k := range sortedKeys(net.Meta) {
		meta.CreateElement(k).SetText(fmt.Sprint(net.Meta[k]))
	}

	graph := gexf.CreateElement("graph")
	graph.CreateAttr("mode", net.Mode)
	graph.CreateAttr("defaultedgetype", net.EdgeType)

	// GEXF references attributes by numeric ID; assign them per class.
	nodeAttrIDs := writeAttrSection(graph, "node", net.Model.Node)
	edgeAttrIDs := writeAttrSection(graph, "edge", net.Model.Edge)

	nodes := graph.CreateElement("nodes")
	for _, node := range net.Nodes() {
		el := nodes.CreateElement("node")
		el.CreateAttr("id", node.ID)
		el.CreateAttr("label", node.Label)
		writeAttValues(el, node.Attributes, nodeAttrIDs)
		writeViz(el, node.Viz)
	}

	edges := graph.CreateElement("edges")
	for _, edge := range net.Edges() {
		el := edges.CreateElement("edge")
		el.CreateAttr("id", edge.ID)
		el.CreateAttr("source", edge.Source)
		el.CreateAttr("target", edge.Target)
		el.CreateAttr("weight", formatFloat(edge.Weight))
		if edge.Type != net.EdgeType {
			el.CreateAttr("type", edge.Type)
		}
		writeAttValues(el, edge.Attributes, edgeAttrIDs)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// writeAttrSection emits an <attributes> declaration block for one class and
// returns the title -> numeric ID mapping used by attvalue references.
func writeAttrSection(graph *etree.Element, class string, schema map[string]string) map[string]string {
	ids := make(map[string]string, len(schema))
	if len(schema) == 0 {
		return ids
	}
	attrsEl := graph.CreateElement("attributes")
	attrsEl.CreateAttr("class", class)
	for i, title := range sortedKeys(schema) {
		id := strconv.Itoa(i)
		ids[title] = id
		attr := attrsEl.CreateElement("attribute")
		attr.CreateAttr("id", id)
		attr.CreateAttr("title", title)
		attr.CreateAttr("type", schema[title])
	}
	return ids
}

// writeAttValues emits an <attvalues> block for the attributes that have a
// declared ID. Undeclared attributes are dropped, matching the format's
// requirement that every value reference a declaration.
func writeAttValues(el *etree.Element, attrs network.Attributes, ids map[string]string) {
	if len(attrs) == 0 {
		return
	}
	var avs *etree.Element
	for _, k := range sortedKeys(attrs) {
		id, ok := ids[k]
		if !ok {
			continue
		}
		if avs == nil {
			avs = el.CreateElement("attvalues")
		}
		av := avs.CreateElement("attvalue")
		av.CreateAttr("for", id)
		av.CreateAttr("value", formatValue(attrs[k]))
	}
}

func writeViz(el *etree.Element, viz network.Viz) {
	if len(viz.Color) >= 3 {
		color := el.CreateElement("viz:color")
		color.CreateAttr("r", strconv.Itoa(int(viz.Color[0]*255)))
		color.CreateAttr("g", strconv.Itoa(int(viz.Color[1]*255)))
		color.CreateAttr("b", strconv.Itoa(int(viz.Color[2]*255)))
	}
	if viz.Position != nil {
		pos := el.CreateElement("viz:position")
		pos.CreateAttr("x", formatFloat(viz.Position.X))
		pos.CreateAttr("y", formatFloat(viz.Position.Y))
		pos.CreateAttr("z", formatFloat(viz.Position.Z))
	}
	if viz.Size != nil {
		size := el.CreateElement("viz:size")
		size.CreateAttr("value", formatFloat(*viz.Size))
	}
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatValue renders an attribute value the way GEXF expects: pipe-joined
// for list values, plain string conversion otherwise.
func formatValue(v any) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, "|")
	}
	return fmt.Sprint(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
