package network

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Network.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Network.AddNode] when a node with
	// the same ID already exists in the network. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeEndpoint is returned by [Network.Validate] when an edge
	// references a node that doesn't exist in the network.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Edge type values. A network has a default edge type, and individual edges
// may override it (GEXF allows mixed graphs).
const (
	EdgeDirected   = "directed"
	EdgeUndirected = "undirected"
)

// ModeStatic is the default graph mode. Dynamic GEXF graphs carry time
// intervals; netweave preserves the mode string but treats all graphs as
// snapshots.
const ModeStatic = "static"

// Attributes stores arbitrary key-value pairs attached to nodes or edges.
// Typed interchange formats (GEXF) populate values according to the declared
// attribute schema; untyped formats store raw strings or numbers.
type Attributes map[string]any

// Position is a 3D coordinate for node placement.
type Position struct {
	X, Y, Z float64
}

// Viz holds visual properties of a node or edge. All fields are optional:
// a nil Position, nil Color, empty RawColor, and nil Size mean the property
// was not present in the source data and will be omitted on export.
type Viz struct {
	// Position is the node placement in space.
	Position *Position
	// Color is a normalized RGB or RGBA slice with components in [0, 1].
	Color []float64
	// RawColor preserves color strings that are not plain RGB triples
	// (hex codes, named colors from GML graphics blocks).
	RawColor string
	// Size is the display size of the node.
	Size *float64
}

// Node represents a vertex in a network.
//
// The zero value is not usable - use [NewNode] or set ID explicitly before
// adding to a Network.
type Node struct {
	ID         string     // Unique identifier within the owning network
	Label      string     // Display label (defaults to ID)
	Attributes Attributes // Arbitrary key-value data (never nil after AddNode)
	Viz        Viz        // Visual properties (position, color, size)
}

// NewNode creates a node with the given ID and label.
// An empty label defaults to the ID, matching common interchange semantics
// where the identifier doubles as the display name.
func NewNode(id, label string) *Node {
	if label == "" {
		label = id
	}
	return &Node{ID: id, Label: label, Attributes: Attributes{}}
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge represents a connection between two nodes.
type Edge struct {
	ID         string     // Edge identifier (formats without IDs use the index)
	Source     string     // Source node ID
	Target     string     // Target node ID
	Weight     float64    // Edge weight (1.0 when the format has no weights)
	Type       string     // EdgeDirected or EdgeUndirected
	Attributes Attributes // Arbitrary key-value data (never nil after AddEdge)
	Viz        Viz        // Visual properties
}

// NewEdge creates an edge between source and target with the given weight.
// The edge type defaults to undirected; callers building directed networks
// should set Type (or rely on the network default at export time).
func NewEdge(id, source, target string, weight float64) *Edge {
	return &Edge{
		ID:         id,
		Source:     source,
		Target:     target,
		Weight:     weight,
		Type:       EdgeUndirected,
		Attributes: Attributes{},
	}
}

// Schema declares attribute types per element class for typed interchange
// formats. Keys are attribute titles, values are GEXF type descriptors
// ("string", "integer", "float", "boolean", "liststring").
type Schema struct {
	Node map[string]string
	Edge map[string]string
}

// Network is a collection of nodes and edges with graph-level metadata.
//
// Nodes are kept in insertion order so that parse → stringify round trips
// are stable; maps alone would randomize attribute IDs and vertex indices
// in exported files.
//
// The zero value is not usable - use [New] to create a Network.
// Network is not safe for concurrent mutation without external locking.
type Network struct {
	nodes map[string]*Node
	order []string
	edges []*Edge

	// Meta holds graph-level metadata (creator, description, ...).
	Meta Attributes
	// Mode is the graph mode, typically "static".
	Mode string
	// EdgeType is the default edge type (directed or undirected).
	EdgeType string
	// Model declares attribute types for typed re-export.
	Model Schema
}

// New creates an empty undirected static network.
func New() *Network {
	return &Network{
		nodes:    make(map[string]*Node),
		Meta:     Attributes{},
		Mode:     ModeStatic,
		EdgeType: EdgeUndirected,
		Model: Schema{
			Node: make(map[string]string),
			Edge: make(map[string]string),
		},
	}
}

// NewDirected creates an empty directed static network.
func NewDirected() *Network {
	n := New()
	n.EdgeType = EdgeDirected
	return n
}

// Directed reports whether the network's default edge type is directed.
func (n *Network) Directed() bool { return n.EdgeType == EdgeDirected }

// SetDirected sets the default edge type.
func (n *Network) SetDirected(directed bool) {
	if directed {
		n.EdgeType = EdgeDirected
	} else {
		n.EdgeType = EdgeUndirected
	}
}

// AddNode adds a node to the network.
// Returns ErrInvalidNodeID if the ID is empty or ErrDuplicateNodeID if a
// node with the same ID already exists. The node's Attributes map is
// initialized if nil, and an empty label defaults to the ID.
func (n *Network) AddNode(node *Node) error {
	if node.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := n.nodes[node.ID]; exists {
		return ErrDuplicateNodeID
	}
	if node.Label == "" {
		node.Label = node.ID
	}
	if node.Attributes == nil {
		node.Attributes = Attributes{}
	}
	n.nodes[node.ID] = node
	n.order = append(n.order, node.ID)
	return nil
}

// AddEdge appends an edge to the network. Endpoints are not checked at
// insertion time, so parsers can add edges before both endpoints exist;
// [Network.Validate] reports edges whose endpoints are missing. An empty
// edge type defaults to the network's EdgeType, and the Attributes map is
// initialized if nil.
func (n *Network) AddEdge(e *Edge) {
	if e.Type == "" {
		e.Type = n.EdgeType
	}
	if e.Attributes == nil {
		e.Attributes = Attributes{}
	}
	n.edges = append(n.edges, e)
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node, so modifications
// affect the network.
func (n *Network) Node(id string) (*Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual nodes.
func (n *Network) Nodes() []*Node {
	nodes := make([]*Node, len(n.order))
	for i, id := range n.order {
		nodes[i] = n.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (n *Network) NodeIDs() []string { return slices.Clone(n.order) }

// Edges returns all edges in insertion order.
// The returned slice is a copy but the edge pointers are shared.
func (n *Network) Edges() []*Edge { return slices.Clone(n.edges) }

// NodeCount returns the number of nodes in the network.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of edges in the network.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Neighbors returns the IDs of nodes connected to id by any edge,
// treating edges as undirected for adjacency purposes. Each neighbor
// appears once per connecting edge.
func (n *Network) Neighbors(id string) []string {
	var out []string
	for _, e := range n.edges {
		switch id {
		case e.Source:
			out = append(out, e.Target)
		case e.Target:
			out = append(out, e.Source)
		}
	}
	return out
}

// Degree returns the number of edges incident to the node.
func (n *Network) Degree(id string) int { return len(n.Neighbors(id)) }

// InferModel fills in missing Model declarations from the attributes
// actually present on nodes and edges, using InferGEXFType for the type
// descriptors. Existing declarations are left untouched. Typed exports only
// emit declared attributes, so call this before exporting a network whose
// attributes were not populated from a typed source.
func (n *Network) InferModel() {
	for _, node := range n.Nodes() {
		for k, v := range node.Attributes {
			if _, ok := n.Model.Node[k]; !ok {
				n.Model.Node[k] = InferGEXFType(v)
			}
		}
	}
	for _, e := range n.edges {
		for k, v := range e.Attributes {
			if _, ok := n.Model.Edge[k]; !ok {
				n.Model.Edge[k] = InferGEXFType(v)
			}
		}
	}
}

// Validate checks referential integrity: every edge endpoint must exist.
// Returns an error wrapping ErrInvalidEdgeEndpoint on the first violation,
// nil otherwise. AddEdge does not check endpoints, so call Validate after
// building a network from untrusted input.
func (n *Network) Validate() error {
	for _, e := range n.edges {
		if _, ok := n.nodes[e.Source]; !ok {
			return fmt.Errorf("%w: edge %q references missing source %q", ErrInvalidEdgeEndpoint, e.ID, e.Source)
		}
		if _, ok := n.nodes[e.Target]; !ok {
			return fmt.Errorf("%w: edge %q references missing target %q", ErrInvalidEdgeEndpoint, e.ID, e.Target)
		}
	}
	return nil
}
