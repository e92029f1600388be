// Package network defines the in-memory graph model shared by all of
// netweave: nodes, edges, and the Network aggregate that owns them.
//
// # Core Types
//
//   - [Node]: a vertex with a label, freeform attributes, and visual
//     properties (position, color, size)
//   - [Edge]: a weighted connection between two node IDs
//   - [Network]: the owning aggregate, preserving node insertion order
//     and carrying graph-level metadata and the attribute [Schema]
//
// # Building Networks
//
//	n := network.NewDirected()
//	_ = n.AddNode(network.NewNode("a", "Node A"))
//	_ = n.AddNode(network.NewNode("b", "Node B"))
//	n.AddEdge(network.NewEdge("e1", "a", "b", 1.0))
//
// AddNode rejects empty and duplicate IDs. AddEdge accepts any endpoints,
// since parsers may see an edge before both of its nodes; call
// [Network.Validate] to check that every edge references existing nodes.
//
// # Attribute Typing
//
// Typed interchange formats declare attribute types per element class.
// [EnforceType] coerces raw string values according to those declarations,
// and [InferGEXFType] does the reverse mapping when exporting values whose
// types were never declared.
//
// # Colors
//
// Visual colors are held as normalized [0, 1] float slices. [RGBString] and
// [ParseRGBString] convert between that representation and CSS-style
// "rgb(r,g,b)" strings, accepting both normalized and 8-bit inputs.
//
// # Concurrency
//
// Network values are safe for concurrent reads but not concurrent writes.
package network
