package gml

import (
	"strings"
	"testing"

	"github.com/netweave/netweave/pkg/errors"
)

const sampleGML = `graph [
  directed 1
  comment "This is a sample graph"
  node [
    id 1
    label "Node 1"
    score 0.99
    graphics [
        x 15.0
        y 25.0
        z 0.0
        fill "#00FF00"
    ]
  ]
  node [
    id 2
    label "Node 2"
  ]
  edge [
    id "e1"
    source 1
    target 2
    weight 1.5
    label "connection"
  ]
]`

func TestParseValid(t *testing.T) {
	net, err := New().Parse([]byte(sampleGML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := net.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
	if !net.Directed() {
		t.Error("Directed() = false, want true")
	}
	if got := net.Meta["comment"]; got != "This is a sample graph" {
		t.Errorf("Meta[comment] = %v, want sample comment", got)
	}

	// Numeric GML IDs become strings in the network.
	n1, ok := net.Node("1")
	if !ok {
		t.Fatal("node 1 not found")
	}
	if n1.Label != "Node 1" {
		t.Errorf("n1.Label = %q, want %q", n1.Label, "Node 1")
	}
	if got := n1.Attributes["score"]; got != 0.99 {
		t.Errorf("n1 score = %v (%T), want 0.99 (float64)", got, got)
	}
	if p := n1.Viz.Position; p == nil || p.X != 15.0 || p.Y != 25.0 {
		t.Errorf("n1 position = %+v, want {15 25 0}", p)
	}
	if n1.Viz.RawColor != "#00FF00" {
		t.Errorf("n1 raw color = %q, want #00FF00", n1.Viz.RawColor)
	}

	e1 := net.Edges()[0]
	if e1.Source != "1" || e1.Target != "2" {
		t.Errorf("edge endpoints = %s->%s, want 1->2", e1.Source, e1.Target)
	}
	if e1.Weight != 1.5 {
		t.Errorf("edge weight = %v, want 1.5", e1.Weight)
	}
	if got := e1.Attributes["label"]; got != "connection" {
		t.Errorf("edge label = %v, want connection", got)
	}
}

func TestParseMissingGraph(t *testing.T) {
	_, err := New().Parse([]byte("node [ id 1 ]"))
	if err == nil {
		t.Fatal("Parse() expected error for missing graph key")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	// GML repeats the node key for every node; the parser must collect them
	// instead of overwriting.
	doc := `graph [
        node [ id 1 ]
        node [ id 2 ]
    ]`
	net, err := New().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := net.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
}

func TestParseSingleNode(t *testing.T) {
	net, err := New().Parse([]byte(`graph [ node [ id 7 label "solo" ] ]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	n, ok := net.Node("7")
	if !ok {
		t.Fatal("node 7 not found")
	}
	if n.Label != "solo" {
		t.Errorf("label = %q, want solo", n.Label)
	}
}

func TestParseValueAsWeight(t *testing.T) {
	// "value" is the older GML spelling for edge weight.
	doc := `graph [
	  node [ id 1 ]
	  node [ id 2 ]
	  edge [ source 1 target 2 value 3.25 ]
	]`
	net, err := New().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := net.Edges()[0].Weight; got != 3.25 {
		t.Errorf("weight = %v, want 3.25", got)
	}
}

func TestRoundTrip(t *testing.T) {
	codec := New()
	original, err := codec.Parse([]byte(sampleGML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := codec.Stringify(original)
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}

	final, err := codec.Parse(out)
	if err != nil {
		t.Fatalf("re-Parse() error = %v\noutput:\n%s", err, out)
	}

	if final.NodeCount() != original.NodeCount() {
		t.Errorf("node count = %d, want %d", final.NodeCount(), original.NodeCount())
	}
	n1, ok := final.Node("1")
	if !ok {
		t.Fatal("node 1 lost in round trip")
	}
	if n1.Label != "Node 1" {
		t.Errorf("label after round trip = %q, want %q", n1.Label, "Node 1")
	}
	if p := n1.Viz.Position; p == nil || p.X != 15.0 {
		t.Errorf("position after round trip = %+v, want X=15", p)
	}
	if n1.Viz.RawColor != "#00FF00" {
		t.Errorf("raw color after round trip = %q, want #00FF00", n1.Viz.RawColor)
	}
}

func TestStringifyQuotesStrings(t *testing.T) {
	net, err := New().Parse([]byte(sampleGML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := New().Stringify(net)
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}
	if !strings.Contains(string(out), `label "Node 1"`) {
		t.Errorf("output missing quoted label:\n%s", out)
	}
	if !strings.Contains(string(out), "directed 1") {
		t.Errorf("output missing directed flag:\n%s", out)
	}
}
