package render

import (
	"strings"
	"testing"

	"github.com/netweave/netweave/pkg/network"
)

func sample(t *testing.T, directed bool) *network.Network {
	t.Helper()
	net := network.New()
	net.SetDirected(directed)

	a := network.NewNode("a", "Alpha")
	a.Viz.Color = []float64{1.0, 0.0, 0.0}
	a.Viz.Position = &network.Position{X: 1.5, Y: 2.5}
	a.Attributes["kind"] = "root"

	b := network.NewNode("b", "Beta")
	b.Viz.RawColor = "#00FF00"

	for _, n := range []*network.Node{a, b} {
		if err := net.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	net.AddEdge(network.NewEdge("e", "a", "b", 2.5))
	return net
}

func TestToDOTDirected(t *testing.T) {
	dot := ToDOT(sample(t, true), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("directed network should produce a digraph:\n%s", dot)
	}
	if !strings.Contains(dot, `"a" -> "b"`) {
		t.Errorf("missing directed edge:\n%s", dot)
	}
}

func TestToDOTUndirected(t *testing.T) {
	dot := ToDOT(sample(t, false), Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("undirected network should produce a graph:\n%s", dot)
	}
	if !strings.Contains(dot, `"a" -- "b"`) {
		t.Errorf("missing undirected edge:\n%s", dot)
	}
}

func TestToDOTColors(t *testing.T) {
	dot := ToDOT(sample(t, true), Options{})

	// Normalized triples become hex, raw color strings pass through.
	if !strings.Contains(dot, `fillcolor="#ff0000"`) {
		t.Errorf("missing hex fill color:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#00FF00"`) {
		t.Errorf("missing raw fill color:\n%s", dot)
	}
}

func TestToDOTLabels(t *testing.T) {
	plain := ToDOT(sample(t, true), Options{})
	if !strings.Contains(plain, `label="Alpha"`) {
		t.Errorf("missing display label:\n%s", plain)
	}
	if strings.Contains(plain, "kind: root") {
		t.Errorf("attributes leaked into plain labels:\n%s", plain)
	}

	detailed := ToDOT(sample(t, true), Options{Detailed: true})
	if !strings.Contains(detailed, "kind: root") {
		t.Errorf("detailed label missing attributes:\n%s", detailed)
	}
}

func TestToDOTPositions(t *testing.T) {
	without := ToDOT(sample(t, true), Options{})
	if strings.Contains(without, "pos=") {
		t.Errorf("positions written without UsePositions:\n%s", without)
	}

	with := ToDOT(sample(t, true), Options{UsePositions: true})
	if !strings.Contains(with, `pos="1.5,2.5!"`) {
		t.Errorf("missing pinned position:\n%s", with)
	}
}

func TestToDOTEdgeWeights(t *testing.T) {
	dot := ToDOT(sample(t, true), Options{})
	if !strings.Contains(dot, "weight=2.5") {
		t.Errorf("missing edge weight:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(svg))

	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", got)
	}
	if !strings.Contains(got, `width="100" height="50"`) {
		t.Errorf("pixel dimensions missing: %s", got)
	}
	if strings.Contains(got, "pt") {
		t.Errorf("point units survived normalization: %s", got)
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	svg := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(svg); string(got) != string(svg) {
		t.Errorf("svg without viewBox was modified: %s", got)
	}
}
