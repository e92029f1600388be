package cli

import (
	"testing"

	"github.com/google/uuid"
)

func TestRandomNetworkCounts(t *testing.T) {
	net, err := randomNetwork(10, 15, 42, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	if net.NodeCount() != 10 {
		t.Errorf("NodeCount() = %d, want 10", net.NodeCount())
	}
	if net.EdgeCount() != 15 {
		t.Errorf("EdgeCount() = %d, want 15", net.EdgeCount())
	}
	if net.Directed() {
		t.Error("network should be undirected by default")
	}
}

func TestRandomNetworkDirected(t *testing.T) {
	net, err := randomNetwork(5, 5, 42, true)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	if !net.Directed() {
		t.Error("network should be directed")
	}
}

func TestRandomNetworkNoSelfLoops(t *testing.T) {
	net, err := randomNetwork(4, 50, 7, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	for _, e := range net.Edges() {
		if e.Source == e.Target {
			t.Errorf("edge %s is a self loop (%s)", e.ID, e.Source)
		}
	}
}

func TestRandomNetworkDeterministic(t *testing.T) {
	a, err := randomNetwork(8, 12, 99, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	b, err := randomNetwork(8, 12, 99, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}

	edgesA := a.Edges()
	edgesB := b.Edges()
	if len(edgesA) != len(edgesB) {
		t.Fatalf("edge counts differ: %d vs %d", len(edgesA), len(edgesB))
	}
	for i := range edgesA {
		if edgesA[i].Source != edgesB[i].Source || edgesA[i].Target != edgesB[i].Target {
			t.Errorf("edge %d differs: %s->%s vs %s->%s",
				i, edgesA[i].Source, edgesA[i].Target, edgesB[i].Source, edgesB[i].Target)
		}
		if edgesA[i].ID != edgesB[i].ID {
			t.Errorf("edge %d IDs differ: %s vs %s", i, edgesA[i].ID, edgesB[i].ID)
		}
	}
}

func TestRandomNetworkSingleNode(t *testing.T) {
	net, err := randomNetwork(1, 10, 42, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	if net.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", net.NodeCount())
	}
	if net.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 (no pairs available)", net.EdgeCount())
	}
}

func TestRandomNetworkUniqueEdgeIDs(t *testing.T) {
	net, err := randomNetwork(10, 30, 3, false)
	if err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	seen := make(map[string]bool)
	for _, e := range net.Edges() {
		if seen[e.ID] {
			t.Errorf("duplicate edge ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestRandomNetworkRestoresUUIDSource(t *testing.T) {
	// If the seeded source leaked past randomNetwork, identical runs
	// would leave uuid generation replaying the same sequence.
	if _, err := randomNetwork(3, 2, 7, false); err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	first := uuid.NewString()

	if _, err := randomNetwork(3, 2, 7, false); err != nil {
		t.Fatalf("randomNetwork() error: %v", err)
	}
	second := uuid.NewString()

	if first == second {
		t.Error("uuid generation still seeded after randomNetwork returned")
	}
}
