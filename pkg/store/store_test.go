package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	nwerrors "github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	net := network.New()
	for _, id := range []string{"a", "b"} {
		if err := net.AddNode(network.NewNode(id, "")); err != nil {
			t.Fatal(err)
		}
	}
	net.AddEdge(network.NewEdge("e", "a", "b", 1))
	return net
}

func TestNewEntry(t *testing.T) {
	net := testNetwork(t)
	data := []byte("graph [\n]")
	entry := NewEntry("karate", "gml", data, net)

	if entry.Name != "karate" || entry.Format != "gml" {
		t.Errorf("entry identity = %s/%s, want karate/gml", entry.Name, entry.Format)
	}
	if entry.Nodes != 2 || entry.Edges != 1 {
		t.Errorf("counts = %d/%d, want 2/1", entry.Nodes, entry.Edges)
	}
	if entry.Checksum != Hash(data) {
		t.Errorf("checksum = %s, want %s", entry.Checksum, Hash(data))
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	entry := NewEntry("sample", "gexf", []byte("<gexf/>"), testNetwork(t))
	if err := s.Save(ctx, entry); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx, "sample")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got.Data) != "<gexf/>" {
		t.Errorf("Data = %q, want <gexf/>", got.Data)
	}
	if got.Checksum != entry.Checksum {
		t.Errorf("Checksum = %s, want %s", got.Checksum, entry.Checksum)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Load(context.Background(), "nope")
	if !nwerrors.Is(err, nwerrors.ErrCodeNetworkNotFound) {
		t.Errorf("error = %v, want NETWORK_NOT_FOUND", err)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"zebra", "alpha", "mid"} {
		entry := NewEntry(name, "gml", []byte("graph []"), nil)
		if err := s.Save(ctx, entry); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	for i, want := range []string{"alpha", "mid", "zebra"} {
		if entries[i].Name != want {
			t.Errorf("entries[%d].Name = %s, want %s", i, entries[i].Name, want)
		}
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	entry := NewEntry("gone", "gml", []byte("graph []"), nil)
	if err := s.Save(ctx, entry); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Load(ctx, "gone"); !nwerrors.Is(err, nwerrors.ErrCodeNetworkNotFound) {
		t.Errorf("Load() after delete = %v, want NETWORK_NOT_FOUND", err)
	}

	// Deleting again is not an error.
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Errorf("Delete() of missing entry error = %v", err)
	}
}

func TestFileStoreRejectsInvalidNames(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", "../escape", "has space"} {
		entry := NewEntry(name, "gml", nil, nil)
		if err := s.Save(ctx, entry); err == nil {
			t.Errorf("Save(%q) expected validation error", name)
		}
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()

	if err := s.Save(ctx, NewEntry("x", "gml", nil, nil)); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if _, err := s.Load(ctx, "x"); !nwerrors.Is(err, nwerrors.ErrCodeNetworkNotFound) {
		t.Errorf("Load() = %v, want NETWORK_NOT_FOUND", err)
	}
	entries, err := s.List(ctx)
	if err != nil || len(entries) != 0 {
		t.Errorf("List() = %v, %v, want empty", entries, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("data"))
	h2 := Hash([]byte("data"))
	h3 := Hash([]byte("other"))

	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
	if h1 != h2 {
		t.Error("same input produced different hashes")
	}
	if h1 == h3 {
		t.Error("different inputs produced the same hash")
	}
}

func TestRetryWithBackoffNonRetryable(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return fmt.Errorf("permanent")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error retried %d times", calls)
	}
}

func TestRetryWithBackoffCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("transient"))
	})
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported retryable")
	}
	if !IsRetryable(Retryable(errors.New("transient"))) {
		t.Error("wrapped error not reported retryable")
	}
	wrapped := fmt.Errorf("outer: %w", Retryable(errors.New("inner")))
	if !IsRetryable(wrapped) {
		t.Error("nested retryable not detected")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestEntryTimestampsAreUTC(t *testing.T) {
	entry := NewEntry("x", "gml", nil, nil)
	if entry.UpdatedAt.Location() != time.UTC {
		t.Errorf("UpdatedAt location = %v, want UTC", entry.UpdatedAt.Location())
	}
}
