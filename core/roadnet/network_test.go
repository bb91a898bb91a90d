package roadnet

import (
	"testing"

	"github.com/mobilitylabs/evsim/core/geo"
)

func mustAddNode(t *testing.T, n *Network, id int64, lat, lon float64) {
	t.Helper()
	if err := n.AddNode(id, lat, lon); err != nil {
		t.Fatalf("add node %d: %v", id, err)
	}
}

func mustAddEdge(t *testing.T, n *Network, u, v int64, lengthM float64) {
	t.Helper()
	if err := n.AddEdge(u, v, lengthM); err != nil {
		t.Fatalf("add edge (%d,%d): %v", u, v, err)
	}
}

func TestAddNodeInvalidCoordinates(t *testing.T) {
	n := New()
	if err := n.AddNode(1, 120, 0); err == nil {
		t.Fatal("expected error for latitude out of range")
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	n := New()
	mustAddNode(t, n, 1, 0, 0)
	mustAddNode(t, n, 1, 0, 0)
	if n.NumNodes() != 1 {
		t.Fatalf("expected 1 node, got %d", n.NumNodes())
	}
}

func TestAddEdgeValidation(t *testing.T) {
	n := New()
	mustAddNode(t, n, 1, 0, 0)
	mustAddNode(t, n, 2, 0, 0.01)
	if err := n.AddEdge(1, 3, 100); err == nil {
		t.Fatal("expected error for unknown endpoint")
	}
	if err := n.AddEdge(1, 1, 100); err == nil {
		t.Fatal("expected error for self loop")
	}
	if err := n.AddEdge(1, 2, -5); err == nil {
		t.Fatal("expected error for negative length")
	}
	mustAddEdge(t, n, 1, 2, 100)
	if got, ok := n.EdgeLengthM(2, 1); !ok || got != 100 {
		t.Fatalf("expected undirected edge length 100, got %v (ok=%v)", got, ok)
	}
}

func TestNearestNodeStableTieBreak(t *testing.T) {
	n := New()
	// Same coordinates on purpose: the ascending id scan must win the tie.
	mustAddNode(t, n, 7, 1, 1)
	mustAddNode(t, n, 3, 1, 1)
	mustAddNode(t, n, 9, 2, 2)
	id, ok := n.NearestNode(geo.New(1, 1))
	if !ok || id != 3 {
		t.Fatalf("expected node 3, got %d (ok=%v)", id, ok)
	}
}

func TestNearestNodeEmptyNetwork(t *testing.T) {
	n := New()
	if _, ok := n.NearestNode(geo.New(0, 0)); ok {
		t.Fatal("expected no nearest node on empty network")
	}
}

func TestShortestPathPrefersLighterRoute(t *testing.T) {
	n := New()
	mustAddNode(t, n, 1, 0, 0)
	mustAddNode(t, n, 2, 0, 0.01)
	mustAddNode(t, n, 3, 0.01, 0)
	mustAddNode(t, n, 4, 0.01, 0.01)
	mustAddEdge(t, n, 1, 2, 100)
	mustAddEdge(t, n, 2, 4, 100)
	mustAddEdge(t, n, 1, 3, 500)
	mustAddEdge(t, n, 3, 4, 500)

	from, _ := n.NodeLocation(1)
	to, _ := n.NodeLocation(4)
	got := n.ShortestPath(from, to)
	want := []int64{1, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected path %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, got)
		}
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	n := New()
	mustAddNode(t, n, 1, 0, 0)
	mustAddNode(t, n, 2, 0, 0.01)
	mustAddNode(t, n, 3, 5, 5)
	mustAddEdge(t, n, 1, 2, 100)

	from, _ := n.NodeLocation(1)
	to, _ := n.NodeLocation(3)
	if got := n.ShortestPath(from, to); len(got) != 0 {
		t.Fatalf("expected empty path, got %v", got)
	}
}

func TestShortestPathSameEndpoint(t *testing.T) {
	n := New()
	mustAddNode(t, n, 1, 0, 0)
	loc, _ := n.NodeLocation(1)
	got := n.ShortestPath(loc, loc)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected single-node path [1], got %v", got)
	}
}
