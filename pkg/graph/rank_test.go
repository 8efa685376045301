package graph

import (
	"errors"
	"reflect"
	"testing"
)

func rankGraph(t *testing.T, edges [][2]string, nodes ...string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func ranksOf(g *Graph) map[string]int {
	out := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = n.Rank
	}
	return out
}

func TestAssignRanksChain(t *testing.T) {
	g := rankGraph(t, [][2]string{{"a", "b"}, {"b", "c"}}, "a", "b", "c")

	if err := AssignRanks(g, "a"); err != nil {
		t.Fatalf("AssignRanks() error = %v", err)
	}

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	if got := ranksOf(g); !reflect.DeepEqual(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
}

// The longest path wins: a node reachable both directly and through an
// intermediate lands below the intermediate.
func TestAssignRanksLongestPath(t *testing.T) {
	g := rankGraph(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, "a", "b", "c")

	if err := AssignRanks(g, "a"); err != nil {
		t.Fatalf("AssignRanks() error = %v", err)
	}

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	if got := ranksOf(g); !reflect.DeepEqual(got, want) {
		t.Errorf("ranks = %v, want %v", got, want)
	}
}

func TestAssignRanksUnreachable(t *testing.T) {
	g := rankGraph(t, [][2]string{{"a", "b"}}, "a", "b", "floating")

	if err := AssignRanks(g, "a"); err != nil {
		t.Fatalf("AssignRanks() error = %v", err)
	}

	if got := ranksOf(g)["floating"]; got != 0 {
		t.Errorf("rank(floating) = %d, want 0", got)
	}
}

// A feedback loop must terminate within NodeCount passes and produce
// the same ranks on every run.
func TestAssignRanksCycle(t *testing.T) {
	edges := [][2]string{
		{"app", "in"},
		{"in", "model"},
		{"model", "out"},
		{"out", "app"},
	}

	g := rankGraph(t, edges, "app", "in", "model", "out")
	if err := AssignRanks(g, "app"); err != nil {
		t.Fatalf("AssignRanks() error = %v", err)
	}
	first := ranksOf(g)

	g2 := rankGraph(t, edges, "app", "in", "model", "out")
	if err := AssignRanks(g2, "app"); err != nil {
		t.Fatalf("AssignRanks() error = %v", err)
	}

	if got := ranksOf(g2); !reflect.DeepEqual(first, got) {
		t.Errorf("cycle ranks not deterministic: %v vs %v", first, got)
	}

	// Every node in the loop is reachable, so every node is ranked.
	for id, r := range first {
		if r < 1 {
			t.Errorf("rank(%s) = %d, want >= 1", id, r)
		}
	}
}

func TestAssignRanksUnknownRoot(t *testing.T) {
	g := rankGraph(t, nil, "a")
	if err := AssignRanks(g, "ghost"); !errors.Is(err, ErrUnknownRootNode) {
		t.Errorf("AssignRanks() error = %v, want ErrUnknownRootNode", err)
	}
}

func TestAssignRanksEmptyGraph(t *testing.T) {
	if err := AssignRanks(New(), "anything"); err != nil {
		t.Errorf("AssignRanks() on empty graph error = %v, want nil", err)
	}
}

func TestMaxRank(t *testing.T) {
	g := rankGraph(t, [][2]string{{"a", "b"}, {"b", "c"}}, "a", "b", "c")
	if err := AssignRanks(g, "a"); err != nil {
		t.Fatal(err)
	}
	if got := MaxRank(g); got != 3 {
		t.Errorf("MaxRank() = %d, want 3", got)
	}
	if got := MaxRank(New()); got != 0 {
		t.Errorf("MaxRank(empty) = %d, want 0", got)
	}
}
