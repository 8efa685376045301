package graph_test

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/graph"
)

// ExampleAssignRanks layers a small pipeline. The longest path decides
// the rank, so a node reachable on two paths lands below the longer one.
func ExampleAssignRanks() {
	g := graph.New()
	for _, id := range []string{"application", "input-handling", "the-model"} {
		_ = g.AddNode(graph.Node{ID: id})
	}
	_ = g.AddEdge(graph.Edge{From: "application", To: "input-handling"})
	_ = g.AddEdge(graph.Edge{From: "application", To: "the-model"})
	_ = g.AddEdge(graph.Edge{From: "input-handling", To: "the-model"})

	if err := graph.AssignRanks(g, "application"); err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, n := range g.Nodes() {
		fmt.Printf("%s rank %d\n", n.ID, n.Rank)
	}
	// Output:
	// application rank 1
	// input-handling rank 2
	// the-model rank 3
}
