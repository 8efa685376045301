package graph

import "fmt"

// AssignRanks assigns every node an integer layout rank by bounded
// longest-path relaxation from the given root.
//
// The root is seeded at rank 1 and every edge pulls its target below
// its source: rank(to) becomes max(rank(to), rank(from)+1). The sweep
// over all edges repeats until a full pass changes nothing, but never
// more than NodeCount times, so graphs with cycles terminate with a
// best-effort layering instead of iterating forever. Nodes with no
// incoming edges keep rank 0 unless they are the root.
//
// Edges are relaxed in insertion order, so identical graphs always
// produce identical ranks, including inside cycles where the cap cuts
// the relaxation off mid-loop.
//
// Ranks are written back onto the nodes. Returns ErrUnknownRootNode if
// rootID names no node in a non-empty graph.
func AssignRanks(g *Graph, rootID string) error {
	if g.NodeCount() == 0 {
		return nil
	}
	if _, ok := g.Node(rootID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRootNode, rootID)
	}

	ranks := make(map[string]int, g.NodeCount())
	ranks[rootID] = 1

	edges := g.Edges()
	for pass := 0; pass < g.NodeCount(); pass++ {
		changed := false
		for _, e := range edges {
			if r := ranks[e.From] + 1; r > ranks[e.To] {
				ranks[e.To] = r
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, n := range g.Nodes() {
		n.Rank = ranks[n.ID]
	}
	return nil
}

// MaxRank returns the highest rank currently assigned, or 0 when no
// node is ranked.
func MaxRank(g *Graph) int {
	max := 0
	for _, n := range g.Nodes() {
		if n.Rank > max {
			max = n.Rank
		}
	}
	return max
}
