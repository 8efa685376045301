// Package graph provides the directed graph that diagram views are
// built on.
//
// A view graph holds typed nodes (components, controls, risks, and the
// category and cluster containers that group them) and directed edges
// carrying an optional style index. It deliberately tolerates cycles:
// real maps contain feedback loops, for example an application feeding
// model output back into its own input handling.
//
// # Construction
//
// Containers are added before their members, edges after both
// endpoints:
//
//	g := graph.New()
//	g.AddNode(graph.Node{ID: "cat_model", Label: "Model", Kind: graph.KindCategory})
//	g.AddNode(graph.Node{ID: "the-model", Label: "The Model", Parent: "cat_model"})
//	g.AddEdge(graph.Edge{From: "input-handling", To: "the-model", Style: graph.StyleDefault})
//
// # Ranks
//
// [AssignRanks] layers the graph top-down from a root node using
// bounded longest-path relaxation. The pass count is capped by the node
// count, so cycles get a deterministic best-effort layering rather than
// an infinite loop.
//
// # Determinism
//
// All iteration follows insertion order: Nodes, Edges, Members, Roots,
// and rank relaxation. Two builds from the same input produce the same
// graph and the same emission downstream.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Build it in one goroutine,
// then share it read-only.
package graph
