package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(Node{ID: "a", Label: "A"}); err != nil {
		t.Fatalf("AddNode(a) error = %v", err)
	}

	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{"empty id", Node{}, ErrInvalidNodeID},
		{"duplicate id", Node{ID: "a"}, ErrDuplicateNodeID},
		{"unknown parent", Node{ID: "b", Parent: "ghost"}, ErrUnknownParentNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddNode(tt.node); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := g.AddNode(Node{ID: "cat", Kind: KindCategory}); err != nil {
		t.Fatalf("AddNode(cat) error = %v", err)
	}
	if err := g.AddNode(Node{ID: "child", Parent: "cat"}); err != nil {
		t.Errorf("AddNode(child) error = %v", err)
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "b"}); err != nil {
		t.Fatal(err)
	}

	if err := g.AddEdge(Edge{From: "a", To: "b", Style: StyleDefault}); err != nil {
		t.Fatalf("AddEdge(a->b) error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "ghost", To: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(ghost->b) error = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "ghost"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a->ghost) error = %v, want ErrUnknownTargetNode", err)
	}

	if got := g.OutDegree("a"); got != 1 {
		t.Errorf("OutDegree(a) = %d, want 1", got)
	}
	if got := g.InDegree("b"); got != 1 {
		t.Errorf("InDegree(b) = %d, want 1", got)
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"z", "m", "a", "q"}
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	if got := NodeIDs(g.Nodes()); !reflect.DeepEqual(got, ids) {
		t.Errorf("Nodes() order = %v, want %v", got, ids)
	}
}

func TestMembersAndTopLevel(t *testing.T) {
	g := New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddNode(Node{ID: "cat", Kind: KindCategory}))
	must(g.AddNode(Node{ID: "a", Parent: "cat"}))
	must(g.AddNode(Node{ID: "b"}))
	must(g.AddNode(Node{ID: "c", Parent: "cat"}))

	if got := NodeIDs(g.Members("cat")); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Members(cat) = %v, want [a c]", got)
	}
	if got := NodeIDs(g.TopLevel()); !reflect.DeepEqual(got, []string{"cat", "b"}) {
		t.Errorf("TopLevel() = %v, want [cat b]", got)
	}
}

func TestRoots(t *testing.T) {
	g := New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(g.AddNode(Node{ID: "cat", Kind: KindCategory}))
	must(g.AddNode(Node{ID: "a", Parent: "cat"}))
	must(g.AddNode(Node{ID: "b", Parent: "cat"}))
	must(g.AddEdge(Edge{From: "a", To: "b"}))

	// The container has no incoming edges but is not a root; only "a" is.
	if got := NodeIDs(g.Roots()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Roots() = %v, want [a]", got)
	}
}

func TestHasCycle(t *testing.T) {
	build := func(edges [][2]string) *Graph {
		g := New()
		seen := map[string]bool{}
		for _, e := range edges {
			for _, id := range e {
				if !seen[id] {
					seen[id] = true
					if err := g.AddNode(Node{ID: id}); err != nil {
						t.Fatal(err)
					}
				}
			}
		}
		for _, e := range edges {
			if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
				t.Fatal(err)
			}
		}
		return g
	}

	tests := []struct {
		name  string
		edges [][2]string
		want  bool
	}{
		{"empty", nil, false},
		{"chain", [][2]string{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"self loop", [][2]string{{"a", "a"}}, true},
		{"feedback loop", [][2]string{{"app", "in"}, {"in", "model"}, {"model", "out"}, {"out", "app"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := build(tt.edges).HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindComponent, "component"},
		{KindControl, "control"},
		{KindRisk, "risk"},
		{KindCategory, "category"},
		{KindCluster, "cluster"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
