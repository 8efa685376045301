package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/graph"
	"github.com/riskmap/riskmap/pkg/render/styles"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	must(g.AddNode(graph.Node{ID: "cat_data", Label: "Data", Kind: graph.KindCategory}))
	must(g.AddNode(graph.Node{ID: "corpus", Label: "Training Corpus", Kind: graph.KindComponent, Parent: "cat_data", Rank: 1}))
	must(g.AddNode(graph.Node{ID: "pipeline", Label: "Data Pipeline", Kind: graph.KindComponent, Parent: "cat_data", Rank: 2}))
	must(g.AddNode(graph.Node{ID: "encrypt", Label: "Encrypt Data", Kind: graph.KindControl}))
	must(g.AddNode(graph.Node{ID: "theft", Label: "Data Theft", Kind: graph.KindRisk}))

	must(g.AddEdge(graph.Edge{From: "corpus", To: "pipeline", Style: graph.StyleDefault}))
	must(g.AddEdge(graph.Edge{From: "encrypt", To: "cat_data", Style: 1}))
	must(g.AddEdge(graph.Edge{From: "theft", To: "encrypt", Style: graph.StyleDefault}))
	return g
}

func TestRenderBasic(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	if !strings.Contains(out, "digraph riskmap {") {
		t.Error("Render() output missing digraph declaration")
	}
	if !strings.Contains(out, "rankdir=TB;") {
		t.Error("Render() output missing rankdir")
	}
	if !strings.Contains(out, "compound=true;") {
		t.Error("Render() output missing compound mode")
	}
	if !strings.Contains(out, `"corpus" -> "pipeline";`) {
		t.Error("Render() output missing component edge")
	}
}

func TestRenderClusters(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	if !strings.Contains(out, `subgraph "cluster_cat_data" {`) {
		t.Errorf("Render() output missing category cluster:\n%s", out)
	}
	if !strings.Contains(out, `label="Data";`) {
		t.Errorf("Render() output missing cluster label:\n%s", out)
	}
}

func TestRenderClusterEdgeAnchor(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	// The edge to the category attaches to its first member and clips at
	// the cluster border.
	want := `"encrypt" -> "corpus" [lhead="cluster_cat_data", color="#188038", penwidth=2, style=dashed];`
	if !strings.Contains(out, want) {
		t.Errorf("Render() output missing %q:\n%s", want, out)
	}
}

func TestRenderShapes(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	tests := []struct{ id, shape string }{
		{"corpus", "shape=box"},
		{"encrypt", "shape=ellipse"},
		{"theft", "shape=hexagon"},
	}
	for _, tt := range tests {
		line := lineWith(out, `"`+tt.id+`" [`)
		if line == "" {
			t.Errorf("no node line for %s:\n%s", tt.id, out)
			continue
		}
		if !strings.Contains(line, tt.shape) {
			t.Errorf("node %s = %q, want %s", tt.id, line, tt.shape)
		}
	}
}

func TestRenderDebugRanks(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{DebugRanks: true})

	if !strings.Contains(out, `label="Training Corpus [r1]"`) {
		t.Errorf("Render() debug output missing rank annotation:\n%s", out)
	}
}

func TestRenderLayout(t *testing.T) {
	cfg := styles.Default()
	out := Render(testGraph(t), cfg, Options{View: "risks"})

	if !strings.Contains(out, "rankdir=LR;") {
		t.Errorf("Render() risks view rankdir wrong:\n%s", out)
	}
	if !strings.Contains(out, "nodesep=0.60;") {
		t.Errorf("Render() risks view spacing wrong:\n%s", out)
	}
}

func TestRenderEmptyContainerEdgeDropped(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "cat_data", Label: "Data", Kind: graph.KindCategory}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "encrypt", Label: "Encrypt", Kind: graph.KindControl}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(graph.Edge{From: "encrypt", To: "cat_data", Style: graph.StyleDefault}); err != nil {
		t.Fatal(err)
	}

	out := Render(g, styles.Default(), Options{})
	if strings.Contains(out, "->") {
		t.Errorf("edge to empty container must be dropped:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := Render(testGraph(t), styles.Default(), Options{})
	b := Render(testGraph(t), styles.Default(), Options{})
	if a != b {
		t.Error("two renders of the same graph differ")
	}
}

func lineWith(text, substr string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), "digraph G { a -> b; }")
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), "not valid DOT {{{")
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

func TestRenderSVG_FullView(t *testing.T) {
	dot := Render(testGraph(t), styles.Default(), Options{})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v\ninput:\n%s", err, dot)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}
