package mermaid

import (
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
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
	must(g.AddNode(graph.Node{ID: "cat_infrastructure", Label: "Infrastructure", Kind: graph.KindCategory}))
	must(g.AddNode(graph.Node{ID: "shared-1a2b3c4d", Label: "Shared protection (2)", Kind: graph.KindCluster, Parent: "cat_infrastructure"}))
	must(g.AddNode(graph.Node{ID: "corpus", Label: "Training Corpus", Kind: graph.KindComponent, Parent: "cat_data", Rank: 1}))
	must(g.AddNode(graph.Node{ID: "pipeline", Label: "Data Pipeline", Kind: graph.KindComponent, Parent: "cat_data", Rank: 2}))
	must(g.AddNode(graph.Node{ID: "g1", Label: "Gateway 1", Kind: graph.KindComponent, Parent: "shared-1a2b3c4d", Rank: 1}))
	must(g.AddNode(graph.Node{ID: "g2", Label: "Gateway 2", Kind: graph.KindComponent, Parent: "shared-1a2b3c4d", Rank: 1}))
	must(g.AddNode(graph.Node{ID: "encrypt", Label: "Encrypt Data", Kind: graph.KindControl}))
	must(g.AddNode(graph.Node{ID: "theft", Label: "Data Theft", Kind: graph.KindRisk}))

	must(g.AddEdge(graph.Edge{From: "corpus", To: "pipeline", Style: graph.StyleDefault}))
	must(g.AddEdge(graph.Edge{From: "encrypt", To: "cat_data", Style: 0}))
	must(g.AddEdge(graph.Edge{From: "encrypt", To: "shared-1a2b3c4d", Style: 1}))
	must(g.AddEdge(graph.Edge{From: "encrypt", To: "g1", Style: 2}))
	must(g.AddEdge(graph.Edge{From: "theft", To: "encrypt", Style: graph.StyleDefault}))
	return g
}

func TestRenderHeader(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{View: "controls"})

	lines := strings.Split(out, "\n")
	if got, want := lines[0], `%%{init: {"flowchart": {"nodeSpacing": 60, "rankSpacing": 60}}}%%`; got != want {
		t.Errorf("line 1 = %q, want %q", got, want)
	}
	if got, want := lines[1], "flowchart LR"; got != want {
		t.Errorf("line 2 = %q, want %q", got, want)
	}
}

func TestRenderShapes(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	for _, want := range []string{
		`corpus["Training Corpus"]`,
		`encrypt(["Encrypt Data"])`,
		`theft{{"Data Theft"}}`,
		`subgraph cat_data["Data"]`,
		`subgraph shared-1a2b3c4d["Shared protection (2)"]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderNesting(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	// The cluster subgraph opens inside the infrastructure subgraph and
	// closes before it.
	catAt := strings.Index(out, `subgraph cat_infrastructure`)
	clusterAt := strings.Index(out, `subgraph shared-1a2b3c4d`)
	memberAt := strings.Index(out, `g1["Gateway 1"]`)
	if catAt == -1 || clusterAt == -1 || memberAt == -1 {
		t.Fatalf("expected subgraphs missing:\n%s", out)
	}
	if !(catAt < clusterAt && clusterAt < memberAt) {
		t.Errorf("nesting order wrong: category at %d, cluster at %d, member at %d", catAt, clusterAt, memberAt)
	}
}

func TestRenderClassDirectives(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{})

	for _, want := range []string{
		"classDef component fill:#e8f0fe,stroke:#5f6368",
		"class corpus,pipeline,g1,g2 component",
		"class encrypt control",
		"class theft risk",
		"class cat_data,cat_infrastructure category",
		"class shared-1a2b3c4d cluster",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLinkStyles(t *testing.T) {
	cfg := styles.Default()
	out := Render(testGraph(t), cfg, Options{})

	// Edges 1-3 carry palette styles; edges 0 and 4 are default and get
	// no linkStyle line.
	for _, want := range []string{
		"linkStyle 1 stroke:#1a73e8,stroke-width:2px\n",
		"linkStyle 2 stroke:#188038,stroke-width:2px,stroke-dasharray:6 3\n",
		"linkStyle 3 stroke:#d93025,stroke-width:2px,stroke-dasharray:2 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got, want := strings.Count(out, "linkStyle"), 3; got != want {
		t.Errorf("linkStyle count = %d, want %d", got, want)
	}
}

func TestRenderDebugRanks(t *testing.T) {
	out := Render(testGraph(t), styles.Default(), Options{DebugRanks: true})

	if !strings.Contains(out, `corpus["Training Corpus [r1]"]`) {
		t.Errorf("debug output missing rank annotation:\n%s", out)
	}
	if !strings.Contains(out, `pipeline["Data Pipeline [r2]"]`) {
		t.Errorf("debug output missing rank annotation:\n%s", out)
	}
	if strings.Contains(out, `subgraph cat_data["Data [r`) {
		t.Errorf("containers must not carry rank annotations:\n%s", out)
	}
}

func TestRenderEscapesQuotes(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "x", Label: `say "hi"`, Kind: graph.KindComponent}); err != nil {
		t.Fatal(err)
	}

	out := Render(g, styles.Default(), Options{})
	if !strings.Contains(out, `x["say #quot;hi#quot;"]`) {
		t.Errorf("quotes not escaped:\n%s", out)
	}

	parsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	n, _ := parsed.Node("x")
	if got, want := n.Label, `say "hi"`; got != want {
		t.Errorf("parsed label = %q, want %q", got, want)
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := Render(testGraph(t), styles.Default(), Options{})
	b := Render(testGraph(t), styles.Default(), Options{})
	if a != b {
		t.Error("two renders of the same graph differ")
	}
}

func edgePairs(g *graph.Graph) [][2]string {
	var out [][2]string
	for _, e := range g.Edges() {
		out = append(out, [2]string{e.From, e.To})
	}
	return out
}

type nodeShape struct {
	Label  string
	Kind   graph.NodeKind
	Parent string
}

func nodeShapes(g *graph.Graph) map[string]nodeShape {
	out := make(map[string]nodeShape, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = nodeShape{Label: n.Label, Kind: n.Kind, Parent: n.Parent}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	g := testGraph(t)
	out := Render(g, styles.Default(), Options{})

	parsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse() error = %v\ninput:\n%s", err, out)
	}

	if got, want := nodeShapes(parsed), nodeShapes(g); !reflect.DeepEqual(got, want) {
		t.Errorf("round-trip nodes = %v, want %v", got, want)
	}
	if got, want := edgePairs(parsed), edgePairs(g); !reflect.DeepEqual(got, want) {
		t.Errorf("round-trip edges = %v, want %v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"garbage line", "flowchart TB\n  what is this\n"},
		{"end without subgraph", "flowchart TB\n  end\n"},
		{"unclosed subgraph", "flowchart TB\n  subgraph cat_data[\"Data\"]\n    a[\"A\"]\n"},
		{"missing header", `a["A"]` + "\n"},
		{"duplicate node", "flowchart TB\n  a[\"A\"]\n  a[\"A\"]\n"},
		{"edge to unknown node", "flowchart TB\n  a[\"A\"]\n  a --> b\n"},
		{"unknown class", "flowchart TB\n  a[\"A\"]\n  class a tower\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) = nil error, want error", tt.input)
			}
			if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want INVALID_FORMAT", apperrors.GetCode(err))
			}
		})
	}
}

func TestParseIgnoresStyling(t *testing.T) {
	input := strings.Join([]string{
		`%%{init: {"flowchart": {"nodeSpacing": 40, "rankSpacing": 40}}}%%`,
		"flowchart TB",
		`  a["A"]`,
		`  b["B"]`,
		"  a --> b",
		"  classDef component fill:#e8f0fe,stroke:#5f6368",
		"  class a,b component",
		"  linkStyle 0 stroke:#1a73e8,stroke-width:2px",
		"",
	}, "\n")

	g, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := g.NodeCount(), 2; got != want {
		t.Errorf("NodeCount() = %d, want %d", got, want)
	}
	if got := g.Edges(); len(got) != 1 || got[0].Style != graph.StyleDefault {
		t.Errorf("Edges() = %v, want one default-styled edge", got)
	}
}
