package render

import (
	"reflect"
	"testing"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
	"github.com/riskmap/riskmap/pkg/graph"
	"github.com/riskmap/riskmap/pkg/taxonomy"
)

func testSnapshot(t *testing.T) *taxonomy.Snapshot {
	t.Helper()

	components := []*taxonomy.Component{
		{ID: "corpus", Title: "Training Corpus", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"pipeline"}}},
		{ID: "pipeline", Title: "Data Pipeline", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{From: []string{"corpus"}, To: []string{"weights"}}},
		{ID: "weights", Title: "Model Weights", Category: taxonomy.CategoryModel,
			Edges: taxonomy.Edges{From: []string{"pipeline"}, To: []string{"serving", "ghost"}}},
		{ID: "serving", Title: "Model Serving", Category: taxonomy.CategoryModel,
			Edges: taxonomy.Edges{From: []string{"weights"}}},
	}
	controls := []*taxonomy.Control{
		{ID: "encrypt-data", Title: "Encrypt Data", Components: taxonomy.Explicit("corpus", "pipeline"),
			Risks: taxonomy.Explicit("data-theft")},
		{ID: "monitor", Title: "Monitor", Components: taxonomy.Explicit("weights"),
			Risks: taxonomy.All()},
	}
	risks := []*taxonomy.Risk{
		{ID: "data-theft", Title: "Data Theft", Controls: []string{"encrypt-data"}},
		{ID: "tamper", Title: "Model Tampering"},
	}

	snap, err := taxonomy.NewSnapshot(components, controls, risks, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func TestParseView(t *testing.T) {
	tests := []struct {
		input   string
		want    View
		wantErr bool
	}{
		{"components", ViewComponents, false},
		{"controls", ViewControls, false},
		{"risks", ViewRisks, false},
		{"tower", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseView(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseView(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.Is(err, apperrors.ErrCodeInvalidView) {
					t.Errorf("ParseView(%q) error code = %v, want INVALID_VIEW", tt.input, apperrors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseView(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildComponentsView(t *testing.T) {
	g, err := Build(testSnapshot(t), ViewComponents, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantOrder := []string{"cat_data", "cat_model", "corpus", "pipeline", "weights", "serving"}
	if got := graph.NodeIDs(g.Nodes()); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("node order = %v, want %v", got, wantOrder)
	}

	cat, ok := g.Node("cat_data")
	if !ok || cat.Kind != graph.KindCategory {
		t.Fatalf("cat_data node = %+v, ok = %v, want a category node", cat, ok)
	}
	if cat.Label != taxonomy.CategoryData.Title() {
		t.Errorf("cat_data label = %q, want %q", cat.Label, taxonomy.CategoryData.Title())
	}

	corpus, _ := g.Node("corpus")
	if got, want := corpus.Parent, "cat_data"; got != want {
		t.Errorf("corpus parent = %q, want %q", got, want)
	}
	weights, _ := g.Node("weights")
	if got, want := weights.Parent, "cat_model"; got != want {
		t.Errorf("weights parent = %q, want %q", got, want)
	}

	wantEdges := []graph.Edge{
		{From: "corpus", To: "pipeline", Style: graph.StyleDefault},
		{From: "pipeline", To: "weights", Style: graph.StyleDefault},
		{From: "weights", To: "serving", Style: graph.StyleDefault},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v; unknown targets must be dropped", got, wantEdges)
	}
}

func TestBuildComponentsViewRanks(t *testing.T) {
	g, err := Build(testSnapshot(t), ViewComponents, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantRanks := map[string]int{"corpus": 1, "pipeline": 2, "weights": 3, "serving": 4}
	for id, want := range wantRanks {
		n, _ := g.Node(id)
		if n.Rank != want {
			t.Errorf("rank(%s) = %d, want %d", id, n.Rank, want)
		}
	}
}

func TestBuildRootOverride(t *testing.T) {
	g, err := Build(testSnapshot(t), ViewComponents, Options{RootID: "pipeline"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	pipeline, _ := g.Node("pipeline")
	if got, want := pipeline.Rank, 1; got != want {
		t.Errorf("rank(pipeline) = %d, want %d", got, want)
	}

	if _, err := Build(testSnapshot(t), ViewComponents, Options{RootID: "nope"}); err == nil {
		t.Error("Build() with unknown root = nil error, want error")
	}
}

func TestBuildControlsView(t *testing.T) {
	g, err := Build(testSnapshot(t), ViewControls, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, id := range []string{"encrypt-data", "monitor"} {
		n, ok := g.Node(id)
		if !ok {
			t.Fatalf("control node %q missing", id)
		}
		if n.Kind != graph.KindControl {
			t.Errorf("node %q kind = %v, want KindControl", id, n.Kind)
		}
	}

	// encrypt-data covers the whole data category, so its mapping is a
	// single edge to the container; monitor keeps one component edge.
	wantEdges := []graph.Edge{
		{From: "encrypt-data", To: "cat_data", Style: graph.StyleDefault},
		{From: "monitor", To: "weights", Style: graph.StyleDefault},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
}

func TestBuildControlsViewClusters(t *testing.T) {
	components := []*taxonomy.Component{
		{ID: "g1", Title: "Gateway 1", Category: taxonomy.CategoryInfrastructure},
		{ID: "g2", Title: "Gateway 2", Category: taxonomy.CategoryInfrastructure},
		{ID: "g3", Title: "Gateway 3", Category: taxonomy.CategoryInfrastructure},
	}
	controls := []*taxonomy.Control{
		{ID: "harden", Title: "Harden", Components: taxonomy.Explicit("g1", "g2")},
		{ID: "audit", Title: "Audit", Components: taxonomy.Explicit("g1", "g2")},
	}
	snap, err := taxonomy.NewSnapshot(components, controls, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}

	g, err := Build(snap, ViewControls, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var cluster *graph.Node
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindCluster {
			cluster = n
			break
		}
	}
	if cluster == nil {
		t.Fatal("no cluster node in controls view")
	}
	if got, want := cluster.Parent, "cat_infrastructure"; got != want {
		t.Errorf("cluster parent = %q, want %q", got, want)
	}

	for _, id := range []string{"g1", "g2"} {
		n, _ := g.Node(id)
		if got, want := n.Parent, cluster.ID; got != want {
			t.Errorf("%s parent = %q, want cluster %q", id, got, want)
		}
	}
	g3, _ := g.Node("g3")
	if got, want := g3.Parent, "cat_infrastructure"; got != want {
		t.Errorf("g3 parent = %q, want %q", got, want)
	}

	wantEdges := []graph.Edge{
		{From: "harden", To: cluster.ID, Style: graph.StyleDefault},
		{From: "audit", To: cluster.ID, Style: graph.StyleDefault},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
}

func TestBuildRisksView(t *testing.T) {
	g, err := Build(testSnapshot(t), ViewRisks, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, id := range []string{"data-theft", "tamper"} {
		n, ok := g.Node(id)
		if !ok {
			t.Fatalf("risk node %q missing", id)
		}
		if n.Kind != graph.KindRisk {
			t.Errorf("node %q kind = %v, want KindRisk", id, n.Kind)
		}
	}

	// Control mapping first, then coverage: monitor addresses all risks,
	// so both risks point at it without mirrored entries.
	wantEdges := []graph.Edge{
		{From: "encrypt-data", To: "cat_data", Style: graph.StyleDefault},
		{From: "monitor", To: "weights", Style: graph.StyleDefault},
		{From: "data-theft", To: "encrypt-data", Style: graph.StyleDefault},
		{From: "data-theft", To: "monitor", Style: graph.StyleDefault},
		{From: "tamper", To: "monitor", Style: graph.StyleDefault},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	snap, err := taxonomy.NewSnapshot(nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}

	for _, view := range Views {
		g, err := Build(snap, view, Options{})
		if err != nil {
			t.Errorf("Build(%s) on empty snapshot error = %v", view, err)
			continue
		}
		if g.NodeCount() != 0 {
			t.Errorf("Build(%s) node count = %d, want 0", view, g.NodeCount())
		}
	}
}

func TestBuildUnknownView(t *testing.T) {
	_, err := Build(testSnapshot(t), View("tower"), Options{})
	if err == nil {
		t.Fatal("Build(unknown view) = nil error, want error")
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidView) {
		t.Errorf("error code = %v, want INVALID_VIEW", apperrors.GetCode(err))
	}
}

func TestBuildDeterministic(t *testing.T) {
	for _, view := range Views {
		a, err := Build(testSnapshot(t), view, Options{})
		if err != nil {
			t.Fatalf("Build(%s) error = %v", view, err)
		}
		b, err := Build(testSnapshot(t), view, Options{})
		if err != nil {
			t.Fatalf("Build(%s) error = %v", view, err)
		}

		if !reflect.DeepEqual(graph.NodeIDs(a.Nodes()), graph.NodeIDs(b.Nodes())) {
			t.Errorf("view %s: node order differs between runs", view)
		}
		if !reflect.DeepEqual(a.Edges(), b.Edges()) {
			t.Errorf("view %s: edges differ between runs", view)
		}
	}
}
