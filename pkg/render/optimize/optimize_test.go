package optimize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

func snapshotOf(t *testing.T, components []*taxonomy.Component, controls []*taxonomy.Control) *taxonomy.Snapshot {
	t.Helper()
	snap, err := taxonomy.NewSnapshot(components, controls, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func dataComponents(ids ...string) []*taxonomy.Component {
	out := make([]*taxonomy.Component, len(ids))
	for i, id := range ids {
		out[i] = &taxonomy.Component{ID: id, Category: taxonomy.CategoryData}
	}
	return out
}

func TestCollapseFullCategory(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3", "c4", "c5"),
		[]*taxonomy.Control{
			{ID: "broad", Components: taxonomy.All()},
		},
	)

	res := Collapse(snap)
	if len(res.Edges) != 1 {
		t.Fatalf("Edges len = %d, want 1: %v", len(res.Edges), res.Edges)
	}
	e := res.Edges[0]
	if e.Kind != TargetCategory {
		t.Errorf("Kind = %v, want TargetCategory", e.Kind)
	}
	if e.Target != string(taxonomy.CategoryData) {
		t.Errorf("Target = %q, want %q", e.Target, taxonomy.CategoryData)
	}
	if e.Style != StyleDefault {
		t.Errorf("Style = %d, want StyleDefault", e.Style)
	}
}

func TestCollapsePartialCategoryKeepsComponents(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3", "c4", "c5"),
		[]*taxonomy.Control{
			{ID: "partial", Components: taxonomy.Explicit("c1", "c2", "c3", "c4")},
		},
	)

	res := Collapse(snap)
	if len(res.Edges) != 4 {
		t.Fatalf("Edges len = %d, want 4: %v", len(res.Edges), res.Edges)
	}
	for _, e := range res.Edges {
		if e.Kind != TargetComponent {
			t.Errorf("Kind = %v, want TargetComponent for %v", e.Kind, e)
		}
	}
}

func TestCollapseMultipleCategories(t *testing.T) {
	components := []*taxonomy.Component{
		{ID: "d1", Category: taxonomy.CategoryData},
		{ID: "d2", Category: taxonomy.CategoryData},
		{ID: "m1", Category: taxonomy.CategoryModel},
		{ID: "a1", Category: taxonomy.CategoryApplication},
	}
	snap := snapshotOf(t, components,
		[]*taxonomy.Control{
			{ID: "broad", Components: taxonomy.All()},
		},
	)

	res := Collapse(snap)
	if len(res.Edges) != 3 {
		t.Fatalf("Edges len = %d, want 3: %v", len(res.Edges), res.Edges)
	}
	// Canonical category order: data, model, application.
	wantTargets := []string{"data", "model", "application"}
	var got []string
	for _, e := range res.Edges {
		if e.Kind != TargetCategory {
			t.Errorf("Kind = %v, want TargetCategory for %v", e.Kind, e)
		}
		got = append(got, e.Target)
	}
	if !reflect.DeepEqual(got, wantTargets) {
		t.Errorf("targets = %v, want %v", got, wantTargets)
	}
}

func TestCollapseClustersSharedProtection(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3"),
		[]*taxonomy.Control{
			{ID: "ctl-a", Components: taxonomy.Explicit("c1", "c2")},
			{ID: "ctl-b", Components: taxonomy.Explicit("c1", "c2")},
		},
	)

	res := Collapse(snap)
	if len(res.Clusters) != 1 {
		t.Fatalf("Clusters len = %d, want 1: %+v", len(res.Clusters), res.Clusters)
	}
	cl := res.Clusters[0]
	if !reflect.DeepEqual(cl.Members, []string{"c1", "c2"}) {
		t.Errorf("Members = %v, want [c1 c2]", cl.Members)
	}
	if !reflect.DeepEqual(cl.Controls, []string{"ctl-a", "ctl-b"}) {
		t.Errorf("Controls = %v, want [ctl-a ctl-b]", cl.Controls)
	}
	if cl.Category != taxonomy.CategoryData {
		t.Errorf("Category = %q, want data", cl.Category)
	}
	if !strings.HasPrefix(cl.ID, "shared-") {
		t.Errorf("ID = %q, want shared- prefix", cl.ID)
	}

	// Each control draws one edge to the cluster, nothing else.
	for _, ctlID := range []string{"ctl-a", "ctl-b"} {
		edges := res.ControlEdges(ctlID)
		if len(edges) != 1 {
			t.Fatalf("ControlEdges(%s) len = %d, want 1: %v", ctlID, len(edges), edges)
		}
		if edges[0].Kind != TargetCluster || edges[0].Target != cl.ID {
			t.Errorf("edge = %+v, want cluster edge to %s", edges[0], cl.ID)
		}
	}
}

func TestCollapseNoClusterForSingleControl(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3"),
		[]*taxonomy.Control{
			{ID: "only", Components: taxonomy.Explicit("c1", "c2")},
		},
	)

	res := Collapse(snap)
	if len(res.Clusters) != 0 {
		t.Errorf("Clusters len = %d, want 0: %+v", len(res.Clusters), res.Clusters)
	}
	if len(res.Edges) != 2 {
		t.Errorf("Edges len = %d, want 2", len(res.Edges))
	}
}

func TestCollapseNoClusterAcrossCategories(t *testing.T) {
	components := []*taxonomy.Component{
		{ID: "d1", Category: taxonomy.CategoryData},
		{ID: "d2", Category: taxonomy.CategoryData},
		{ID: "m1", Category: taxonomy.CategoryModel},
		{ID: "m2", Category: taxonomy.CategoryModel},
	}
	snap := snapshotOf(t, components,
		[]*taxonomy.Control{
			{ID: "ctl-a", Components: taxonomy.Explicit("d1", "m1")},
			{ID: "ctl-b", Components: taxonomy.Explicit("d1", "m1")},
		},
	)

	res := Collapse(snap)
	// d1 and m1 share a signature but sit in different categories, and
	// each category side has only one member.
	if len(res.Clusters) != 0 {
		t.Errorf("Clusters len = %d, want 0: %+v", len(res.Clusters), res.Clusters)
	}
}

func TestCollapseMultiEdgeStyling(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3", "c4", "c5"),
		[]*taxonomy.Control{
			{ID: "dense", Components: taxonomy.Explicit("c1", "c2", "c3", "c4")},
			{ID: "sparse", Components: taxonomy.Explicit("c1", "c5")},
		},
	)

	res := Collapse(snap)

	dense := res.ControlEdges("dense")
	if len(dense) != 4 {
		t.Fatalf("ControlEdges(dense) len = %d, want 4", len(dense))
	}
	for i, e := range dense {
		if want := i % PaletteSize; e.Style != want {
			t.Errorf("dense edge %d style = %d, want %d", i, e.Style, want)
		}
	}

	for _, e := range res.ControlEdges("sparse") {
		if e.Style != StyleDefault {
			t.Errorf("sparse edge style = %d, want StyleDefault", e.Style)
		}
	}
}

func TestCollapseStylingWrapsPalette(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1", "c2", "c3", "c4", "c5", "c6"),
		[]*taxonomy.Control{
			{ID: "dense", Components: taxonomy.Explicit("c1", "c2", "c3", "c4", "c5")},
		},
	)

	edges := Collapse(snap).ControlEdges("dense")
	if len(edges) != 5 {
		t.Fatalf("edges len = %d, want 5", len(edges))
	}
	if edges[4].Style != 0 {
		t.Errorf("edge 4 style = %d, want 0 (wrapped)", edges[4].Style)
	}
}

func TestCollapseSkipsUnknownComponents(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1"),
		[]*taxonomy.Control{
			{ID: "ctl", Components: taxonomy.Explicit("c1", "ghost")},
		},
	)

	res := Collapse(snap)
	// c1 is the whole data category, so the mapping collapses onto it;
	// the dangling id contributes nothing.
	if len(res.Edges) != 1 {
		t.Fatalf("Edges len = %d, want 1: %v", len(res.Edges), res.Edges)
	}
	if res.Edges[0].Kind != TargetCategory {
		t.Errorf("Kind = %v, want TargetCategory", res.Edges[0].Kind)
	}
}

func TestCollapseDeterministic(t *testing.T) {
	build := func() Result {
		snap := snapshotOf(t,
			[]*taxonomy.Component{
				{ID: "d1", Category: taxonomy.CategoryData},
				{ID: "d2", Category: taxonomy.CategoryData},
				{ID: "d3", Category: taxonomy.CategoryData},
				{ID: "m1", Category: taxonomy.CategoryModel},
			},
			[]*taxonomy.Control{
				{ID: "ctl-a", Components: taxonomy.Explicit("d1", "d2")},
				{ID: "ctl-b", Components: taxonomy.Explicit("d1", "d2")},
				{ID: "ctl-c", Components: taxonomy.All()},
			},
		)
		return Collapse(snap)
	}

	first := build()
	second := build()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Collapse not deterministic:\n%+v\n%+v", first, second)
	}
	if len(first.Clusters) != 1 {
		t.Fatalf("Clusters len = %d, want 1", len(first.Clusters))
	}
	if first.Clusters[0].ID != second.Clusters[0].ID {
		t.Errorf("cluster id not stable: %s vs %s", first.Clusters[0].ID, second.Clusters[0].ID)
	}
}

func TestCollapseNoneControlHasNoEdges(t *testing.T) {
	snap := snapshotOf(t,
		dataComponents("c1"),
		[]*taxonomy.Control{
			{ID: "paperwork", Components: taxonomy.None()},
		},
	)

	if res := Collapse(snap); len(res.Edges) != 0 {
		t.Errorf("Edges len = %d, want 0: %v", len(res.Edges), res.Edges)
	}
}
