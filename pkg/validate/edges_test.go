package validate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

func mustSnapshot(t *testing.T, components []*taxonomy.Component, controls []*taxonomy.Control, risks []*taxonomy.Risk, frameworks []*taxonomy.Framework, personas []*taxonomy.Persona) *taxonomy.Snapshot {
	t.Helper()
	snap, err := taxonomy.NewSnapshot(components, controls, risks, frameworks, personas)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func componentSnapshot(t *testing.T, components ...*taxonomy.Component) *taxonomy.Snapshot {
	t.Helper()
	return mustSnapshot(t, components, nil, nil, nil, nil)
}

func TestEdgesMirroredPair(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"b"}}},
		&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{From: []string{"a"}}},
	)

	if ds := Edges(snap, Options{}); len(ds) != 0 {
		t.Errorf("Edges() returned %d diagnostics, want 0: %v", len(ds), ds)
	}
}

func TestEdgesMissingIncoming(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"b"}}},
		&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData},
	)

	ds := Edges(snap, Options{})
	if len(ds) != 1 {
		t.Fatalf("Edges() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	d := ds[0]
	if d.Kind != KindStructural {
		t.Errorf("Kind = %q, want %q", d.Kind, KindStructural)
	}
	if d.Entity != "a" || d.Target != "b" {
		t.Errorf("Entity/Target = %q/%q, want a/b", d.Entity, d.Target)
	}
	if !strings.Contains(d.Message, "incoming") {
		t.Errorf("Message = %q, want mention of the missing incoming edge", d.Message)
	}
}

func TestEdgesMissingOutgoing(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData},
		&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{From: []string{"a"}}},
	)

	ds := Edges(snap, Options{})
	if len(ds) != 1 {
		t.Fatalf("Edges() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	if ds[0].Entity != "b" || ds[0].Target != "a" {
		t.Errorf("Entity/Target = %q/%q, want b/a", ds[0].Entity, ds[0].Target)
	}
	if !strings.Contains(ds[0].Message, "outgoing") {
		t.Errorf("Message = %q, want mention of the missing outgoing edge", ds[0].Message)
	}
}

func TestEdgesUnknownTarget(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"ghost"}}},
	)

	ds := Edges(snap, Options{})
	if len(ds) != 1 {
		t.Fatalf("Edges() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	if ds[0].Target != "ghost" {
		t.Errorf("Target = %q, want %q", ds[0].Target, "ghost")
	}
	if !strings.Contains(ds[0].Message, "unknown") {
		t.Errorf("Message = %q, want mention of unknown component", ds[0].Message)
	}
}

func TestEdgesIsolatedComponent(t *testing.T) {
	components := []*taxonomy.Component{
		{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"b"}}},
		{ID: "b", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{From: []string{"a"}}},
		{ID: "lonely", Category: taxonomy.CategoryModel},
	}

	t.Run("flagged by default", func(t *testing.T) {
		ds := Edges(componentSnapshot(t, components...), Options{})
		if len(ds) != 1 {
			t.Fatalf("Edges() returned %d diagnostics, want 1: %v", len(ds), ds)
		}
		if ds[0].Entity != "lonely" {
			t.Errorf("Entity = %q, want %q", ds[0].Entity, "lonely")
		}
	})

	t.Run("suppressed by allow isolated", func(t *testing.T) {
		ds := Edges(componentSnapshot(t, components...), Options{AllowIsolated: true})
		if len(ds) != 0 {
			t.Errorf("Edges() returned %d diagnostics, want 0: %v", len(ds), ds)
		}
	})
}

// A component that declares nothing but is the target of someone else's
// edge is a mirroring problem, not an isolation problem. Only the
// missing mirror may be reported.
func TestEdgesReferencedComponentNotIsolated(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"b"}}},
		&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData},
	)

	ds := Edges(snap, Options{})
	for _, d := range ds {
		if strings.Contains(d.Message, "isolated") || strings.Contains(d.Message, "no edges") {
			t.Errorf("unexpected isolation diagnostic: %v", d)
		}
	}
	if len(ds) != 1 {
		t.Errorf("Edges() returned %d diagnostics, want 1", len(ds))
	}
}

func TestEdgesCollectsAllViolations(t *testing.T) {
	snap := componentSnapshot(t,
		&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{To: []string{"b", "ghost"}}},
		&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData,
			Edges: taxonomy.Edges{From: []string{"c"}}},
		&taxonomy.Component{ID: "c", Category: taxonomy.CategoryData},
	)

	ds := Edges(snap, Options{})
	// a->b missing incoming, a->ghost unknown, b<-c missing outgoing.
	if len(ds) != 3 {
		t.Fatalf("Edges() returned %d diagnostics, want 3: %v", len(ds), ds)
	}
}

func TestEdgesDeterministicOrder(t *testing.T) {
	build := func() *taxonomy.Snapshot {
		return componentSnapshot(t,
			&taxonomy.Component{ID: "a", Category: taxonomy.CategoryData,
				Edges: taxonomy.Edges{To: []string{"b", "ghost"}}},
			&taxonomy.Component{ID: "b", Category: taxonomy.CategoryData},
			&taxonomy.Component{ID: "lonely", Category: taxonomy.CategoryModel},
		)
	}

	first := Edges(build(), Options{})
	second := Edges(build(), Options{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("diagnostic order not deterministic:\n%v\n%v", first, second)
	}
}

func TestDiagnosticsFatal(t *testing.T) {
	tests := []struct {
		name string
		ds   Diagnostics
		want bool
	}{
		{"empty", nil, false},
		{"structural", Diagnostics{{Kind: KindStructural}}, true},
		{"cross reference", Diagnostics{{Kind: KindCrossReference}}, true},
		{"applicability", Diagnostics{{Kind: KindApplicability}}, true},
		{"config fallback only", Diagnostics{{Kind: KindConfigFallback}}, false},
		{"mixed", Diagnostics{{Kind: KindConfigFallback}, {Kind: KindStructural}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ds.Fatal(); got != tt.want {
				t.Errorf("Fatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiagnosticsFilterAndCount(t *testing.T) {
	ds := Diagnostics{
		{Kind: KindStructural, Entity: "a"},
		{Kind: KindConfigFallback, Entity: "colors.risk"},
		{Kind: KindStructural, Entity: "b"},
	}

	if got := ds.Count(KindStructural); got != 2 {
		t.Errorf("Count(structural) = %d, want 2", got)
	}
	if got := ds.FatalCount(); got != 2 {
		t.Errorf("FatalCount() = %d, want 2", got)
	}

	filtered := ds.Filter(KindStructural)
	if len(filtered) != 2 || filtered[0].Entity != "a" || filtered[1].Entity != "b" {
		t.Errorf("Filter(structural) = %v, want [a b]", filtered)
	}
}
