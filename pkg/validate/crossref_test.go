package validate

import (
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

func TestCrossReferencesMirroredMapping(t *testing.T) {
	snap := mustSnapshot(t, nil,
		[]*taxonomy.Control{
			{ID: "c1", Risks: taxonomy.Explicit("r1")},
		},
		[]*taxonomy.Risk{
			{ID: "r1", Controls: []string{"c1"}},
		},
		nil, nil,
	)

	if ds := CrossReferences(snap); len(ds) != 0 {
		t.Errorf("CrossReferences() returned %d diagnostics, want 0: %v", len(ds), ds)
	}
}

func TestCrossReferencesOneSidedControl(t *testing.T) {
	snap := mustSnapshot(t, nil,
		[]*taxonomy.Control{
			{ID: "c1", Risks: taxonomy.Explicit("r1")},
		},
		[]*taxonomy.Risk{
			{ID: "r1"},
		},
		nil, nil,
	)

	ds := CrossReferences(snap)
	if len(ds) != 1 {
		t.Fatalf("CrossReferences() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	d := ds[0]
	if d.Kind != KindCrossReference {
		t.Errorf("Kind = %q, want %q", d.Kind, KindCrossReference)
	}
	if d.Entity != "c1" || d.Target != "r1" {
		t.Errorf("Entity/Target = %q/%q, want c1/r1", d.Entity, d.Target)
	}
}

func TestCrossReferencesOneSidedRisk(t *testing.T) {
	snap := mustSnapshot(t, nil,
		[]*taxonomy.Control{
			{ID: "c1", Risks: taxonomy.Explicit("r2")},
		},
		[]*taxonomy.Risk{
			{ID: "r1", Controls: []string{"c1"}},
			{ID: "r2", Controls: []string{"c1"}},
		},
		nil, nil,
	)

	ds := CrossReferences(snap)
	if len(ds) != 1 {
		t.Fatalf("CrossReferences() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	if ds[0].Entity != "r1" || ds[0].Target != "c1" {
		t.Errorf("Entity/Target = %q/%q, want r1/c1", ds[0].Entity, ds[0].Target)
	}
}

// Controls covering every risk implicitly are excluded from the mirror
// requirement: no risk has to list them, and none may.
func TestCrossReferencesAllSentinelExcluded(t *testing.T) {
	t.Run("unlisted everywhere is clean", func(t *testing.T) {
		snap := mustSnapshot(t, nil,
			[]*taxonomy.Control{
				{ID: "broad", Risks: taxonomy.All()},
			},
			[]*taxonomy.Risk{
				{ID: "r1"},
				{ID: "r2"},
			},
			nil, nil,
		)
		if ds := CrossReferences(snap); len(ds) != 0 {
			t.Errorf("CrossReferences() returned %d diagnostics, want 0: %v", len(ds), ds)
		}
	})

	t.Run("explicit mirror of implicit coverage is flagged", func(t *testing.T) {
		snap := mustSnapshot(t, nil,
			[]*taxonomy.Control{
				{ID: "broad", Risks: taxonomy.All()},
			},
			[]*taxonomy.Risk{
				{ID: "r1", Controls: []string{"broad"}},
			},
			nil, nil,
		)
		ds := CrossReferences(snap)
		if len(ds) != 1 {
			t.Fatalf("CrossReferences() returned %d diagnostics, want 1: %v", len(ds), ds)
		}
		if ds[0].Entity != "r1" || ds[0].Target != "broad" {
			t.Errorf("Entity/Target = %q/%q, want r1/broad", ds[0].Entity, ds[0].Target)
		}
		if !strings.Contains(ds[0].Message, "implicitly") {
			t.Errorf("Message = %q, want mention of implicit coverage", ds[0].Message)
		}
	})
}

func TestCrossReferencesRiskListsNoneControl(t *testing.T) {
	snap := mustSnapshot(t, nil,
		[]*taxonomy.Control{
			{ID: "paperwork", Risks: taxonomy.None()},
		},
		[]*taxonomy.Risk{
			{ID: "r1", Controls: []string{"paperwork"}},
		},
		nil, nil,
	)

	ds := CrossReferences(snap)
	if len(ds) != 1 {
		t.Fatalf("CrossReferences() returned %d diagnostics, want 1: %v", len(ds), ds)
	}
	if !strings.Contains(ds[0].Message, "addresses no risks") {
		t.Errorf("Message = %q, want mention that the control addresses no risks", ds[0].Message)
	}
}

func TestCrossReferencesUnknownIDs(t *testing.T) {
	snap := mustSnapshot(t,
		[]*taxonomy.Component{
			{ID: "comp", Category: taxonomy.CategoryData,
				Edges: taxonomy.Edges{To: []string{"comp2"}}},
			{ID: "comp2", Category: taxonomy.CategoryData,
				Edges: taxonomy.Edges{From: []string{"comp"}}},
		},
		[]*taxonomy.Control{
			{ID: "c1",
				Components: taxonomy.Explicit("comp", "ghost-comp"),
				Risks:      taxonomy.Explicit("ghost-risk"),
				Personas:   []string{"ghost-persona"},
				Frameworks: []taxonomy.FrameworkRef{{Framework: "ghost-fw", Section: "1"}}},
		},
		[]*taxonomy.Risk{
			{ID: "r1", Controls: []string{"ghost-control"}},
		},
		nil, nil,
	)

	ds := CrossReferences(snap)
	if len(ds) != 5 {
		t.Fatalf("CrossReferences() returned %d diagnostics, want 5: %v", len(ds), ds)
	}
	for _, d := range ds {
		if d.Kind != KindCrossReference {
			t.Errorf("Kind = %q, want %q for %v", d.Kind, KindCrossReference, d)
		}
	}

	targets := make(map[string]bool)
	for _, d := range ds {
		targets[d.Target] = true
	}
	for _, want := range []string{"ghost-comp", "ghost-risk", "ghost-persona", "ghost-fw", "ghost-control"} {
		if !targets[want] {
			t.Errorf("no diagnostic targeting %q", want)
		}
	}
}

func TestCrossReferencesApplicability(t *testing.T) {
	frameworks := []*taxonomy.Framework{
		{ID: "atlas", Title: "MITRE ATLAS",
			ApplicableTo: []taxonomy.EntityType{taxonomy.EntityRisks}},
	}

	t.Run("risk citing risk framework is clean", func(t *testing.T) {
		snap := mustSnapshot(t, nil, nil,
			[]*taxonomy.Risk{
				{ID: "r1", Frameworks: []taxonomy.FrameworkRef{{Framework: "atlas", Section: "AML.T0051"}}},
			},
			frameworks, nil,
		)
		if ds := CrossReferences(snap); len(ds) != 0 {
			t.Errorf("CrossReferences() returned %d diagnostics, want 0: %v", len(ds), ds)
		}
	})

	t.Run("control citing risk framework is flagged once", func(t *testing.T) {
		snap := mustSnapshot(t, nil,
			[]*taxonomy.Control{
				{ID: "c1", Frameworks: []taxonomy.FrameworkRef{{Framework: "atlas", Section: "AML.T0051"}}},
			},
			nil, frameworks, nil,
		)

		ds := CrossReferences(snap)
		if len(ds) != 1 {
			t.Fatalf("CrossReferences() returned %d diagnostics, want 1: %v", len(ds), ds)
		}
		d := ds[0]
		if d.Kind != KindApplicability {
			t.Errorf("Kind = %q, want %q", d.Kind, KindApplicability)
		}
		if d.Entity != "c1" || d.Target != "atlas" {
			t.Errorf("Entity/Target = %q/%q, want c1/atlas", d.Entity, d.Target)
		}
		// The message names the framework's actual applicability for context.
		if !strings.Contains(d.Message, "risks") {
			t.Errorf("Message = %q, want the framework's applicableTo set", d.Message)
		}
	})
}

func TestAllCombinesValidators(t *testing.T) {
	snap := mustSnapshot(t,
		[]*taxonomy.Component{
			{ID: "a", Category: taxonomy.CategoryData,
				Edges: taxonomy.Edges{To: []string{"b"}}},
			{ID: "b", Category: taxonomy.CategoryData},
		},
		[]*taxonomy.Control{
			{ID: "c1", Risks: taxonomy.Explicit("ghost")},
		},
		nil, nil, nil,
	)

	ds := All(snap, Options{})
	if got := ds.Count(KindStructural); got != 1 {
		t.Errorf("Count(structural) = %d, want 1", got)
	}
	if got := ds.Count(KindCrossReference); got != 1 {
		t.Errorf("Count(cross reference) = %d, want 1", got)
	}
	// Edge diagnostics come first.
	if ds[0].Kind != KindStructural {
		t.Errorf("ds[0].Kind = %q, want %q", ds[0].Kind, KindStructural)
	}
	if !ds.Fatal() {
		t.Error("Fatal() = false, want true")
	}
}
