package taxonomy

import (
	"errors"
	"reflect"
	"testing"
)

// testSnapshot builds a small but structurally complete snapshot: four
// categories, a cycle through the application layer, and controls using
// every sentinel form.
func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	components := []*Component{
		{ID: "data-sources", Title: "Data Sources", Category: CategoryData,
			Edges: Edges{To: []string{"training-data"}}},
		{ID: "training-data", Title: "Training Data", Category: CategoryData,
			Edges: Edges{To: []string{"model-training"}, From: []string{"data-sources"}}},
		{ID: "model-training", Title: "Model Training", Category: CategoryInfrastructure,
			Edges: Edges{To: []string{"the-model"}, From: []string{"training-data"}}},
		{ID: "the-model", Title: "The Model", Category: CategoryModel,
			Edges: Edges{To: []string{"output-handling"}, From: []string{"model-training", "input-handling"}}},
		{ID: "input-handling", Title: "Input Handling", Category: CategoryModel,
			Edges: Edges{To: []string{"the-model"}, From: []string{"application"}}},
		{ID: "output-handling", Title: "Output Handling", Category: CategoryModel,
			Edges: Edges{To: []string{"application"}, From: []string{"the-model"}}},
		{ID: "application", Title: "Application", Category: CategoryApplication,
			Edges: Edges{To: []string{"input-handling"}, From: []string{"output-handling"}}},
	}
	controls := []*Control{
		{ID: "input-validation", Title: "Input Validation",
			Components: Explicit("input-handling"),
			Risks:      Explicit("prompt-injection")},
		{ID: "adversarial-testing", Title: "Adversarial Testing",
			Components: All(),
			Risks:      All()},
		{ID: "data-management", Title: "Training Data Management",
			Components: Explicit("data-sources", "training-data"),
			Risks:      Explicit("data-poisoning"),
			Personas:   []string{"model-creator"}},
	}
	risks := []*Risk{
		{ID: "prompt-injection", Title: "Prompt Injection",
			Controls: []string{"input-validation"}},
		{ID: "data-poisoning", Title: "Data Poisoning",
			Controls: []string{"data-management"}},
	}
	frameworks := []*Framework{
		{ID: "mitre-atlas", Title: "MITRE ATLAS", URL: "https://atlas.mitre.org",
			ApplicableTo: []EntityType{EntityRisks}},
	}
	personas := []*Persona{
		{ID: "model-creator", Title: "Model Creator"},
	}

	snap, err := NewSnapshot(components, controls, risks, frameworks, personas)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func TestSnapshotLookups(t *testing.T) {
	snap := testSnapshot(t)

	c, ok := snap.Component("the-model")
	if !ok {
		t.Fatal("Component(the-model) not found")
	}
	if c.Category != CategoryModel {
		t.Errorf("Category = %q, want %q", c.Category, CategoryModel)
	}

	if _, ok := snap.Component("ghost"); ok {
		t.Error("Component(ghost) found, want miss")
	}
	if _, ok := snap.Control("input-validation"); !ok {
		t.Error("Control(input-validation) not found")
	}
	if _, ok := snap.Risk("data-poisoning"); !ok {
		t.Error("Risk(data-poisoning) not found")
	}
	if _, ok := snap.Framework("mitre-atlas"); !ok {
		t.Error("Framework(mitre-atlas) not found")
	}
	if _, ok := snap.Persona("model-creator"); !ok {
		t.Error("Persona(model-creator) not found")
	}
}

func TestSnapshotDeclarationOrder(t *testing.T) {
	snap := testSnapshot(t)

	want := []string{
		"data-sources", "training-data", "model-training",
		"the-model", "input-handling", "output-handling", "application",
	}
	if got := snap.ComponentIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("ComponentIDs() = %v, want %v", got, want)
	}

	wantData := []string{"data-sources", "training-data"}
	var got []string
	for _, c := range snap.ComponentsInCategory(CategoryData) {
		got = append(got, c.ID)
	}
	if !reflect.DeepEqual(got, wantData) {
		t.Errorf("ComponentsInCategory(data) = %v, want %v", got, wantData)
	}
}

func TestSnapshotResolvedSentinels(t *testing.T) {
	snap := testSnapshot(t)

	// All expands to every component in declaration order.
	all := snap.ResolvedComponents("adversarial-testing")
	if len(all) != len(snap.Components) {
		t.Errorf("ResolvedComponents(adversarial-testing) len = %d, want %d", len(all), len(snap.Components))
	}
	if all[0] != "data-sources" {
		t.Errorf("first resolved id = %q, want %q", all[0], "data-sources")
	}

	// Explicit lists are kept verbatim.
	want := []string{"data-sources", "training-data"}
	if got := snap.ResolvedComponents("data-management"); !reflect.DeepEqual(got, want) {
		t.Errorf("ResolvedComponents(data-management) = %v, want %v", got, want)
	}

	if got := snap.ResolvedRisks("adversarial-testing"); len(got) != 2 {
		t.Errorf("ResolvedRisks(adversarial-testing) len = %d, want 2", len(got))
	}
}

func TestSnapshotReferenced(t *testing.T) {
	components := []*Component{
		{ID: "a", Category: CategoryData, Edges: Edges{To: []string{"b"}}},
		{ID: "b", Category: CategoryData},
		{ID: "c", Category: CategoryData},
	}
	snap, err := NewSnapshot(components, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}

	if !snap.Referenced("b") {
		t.Error("Referenced(b) = false, want true")
	}
	if snap.Referenced("c") {
		t.Error("Referenced(c) = true, want false")
	}
	// A component's own edges do not count as references to itself.
	if snap.Referenced("a") {
		t.Error("Referenced(a) = true, want false")
	}
}

func TestNewSnapshotDuplicateID(t *testing.T) {
	components := []*Component{
		{ID: "a", Category: CategoryData},
		{ID: "a", Category: CategoryModel},
	}
	_, err := NewSnapshot(components, nil, nil, nil, nil)
	if !errors.Is(err, ErrDuplicateEntityID) {
		t.Errorf("NewSnapshot() error = %v, want ErrDuplicateEntityID", err)
	}
}

func TestNewSnapshotEmptyID(t *testing.T) {
	controls := []*Control{{ID: "  "}}
	_, err := NewSnapshot(nil, controls, nil, nil, nil)
	if !errors.Is(err, ErrInvalidEntityID) {
		t.Errorf("NewSnapshot() error = %v, want ErrInvalidEntityID", err)
	}
}
