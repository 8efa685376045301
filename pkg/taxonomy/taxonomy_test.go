package taxonomy

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSentinelResolve(t *testing.T) {
	universe := []string{"a", "b", "c"}

	tests := []struct {
		name     string
		sentinel Sentinel
		want     []string
	}{
		{"all expands to universe", All(), []string{"a", "b", "c"}},
		{"none expands to nothing", None(), nil},
		{"explicit kept verbatim", Explicit("b", "a"), []string{"b", "a"}},
		{"explicit keeps unknown ids", Explicit("b", "ghost"), []string{"b", "ghost"}},
		{"empty explicit", Explicit(), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sentinel.Resolve(universe)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelResolveCopies(t *testing.T) {
	universe := []string{"a", "b"}
	s := All()

	got := s.Resolve(universe)
	got[0] = "mutated"

	if universe[0] != "a" {
		t.Errorf("universe[0] = %q, want %q", universe[0], "a")
	}
}

func TestSentinelUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Sentinel
		wantErr bool
	}{
		{"all keyword", `field: all`, All(), false},
		{"none keyword", `field: none`, None(), false},
		{"uppercase keyword", `field: ALL`, All(), false},
		{"id list", `field: [a, b]`, Explicit("a", "b"), false},
		{"empty list", `field: []`, Explicit(), false},
		{"absent field", ``, None(), false},
		{"plain id scalar", `field: just-one-id`, Sentinel{}, true},
		{"mapping", `field: {a: b}`, Sentinel{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				Field Sentinel `yaml:"field"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if doc.Field.Kind != tt.want.Kind {
				t.Errorf("Kind = %v, want %v", doc.Field.Kind, tt.want.Kind)
			}
			if len(doc.Field.IDs) != len(tt.want.IDs) {
				t.Errorf("IDs = %v, want %v", doc.Field.IDs, tt.want.IDs)
			}
		})
	}
}

func TestSentinelMarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		sentinel Sentinel
		want     string
	}{
		{"all", All(), "all\n"},
		{"none", None(), "none\n"},
		{"explicit", Explicit("a"), "- a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := yaml.Marshal(tt.sentinel)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %q, want %q", string(data), tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("Valid(%q) = false, want true", c)
		}
	}
	if Category("storage").Valid() {
		t.Error(`Valid("storage") = true, want false`)
	}
	if Category("").Valid() {
		t.Error(`Valid("") = true, want false`)
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := CategoryInfrastructure.Title(); got != "Infrastructure" {
		t.Errorf("Title() = %q, want %q", got, "Infrastructure")
	}
}

func TestFrameworkApplicable(t *testing.T) {
	f := &Framework{
		ID:           "mitre-atlas",
		ApplicableTo: []EntityType{EntityRisks},
	}

	if !f.Applicable(EntityRisks) {
		t.Error("Applicable(risks) = false, want true")
	}
	if f.Applicable(EntityControls) {
		t.Error("Applicable(controls) = true, want false")
	}
}

func TestComponentIsolated(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want bool
	}{
		{"no edges", Component{ID: "a"}, true},
		{"outgoing only", Component{ID: "a", Edges: Edges{To: []string{"b"}}}, false},
		{"incoming only", Component{ID: "a", Edges: Edges{From: []string{"b"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Isolated(); got != tt.want {
				t.Errorf("Isolated() = %v, want %v", got, tt.want)
			}
		})
	}
}
