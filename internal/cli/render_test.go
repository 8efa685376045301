package cli

import (
	"testing"

	"github.com/riskmap/riskmap/pkg/pipeline"
)

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		view   string
		format string
		multi  bool
		want   string
	}{
		{"no output single view", "", "components", "mmd", false, "components.mmd"},
		{"no output multiple views", "", "risks", "svg", true, "risks.svg"},
		{"explicit file single view", "map.mmd", "components", "mmd", false, "map.mmd"},
		{"explicit file keeps odd extension", "map.txt", "components", "mmd", false, "map.txt"},
		{"bare base single view", "map", "components", "dot", false, "map.dot"},
		{"base with multiple views", "map", "components", "mmd", true, "map_components.mmd"},
		{"format extension stripped for multi", "map.svg", "controls", "svg", true, "map_controls.svg"},
		{"unknown extension kept for multi", "map.v1", "risks", "dot", true, "map.v1_risks.dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPath(tt.output, tt.view, tt.format, tt.multi)
			if got != tt.want {
				t.Errorf("artifactPath(%q, %q, %q, %v) = %q, want %q",
					tt.output, tt.view, tt.format, tt.multi, got, tt.want)
			}
		})
	}
}

func TestValidFormatsMap(t *testing.T) {
	for _, f := range []string{"mmd", "dot", "svg"} {
		if !pipeline.ValidFormats[f] {
			t.Errorf("ValidFormats[%q] = false, want true", f)
		}
	}
	if pipeline.ValidFormats["pdf"] {
		t.Error("ValidFormats[pdf] should be false")
	}
}
