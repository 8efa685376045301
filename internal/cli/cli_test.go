package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/riskmap/riskmap/pkg/report"
)

// writeTaxonomy writes a small consistent taxonomy into dir.
func writeTaxonomy(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"components.yaml": `components:
  - id: corpus
    title: Training Corpus
    category: data
    edges:
      to: [pipeline]
      from: []
  - id: pipeline
    title: Data Pipeline
    category: data
    edges:
      to: []
      from: [corpus]
`,
		"controls.yaml": `controls:
  - id: encrypt-data
    title: Encrypt Data
    components: [corpus]
    risks: [data-theft]
`,
		"risks.yaml": `risks:
  - id: data-theft
    title: Data Theft
    controls: [encrypt-data]
`,
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// writeBrokenTaxonomy writes a taxonomy with a one-sided component edge.
func writeBrokenTaxonomy(t *testing.T, dir string) {
	t.Helper()

	components := `components:
  - id: corpus
    title: Training Corpus
    category: data
    edges:
      to: [pipeline]
      from: []
  - id: pipeline
    title: Data Pipeline
    category: data
    edges:
      to: []
      from: []
`
	if err := os.WriteFile(filepath.Join(dir, "components.yaml"), []byte(components), 0o644); err != nil {
		t.Fatalf("write components.yaml: %v", err)
	}
}

func newTestCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func execute(t *testing.T, args ...string) error {
	t.Helper()

	root := newTestCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()

	want := []string{"validate", "render", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestParseViews(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to all", "", []string{"components", "controls", "risks"}},
		{"all keyword", "all", []string{"components", "controls", "risks"}},
		{"single view", "components", []string{"components"}},
		{"multiple views", "controls,risks", []string{"controls", "risks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseViews(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseViews(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseViews(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	out := filepath.Join(t.TempDir(), "report.json")

	if err := execute(t, "validate", dir, "--no-cache", "-o", out); err != nil {
		t.Fatalf("validate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	rep, err := report.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if rep.Stats.Components != 2 {
		t.Errorf("components = %d, want 2", rep.Stats.Components)
	}
	if rep.Source != dir {
		t.Errorf("source = %q, want %q", rep.Source, dir)
	}
	if len(rep.Diagnostics) != 0 {
		t.Errorf("diagnostics = %d, want 0", len(rep.Diagnostics))
	}
}

func TestValidateCommandFatal(t *testing.T) {
	dir := t.TempDir()
	writeBrokenTaxonomy(t, dir)

	err := execute(t, "validate", dir, "--no-cache")
	if err == nil {
		t.Fatal("expected an error for a taxonomy with a one-sided edge")
	}
	if !strings.Contains(err.Error(), "fatal diagnostics") {
		t.Errorf("error = %v, want fatal diagnostics", err)
	}
}

func TestValidateCommandMissingDir(t *testing.T) {
	err := execute(t, "validate", filepath.Join(t.TempDir(), "missing"), "--no-cache")
	if err == nil {
		t.Fatal("expected an error for a missing taxonomy directory")
	}
}

func TestRenderCommandSingleView(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	out := filepath.Join(t.TempDir(), "map.mmd")

	if err := execute(t, "render", dir, "--no-cache", "--views", "components", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(data), "flowchart") {
		t.Errorf("artifact does not look like a mermaid flowchart:\n%s", data)
	}
	if !strings.Contains(string(data), "corpus --> pipeline") {
		t.Errorf("artifact is missing the component edge:\n%s", data)
	}
}

func TestRenderCommandAllViews(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	base := filepath.Join(t.TempDir(), "map")

	if err := execute(t, "render", dir, "--no-cache", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, view := range []string{"components", "controls", "risks"} {
		path := fmt.Sprintf("%s_%s.mmd", base, view)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
}

func TestRenderCommandFatalTaxonomy(t *testing.T) {
	dir := t.TempDir()
	writeBrokenTaxonomy(t, dir)

	err := execute(t, "render", dir, "--no-cache")
	if err == nil {
		t.Fatal("expected an error for a taxonomy with a one-sided edge")
	}
	if !strings.Contains(err.Error(), "fatal diagnostics") {
		t.Errorf("error = %v, want fatal diagnostics", err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)

	err := execute(t, "render", dir, "--no-cache", "-f", "pdf")
	if err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}
