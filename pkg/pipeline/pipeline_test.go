package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/riskmap/riskmap/pkg/cache"
	"github.com/riskmap/riskmap/pkg/render/styles"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"mmd", false},
		{"dot", false},
		{"svg", false},
		{"invalid", true},
		{"MMD", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateView(t *testing.T) {
	tests := []struct {
		view    string
		wantErr bool
	}{
		{"components", false},
		{"controls", false},
		{"risks", false},
		{"invalid", true},
		{"Components", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateView(tt.view)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateView(%q) error = %v, wantErr %v", tt.view, err, tt.wantErr)
		}
	}
}

func TestValidateViews(t *testing.T) {
	if err := ValidateViews([]string{"components", "risks"}); err != nil {
		t.Errorf("Valid views should pass: %v", err)
	}

	if err := ValidateViews([]string{"components", "invalid"}); err == nil {
		t.Error("Invalid view should fail")
	}

	// Empty slice is valid
	if err := ValidateViews(nil); err != nil {
		t.Errorf("Empty views should pass: %v", err)
	}
}

func TestDefaultViews(t *testing.T) {
	want := []string{"components", "controls", "risks"}
	got := DefaultViews()
	if len(got) != len(want) {
		t.Fatalf("DefaultViews() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DefaultViews()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing source
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing source should fail")
	}

	// Valid
	opts = Options{Source: "examples/saif"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("ValidateForLoad should set a default logger")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Views) != 3 {
		t.Errorf("Views should default to all views, got %v", opts.Views)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format should be %s, got %s", DefaultFormat, opts.Format)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Views: []string{"controls"}, Format: "dot"}
	if err := opts.ValidateForRender(); err != nil {
		t.Errorf("Valid render options should pass: %v", err)
	}

	opts = Options{Format: "jpeg"}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Invalid format should fail")
	}

	opts = Options{Views: []string{"towers"}}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Invalid view should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: "examples/saif"}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalViews := len(opts.Views)
	originalFormat := opts.Format

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if len(opts.Views) != originalViews {
		t.Error("Views changed on second call")
	}
	if opts.Format != originalFormat {
		t.Error("Format changed on second call")
	}
}

func TestArtifactKeyOptsCarryRenderSettings(t *testing.T) {
	opts := Options{Format: "svg", RootID: "corpus", DebugRanks: true}
	keyOpts := opts.ArtifactKeyOpts("risks", "stylehash")

	if keyOpts.View != "risks" {
		t.Errorf("View = %q, want %q", keyOpts.View, "risks")
	}
	if keyOpts.Format != "svg" {
		t.Errorf("Format = %q, want %q", keyOpts.Format, "svg")
	}
	if keyOpts.StyleHash != "stylehash" {
		t.Errorf("StyleHash = %q, want %q", keyOpts.StyleHash, "stylehash")
	}
	if keyOpts.RootID != "corpus" {
		t.Errorf("RootID = %q, want %q", keyOpts.RootID, "corpus")
	}
	if !keyOpts.DebugRanks {
		t.Error("DebugRanks should carry over")
	}
}

// writeTaxonomy writes a minimal consistent taxonomy into dir.
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

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestRunnerExecute(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)

	runner := NewRunner(nil, nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Source: dir,
		Views:  []string{"components"},
		Format: FormatMMD,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.EntityCount != 4 {
		t.Errorf("EntityCount = %d, want 4", result.Stats.EntityCount)
	}
	if result.Report == nil || result.Report.Fatal() {
		t.Fatalf("Report = %+v, want non-fatal report", result.Report)
	}

	diagram := string(result.Artifacts["components"])
	if !strings.Contains(diagram, "flowchart TB") {
		t.Errorf("components artifact missing flowchart header:\n%s", diagram)
	}
	if !strings.Contains(diagram, "corpus --> pipeline") {
		t.Errorf("components artifact missing edge:\n%s", diagram)
	}

	if result.CacheInfo.ReportHit || result.CacheInfo.RenderHit {
		t.Error("First run should not hit the cache")
	}
}

func TestRunnerExecuteCacheHit(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil, discardLogger())
	defer runner.Close()

	opts := Options{Source: dir, Views: []string{"components"}, Format: FormatMMD}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("First Execute() error = %v", err)
	}
	if first.CacheInfo.ReportHit || first.CacheInfo.RenderHit {
		t.Error("First run should not hit the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Second Execute() error = %v", err)
	}
	if !second.CacheInfo.ReportHit {
		t.Error("Second run should hit the report cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("Second run should hit the artifact cache")
	}

	if string(first.Artifacts["components"]) != string(second.Artifacts["components"]) {
		t.Error("Cached artifact should match the rendered one")
	}

	// Refresh bypasses the cache
	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Refresh Execute() error = %v", err)
	}
	if third.CacheInfo.ReportHit || third.CacheInfo.RenderHit {
		t.Error("Refresh run should not hit the cache")
	}
}

func TestRunnerExecuteFatalDiagnostics(t *testing.T) {
	dir := t.TempDir()

	// corpus declares an edge that pipeline does not mirror.
	content := `components:
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
	if err := os.WriteFile(filepath.Join(dir, "components.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write components.yaml: %v", err)
	}

	runner := NewRunner(nil, nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{Source: dir})
	if !errors.Is(err, ErrFatalDiagnostics) {
		t.Fatalf("Execute() error = %v, want ErrFatalDiagnostics", err)
	}
	if result == nil || result.Report == nil {
		t.Fatal("Execute() should return the partial result with the report")
	}
	if !result.Report.Fatal() {
		t.Error("Report should be fatal")
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("No artifacts should be rendered, got %d", len(result.Artifacts))
	}
}

func TestRunnerExecuteMissingSource(t *testing.T) {
	runner := NewRunner(nil, nil, discardLogger())
	defer runner.Close()

	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("Execute() without source should fail")
	}

	if _, err := runner.Execute(context.Background(), Options{Source: "does/not/exist"}); err == nil {
		t.Error("Execute() with missing directory should fail")
	}
}

func TestRunnerRenderAllFormats(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)

	runner := NewRunner(nil, nil, discardLogger())
	defer runner.Close()

	snap, err := runner.Load(context.Background(), Options{Source: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		format string
		marker string
	}{
		{FormatMMD, "flowchart"},
		{FormatDOT, "digraph riskmap"},
	}

	for _, tt := range tests {
		opts := Options{Source: dir, Views: []string{"controls"}, Format: tt.format}
		if err := opts.ValidateForRender(); err != nil {
			t.Fatalf("ValidateForRender(%s) error = %v", tt.format, err)
		}

		artifacts, err := Render(context.Background(), snap, styles.Default(), opts)
		if err != nil {
			t.Fatalf("Render(%s) error = %v", tt.format, err)
		}
		if !strings.Contains(string(artifacts["controls"]), tt.marker) {
			t.Errorf("Render(%s) missing %q:\n%s", tt.format, tt.marker, artifacts["controls"])
		}
	}
}
