package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskmap/riskmap/pkg/taxonomy"
	"github.com/riskmap/riskmap/pkg/validate"
)

func testSnapshot(t *testing.T) *taxonomy.Snapshot {
	t.Helper()
	snap, err := taxonomy.NewSnapshot(
		[]*taxonomy.Component{
			{ID: "corpus", Category: taxonomy.CategoryData},
			{ID: "weights", Category: taxonomy.CategoryModel},
		},
		[]*taxonomy.Control{{ID: "encrypt"}},
		[]*taxonomy.Risk{{ID: "theft"}},
		nil,
		[]*taxonomy.Persona{{ID: "model-creator"}},
	)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	snap.Fingerprint = "abc123"
	return snap
}

func TestNew(t *testing.T) {
	snap := testSnapshot(t)
	diags := validate.Diagnostics{
		{Kind: validate.KindStructural, Entity: "corpus", Message: "isolated"},
	}

	r := New("testdata/map", snap, diags)

	if r.RunID == "" {
		t.Error("RunID is empty")
	}
	if r2 := New("testdata/map", snap, nil); r2.RunID == r.RunID {
		t.Error("two runs share a RunID")
	}
	if r.CreatedAt.IsZero() || r.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want a UTC timestamp", r.CreatedAt)
	}
	if got, want := r.SnapshotHash, "abc123"; got != want {
		t.Errorf("SnapshotHash = %q, want %q", got, want)
	}

	want := Stats{Components: 2, Controls: 1, Risks: 1, Frameworks: 0, Personas: 1}
	if r.Stats != want {
		t.Errorf("Stats = %+v, want %+v", r.Stats, want)
	}
}

func TestFatal(t *testing.T) {
	snap := testSnapshot(t)

	clean := New("m", snap, nil)
	if clean.Fatal() {
		t.Error("Fatal() = true for a clean run")
	}

	warned := New("m", snap, validate.Diagnostics{
		{Kind: validate.KindConfigFallback, Entity: "colors.risk", Message: "bad color"},
	})
	if warned.Fatal() {
		t.Error("Fatal() = true for fallback-only diagnostics")
	}

	broken := New("m", snap, validate.Diagnostics{
		{Kind: validate.KindCrossReference, Entity: "encrypt", Target: "theft", Message: "not mirrored"},
	})
	if !broken.Fatal() {
		t.Error("Fatal() = false for a cross-reference mismatch")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	orig := New("testdata/map", testSnapshot(t), validate.Diagnostics{
		{Kind: validate.KindStructural, Entity: "corpus", Target: "weights", Message: "edge not mirrored"},
	})

	data, err := orig.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"run_id"`) {
		t.Errorf("Marshal() output missing run_id field:\n%s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.RunID != orig.RunID {
		t.Errorf("RunID = %q, want %q", got.RunID, orig.RunID)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, orig.CreatedAt)
	}
	if got.Stats != orig.Stats {
		t.Errorf("Stats = %+v, want %+v", got.Stats, orig.Stats)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0] != orig.Diagnostics[0] {
		t.Errorf("Diagnostics = %v, want %v", got.Diagnostics, orig.Diagnostics)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); err == nil {
		t.Error("Unmarshal(garbage) = nil error, want error")
	}
}

func TestWriteFile(t *testing.T) {
	r := New("testdata/map", testSnapshot(t), nil)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("report file missing trailing newline")
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.RunID != r.RunID {
		t.Errorf("RunID = %q, want %q", got.RunID, r.RunID)
	}
}
