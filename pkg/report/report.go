// Package report turns one validation run into a durable record.
//
// A report carries everything needed to answer "what did the last run
// over this map say" without re-running it: a run id, the snapshot
// fingerprint, entity counts, and the full diagnostic list. Reports
// serialize to JSON for files and HTTP, and to BSON for the optional
// MongoDB history store.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/riskmap/riskmap/pkg/taxonomy"
	"github.com/riskmap/riskmap/pkg/validate"
)

// Stats counts the entities of one snapshot.
type Stats struct {
	Components int `json:"components" bson:"components"`
	Controls   int `json:"controls" bson:"controls"`
	Risks      int `json:"risks" bson:"risks"`
	Frameworks int `json:"frameworks" bson:"frameworks"`
	Personas   int `json:"personas" bson:"personas"`
}

// Report is the result of one validation run.
type Report struct {
	RunID        string               `json:"run_id" bson:"run_id"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	Source       string               `json:"source" bson:"source"`
	SnapshotHash string               `json:"snapshot_hash" bson:"snapshot_hash"`
	Stats        Stats                `json:"stats" bson:"stats"`
	Diagnostics  validate.Diagnostics `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// New builds a report for one run. Source records where the snapshot
// came from (usually the taxonomy directory).
func New(source string, snap *taxonomy.Snapshot, diags validate.Diagnostics) *Report {
	return &Report{
		RunID:        uuid.New().String(),
		CreatedAt:    time.Now().UTC(),
		Source:       source,
		SnapshotHash: snap.Fingerprint,
		Stats: Stats{
			Components: len(snap.Components),
			Controls:   len(snap.Controls),
			Risks:      len(snap.Risks),
			Frameworks: len(snap.Frameworks),
			Personas:   len(snap.Personas),
		},
		Diagnostics: diags,
	}
}

// Fatal reports whether the run collected any fatal diagnostic.
func (r *Report) Fatal() bool {
	return r.Diagnostics.Fatal()
}

// Marshal renders the report as pretty-printed JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the JSON report to path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Unmarshal reads a JSON report produced by [Report.Marshal].
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}
