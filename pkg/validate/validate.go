// Package validate checks a taxonomy snapshot for consistency.
//
// Validators never stop at the first problem: each pass walks the whole
// snapshot and returns every violation it finds, so that one run gives
// a complete picture of what needs fixing. Diagnostics carry a machine
// readable kind, the entities involved, and a human readable message.
//
// Three kinds are fatal (a snapshot carrying any of them fails
// validation): structural inconsistencies between declared edges,
// cross-reference mismatches between controls and risks, and framework
// applicability violations. Configuration fallbacks are warnings only;
// they report style fields that were replaced by defaults and never
// fail a run.
package validate

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// Kind classifies a diagnostic by the rule it violates.
type Kind string

// Diagnostic kinds.
const (
	// KindStructural reports a component edge without its mirror, an
	// edge to an unknown component, or an isolated component.
	KindStructural Kind = "STRUCTURAL_INCONSISTENCY"

	// KindCrossReference reports a one-sided control/risk mapping or a
	// reference to an unknown entity id.
	KindCrossReference Kind = "CROSS_REFERENCE_MISMATCH"

	// KindApplicability reports a framework cited from an entity type
	// outside the framework's applicableTo set.
	KindApplicability Kind = "APPLICABILITY_VIOLATION"

	// KindConfigFallback reports a style configuration field that was
	// malformed and replaced by its default. Never fatal.
	KindConfigFallback Kind = "CONFIGURATION_FALLBACK"
)

// Fatal reports whether diagnostics of this kind fail a validation run.
func (k Kind) Fatal() bool {
	return k != KindConfigFallback
}

// Diagnostic is a single violation found in a snapshot or in a style
// configuration.
type Diagnostic struct {
	Kind    Kind   `json:"kind" bson:"kind"`
	Entity  string `json:"entity" bson:"entity"`
	Target  string `json:"target,omitempty" bson:"target,omitempty"`
	Message string `json:"message" bson:"message"`
}

// String renders the diagnostic for logs and terminal output.
func (d Diagnostic) String() string {
	if d.Target != "" {
		return fmt.Sprintf("%s %s -> %s: %s", d.Kind, d.Entity, d.Target, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Kind, d.Entity, d.Message)
}

// Diagnostics is an ordered list of violations. Order is deterministic:
// validators emit in entity declaration order, and within one entity in
// field declaration order.
type Diagnostics []Diagnostic

// Fatal reports whether any diagnostic in the list fails the run.
func (ds Diagnostics) Fatal() bool {
	for _, d := range ds {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics of the given kind.
func (ds Diagnostics) Count(kind Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// FatalCount returns the number of fatal diagnostics.
func (ds Diagnostics) FatalCount() int {
	n := 0
	for _, d := range ds {
		if d.Kind.Fatal() {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics of the given kind, preserving order.
func (ds Diagnostics) Filter(kind Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Options configures a validation pass.
type Options struct {
	// AllowIsolated suppresses the isolated-component diagnostic for
	// components that declare no edges and are referenced by nobody.
	AllowIsolated bool
}

// All runs every validator over the snapshot and returns the combined
// diagnostics: edge consistency first, then cross-references.
func All(snap *taxonomy.Snapshot, opts Options) Diagnostics {
	ds := Edges(snap, opts)
	ds = append(ds, CrossReferences(snap)...)
	return ds
}
