// Package pkg provides the core libraries for Riskmap security-risk mapping.
//
// # Overview
//
// Riskmap validates a curated knowledge graph of security components, controls,
// risks, frameworks, and personas, then renders it as layered diagrams. The pkg
// directory is organized into four main areas:
//
//  1. [taxonomy] - Domain model (typed entities, sentinels, YAML loading)
//  2. [validate] - Consistency checking (structural, cross-reference, applicability)
//  3. [render] - Diagram construction (views, optimization, Mermaid/DOT emission)
//  4. [pipeline] - Orchestration (load → validate → render) with caching
//
// # Architecture
//
// The typical data flow through Riskmap:
//
//	YAML taxonomy directory
//	         ↓
//	    [taxonomy] package (decode + snapshot)
//	         ↓
//	    [validate] package (collect diagnostics)
//	         ↓
//	    [render] package (views + ranks + optimization)
//	         ↓
//	    Mermaid/DOT/SVG output
//
// # Quick Start
//
// Load a taxonomy, validate it, and render the controls view:
//
//	import (
//	    "github.com/riskmap/riskmap/pkg/render"
//	    "github.com/riskmap/riskmap/pkg/render/mermaid"
//	    "github.com/riskmap/riskmap/pkg/render/styles"
//	    "github.com/riskmap/riskmap/pkg/taxonomy"
//	    "github.com/riskmap/riskmap/pkg/validate"
//	)
//
//	// 1. Load the snapshot
//	snap, _ := taxonomy.Load("examples/saif")
//
//	// 2. Validate (all violations collected, never stops early)
//	diags := validate.All(snap, validate.Options{})
//	if diags.Fatal() {
//	    // report and bail
//	}
//
//	// 3. Build the view graph
//	g, _ := render.Build(snap, render.ViewControls, render.Options{})
//
//	// 4. Emit Mermaid text
//	text := mermaid.Render(g, styles.Default(), mermaid.Options{View: "controls"})
//
// # Main Packages
//
// ## Domain Model
//
// [taxonomy] - Typed entity model (Component, Control, Risk, Framework,
// Persona), the Sentinel tagged union for all/none/explicit reference sets,
// the YAML loader, and the read-only Snapshot with cached sentinel
// resolution.
//
// [validate] - Edge consistency, cross-reference, and framework
// applicability validators. Violations are values (Diagnostics), not
// errors, and every validator walks the whole graph before returning.
//
// ## Rendering
//
// [graph] - Directed graph with container nesting and the bounded
// longest-path rank assigner. The component relation is cyclic in
// practice, so ranks come from capped relaxation rather than a
// topological sort.
//
// [render] - View construction. Three views share a component backbone:
// components (single layer), controls (two layers), risks (three layers).
//
//   - [render/optimize]: Category collapse, shared-control clustering,
//     multi-edge style cycling
//   - [render/styles]: TOML style configuration with per-field fallback
//   - [render/mermaid]: Mermaid flowchart emission and round-trip parsing
//   - [render/dot]: Graphviz DOT emission and SVG rasterization
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (load → validate → render) used by the
// CLI and the preview server. Content-hash caching of reports and rendered
// artifacts.
//
// [cache] - Cache interface with file, null, and Redis backends plus the
// SHA-256 keyer for snapshot and render keys.
//
// [report] - Validation report (run id, stats, diagnostics) with JSON
// serialization and an optional MongoDB sink for tracking runs over time.
//
// [observability] - Backend-free hook interfaces for pipeline stages and
// HTTP handlers.
//
// [errors] - Structured error codes shared across packages.
//
// # Common Workflows
//
// Validate with isolated components allowed:
//
//	diags := validate.All(snap, validate.Options{AllowIsolated: true})
//
// Render with a custom style file:
//
//	cfg, fallbacks := styles.Load("styles.toml")
//	g, _ := render.Build(snap, render.ViewRisks, render.Options{})
//	text := mermaid.Render(g, cfg, mermaid.Options{View: "risks"})
//
// Rasterize to SVG via Graphviz:
//
//	src := dot.Render(g, cfg, dot.Options{View: "risks"})
//	svg, _ := dot.RenderSVG(ctx, src)
//
// Round-trip emitted Mermaid text:
//
//	parsed, _ := mermaid.Parse(text)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/validate/...     # Specific package
//	go test -run Example           # Examples only
//
// [taxonomy]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/taxonomy
// [validate]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/validate
// [graph]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/graph
// [render]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/render
// [render/optimize]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/render/optimize
// [render/styles]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/render/styles
// [render/mermaid]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/render/mermaid
// [render/dot]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/cache
// [report]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/report
// [observability]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/riskmap/riskmap/pkg/errors
package pkg
