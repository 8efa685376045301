// Package render builds presentation graphs from a taxonomy snapshot.
//
// # Overview
//
// Rendering is a pure pipeline: snapshot -> view graph -> diagram text.
// This package owns the first step. [Build] assembles one of three
// views into a [graph.Graph] with category containers, ranks, and the
// optimized control mapping already applied:
//
//   - components: the single-layer component relationship graph
//   - controls: controls mapped onto components, categories, and clusters
//   - risks: risk coverage layered on top of the controls view
//
// Emitters live in subpackages:
//   - [mermaid]: Mermaid flowchart text, plus a parser for round-trips
//   - [dot]: Graphviz DOT text and direct SVG rasterization
//
// Supporting stages:
//   - [optimize]: category collapse, shared-protection clustering, and
//     multi-edge styling
//   - [styles]: the TOML style configuration with per-field fallback
//
// Rendering never mutates the snapshot and never fails on content
// problems - unknown references simply draw nothing, because the
// validators in pkg/validate already report them.
//
// [mermaid]: github.com/riskmap/riskmap/pkg/render/mermaid
// [dot]: github.com/riskmap/riskmap/pkg/render/dot
// [optimize]: github.com/riskmap/riskmap/pkg/render/optimize
// [styles]: github.com/riskmap/riskmap/pkg/render/styles
package render
