// Package pipeline provides the core load → validate → render pipeline
// for riskmap.
//
// This package implements the complete pipeline that can be used by the
// CLI and the preview server. By centralizing this logic, we ensure
// consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the taxonomy YAML files into a snapshot
//  2. Validate: Collect diagnostics for the snapshot into a report
//  3. Render: Generate the requested diagram views in one output format
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source: "examples/saif",
//	    Views:  []string{"controls"},
//	    Format: "mmd",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Artifacts["controls"]
//
// Run individual stages:
//
//	// Load only
//	snap, err := runner.Load(ctx, opts)
//
//	// Validate an existing snapshot
//	rep, err := runner.Validate(ctx, snap, opts)
//
//	// Render views for a validated snapshot
//	artifacts, err := runner.Render(ctx, snap, cfg, opts)
package pipeline

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/riskmap/riskmap/pkg/cache"
	apperrors "github.com/riskmap/riskmap/pkg/errors"
	"github.com/riskmap/riskmap/pkg/render"
	"github.com/riskmap/riskmap/pkg/report"
	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Format constants for output formats.
const (
	FormatMMD = "mmd"
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatMMD

// DefaultViews returns the views rendered when none are requested,
// in presentation order.
func DefaultViews() []string {
	views := make([]string, len(render.Views))
	for i, v := range render.Views {
		views[i] = string(v)
	}
	return views
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMMD: true,
	FormatDOT: true,
	FormatSVG: true,
}

// ErrFatalDiagnostics is returned by Execute when validation found
// fatal diagnostics. The partial Result carries the report so callers
// can show what went wrong.
var ErrFatalDiagnostics = errors.New("snapshot has fatal diagnostics")

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Source  string `json:"source"`
	Refresh bool   `json:"refresh,omitempty"`

	// Validate options
	AllowIsolated bool `json:"allow_isolated,omitempty"`

	// Render options
	Views      []string `json:"views,omitempty"`
	Format     string   `json:"format,omitempty"`
	StylePath  string   `json:"style_path,omitempty"`
	RootID     string   `json:"root_id,omitempty"`
	DebugRanks bool     `json:"debug_ranks,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the loaded taxonomy.
	Snapshot *taxonomy.Snapshot

	// Report carries the validation outcome, including any style
	// fallback diagnostics collected during rendering.
	Report *report.Report

	// Artifacts contains rendered diagrams keyed by view name.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount     int
	DiagnosticCount int
	LoadTime        time.Duration
	ValidateTime    time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReportHit bool // Whether the validation report came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: mmd, dot, svg)", format)
	}
	return nil
}

// ValidateView checks that a view name is valid.
func ValidateView(view string) error {
	_, err := render.ParseView(view)
	return err
}

// ValidateViews checks that all view names are valid.
func ValidateViews(views []string) error {
	for _, v := range views {
		if err := ValidateView(v); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "source directory is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Views) == 0 {
		o.Views = DefaultViews()
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	return ValidateViews(o.Views)
}

// ReportKeyOpts returns cache key options for the validation report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		AllowIsolated: o.AllowIsolated,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered view.
func (o *Options) ArtifactKeyOpts(view, styleHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		View:       view,
		Format:     o.Format,
		StyleHash:  styleHash,
		RootID:     o.RootID,
		DebugRanks: o.DebugRanks,
	}
}
