package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/riskmap/riskmap/pkg/cache"
	"github.com/riskmap/riskmap/pkg/observability"
	"github.com/riskmap/riskmap/pkg/render/styles"
	"github.com/riskmap/riskmap/pkg/report"
	"github.com/riskmap/riskmap/pkg/taxonomy"
	"github.com/riskmap/riskmap/pkg/validate"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → validate → render pipeline with caching.
//
// When validation collects fatal diagnostics, Execute stops before
// rendering and returns ErrFatalDiagnostics together with the partial
// Result, so callers can still show the report.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	snap, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.EntityCount = entityCount(snap)

	r.Logger.Info("loaded taxonomy",
		"components", len(snap.Components),
		"controls", len(snap.Controls),
		"risks", len(snap.Risks),
		"duration", result.Stats.LoadTime)

	// Stage 2: Validate
	validateStart := time.Now()
	rep, reportHit, err := r.ValidateWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Report = rep
	result.Stats.ValidateTime = time.Since(validateStart)
	result.Stats.DiagnosticCount = len(rep.Diagnostics)
	result.CacheInfo.ReportHit = reportHit

	r.Logger.Info("validated snapshot",
		"diagnostics", len(rep.Diagnostics),
		"duration", result.Stats.ValidateTime)

	if rep.Fatal() {
		return result, ErrFatalDiagnostics
	}

	// Styles are loaded between the stages so their fallback
	// diagnostics land on the report without invalidating the cached
	// validation result.
	cfg, styleDiags := styles.Load(opts.StylePath)
	rep.Diagnostics = append(rep.Diagnostics, styleDiags...)
	result.Stats.DiagnosticCount = len(rep.Diagnostics)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered views",
		"views", opts.Views,
		"format", opts.Format,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the taxonomy snapshot from the source directory.
func (r *Runner) Load(ctx context.Context, opts Options) (*taxonomy.Snapshot, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)

	snap, err := taxonomy.Load(opts.Source)

	count := 0
	if snap != nil {
		count = entityCount(snap)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, count, time.Since(start), err)

	return snap, err
}

// ValidateWithCacheInfo validates a snapshot with report caching and
// returns cache hit info. Cached reports keep the run id and timestamp
// of the run that produced them.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, snap *taxonomy.Snapshot, opts Options) (*report.Report, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.ReportKey(snap.Fingerprint, opts.ReportKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if rep, err := report.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return rep, true, nil // Cache hit
			}
			// Undecodable entries fall through to revalidation.
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	// Validate
	start := time.Now()
	observability.Pipeline().OnValidateStart(ctx, entityCount(snap))
	diags := validate.All(snap, validate.Options{AllowIsolated: opts.AllowIsolated})
	observability.Pipeline().OnValidateComplete(ctx, len(diags), time.Since(start), nil)

	rep := report.New(opts.Source, snap, diags)

	// Cache the result
	if data, err := rep.Marshal(); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultReportTTL)
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}

	return rep, false, nil // Cache miss
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, snap *taxonomy.Snapshot, opts Options) (*report.Report, error) {
	rep, _, err := r.ValidateWithCacheInfo(ctx, snap, opts)
	return rep, err
}

// RenderWithCacheInfo generates view artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *taxonomy.Snapshot, cfg styles.Config, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	styleHash := cfg.Fingerprint()

	// Try to get all views from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, view := range opts.Views {
			cacheKey := r.Keyer.ArtifactKey(snap.Fingerprint, opts.ArtifactKeyOpts(view, styleHash))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[view] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Views) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render all views
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Views, opts.Format)
	rendered, err := Render(ctx, snap, cfg, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Views, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each view
	for view, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(snap.Fingerprint, opts.ArtifactKeyOpts(view, styleHash))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snap *taxonomy.Snapshot, cfg styles.Config, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, cfg, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func entityCount(snap *taxonomy.Snapshot) int {
	return len(snap.Components) + len(snap.Controls) + len(snap.Risks) +
		len(snap.Frameworks) + len(snap.Personas)
}
