package pipeline

import (
	"context"
	"fmt"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
	"github.com/riskmap/riskmap/pkg/render"
	"github.com/riskmap/riskmap/pkg/render/dot"
	"github.com/riskmap/riskmap/pkg/render/mermaid"
	"github.com/riskmap/riskmap/pkg/render/styles"
	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// Render generates one artifact per requested view in the configured
// format. The snapshot is assumed to be free of fatal diagnostics;
// callers gate on the validation report before rendering.
func Render(ctx context.Context, snap *taxonomy.Snapshot, cfg styles.Config, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Views))

	for _, name := range opts.Views {
		data, err := RenderView(ctx, snap, name, cfg, opts)
		if err != nil {
			return nil, err
		}
		artifacts[name] = data
	}

	return artifacts, nil
}

// RenderView generates a single view in the configured format.
// The context is only consulted for SVG output, where graphviz does
// the rasterization.
func RenderView(ctx context.Context, snap *taxonomy.Snapshot, name string, cfg styles.Config, opts Options) ([]byte, error) {
	view, err := render.ParseView(name)
	if err != nil {
		return nil, err
	}

	g, err := render.Build(snap, view, render.Options{RootID: opts.RootID})
	if err != nil {
		return nil, fmt.Errorf("build %s view: %w", name, err)
	}

	switch opts.Format {
	case FormatMMD:
		text := mermaid.Render(g, cfg, mermaid.Options{View: name, DebugRanks: opts.DebugRanks})
		return []byte(text), nil

	case FormatDOT:
		text := dot.Render(g, cfg, dot.Options{View: name, DebugRanks: opts.DebugRanks})
		return []byte(text), nil

	case FormatSVG:
		text := dot.Render(g, cfg, dot.Options{View: name, DebugRanks: opts.DebugRanks})
		data, err := dot.RenderSVG(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		return data, nil

	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format: %s", opts.Format)
	}
}
