package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskmap/riskmap/pkg/pipeline"
)

// mermaidTimeout bounds one invocation of the external mermaid command.
const mermaidTimeout = 60 * time.Second

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output        string // output file (single view) or base path (multiple)
	views         string // comma-separated view list, or "all"
	format        string // output format: mmd, dot, svg
	stylePath     string // styles.toml path
	rootID        string // focus the components view on one subtree
	debugRanks    bool   // annotate nodes with their computed rank
	allowIsolated bool   // accept entities without any edges
	refresh       bool   // bypass cached results
	noCache       bool   // disable caching
	redisAddr     string // redis address for a shared cache
	mermaidCmd    string // external command run on each written .mmd file
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "render [taxonomy-dir]",
		Short: "Render taxonomy views as diagrams",
		Long: `Render taxonomy views as diagrams.

The render command validates the taxonomy first and refuses to render a
map with fatal diagnostics. Each requested view (components, controls,
risks) is written to its own file.

Formats:
  mmd   Mermaid flowchart source (default)
  dot   Graphviz DOT source
  svg   SVG rendered through Graphviz

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single view) or base path (multiple)")
	cmd.Flags().StringVar(&opts.views, "views", "all", "view(s) to render: components, controls, risks (comma-separated)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: mmd (default), dot, svg")
	cmd.Flags().StringVar(&opts.stylePath, "style", "", "styles.toml file with colors and layout")
	cmd.Flags().StringVar(&opts.rootID, "root", "", "focus the components view on one component subtree")
	cmd.Flags().BoolVar(&opts.debugRanks, "debug-ranks", false, "annotate nodes with their computed rank")
	cmd.Flags().BoolVar(&opts.allowIsolated, "allow-isolated", false, "accept entities without any edges")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisAddr, "cache-redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&opts.mermaidCmd, "mermaid-cmd", "", "command run on each written .mmd file ({} is replaced with the path)")

	return cmd
}

// runRender executes the full pipeline and writes one file per view.
func (c *CLI) runRender(ctx context.Context, dir string, ropts renderOpts) error {
	views := parseViews(ropts.views)

	opts := pipeline.Options{
		Source:        dir,
		Refresh:       ropts.refresh,
		AllowIsolated: ropts.allowIsolated,
		Views:         views,
		Format:        ropts.format,
		StylePath:     ropts.stylePath,
		RootID:        ropts.rootID,
		DebugRanks:    ropts.debugRanks,
		Logger:        c.Logger,
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, ropts.noCache, ropts.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(views, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if errors.Is(err, pipeline.ErrFatalDiagnostics) {
		spinner.StopWithError("Validation failed")
		printDiagnostics(result.Report.Diagnostics)
		return fmt.Errorf("%d fatal diagnostics", result.Report.Diagnostics.FatalCount())
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")

	written := make([]string, 0, len(views))
	for _, view := range views {
		data, ok := result.Artifacts[view]
		if !ok {
			continue
		}
		path := artifactPath(ropts.output, view, opts.Format, len(views) > 1)
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		printFile(path)
		written = append(written, path)
	}

	printStats(result.Stats.EntityCount, result.Stats.DiagnosticCount, result.CacheInfo.RenderHit)

	// Anything left on the report here is a style fallback.
	if len(result.Report.Diagnostics) > 0 {
		printNewline()
		printDiagnostics(result.Report.Diagnostics)
	}

	if ropts.mermaidCmd != "" && opts.Format == pipeline.FormatMMD {
		for _, path := range written {
			if err := runMermaidCmd(ctx, ropts.mermaidCmd, path); err != nil {
				return fmt.Errorf("mermaid command: %w", err)
			}
		}
	}

	return nil
}

// artifactPath derives the output path for one rendered view.
// With multiple views the view name is appended to the base path
// (e.g., map_components.mmd). A single view keeps an explicit output
// path as given.
func artifactPath(output, view, format string, multi bool) string {
	if output == "" {
		return fmt.Sprintf("%s.%s", view, format)
	}
	if !multi {
		if filepath.Ext(output) == "" {
			return output + "." + format
		}
		return output
	}
	base := output
	if ext := filepath.Ext(output); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(output, ext)
	}
	return fmt.Sprintf("%s_%s.%s", base, view, format)
}

// writeArtifact writes one rendered view to path.
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// runMermaidCmd runs the configured external command on one written
// mermaid file. The literal {} is replaced with the file path; without
// a placeholder the path is appended as the last argument.
func runMermaidCmd(ctx context.Context, command, path string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, mermaidTimeout)
	defer cancel()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("empty command")
	}
	args := parts[1:]
	replaced := false
	for i, a := range args {
		if a == "{}" {
			args[i] = path
			replaced = true
		}
	}
	if !replaced {
		args = append(args, path)
	}

	cmd := exec.CommandContext(cmdCtx, parts[0], args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", parts[0], path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
