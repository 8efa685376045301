package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskmap/riskmap/pkg/pipeline"
	"github.com/riskmap/riskmap/pkg/report"
)

// validateOpts holds the command-line flags for the validate command.
type validateOpts struct {
	allowIsolated bool   // accept entities without any edges
	refresh       bool   // bypass the cached report
	noCache       bool   // disable caching entirely
	redisAddr     string // redis address for a shared cache
	output        string // report file path ("-" for stdout, skip if empty)
	interactive   bool   // browse diagnostics in a TUI
	historyURI    string // MongoDB URI for the report history store
	historyDB     string // MongoDB database name
	historyColl   string // MongoDB collection name
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate [taxonomy-dir]",
		Short: "Validate a taxonomy directory and report violations",
		Long: `Validate a taxonomy directory and report violations.

The validate command loads every entity file in the directory, checks
bidirectional edge consistency, control and risk cross-references, and
framework applicability, and prints every violation found. The run never
stops at the first problem, so one pass shows the full repair list.

Results are cached keyed by the snapshot fingerprint, so repeated runs
over an unchanged directory are instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.allowIsolated, "allow-isolated", false, "accept entities without any edges")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached report")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisAddr, "cache-redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON report to a file (\"-\" for stdout)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse diagnostics interactively")
	cmd.Flags().StringVar(&opts.historyURI, "history-uri", "", "MongoDB URI to record the report in a history store")
	cmd.Flags().StringVar(&opts.historyDB, "history-db", "riskmap", "MongoDB database for the report history")
	cmd.Flags().StringVar(&opts.historyColl, "history-collection", "reports", "MongoDB collection for the report history")

	return cmd
}

// runValidate loads the taxonomy, validates it, and prints every diagnostic.
func (c *CLI) runValidate(ctx context.Context, dir string, vopts validateOpts) error {
	runner, err := c.newRunner(ctx, vopts.noCache, vopts.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Source:        dir,
		Refresh:       vopts.refresh,
		AllowIsolated: vopts.allowIsolated,
		Logger:        c.Logger,
	}

	prog := newProgress(c.Logger)
	snap, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	rep, cacheHit, err := runner.ValidateWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	total := len(snap.Components) + len(snap.Controls) + len(snap.Risks) +
		len(snap.Frameworks) + len(snap.Personas)
	prog.done(fmt.Sprintf("Validated %d entities", total))

	if rep.Fatal() {
		printError("Validation failed")
	} else {
		printSuccess("Validation passed")
	}
	printStats(total, len(rep.Diagnostics), cacheHit)
	if cacheHit {
		printDetail("Report %s from %s", rep.RunID, formatRelativeTime(rep.CreatedAt))
	}

	if len(rep.Diagnostics) > 0 {
		printNewline()
		printDiagnostics(rep.Diagnostics)
	}

	if vopts.output != "" {
		if err := writeReport(rep, vopts.output); err != nil {
			return err
		}
		if vopts.output != "-" {
			printFile(vopts.output)
		}
	}

	if vopts.historyURI != "" {
		if err := saveHistory(ctx, vopts, rep); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		printDetail("Recorded run %s in history", rep.RunID)
	}

	if vopts.interactive && len(rep.Diagnostics) > 0 {
		if err := browseDiagnostics(rep.Diagnostics); err != nil {
			return err
		}
	}

	if rep.Fatal() {
		return fmt.Errorf("%d fatal diagnostics", rep.Diagnostics.FatalCount())
	}

	printNewline()
	printNextStep("Render", "riskmap render "+dir)
	return nil
}

// writeReport writes the JSON report to path, or to stdout when path is "-".
func writeReport(rep *report.Report, path string) error {
	if path == "-" {
		path = ""
	}
	data, err := rep.Marshal()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(append(data, '\n'))
	return err
}

// saveHistory records the report in the MongoDB history store.
func saveHistory(ctx context.Context, vopts validateOpts, rep *report.Report) error {
	store, err := report.NewMongoStore(ctx, vopts.historyURI, vopts.historyDB, vopts.historyColl)
	if err != nil {
		return err
	}
	defer store.Close(ctx)
	return store.Save(ctx, rep)
}
