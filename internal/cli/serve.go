package cli

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/riskmap/riskmap/pkg/cache"
	"github.com/riskmap/riskmap/pkg/observability"
	"github.com/riskmap/riskmap/pkg/pipeline"
	"github.com/riskmap/riskmap/pkg/report"
)

// shutdownTimeout bounds the graceful server shutdown after SIGINT.
const shutdownTimeout = 5 * time.Second

// contentTypes maps render formats to HTTP content types.
var contentTypes = map[string]string{
	pipeline.FormatMMD: "text/plain; charset=utf-8",
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
}

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string // listen address
	stylePath     string // styles.toml path
	allowIsolated bool   // accept entities without any edges
	noCache       bool   // disable caching
	redisAddr     string // redis address for a shared cache
}

// serveCommand creates the serve command for the HTTP view server.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [taxonomy-dir]",
		Short: "Serve the validation report and rendered views over HTTP",
		Long: `Serve the validation report and rendered views over HTTP.

The server re-reads the taxonomy directory on every request, so edits show
up on reload. Results are cached by snapshot fingerprint; an unchanged
directory serves from cache.

Endpoints:
  GET /                       index page linking every view
  GET /report.json            the current validation report
  GET /views/{view}.{format}  a rendered view (mmd, dot, or svg)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVar(&opts.stylePath, "style", "", "styles.toml file with colors and layout")
	cmd.Flags().BoolVar(&opts.allowIsolated, "allow-isolated", false, "accept entities without any edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisAddr, "cache-redis", "", "redis address for a shared cache (host:port)")

	return cmd
}

// runServe starts the HTTP server and blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, dir string, sopts serveOpts) error {
	store, err := newCache(ctx, sopts.noCache, sopts.redisAddr)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	// One key scope per served directory keeps the server's entries apart
	// from ad-hoc CLI runs on a shared backend.
	keyer := cache.NewScopedKeyer(nil, dir+":")
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	opts := pipeline.Options{
		Source:        dir,
		AllowIsolated: sopts.allowIsolated,
		StylePath:     sopts.stylePath,
		Logger:        c.Logger,
	}

	srv := &http.Server{
		Addr:              sopts.addr,
		Handler:           c.serveHandler(runner, opts),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return withLogger(ctx, c.Logger)
		},
	}

	printInfo("Serving %s", dir)
	fmt.Println("  " + StyleLink.Render("http://"+sopts.addr))
	printNewline()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// serveHandler builds the HTTP routes.
func (c *CLI) serveHandler(runner *pipeline.Runner, opts pipeline.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hookMiddleware)

	r.Get("/", c.handleIndex(runner, opts))
	r.Get("/report.json", c.handleReport(runner, opts))
	r.Get("/views/{view}.{format}", c.handleView(runner, opts))

	return r
}

// hookMiddleware emits observability events for each request.
func hookMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// handleIndex serves a small HTML page linking every view and format.
func (c *CLI) handleIndex(runner *pipeline.Runner, opts pipeline.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := c.loadReport(r.Context(), runner, opts)
		if err != nil {
			httpError(w, r, http.StatusInternalServerError, err)
			return
		}

		var b strings.Builder
		b.WriteString("<!doctype html>\n<title>riskmap</title>\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", template.HTMLEscapeString(opts.Source))
		fmt.Fprintf(&b, "<p>%d components, %d controls, %d risks</p>\n",
			rep.Stats.Components, rep.Stats.Controls, rep.Stats.Risks)
		if rep.Fatal() {
			fmt.Fprintf(&b, `<p><strong>validation failed</strong> with %d diagnostics, see <a href="/report.json">report.json</a></p>`+"\n",
				len(rep.Diagnostics))
		} else {
			b.WriteString(`<p>validation passed, see <a href="/report.json">report.json</a></p>` + "\n")
		}
		b.WriteString("<ul>\n")
		for _, view := range pipeline.DefaultViews() {
			fmt.Fprintf(&b, `<li>%s: <a href="/views/%s.svg">svg</a> <a href="/views/%s.mmd">mmd</a> <a href="/views/%s.dot">dot</a></li>`+"\n",
				view, view, view, view)
		}
		b.WriteString("</ul>\n")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
	}
}

// handleReport serves the current validation report as JSON.
// The report is served even when validation failed; the diagnostics are
// the interesting part.
func (c *CLI) handleReport(runner *pipeline.Runner, opts pipeline.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := c.loadReport(r.Context(), runner, opts)
		if err != nil {
			httpError(w, r, http.StatusInternalServerError, err)
			return
		}
		data, err := rep.Marshal()
		if err != nil {
			httpError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(append(data, '\n'))
	}
}

// handleView serves one rendered view. A taxonomy with fatal diagnostics
// answers 422 with the report body instead of a diagram.
func (c *CLI) handleView(runner *pipeline.Runner, opts pipeline.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := chi.URLParam(r, "view")
		format := chi.URLParam(r, "format")

		if err := pipeline.ValidateView(view); err != nil {
			httpError(w, r, http.StatusNotFound, err)
			return
		}
		if err := pipeline.ValidateFormat(format); err != nil {
			httpError(w, r, http.StatusNotFound, err)
			return
		}

		reqOpts := opts
		reqOpts.Views = []string{view}
		reqOpts.Format = format

		result, err := runner.Execute(r.Context(), reqOpts)
		if errors.Is(err, pipeline.ErrFatalDiagnostics) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			if data, merr := result.Report.Marshal(); merr == nil {
				_, _ = w.Write(append(data, '\n'))
			}
			return
		}
		if err != nil {
			httpError(w, r, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		_, _ = w.Write(result.Artifacts[view])
	}
}

// loadReport runs the load and validate stages for one request.
func (c *CLI) loadReport(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*report.Report, error) {
	snap, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return runner.Validate(ctx, snap, opts)
}

// httpError logs the failure and writes a JSON error body.
func httpError(w http.ResponseWriter, r *http.Request, status int, err error) {
	loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
}
