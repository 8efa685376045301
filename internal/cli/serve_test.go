package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/cache"
	"github.com/riskmap/riskmap/pkg/pipeline"
	"github.com/riskmap/riskmap/pkg/report"
)

func newServeHandler(t *testing.T, dir string) http.Handler {
	t.Helper()

	runner := pipeline.NewRunner(cache.NewNullCache(), nil, discardLogger())
	opts := pipeline.Options{Source: dir, Logger: discardLogger()}
	return newTestCLI().serveHandler(runner, opts)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestServeHandlerReport(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	rr := get(t, h, "/report.json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	rep, err := report.Unmarshal(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if rep.Stats.Components != 2 {
		t.Errorf("components = %d, want 2", rep.Stats.Components)
	}
	if len(rep.Diagnostics) != 0 {
		t.Errorf("diagnostics = %d, want 0", len(rep.Diagnostics))
	}
}

func TestServeHandlerView(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	rr := get(t, h, "/views/components.mmd")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
	if body := rr.Body.String(); !strings.Contains(body, "corpus --> pipeline") {
		t.Errorf("body is missing the component edge:\n%s", body)
	}
}

func TestServeHandlerViewDOT(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	rr := get(t, h, "/views/risks.dot")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); !strings.Contains(body, "digraph riskmap") {
		t.Errorf("body does not look like DOT:\n%s", body)
	}
}

func TestServeHandlerUnknownView(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	if rr := get(t, h, "/views/bogus.mmd"); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestServeHandlerUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	if rr := get(t, h, "/views/components.pdf"); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestServeHandlerFatalTaxonomy(t *testing.T) {
	dir := t.TempDir()
	writeBrokenTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	rr := get(t, h, "/views/components.mmd")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}

	rep, err := report.Unmarshal(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("unmarshal report body: %v", err)
	}
	if len(rep.Diagnostics) == 0 {
		t.Error("expected diagnostics in the 422 body")
	}
}

func TestServeHandlerIndex(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir)
	h := newServeHandler(t, dir)

	rr := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}

	body := rr.Body.String()
	for _, link := range []string{"/report.json", "/views/components.svg", "/views/risks.mmd"} {
		if !strings.Contains(body, link) {
			t.Errorf("index is missing link %s", link)
		}
	}
}

func TestServeHandlerMissingSource(t *testing.T) {
	h := newServeHandler(t, "/does/not/exist")

	if rr := get(t, h, "/report.json"); rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
