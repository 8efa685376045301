package styles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskmap/riskmap/pkg/validate"
)

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()

	if cfg.Colors.Component == "" || cfg.Colors.Risk == "" || cfg.Colors.Stroke == "" {
		t.Errorf("Default() has empty colors: %+v", cfg.Colors)
	}
	if got, want := len(cfg.Edges.Palette), 4; got != want {
		t.Errorf("len(Default().Edges.Palette) = %d, want %d", got, want)
	}
	if got, want := len(cfg.Edges.Dashes), 4; got != want {
		t.Errorf("len(Default().Edges.Dashes) = %d, want %d", got, want)
	}
	if got, want := cfg.Views.Components.Direction, "TB"; got != want {
		t.Errorf("Default().Views.Components.Direction = %q, want %q", got, want)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Default().Fingerprint()
	b := Default().Fingerprint()
	if a != b {
		t.Errorf("Fingerprint() not stable: %q vs %q", a, b)
	}

	changed := Default()
	changed.Colors.Risk = "#000000"
	if changed.Fingerprint() == a {
		t.Error("Fingerprint() did not change after editing a color")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, ds := Load("")
	if len(ds) != 0 {
		t.Errorf("Load(\"\") diagnostics = %v, want none", ds)
	}
	if got, want := cfg.Colors.Component, Default().Colors.Component; got != want {
		t.Errorf("Load(\"\").Colors.Component = %q, want default %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, ds := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if len(ds) != 1 {
		t.Fatalf("Load(missing) diagnostics = %v, want exactly 1", ds)
	}
	if got, want := ds[0].Kind, validate.KindConfigFallback; got != want {
		t.Errorf("diagnostic kind = %q, want %q", got, want)
	}
	if ds.Fatal() {
		t.Error("missing style file reported as fatal, want non-fatal fallback")
	}
	if got, want := cfg.Edges.Width, Default().Edges.Width; got != want {
		t.Errorf("fallback config width = %q, want default %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.toml")
	if err := os.WriteFile(path, []byte("[colors]\nrisk = \"#ff0000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, ds := Load(path)
	if len(ds) != 0 {
		t.Errorf("Load() diagnostics = %v, want none", ds)
	}
	if got, want := cfg.Colors.Risk, "#ff0000"; got != want {
		t.Errorf("Colors.Risk = %q, want %q", got, want)
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, ds := Parse([]byte(`
[colors]
risk = "#ff0000"

[views.controls]
direction = "TB"
`))
	if len(ds) != 0 {
		t.Fatalf("Parse() diagnostics = %v, want none", ds)
	}
	if got, want := cfg.Colors.Risk, "#ff0000"; got != want {
		t.Errorf("Colors.Risk = %q, want %q", got, want)
	}
	if got, want := cfg.Colors.Component, Default().Colors.Component; got != want {
		t.Errorf("Colors.Component = %q, want untouched default %q", got, want)
	}
	if got, want := cfg.Views.Controls.Direction, "TB"; got != want {
		t.Errorf("Views.Controls.Direction = %q, want %q", got, want)
	}
	if got, want := cfg.Views.Controls.Spacing, Default().Views.Controls.Spacing; got != want {
		t.Errorf("Views.Controls.Spacing = %d, want untouched default %d", got, want)
	}
}

func TestParseMalformedField(t *testing.T) {
	cfg, ds := Parse([]byte(`
[colors]
risk = "not a color"
control = "#00aa00"
`))
	if len(ds) != 1 {
		t.Fatalf("Parse() diagnostics = %v, want exactly 1", ds)
	}
	if got, want := ds[0].Kind, validate.KindConfigFallback; got != want {
		t.Errorf("diagnostic kind = %q, want %q", got, want)
	}
	if got, want := ds[0].Entity, "colors.risk"; got != want {
		t.Errorf("diagnostic entity = %q, want %q", got, want)
	}
	if !strings.Contains(ds[0].Message, "not a color") {
		t.Errorf("diagnostic message %q does not name the bad value", ds[0].Message)
	}
	if got, want := cfg.Colors.Risk, Default().Colors.Risk; got != want {
		t.Errorf("Colors.Risk = %q, want default %q after fallback", got, want)
	}
	if got, want := cfg.Colors.Control, "#00aa00"; got != want {
		t.Errorf("Colors.Control = %q, want %q; valid sibling must survive", got, want)
	}
}

func TestParseMalformedTOML(t *testing.T) {
	cfg, ds := Parse([]byte("[colors\nrisk ="))
	if len(ds) != 1 {
		t.Fatalf("Parse(garbage) diagnostics = %v, want exactly 1", ds)
	}
	if ds.Fatal() {
		t.Error("malformed style file reported as fatal, want non-fatal fallback")
	}
	if got, want := cfg.Colors.Risk, Default().Colors.Risk; got != want {
		t.Errorf("Colors.Risk = %q, want full default %q", got, want)
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, ds := Parse([]byte("[colors]\nshadow = \"#123456\"\n"))
	if len(ds) != 1 {
		t.Fatalf("Parse() diagnostics = %v, want exactly 1", ds)
	}
	if !strings.Contains(ds[0].Message, "colors.shadow") {
		t.Errorf("diagnostic message %q does not name the unknown key", ds[0].Message)
	}
}

func TestParseEdgeStyles(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDiags int
		check     func(t *testing.T, cfg Config)
	}{
		{
			name:  "valid width and palette",
			input: "[edges]\nwidth = \"3px\"\npalette = [\"#111111\", \"#222222\", \"#333333\", \"#444444\"]\n",
			check: func(t *testing.T, cfg Config) {
				if got, want := cfg.Edges.Width, "3px"; got != want {
					t.Errorf("Edges.Width = %q, want %q", got, want)
				}
				if got, want := cfg.Edges.Palette[2], "#333333"; got != want {
					t.Errorf("Edges.Palette[2] = %q, want %q", got, want)
				}
			},
		},
		{
			name:      "invalid width",
			input:     "[edges]\nwidth = \"wide\"\n",
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				if got, want := cfg.Edges.Width, Default().Edges.Width; got != want {
					t.Errorf("Edges.Width = %q, want default %q", got, want)
				}
			},
		},
		{
			name:      "palette wrong length",
			input:     "[edges]\npalette = [\"#111111\", \"#222222\"]\n",
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				if got, want := len(cfg.Edges.Palette), 4; got != want {
					t.Errorf("len(Edges.Palette) = %d, want default %d", got, want)
				}
			},
		},
		{
			name:      "dash pattern with letters",
			input:     "[edges]\ndashes = [\"\", \"6 3\", \"abc\", \"8 4\"]\n",
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				if got, want := cfg.Edges.Dashes[2], Default().Edges.Dashes[2]; got != want {
					t.Errorf("Edges.Dashes[2] = %q, want default %q", got, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ds := Parse([]byte(tt.input))
			if got := len(ds); got != tt.wantDiags {
				t.Errorf("Parse() diagnostics = %v, want %d", ds, tt.wantDiags)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseViewLayout(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantDiags int
	}{
		{"valid direction", "[views.risks]\ndirection = \"RL\"\n", 0},
		{"invalid direction", "[views.risks]\ndirection = \"UP\"\n", 1},
		{"valid spacing", "[views.risks]\nspacing = 120\n", 0},
		{"negative spacing", "[views.risks]\nspacing = -5\n", 1},
		{"oversized spacing", "[views.risks]\nspacing = 9000\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ds := Parse([]byte(tt.input))
			if got := len(ds); got != tt.wantDiags {
				t.Errorf("Parse() diagnostics = %v, want %d", ds, tt.wantDiags)
			}
		})
	}
}

func TestForView(t *testing.T) {
	cfg := Default()
	if got, want := cfg.ForView("controls").Direction, "LR"; got != want {
		t.Errorf("ForView(controls).Direction = %q, want %q", got, want)
	}
	if got, want := cfg.ForView("nonsense").Direction, "TB"; got != want {
		t.Errorf("ForView(nonsense).Direction = %q, want fallback %q", got, want)
	}
}
