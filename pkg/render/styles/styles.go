// Package styles holds the visual configuration injected into diagram
// emitters.
//
// Styling is data, not code: colors, stroke widths, and per-view layout
// directions come from a TOML file so that map maintainers can retheme
// diagrams without touching the renderer. Every field has a default,
// and a bad configuration must never prevent output: malformed fields
// are replaced by their defaults and reported as non-fatal fallback
// diagnostics.
package styles

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/riskmap/riskmap/pkg/render/optimize"
	"github.com/riskmap/riskmap/pkg/validate"
)

// Colors holds the fill color per node kind and the shared stroke.
type Colors struct {
	Component string `toml:"component"`
	Control   string `toml:"control"`
	Risk      string `toml:"risk"`
	Category  string `toml:"category"`
	Cluster   string `toml:"cluster"`
	Stroke    string `toml:"stroke"`
}

// EdgeStyles holds the stroke width and the alternating palette used
// for dense controls. Palette and Dashes are aligned by index and must
// both carry exactly [optimize.PaletteSize] entries.
type EdgeStyles struct {
	Width   string   `toml:"width"`
	Palette []string `toml:"palette"`
	Dashes  []string `toml:"dashes"`
}

// ViewLayout holds the per-view flow direction and node spacing.
type ViewLayout struct {
	Direction string `toml:"direction"`
	Spacing   int    `toml:"spacing"`
}

// ViewLayouts holds one layout per diagram view.
type ViewLayouts struct {
	Components ViewLayout `toml:"components"`
	Controls   ViewLayout `toml:"controls"`
	Risks      ViewLayout `toml:"risks"`
}

// Config is the effective style configuration. Values are always valid:
// construction goes through [Default], [Parse], or [Load], which
// substitute defaults for anything malformed.
type Config struct {
	Colors Colors      `toml:"colors"`
	Edges  EdgeStyles  `toml:"edges"`
	Views  ViewLayouts `toml:"views"`
}

// Default returns the built-in style configuration.
func Default() Config {
	return Config{
		Colors: Colors{
			Component: "#e8f0fe",
			Control:   "#e6f4ea",
			Risk:      "#fce8e6",
			Category:  "#f8f9fa",
			Cluster:   "#fff8e1",
			Stroke:    "#5f6368",
		},
		Edges: EdgeStyles{
			Width:   "2px",
			Palette: []string{"#1a73e8", "#188038", "#d93025", "#f9ab00"},
			Dashes:  []string{"", "6 3", "2 2", "8 4"},
		},
		Views: ViewLayouts{
			Components: ViewLayout{Direction: "TB", Spacing: 40},
			Controls:   ViewLayout{Direction: "LR", Spacing: 60},
			Risks:      ViewLayout{Direction: "LR", Spacing: 60},
		},
	}
}

// Fingerprint returns a stable content hash of the configuration,
// usable in render cache keys.
func (c Config) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", c)))
	return hex.EncodeToString(sum[:])
}

var (
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$|^#[0-9a-fA-F]{3}$|^[a-zA-Z]+$`)
	widthRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?px$`)
	dashRegex  = regexp.MustCompile(`^$|^[0-9]+( [0-9]+)*$`)
)

func validDirection(d string) bool {
	switch d {
	case "TB", "BT", "LR", "RL":
		return true
	}
	return false
}

// Load reads a TOML style file and returns the effective configuration
// plus one fallback diagnostic per field it had to default. An empty
// path returns the defaults with no diagnostics. An unreadable or
// unparsable file falls back to full defaults with a single diagnostic;
// style problems never abort a render.
func Load(path string) (Config, validate.Diagnostics) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), validate.Diagnostics{fallback("style file", fmt.Sprintf("cannot read %s, using default styles: %v", path, err))}
	}
	return Parse(data)
}

// Parse decodes TOML style bytes. Absent fields take their defaults
// silently (partial files are the normal case); present but malformed
// fields take their defaults with a fallback diagnostic each, as do
// unknown keys.
func Parse(data []byte) (Config, validate.Diagnostics) {
	cfg := Default()

	var raw Config
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return cfg, validate.Diagnostics{fallback("style file", fmt.Sprintf("malformed TOML, using default styles: %v", err))}
	}

	var ds validate.Diagnostics
	for _, key := range md.Undecoded() {
		ds = append(ds, fallback(key.String(), fmt.Sprintf("unknown style key %q ignored", key.String())))
	}

	ds = append(ds, mergeColors(&cfg.Colors, raw.Colors)...)
	ds = append(ds, mergeEdges(&cfg.Edges, raw.Edges)...)
	ds = append(ds, mergeView(&cfg.Views.Components, raw.Views.Components, "views.components")...)
	ds = append(ds, mergeView(&cfg.Views.Controls, raw.Views.Controls, "views.controls")...)
	ds = append(ds, mergeView(&cfg.Views.Risks, raw.Views.Risks, "views.risks")...)
	return cfg, ds
}

func fallback(field, message string) validate.Diagnostic {
	return validate.Diagnostic{
		Kind:    validate.KindConfigFallback,
		Entity:  field,
		Message: message,
	}
}

func mergeColors(dst *Colors, raw Colors) validate.Diagnostics {
	var ds validate.Diagnostics
	fields := []struct {
		name string
		raw  string
		dst  *string
	}{
		{"colors.component", raw.Component, &dst.Component},
		{"colors.control", raw.Control, &dst.Control},
		{"colors.risk", raw.Risk, &dst.Risk},
		{"colors.category", raw.Category, &dst.Category},
		{"colors.cluster", raw.Cluster, &dst.Cluster},
		{"colors.stroke", raw.Stroke, &dst.Stroke},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		if !colorRegex.MatchString(f.raw) {
			ds = append(ds, fallback(f.name, fmt.Sprintf("invalid color %q, using default %q", f.raw, *f.dst)))
			continue
		}
		*f.dst = f.raw
	}
	return ds
}

func mergeEdges(dst *EdgeStyles, raw EdgeStyles) validate.Diagnostics {
	var ds validate.Diagnostics

	if raw.Width != "" {
		if widthRegex.MatchString(raw.Width) {
			dst.Width = raw.Width
		} else {
			ds = append(ds, fallback("edges.width", fmt.Sprintf("invalid width %q, using default %q", raw.Width, dst.Width)))
		}
	}

	if raw.Palette != nil {
		if ok, why := validPalette(raw.Palette, colorRegex); ok {
			dst.Palette = raw.Palette
		} else {
			ds = append(ds, fallback("edges.palette", fmt.Sprintf("%s, using default palette", why)))
		}
	}

	if raw.Dashes != nil {
		if ok, why := validPalette(raw.Dashes, dashRegex); ok {
			dst.Dashes = raw.Dashes
		} else {
			ds = append(ds, fallback("edges.dashes", fmt.Sprintf("%s, using default dash patterns", why)))
		}
	}

	return ds
}

func validPalette(entries []string, re *regexp.Regexp) (bool, string) {
	if len(entries) != optimize.PaletteSize {
		return false, fmt.Sprintf("want exactly %d entries, got %d", optimize.PaletteSize, len(entries))
	}
	for i, e := range entries {
		if !re.MatchString(e) {
			return false, fmt.Sprintf("invalid entry %d: %q", i, e)
		}
	}
	return true, ""
}

func mergeView(dst *ViewLayout, raw ViewLayout, name string) validate.Diagnostics {
	var ds validate.Diagnostics

	if raw.Direction != "" {
		if validDirection(raw.Direction) {
			dst.Direction = raw.Direction
		} else {
			ds = append(ds, fallback(name+".direction", fmt.Sprintf("invalid direction %q (want TB, BT, LR, or RL), using default %q", raw.Direction, dst.Direction)))
		}
	}

	if raw.Spacing != 0 {
		if raw.Spacing > 0 && raw.Spacing <= 500 {
			dst.Spacing = raw.Spacing
		} else {
			ds = append(ds, fallback(name+".spacing", fmt.Sprintf("invalid spacing %d (want 1-500), using default %d", raw.Spacing, dst.Spacing)))
		}
	}

	return ds
}

// ForView returns the layout of the named view, falling back to the
// components layout for anything unrecognized.
func (c Config) ForView(view string) ViewLayout {
	switch view {
	case "controls":
		return c.Views.Controls
	case "risks":
		return c.Views.Risks
	default:
		return c.Views.Components
	}
}
