// Package mermaid emits view graphs as Mermaid flowchart text.
//
// Mermaid is the primary diagram DSL: [Render] output is committed next
// to the map content or handed to a headless-browser rasterizer by the
// caller. [Parse] reads the emitted structure back, which keeps
// generated diagrams diffable and testable without a browser in the
// loop.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/riskmap/riskmap/pkg/graph"
	"github.com/riskmap/riskmap/pkg/render/styles"
)

// Options configures one emission.
type Options struct {
	// View names the style layout block to apply (components, controls,
	// risks). Anything else falls back to the components layout.
	View string
	// DebugRanks appends the computed rank to every entity label.
	DebugRanks bool
}

// Render emits a Mermaid flowchart for the graph.
//
// Containers become subgraphs (clusters nest inside their category),
// entity kinds pick their node shape, and kind style classes plus
// per-edge linkStyle directives carry the injected configuration.
// Emission follows insertion order throughout, so an unchanged graph
// renders byte-identical text.
func Render(g *graph.Graph, cfg styles.Config, opts Options) string {
	layout := cfg.ForView(opts.View)

	var b strings.Builder
	fmt.Fprintf(&b, "%%%%{init: {\"flowchart\": {\"nodeSpacing\": %d, \"rankSpacing\": %d}}}%%%%\n",
		layout.Spacing, layout.Spacing)
	fmt.Fprintf(&b, "flowchart %s\n", layout.Direction)

	for _, n := range g.TopLevel() {
		writeNode(&b, g, n, 1, opts.DebugRanks)
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s --> %s\n", e.From, e.To)
	}

	writeClasses(&b, g, cfg)
	writeLinkStyles(&b, g, cfg)
	return b.String()
}

func writeNode(b *strings.Builder, g *graph.Graph, n *graph.Node, depth int, debug bool) {
	indent := strings.Repeat("  ", depth)

	if n.Kind.Container() {
		fmt.Fprintf(b, "%ssubgraph %s[\"%s\"]\n", indent, n.ID, escape(label(n)))
		for _, m := range g.Members(n.ID) {
			writeNode(b, g, m, depth+1, debug)
		}
		fmt.Fprintf(b, "%send\n", indent)
		return
	}

	text := label(n)
	if debug {
		text = fmt.Sprintf("%s [r%d]", text, n.Rank)
	}
	switch n.Kind {
	case graph.KindControl:
		fmt.Fprintf(b, "%s%s([\"%s\"])\n", indent, n.ID, escape(text))
	case graph.KindRisk:
		fmt.Fprintf(b, "%s%s{{\"%s\"}}\n", indent, n.ID, escape(text))
	default:
		fmt.Fprintf(b, "%s%s[\"%s\"]\n", indent, n.ID, escape(text))
	}
}

func label(n *graph.Node) string {
	if n.Label == "" {
		return n.ID
	}
	return n.Label
}

// escape replaces double quotes with the Mermaid entity so labels can
// never break out of their quoting.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

func unescape(s string) string {
	return strings.ReplaceAll(s, "#quot;", `"`)
}

// classOrder fixes the emission order of style classes.
var classOrder = []graph.NodeKind{
	graph.KindComponent,
	graph.KindControl,
	graph.KindRisk,
	graph.KindCategory,
	graph.KindCluster,
}

func kindFill(cfg styles.Config, k graph.NodeKind) string {
	switch k {
	case graph.KindControl:
		return cfg.Colors.Control
	case graph.KindRisk:
		return cfg.Colors.Risk
	case graph.KindCategory:
		return cfg.Colors.Category
	case graph.KindCluster:
		return cfg.Colors.Cluster
	default:
		return cfg.Colors.Component
	}
}

func writeClasses(b *strings.Builder, g *graph.Graph, cfg styles.Config) {
	groups := make(map[graph.NodeKind][]string, len(classOrder))
	for _, n := range g.Nodes() {
		groups[n.Kind] = append(groups[n.Kind], n.ID)
	}
	for _, k := range classOrder {
		ids := groups[k]
		if len(ids) == 0 {
			continue
		}
		fmt.Fprintf(b, "  classDef %s fill:%s,stroke:%s\n", k, kindFill(cfg, k), cfg.Colors.Stroke)
		fmt.Fprintf(b, "  class %s %s\n", strings.Join(ids, ","), k)
	}
}

// writeLinkStyles styles palette edges by their emission index. Edges
// are emitted in graph order, so index i here is the i-th edge line
// above.
func writeLinkStyles(b *strings.Builder, g *graph.Graph, cfg styles.Config) {
	for i, e := range g.Edges() {
		if e.Style < 0 {
			continue
		}
		color := cfg.Edges.Palette[e.Style%len(cfg.Edges.Palette)]
		dash := cfg.Edges.Dashes[e.Style%len(cfg.Edges.Dashes)]
		fmt.Fprintf(b, "  linkStyle %d stroke:%s,stroke-width:%s", i, color, cfg.Edges.Width)
		if dash != "" {
			fmt.Fprintf(b, ",stroke-dasharray:%s", dash)
		}
		b.WriteString("\n")
	}
}
