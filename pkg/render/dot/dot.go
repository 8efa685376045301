// Package dot emits view graphs as Graphviz DOT and rasterizes them to
// SVG in-process.
//
// DOT is the secondary output behind Mermaid: it exists because
// Graphviz can rasterize without a browser, which is what the preview
// server and the svg output format use.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

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

// Render emits the graph in DOT format. Containers become cluster
// subgraphs; edges targeting a container attach to one member and clip
// at the cluster border via lhead, which needs compound mode.
func Render(g *graph.Graph, cfg styles.Config, opts Options) string {
	layout := cfg.ForView(opts.View)

	var buf bytes.Buffer
	buf.WriteString("digraph riskmap {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", layout.Direction)
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  nodesep=%.2f;\n", float64(layout.Spacing)/100)
	fmt.Fprintf(&buf, "  ranksep=%.2f;\n", float64(layout.Spacing)/100)
	buf.WriteString("\n")

	for _, n := range g.TopLevel() {
		writeNode(&buf, g, cfg, n, 1, opts.DebugRanks)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		writeEdge(&buf, g, cfg, e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, g *graph.Graph, cfg styles.Config, n *graph.Node, depth int, debug bool) {
	indent := strings.Repeat("  ", depth)

	if n.Kind.Container() {
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+n.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(n, false))
		fmt.Fprintf(buf, "%s  style=filled;\n", indent)
		fmt.Fprintf(buf, "%s  fillcolor=%q;\n", indent, fill(cfg, n.Kind))
		for _, m := range g.Members(n.ID) {
			writeNode(buf, g, cfg, m, depth+1, debug)
		}
		fmt.Fprintf(buf, "%s}\n", indent)
		return
	}

	fmt.Fprintf(buf, "%s%q [label=%q, shape=%s, fillcolor=%q, color=%q];\n",
		indent, n.ID, fmtLabel(n, debug), shape(n.Kind), fill(cfg, n.Kind), cfg.Colors.Stroke)
}

func writeEdge(buf *bytes.Buffer, g *graph.Graph, cfg styles.Config, e graph.Edge) {
	to := e.To
	var attrs []string

	if n, ok := g.Node(e.To); ok && n.Kind.Container() {
		anchor := anchorLeaf(g, e.To)
		if anchor == "" {
			return
		}
		attrs = append(attrs, fmt.Sprintf("lhead=%q", "cluster_"+e.To))
		to = anchor
	}

	if e.Style >= 0 {
		attrs = append(attrs,
			fmt.Sprintf("color=%q", cfg.Edges.Palette[e.Style%len(cfg.Edges.Palette)]),
			"penwidth="+strings.TrimSuffix(cfg.Edges.Width, "px"))
		if cfg.Edges.Dashes[e.Style%len(cfg.Edges.Dashes)] != "" {
			attrs = append(attrs, "style=dashed")
		}
	}

	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %q -> %q;\n", e.From, to)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", e.From, to, strings.Join(attrs, ", "))
}

// anchorLeaf finds the first non-container node inside a container, the
// node a clipped cluster edge physically attaches to.
func anchorLeaf(g *graph.Graph, containerID string) string {
	for _, m := range g.Members(containerID) {
		if !m.Kind.Container() {
			return m.ID
		}
		if leaf := anchorLeaf(g, m.ID); leaf != "" {
			return leaf
		}
	}
	return ""
}

func fmtLabel(n *graph.Node, debug bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if debug {
		return fmt.Sprintf("%s [r%d]", label, n.Rank)
	}
	return label
}

func shape(k graph.NodeKind) string {
	switch k {
	case graph.KindControl:
		return "ellipse"
	case graph.KindRisk:
		return "hexagon"
	default:
		return "box"
	}
}

func fill(cfg styles.Config, k graph.NodeKind) string {
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

// RenderSVG rasterizes DOT text to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
