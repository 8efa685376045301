package mermaid

import (
	"regexp"
	"strings"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
	"github.com/riskmap/riskmap/pkg/graph"
)

var (
	subgraphRe = regexp.MustCompile(`^subgraph ([A-Za-z0-9_-]+)\["(.*)"\]$`)
	controlRe  = regexp.MustCompile(`^([A-Za-z0-9_-]+)\(\["(.*)"\]\)$`)
	riskRe     = regexp.MustCompile(`^([A-Za-z0-9_-]+)\{\{"(.*)"\}\}$`)
	plainRe    = regexp.MustCompile(`^([A-Za-z0-9_-]+)\["(.*)"\]$`)
	edgeRe     = regexp.MustCompile(`^([A-Za-z0-9_-]+) --> ([A-Za-z0-9_-]+)$`)
	classRe    = regexp.MustCompile(`^class ([A-Za-z0-9_,-]+) ([a-z]+)$`)
)

// Parse reads flowchart text produced by [Render] back into a graph.
//
// The recovered graph carries the full vertex and edge sets, node
// kinds (from the class directives), labels, and container nesting.
// Ranks and edge styling are presentation details and are not
// recovered; parsed edges carry [graph.StyleDefault].
//
// Returns an INVALID_FORMAT error naming the offending line when the
// text does not parse.
func Parse(text string) (*graph.Graph, error) {
	var (
		nodes     []graph.Node
		edges     []graph.Edge
		kinds     = map[string]graph.NodeKind{}
		stack     []string
		hasHeader bool
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		switch {
		case line == "" || strings.HasPrefix(line, "%%"):
			continue

		case strings.HasPrefix(line, "flowchart"):
			hasHeader = true

		case line == "end":
			if len(stack) == 0 {
				return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "line %d: end without an open subgraph", lineNo)
			}
			stack = stack[:len(stack)-1]

		case strings.HasPrefix(line, "subgraph "):
			m := subgraphRe.FindStringSubmatch(line)
			if m == nil {
				return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "line %d: malformed subgraph: %s", lineNo, line)
			}
			nodes = append(nodes, graph.Node{ID: m[1], Label: unescape(m[2]), Kind: graph.KindCategory, Parent: parent()})
			stack = append(stack, m[1])

		case strings.HasPrefix(line, "classDef ") || strings.HasPrefix(line, "linkStyle "):
			continue

		case strings.HasPrefix(line, "class "):
			m := classRe.FindStringSubmatch(line)
			if m == nil {
				return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "line %d: malformed class directive: %s", lineNo, line)
			}
			kind, ok := parseKind(m[2])
			if !ok {
				return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "line %d: unknown node class %q", lineNo, m[2])
			}
			for _, id := range strings.Split(m[1], ",") {
				kinds[id] = kind
			}

		default:
			if m := edgeRe.FindStringSubmatch(line); m != nil {
				edges = append(edges, graph.Edge{From: m[1], To: m[2], Style: graph.StyleDefault})
				continue
			}
			if m := controlRe.FindStringSubmatch(line); m != nil {
				nodes = append(nodes, graph.Node{ID: m[1], Label: unescape(m[2]), Kind: graph.KindControl, Parent: parent()})
				continue
			}
			if m := riskRe.FindStringSubmatch(line); m != nil {
				nodes = append(nodes, graph.Node{ID: m[1], Label: unescape(m[2]), Kind: graph.KindRisk, Parent: parent()})
				continue
			}
			if m := plainRe.FindStringSubmatch(line); m != nil {
				nodes = append(nodes, graph.Node{ID: m[1], Label: unescape(m[2]), Kind: graph.KindComponent, Parent: parent()})
				continue
			}
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "line %d: cannot parse: %s", lineNo, line)
		}
	}

	if len(stack) > 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unclosed subgraph %q", stack[len(stack)-1])
	}
	if !hasHeader && (len(nodes) > 0 || len(edges) > 0) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "missing flowchart header")
	}

	g := graph.New()
	for _, n := range nodes {
		if k, ok := kinds[n.ID]; ok {
			n.Kind = k
		}
		if err := g.AddNode(n); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "node %q", n.ID)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "edge %s -> %s", e.From, e.To)
		}
	}
	return g, nil
}

func parseKind(s string) (graph.NodeKind, bool) {
	switch s {
	case "component":
		return graph.KindComponent, true
	case "control":
		return graph.KindControl, true
	case "risk":
		return graph.KindRisk, true
	case "category":
		return graph.KindCategory, true
	case "cluster":
		return graph.KindCluster, true
	}
	return 0, false
}
