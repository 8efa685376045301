package render

import (
	"fmt"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
	"github.com/riskmap/riskmap/pkg/graph"
	"github.com/riskmap/riskmap/pkg/render/optimize"
	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// View selects which slice of the map a diagram shows.
type View string

const (
	// ViewComponents is the single-layer component relationship graph.
	ViewComponents View = "components"
	// ViewControls is the two-layer controls to components graph.
	ViewControls View = "controls"
	// ViewRisks is the three-layer risks to controls to components graph.
	ViewRisks View = "risks"
)

// Views lists the supported views in presentation order.
var Views = []View{ViewComponents, ViewControls, ViewRisks}

// ParseView validates a view name from user input.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidView, "unknown view %q (valid: components, controls, risks)", s)
}

// Options configures view construction.
type Options struct {
	// RootID is the component seeding rank assignment. Empty selects
	// the first declared component.
	RootID string
}

// CategoryNodeID returns the graph node id of a category container.
// Category ids carry a prefix so they cannot collide with the entity
// id namespace.
func CategoryNodeID(cat taxonomy.Category) string {
	return "cat_" + string(cat)
}

// Build turns a snapshot into the graph of one view.
//
// All three views share the component backbone: one container node per
// non-empty category in canonical order, components nested inside in
// declaration order. The components view adds the component relation
// edges; the controls view adds control nodes plus the optimized
// control mapping (with cluster containers nested into categories); the
// risks view adds risk nodes and the risk coverage on top of that.
//
// Edges pointing at ids the snapshot does not know are dropped: the
// validators report them, and a diagram cannot draw an edge to a node
// that does not exist. Ranks are assigned before returning.
func Build(snap *taxonomy.Snapshot, view View, opts Options) (*graph.Graph, error) {
	g := graph.New()

	var result optimize.Result
	if view == ViewControls || view == ViewRisks {
		result = optimize.Collapse(snap)
	}

	if err := addComponentNodes(g, snap, result.Clusters); err != nil {
		return nil, err
	}

	switch view {
	case ViewComponents:
		if err := addComponentEdges(g, snap); err != nil {
			return nil, err
		}
	case ViewControls:
		if err := addControlMapping(g, snap, result); err != nil {
			return nil, err
		}
	case ViewRisks:
		if err := addControlMapping(g, snap, result); err != nil {
			return nil, err
		}
		if err := addRiskCoverage(g, snap); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidView, "unknown view %q (valid: components, controls, risks)", view)
	}

	root := opts.RootID
	if root == "" {
		if len(snap.Components) == 0 {
			return g, nil
		}
		root = snap.Components[0].ID
	}
	if err := graph.AssignRanks(g, root); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot rank %s view", view)
	}
	return g, nil
}

// addComponentNodes adds category containers, cluster containers, and
// component nodes. Cluster members are re-parented from their category
// into the cluster; the cluster itself nests inside the category, so
// category membership stays visible.
func addComponentNodes(g *graph.Graph, snap *taxonomy.Snapshot, clusters []optimize.Cluster) error {
	for _, cat := range taxonomy.Categories {
		if len(snap.ComponentsInCategory(cat)) == 0 {
			continue
		}
		err := g.AddNode(graph.Node{
			ID:    CategoryNodeID(cat),
			Label: cat.Title(),
			Kind:  graph.KindCategory,
		})
		if err != nil {
			return fmt.Errorf("category %s: %w", cat, err)
		}
	}

	parentOf := make(map[string]string, len(snap.Components))
	for _, cl := range clusters {
		err := g.AddNode(graph.Node{
			ID:     cl.ID,
			Label:  fmt.Sprintf("Shared protection (%d)", len(cl.Members)),
			Kind:   graph.KindCluster,
			Parent: CategoryNodeID(cl.Category),
		})
		if err != nil {
			return fmt.Errorf("cluster %s: %w", cl.ID, err)
		}
		for _, m := range cl.Members {
			parentOf[m] = cl.ID
		}
	}

	for _, c := range snap.Components {
		parent := parentOf[c.ID]
		if parent == "" {
			parent = CategoryNodeID(c.Category)
		}
		err := g.AddNode(graph.Node{
			ID:     c.ID,
			Label:  c.Title,
			Kind:   graph.KindComponent,
			Parent: parent,
		})
		if err != nil {
			return fmt.Errorf("component %s: %w", c.ID, err)
		}
	}
	return nil
}

// addComponentEdges draws the declared component relation. Only the
// forward direction is drawn; a consistent map mirrors every edge, and
// drawing both directions would double every arrow.
func addComponentEdges(g *graph.Graph, snap *taxonomy.Snapshot) error {
	for _, c := range snap.Components {
		for _, target := range c.Edges.To {
			if _, ok := snap.Component(target); !ok {
				continue
			}
			if err := g.AddEdge(graph.Edge{From: c.ID, To: target, Style: graph.StyleDefault}); err != nil {
				return fmt.Errorf("component edge %s -> %s: %w", c.ID, target, err)
			}
		}
	}
	return nil
}

// addControlMapping adds control nodes and the optimized control to
// component edges. Category targets are mapped onto the category
// container nodes.
func addControlMapping(g *graph.Graph, snap *taxonomy.Snapshot, result optimize.Result) error {
	for _, ctl := range snap.Controls {
		err := g.AddNode(graph.Node{
			ID:    ctl.ID,
			Label: ctl.Title,
			Kind:  graph.KindControl,
		})
		if err != nil {
			return fmt.Errorf("control %s: %w", ctl.ID, err)
		}
	}

	for _, e := range result.Edges {
		target := e.Target
		if e.Kind == optimize.TargetCategory {
			target = CategoryNodeID(taxonomy.Category(e.Target))
		}
		if err := g.AddEdge(graph.Edge{From: e.Control, To: target, Style: e.Style}); err != nil {
			return fmt.Errorf("control edge %s -> %s: %w", e.Control, target, err)
		}
	}
	return nil
}

// addRiskCoverage adds risk nodes and one edge per risk a control
// addresses. Coverage is read from the control side so All sentinels
// expand to every risk without requiring a mirrored entry.
func addRiskCoverage(g *graph.Graph, snap *taxonomy.Snapshot) error {
	for _, r := range snap.Risks {
		err := g.AddNode(graph.Node{
			ID:    r.ID,
			Label: r.Title,
			Kind:  graph.KindRisk,
		})
		if err != nil {
			return fmt.Errorf("risk %s: %w", r.ID, err)
		}
	}

	for _, ctl := range snap.Controls {
		for _, riskID := range snap.ResolvedRisks(ctl.ID) {
			if _, ok := snap.Risk(riskID); !ok {
				continue
			}
			if err := g.AddEdge(graph.Edge{From: riskID, To: ctl.ID, Style: graph.StyleDefault}); err != nil {
				return fmt.Errorf("risk edge %s -> %s: %w", riskID, ctl.ID, err)
			}
		}
	}
	return nil
}
