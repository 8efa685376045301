// Package optimize computes the presentation form of the control to
// component mapping before a diagram is emitted.
//
// Raw mappings draw badly: a control protecting every component in a
// category produces a fan of parallel edges, several components often
// share the exact same protection, and dense controls become
// indistinguishable edge bundles. The passes here rewrite the mapping
// into fewer, clearer edges without changing its meaning:
//
//  1. Category collapse - a control covering every component of a
//     category gets one edge to the category instead.
//  2. Clustering - components of one category protected by the same
//     set of controls are grouped into a synthetic cluster that
//     receives one edge per control.
//  3. Edge styling - controls still holding several edges get
//     alternating palette indices so adjacent lines stay tellable
//     apart.
//
// All passes are pure: they read the snapshot and return a [Result],
// never mutating the input. Identical snapshots produce identical
// results, including cluster identifiers.
package optimize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// PaletteSize is the number of alternating edge styles. Style indices
// cycle through it, so neighboring edges of a dense control differ.
const PaletteSize = 4

// MultiEdgeThreshold is the minimum number of edges a control must
// hold, after collapsing, for its edges to receive palette styles.
// Below it, edges keep the default stroke.
const MultiEdgeThreshold = 3

// StyleDefault marks an edge drawn with the renderer's default stroke.
const StyleDefault = -1

// TargetKind says what a collapsed edge points at.
type TargetKind int

const (
	// TargetComponent is a direct edge to a single component.
	TargetComponent TargetKind = iota
	// TargetCategory is a collapsed edge to a whole category.
	TargetCategory
	// TargetCluster is an edge to a synthetic shared-protection group.
	TargetCluster
)

// Edge is one presentation edge from a control to its target.
type Edge struct {
	Control string
	Target  string
	Kind    TargetKind
	Style   int
}

// Cluster is a synthetic group of components that share the same
// controls. Members and Controls are in declaration order.
type Cluster struct {
	ID       string
	Category taxonomy.Category
	Members  []string
	Controls []string
}

// Result is the optimized mapping: the edges to draw and the clusters
// to nest inside their categories.
type Result struct {
	Edges    []Edge
	Clusters []Cluster
}

// ControlEdges returns the edges of one control, preserving order.
func (r Result) ControlEdges(controlID string) []Edge {
	var out []Edge
	for _, e := range r.Edges {
		if e.Control == controlID {
			out = append(out, e)
		}
	}
	return out
}

// Collapse rewrites the control to component mapping of the snapshot
// into presentation edges.
//
// Edges are emitted per control in declaration order; within one
// control, category targets come first (canonical category order), then
// cluster targets (cluster discovery order), then the remaining single
// components (resolution order). Component ids that resolve to nothing
// in the snapshot are skipped here - the validators already report
// them, and the diagram cannot draw an edge to a node that does not
// exist.
func Collapse(snap *taxonomy.Snapshot) Result {
	residuals := make(map[string][]string, len(snap.Controls))
	collapsed := make(map[string][]taxonomy.Category, len(snap.Controls))

	for _, ctl := range snap.Controls {
		var known []string
		for _, id := range snap.ResolvedComponents(ctl.ID) {
			if _, ok := snap.Component(id); ok {
				known = append(known, id)
			}
		}
		collapsed[ctl.ID], residuals[ctl.ID] = collapseCategories(snap, known)
	}

	clusters := findClusters(snap, residuals)

	memberOf := make(map[string]map[string]string) // controlID -> componentID -> clusterID
	for _, cl := range clusters {
		for _, ctlID := range cl.Controls {
			if memberOf[ctlID] == nil {
				memberOf[ctlID] = make(map[string]string)
			}
			for _, m := range cl.Members {
				memberOf[ctlID][m] = cl.ID
			}
		}
	}

	var edges []Edge
	for _, ctl := range snap.Controls {
		var ctlEdges []Edge
		for _, cat := range collapsed[ctl.ID] {
			ctlEdges = append(ctlEdges, Edge{
				Control: ctl.ID,
				Target:  string(cat),
				Kind:    TargetCategory,
				Style:   StyleDefault,
			})
		}
		for _, cl := range clusters {
			if containsID(cl.Controls, ctl.ID) {
				ctlEdges = append(ctlEdges, Edge{
					Control: ctl.ID,
					Target:  cl.ID,
					Kind:    TargetCluster,
					Style:   StyleDefault,
				})
			}
		}
		for _, id := range residuals[ctl.ID] {
			if _, clustered := memberOf[ctl.ID][id]; clustered {
				continue
			}
			ctlEdges = append(ctlEdges, Edge{
				Control: ctl.ID,
				Target:  id,
				Kind:    TargetComponent,
				Style:   StyleDefault,
			})
		}

		if len(ctlEdges) >= MultiEdgeThreshold {
			for i := range ctlEdges {
				ctlEdges[i].Style = i % PaletteSize
			}
		}
		edges = append(edges, ctlEdges...)
	}

	return Result{Edges: edges, Clusters: clusters}
}

// collapseCategories splits a resolved component set into fully covered
// categories and the residual single components. A category is covered
// only when every one of its components is in the set; partial coverage
// keeps the individual edges so the diagram never overstates a
// control's reach.
func collapseCategories(snap *taxonomy.Snapshot, resolved []string) ([]taxonomy.Category, []string) {
	if len(resolved) == 0 {
		return nil, nil
	}

	set := make(map[string]bool, len(resolved))
	for _, id := range resolved {
		set[id] = true
	}

	var cats []taxonomy.Category
	covered := make(map[string]bool)
	for _, cat := range taxonomy.Categories {
		members := snap.ComponentsInCategory(cat)
		if len(members) == 0 {
			continue
		}
		full := true
		for _, m := range members {
			if !set[m.ID] {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		cats = append(cats, cat)
		for _, m := range members {
			covered[m.ID] = true
		}
	}

	var residual []string
	for _, id := range resolved {
		if !covered[id] {
			residual = append(residual, id)
		}
	}
	return cats, residual
}

// findClusters groups components of one category that are protected by
// the same set of at least two controls. Groups need at least two
// members; single components keep their direct edges.
//
// Cluster ids are content-derived (UUIDv5 over the member list), so
// re-running on unchanged input yields the same ids.
func findClusters(snap *taxonomy.Snapshot, residuals map[string][]string) []Cluster {
	targetedBy := make(map[string][]string) // componentID -> control IDs, declaration order
	for _, ctl := range snap.Controls {
		for _, id := range residuals[ctl.ID] {
			targetedBy[id] = append(targetedBy[id], ctl.ID)
		}
	}

	type group struct {
		category taxonomy.Category
		controls []string
		members  []string
	}
	var groups []*group
	index := make(map[string]*group)

	for _, comp := range snap.Components {
		controls := targetedBy[comp.ID]
		if len(controls) < 2 {
			continue
		}
		key := string(comp.Category) + "\x00" + strings.Join(controls, "\x01")
		g, ok := index[key]
		if !ok {
			g = &group{category: comp.Category, controls: controls}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, comp.ID)
	}

	var clusters []Cluster
	for _, g := range groups {
		if len(g.members) < 2 {
			continue
		}
		clusters = append(clusters, Cluster{
			ID:       clusterID(g.members),
			Category: g.category,
			Members:  g.members,
			Controls: g.controls,
		})
	}
	return clusters
}

// clusterID derives a stable identifier from the member list.
func clusterID(members []string) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(members, "\n")))
	return "shared-" + id.String()[:8]
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
