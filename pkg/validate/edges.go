package validate

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// Edges checks that every declared component edge has its mirror on the
// target component: A listing B under "to" requires B to list A under
// "from", and vice versa. Edges naming unknown components and isolated
// components are reported too. The pass visits components in
// declaration order and never stops early, so the returned list names
// every inconsistency in the snapshot.
func Edges(snap *taxonomy.Snapshot, opts Options) Diagnostics {
	var ds Diagnostics

	for _, c := range snap.Components {
		for _, to := range c.Edges.To {
			target, ok := snap.Component(to)
			if !ok {
				ds = append(ds, Diagnostic{
					Kind:    KindStructural,
					Entity:  c.ID,
					Target:  to,
					Message: fmt.Sprintf("component %q declares an outgoing edge to unknown component %q", c.ID, to),
				})
				continue
			}
			if !contains(target.Edges.From, c.ID) {
				ds = append(ds, Diagnostic{
					Kind:    KindStructural,
					Entity:  c.ID,
					Target:  to,
					Message: fmt.Sprintf("component %q declares an outgoing edge to %q, but %q does not list it as incoming", c.ID, to, to),
				})
			}
		}

		for _, from := range c.Edges.From {
			source, ok := snap.Component(from)
			if !ok {
				ds = append(ds, Diagnostic{
					Kind:    KindStructural,
					Entity:  c.ID,
					Target:  from,
					Message: fmt.Sprintf("component %q declares an incoming edge from unknown component %q", c.ID, from),
				})
				continue
			}
			if !contains(source.Edges.To, c.ID) {
				ds = append(ds, Diagnostic{
					Kind:    KindStructural,
					Entity:  c.ID,
					Target:  from,
					Message: fmt.Sprintf("component %q declares an incoming edge from %q, but %q does not list it as outgoing", c.ID, from, from),
				})
			}
		}

		// A component with no edges of its own is isolated only when no
		// other component references it either.
		if !opts.AllowIsolated && c.Isolated() && !snap.Referenced(c.ID) {
			ds = append(ds, Diagnostic{
				Kind:    KindStructural,
				Entity:  c.ID,
				Message: fmt.Sprintf("component %q has no edges and is not referenced by any other component", c.ID),
			})
		}
	}

	return ds
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
