package validate

import (
	"fmt"

	"github.com/riskmap/riskmap/pkg/taxonomy"
)

// CrossReferences checks the control/risk mapping and every reference
// into other entity sets.
//
// The control/risk relation must be mirrored from both sides, with one
// asymmetry: a control covering every risk implicitly (risks: all) must
// NOT be repeated in any risk's controls list, so the implicit and the
// explicit mappings stay distinguishable. Framework citations must
// respect the framework's applicableTo set.
//
// Like Edges, the pass collects every violation instead of stopping at
// the first one.
func CrossReferences(snap *taxonomy.Snapshot) Diagnostics {
	var ds Diagnostics

	for _, ctl := range snap.Controls {
		ds = append(ds, controlRefs(snap, ctl)...)
	}
	for _, risk := range snap.Risks {
		ds = append(ds, riskRefs(snap, risk)...)
	}

	return ds
}

func controlRefs(snap *taxonomy.Snapshot, ctl *taxonomy.Control) Diagnostics {
	var ds Diagnostics

	if ctl.Components.IsExplicit() {
		for _, id := range ctl.Components.IDs {
			if _, ok := snap.Component(id); !ok {
				ds = append(ds, Diagnostic{
					Kind:    KindCrossReference,
					Entity:  ctl.ID,
					Target:  id,
					Message: fmt.Sprintf("control %q maps to unknown component %q", ctl.ID, id),
				})
			}
		}
	}

	if ctl.Risks.IsExplicit() {
		for _, id := range ctl.Risks.IDs {
			risk, ok := snap.Risk(id)
			if !ok {
				ds = append(ds, Diagnostic{
					Kind:    KindCrossReference,
					Entity:  ctl.ID,
					Target:  id,
					Message: fmt.Sprintf("control %q addresses unknown risk %q", ctl.ID, id),
				})
				continue
			}
			if !contains(risk.Controls, ctl.ID) {
				ds = append(ds, Diagnostic{
					Kind:    KindCrossReference,
					Entity:  ctl.ID,
					Target:  id,
					Message: fmt.Sprintf("control %q addresses risk %q, but %q does not list it as a control", ctl.ID, id, id),
				})
			}
		}
	}

	for _, id := range ctl.Personas {
		if _, ok := snap.Persona(id); !ok {
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  ctl.ID,
				Target:  id,
				Message: fmt.Sprintf("control %q names unknown persona %q", ctl.ID, id),
			})
		}
	}

	ds = append(ds, frameworkRefs(snap, ctl.ID, "control", taxonomy.EntityControls, ctl.Frameworks)...)
	return ds
}

func riskRefs(snap *taxonomy.Snapshot, risk *taxonomy.Risk) Diagnostics {
	var ds Diagnostics

	for _, id := range risk.Controls {
		ctl, ok := snap.Control(id)
		if !ok {
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  risk.ID,
				Target:  id,
				Message: fmt.Sprintf("risk %q lists unknown control %q", risk.ID, id),
			})
			continue
		}
		switch {
		case ctl.Risks.IsAll():
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  risk.ID,
				Target:  id,
				Message: fmt.Sprintf("control %q covers every risk implicitly; risk %q must not list it explicitly", id, risk.ID),
			})
		case ctl.Risks.IsNone():
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  risk.ID,
				Target:  id,
				Message: fmt.Sprintf("risk %q lists control %q, but %q addresses no risks", risk.ID, id, id),
			})
		case !contains(ctl.Risks.IDs, risk.ID):
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  risk.ID,
				Target:  id,
				Message: fmt.Sprintf("risk %q lists control %q, but %q does not address it", risk.ID, id, id),
			})
		}
	}

	ds = append(ds, frameworkRefs(snap, risk.ID, "risk", taxonomy.EntityRisks, risk.Frameworks)...)
	return ds
}

func frameworkRefs(snap *taxonomy.Snapshot, entityID, entityKind string, entityType taxonomy.EntityType, refs []taxonomy.FrameworkRef) Diagnostics {
	var ds Diagnostics

	for _, ref := range refs {
		fw, ok := snap.Framework(ref.Framework)
		if !ok {
			ds = append(ds, Diagnostic{
				Kind:    KindCrossReference,
				Entity:  entityID,
				Target:  ref.Framework,
				Message: fmt.Sprintf("%s %q cites unknown framework %q", entityKind, entityID, ref.Framework),
			})
			continue
		}
		if !fw.Applicable(entityType) {
			ds = append(ds, Diagnostic{
				Kind:    KindApplicability,
				Entity:  entityID,
				Target:  ref.Framework,
				Message: fmt.Sprintf("%s %q cites framework %q, which applies to %v, not %s", entityKind, entityID, ref.Framework, fw.ApplicableTo, entityType),
			})
		}
	}

	return ds
}
