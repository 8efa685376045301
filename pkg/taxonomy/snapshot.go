package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// Snapshot construction errors.
var (
	// ErrInvalidEntityID indicates an empty or whitespace-only entity id.
	ErrInvalidEntityID = errors.New("taxonomy: invalid entity id")

	// ErrDuplicateEntityID indicates two entities of the same type
	// sharing an id.
	ErrDuplicateEntityID = errors.New("taxonomy: duplicate entity id")
)

// Snapshot is one immutable load of the whole knowledge graph. It keeps
// every entity slice in declaration order (the order ids appeared in
// the source files), which downstream validators and renderers use as
// their only iteration order, and it resolves every sentinel field
// exactly once at construction. Entities must not be mutated after the
// snapshot is built.
type Snapshot struct {
	Components []*Component
	Controls   []*Control
	Risks      []*Risk
	Frameworks []*Framework
	Personas   []*Persona

	// Fingerprint is a content hash of the source files, set by the
	// loader. Empty for snapshots assembled in memory.
	Fingerprint string

	componentsByID map[string]*Component
	controlsByID   map[string]*Control
	risksByID      map[string]*Risk
	frameworksByID map[string]*Framework
	personasByID   map[string]*Persona

	// Sentinel resolutions, computed once at construction.
	controlComponents map[string][]string
	controlRisks      map[string][]string
}

// NewSnapshot indexes the given entities and resolves their sentinel
// fields against the declared universes. It fails on empty or duplicate
// ids within an entity type; referential problems between entities are
// left for the validators, which report them as diagnostics rather than
// errors.
func NewSnapshot(components []*Component, controls []*Control, risks []*Risk, frameworks []*Framework, personas []*Persona) (*Snapshot, error) {
	s := &Snapshot{
		Components: components,
		Controls:   controls,
		Risks:      risks,
		Frameworks: frameworks,
		Personas:   personas,

		componentsByID: make(map[string]*Component, len(components)),
		controlsByID:   make(map[string]*Control, len(controls)),
		risksByID:      make(map[string]*Risk, len(risks)),
		frameworksByID: make(map[string]*Framework, len(frameworks)),
		personasByID:   make(map[string]*Persona, len(personas)),

		controlComponents: make(map[string][]string, len(controls)),
		controlRisks:      make(map[string][]string, len(controls)),
	}

	for _, c := range components {
		if err := index(s.componentsByID, c.ID, c, "component"); err != nil {
			return nil, err
		}
	}
	for _, c := range controls {
		if err := index(s.controlsByID, c.ID, c, "control"); err != nil {
			return nil, err
		}
	}
	for _, r := range risks {
		if err := index(s.risksByID, r.ID, r, "risk"); err != nil {
			return nil, err
		}
	}
	for _, f := range frameworks {
		if err := index(s.frameworksByID, f.ID, f, "framework"); err != nil {
			return nil, err
		}
	}
	for _, p := range personas {
		if err := index(s.personasByID, p.ID, p, "persona"); err != nil {
			return nil, err
		}
	}

	componentIDs := s.ComponentIDs()
	riskIDs := s.RiskIDs()
	for _, c := range controls {
		s.controlComponents[c.ID] = c.Components.Resolve(componentIDs)
		s.controlRisks[c.ID] = c.Risks.Resolve(riskIDs)
	}
	return s, nil
}

func index[T any](m map[string]T, id string, v T, what string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s with empty id", ErrInvalidEntityID, what)
	}
	if _, exists := m[id]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateEntityID, what, id)
	}
	m[id] = v
	return nil
}

// Component returns the component with the given id.
func (s *Snapshot) Component(id string) (*Component, bool) {
	c, ok := s.componentsByID[id]
	return c, ok
}

// Control returns the control with the given id.
func (s *Snapshot) Control(id string) (*Control, bool) {
	c, ok := s.controlsByID[id]
	return c, ok
}

// Risk returns the risk with the given id.
func (s *Snapshot) Risk(id string) (*Risk, bool) {
	r, ok := s.risksByID[id]
	return r, ok
}

// Framework returns the framework with the given id.
func (s *Snapshot) Framework(id string) (*Framework, bool) {
	f, ok := s.frameworksByID[id]
	return f, ok
}

// Persona returns the persona with the given id.
func (s *Snapshot) Persona(id string) (*Persona, bool) {
	p, ok := s.personasByID[id]
	return p, ok
}

// ComponentIDs returns all component ids in declaration order. This is
// the universe that component sentinels resolve against.
func (s *Snapshot) ComponentIDs() []string {
	ids := make([]string, len(s.Components))
	for i, c := range s.Components {
		ids[i] = c.ID
	}
	return ids
}

// ControlIDs returns all control ids in declaration order.
func (s *Snapshot) ControlIDs() []string {
	ids := make([]string, len(s.Controls))
	for i, c := range s.Controls {
		ids[i] = c.ID
	}
	return ids
}

// RiskIDs returns all risk ids in declaration order. This is the
// universe that risk sentinels resolve against.
func (s *Snapshot) RiskIDs() []string {
	ids := make([]string, len(s.Risks))
	for i, r := range s.Risks {
		ids[i] = r.ID
	}
	return ids
}

// ComponentsInCategory returns the components of one category in
// declaration order.
func (s *Snapshot) ComponentsInCategory(cat Category) []*Component {
	var out []*Component
	for _, c := range s.Components {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

// ResolvedComponents returns the component ids a control maps onto,
// with any sentinel already expanded. The result is computed once at
// snapshot construction; callers must not mutate it.
func (s *Snapshot) ResolvedComponents(controlID string) []string {
	return s.controlComponents[controlID]
}

// ResolvedRisks returns the risk ids a control addresses, with any
// sentinel already expanded. The result is computed once at snapshot
// construction; callers must not mutate it.
func (s *Snapshot) ResolvedRisks(controlID string) []string {
	return s.controlRisks[controlID]
}

// Referenced reports whether any component other than id declares an
// edge to or from id. Components that declare nothing themselves but
// are referenced by others are dangling rather than isolated.
func (s *Snapshot) Referenced(id string) bool {
	for _, c := range s.Components {
		if c.ID == id {
			continue
		}
		for _, to := range c.Edges.To {
			if to == id {
				return true
			}
		}
		for _, from := range c.Edges.From {
			if from == id {
				return true
			}
		}
	}
	return false
}
