package taxonomy

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category classifies a component by the lifecycle area it belongs to.
// The enumeration is fixed: diagrams group components into one box per
// category, and controls can collapse onto a whole category at once.
type Category string

// Component categories, in canonical display order.
const (
	CategoryData           Category = "data"
	CategoryInfrastructure Category = "infrastructure"
	CategoryModel          Category = "model"
	CategoryApplication    Category = "application"
)

// Categories lists all component categories in canonical display order.
// Renderers and collapse passes iterate this slice so that output order
// never depends on map iteration.
var Categories = []Category{
	CategoryData,
	CategoryInfrastructure,
	CategoryModel,
	CategoryApplication,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryData, CategoryInfrastructure, CategoryModel, CategoryApplication:
		return true
	}
	return false
}

// Title returns the human-readable form of the category name.
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// EntityType names a class of entities an external framework may be
// cited from. Frameworks declare the types they apply to; citing a
// framework from any other type is an applicability violation.
type EntityType string

// Entity types usable in a framework's applicableTo set.
const (
	EntityComponents EntityType = "components"
	EntityControls   EntityType = "controls"
	EntityRisks      EntityType = "risks"
	EntityPersonas   EntityType = "personas"
)

// Valid reports whether t is one of the declared entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityComponents, EntityControls, EntityRisks, EntityPersonas:
		return true
	}
	return false
}

// SentinelKind discriminates the three forms a sentinel id list can take.
type SentinelKind int

const (
	// KindNone means no ids at all. It is the zero value, so an absent
	// YAML field decodes to it.
	KindNone SentinelKind = iota
	// KindExplicit means the sentinel carries a literal id list.
	KindExplicit
	// KindAll means every id in the universe the field ranges over.
	KindAll
)

// String returns the lowercase name of the kind ("none", "explicit", "all").
func (k SentinelKind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindExplicit:
		return "explicit"
	default:
		return "none"
	}
}

// Sentinel is an id-list field that may instead mean "every id in the
// universe" (All) or "no ids" (None). The magic strings "all" and
// "none" exist only in the YAML source: they become tagged variants at
// decode time and are expanded to concrete id sets by [Sentinel.Resolve]
// before any validation or rendering runs.
type Sentinel struct {
	Kind SentinelKind
	IDs  []string
}

// Explicit returns a sentinel carrying the given literal id list.
func Explicit(ids ...string) Sentinel {
	return Sentinel{Kind: KindExplicit, IDs: ids}
}

// All returns the sentinel meaning "every id in the universe".
func All() Sentinel { return Sentinel{Kind: KindAll} }

// None returns the sentinel meaning "no ids".
func None() Sentinel { return Sentinel{Kind: KindNone} }

// IsAll reports whether the sentinel means "every id in the universe".
func (s Sentinel) IsAll() bool { return s.Kind == KindAll }

// IsNone reports whether the sentinel means "no ids".
func (s Sentinel) IsNone() bool { return s.Kind == KindNone }

// IsExplicit reports whether the sentinel carries a literal id list.
func (s Sentinel) IsExplicit() bool { return s.Kind == KindExplicit }

// Resolve expands the sentinel against the given universe: the universe
// itself for All, nothing for None, and a copy of the literal list
// otherwise. Explicit ids are returned verbatim even when they do not
// appear in the universe, so that reference validators see them.
func (s Sentinel) Resolve(universe []string) []string {
	switch s.Kind {
	case KindAll:
		out := make([]string, len(universe))
		copy(out, universe)
		return out
	case KindNone:
		return nil
	default:
		out := make([]string, len(s.IDs))
		copy(out, s.IDs)
		return out
	}
}

// String renders the sentinel for log and diagnostic messages.
func (s Sentinel) String() string {
	switch s.Kind {
	case KindAll:
		return "all"
	case KindNone:
		return "none"
	default:
		return fmt.Sprintf("%v", s.IDs)
	}
}

// UnmarshalYAML decodes either the scalar strings "all"/"none" or a
// plain id sequence. Any other shape is a decode error; the magic
// strings never survive past this point.
func (s *Sentinel) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch strings.ToLower(strings.TrimSpace(value.Value)) {
		case "all":
			*s = All()
			return nil
		case "none", "":
			*s = None()
			return nil
		}
		return fmt.Errorf("line %d: expected id list, %q, or %q, got scalar %q", value.Line, "all", "none", value.Value)
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return err
		}
		*s = Explicit(ids...)
		return nil
	}
	return fmt.Errorf("line %d: expected id list, %q, or %q", value.Line, "all", "none")
}

// MarshalYAML renders the sentinel back to its source form.
func (s Sentinel) MarshalYAML() (any, error) {
	switch s.Kind {
	case KindAll:
		return "all", nil
	case KindNone:
		return "none", nil
	default:
		return s.IDs, nil
	}
}

// Edges holds a component's declared relations in both directions.
// Every entry must be mirrored on the target component: if A lists B
// under To, B must list A under From. The edge validator enforces this.
type Edges struct {
	To   []string `yaml:"to"`
	From []string `yaml:"from"`
}

// Component is one stage or artifact in the modeled system lifecycle,
// for example a data store, a serving endpoint, or the application
// surface around the model.
type Component struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Category Category `yaml:"category"`
	Edges    Edges    `yaml:"edges"`
}

// Isolated reports whether the component declares no edges in either
// direction. Whether that is a violation depends on the validation
// options and on whether any other component references it.
func (c *Component) Isolated() bool {
	return len(c.Edges.To) == 0 && len(c.Edges.From) == 0
}

// Control is a named mitigation. It maps onto the components it
// protects (possibly "all" of them) and the risks it addresses, and may
// cite external frameworks and the personas responsible for it.
type Control struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Category   string         `yaml:"category"`
	Components Sentinel       `yaml:"components"`
	Risks      Sentinel       `yaml:"risks"`
	Personas   []string       `yaml:"personas"`
	Frameworks []FrameworkRef `yaml:"frameworks"`
}

// Risk is a named threat. Its controls list is always explicit and must
// mirror each named control's risks list; controls covering every risk
// implicitly (risks: all) must not appear here.
type Risk struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Category   string         `yaml:"category"`
	Controls   []string       `yaml:"controls"`
	Frameworks []FrameworkRef `yaml:"frameworks"`
}

// Persona is a role lens over the map: which part of the lifecycle a
// reader owns, and therefore which controls they should care about.
type Persona struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Framework is an external standard, taxonomy, or regulation that
// controls and risks can cite. ApplicableTo restricts which entity
// types may make such citations.
type Framework struct {
	ID           string       `yaml:"id"`
	Title        string       `yaml:"title"`
	URL          string       `yaml:"url"`
	ApplicableTo []EntityType `yaml:"applicableTo"`
}

// Applicable reports whether entities of type t may cite the framework.
func (f *Framework) Applicable(t EntityType) bool {
	for _, a := range f.ApplicableTo {
		if a == t {
			return true
		}
	}
	return false
}

// FrameworkRef cites a section of an external framework from a control
// or risk, e.g. a MITRE ATLAS technique id or an ISO clause.
type FrameworkRef struct {
	Framework string `yaml:"framework"`
	Section   string `yaml:"section"`
}
