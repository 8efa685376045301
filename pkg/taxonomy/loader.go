package taxonomy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
)

// Source file names inside a taxonomy directory. Components are
// required; the other files may be absent, yielding empty entity sets.
const (
	FileComponents = "components.yaml"
	FileControls   = "controls.yaml"
	FileRisks      = "risks.yaml"
	FileFrameworks = "frameworks.yaml"
	FilePersonas   = "personas.yaml"
)

type componentsFile struct {
	Components []*Component `yaml:"components"`
}

type controlsFile struct {
	Controls []*Control `yaml:"controls"`
}

type risksFile struct {
	Risks []*Risk `yaml:"risks"`
}

type frameworksFile struct {
	Frameworks []*Framework `yaml:"frameworks"`
}

type personasFile struct {
	Personas []*Persona `yaml:"personas"`
}

// Load reads a taxonomy directory and builds an immutable snapshot.
//
// The directory must contain components.yaml and may contain
// controls.yaml, risks.yaml, frameworks.yaml, and personas.yaml.
// Each file holds a single list under a key matching its name:
//
//	components:
//	  - id: data-sources
//	    title: Data Sources
//	    category: data
//	    edges:
//	      to: [data-filtering]
//	      from: []
//
// Load returns an error if:
//   - The directory or components.yaml does not exist
//   - A file is not valid YAML or a sentinel field has the wrong shape
//   - An entity id is empty, duplicated, or not a lowercase slug
//   - A component names an unknown category
//   - A framework declares an invalid URL or entity type
//
// Dangling references between entities (an edge to an unknown
// component, a control naming an unknown risk) are NOT load errors:
// the validators report them as diagnostics so that a whole run
// collects every problem at once.
//
// The snapshot's Fingerprint is a content hash over the source files,
// stable across loads of identical content, usable as a cache key.
func Load(dir string) (*Snapshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "taxonomy directory %s", dir)
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}

	hash := sha256.New()
	readFile := func(name string, required bool) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			if required {
				return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "missing %s in %s", name, dir)
			}
			return nil, nil
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTaxonomy, err, "read %s", name)
		}
		fmt.Fprintf(hash, "%s\n", name)
		hash.Write(data)
		return data, nil
	}

	decode := func(name string, data []byte, out any) error {
		if data == nil {
			return nil
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidTaxonomy, err, "parse %s", name)
		}
		return nil
	}

	var (
		comps      componentsFile
		ctrls      controlsFile
		risks      risksFile
		frameworks frameworksFile
		personas   personasFile
	)

	files := []struct {
		name     string
		required bool
		out      any
	}{
		{FileComponents, true, &comps},
		{FileControls, false, &ctrls},
		{FileRisks, false, &risks},
		{FileFrameworks, false, &frameworks},
		{FilePersonas, false, &personas},
	}
	for _, f := range files {
		data, err := readFile(f.name, f.required)
		if err != nil {
			return nil, err
		}
		if err := decode(f.name, data, f.out); err != nil {
			return nil, err
		}
	}

	if err := checkEntities(comps.Components, ctrls.Controls, risks.Risks, frameworks.Frameworks, personas.Personas); err != nil {
		return nil, err
	}

	snap, err := NewSnapshot(comps.Components, ctrls.Controls, risks.Risks, frameworks.Frameworks, personas.Personas)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTaxonomy, err, "index %s", dir)
	}
	snap.Fingerprint = hex.EncodeToString(hash.Sum(nil))
	return snap, nil
}

// checkEntities enforces the per-entity rules the reference validators
// do not cover: id shape, category membership, framework declarations.
func checkEntities(components []*Component, controls []*Control, risks []*Risk, frameworks []*Framework, personas []*Persona) error {
	for _, c := range components {
		if err := apperrors.ValidateEntityID(c.ID); err != nil {
			return fmt.Errorf("component %q: %w", c.ID, err)
		}
		if !c.Category.Valid() {
			return apperrors.New(apperrors.ErrCodeInvalidTaxonomy, "component %q: unknown category %q", c.ID, c.Category)
		}
	}
	for _, c := range controls {
		if err := apperrors.ValidateEntityID(c.ID); err != nil {
			return fmt.Errorf("control %q: %w", c.ID, err)
		}
		if err := checkRefs(c.Frameworks); err != nil {
			return fmt.Errorf("control %q: %w", c.ID, err)
		}
	}
	for _, r := range risks {
		if err := apperrors.ValidateEntityID(r.ID); err != nil {
			return fmt.Errorf("risk %q: %w", r.ID, err)
		}
		if err := checkRefs(r.Frameworks); err != nil {
			return fmt.Errorf("risk %q: %w", r.ID, err)
		}
	}
	for _, f := range frameworks {
		if err := apperrors.ValidateEntityID(f.ID); err != nil {
			return fmt.Errorf("framework %q: %w", f.ID, err)
		}
		if f.URL != "" {
			if err := apperrors.ValidateURL(f.URL); err != nil {
				return fmt.Errorf("framework %q: %w", f.ID, err)
			}
		}
		for _, t := range f.ApplicableTo {
			if !t.Valid() {
				return apperrors.New(apperrors.ErrCodeInvalidTaxonomy, "framework %q: unknown entity type %q", f.ID, t)
			}
		}
	}
	for _, p := range personas {
		if err := apperrors.ValidateEntityID(p.ID); err != nil {
			return fmt.Errorf("persona %q: %w", p.ID, err)
		}
	}
	return nil
}

func checkRefs(refs []FrameworkRef) error {
	for _, ref := range refs {
		if err := apperrors.ValidateEntityID(ref.Framework); err != nil {
			return fmt.Errorf("framework ref %q: %w", ref.Framework, err)
		}
		if ref.Section != "" {
			if err := apperrors.ValidateSectionRef(ref.Section); err != nil {
				return fmt.Errorf("framework ref %q: %w", ref.Framework, err)
			}
		}
	}
	return nil
}
