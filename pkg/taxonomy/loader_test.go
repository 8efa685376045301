package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/riskmap/riskmap/pkg/errors"
)

const testComponentsYAML = `components:
  - id: data-sources
    title: Data Sources
    category: data
    edges:
      to: [training-data]
      from: []
  - id: training-data
    title: Training Data
    category: data
    edges:
      to: []
      from: [data-sources]
`

const testControlsYAML = `controls:
  - id: data-management
    title: Training Data Management
    category: governance
    components: all
    risks: [data-poisoning]
    personas: [model-creator]
    frameworks:
      - framework: nist-ai-rmf
        section: GOVERN 1.1
`

const testRisksYAML = `risks:
  - id: data-poisoning
    title: Data Poisoning
    category: integrity
    controls: [data-management]
    frameworks:
      - framework: mitre-atlas
        section: AML.T0020
`

const testFrameworksYAML = `frameworks:
  - id: mitre-atlas
    title: MITRE ATLAS
    url: https://atlas.mitre.org
    applicableTo: [risks]
  - id: nist-ai-rmf
    title: NIST AI RMF
    url: https://www.nist.gov/itl/ai-risk-management-framework
    applicableTo: [controls, risks]
`

const testPersonasYAML = `personas:
  - id: model-creator
    title: Model Creator
`

// writeTaxonomy lays out a taxonomy directory for loader tests.
func writeTaxonomy(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func fullTaxonomy(t *testing.T) string {
	return writeTaxonomy(t, map[string]string{
		FileComponents: testComponentsYAML,
		FileControls:   testControlsYAML,
		FileRisks:      testRisksYAML,
		FileFrameworks: testFrameworksYAML,
		FilePersonas:   testPersonasYAML,
	})
}

func TestLoad(t *testing.T) {
	snap, err := Load(fullTaxonomy(t))
	require.NoError(t, err)

	assert.Len(t, snap.Components, 2)
	assert.Len(t, snap.Controls, 1)

	ctl, ok := snap.Control("data-management")
	require.True(t, ok, "Control(data-management) not found")
	assert.True(t, ctl.Components.IsAll(), "Components sentinel = %v, want all", ctl.Components)
	assert.Len(t, snap.ResolvedComponents("data-management"), 2)

	require.Len(t, ctl.Frameworks, 1)
	assert.Equal(t, "GOVERN 1.1", ctl.Frameworks[0].Section)

	assert.NotEmpty(t, snap.Fingerprint)
}

func TestLoadOptionalFilesAbsent(t *testing.T) {
	dir := writeTaxonomy(t, map[string]string{
		FileComponents: testComponentsYAML,
	})

	snap, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, snap.Components, 2)
	assert.Empty(t, snap.Controls)
	assert.Empty(t, snap.Risks)
}

func TestLoadMissingComponents(t *testing.T) {
	dir := writeTaxonomy(t, map[string]string{
		FileControls: testControlsYAML,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeFileNotFound), "error = %v, want FILE_NOT_FOUND", err)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeFileNotFound), "error = %v, want FILE_NOT_FOUND", err)
}

func TestLoadRejectsBadContent(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			"malformed yaml",
			map[string]string{FileComponents: "components: [\n"},
		},
		{
			"bad sentinel shape",
			map[string]string{
				FileComponents: testComponentsYAML,
				FileControls:   "controls:\n  - id: c1\n    components: everything\n",
			},
		},
		{
			"unknown category",
			map[string]string{FileComponents: "components:\n  - id: a\n    category: storage\n"},
		},
		{
			"uppercase id",
			map[string]string{FileComponents: "components:\n  - id: DataSources\n    category: data\n"},
		},
		{
			"duplicate id",
			map[string]string{FileComponents: "components:\n  - id: a\n    category: data\n  - id: a\n    category: data\n"},
		},
		{
			"bad framework url",
			map[string]string{
				FileComponents: testComponentsYAML,
				FileFrameworks: "frameworks:\n  - id: f1\n    url: ftp://example.com\n",
			},
		},
		{
			"bad entity type",
			map[string]string{
				FileComponents: testComponentsYAML,
				FileFrameworks: "frameworks:\n  - id: f1\n    applicableTo: [gadgets]\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTaxonomy(t, tt.files))
			assert.Error(t, err)
		})
	}
}

func TestLoadFingerprintStable(t *testing.T) {
	files := map[string]string{
		FileComponents: testComponentsYAML,
		FileControls:   testControlsYAML,
	}

	first, err := Load(writeTaxonomy(t, files))
	require.NoError(t, err)
	second, err := Load(writeTaxonomy(t, files))
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint, "identical content must fingerprint identically")

	files[FileControls] = testControlsYAML + "  - id: extra\n    title: Extra\n"
	third, err := Load(writeTaxonomy(t, files))
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint, "changed content must change the fingerprint")
}
