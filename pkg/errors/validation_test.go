package errors

import (
	"strings"
	"testing"
)

func TestValidateEntityID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "application", false},
		{"valid with dash", "data-sources", false},
		{"valid with underscore", "model_serving", false},
		{"valid with digits", "owasp-llm-top10", false},
		{"valid single char", "a", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"uppercase", "DataSources", true},
		{"leading dash", "-data", true},
		{"space", "data sources", true},
		{"slash", "data/sources", true},
		{"dot", "data.sources", true},
		{"quote", `data"sources`, true},
		{"bracket", "data[sources]", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSectionRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"technique id", "AML.T0051", false},
		{"clause number", "8.2.3", false},
		{"named section", "GOVERN 1.1", false},

		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("x", 200), true},
		{"newline", "AML\nT0051", true},
		{"control char", "AML\x01T0051", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSectionRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSectionRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
