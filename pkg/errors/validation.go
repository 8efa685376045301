package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// entityIDRegex matches valid entity ids. Ids become node identifiers
// in generated diagram text, so the alphabet is intentionally
// conservative: lowercase slugs only.
var entityIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateEntityID validates an entity id for safety and correctness.
// It rejects ids that could break or inject into generated diagram
// text.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Lowercase slug characters only ([a-z0-9_-])
//   - Maximum length of 128 characters
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTaxonomy, "entity id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidTaxonomy, "entity id too long (max 128 characters): %q", id)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTaxonomy, "entity id contains invalid control characters")
		}
	}

	if !entityIDRegex.MatchString(id) {
		return New(ErrCodeInvalidTaxonomy, "invalid entity id (want lowercase slug): %q", id)
	}

	return nil
}

// ValidateSectionRef validates a framework section reference, e.g. a
// technique id or a clause number. Sections appear verbatim in reports
// and diagram tooltips.
func ValidateSectionRef(section string) error {
	if strings.TrimSpace(section) == "" {
		return New(ErrCodeInvalidTaxonomy, "framework section cannot be empty")
	}

	if len(section) > 128 {
		return New(ErrCodeInvalidTaxonomy, "framework section too long (max 128 characters): %q", section)
	}

	for _, r := range section {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTaxonomy, "framework section contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
