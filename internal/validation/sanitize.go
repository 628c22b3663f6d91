package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user or model supplied text
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// SanitizeAndValidate sanitizes input and rejects it when nothing is left
func SanitizeAndValidate(field, input string, max int) (string, error) {
	clean := SanitizeText(input)
	if err := ValidateLength(field, clean, max); err != nil {
		return "", err
	}
	return clean, nil
}
