// Package extract detects labeled fields, dates and money amounts in
// unstructured document text. The rules are heuristic and tuned for
// recall across many document layouts; extracted values are not
// validated (a matched "date" need not be calendar-valid).
package extract

import (
	"regexp"
	"strings"

	"papyr/internal/domain"
)

// Fixed keys for the aggregate matches.
const (
	KeyExtractedDates   = "extracted_dates"
	KeyExtractedAmounts = "extracted_amounts"
)

// Labeled-field patterns, applied in order over the whole text. Later
// patterns overwrite earlier ones on key collision, so the order
// colon, equals, line-separated is a precedence rule, not cosmetics.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Z][A-Za-z ]+):[ \t]*([^\n]+)`),        // Label: value
	regexp.MustCompile(`([A-Z][A-Za-z ]+?)[ \t]*=[ \t]*([^\n]+)`), // Label = value
	regexp.MustCompile(`\n([A-Z][A-Za-z ]+)[ \t]+([^\n]+)`),       // Label value, at a line boundary
}

var (
	datePattern   = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	amountPattern = regexp.MustCompile(`\$\d+\.\d{2}`)
)

// Fields runs the pattern battery over text and returns the detected
// key-value mapping. Pure function: identical text yields an
// identical mapping.
func Fields(text string) domain.FieldMap {
	pairs := domain.FieldMap{}

	for _, p := range labelPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			key := strings.TrimSpace(m[1])
			value := strings.TrimSpace(m[2])
			if key != "" && value != "" {
				pairs[key] = domain.TextValue(value)
			}
		}
	}

	if dates := datePattern.FindAllString(text, -1); len(dates) > 0 {
		pairs[KeyExtractedDates] = domain.ListValue(dates)
	}
	if amounts := amountPattern.FindAllString(text, -1); len(amounts) > 0 {
		pairs[KeyExtractedAmounts] = domain.ListValue(amounts)
	}

	return pairs
}
