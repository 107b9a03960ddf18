package openai

import (
	"regexp"
	"strings"
)

var (
	// `{ key":` or `, key":` where the opening quote is missing.
	missingOpenQuoteRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z_ ]*?)(":)`)

	// trailing comma before a closing brace or bracket
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// repairJSON fixes the JSON defects small chat models produce most often:
// keys missing their opening quote and trailing commas. It also strips
// markdown code fences around the object.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	s = missingOpenQuoteRe.ReplaceAllString(s, `$1"$2$3`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	return s
}
