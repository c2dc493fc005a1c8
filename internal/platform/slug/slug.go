package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)
	folding     = strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a", "ä", "a",
		"é", "e", "ê", "e", "è", "e",
		"í", "i", "î", "i",
		"ó", "o", "ô", "o", "õ", "o", "ö", "o",
		"ú", "u", "ü", "u",
		"ç", "c", "ñ", "n",
	)
)

// Make lowercases input, folds Portuguese accents and joins the remaining
// alphanumeric runs with dashes. Empty results become fallback.
func Make(input, fallback string) string {
	s := folding.Replace(strings.ToLower(strings.TrimSpace(input)))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}
