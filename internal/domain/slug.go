package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugSeparatorRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify folds diacritics and reduces a title to lowercase dash-separated words
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = slugSeparatorRegex.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}
