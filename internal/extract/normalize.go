// Package extract locates semantically named sections inside loosely
// structured product detail pages. Section boundaries vary between storefront
// templates, so every field is resolved through an ordered cascade of
// candidate rules and degrades to an empty value when nothing matches.
package extract

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// zeroWidthReplacer drops the zero-width code points that storefront editors
// tend to paste into copy: U+200B, U+200C and U+200D.
var zeroWidthReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
)

// Normalize turns raw HTML-ish text into clean display text: markup removed,
// entities decoded, whitespace collapsed, zero-width characters stripped.
// Empty input yields an empty string; Normalize never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(raw, "")
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	text = zeroWidthReplacer.Replace(text)
	return strings.TrimSpace(text)
}
