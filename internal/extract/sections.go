package extract

// Sections holds the three logical fields located on a detail page. The
// ingredients fragment is kept raw for the card parser; the other two are
// normalized display text.
type Sections struct {
	KeyInformation      string
	HowToUse            string
	IngredientsFragment string

	// Rule names that produced each field, for debug reporting. Empty when
	// the field was not found.
	KeyInformationRule string
	HowToUseRule       string
	IngredientsRule    string
}

// Accordion sections are anchored on a stable heading phrase followed by a
// structural marker. Templates differ between storefront themes, so each
// field carries a cascade from most to least specific.
var keyInformationRules = []Rule{
	captureRule("summary-accordion-content",
		`(?is)<summary[^>]*>.*?Key information.*?</summary>\s*<div[^>]*class="accordion__content[^"]*"[^>]*>(.*?)</div>`),
	captureRule("heading-details",
		`(?is)Key information.*?</h2>.*?</summary>\s*<div[^>]*>(.*?)</div>\s*</details>`),
	captureRule("summary-div",
		`(?is)Key information.*?</summary>\s*<div[^>]*>(.*?)</div>`),
}

var howToUseRules = []Rule{
	captureRule("summary-accordion-content",
		`(?is)<summary[^>]*>.*?How to use.*?</summary>\s*<div[^>]*class="accordion__content[^"]*"[^>]*>(.*?)</div>`),
	captureRule("heading-details",
		`(?is)How to use.*?</h2>.*?</summary>\s*<div[^>]*>(.*?)</div>\s*</details>`),
	captureRule("summary-div",
		`(?is)How to use.*?</summary>\s*<div[^>]*>(.*?)</div>`),
}

var ingredientsRules = []Rule{
	captureRule("summary-details",
		`(?is)<summary[^>]*>.*?Ingredients.*?</summary>\s*<div[^>]*>(.*?)</details>`),
	captureRule("heading-details",
		`(?is)Ingredients.*?</h2>.*?</summary>\s*<div[^>]*>(.*?)</details>`),
	spanRule("summary-to-anchor",
		`(?is)Ingredients.*?</summary>\s*<div[^>]*>`,
		`(?i)<a href=`),
}

// ExtractSections locates the key information, how-to-use and raw ingredients
// sections in a detail page. Missing sections come back empty; that is the
// designed degraded-output path, not an error.
func ExtractSections(html string) Sections {
	var s Sections
	if html == "" {
		return s
	}
	if v, rule, ok := firstMatch(keyInformationRules, html); ok {
		s.KeyInformation = Normalize(v)
		s.KeyInformationRule = rule
	}
	if v, rule, ok := firstMatch(howToUseRules, html); ok {
		s.HowToUse = Normalize(v)
		s.HowToUseRule = rule
	}
	if v, rule, ok := firstMatch(ingredientsRules, html); ok {
		s.IngredientsFragment = v
		s.IngredientsRule = rule
	}
	return s
}
