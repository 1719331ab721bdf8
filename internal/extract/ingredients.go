package extract

import (
	"regexp"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
)

// cardSplitter cuts the raw ingredients fragment into per-card chunks. A
// chunk runs from one marker occurrence to the next, clipped at the
// terminator when the template closes the card list with trailing markup.
type cardSplitter struct {
	name       string
	marker     *regexp.Regexp
	terminator *regexp.Regexp
}

func (s cardSplitter) split(fragment string) []string {
	locs := s.marker.FindAllStringIndex(fragment, -1)
	if len(locs) == 0 {
		return nil
	}
	chunks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(fragment)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := fragment[loc[0]:end]
		if s.terminator != nil {
			if t := s.terminator.FindStringIndex(chunk); t != nil {
				chunk = chunk[:t[0]]
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Splitters are tried in order; the first one that yields at least one chunk
// wins for the whole fragment.
var cardSplitters = []cardSplitter{
	{
		name:       "ingredient-card-div",
		marker:     regexp.MustCompile(`<div class="ingredient-card"[^>]*>`),
		terminator: regexp.MustCompile(`</div>\s*<div class="twcss-text-black`),
	},
	{
		name:       "ingredient-card-plain",
		marker:     regexp.MustCompile(`<div class="ingredient-card">`),
		terminator: regexp.MustCompile(`</div>\s*</div>`),
	},
	{
		name:       "card-title-heading",
		marker:     regexp.MustCompile(`<h2 class="ingredient-card__title[^"]*"[^>]*>`),
		terminator: regexp.MustCompile(`<div class="twcss-text-black`),
	},
}

var cardNameRules = []Rule{
	captureRule("card-title-class",
		`(?s)<h2[^>]*class="ingredient-card__title[^"]*"[^>]*>(.*?)</h2>`),
	captureRule("any-h2",
		`(?s)<h2[^>]*>(.*?)</h2>`),
}

var cardDescriptionRules = []Rule{
	captureRule("description-div",
		`(?s)<div class="ingredient-card__description"[^>]*>(.*?)</div>`),
	spanRule("description-to-benefits",
		`(?s)ingredient-card__description[^>]*>`,
		`<div class="ingredients-card__benefits"|</div>`),
}

var cardBenefitsRules = []Rule{
	captureRule("benefits-div",
		`(?s)<div class="ingredients-card__benefits">.*?<div[^>]*>(.*?)</div>`),
	captureRule("benefits-label-div",
		`(?s)Benefits:.*?<div[^>]*>(.*?)</div>`),
	captureRule("benefits-label-paragraph",
		`(?s)Benefits:</h4>.*?<p>(.*?)</p>`),
}

var allIngredientsRules = []Rule{
	captureRule("paragraph-span",
		`(?is)All ingredients.*?<p><span[^>]*>(.*?)</span></p>`),
	captureRule("span",
		`(?is)All ingredients.*?<span[^>]*>(.*?)</span>`),
	captureRule("paragraph",
		`(?is)All ingredients.*?<p>(.*?)</p>`),
	captureRule("twcss-label-paragraph",
		`(?is)<div class="twcss-text-black twcss-font-bold twcss-py-4">All ingredients</div>\s*<p[^>]*>(.*?)</p>`),
}

// ParseIngredients splits the raw ingredients fragment into ingredient cards
// and resolves the "all ingredients" summary. Chunks without a resolvable
// name are discarded; every card returned has a non-empty Name. Card order
// follows document order.
func ParseIngredients(fragment string) ([]catalog.IngredientCard, string) {
	if fragment == "" {
		return nil, ""
	}

	var chunks []string
	for _, s := range cardSplitters {
		if chunks = s.split(fragment); len(chunks) > 0 {
			break
		}
	}

	var cards []catalog.IngredientCard
	for _, chunk := range chunks {
		name, _, ok := firstMatch(cardNameRules, chunk)
		if !ok {
			continue
		}
		cleanName := Normalize(name)
		if cleanName == "" {
			continue
		}
		card := catalog.IngredientCard{Name: cleanName}
		if v, _, matched := firstMatch(cardDescriptionRules, chunk); matched {
			card.Description = Normalize(v)
		}
		if v, _, matched := firstMatch(cardBenefitsRules, chunk); matched {
			card.Benefits = Normalize(v)
		}
		cards = append(cards, card)
	}

	all := ""
	if v, _, ok := firstMatch(allIngredientsRules, fragment); ok {
		all = Normalize(v)
	}
	return cards, all
}

// Content runs the full extraction pipeline over a detail page. An empty or
// unfetchable page yields the all-empty zero value.
func Content(html string) catalog.ExtractedContent {
	sections := ExtractSections(html)
	cards, all := ParseIngredients(sections.IngredientsFragment)
	return catalog.ExtractedContent{
		KeyInformation: sections.KeyInformation,
		HowToUse:       sections.HowToUse,
		KeyIngredients: cards,
		AllIngredients: all,
	}
}
