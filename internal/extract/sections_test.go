package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accordionPage = `
<html><body>
<details class="accordion">
  <summary class="accordion__summary"><h2>Key information</h2></summary>
  <div class="accordion__content rte">
    <p>Hydrating &amp; gentle serum for daily use.</p>
  </div>
</details>
<details class="accordion">
  <summary>How to use</summary>
  <div>Apply twice daily to clean skin.</div>
</details>
</body></html>`

func TestExtractSectionsAccordionTemplate(t *testing.T) {
	t.Parallel()

	s := ExtractSections(accordionPage)

	assert.Equal(t, "Hydrating & gentle serum for daily use.", s.KeyInformation)
	assert.Equal(t, "summary-accordion-content", s.KeyInformationRule)
	assert.Equal(t, "Apply twice daily to clean skin.", s.HowToUse)
	assert.Equal(t, "summary-div", s.HowToUseRule)
}

func TestExtractSectionsFallbackTemplate(t *testing.T) {
	t.Parallel()

	// No accordion__content class anywhere, so only the loosest candidate
	// can match.
	page := `<details><summary>Key information</summary>
<div class="rte"><span>Fragrance free.</span></div></details>`

	s := ExtractSections(page)
	assert.Equal(t, "Fragrance free.", s.KeyInformation)
	assert.Equal(t, "summary-div", s.KeyInformationRule)
}

func TestExtractSectionsCaseInsensitiveAcrossLines(t *testing.T) {
	t.Parallel()

	page := "<details><summary>\n<h3>KEY INFORMATION</h3>\n</summary>\n<div>\nParaben free.\n</div></details>"

	s := ExtractSections(page)
	assert.Equal(t, "Paraben free.", s.KeyInformation)
}

func TestExtractSectionsMissingMarkers(t *testing.T) {
	t.Parallel()

	s := ExtractSections(`<html><body><p>Nothing recognizable here.</p></body></html>`)

	assert.Empty(t, s.KeyInformation)
	assert.Empty(t, s.HowToUse)
	assert.Empty(t, s.IngredientsFragment)
	assert.Empty(t, s.KeyInformationRule)
}

func TestExtractSectionsEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Sections{}, ExtractSections(""))
}

func TestExtractSectionsFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	// Two loosely matching headings; the extractor must take the first in
	// document order without trying to disambiguate.
	page := `<details><summary>Key information</summary><div>First block.</div></details>
<details><summary>Key information (duplicate)</summary><div>Second block.</div></details>`

	s := ExtractSections(page)
	assert.Equal(t, "First block.", s.KeyInformation)
}

func TestExtractSectionsIngredientsFragmentStaysRaw(t *testing.T) {
	t.Parallel()

	page := `<details><summary><h2>Ingredients</h2></summary><div class="accordion__content">
<div class="ingredient-card"><h2 class="ingredient-card__title">Aloe</h2></div>
</div></details>`

	s := ExtractSections(page)
	require.NotEmpty(t, s.IngredientsFragment)
	assert.Contains(t, s.IngredientsFragment, "<div class=\"ingredient-card\">")
	assert.Equal(t, "summary-details", s.IngredientsRule)
}

func TestExtractSectionsIngredientsAnchorBoundary(t *testing.T) {
	t.Parallel()

	// Template without a closing </details> after the ingredients block; the
	// capture must stop at the following anchor element.
	page := `<h2>Ingredients</h2></summary> <div class="list">Aqua, Glycerin
<a href="/pages/glossary">Full glossary</a>`

	s := ExtractSections(page)
	assert.Equal(t, "summary-to-anchor", s.IngredientsRule)
	assert.Contains(t, s.IngredientsFragment, "Aqua, Glycerin")
	assert.NotContains(t, s.IngredientsFragment, "glossary")
}
