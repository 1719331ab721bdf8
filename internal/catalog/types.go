// Package catalog defines the storefront domain types consumed from the
// public catalog API and the flattened row emitted per variant.
package catalog

import (
	"strconv"
	"strings"
)

// Collection identifies a catalog grouping. The handle doubles as the
// pagination key for the per-collection products endpoint.
type Collection struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// Image carries one product image and the variants it is bound to.
type Image struct {
	Src        string  `json:"src"`
	VariantIDs []int64 `json:"variant_ids"`
}

// Variant is a purchasable configuration of a product. Option values may be
// JSON null, so they decode through pointers and are read via optionValue.
type Variant struct {
	ID        int64   `json:"id"`
	SKU       string  `json:"sku"`
	Price     string  `json:"price"`
	Option1   *string `json:"option1"`
	Option2   *string `json:"option2"`
	Option3   *string `json:"option3"`
	Available bool    `json:"available"`
}

// Product is one catalog entry as returned by the products endpoint. It owns
// its variants for the lifetime of the page fetch.
type Product struct {
	ID          int64     `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	ProductType string    `json:"product_type"`
	BodyHTML    string    `json:"body_html"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

// IngredientCard is a structured sub-record extracted from the ingredients
// section of a detail page. Name is always non-empty on emitted cards.
type IngredientCard struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Benefits    string `json:"benefits"`
}

// ExtractedContent holds the detail-page sections resolved for one product.
// Every field defaults to its zero value when no pattern matched; absence is
// not an error.
type ExtractedContent struct {
	KeyInformation string
	HowToUse       string
	KeyIngredients []IngredientCard
	AllIngredients string
}

// Row is the flattened output record, one per (product, variant) pair.
type Row struct {
	Code           string
	Collection     string
	Category       string
	Name           string
	VariantName    string
	Price          string
	InStock        string
	URL            string
	ImageURL       string
	Body           string
	KeyInformation string
	HowToUse       string
	KeyIngredients []IngredientCard
	AllIngredients string
}

// IdentityKey is the dedup key for a (product, variant) pair: the product
// handle concatenated with the decimal variant id.
func IdentityKey(handle string, variantID int64) string {
	return handle + strconv.FormatInt(variantID, 10)
}

// DisplayName joins the non-empty option values with single spaces.
func (v Variant) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, opt := range []*string{v.Option1, v.Option2, v.Option3} {
		if s := optionValue(opt); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ImageFor resolves the display image for a variant. Matching compares the
// string forms of the ids, mirroring the upstream API's loose typing. Falls
// back to the product's first image, then to the empty string.
func (p Product) ImageFor(variantID int64) string {
	want := strconv.FormatInt(variantID, 10)
	for _, img := range p.Images {
		for _, id := range img.VariantIDs {
			if strconv.FormatInt(id, 10) == want {
				return img.Src
			}
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].Src
	}
	return ""
}

// StockLabel renders availability for the output sink.
func (v Variant) StockLabel() string {
	if v.Available {
		return "Yes"
	}
	return "No"
}

func optionValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
