package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
	"github.com/shopcrawl/shopcrawl/internal/fetch"
)

type memorySink struct {
	headers int
	rows    []catalog.Row
}

func (m *memorySink) WriteHeader() error { m.headers++; return nil }

func (m *memorySink) WriteRow(_ context.Context, row catalog.Row) error {
	m.rows = append(m.rows, row)
	return nil
}

func (m *memorySink) Close() error { return nil }

const detailHTML = `<html><body>
<details><summary><h2>Key information</h2></summary>
<div class="accordion__content rte"><p>Fragrance free &amp; vegan.</p></div></details>
<details><summary>How to use</summary><div>Apply morning and evening.</div></details>
</body></html>`

const productJSON = `{
	"id": 1,
	"handle": "rose-serum",
	"title": "Rose Serum",
	"product_type": "Serum",
	"body_html": "<p>A calming serum.</p>",
	"images": [
		{"src": "https://cdn.example.com/first.jpg", "variant_ids": []},
		{"src": "https://cdn.example.com/variant.jpg", "variant_ids": [111]}
	],
	"variants": [
		{"id": 111, "sku": "SKU-111", "price": "24.00", "option1": "50ml", "option2": null, "option3": null, "available": true},
		{"id": 222, "sku": "SKU-222", "price": "38.00", "option1": "100ml", "option2": null, "option3": null, "available": false}
	]
}`

// newCatalogServer serves a one-collection catalog whose single product is
// listed by every requested collection.
func newCatalogServer(collectionsPage1 string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/collections.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprintf(w, `{"collections":[%s]}`, collectionsPage1)
			return
		}
		fmt.Fprint(w, `{"collections":[]}`)
	})
	mux.HandleFunc("/collections/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprintf(w, `{"products":[%s]}`, productJSON)
			return
		}
		fmt.Fprint(w, `{"products":[]}`)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, detailHTML)
	})
	return httptest.NewServer(mux)
}

func newTestEngine(t *testing.T, baseURL string, cfg Config, rows *memorySink) *Engine {
	t.Helper()
	cfg.BaseURL = baseURL
	client := fetch.NewClient("test-agent/1.0", 5*time.Second, zap.NewNop())
	return New(cfg, client, rows, nil, nil, zap.NewNop())
}

func TestEngineRunEmitsVariantRows(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(`{"handle":"skin-care","title":"Skin Care"}`)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{}, rows)

	require.NoError(t, engine.Run(context.Background()))
	require.Equal(t, 1, rows.headers)
	require.Len(t, rows.rows, 2)

	first := rows.rows[0]
	assert.Equal(t, "SKU-111", first.Code)
	assert.Equal(t, "Skin Care", first.Collection)
	assert.Equal(t, "Serum", first.Category)
	assert.Equal(t, "Rose Serum", first.Name)
	assert.Equal(t, "50ml", first.VariantName)
	assert.Equal(t, "Yes", first.InStock)
	assert.Equal(t, srv.URL+"/products/rose-serum", first.URL)
	assert.Equal(t, "https://cdn.example.com/variant.jpg", first.ImageURL)
	assert.Equal(t, "A calming serum.", first.Body)
	assert.Equal(t, "Fragrance free & vegan.", first.KeyInformation)
	assert.Equal(t, "Apply morning and evening.", first.HowToUse)

	second := rows.rows[1]
	assert.Equal(t, "No", second.InStock)
	// Variant 222 is not listed on any image and falls back to the first one.
	assert.Equal(t, "https://cdn.example.com/first.jpg", second.ImageURL)
}

func TestEngineDeduplicatesAcrossCollections(t *testing.T) {
	t.Parallel()

	// The same product is listed in both collections; its variants must be
	// emitted exactly once.
	srv := newCatalogServer(
		`{"handle":"skin-care","title":"Skin Care"},{"handle":"bestsellers","title":"Bestsellers"}`)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{}, rows)

	require.NoError(t, engine.Run(context.Background()))
	assert.Len(t, rows.rows, 2)
	assert.Equal(t, 2, engine.SeenCount())

	keys := make(map[string]struct{})
	for _, row := range rows.rows {
		key := row.URL + row.Code
		_, dup := keys[key]
		assert.False(t, dup, "duplicate identity for %s", key)
		keys[key] = struct{}{}
	}
}

func TestEngineRunTwiceYieldsSameSeenCount(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(`{"handle":"skin-care","title":"Skin Care"}`)
	defer srv.Close()

	counts := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rows := &memorySink{}
		engine := newTestEngine(t, srv.URL, Config{}, rows)
		require.NoError(t, engine.Run(context.Background()))
		counts = append(counts, engine.SeenCount())
	}
	assert.Equal(t, counts[0], counts[1])
}

func TestEngineAllowListFiltersCollections(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(
		`{"handle":"skin-care","title":"Skin Care"},{"handle":"gifts","title":"Gifts"}`)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{Collections: []string{"gifts"}}, rows)

	require.NoError(t, engine.Run(context.Background()))
	require.Len(t, rows.rows, 2)
	assert.Equal(t, "Gifts", rows.rows[0].Collection)
}

func TestEngineZeroVariantProductEmitsNothing(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/collections.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"collections":[{"handle":"empty","title":"Empty"}]}`)
			return
		}
		fmt.Fprint(w, `{"collections":[]}`)
	})
	mux.HandleFunc("/collections/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"products":[{"handle":"brochure","title":"Brochure","variants":[]}]}`)
			return
		}
		fmt.Fprint(w, `{"products":[]}`)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{}, rows)

	require.NoError(t, engine.Run(context.Background()))
	assert.Empty(t, rows.rows)
	assert.Equal(t, 0, engine.SeenCount())
}

func TestEngineDetailFetchFailureStillEmitsRows(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/collections.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"collections":[{"handle":"skin-care","title":"Skin Care"}]}`)
			return
		}
		fmt.Fprint(w, `{"collections":[]}`)
	})
	mux.HandleFunc("/collections/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprintf(w, `{"products":[%s]}`, productJSON)
			return
		}
		fmt.Fprint(w, `{"products":[]}`)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{}, rows)

	require.NoError(t, engine.Run(context.Background()))
	require.Len(t, rows.rows, 2)
	assert.Empty(t, rows.rows[0].KeyInformation)
	assert.Empty(t, rows.rows[0].KeyIngredients)
	// Catalog fields still come through even without a detail page.
	assert.Equal(t, "Rose Serum", rows.rows[0].Name)
}

func TestEngineCollectionsListOnly(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(
		`{"handle":"skin-care","title":"Skin Care"},{"handle":"gifts","title":"Gifts"}`)
	defer srv.Close()

	rows := &memorySink{}
	engine := newTestEngine(t, srv.URL, Config{}, rows)

	var handles []string
	err := engine.Collections(context.Background(), func(col catalog.Collection) error {
		handles = append(handles, col.Handle)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"skin-care", "gifts"}, handles)
	// Listing collections must not crawl any product.
	assert.Empty(t, rows.rows)
}
