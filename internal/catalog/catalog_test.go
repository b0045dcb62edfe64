package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chromem "github.com/philippgille/chromem-go"

	"github.com/SpikeIreland/clarence-engine/internal/position"
)

func TestDefaultCatalogConsistent(t *testing.T) {
	cat := Default()

	seen := map[string]bool{}
	for _, d := range cat.Definitions() {
		if seen[d.ItemID] {
			t.Errorf("duplicate item id %q", d.ItemID)
		}
		seen[d.ItemID] = true

		switch d.Kind {
		case position.KindBool, position.KindNumber, position.KindLabel:
		default:
			t.Errorf("%s: unknown kind %q", d.ItemID, d.Kind)
		}
		if d.CustomerDefault.Kind != d.Kind || d.ProviderDefault.Kind != d.Kind {
			t.Errorf("%s: default positions do not match declared kind", d.ItemID)
		}
		if err := d.CustomerDefault.Validate(); err != nil {
			t.Errorf("%s: customer default: %v", d.ItemID, err)
		}
		if err := d.ProviderDefault.Validate(); err != nil {
			t.Errorf("%s: provider default: %v", d.ItemID, err)
		}
	}

	if _, ok := cat.Definition("payment_terms_days"); !ok {
		t.Error("expected payment_terms_days definition")
	}
	if _, ok := cat.Definition("nonexistent"); ok {
		t.Error("unexpected definition for unknown id")
	}
}

func TestNewValueCarriesRange(t *testing.T) {
	cat := Default()
	def, _ := cat.Definition("payment_terms_days")

	v := def.NewValue(position.Num(45))
	if !v.HasRange() {
		t.Fatal("expected range on number value")
	}
	if *v.Min != 7 || *v.Max != 90 {
		t.Errorf("unexpected range [%v,%v]", *v.Min, *v.Max)
	}
}

// fakeEmbed is a deterministic local embedding function so search
// tests run without network access.
func fakeEmbed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r%13) / 13
	}
	return vec, nil
}

func TestSearchQuery(t *testing.T) {
	ctx := context.Background()
	search, err := NewSearch(ctx, Default(), chromem.EmbeddingFunc(fakeEmbed))
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}

	results, err := search.Query(ctx, "limitation of liability", 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) == 0 || len(results) > 3 {
		t.Fatalf("expected 1-3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Clause.ClauseID == "" {
			t.Error("result missing clause")
		}
	}
}

func TestCatalogRoutes(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, Default(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var clauses []Clause
	if err := json.NewDecoder(rec.Body).Decode(&clauses); err != nil {
		t.Fatalf("decoding clauses: %v", err)
	}
	if len(clauses) == 0 {
		t.Error("expected catalogue entries")
	}

	// Search without an embedding provider is unavailable, not fatal.
	req = httptest.NewRequest(http.MethodGet, "/api/catalog/search?q=liability", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("search without embedder: status %d", rec.Code)
	}
}
