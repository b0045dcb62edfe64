package clauses

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestLoadPackRouteConflict(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, testPack())
	if err != nil {
		t.Fatalf("CreatePack: %v", err)
	}
	if _, err := store.Upsert(ctx, Selection{SessionID: "sess-1", ClauseID: "existing", Position: 5, Weight: 5}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	// No confirmation over a non-empty set: 409.
	req := httptest.NewRequest(http.MethodPost,
		"/api/sessions/sess-1/packs/"+pack.ID+"/load", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	// Confirmed: replacement succeeds.
	req = httptest.NewRequest(http.MethodPost,
		"/api/sessions/sess-1/packs/"+pack.ID+"/load", strings.NewReader(`{"confirm":true}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpsertSelectionRouteRejectsBadWeight(t *testing.T) {
	store, _ := setupStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-1/selections",
		strings.NewReader(`{"clause_id":"x","position":5,"weight":4}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNonNegotiableRouteMissingSelection(t *testing.T) {
	store, _ := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)

	// Nothing stored for the clause: 404, not an internal error.
	req := httptest.NewRequest(http.MethodPut,
		"/api/sessions/sess-1/selections/no-such-clause/non-negotiable",
		strings.NewReader(`{"non_negotiable":true}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := store.Upsert(context.Background(),
		Selection{SessionID: "sess-1", ClauseID: "limitation", Position: 5, Weight: 5}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	req = httptest.NewRequest(http.MethodPut,
		"/api/sessions/sess-1/selections/limitation/non-negotiable",
		strings.NewReader(`{"non_negotiable":true}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
