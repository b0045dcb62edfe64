package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the catalogue API routes. search may be nil
// when no embedding provider is configured; the endpoint then reports
// 503 rather than failing at startup.
func RegisterRoutes(r chi.Router, cat *Catalog, search *Search) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/", handleList(cat))
		r.Get("/definitions", handleDefinitions(cat))
		r.Get("/search", handleSearch(search))
	})
}

func handleList(cat *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cat.Clauses())
	}
}

func handleDefinitions(cat *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cat.Definitions())
	}
}

func handleSearch(search *Search) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if search == nil {
			http.Error(w, `{"error":"semantic search not configured"}`, http.StatusServiceUnavailable)
			return
		}
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
			return
		}
		limit := 5
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		results, err := search.Query(r.Context(), q, limit)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []SearchResult{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}
