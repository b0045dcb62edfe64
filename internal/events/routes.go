package events

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes exposes the recent engine events for dashboards and
// delivery debugging.
func RegisterRoutes(r chi.Router, dispatcher *Dispatcher) {
	r.Get("/api/events", func(w http.ResponseWriter, req *http.Request) {
		limit := 50
		if raw := req.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := dispatcher.List(req.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	})
}
