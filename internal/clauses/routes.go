package clauses

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/events"
)

// RegisterRoutes mounts the clause selection and pack API routes.
// dispatcher may be nil.
func RegisterRoutes(r chi.Router, store *Store, dispatcher *events.Dispatcher) {
	r.Route("/api/packs", func(r chi.Router) {
		r.Get("/", handleListPacks(store))
		r.Post("/", handleCreatePack(store))
		r.Get("/{packID}", handleGetPack(store))
	})
	r.Route("/api/sessions/{sessionID}/selections", func(r chi.Router) {
		r.Get("/", handleListSelections(store))
		r.Post("/", handleUpsertSelection(store))
		r.Put("/{clauseID}", handleUpsertSelection(store))
		r.Put("/{clauseID}/non-negotiable", handleNonNegotiable(store))
	})
	r.Post("/api/sessions/{sessionID}/packs/{packID}/load", handleLoadPack(store, dispatcher))
}

func handleListSelections(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selections, err := store.ListSelections(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if selections == nil {
			selections = []Selection{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(selections)
	}
}

func handleUpsertSelection(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sel Selection
		if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		sel.SessionID = chi.URLParam(r, "sessionID")
		if clauseID := chi.URLParam(r, "clauseID"); clauseID != "" {
			sel.ClauseID = clauseID
		}

		saved, err := store.Upsert(r.Context(), sel)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(saved)
	}
}

type nonNegotiableRequest struct {
	NonNegotiable bool `json:"non_negotiable"`
}

func handleNonNegotiable(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nonNegotiableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		sel, err := store.SetNonNegotiable(r.Context(),
			chi.URLParam(r, "sessionID"), chi.URLParam(r, "clauseID"), req.NonNegotiable)
		if errors.Is(err, ErrSelectionNotFound) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sel)
	}
}

func handleListPacks(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packs, err := store.ListPacks(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if packs == nil {
			packs = []Pack{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(packs)
	}
}

func handleCreatePack(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Pack
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		created, err := store.CreatePack(r.Context(), p)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleGetPack(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPack(r.Context(), chi.URLParam(r, "packID"))
		if errors.Is(err, ErrPackNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

type loadPackRequest struct {
	Confirm bool `json:"confirm"`
}

func handleLoadPack(store *Store, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loadPackRequest
		if r.Body != nil {
			// Absent body means no confirmation.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		sessionID := chi.URLParam(r, "sessionID")
		packID := chi.URLParam(r, "packID")
		selections, err := store.LoadPack(r.Context(), sessionID, packID, req.Confirm)
		if errors.Is(err, ErrConfirmationRequired) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if errors.Is(err, ErrPackNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		if selections == nil {
			selections = []Selection{}
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypePackLoaded, sessionID, map[string]any{
				"pack_id": packID, "clause_count": len(selections),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(selections)
	}
}
