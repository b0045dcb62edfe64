package negotiation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/events"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// RegisterRoutes mounts the session and negotiation-item API routes.
func RegisterRoutes(r chi.Router, store *Store, dispatcher *events.Dispatcher) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", handleListSessions(store))
		r.Post("/", handleCreateSession(store))
		r.Get("/{sessionID}", handleGetSession(store))
		r.Post("/{sessionID}/advance", handleAdvance(store, dispatcher))
		r.Get("/{sessionID}/alignment", handleAlignment(store))
		r.Get("/{sessionID}/alignment/watch", handleAlignmentWatch(store))
		r.Get("/{sessionID}/items", handleListItems(store))
		r.Put("/{sessionID}/items/{itemID}/position", handleSetPosition(store))
		r.Put("/{sessionID}/items/{itemID}/priority", handleSetPriority(store))
		r.Post("/{sessionID}/items/{itemID}/accept", handleAccept(store))
	})
}

type createSessionRequest struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

func handleCreateSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.CustomerID == "" {
			http.Error(w, `{"error":"customer_id is required"}`, http.StatusBadRequest)
			return
		}

		sess, err := store.CreateSession(r.Context(), req.CustomerID, req.Name)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sess)
	}
}

func handleListSessions(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := store.ListSessions(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []Session{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sessions)
	}
}

func handleGetSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess)
	}
}

func handleAdvance(store *Store, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		sess, err := store.AdvancePhase(r.Context(), sessionID)
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrGateNotPassed) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypePhaseAdvanced, sessionID,
				map[string]any{"phase": string(sess.Phase)})
			if sess.Phase == PhaseAgreed {
				dispatcher.Emit(r.Context(), events.TypeGatePassed, sessionID, nil)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess)
	}
}

func handleAlignment(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.ListItems(r.Context(),
			chi.URLParam(r, "sessionID"), r.URL.Query().Get("bid_id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Summarize(items))
	}
}

func handleListItems(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.ListItems(r.Context(),
			chi.URLParam(r, "sessionID"), r.URL.Query().Get("bid_id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []Item{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

type positionRequest struct {
	Party Party          `json:"party"`
	Value position.Value `json:"value"`
}

func handleSetPosition(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req positionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		it, err := store.SetPosition(r.Context(), chi.URLParam(r, "itemID"), req.Party, req.Value)
		if errors.Is(err, ErrItemNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if errors.Is(err, position.ErrKindMismatch) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(it)
	}
}

type priorityRequest struct {
	Party    Party `json:"party"`
	Priority int   `json:"priority"`
}

func handleSetPriority(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priorityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		it, err := store.SetPriority(r.Context(), chi.URLParam(r, "itemID"), req.Party, req.Priority)
		if errors.Is(err, ErrItemNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(it)
	}
}

func handleAccept(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := store.AcceptRecommendation(r.Context(), chi.URLParam(r, "itemID"))
		if errors.Is(err, ErrItemNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrNoRecommendation) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(it)
	}
}
