package bids

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/events"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
)

// RegisterRoutes mounts the counterparty bid API routes. The
// negotiation store and catalog are needed by the negotiate action,
// which activates the item set for an eligible bid.
func RegisterRoutes(r chi.Router, store *Store, negStore *negotiation.Store,
	cat *catalog.Catalog, dispatcher *events.Dispatcher) {
	r.Route("/api/bids", func(r chi.Router) {
		r.Get("/{bidID}", handleGet(store))
		r.Put("/{bidID}/status", handleSetStatus(store, dispatcher))
		r.Post("/{bidID}/negotiate", handleNegotiate(store, negStore, cat, dispatcher))
	})
	r.Route("/api/sessions/{sessionID}/bids", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store, dispatcher))
	})
}

// bidView decorates a bid with its derived fields for the dashboard.
type bidView struct {
	Bid
	DisplayStatus string `json:"display_status"`
	CanNegotiate  bool   `json:"can_negotiate"`
}

func view(b Bid) bidView {
	return bidView{Bid: b, DisplayStatus: DisplayStatus(b), CanNegotiate: CanNegotiate(b)}
}

type createRequest struct {
	ProviderID string `json:"provider_id"`
}

func handleCreate(store *Store, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		sessionID := chi.URLParam(r, "sessionID")
		b, err := store.Create(r.Context(), sessionID, req.ProviderID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypeBidStatusChanged, sessionID, map[string]any{
				"bid_id": b.ID, "status": string(b.Status),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(view(*b))
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := store.ListBySession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		views := make([]bidView, 0, len(all))
		for _, b := range all {
			views = append(views, view(b))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := store.Get(r.Context(), chi.URLParam(r, "bidID"))
		if errors.Is(err, ErrBidNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view(*b))
	}
}

type statusRequest struct {
	Status Status `json:"status"`
}

func handleSetStatus(store *Store, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		b, err := store.SetStatus(r.Context(), chi.URLParam(r, "bidID"), req.Status)
		if errors.Is(err, ErrBidNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrTerminal) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypeBidStatusChanged, b.SessionID, map[string]any{
				"bid_id": b.ID, "status": string(b.Status),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view(*b))
	}
}

// handleNegotiate moves an eligible bid into negotiating and makes
// sure its item set exists, seeding from catalog defaults when the
// counterparty submitted no structured positions.
func handleNegotiate(store *Store, negStore *negotiation.Store,
	cat *catalog.Catalog, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := store.Get(r.Context(), chi.URLParam(r, "bidID"))
		if errors.Is(err, ErrBidNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		if !CanNegotiate(*b) {
			http.Error(w, `{"error":"bid is not ready to negotiate"}`, http.StatusConflict)
			return
		}

		items, err := negStore.ListItems(r.Context(), b.SessionID, b.ID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if len(items) == 0 {
			built, err := negotiation.BuildItems(b.SessionID, b.ID, cat.Definitions(),
				negotiation.CustomerPositions(items), nil)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
			if err := negStore.ReplaceItems(r.Context(), b.SessionID, b.ID, built); err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
		}

		b, err = store.SetStatus(r.Context(), b.ID, StatusNegotiating)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypeBidStatusChanged, b.SessionID, map[string]any{
				"bid_id": b.ID, "status": string(b.Status),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view(*b))
	}
}
