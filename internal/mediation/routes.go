package mediation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/events"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// RegisterRoutes mounts the mediation endpoint. assistant may be nil;
// the templated text is then served as-is.
func RegisterRoutes(r chi.Router, rec *Recommender, store *negotiation.Store,
	assistant Assistant, dispatcher *events.Dispatcher) {
	r.Post("/api/sessions/{sessionID}/items/{itemID}/recommend",
		handleRecommend(rec, store, assistant, dispatcher))
}

func handleRecommend(rec *Recommender, store *negotiation.Store,
	assistant Assistant, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := store.GetItem(r.Context(), chi.URLParam(r, "itemID"))
		if errors.Is(err, negotiation.ErrItemNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		result, err := rec.Recommend(*it)
		if errors.Is(err, position.ErrKindMismatch) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		// Optionally delegate the prose, never the compromise value.
		if assistant != nil {
			polished, err := assistant.Polish(r.Context(), *it, result)
			if err != nil {
				log.Printf("mediation: assistant unavailable, using templated text: %v", err)
			} else {
				result.Text = polished
			}
		}

		updated, err := store.SaveRecommendation(r.Context(), it.ID, result.Text, result.SuggestedCompromise)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		if dispatcher != nil {
			dispatcher.Emit(r.Context(), events.TypeRecommendationIssued, it.SessionID, map[string]any{
				"item_id": it.ItemID,
				"bid_id":  it.BidID,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}
