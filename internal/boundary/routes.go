package boundary

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/bids"
	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/events"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// RegisterRoutes mounts the inbound webhook endpoint.
func RegisterRoutes(r chi.Router, bidStore *bids.Store, negStore *negotiation.Store,
	cat *catalog.Catalog, dispatcher *events.Dispatcher) {
	r.Post("/api/webhooks/inbound", handleInbound(bidStore, negStore, cat, dispatcher))
}

// handleInbound records a counterparty form submission: completeness
// flags, an optional status change, and structured positions. The
// payload is normalized first, so camelCase and snake_case senders
// take the same path.
func handleInbound(bidStore *bids.Store, negStore *negotiation.Store,
	cat *catalog.Catalog, dispatcher *events.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		payload := Normalize(raw)

		sessionID, _ := payload["session_id"].(string)
		providerID, _ := payload["provider_id"].(string)
		if sessionID == "" || providerID == "" {
			http.Error(w, `{"error":"session_id and provider_id are required"}`, http.StatusBadRequest)
			return
		}

		b, err := bidStore.FindByProvider(r.Context(), sessionID, providerID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if b == nil {
			http.Error(w, `{"error":"no bid for this provider"}`, http.StatusNotFound)
			return
		}

		intake, hasIntake := payload["intake_complete"].(bool)
		questionnaire, hasQuestionnaire := payload["questionnaire_complete"].(bool)
		if hasIntake || hasQuestionnaire {
			if !hasIntake {
				intake = b.IntakeComplete
			}
			if !hasQuestionnaire {
				questionnaire = b.QuestionnaireComplete
			}
			b, err = bidStore.SetProgress(r.Context(), b.ID, intake, questionnaire)
			if errors.Is(err, bids.ErrTerminal) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
		}

		if status, ok := payload["status"].(string); ok && status != "" {
			b, err = bidStore.SetStatus(r.Context(), b.ID, bids.Status(status))
			if errors.Is(err, bids.ErrTerminal) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
				return
			}
			if errors.Is(err, bids.ErrUnknownStatus) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
		}

		itemCount := 0
		if rawPositions, ok := payload["positions"].(map[string]any); ok && len(rawPositions) > 0 {
			provider, err := ParsePositions(cat, rawPositions)
			if errors.Is(err, position.ErrKindMismatch) {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}

			// A resubmission supersedes only the provider side: the
			// customer's persisted positions carry over from the
			// existing item set.
			existing, err := negStore.ListItems(r.Context(), sessionID, b.ID)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}

			items, err := negotiation.BuildItems(sessionID, b.ID, cat.Definitions(),
				negotiation.CustomerPositions(existing), provider)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
				return
			}
			if err := negStore.ReplaceItems(r.Context(), sessionID, b.ID, items); err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
				return
			}
			itemCount = len(items)

			if dispatcher != nil {
				dispatcher.Emit(r.Context(), events.TypePositionsMerged, sessionID, map[string]any{
					"bid_id": b.ID, "item_count": itemCount,
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"bid_id": b.ID, "status": string(b.Status), "items_merged": itemCount,
		})
	}
}
