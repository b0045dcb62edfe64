package negotiation

import (
	"log"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchInterval is how often the feed re-reads the item set. The
// dashboard polls this socket instead of hammering the alignment
// endpoint.
const watchInterval = 2 * time.Second

// handleAlignmentWatch streams alignment summaries over a WebSocket:
// an initial snapshot immediately, then an update whenever the
// summary changes.
func handleAlignmentWatch(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("negotiation: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		sessionID := chi.URLParam(r, "sessionID")
		bidID := r.URL.Query().Get("bid_id")

		send := func() (Summary, bool) {
			items, err := store.ListItems(r.Context(), sessionID, bidID)
			if err != nil {
				_ = conn.WriteJSON(map[string]string{"error": err.Error()})
				return Summary{}, false
			}
			summary := Summarize(items)
			if err := conn.WriteJSON(summary); err != nil {
				return Summary{}, false
			}
			return summary, true
		}

		last, ok := send()
		if !ok {
			return
		}

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		// Read loop in the background so client closes are noticed.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
				items, err := store.ListItems(r.Context(), sessionID, bidID)
				if err != nil {
					return
				}
				summary := Summarize(items)
				// Per-item rows can change while the counters stay
				// put (two items swapping aligned flags), so the
				// whole summary is compared.
				if reflect.DeepEqual(summary, last) {
					continue
				}
				if err := conn.WriteJSON(summary); err != nil {
					return
				}
				last = summary
			}
		}
	}
}
