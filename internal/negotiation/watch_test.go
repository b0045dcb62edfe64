package negotiation

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// The feed must report per-item changes even when the headline
// counters are unchanged, such as two items swapping aligned flags
// between ticks.
func TestAlignmentWatchEmitsPerItemChanges(t *testing.T) {
	store, database := setupStore(t)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "cust-1", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	seedBid(t, database, sess.ID, "bid-1")

	a := alignedItem("term_a")
	a.ID, a.SessionID, a.BidID = "it-a", sess.ID, "bid-1"
	b := misalignedItem("term_b")
	b.ID, b.SessionID, b.BidID = "it-b", sess.ID, "bid-1"
	if err := store.ReplaceItems(ctx, sess.ID, "bid-1", []Item{a, b}); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/api/sessions/" + sess.ID + "/alignment/watch?bid_id=bid-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing watch feed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var snapshot Summary
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if snapshot.Total != 2 || snapshot.Aligned != 1 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	// Swap the flags: misalign a, converge b. Overall stays at 50%.
	if _, err := store.SetPosition(ctx, "it-a", PartyProvider, position.Bool(false)); err != nil {
		t.Fatalf("misaligning it-a: %v", err)
	}
	if _, err := store.SetPosition(ctx, "it-b", PartyProvider, position.Num(15)); err != nil {
		t.Fatalf("converging it-b: %v", err)
	}

	var update Summary
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("expected an update for the swapped flags: %v", err)
	}
	if update.Aligned != 1 || update.Overall != snapshot.Overall {
		t.Fatalf("counters should be unchanged by the swap: %+v", update)
	}
	for _, row := range update.Items {
		switch row.ItemID {
		case "term_a":
			if row.Aligned {
				t.Error("term_a should have become misaligned")
			}
		case "term_b":
			if !row.Aligned {
				t.Error("term_b should have become aligned")
			}
		}
	}
}
