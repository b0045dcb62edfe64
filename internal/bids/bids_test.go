package bids

import (
	"context"
	"errors"
	"testing"

	"github.com/SpikeIreland/clarence-engine/internal/db"
)

func setupStore(t *testing.T) (*Store, *db.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if _, err := database.Exec(
		`INSERT INTO sessions (id, customer_id, name) VALUES ('sess-1', 'cust-1', 'MSA renewal')`,
	); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return NewStore(database), database
}

func TestCanNegotiate(t *testing.T) {
	ready := Bid{Status: StatusNegotiating, QuestionnaireComplete: true}
	if !CanNegotiate(ready) {
		t.Error("questionnaire complete on a live bid should enable negotiation")
	}

	withdrawn := ready
	withdrawn.Status = StatusWithdrawn
	if CanNegotiate(withdrawn) {
		t.Error("withdrawn bid must not negotiate regardless of its flags")
	}

	incomplete := Bid{Status: StatusIntakeComplete, QuestionnaireComplete: false}
	if CanNegotiate(incomplete) {
		t.Error("bid without the questionnaire must not negotiate")
	}
}

func TestDisplayStatusCascade(t *testing.T) {
	tests := []struct {
		name string
		bid  Bid
		want string
	}{
		{"rejected wins over flags", Bid{Status: StatusRejected, IntakeComplete: true, QuestionnaireComplete: true}, "Closed"},
		{"withdrawn closes", Bid{Status: StatusWithdrawn}, "Closed"},
		{"accepted", Bid{Status: StatusAccepted, QuestionnaireComplete: true}, "Accepted"},
		{"negotiating wins over ready", Bid{Status: StatusNegotiating, QuestionnaireComplete: true}, "Negotiating"},
		{"negotiation ready", Bid{Status: StatusNegotiationReady}, "Negotiating"},
		{"questionnaire done", Bid{Status: StatusQuestionnaireComplete, IntakeComplete: true, QuestionnaireComplete: true}, "Ready"},
		{"intake only", Bid{Status: StatusIntakeComplete, IntakeComplete: true}, "Questionnaire Pending"},
		{"fresh invite", Bid{Status: StatusInvited}, "Awaiting Response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayStatus(tc.bid); got != tc.want {
				t.Errorf("DisplayStatus(%+v) = %q, want %q", tc.bid, got, tc.want)
			}
		})
	}
}

func TestCreateAndListOrder(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create(ctx, "sess-1", "prov-b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != StatusInvited {
		t.Errorf("new bid should be invited, got %s", first.Status)
	}

	all, err := store.ListBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("bids should list in invitation order, got %+v", all)
	}
}

func TestCreateRequiresProvider(t *testing.T) {
	store, _ := setupStore(t)
	if _, err := store.Create(context.Background(), "sess-1", ""); err == nil {
		t.Error("expected error for empty provider id")
	}
}

func TestSetStatusRefusesTerminal(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	b, err := store.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.SetStatus(ctx, b.ID, StatusWithdrawn); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if _, err := store.SetStatus(ctx, b.ID, StatusNegotiating); !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal reviving a withdrawn bid, got %v", err)
	}
	if _, err := store.SetProgress(ctx, b.ID, true, true); !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal updating a withdrawn bid's flags, got %v", err)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	b, err := store.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.SetStatus(ctx, b.ID, Status("paused")); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestFindByProvider(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	want, err := store.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.FindByProvider(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("FindByProvider: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Errorf("expected bid %s, got %+v", want.ID, got)
	}

	missing, err := store.FindByProvider(ctx, "sess-1", "prov-z")
	if err != nil {
		t.Fatalf("FindByProvider: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown provider, got %+v", missing)
	}
}

func TestSetProgress(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	b, err := store.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if CanNegotiate(*b) {
		t.Error("fresh invite must not be negotiable")
	}

	b, err = store.SetProgress(ctx, b.ID, true, true)
	if err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if !CanNegotiate(*b) {
		t.Error("completed questionnaire should enable negotiation")
	}
}
