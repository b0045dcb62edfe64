package boundary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/SpikeIreland/clarence-engine/internal/bids"
	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/db"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

func setupWebhook(t *testing.T) (*bids.Store, *negotiation.Store, chi.Router) {
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

	bidStore := bids.NewStore(database)
	negStore := negotiation.NewStore(database)
	r := chi.NewRouter()
	RegisterRoutes(r, bidStore, negStore, catalog.Default(), nil)
	return bidStore, negStore, r
}

func TestInboundWebhookCamelCase(t *testing.T) {
	bidStore, negStore, r := setupWebhook(t)
	ctx := context.Background()

	b, err := bidStore.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{
		"sessionId": "sess-1",
		"providerId": "prov-a",
		"intakeComplete": true,
		"questionnaireComplete": true,
		"positions": {"payment_terms_days": 30, "auto_renewal": false}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, err := bidStore.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.QuestionnaireComplete || !got.IntakeComplete {
		t.Errorf("flags should be recorded, got %+v", got)
	}
	if !bids.CanNegotiate(*got) {
		t.Error("questionnaire submission should make the bid negotiable")
	}

	items, err := negStore.ListItems(ctx, "sess-1", b.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != len(catalog.Default().Definitions()) {
		t.Fatalf("expected one item per definition, got %d", len(items))
	}
	for _, it := range items {
		if it.ItemID == "payment_terms_days" && it.ProviderPosition.Number != 30 {
			t.Errorf("submitted position should win over the default, got %+v", it.ProviderPosition)
		}
	}
}

func TestInboundWebhookSnakeCase(t *testing.T) {
	bidStore, _, r := setupWebhook(t)
	ctx := context.Background()

	b, err := bidStore.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"session_id": "sess-1", "provider_id": "prov-a", "status": "intake_complete", "intake_complete": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, err := bidStore.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != bids.StatusIntakeComplete || !got.IntakeComplete {
		t.Errorf("snake_case payload should apply identically, got %+v", got)
	}
}

func TestInboundWebhookUnknownProvider(t *testing.T) {
	_, _, r := setupWebhook(t)

	body := `{"sessionId": "sess-1", "providerId": "prov-z", "intakeComplete": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInboundWebhookKindMismatch(t *testing.T) {
	bidStore, _, r := setupWebhook(t)

	if _, err := bidStore.Create(context.Background(), "sess-1", "prov-a"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"sessionId": "sess-1", "providerId": "prov-a", "positions": {"payment_terms_days": "net thirty"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on kind mismatch, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInboundWebhookResubmitKeepsCustomerEdits(t *testing.T) {
	bidStore, negStore, r := setupWebhook(t)
	ctx := context.Background()

	b, err := bidStore.Create(ctx, "sess-1", "prov-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	submit := func(body string) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	submit(`{"sessionId": "sess-1", "providerId": "prov-a", "positions": {"payment_terms_days": 30}}`)

	// The customer moves off their default between submissions.
	items, err := negStore.ListItems(ctx, "sess-1", b.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, it := range items {
		if it.ItemID != "payment_terms_days" {
			continue
		}
		if _, err := negStore.SetPosition(ctx, it.ID, negotiation.PartyCustomer, position.NumInRange(40, 7, 90)); err != nil {
			t.Fatalf("SetPosition: %v", err)
		}
	}

	submit(`{"sessionId": "sess-1", "providerId": "prov-a", "positions": {"payment_terms_days": 25}}`)

	items, err = negStore.ListItems(ctx, "sess-1", b.ID)
	if err != nil {
		t.Fatalf("ListItems after resubmit: %v", err)
	}
	for _, it := range items {
		if it.ItemID != "payment_terms_days" {
			continue
		}
		if it.CustomerPosition.Number != 40 {
			t.Errorf("customer edit lost: got %v, want 40", it.CustomerPosition.Number)
		}
		if it.ProviderPosition.Number != 25 {
			t.Errorf("provider resubmission not applied: got %v, want 25", it.ProviderPosition.Number)
		}
	}
}
