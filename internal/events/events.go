package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SpikeIreland/clarence-engine/internal/db"
)

// Type identifies what happened inside the engine.
type Type string

const (
	TypeBidStatusChanged     Type = "bid_status_changed"
	TypePhaseAdvanced        Type = "phase_advanced"
	TypeGatePassed           Type = "gate_passed"
	TypeRecommendationIssued Type = "recommendation_issued"
	TypePackLoaded           Type = "pack_loaded"
	TypePositionsMerged      Type = "positions_merged"
)

// Event is one engine occurrence, persisted and forwarded to the
// configured backend webhook.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Delivered bool           `json:"delivered"`
	CreatedAt time.Time      `json:"created_at"`
}

// Dispatcher persists events and posts them to the backend webhook.
// Delivery is best effort; the negotiation flow never blocks on it.
type Dispatcher struct {
	db         *db.DB
	webhookURL string
	client     *http.Client
}

// NewDispatcher creates a dispatcher. An empty webhookURL disables
// outbound delivery; events are still recorded.
func NewDispatcher(database *db.DB, webhookURL string) *Dispatcher {
	return &Dispatcher{
		db:         database,
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Emit records an event and forwards it to the webhook, if configured.
func (d *Dispatcher) Emit(ctx context.Context, typ Type, sessionID string, payload map[string]any) {
	ev := Event{
		ID:        uuid.New().String(),
		Type:      typ,
		SessionID: sessionID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(ev.Payload)
	if err != nil {
		log.Printf("events: encoding payload: %v", err)
		return
	}

	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO engine_events (id, type, session_id, payload, delivered, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		ev.ID, ev.Type, ev.SessionID, string(body), ev.CreatedAt,
	); err != nil {
		log.Printf("events: recording %s: %v", ev.Type, err)
		return
	}

	if d.webhookURL == "" {
		return
	}
	if err := d.deliver(ctx, ev); err != nil {
		log.Printf("events: delivering %s: %v", ev.Type, err)
		return
	}
	if _, err := d.db.ExecContext(ctx,
		`UPDATE engine_events SET delivered = 1 WHERE id = ?`, ev.ID,
	); err != nil {
		log.Printf("events: marking delivered: %v", err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// List returns recent events, newest first.
func (d *Dispatcher) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, type, session_id, payload, delivered, created_at
		 FROM engine_events ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var payload string
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.SessionID, &payload, &ev.Delivered, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
