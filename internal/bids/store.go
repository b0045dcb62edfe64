package bids

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/SpikeIreland/clarence-engine/internal/db"
)

// Store manages persistence of counterparty bids.
type Store struct {
	db *db.DB
}

// NewStore creates a new bid store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// newBidID returns a time-sortable ULID so listing by id matches
// invitation order.
func newBidID(now time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// Create records a newly invited provider.
func (s *Store) Create(ctx context.Context, sessionID, providerID string) (*Bid, error) {
	if providerID == "" {
		return nil, fmt.Errorf("bids: provider id is required")
	}
	now := time.Now().UTC()
	b := Bid{
		ID:         newBidID(now),
		SessionID:  sessionID,
		ProviderID: providerID,
		Status:     StatusInvited,
		InvitedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bids (id, session_id, provider_id, status, intake_complete, questionnaire_complete, invited_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 0, ?, ?)`,
		b.ID, b.SessionID, b.ProviderID, b.Status, b.InvitedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting bid: %w", err)
	}
	return &b, nil
}

// Get retrieves a bid by id.
func (s *Store) Get(ctx context.Context, id string) (*Bid, error) {
	var b Bid
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, provider_id, status, intake_complete, questionnaire_complete, invited_at, updated_at
		 FROM bids WHERE id = ?`, id,
	).Scan(&b.ID, &b.SessionID, &b.ProviderID, &b.Status, &b.IntakeComplete,
		&b.QuestionnaireComplete, &b.InvitedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBidNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting bid: %w", err)
	}
	return &b, nil
}

// ListBySession returns a session's bids in invitation order.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Bid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, provider_id, status, intake_complete, questionnaire_complete, invited_at, updated_at
		 FROM bids WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer rows.Close()

	var out []Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.SessionID, &b.ProviderID, &b.Status, &b.IntakeComplete,
			&b.QuestionnaireComplete, &b.InvitedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindByProvider locates a session's bid for one provider, or nil.
func (s *Store) FindByProvider(ctx context.Context, sessionID, providerID string) (*Bid, error) {
	var b Bid
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, provider_id, status, intake_complete, questionnaire_complete, invited_at, updated_at
		 FROM bids WHERE session_id = ? AND provider_id = ?`, sessionID, providerID,
	).Scan(&b.ID, &b.SessionID, &b.ProviderID, &b.Status, &b.IntakeComplete,
		&b.QuestionnaireComplete, &b.InvitedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding bid: %w", err)
	}
	return &b, nil
}

// SetStatus records an externally triggered status change. Terminal
// bids refuse further changes.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) (*Bid, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrTerminal, b.Status)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE bids SET status = ?, updated_at = ? WHERE id = ?`, status, now, id,
	); err != nil {
		return nil, fmt.Errorf("updating bid status: %w", err)
	}
	b.Status = status
	b.UpdatedAt = now
	return b, nil
}

// SetProgress records the intake/questionnaire completeness flags the
// counterparty's form submissions produce.
func (s *Store) SetProgress(ctx context.Context, id string, intakeComplete, questionnaireComplete bool) (*Bid, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrTerminal, b.Status)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE bids SET intake_complete = ?, questionnaire_complete = ?, updated_at = ? WHERE id = ?`,
		intakeComplete, questionnaireComplete, now, id,
	); err != nil {
		return nil, fmt.Errorf("updating bid progress: %w", err)
	}
	b.IntakeComplete = intakeComplete
	b.QuestionnaireComplete = questionnaireComplete
	b.UpdatedAt = now
	return b, nil
}
