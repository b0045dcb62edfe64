package negotiation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SpikeIreland/clarence-engine/internal/db"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// Store manages persistence of sessions and negotiation items.
type Store struct {
	db *db.DB
}

// NewStore creates a new negotiation store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession starts a new negotiation flow in the intake phase.
func (s *Store) CreateSession(ctx context.Context, customerID, name string) (*Session, error) {
	if customerID == "" {
		return nil, fmt.Errorf("negotiation: customer id is required")
	}
	sess := Session{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Name:       name,
		Phase:      PhaseIntake,
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, customer_id, name, phase, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CustomerID, sess.Name, sess.Phase, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return &sess, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, name, phase, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.CustomerID, &sess.Name, &sess.Phase, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, name, phase, created_at, updated_at FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.CustomerID, &sess.Name, &sess.Phase, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AdvancePhase moves a session to the next phase. The step into
// agreed is gated on the session's overall alignment; earlier steps
// are driven by the surrounding workflow and pass freely.
func (s *Store) AdvancePhase(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var next Phase
	for i, p := range phaseOrder {
		if p == sess.Phase {
			if i == len(phaseOrder)-1 {
				return nil, fmt.Errorf("negotiation: session already %s", PhaseAgreed)
			}
			next = phaseOrder[i+1]
			break
		}
	}
	if next == "" {
		return nil, fmt.Errorf("negotiation: unknown phase %q", sess.Phase)
	}

	if next == PhaseAgreed {
		items, err := s.listGateItems(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if !CanAdvancePhase(items) {
			return nil, fmt.Errorf("%w: %d%% < %d%%", ErrGateNotPassed, OverallAlignment(items), AdvanceThreshold)
		}
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET phase = ?, updated_at = ? WHERE id = ?`, next, now, sessionID,
	); err != nil {
		return nil, fmt.Errorf("advancing phase: %w", err)
	}
	sess.Phase = next
	sess.UpdatedAt = now
	return sess, nil
}

// ReplaceItems supersedes the item set for one bid wholesale. Items
// are never deleted individually; a rebuild replaces them all in one
// transaction.
func (s *Store) ReplaceItems(ctx context.Context, sessionID, bidID string, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM negotiation_items WHERE session_id = ? AND bid_id = ?`, sessionID, bidID,
	); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	now := time.Now().UTC()
	for _, it := range items {
		custJSON, provJSON, compJSON, err := encodePositions(it)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO negotiation_items (id, session_id, bid_id, item_id, group_name, display_name,
			   customer_position, provider_position, customer_priority, provider_priority,
			   aligned, recommendation, suggested_compromise, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, sessionID, bidID, it.ItemID, it.GroupName, it.DisplayName,
			custJSON, provJSON, it.CustomerPriority, it.ProviderPriority,
			it.Aligned, nullIfEmpty(it.Recommendation), compJSON, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting item %s: %w", it.ItemID, err)
		}
	}
	return tx.Commit()
}

// listGateItems returns the session's items that count toward the
// phase gate: items whose bid reached a terminal outcome no longer
// participate, so a withdrawn counterparty's unaligned rows cannot
// hold the session open forever.
func (s *Store) listGateItems(ctx context.Context, sessionID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.session_id, i.bid_id, i.item_id, i.group_name, i.display_name,
		   i.customer_position, i.provider_position, i.customer_priority, i.provider_priority,
		   i.aligned, i.recommendation, i.suggested_compromise, i.created_at, i.updated_at
		 FROM negotiation_items i
		 JOIN bids b ON b.id = i.bid_id
		 WHERE i.session_id = ? AND b.status NOT IN ('accepted', 'rejected', 'withdrawn')
		 ORDER BY i.group_name ASC, i.item_id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing gate items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListItems returns a session's items, optionally filtered to one bid.
func (s *Store) ListItems(ctx context.Context, sessionID, bidID string) ([]Item, error) {
	query := `SELECT id, session_id, bid_id, item_id, group_name, display_name,
	            customer_position, provider_position, customer_priority, provider_priority,
	            aligned, recommendation, suggested_compromise, created_at, updated_at
	          FROM negotiation_items WHERE session_id = ?`
	args := []any{sessionID}
	if bidID != "" {
		query += " AND bid_id = ?"
		args = append(args, bidID)
	}
	query += " ORDER BY group_name ASC, item_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem retrieves one item by its row id.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, bid_id, item_id, group_name, display_name,
		   customer_position, provider_position, customer_priority, provider_priority,
		   aligned, recommendation, suggested_compromise, created_at, updated_at
		 FROM negotiation_items WHERE id = ?`, id)

	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// SetPosition writes one party's position through the item's mutation
// rules (kind check, recommendation invalidation, recompute) and
// persists the result.
func (s *Store) SetPosition(ctx context.Context, id string, party Party, v position.Value) (*Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := it.SetPosition(party, v); err != nil {
		return nil, err
	}
	return s.persistState(ctx, it)
}

// SetPriority writes one party's priority weight.
func (s *Store) SetPriority(ctx context.Context, id string, party Party, priority int) (*Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := it.SetPriority(party, priority); err != nil {
		return nil, err
	}
	return s.persistState(ctx, it)
}

// SaveRecommendation writes a mediation result onto an item. The
// recommender itself is pure; this is the caller-side write.
func (s *Store) SaveRecommendation(ctx context.Context, id, text string, compromise position.Value) (*Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Recommendation = text
	it.SuggestedCompromise = &compromise
	return s.persistState(ctx, it)
}

// AcceptRecommendation sets both parties' positions to the stored
// suggested compromise, making the pair aligned by construction. The
// suggestion is consumed in the process, per the invalidation rule.
func (s *Store) AcceptRecommendation(ctx context.Context, id string) (*Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.SuggestedCompromise == nil {
		return nil, ErrNoRecommendation
	}
	compromise := *it.SuggestedCompromise
	if err := it.SetPosition(PartyCustomer, compromise); err != nil {
		return nil, err
	}
	if err := it.SetPosition(PartyProvider, compromise); err != nil {
		return nil, err
	}
	return s.persistState(ctx, it)
}

// persistState writes an item's mutable state back to its row.
func (s *Store) persistState(ctx context.Context, it *Item) (*Item, error) {
	custJSON, provJSON, compJSON, err := encodePositions(*it)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE negotiation_items SET
		   customer_position = ?, provider_position = ?,
		   customer_priority = ?, provider_priority = ?,
		   aligned = ?, recommendation = ?, suggested_compromise = ?, updated_at = ?
		 WHERE id = ?`,
		custJSON, provJSON, it.CustomerPriority, it.ProviderPriority,
		it.Aligned, nullIfEmpty(it.Recommendation), compJSON, now, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrItemNotFound
	}
	it.UpdatedAt = now
	return it, nil
}

func encodePositions(it Item) (cust, prov string, comp any, err error) {
	c, err := json.Marshal(it.CustomerPosition)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding customer position: %w", err)
	}
	p, err := json.Marshal(it.ProviderPosition)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding provider position: %w", err)
	}
	if it.SuggestedCompromise == nil {
		return string(c), string(p), nil, nil
	}
	sc, err := json.Marshal(it.SuggestedCompromise)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding compromise: %w", err)
	}
	return string(c), string(p), string(sc), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var it Item
	var custJSON, provJSON string
	var recommendation, compJSON sql.NullString

	err := row.Scan(&it.ID, &it.SessionID, &it.BidID, &it.ItemID, &it.GroupName, &it.DisplayName,
		&custJSON, &provJSON, &it.CustomerPriority, &it.ProviderPriority,
		&it.Aligned, &recommendation, &compJSON, &it.CreatedAt, &it.UpdatedAt)
	if err == sql.ErrNoRows {
		return it, err
	}
	if err != nil {
		return it, fmt.Errorf("scanning item: %w", err)
	}

	if err := json.Unmarshal([]byte(custJSON), &it.CustomerPosition); err != nil {
		return it, fmt.Errorf("decoding customer position: %w", err)
	}
	if err := json.Unmarshal([]byte(provJSON), &it.ProviderPosition); err != nil {
		return it, fmt.Errorf("decoding provider position: %w", err)
	}
	it.Recommendation = recommendation.String
	if compJSON.Valid {
		var comp position.Value
		if err := json.Unmarshal([]byte(compJSON.String), &comp); err != nil {
			return it, fmt.Errorf("decoding compromise: %w", err)
		}
		it.SuggestedCompromise = &comp
	}
	return it, nil
}
