package clauses

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SpikeIreland/clarence-engine/internal/db"
)

// Store manages persistence of clause selections and packs.
type Store struct {
	db *db.DB
}

// NewStore creates a new clause store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ListSelections returns a session's selections in display order.
func (s *Store) ListSelections(ctx context.Context, sessionID string) ([]Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, clause_id, category, display_order, position, weight, non_negotiable, source_pack_id, added_manually, created_at, updated_at
		 FROM clause_selections WHERE session_id = ?
		 ORDER BY display_order ASC, clause_id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing selections: %w", err)
	}
	defer rows.Close()

	var selections []Selection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

// GetSelection retrieves one selection, or nil when absent.
func (s *Store) GetSelection(ctx context.Context, sessionID, clauseID string) (*Selection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, clause_id, category, display_order, position, weight, non_negotiable, source_pack_id, added_manually, created_at, updated_at
		 FROM clause_selections WHERE session_id = ? AND clause_id = ?`, sessionID, clauseID)

	sel, err := scanSelection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

// Upsert adds or updates a selection by clause id, applying the
// non-negotiable weight lock before validation.
func (s *Store) Upsert(ctx context.Context, sel Selection) (*Selection, error) {
	if sel.NonNegotiable {
		sel.Weight = NonNegotiableWeight
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sel.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clause_selections (session_id, clause_id, category, display_order, position, weight, non_negotiable, source_pack_id, added_manually, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, clause_id) DO UPDATE SET
		   category = excluded.category,
		   display_order = excluded.display_order,
		   position = excluded.position,
		   weight = excluded.weight,
		   non_negotiable = excluded.non_negotiable,
		   added_manually = excluded.added_manually,
		   updated_at = excluded.updated_at`,
		sel.SessionID, sel.ClauseID, sel.Category, sel.DisplayOrder, sel.Position,
		sel.Weight, sel.NonNegotiable, nullable(sel.SourcePackID), sel.AddedManually, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting selection: %w", err)
	}
	return s.GetSelection(ctx, sel.SessionID, sel.ClauseID)
}

// SetNonNegotiable toggles the flag on a stored selection. Setting it
// forces weight to 10; clearing it leaves the weight untouched.
func (s *Store) SetNonNegotiable(ctx context.Context, sessionID, clauseID string, value bool) (*Selection, error) {
	existing, err := s.GetSelection(ctx, sessionID, clauseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrSelectionNotFound, clauseID)
	}

	updated := ToggleNonNegotiable(*existing, value)
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE clause_selections SET non_negotiable = ?, weight = ?, updated_at = ?
		 WHERE session_id = ? AND clause_id = ?`,
		updated.NonNegotiable, updated.Weight, now, sessionID, clauseID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggling non-negotiable: %w", err)
	}
	return s.GetSelection(ctx, sessionID, clauseID)
}

// CreatePack stores a new immutable pack.
func (s *Store) CreatePack(ctx context.Context, p Pack) (*Pack, error) {
	if err := ValidatePack(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.OwnerType == "" {
		p.OwnerType = OwnerPlatform
	}
	if p.PackType == "" {
		p.PackType = PackService
	}
	p.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clause_packs (id, name, owner_type, pack_type, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.OwnerType, p.PackType, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting pack: %w", err)
	}
	for _, pc := range p.Clauses {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pack_clauses (pack_id, clause_id, category, display_order, position, weight, non_negotiable)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, pc.ClauseID, pc.Category, pc.DisplayOrder, pc.Position, pc.Weight, pc.NonNegotiable,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting pack clause %s: %w", pc.ClauseID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pack: %w", err)
	}
	return &p, nil
}

// GetPack retrieves a pack with its clauses.
func (s *Store) GetPack(ctx context.Context, id string) (*Pack, error) {
	var p Pack
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_type, pack_type, created_at FROM clause_packs WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.OwnerType, &p.PackType, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting pack: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT clause_id, category, display_order, position, weight, non_negotiable
		 FROM pack_clauses WHERE pack_id = ? ORDER BY display_order ASC, clause_id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("getting pack clauses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc PackClause
		if err := rows.Scan(&pc.ClauseID, &pc.Category, &pc.DisplayOrder, &pc.Position, &pc.Weight, &pc.NonNegotiable); err != nil {
			return nil, fmt.Errorf("scanning pack clause: %w", err)
		}
		p.Clauses = append(p.Clauses, pc)
	}
	return &p, rows.Err()
}

// ListPacks returns all stored packs without their clauses.
func (s *Store) ListPacks(ctx context.Context) ([]Pack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_type, pack_type, created_at FROM clause_packs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing packs: %w", err)
	}
	defer rows.Close()

	var packs []Pack
	for rows.Next() {
		var p Pack
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerType, &p.PackType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pack: %w", err)
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// LoadPack replaces a session's entire selection set with the pack's
// contents. When selections already exist and confirm is false the
// load is refused with ErrConfirmationRequired. Validation happens
// before any delete, and delete+insert share one transaction, so a
// failed load leaves the existing selections untouched.
func (s *Store) LoadPack(ctx context.Context, sessionID, packID string, confirm bool) ([]Selection, error) {
	p, err := s.GetPack(ctx, packID)
	if err != nil {
		return nil, err
	}
	if err := ValidatePack(*p); err != nil {
		return nil, err
	}

	existing, err := s.ListSelections(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !confirm {
		return nil, ErrConfirmationRequired
	}

	replacement := FromPack(sessionID, *p)
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clause_selections WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("clearing selections: %w", err)
	}
	for _, sel := range replacement {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clause_selections (session_id, clause_id, category, display_order, position, weight, non_negotiable, source_pack_id, added_manually, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			sel.SessionID, sel.ClauseID, sel.Category, sel.DisplayOrder, sel.Position,
			sel.Weight, sel.NonNegotiable, nullable(sel.SourcePackID), now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting selection %s: %w", sel.ClauseID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pack load: %w", err)
	}

	return s.ListSelections(ctx, sessionID)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanner abstracts sql.Row and sql.Rows for scanSelection.
type scanner interface {
	Scan(dest ...any) error
}

func scanSelection(row scanner) (Selection, error) {
	var sel Selection
	var sourcePack sql.NullString
	err := row.Scan(&sel.SessionID, &sel.ClauseID, &sel.Category, &sel.DisplayOrder,
		&sel.Position, &sel.Weight, &sel.NonNegotiable, &sourcePack, &sel.AddedManually,
		&sel.CreatedAt, &sel.UpdatedAt)
	if err == sql.ErrNoRows {
		return sel, err
	}
	if err != nil {
		return sel, fmt.Errorf("scanning selection: %w", err)
	}
	sel.SourcePackID = sourcePack.String
	return sel, nil
}
