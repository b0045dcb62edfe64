package clauses

import (
	"errors"
	"fmt"
	"time"
)

// OwnerType identifies who published a clause pack.
type OwnerType string

const (
	OwnerPlatform OwnerType = "platform"
	OwnerCustomer OwnerType = "customer"
)

// PackType categorizes a clause pack.
type PackType string

const (
	PackService    PackType = "service"
	PackIndustry   PackType = "industry"
	PackRegulatory PackType = "regulatory"
	PackFavourite  PackType = "favourite"
)

// NonNegotiableWeight is the weight forced onto a selection while its
// non-negotiable flag is set.
const NonNegotiableWeight = 10

// validWeights is the importance scale offered during intake.
var validWeights = map[int]bool{1: true, 3: true, 5: true, 7: true, 10: true}

var (
	// ErrConfirmationRequired is returned when a pack load would
	// replace existing selections and the caller has not confirmed.
	// Pack loading never merges; it is a destructive replace with no
	// undo inside the session.
	ErrConfirmationRequired = errors.New("clauses: loading a pack replaces existing selections; confirmation required")

	ErrPackNotFound      = errors.New("clauses: pack not found")
	ErrSelectionNotFound = errors.New("clauses: selection not found")
)

// Selection is the customer's stance on one clause during intake:
// where they start on the 1-10 position scale, how much it matters,
// and whether it is off the table entirely. It becomes the customer
// side of a negotiation item once a counterparty responds.
type Selection struct {
	SessionID     string    `json:"session_id"`
	ClauseID      string    `json:"clause_id"`
	Category      string    `json:"category"`
	DisplayOrder  int       `json:"display_order"`
	Position      int       `json:"position"` // 1-10, 5 = balanced
	Weight        int       `json:"weight"`   // 1, 3, 5, 7 or 10
	NonNegotiable bool      `json:"non_negotiable"`
	SourcePackID  string    `json:"source_pack_id,omitempty"`
	AddedManually bool      `json:"added_manually"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Pack is an immutable, named, ordered set of selection templates.
// Loading one copies its clauses into a session; later edits to the
// session never touch the pack.
type Pack struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	OwnerType OwnerType    `json:"owner_type"`
	PackType  PackType     `json:"pack_type"`
	Clauses   []PackClause `json:"clauses"`
	CreatedAt time.Time    `json:"created_at"`
}

// PackClause is one template entry inside a pack.
type PackClause struct {
	ClauseID      string `json:"clause_id" yaml:"clause_id"`
	Category      string `json:"category" yaml:"category"`
	DisplayOrder  int    `json:"display_order" yaml:"display_order"`
	Position      int    `json:"position" yaml:"position"`
	Weight        int    `json:"weight" yaml:"weight"`
	NonNegotiable bool   `json:"non_negotiable" yaml:"non_negotiable"`
}

// Validate rejects out-of-range positions and weights at the mutation
// boundary. Values are never silently clamped.
func (s Selection) Validate() error {
	if s.ClauseID == "" {
		return fmt.Errorf("clauses: clause id is required")
	}
	if s.Position < 1 || s.Position > 10 {
		return fmt.Errorf("clauses: position %d out of range 1-10", s.Position)
	}
	if !validWeights[s.Weight] {
		return fmt.Errorf("clauses: weight %d not in {1,3,5,7,10}", s.Weight)
	}
	if s.NonNegotiable && s.Weight != NonNegotiableWeight {
		return fmt.Errorf("clauses: non-negotiable selection must carry weight %d", NonNegotiableWeight)
	}
	return nil
}

// validatePackClause applies the same bounds to pack templates so a
// malformed pack is rejected before any replacement happens.
func validatePackClause(pc PackClause) error {
	if pc.ClauseID == "" {
		return fmt.Errorf("clauses: pack entry missing clause id")
	}
	if pc.Position < 1 || pc.Position > 10 {
		return fmt.Errorf("clauses: pack entry %s: position %d out of range 1-10", pc.ClauseID, pc.Position)
	}
	if !validWeights[pc.Weight] {
		return fmt.Errorf("clauses: pack entry %s: weight %d not in {1,3,5,7,10}", pc.ClauseID, pc.Weight)
	}
	return nil
}

// ValidatePack checks every entry of a pack; a single bad entry fails
// the whole pack.
func ValidatePack(p Pack) error {
	if p.Name == "" {
		return fmt.Errorf("clauses: pack name is required")
	}
	seen := make(map[string]bool, len(p.Clauses))
	for _, pc := range p.Clauses {
		if err := validatePackClause(pc); err != nil {
			return err
		}
		if seen[pc.ClauseID] {
			return fmt.Errorf("clauses: pack has duplicate clause %s", pc.ClauseID)
		}
		seen[pc.ClauseID] = true
	}
	return nil
}
