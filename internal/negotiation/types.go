package negotiation

import (
	"errors"
	"fmt"
	"time"

	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// Party identifies which side of the table a mutation comes from.
type Party string

const (
	PartyCustomer Party = "customer"
	PartyProvider Party = "provider"
)

// Phase is a session's workflow stage. Phases only ever move forward.
type Phase string

const (
	PhaseIntake      Phase = "intake"
	PhaseCommercial  Phase = "commercial"
	PhaseNegotiation Phase = "negotiation"
	PhaseAgreed      Phase = "agreed"
)

// phaseOrder drives AdvancePhase.
var phaseOrder = []Phase{PhaseIntake, PhaseCommercial, PhaseNegotiation, PhaseAgreed}

var (
	ErrSessionNotFound = errors.New("negotiation: session not found")
	ErrItemNotFound    = errors.New("negotiation: item not found")
	// ErrGateNotPassed is returned when a session tries to move to
	// agreed before overall alignment reaches the threshold.
	ErrGateNotPassed = errors.New("negotiation: overall alignment below advance threshold")
	// ErrNoRecommendation is returned when accepting a compromise on
	// an item that has no current suggestion.
	ErrNoRecommendation = errors.New("negotiation: item has no recommendation to accept")
)

// Session is one customer negotiation flow. It exclusively owns its
// selections, items and bids.
type Session struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Phase      Phase     `json:"phase"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item is one negotiable point between the customer and one
// counterparty: both positions, both priority weights, the derived
// alignment flag and, when mediation has run, a suggestion.
//
// Aligned is never set directly; recompute runs after every position
// write. A position write also clears any stored recommendation,
// because a suggestion computed against the old positions may no
// longer apply.
type Item struct {
	ID                  string          `json:"id"`
	SessionID           string          `json:"session_id"`
	BidID               string          `json:"bid_id"`
	ItemID              string          `json:"item_id"`
	GroupName           string          `json:"group_name"`
	DisplayName         string          `json:"display_name"`
	CustomerPosition    position.Value  `json:"customer_position"`
	ProviderPosition    position.Value  `json:"provider_position"`
	CustomerPriority    int             `json:"customer_priority"`
	ProviderPriority    int             `json:"provider_priority"`
	Aligned             bool            `json:"aligned"`
	Recommendation      string          `json:"recommendation,omitempty"`
	SuggestedCompromise *position.Value `json:"suggested_compromise,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Recompute rederives the alignment flag from the two positions. A
// kind mismatch is a data-integrity error, never silently "not
// aligned".
func (it *Item) Recompute() error {
	aligned, err := position.Equal(it.CustomerPosition, it.ProviderPosition)
	if err != nil {
		return err
	}
	it.Aligned = aligned
	return nil
}

// SetPosition replaces one party's position, invalidates any stored
// recommendation and recomputes alignment. The new value must share
// the item's kind; the kind was fixed when the item was defined.
func (it *Item) SetPosition(party Party, v position.Value) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.Kind != it.CustomerPosition.Kind {
		return fmt.Errorf("%w: item %s holds %s, got %s",
			position.ErrKindMismatch, it.ItemID, it.CustomerPosition.Kind, v.Kind)
	}

	switch party {
	case PartyCustomer:
		it.CustomerPosition = v
	case PartyProvider:
		it.ProviderPosition = v
	default:
		return fmt.Errorf("negotiation: unknown party %q", party)
	}

	it.Recommendation = ""
	it.SuggestedCompromise = nil
	return it.Recompute()
}

// SetPriority replaces one party's priority weight. Out-of-range
// values are rejected, never clamped.
func (it *Item) SetPriority(party Party, p int) error {
	if p < 1 || p > 10 {
		return fmt.Errorf("negotiation: priority %d out of range 1-10", p)
	}
	switch party {
	case PartyCustomer:
		it.CustomerPriority = p
	case PartyProvider:
		it.ProviderPriority = p
	default:
		return fmt.Errorf("negotiation: unknown party %q", party)
	}
	return nil
}
