package negotiation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// CustomerPositions extracts the customer side of an existing item
// set, keyed by catalog item id. Rebuilds pass it back into BuildItems
// so a counterparty resubmission supersedes only its own side.
func CustomerPositions(items []Item) map[string]position.Value {
	if len(items) == 0 {
		return nil
	}
	m := make(map[string]position.Value, len(items))
	for _, it := range items {
		m[it.ItemID] = it.CustomerPosition
	}
	return m
}

// BuildItems merges the customer's persisted positions with a
// counterparty's submitted positions into fresh negotiation items, one
// per catalog definition. Missing positions fall back to the
// definition's defaults, so a counterparty that answered only part of
// the questionnaire still yields a complete item set.
//
// Each side's value must share the definition's kind; a mismatch
// aborts the whole build, since a half-built set would misreport
// overall alignment.
func BuildItems(sessionID, bidID string, defs []catalog.Definition,
	customer, provider map[string]position.Value) ([]Item, error) {

	items := make([]Item, 0, len(defs))
	for _, def := range defs {
		cust, ok := customer[def.ItemID]
		if !ok {
			cust = def.CustomerDefault
		}
		prov, ok := provider[def.ItemID]
		if !ok {
			prov = def.ProviderDefault
		}

		if cust.Kind != def.Kind {
			return nil, fmt.Errorf("%w: customer position for %s is %s, definition wants %s",
				position.ErrKindMismatch, def.ItemID, cust.Kind, def.Kind)
		}
		if prov.Kind != def.Kind {
			return nil, fmt.Errorf("%w: provider position for %s is %s, definition wants %s",
				position.ErrKindMismatch, def.ItemID, prov.Kind, def.Kind)
		}

		it := Item{
			ID:               uuid.New().String(),
			SessionID:        sessionID,
			BidID:            bidID,
			ItemID:           def.ItemID,
			GroupName:        def.GroupName,
			DisplayName:      def.DisplayName,
			CustomerPosition: def.NewValue(cust),
			ProviderPosition: def.NewValue(prov),
			CustomerPriority: 5,
			ProviderPriority: 5,
		}
		if err := it.Recompute(); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
