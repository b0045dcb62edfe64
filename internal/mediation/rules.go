package mediation

import (
	"fmt"
	"math"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// numericMidpointRule suggests the rounded midpoint of the two
// numbers, clamped to the definition's range. This clamp is the one
// place a value is adjusted rather than rejected.
func numericMidpointRule(def catalog.Definition) Rule {
	return func(it negotiation.Item) (Result, error) {
		cust := it.CustomerPosition.Number
		prov := it.ProviderPosition.Number

		mid := math.Round((cust + prov) / 2)
		if def.Min != nil && mid < *def.Min {
			mid = *def.Min
		}
		if def.Max != nil && mid > *def.Max {
			mid = *def.Max
		}

		compromise := def.NewValue(position.Num(mid))
		unit := def.Unit
		if unit != "" {
			unit = " " + unit
		}
		return Result{
			Text: fmt.Sprintf(
				"You are at %s%s and the other side is at %s%s. Meet at the midpoint of %s%s, "+
					"with tiering or escalation triggers if circumstances change materially.",
				it.CustomerPosition, unit, it.ProviderPosition, unit, compromise, unit),
			SuggestedCompromise: compromise,
		}, nil
	}
}

// protectiveBooleanRule proposes a capped middle ground rather than
// picking either boolean outright. The compromise value is a policy
// choice, not a function of the two booleans: it defaults to true,
// the protective option, unless a custom rule replaces this one.
func protectiveBooleanRule(def catalog.Definition) Rule {
	return func(it negotiation.Item) (Result, error) {
		return Result{
			Text: fmt.Sprintf(
				"The parties disagree on %q. Apply the stricter option but bound its impact: "+
					"adopt it with an agreed cap or review trigger so neither side carries open-ended exposure.",
				def.DisplayName),
			SuggestedCompromise: position.Bool(true),
		}, nil
	}
}

// labelHybridRule proposes the definition's curated hybrid option. If
// no hybrid exists, it defers to whichever party weighted the item
// higher and says so.
func labelHybridRule(def catalog.Definition) Rule {
	return func(it negotiation.Item) (Result, error) {
		if len(def.Hybrids) > 0 {
			hybrid := def.Hybrids[0]
			return Result{
				Text: fmt.Sprintf(
					"Between %q and %q, a hybrid is available for %q: %s.",
					it.CustomerPosition, it.ProviderPosition, def.DisplayName, hybrid),
				SuggestedCompromise: position.Lbl(hybrid),
			}, nil
		}

		// Defer to priority; ties go to the customer, disclosed.
		winner := it.CustomerPosition
		winnerName := "customer"
		if it.ProviderPriority > it.CustomerPriority {
			winner = it.ProviderPosition
			winnerName = "provider"
		}
		return Result{
			Text: fmt.Sprintf(
				"No hybrid option exists for %q. Deferring to the %s position %q because the %s "+
					"rated this item higher (customer priority %d vs provider priority %d; ties favour the customer).",
				def.DisplayName, winnerName, winner, winnerName, it.CustomerPriority, it.ProviderPriority),
			SuggestedCompromise: winner,
		}, nil
	}
}
