package mediation

import (
	"fmt"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// Result is what mediation produces for one item: the suggestion text
// and a concrete compromise value. Writing it onto the item is the
// caller's job; Recommend itself has no side effects.
type Result struct {
	Text                string         `json:"text"`
	SuggestedCompromise position.Value `json:"suggested_compromise"`
}

// Rule produces a mediation result for one unaligned item.
type Rule func(it negotiation.Item) (Result, error)

// Recommender dispatches items to rules through a registry keyed by
// item id, with kind-appropriate rules registered for every catalog
// definition. Item ids outside the registry fall through to a generic
// templated message; the recommender never invents a structured value
// for an item it does not recognize.
type Recommender struct {
	rules map[string]Rule
}

// New builds a recommender covering every definition in the catalog.
func New(cat *catalog.Catalog) *Recommender {
	r := &Recommender{rules: make(map[string]Rule)}
	for _, def := range cat.Definitions() {
		r.Register(def.ItemID, ruleForDefinition(def))
	}
	return r
}

// Register adds or replaces the rule for one item id.
func (r *Recommender) Register(itemID string, rule Rule) {
	r.rules[itemID] = rule
}

// Recommend returns a mediation result for the item snapshot. Aligned
// items short-circuit to a fixed "no mediation needed" result. The
// function is pure: the same snapshot always yields the same result.
func (r *Recommender) Recommend(it negotiation.Item) (Result, error) {
	aligned, err := position.Equal(it.CustomerPosition, it.ProviderPosition)
	if err != nil {
		return Result{}, err
	}
	if aligned {
		return Result{
			Text:                "Both parties already hold the same position. No mediation needed.",
			SuggestedCompromise: it.CustomerPosition,
		}, nil
	}

	if rule, ok := r.rules[it.ItemID]; ok {
		return rule(it)
	}

	// Unknown item: generic guidance, customer position echoed back.
	return Result{
		Text: fmt.Sprintf(
			"Consider a compromise on %q weighing both parties' stated priorities (customer %d, provider %d).",
			displayName(it), it.CustomerPriority, it.ProviderPriority),
		SuggestedCompromise: it.CustomerPosition,
	}, nil
}

// ruleForDefinition picks the kind-appropriate rule for a catalog
// definition.
func ruleForDefinition(def catalog.Definition) Rule {
	switch def.Kind {
	case position.KindNumber:
		return numericMidpointRule(def)
	case position.KindBool:
		return protectiveBooleanRule(def)
	case position.KindLabel:
		return labelHybridRule(def)
	default:
		return func(it negotiation.Item) (Result, error) {
			return Result{}, fmt.Errorf("mediation: no rule for kind %q", def.Kind)
		}
	}
}

func displayName(it negotiation.Item) string {
	if it.DisplayName != "" {
		return it.DisplayName
	}
	return it.ItemID
}
