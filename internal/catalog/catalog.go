package catalog

import (
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// Definition describes one negotiable item: the value kind both
// parties must use, its display grouping, and the material the
// mediation rules draw on (numeric range, curated hybrid options).
// The kind is fixed here, at definition time; positions of any other
// kind are rejected at the mutation boundary.
type Definition struct {
	ItemID      string        `json:"item_id"`
	GroupName   string        `json:"group_name"`
	DisplayName string        `json:"display_name"`
	Kind        position.Kind `json:"kind"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Unit        string        `json:"unit,omitempty"`
	Options     []string      `json:"options,omitempty"`
	// Hybrids are curated middle-ground options for label items,
	// tried in order before falling back to defer-to-priority.
	Hybrids []string `json:"hybrids,omitempty"`
	// CustomerDefault/ProviderDefault seed the two sides when a
	// session enters the commercial phase.
	CustomerDefault position.Value `json:"customer_default"`
	ProviderDefault position.Value `json:"provider_default"`
}

// NewValue builds a position value of this definition's kind, carrying
// the definition's range for number items.
func (d Definition) NewValue(v position.Value) position.Value {
	if d.Kind == position.KindNumber && d.Min != nil && d.Max != nil {
		return position.NumInRange(v.Number, *d.Min, *d.Max)
	}
	return v
}

// Catalog is the registry of negotiable-item definitions and the
// clause catalogue shown during customer intake.
type Catalog struct {
	defs    map[string]Definition
	ordered []Definition
	clauses []Clause
}

// Clause is one catalogue entry the customer can select during intake.
type Clause struct {
	ClauseID string `json:"clause_id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
}

// New builds a catalog from the given definitions and clause entries,
// preserving order for display.
func New(defs []Definition, clauses []Clause) *Catalog {
	c := &Catalog{
		defs:    make(map[string]Definition, len(defs)),
		ordered: defs,
		clauses: clauses,
	}
	for _, d := range defs {
		c.defs[d.ItemID] = d
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultDefinitions, defaultClauses)
}

// Definition looks up an item definition by id.
func (c *Catalog) Definition(itemID string) (Definition, bool) {
	d, ok := c.defs[itemID]
	return d, ok
}

// Definitions returns all definitions in display order.
func (c *Catalog) Definitions() []Definition {
	return c.ordered
}

// Clauses returns the clause catalogue in display order.
func (c *Catalog) Clauses() []Clause {
	return c.clauses
}
