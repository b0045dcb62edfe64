package negotiation

import "math"

// AdvanceThreshold is the overall alignment percentage a session must
// reach before it can move to agreed. Fixed policy, one place to
// change it.
const AdvanceThreshold = 95

// OverallAlignment aggregates per-item alignment into the readiness
// percentage the phase gate and the dashboard read. Empty input is 0,
// not an error.
func OverallAlignment(items []Item) int {
	if len(items) == 0 {
		return 0
	}
	aligned := 0
	for _, it := range items {
		if it.Aligned {
			aligned++
		}
	}
	return int(math.Round(100 * float64(aligned) / float64(len(items))))
}

// CanAdvancePhase reports whether the item set clears the gate.
func CanAdvancePhase(items []Item) bool {
	return OverallAlignment(items) >= AdvanceThreshold
}

// Summary is the per-session alignment view served to the dashboard.
type Summary struct {
	Overall    int             `json:"overall"`
	CanAdvance bool            `json:"can_advance"`
	Total      int             `json:"total"`
	Aligned    int             `json:"aligned"`
	Items      []ItemAlignment `json:"items"`
}

// ItemAlignment is one row of the summary.
type ItemAlignment struct {
	ItemID      string `json:"item_id"`
	DisplayName string `json:"display_name"`
	GroupName   string `json:"group_name"`
	Aligned     bool   `json:"aligned"`
}

// Summarize builds the dashboard view from an item snapshot.
func Summarize(items []Item) Summary {
	s := Summary{
		Overall:    OverallAlignment(items),
		CanAdvance: CanAdvancePhase(items),
		Total:      len(items),
		Items:      make([]ItemAlignment, 0, len(items)),
	}
	for _, it := range items {
		if it.Aligned {
			s.Aligned++
		}
		s.Items = append(s.Items, ItemAlignment{
			ItemID:      it.ItemID,
			DisplayName: it.DisplayName,
			GroupName:   it.GroupName,
			Aligned:     it.Aligned,
		})
	}
	return s
}
