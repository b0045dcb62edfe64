package clauses

// AddOrUpdate upserts a selection into the set by clause id and
// returns the new set. A non-negotiable selection always carries
// weight 10, even if the caller asked for less.
func AddOrUpdate(selections []Selection, sel Selection) ([]Selection, error) {
	if sel.NonNegotiable {
		sel.Weight = NonNegotiableWeight
	}
	if err := sel.Validate(); err != nil {
		return selections, err
	}

	out := make([]Selection, len(selections))
	copy(out, selections)
	for i := range out {
		if out[i].ClauseID == sel.ClauseID {
			sel.CreatedAt = out[i].CreatedAt
			out[i] = sel
			return out, nil
		}
	}
	return append(out, sel), nil
}

// ToggleNonNegotiable flips the non-negotiable flag. Setting it forces
// weight to 10; clearing it leaves weight alone, so a clause that was
// locked at 10 stays at 10 until the customer lowers it themselves.
// The asymmetry is deliberate and matches the intake behaviour.
func ToggleNonNegotiable(sel Selection, value bool) Selection {
	sel.NonNegotiable = value
	if value {
		sel.Weight = NonNegotiableWeight
	}
	return sel
}

// FromPack copies a pack's templates into fresh selections for the
// given session. Copy semantics: the returned selections are owned by
// the session and never reference the pack again.
func FromPack(sessionID string, p Pack) []Selection {
	out := make([]Selection, 0, len(p.Clauses))
	for _, pc := range p.Clauses {
		weight := pc.Weight
		if pc.NonNegotiable {
			weight = NonNegotiableWeight
		}
		out = append(out, Selection{
			SessionID:     sessionID,
			ClauseID:      pc.ClauseID,
			Category:      pc.Category,
			DisplayOrder:  pc.DisplayOrder,
			Position:      pc.Position,
			Weight:        weight,
			NonNegotiable: pc.NonNegotiable,
			SourcePackID:  p.ID,
		})
	}
	return out
}
