package position

import (
	"errors"
	"fmt"
)

// Kind identifies which variant a Value holds.
type Kind string

const (
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindLabel  Kind = "label"
)

// ErrKindMismatch is returned when two values of different kinds are
// compared. Both parties' positions for one item always share a kind,
// fixed when the item is defined, so a mismatch is a data-integrity
// problem the caller has to resolve, never a quiet "not aligned".
var ErrKindMismatch = errors.New("position: value kinds differ")

// Value is one party's stance on a negotiable item: a boolean, a
// number (optionally bounded), or a label drawn from an option set or
// free text. Exactly one variant is meaningful, selected by Kind.
type Value struct {
	Kind   Kind     `json:"kind"`
	Bool   bool     `json:"bool,omitempty"`
	Number float64  `json:"number,omitempty"`
	Label  string   `json:"label,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Bool returns a bool-kind value.
func Bool(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// Num returns an unbounded number-kind value.
func Num(v float64) Value {
	return Value{Kind: KindNumber, Number: v}
}

// NumInRange returns a number-kind value with an inclusive [min,max]
// range. The range travels with the value so the mediation midpoint
// can be clamped without a catalog lookup.
func NumInRange(v, min, max float64) Value {
	return Value{Kind: KindNumber, Number: v, Min: &min, Max: &max}
}

// Lbl returns a label-kind value.
func Lbl(s string) Value {
	return Value{Kind: KindLabel, Label: s}
}

// HasRange reports whether a number value carries declared bounds.
func (v Value) HasRange() bool {
	return v.Kind == KindNumber && v.Min != nil && v.Max != nil
}

// Validate checks internal consistency: a recognized kind, and a
// number inside its own declared range.
func (v Value) Validate() error {
	switch v.Kind {
	case KindBool, KindLabel:
		return nil
	case KindNumber:
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			return fmt.Errorf("position: inverted range [%v,%v]", *v.Min, *v.Max)
		}
		if v.HasRange() && (v.Number < *v.Min || v.Number > *v.Max) {
			return fmt.Errorf("position: number %v outside range [%v,%v]", v.Number, *v.Min, *v.Max)
		}
		return nil
	default:
		return fmt.Errorf("position: unknown kind %q", v.Kind)
	}
}

// Equal reports whether two values of the same kind hold identical
// content. Booleans and labels compare exactly; numbers compare with
// exact equality, no epsilon, matching how alignment is derived
// everywhere else. Comparing across kinds returns ErrKindMismatch.
func Equal(a, b Value) (bool, error) {
	if a.Kind != b.Kind {
		return false, fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a.Kind, b.Kind)
	}
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool, nil
	case KindNumber:
		return a.Number == b.Number, nil
	case KindLabel:
		return a.Label == b.Label, nil
	default:
		return false, fmt.Errorf("position: unknown kind %q", a.Kind)
	}
}

// String renders the value for recommendation text and logs.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case KindNumber:
		return trimFloat(v.Number)
	case KindLabel:
		return v.Label
	default:
		return string(v.Kind)
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
