// Package boundary normalizes inbound webhook payloads before they
// enter the typed core. Callers send the same records in camelCase or
// snake_case depending on the integration; everything is folded to
// lower snake_case here so the rest of the engine sees one casing.
package boundary

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

// Normalize returns a copy of raw with every key, at every depth,
// rewritten to lower snake_case. Values inside arrays are normalized
// too.
func Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[snakeCase(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Normalize(t)
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}

// snakeCase folds camelCase to snake_case and leaves snake_case
// untouched. Acronym runs collapse ("APIKey" becomes "api_key").
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && runes[i-1] != '_')) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ParsePositions converts a normalized item-id → raw-value map into
// typed positions, using each catalog definition to pick the kind and
// attach numeric ranges. A value of the wrong JSON type for its
// definition is a kind mismatch, not a silent coercion.
func ParsePositions(cat *catalog.Catalog, raw map[string]any) (map[string]position.Value, error) {
	out := make(map[string]position.Value, len(raw))
	for itemID, v := range raw {
		def, ok := cat.Definition(itemID)
		if !ok {
			return nil, fmt.Errorf("boundary: unknown item %q", itemID)
		}
		val, err := coerce(def.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("boundary: item %q: %w", itemID, err)
		}
		out[itemID] = def.NewValue(val)
	}
	return out, nil
}

func coerce(kind position.Kind, v any) (position.Value, error) {
	switch kind {
	case position.KindBool:
		b, ok := v.(bool)
		if !ok {
			return position.Value{}, fmt.Errorf("%w: expected boolean, got %T", position.ErrKindMismatch, v)
		}
		return position.Bool(b), nil
	case position.KindNumber:
		n, ok := v.(float64)
		if !ok {
			return position.Value{}, fmt.Errorf("%w: expected number, got %T", position.ErrKindMismatch, v)
		}
		return position.Num(n), nil
	case position.KindLabel:
		s, ok := v.(string)
		if !ok {
			return position.Value{}, fmt.Errorf("%w: expected string, got %T", position.ErrKindMismatch, v)
		}
		return position.Lbl(s), nil
	default:
		return position.Value{}, fmt.Errorf("%w: unsupported kind %q", position.ErrKindMismatch, kind)
	}
}
