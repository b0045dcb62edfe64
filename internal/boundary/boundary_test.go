package boundary

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/position"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sessionId", "session_id"},
		{"sessionID", "session_id"},
		{"session_id", "session_id"},
		{"questionnaireComplete", "questionnaire_complete"},
		{"QuestionnaireComplete", "questionnaire_complete"},
		{"APIKey", "api_key"},
		{"status", "status"},
		{"paymentTermsDays", "payment_terms_days"},
	}
	for _, tc := range tests {
		if got := snakeCase(tc.in); got != tc.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeBothCasings(t *testing.T) {
	camel := map[string]any{
		"sessionId":  "sess-1",
		"providerId": "prov-a",
		"positions": map[string]any{
			"payment_terms_days": 30.0,
		},
		"submittedForms": []any{
			map[string]any{"formName": "intake", "isComplete": true},
		},
	}
	snake := map[string]any{
		"session_id":  "sess-1",
		"provider_id": "prov-a",
		"positions": map[string]any{
			"payment_terms_days": 30.0,
		},
		"submitted_forms": []any{
			map[string]any{"form_name": "intake", "is_complete": true},
		},
	}

	if diff := cmp.Diff(Normalize(snake), Normalize(camel)); diff != "" {
		t.Errorf("casings should normalize identically (-snake +camel):\n%s", diff)
	}
}

func TestParsePositions(t *testing.T) {
	cat := catalog.Default()

	parsed, err := ParsePositions(cat, map[string]any{
		"payment_terms_days": 45.0,
		"auto_renewal":       true,
		"governing_law":      "england_wales",
	})
	if err != nil {
		t.Fatalf("ParsePositions: %v", err)
	}

	pt := parsed["payment_terms_days"]
	if pt.Kind != position.KindNumber || pt.Number != 45 {
		t.Errorf("unexpected payment terms value: %+v", pt)
	}
	if !pt.HasRange() {
		t.Error("number position should carry the definition's range")
	}
	if ar := parsed["auto_renewal"]; ar.Kind != position.KindBool || !ar.Bool {
		t.Errorf("unexpected auto renewal value: %+v", ar)
	}
}

func TestParsePositionsKindMismatch(t *testing.T) {
	cat := catalog.Default()

	if _, err := ParsePositions(cat, map[string]any{"payment_terms_days": "soon"}); !errors.Is(err, position.ErrKindMismatch) {
		t.Errorf("expected ErrKindMismatch for string into a number item, got %v", err)
	}
	if _, err := ParsePositions(cat, map[string]any{"no_such_item": true}); err == nil {
		t.Error("expected error for unknown item id")
	}
}
