package clauses

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/SpikeIreland/clarence-engine/internal/db"
)

func TestAddOrUpdate(t *testing.T) {
	sel := Selection{ClauseID: "payment-terms", Position: 7, Weight: 5}

	set, err := AddOrUpdate(nil, sel)
	if err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(set))
	}

	// Upsert by clause id replaces, never duplicates.
	sel.Position = 3
	set, err = AddOrUpdate(set, sel)
	if err != nil {
		t.Fatalf("AddOrUpdate update: %v", err)
	}
	if len(set) != 1 || set[0].Position != 3 {
		t.Errorf("expected single selection at position 3, got %+v", set)
	}

	// Non-negotiable wins over the requested weight.
	locked := Selection{ClauseID: "liability-cap", Position: 10, Weight: 3, NonNegotiable: true}
	set, err = AddOrUpdate(set, locked)
	if err != nil {
		t.Fatalf("AddOrUpdate non-negotiable: %v", err)
	}
	if set[1].Weight != NonNegotiableWeight {
		t.Errorf("expected weight %d, got %d", NonNegotiableWeight, set[1].Weight)
	}
}

func TestAddOrUpdateRejectsOutOfRange(t *testing.T) {
	if _, err := AddOrUpdate(nil, Selection{ClauseID: "x", Position: 11, Weight: 5}); err == nil {
		t.Error("position 11 should be rejected, not clamped")
	}
	if _, err := AddOrUpdate(nil, Selection{ClauseID: "x", Position: 0, Weight: 5}); err == nil {
		t.Error("position 0 should be rejected")
	}
	if _, err := AddOrUpdate(nil, Selection{ClauseID: "x", Position: 5, Weight: 4}); err == nil {
		t.Error("weight 4 is not on the scale and should be rejected")
	}
}

func TestToggleNonNegotiableAsymmetry(t *testing.T) {
	sel := Selection{ClauseID: "x", Position: 5, Weight: 3}

	sel = ToggleNonNegotiable(sel, true)
	if sel.Weight != NonNegotiableWeight {
		t.Fatalf("setting non-negotiable must force weight 10, got %d", sel.Weight)
	}

	// Clearing the flag leaves the weight where it was.
	sel = ToggleNonNegotiable(sel, false)
	if sel.NonNegotiable {
		t.Error("flag should be cleared")
	}
	if sel.Weight != NonNegotiableWeight {
		t.Errorf("clearing non-negotiable must not change weight, got %d", sel.Weight)
	}
}

func setupStore(t *testing.T) (*Store, *db.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.Exec(
		`INSERT INTO sessions (id, customer_id, name) VALUES ('sess-1', 'cust-1', 'MSA renewal')`,
	); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	return NewStore(database), database
}

func testPack() Pack {
	return Pack{
		Name:     "Managed Services Baseline",
		PackType: PackService,
		Clauses: []PackClause{
			{ClauseID: "payment-terms", Category: "Commercial", DisplayOrder: 1, Position: 6, Weight: 5},
			{ClauseID: "liability-cap", Category: "Commercial", DisplayOrder: 2, Position: 8, Weight: 10, NonNegotiable: true},
			{ClauseID: "service-levels", Category: "Service Levels", DisplayOrder: 3, Position: 7, Weight: 7},
		},
	}
}

func TestStoreUpsertSelection(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, Selection{
		SessionID: "sess-1", ClauseID: "payment-terms", Category: "Commercial",
		Position: 7, Weight: 3, AddedManually: true,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.Position != 7 || saved.Weight != 3 {
		t.Errorf("unexpected saved selection: %+v", saved)
	}

	// Same clause id updates in place.
	saved, err = store.Upsert(ctx, Selection{
		SessionID: "sess-1", ClauseID: "payment-terms", Position: 4, Weight: 7, NonNegotiable: true,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if saved.Weight != NonNegotiableWeight {
		t.Errorf("non-negotiable upsert should force weight 10, got %d", saved.Weight)
	}

	all, err := store.ListSelections(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListSelections: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(all))
	}
}

func TestStoreSetNonNegotiable(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, Selection{SessionID: "sess-1", ClauseID: "x", Position: 5, Weight: 3})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	sel, err := store.SetNonNegotiable(ctx, "sess-1", "x", true)
	if err != nil {
		t.Fatalf("SetNonNegotiable: %v", err)
	}
	if sel.Weight != NonNegotiableWeight {
		t.Errorf("expected weight 10, got %d", sel.Weight)
	}

	sel, err = store.SetNonNegotiable(ctx, "sess-1", "x", false)
	if err != nil {
		t.Fatalf("SetNonNegotiable clear: %v", err)
	}
	if sel.Weight != NonNegotiableWeight {
		t.Errorf("clearing the flag must leave weight at %d, got %d", NonNegotiableWeight, sel.Weight)
	}

	if _, err := store.SetNonNegotiable(ctx, "sess-1", "missing", true); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("expected ErrSelectionNotFound, got %v", err)
	}
}

func TestLoadPackRequiresConfirmation(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, testPack())
	if err != nil {
		t.Fatalf("CreatePack: %v", err)
	}

	// Four pre-existing selections.
	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := store.Upsert(ctx, Selection{SessionID: "sess-1", ClauseID: id, Position: 5, Weight: 5}); err != nil {
			t.Fatalf("seeding selection %s: %v", id, err)
		}
	}

	// Unconfirmed load over a non-empty set is refused.
	_, err = store.LoadPack(ctx, "sess-1", pack.ID, false)
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}

	// The refusal left everything in place.
	existing, _ := store.ListSelections(ctx, "sess-1")
	if len(existing) != 4 {
		t.Fatalf("refused load must not touch selections, got %d", len(existing))
	}

	// Confirmed load replaces wholesale, none retained.
	replaced, err := store.LoadPack(ctx, "sess-1", pack.ID, true)
	if err != nil {
		t.Fatalf("LoadPack confirmed: %v", err)
	}
	if len(replaced) != 3 {
		t.Fatalf("expected 3 selections from the pack, got %d", len(replaced))
	}
	for _, sel := range replaced {
		if sel.ClauseID == "a" || sel.ClauseID == "b" || sel.ClauseID == "c" || sel.ClauseID == "d" {
			t.Errorf("old selection %s survived the pack load", sel.ClauseID)
		}
		if sel.SourcePackID != pack.ID {
			t.Errorf("selection %s missing source pack id", sel.ClauseID)
		}
	}
}

func TestLoadPackEmptySetNeedsNoConfirmation(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	pack, err := store.CreatePack(ctx, testPack())
	if err != nil {
		t.Fatalf("CreatePack: %v", err)
	}

	selections, err := store.LoadPack(ctx, "sess-1", pack.ID, false)
	if err != nil {
		t.Fatalf("LoadPack onto empty set: %v", err)
	}
	if len(selections) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(selections))
	}
}

func TestLoadPackInvalidIsAtomic(t *testing.T) {
	store, database := setupStore(t)
	ctx := context.Background()

	// A malformed pack written behind the store's back: position 0 is
	// outside the 1-10 scale, so validation has to reject the load.
	if _, err := database.Exec(
		`INSERT INTO clause_packs (id, name) VALUES ('bad-pack', 'Broken')`,
	); err != nil {
		t.Fatalf("seeding pack: %v", err)
	}
	if _, err := database.Exec(
		`INSERT INTO pack_clauses (pack_id, clause_id, position, weight) VALUES ('bad-pack', 'z', 0, 5)`,
	); err != nil {
		t.Fatalf("seeding pack clause: %v", err)
	}

	if _, err := store.Upsert(ctx, Selection{SessionID: "sess-1", ClauseID: "keep", Position: 5, Weight: 5}); err != nil {
		t.Fatalf("seeding selection: %v", err)
	}

	if _, err := store.LoadPack(ctx, "sess-1", "bad-pack", true); err == nil {
		t.Fatal("loading an invalid pack should fail")
	}

	remaining, _ := store.ListSelections(ctx, "sess-1")
	if len(remaining) != 1 || remaining[0].ClauseID != "keep" {
		t.Errorf("failed load must leave existing selections untouched, got %+v", remaining)
	}
}

func TestPackFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "packs", "platform")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	content := []byte(`name: SaaS Baseline
owner_type: platform
pack_type: service
clauses:
  - clause_id: payment-terms
    category: Commercial
    display_order: 1
    position: 6
    weight: 5
  - clause_id: liability-cap
    category: Commercial
    display_order: 2
    position: 8
    weight: 10
    non_negotiable: true
`)
	path := filepath.Join(sub, "saas.yml")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := DiscoverPackFiles(dir, []string{"packs/**/*.yml"})
	if err != nil {
		t.Fatalf("DiscoverPackFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 pack file, got %d", len(files))
	}

	pack, err := ReadPackFile(files[0])
	if err != nil {
		t.Fatalf("ReadPackFile: %v", err)
	}

	want := &Pack{
		Name:      "SaaS Baseline",
		OwnerType: OwnerPlatform,
		PackType:  PackService,
		Clauses: []PackClause{
			{ClauseID: "payment-terms", Category: "Commercial", DisplayOrder: 1, Position: 6, Weight: 5},
			{ClauseID: "liability-cap", Category: "Commercial", DisplayOrder: 2, Position: 8, Weight: 10, NonNegotiable: true},
		},
	}
	if diff := cmp.Diff(want, pack, cmpopts.IgnoreFields(Pack{}, "ID", "CreatedAt")); diff != "" {
		t.Errorf("pack mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPackFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("name: Bad\nclauses:\n  - clause_id: x\n    position: 99\n    weight: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPackFile(path); err == nil {
		t.Error("pack with position 99 should be rejected")
	}
}
