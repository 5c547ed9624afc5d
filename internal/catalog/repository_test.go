package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sensorline/levelquote/internal/catalog"
	"github.com/sensorline/levelquote/internal/db"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/migrations"
	"github.com/sensorline/levelquote/internal/seed"
)

func seededRepository(t *testing.T) *catalog.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalog-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	return catalog.NewRepository(database)
}

func TestFamiliesOrderedByName(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	families, err := repo.Families()
	if err != nil {
		t.Fatalf("list families: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("expected 3 families, got %d", len(families))
	}
	for i, want := range []string{"LS2000", "LS700", "RF9000"} {
		if families[i].Name != want {
			t.Errorf("family %d: expected %q, got %q", i, want, families[i].Name)
		}
	}
}

func TestFamilyByNameNotFound(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	_, err := repo.FamilyByName("LS9999")
	if !qerr.IsType(err, qerr.TypeNotFound) {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestConsultFactoryBasePrice(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	fam, err := repo.FamilyByName("RF9000")
	if err != nil {
		t.Fatalf("load family: %v", err)
	}
	if !fam.BasePrice.IsConsultFactory() {
		t.Fatalf("expected NULL base price to load as consult-factory, got %s", fam.BasePrice)
	}
}

func TestLoadSnapshotLS700(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	snap, err := repo.LoadSnapshot("LS700")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}

	if snap.Family.Name != "LS700" || snap.Family.BaseLength != 10 {
		t.Fatalf("unexpected family: %+v", snap.Family)
	}
	if len(snap.Options) != 7 {
		t.Fatalf("expected 7 options, got %d", len(snap.Options))
	}
	for i, want := range []string{"Voltage", "Material", "Probe Length", "Connection Type", "Flange Rating", "Insulator", "Housing"} {
		if snap.Options[i].Option.Name != want {
			t.Errorf("option %d: expected %q, got %q", i, want, snap.Options[i].Option.Name)
		}
	}
	if len(snap.Materials) != 4 {
		t.Fatalf("expected 4 materials, got %d", len(snap.Materials))
	}

	material, ok := snap.Option("Material")
	if !ok {
		t.Fatal("snapshot is missing Material")
	}
	if !material.Required || material.DefaultCode != "S" {
		t.Fatalf("unexpected Material metadata: %+v", material)
	}
	if got := material.Option.Adders["H"]; got.Manual || !got.Amount.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected Material H adder 110, got %+v", got)
	}
	if got := material.Option.Adders["M"]; !got.Manual {
		t.Fatalf("expected Material M adder to decode as manual, got %+v", got)
	}
	if len(material.Option.Rules) != 1 {
		t.Fatalf("expected 1 Material rule, got %d", len(material.Option.Rules))
	}
	ceiling, ok := material.Option.Rules[0].(catalog.LengthCeilingRule)
	if !ok {
		t.Fatalf("expected a length ceiling rule, got %T", material.Option.Rules[0])
	}
	if ceiling.MaterialCode != "T" || ceiling.MaxLength != 60 {
		t.Fatalf("unexpected ceiling rule: %+v", ceiling)
	}

	rating, ok := snap.Option("Flange Rating")
	if !ok {
		t.Fatal("snapshot is missing Flange Rating")
	}
	if rating.Required {
		t.Fatal("Flange Rating must not be required")
	}
	if _, ok := rating.Option.Rules[0].(catalog.RequiresRule); !ok {
		t.Fatalf("expected a requires rule, got %T", rating.Option.Rules[0])
	}
}

func TestFamilyScopedOptionOverride(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	ls700, err := repo.LoadSnapshot("LS700")
	if err != nil {
		t.Fatalf("load LS700 snapshot: %v", err)
	}
	ls2000, err := repo.LoadSnapshot("LS2000")
	if err != nil {
		t.Fatalf("load LS2000 snapshot: %v", err)
	}

	generic, _ := ls700.Option("Material")
	scoped, _ := ls2000.Option("Material")

	if len(generic.Option.Choices) != 4 {
		t.Fatalf("expected 4 generic Material choices, got %d", len(generic.Option.Choices))
	}
	if len(scoped.Option.Choices) != 2 {
		t.Fatalf("expected 2 LS2000 Material choices, got %d", len(scoped.Option.Choices))
	}
	if _, ok := scoped.Option.Choice("T"); ok {
		t.Fatal("LS2000 Material must not offer PTFE")
	}
	if got := scoped.Option.Adders["H"]; !got.Amount.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected LS2000 H adder 140, got %+v", got)
	}
	if got := generic.Option.Adders["H"]; !got.Amount.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("expected LS700 H adder 110, got %+v", got)
	}
}

func TestMaterialRule(t *testing.T) {
	t.Parallel()
	repo := seededRepository(t)

	rule, err := repo.MaterialRule("H")
	if err != nil {
		t.Fatalf("load material rule: %v", err)
	}
	if !rule.PerFootAdder.Equal(decimal.NewFromInt(110)) {
		t.Errorf("expected per-foot adder 110, got %s", rule.PerFootAdder)
	}
	if !rule.HasLengthSurcharge || !rule.LengthSurcharge.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected 300 length surcharge, got %+v", rule)
	}
	if rule.IsStandardLength(48) {
		t.Error("48 in must be nonstandard for Hastelloy")
	}
	if !rule.IsStandardLength(36) {
		t.Error("36 in must be standard for Hastelloy")
	}

	if _, err := repo.MaterialRule("ZZ"); !qerr.IsType(err, qerr.TypeNotFound) {
		t.Fatalf("expected not_found error, got %v", err)
	}
}
