package catalog

import (
	"testing"

	"github.com/atelierlabs/makerstock/internal/model"
)

func TestFindByBarcode(t *testing.T) {
	m := Find("6977252629702", "")
	if m == nil {
		t.Fatal("expected match for basswood barcode")
	}
	if m.Model != "B-YA001" || m.ThicknessMm != 3 || m.PcsPerPack != 6 {
		t.Errorf("unexpected entry: %+v", m)
	}
}

func TestFindByModel(t *testing.T) {
	// Full model code, case-insensitive.
	if m := Find("", "b-yb001"); m == nil || m.Type != "MDF" {
		t.Errorf("expected MDF for b-yb001, got %+v", m)
	}
	// Without the B- prefix.
	if m := Find("", "YB001"); m == nil || m.Type != "MDF" {
		t.Errorf("expected MDF for YB001, got %+v", m)
	}
	// Alias.
	if m := Find("", "walnut 3mm"); m == nil || m.Model != "B-YC001" {
		t.Errorf("expected B-YC001 for alias, got %+v", m)
	}
}

func TestFindBarcodeWinsOverModel(t *testing.T) {
	// Conflicting inputs: barcode is tried first.
	m := Find("6977252629726", "B-YA001")
	if m == nil || m.Model != "B-YB001" {
		t.Errorf("expected barcode match B-YB001, got %+v", m)
	}
}

func TestFindNoMatch(t *testing.T) {
	if m := Find("000000", "nope"); m != nil {
		t.Errorf("expected nil, got %+v", m)
	}
}

func TestEnrichCatalogWinsOverGuess(t *testing.T) {
	wrong := 99.0
	guess := LabelGuess{
		Barcode:     "6977252629818",
		Type:        "Wood",  // AI got this wrong
		ThicknessMm: &wrong,  // and this
		Color:       "brown", // catalog has no color, guess survives
	}

	got := Enrich(guess)
	if !got.CatalogMatch {
		t.Fatal("expected a catalog match")
	}
	if got.Type != "Leather" {
		t.Errorf("Type = %q, want catalog value Leather", got.Type)
	}
	if got.ThicknessMm == nil || *got.ThicknessMm != 1.5 {
		t.Errorf("ThicknessMm = %v, want 1.5", got.ThicknessMm)
	}
	if got.SafeFlag != model.SafeFlagCaution {
		t.Errorf("SafeFlag = %q, want CAUTION", got.SafeFlag)
	}
	if got.Color != "brown" {
		t.Errorf("Color = %q, want guess value brown", got.Color)
	}
	if got.Brand != "Bambu Lab" {
		t.Errorf("Brand = %q, want Bambu Lab default on match", got.Brand)
	}
}

func TestEnrichNoMatchKeepsGuess(t *testing.T) {
	th := 4.0
	guess := LabelGuess{Brand: "Generic", Type: "Plywood", ThicknessMm: &th}

	got := Enrich(guess)
	if got.CatalogMatch {
		t.Fatal("expected no catalog match")
	}
	if got.Brand != "Generic" || got.Type != "Plywood" || got.ThicknessMm == nil || *got.ThicknessMm != 4 {
		t.Errorf("guess fields not preserved: %+v", got)
	}
	if got.SafeFlag != model.SafeFlagOK {
		t.Errorf("SafeFlag = %q, want OK fallback", got.SafeFlag)
	}
}
