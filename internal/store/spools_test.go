package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/atelierlabs/makerstock/internal/db"
	"github.com/atelierlabs/makerstock/internal/model"
)

func TestCreateAndGetSpool(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, err := CreateSpool(ctx, database, SpoolCreate{
		Label:       "Sunlu PLA Black",
		Brand:       "Sunlu",
		Material:    "PLA",
		Color:       "Black",
		ColorHex:    "#000000",
		Diameter:    1.75,
		NetInitialG: 1000,
		TareG:       200,
	})
	if err != nil {
		t.Fatalf("CreateSpool: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	spool, err := GetSpool(ctx, database, id)
	if err != nil {
		t.Fatalf("GetSpool: %v", err)
	}
	if spool == nil {
		t.Fatal("expected spool, got nil")
	}
	if spool.Status != model.SpoolStatusNew {
		t.Errorf("expected status NEW, got %q", spool.Status)
	}
	// Derived fields are null until the first weigh-in.
	if spool.RemainingG != nil || spool.RemainingPct != nil || spool.LastWeighInAt != nil || spool.LastWeightG != nil {
		t.Errorf("expected null derived fields on a fresh spool: %+v", spool)
	}
}

func TestGetSpoolNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	spool, err := GetSpool(context.Background(), database, "no-such-id")
	if err != nil {
		t.Fatalf("GetSpool: %v", err)
	}
	if spool != nil {
		t.Errorf("expected nil for missing spool, got %+v", spool)
	}
}

func TestAddWeighInDerivation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})

	// 850 g gross over a 200 g tare leaves 650 g remaining, 65%.
	res, err := AddWeighIn(ctx, database, id, 850, "", "owner-1")
	if err != nil {
		t.Fatalf("AddWeighIn: %v", err)
	}
	if res.RemainingG != 650 {
		t.Errorf("RemainingG = %v, want 650", res.RemainingG)
	}
	if math.Abs(res.RemainingPct-0.65) > 1e-9 {
		t.Errorf("RemainingPct = %v, want 0.65", res.RemainingPct)
	}

	spool, _ := GetSpool(ctx, database, id)
	if spool.LastWeightG == nil || *spool.LastWeightG != 850 {
		t.Errorf("LastWeightG = %v, want 850", spool.LastWeightG)
	}
	if spool.LastWeighInAt == nil {
		t.Error("expected LastWeighInAt to be set")
	}

	// Draining the spool to tare weight makes it EMPTY.
	res, err = AddWeighIn(ctx, database, id, 200, "all used up", "owner-1")
	if err != nil {
		t.Fatalf("AddWeighIn: %v", err)
	}
	if res.RemainingG != 0 || res.RemainingPct != 0 {
		t.Errorf("expected empty derivation, got %+v", res)
	}
	if res.Status != model.SpoolStatusEmpty {
		t.Errorf("Status = %q, want EMPTY", res.Status)
	}
}

func TestAddWeighInStatusTransitions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	threshold := 100.0
	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PETG", Color: "Red",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200, ThresholdG: &threshold,
	})

	// First weigh-in with plenty left: the spool is now in use.
	res, _ := AddWeighIn(ctx, database, id, 850, "", "owner-1")
	if res.Status != model.SpoolStatusInUse {
		t.Errorf("Status = %q, want IN_USE after first weigh-in", res.Status)
	}

	// Drop to the threshold.
	res, _ = AddWeighIn(ctx, database, id, 300, "", "owner-1")
	if res.Status != model.SpoolStatusLow {
		t.Errorf("Status = %q, want LOW at threshold", res.Status)
	}
}

func TestAddWeighInNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := AddWeighIn(context.Background(), database, "missing", 100, "", "owner-1")
	if err != nil {
		t.Fatalf("AddWeighIn: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result for missing spool, got %+v", res)
	}
}

func TestListWeighInsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})

	AddWeighIn(ctx, database, id, 900, "first", "owner-1")
	time.Sleep(5 * time.Millisecond)
	AddWeighIn(ctx, database, id, 800, "second", "owner-1")

	weighIns, err := ListWeighIns(ctx, database, id)
	if err != nil {
		t.Fatalf("ListWeighIns: %v", err)
	}
	if len(weighIns) != 2 {
		t.Fatalf("expected 2 weigh-ins, got %d", len(weighIns))
	}
	if weighIns[0].WeightG != 800 || weighIns[1].WeightG != 900 {
		t.Errorf("expected newest first, got %v then %v", weighIns[0].WeightG, weighIns[1].WeightG)
	}
	if weighIns[0].CreatedBy != "owner-1" {
		t.Errorf("CreatedBy = %q, want owner-1", weighIns[0].CreatedBy)
	}
}

func TestUpdateSpoolRecomputesDerivedFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})
	AddWeighIn(ctx, database, id, 850, "", "owner-1")

	// Correcting the tare reworks remaining weight from the recorded
	// last weigh-in.
	newTare := 250.0
	spool, err := UpdateSpool(ctx, database, id, SpoolUpdate{TareG: &newTare})
	if err != nil {
		t.Fatalf("UpdateSpool: %v", err)
	}
	if spool.RemainingG == nil || *spool.RemainingG != 600 {
		t.Errorf("RemainingG = %v, want 600 after tare correction", spool.RemainingG)
	}
	if spool.RemainingPct == nil || math.Abs(*spool.RemainingPct-0.6) > 1e-9 {
		t.Errorf("RemainingPct = %v, want 0.6", spool.RemainingPct)
	}
}

func TestUpdateSpoolExplicitStatusWins(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})
	AddWeighIn(ctx, database, id, 850, "", "owner-1")

	archived := model.SpoolStatusArchived
	spool, err := UpdateSpool(ctx, database, id, SpoolUpdate{Status: &archived})
	if err != nil {
		t.Fatalf("UpdateSpool: %v", err)
	}
	if spool.Status != model.SpoolStatusArchived {
		t.Errorf("Status = %q, want explicit ARCHIVED preserved", spool.Status)
	}
}

func TestUpdateSpoolNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	label := "x"
	spool, err := UpdateSpool(context.Background(), database, "missing", SpoolUpdate{Label: &label})
	if err != nil {
		t.Fatalf("UpdateSpool: %v", err)
	}
	if spool != nil {
		t.Errorf("expected nil for missing spool, got %+v", spool)
	}
}

func TestArchiveSpoolPreservedOverWeighIn(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})

	ok, err := ArchiveSpool(ctx, database, id)
	if err != nil || !ok {
		t.Fatalf("ArchiveSpool: ok=%v err=%v", ok, err)
	}

	// A weigh-in with plenty of material left does not unarchive.
	res, _ := AddWeighIn(ctx, database, id, 850, "", "owner-1")
	if res.Status != model.SpoolStatusArchived {
		t.Errorf("Status = %q, want ARCHIVED preserved", res.Status)
	}

	// But draining it still ratchets to EMPTY.
	res, _ = AddWeighIn(ctx, database, id, 150, "", "owner-1")
	if res.Status != model.SpoolStatusEmpty {
		t.Errorf("Status = %q, want EMPTY over ARCHIVED", res.Status)
	}
}

func TestDeleteSpoolCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "S", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})
	AddWeighIn(ctx, database, id, 850, "", "owner-1")
	AddWeighIn(ctx, database, id, 700, "", "owner-1")

	ok, err := DeleteSpool(ctx, database, id)
	if err != nil || !ok {
		t.Fatalf("DeleteSpool: ok=%v err=%v", ok, err)
	}

	spool, _ := GetSpool(ctx, database, id)
	if spool != nil {
		t.Error("expected spool gone after delete")
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM weigh_ins WHERE spool_id = ?`, id).Scan(&count)
	if count != 0 {
		t.Errorf("expected 0 orphaned weigh-ins, got %d", count)
	}
}

func TestListSpoolsNewestUpdatedFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateSpool(ctx, database, SpoolCreate{
		Label: "First", Material: "PLA", Color: "Black",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})
	time.Sleep(5 * time.Millisecond)
	CreateSpool(ctx, database, SpoolCreate{
		Label: "Second", Material: "PLA", Color: "White",
		Diameter: 1.75, NetInitialG: 1000, TareG: 200,
	})

	spools, err := ListSpools(ctx, database)
	if err != nil {
		t.Fatalf("ListSpools: %v", err)
	}
	if len(spools) != 2 {
		t.Fatalf("expected 2 spools, got %d", len(spools))
	}
	if spools[0].Label != "Second" {
		t.Errorf("expected newest first, got %q", spools[0].Label)
	}

	// Touching the older spool moves it to the front.
	time.Sleep(5 * time.Millisecond)
	AddWeighIn(ctx, database, first, 900, "", "owner-1")
	spools, _ = ListSpools(ctx, database)
	if spools[0].Label != "First" {
		t.Errorf("expected recently weighed spool first, got %q", spools[0].Label)
	}
}
