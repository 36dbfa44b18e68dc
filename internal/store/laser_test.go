package store

import (
	"context"
	"testing"
	"time"

	"github.com/atelierlabs/makerstock/internal/db"
	"github.com/atelierlabs/makerstock/internal/model"
)

func TestCreateLaserMaterialDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, err := CreateLaserMaterial(ctx, database, LaserCreate{
		Type:            "Plywood",
		ThicknessMm:     3,
		Format:          model.LaserFormatSheet,
		QuantityInitial: 10,
	})
	if err != nil {
		t.Fatalf("CreateLaserMaterial: %v", err)
	}

	material, err := GetLaserMaterial(ctx, database, id)
	if err != nil {
		t.Fatalf("GetLaserMaterial: %v", err)
	}
	if material == nil {
		t.Fatal("expected material, got nil")
	}
	if material.QuantityRemaining != 10 {
		t.Errorf("QuantityRemaining = %d, want full pack size 10", material.QuantityRemaining)
	}
	if material.SafeFlag != model.SafeFlagOK {
		t.Errorf("SafeFlag = %q, want default OK", material.SafeFlag)
	}
	if material.ThresholdQty != nil {
		t.Errorf("ThresholdQty = %v, want nil", material.ThresholdQty)
	}
}

func TestGetLaserMaterialNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	material, err := GetLaserMaterial(context.Background(), database, "no-such-id")
	if err != nil {
		t.Fatalf("GetLaserMaterial: %v", err)
	}
	if material != nil {
		t.Errorf("expected nil for missing material, got %+v", material)
	}
}

func TestAdjustLaserStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "Acrylic", ThicknessMm: 3, Format: model.LaserFormatSheet,
		QuantityInitial: 10,
	})

	res, err := AdjustLaserStock(ctx, database, id, -3, "cut signage", "owner-1")
	if err != nil {
		t.Fatalf("AdjustLaserStock: %v", err)
	}
	if res.QuantityRemaining != 7 {
		t.Errorf("QuantityRemaining = %d, want 7", res.QuantityRemaining)
	}
	if res.MovementID == "" {
		t.Error("expected non-empty movement id")
	}
}

func TestAdjustLaserStockClampsButLogsRequestedDelta(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "MDF", ThicknessMm: 3, Format: model.LaserFormatSheet,
		QuantityInitial: 10,
	})
	AdjustLaserStock(ctx, database, id, -3, "", "owner-1")

	// Over-draw clamps the remaining quantity at zero.
	res, err := AdjustLaserStock(ctx, database, id, -20, "bulk job", "owner-1")
	if err != nil {
		t.Fatalf("AdjustLaserStock: %v", err)
	}
	if res.QuantityRemaining != 0 {
		t.Errorf("QuantityRemaining = %d, want clamped 0", res.QuantityRemaining)
	}

	// The ledger keeps the requested delta, not the effective change.
	movements, err := ListMovements(ctx, database, id)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].DeltaQty != -20 {
		t.Errorf("DeltaQty = %d, want requested -20", movements[0].DeltaQty)
	}
	if movements[0].Note != "bulk job" {
		t.Errorf("Note = %q, want %q", movements[0].Note, "bulk job")
	}
}

func TestAdjustLaserStockRestock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "Cork", ThicknessMm: 2, Format: model.LaserFormatSheet,
		QuantityInitial: 5,
	})
	AdjustLaserStock(ctx, database, id, -5, "", "owner-1")

	res, _ := AdjustLaserStock(ctx, database, id, 8, "restock", "owner-1")
	if res.QuantityRemaining != 8 {
		t.Errorf("QuantityRemaining = %d, want 8 after restock", res.QuantityRemaining)
	}
}

func TestAdjustLaserStockNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := AdjustLaserStock(context.Background(), database, "missing", -1, "", "owner-1")
	if err != nil {
		t.Fatalf("AdjustLaserStock: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result for missing material, got %+v", res)
	}
}

func TestListMovementsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "Leather", ThicknessMm: 2, Format: model.LaserFormatPcs,
		QuantityInitial: 20,
	})

	AdjustLaserStock(ctx, database, id, -1, "first", "owner-1")
	time.Sleep(5 * time.Millisecond)
	AdjustLaserStock(ctx, database, id, -2, "second", "owner-1")

	movements, err := ListMovements(ctx, database, id)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].Note != "second" || movements[1].Note != "first" {
		t.Errorf("expected newest first, got %q then %q", movements[0].Note, movements[1].Note)
	}
}

func TestUpdateLaserMaterialMergesFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "Plywood", ThicknessMm: 3, Format: model.LaserFormatSheet,
		QuantityInitial: 10, Location: "Shelf A",
	})
	AdjustLaserStock(ctx, database, id, -4, "", "owner-1")

	newType := "Birch Plywood"
	threshold := 3
	material, err := UpdateLaserMaterial(ctx, database, id, LaserUpdate{
		Type:         &newType,
		ThresholdQty: &threshold,
	})
	if err != nil {
		t.Fatalf("UpdateLaserMaterial: %v", err)
	}
	if material.Type != "Birch Plywood" {
		t.Errorf("Type = %q, want merged value", material.Type)
	}
	if material.Location != "Shelf A" {
		t.Errorf("Location = %q, want untouched value", material.Location)
	}
	// Remaining stock only moves through adjustments.
	if material.QuantityRemaining != 6 {
		t.Errorf("QuantityRemaining = %d, want 6", material.QuantityRemaining)
	}
	if material.ThresholdQty == nil || *material.ThresholdQty != 3 {
		t.Errorf("ThresholdQty = %v, want 3", material.ThresholdQty)
	}
}

func TestUpdateLaserMaterialNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	newType := "x"
	material, err := UpdateLaserMaterial(context.Background(), database, "missing", LaserUpdate{Type: &newType})
	if err != nil {
		t.Fatalf("UpdateLaserMaterial: %v", err)
	}
	if material != nil {
		t.Errorf("expected nil for missing material, got %+v", material)
	}
}

func TestDeleteLaserMaterialCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id, _ := CreateLaserMaterial(ctx, database, LaserCreate{
		Type: "Cardboard", ThicknessMm: 1.5, Format: model.LaserFormatSheet,
		QuantityInitial: 50,
	})
	AdjustLaserStock(ctx, database, id, -10, "", "owner-1")

	ok, err := DeleteLaserMaterial(ctx, database, id)
	if err != nil || !ok {
		t.Fatalf("DeleteLaserMaterial: ok=%v err=%v", ok, err)
	}

	material, _ := GetLaserMaterial(ctx, database, id)
	if material != nil {
		t.Error("expected material gone after delete")
	}

	var count int
	database.QueryRow(`SELECT COUNT(*) FROM movements WHERE material_id = ?`, id).Scan(&count)
	if count != 0 {
		t.Errorf("expected 0 orphaned movements, got %d", count)
	}
}

func TestLaserLowStock(t *testing.T) {
	threshold := 5
	cases := []struct {
		name     string
		material model.LaserMaterial
		want     bool
	}{
		{"above default threshold", model.LaserMaterial{QuantityRemaining: 3}, false},
		{"at default threshold", model.LaserMaterial{QuantityRemaining: 2}, true},
		{"custom threshold", model.LaserMaterial{QuantityRemaining: 4, ThresholdQty: &threshold}, true},
		{"zero", model.LaserMaterial{QuantityRemaining: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.material.LowStock(); got != tc.want {
				t.Errorf("LowStock() = %v, want %v", got, tc.want)
			}
		})
	}
}
