package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierlabs/makerstock/internal/model"
)

// LaserCreate holds the caller-supplied fields for a new laser material.
type LaserCreate struct {
	Type            string
	ThicknessMm     float64
	Format          string
	WidthMm         *float64
	HeightMm        *float64
	QuantityInitial int
	SafeFlag        string
	ThresholdQty    *int
	Location        string
	Notes           string
	Brand           string
	Model           string
	Barcode         string
	ImageURL        string
}

// LaserUpdate holds a partial update; nil fields are left unchanged.
// quantityRemaining is not updatable here, it only moves through
// AdjustLaserStock so the movement ledger stays complete.
type LaserUpdate struct {
	Type            *string
	ThicknessMm     *float64
	Format          *string
	WidthMm         *float64
	HeightMm        *float64
	QuantityInitial *int
	SafeFlag        *string
	ThresholdQty    *int
	Location        *string
	Notes           *string
	Brand           *string
	Model           *string
	Barcode         *string
	ImageURL        *string
}

const laserColumns = `id, type, thickness_mm, format, width_mm, height_mm,
	quantity_initial, quantity_remaining, safe_flag, threshold_qty,
	location, notes, brand, model, barcode, image_url, created_at, updated_at`

// CreateLaserMaterial creates a new laser material with its remaining
// quantity initialized to the full pack size. Returns the new id.
func CreateLaserMaterial(ctx context.Context, db *sql.DB, in LaserCreate) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	safeFlag := in.SafeFlag
	if safeFlag == "" {
		safeFlag = model.SafeFlagOK
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO laser_materials (id, type, thickness_mm, format, width_mm,
		     height_mm, quantity_initial, quantity_remaining, safe_flag,
		     threshold_qty, location, notes, brand, model, barcode, image_url,
		     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Type, in.ThicknessMm, in.Format, in.WidthMm, in.HeightMm,
		in.QuantityInitial, in.QuantityInitial, safeFlag, in.ThresholdQty,
		nullStr(in.Location), nullStr(in.Notes), nullStr(in.Brand),
		nullStr(in.Model), nullStr(in.Barcode), nullStr(in.ImageURL),
		now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating laser material: %w", err)
	}
	return id, nil
}

// GetLaserMaterial returns a laser material by id, or nil if it does not exist.
func GetLaserMaterial(ctx context.Context, db *sql.DB, id string) (*model.LaserMaterial, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+laserColumns+` FROM laser_materials WHERE id = ?`, id)

	material, err := scanLaserMaterial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting laser material: %w", err)
	}
	return material, nil
}

// ListLaserMaterials returns all laser materials, newest-updated first.
func ListLaserMaterials(ctx context.Context, db *sql.DB) ([]model.LaserMaterial, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+laserColumns+` FROM laser_materials ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing laser materials: %w", err)
	}
	defer rows.Close()

	var materials []model.LaserMaterial
	for rows.Next() {
		material, err := scanLaserMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning laser material: %w", err)
		}
		materials = append(materials, *material)
	}
	return materials, rows.Err()
}

// UpdateLaserMaterial merges the provided fields into an existing material.
// No cross-field recomputation happens: the remaining quantity is tracked
// through movements, not derived. Returns nil if the material does not exist.
func UpdateLaserMaterial(ctx context.Context, db *sql.DB, id string, upd LaserUpdate) (*model.LaserMaterial, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+laserColumns+` FROM laser_materials WHERE id = ?`, id)
	material, err := scanLaserMaterial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting laser material for update: %w", err)
	}

	if upd.Type != nil {
		material.Type = *upd.Type
	}
	if upd.ThicknessMm != nil {
		material.ThicknessMm = *upd.ThicknessMm
	}
	if upd.Format != nil {
		material.Format = *upd.Format
	}
	if upd.WidthMm != nil {
		material.WidthMm = upd.WidthMm
	}
	if upd.HeightMm != nil {
		material.HeightMm = upd.HeightMm
	}
	if upd.QuantityInitial != nil {
		material.QuantityInitial = *upd.QuantityInitial
	}
	if upd.SafeFlag != nil {
		material.SafeFlag = *upd.SafeFlag
	}
	if upd.ThresholdQty != nil {
		material.ThresholdQty = upd.ThresholdQty
	}
	if upd.Location != nil {
		material.Location = *upd.Location
	}
	if upd.Notes != nil {
		material.Notes = *upd.Notes
	}
	if upd.Brand != nil {
		material.Brand = *upd.Brand
	}
	if upd.Model != nil {
		material.Model = *upd.Model
	}
	if upd.Barcode != nil {
		material.Barcode = *upd.Barcode
	}
	if upd.ImageURL != nil {
		material.ImageURL = *upd.ImageURL
	}

	material.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE laser_materials SET type = ?, thickness_mm = ?, format = ?,
		     width_mm = ?, height_mm = ?, quantity_initial = ?, safe_flag = ?,
		     threshold_qty = ?, location = ?, notes = ?, brand = ?, model = ?,
		     barcode = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		material.Type, material.ThicknessMm, material.Format,
		material.WidthMm, material.HeightMm, material.QuantityInitial,
		material.SafeFlag, material.ThresholdQty, nullStr(material.Location),
		nullStr(material.Notes), nullStr(material.Brand), nullStr(material.Model),
		nullStr(material.Barcode), nullStr(material.ImageURL), material.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating laser material: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing laser material update: %w", err)
	}
	return material, nil
}

// DeleteLaserMaterial removes a material and all of its movements as one
// unit via the cascading foreign key. Returns false if it did not exist.
func DeleteLaserMaterial(ctx context.Context, db *sql.DB, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM laser_materials WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting laser material: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting laser material: %w", err)
	}
	return n > 0, nil
}

// AdjustResult is the outcome of a stock adjustment.
type AdjustResult struct {
	MovementID        string `json:"movementId"`
	QuantityRemaining int    `json:"quantityRemaining"`
}

// AdjustLaserStock applies a signed delta to a material's remaining
// quantity, clamped at zero, and records the movement. The ledger stores
// the requested delta, not the clamped effective change, so over-draws
// remain visible in the history. Runs as a single transaction with the
// movement insert first. Returns nil if the material does not exist.
func AdjustLaserStock(ctx context.Context, db *sql.DB, materialID string, delta int, note, createdBy string) (*AdjustResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity_remaining FROM laser_materials WHERE id = ?`, materialID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting laser material for adjustment: %w", err)
	}

	movementID := uuid.NewString()
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO movements (id, material_id, delta_qty, note, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		movementID, materialID, delta, nullStr(note), now, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	newQuantity := current + delta
	if newQuantity < 0 {
		newQuantity = 0
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE laser_materials SET quantity_remaining = ?, updated_at = ? WHERE id = ?`,
		newQuantity, now, materialID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating laser material stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing stock adjustment: %w", err)
	}

	return &AdjustResult{MovementID: movementID, QuantityRemaining: newQuantity}, nil
}

// ListMovements returns a material's movement log, newest first.
func ListMovements(ctx context.Context, db *sql.DB, materialID string) ([]model.Movement, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, material_id, delta_qty, note, created_at, created_by
		 FROM movements WHERE material_id = ? ORDER BY created_at DESC, id`,
		materialID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var note sql.NullString
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.DeltaQty, &note, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.Note = note.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func scanLaserMaterial(row rowScanner) (*model.LaserMaterial, error) {
	material := &model.LaserMaterial{}
	var location, notes, brand, modelCode, barcode, imageURL sql.NullString
	var thresholdQty sql.NullInt64
	err := row.Scan(
		&material.ID, &material.Type, &material.ThicknessMm, &material.Format,
		&material.WidthMm, &material.HeightMm, &material.QuantityInitial,
		&material.QuantityRemaining, &material.SafeFlag, &thresholdQty,
		&location, &notes, &brand, &modelCode, &barcode, &imageURL,
		&material.CreatedAt, &material.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	material.Location = location.String
	material.Notes = notes.String
	material.Brand = brand.String
	material.Model = modelCode.String
	material.Barcode = barcode.String
	material.ImageURL = imageURL.String
	if thresholdQty.Valid {
		q := int(thresholdQty.Int64)
		material.ThresholdQty = &q
	}
	return material, nil
}
