package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/stock"
)

// SpoolCreate holds the caller-supplied fields for a new spool. Derived
// fields (remaining weight, percentages) start out null until the first
// weigh-in.
type SpoolCreate struct {
	Label         string
	Brand         string
	Material      string
	Color         string
	ColorHex      string
	Diameter      float64
	NetInitialG   float64
	TareG         float64
	Status        string
	ThresholdG    *float64
	Location      string
	Notes         string
	Barcode       string
	PrintTempMinC *float64
	PrintTempMaxC *float64
	BedTempMinC   *float64
	BedTempMaxC   *float64
}

// SpoolUpdate holds a partial update; nil fields are left unchanged.
type SpoolUpdate struct {
	Label         *string
	Brand         *string
	Material      *string
	Color         *string
	ColorHex      *string
	Diameter      *float64
	NetInitialG   *float64
	TareG         *float64
	Status        *string
	ThresholdG    *float64
	Location      *string
	Notes         *string
	Barcode       *string
	PrintTempMinC *float64
	PrintTempMaxC *float64
	BedTempMinC   *float64
	BedTempMaxC   *float64
}

const spoolColumns = `id, label, brand, material, color, color_hex, diameter,
	net_initial_g, tare_g, status, threshold_g, location, notes, barcode,
	print_temp_min_c, print_temp_max_c, bed_temp_min_c, bed_temp_max_c,
	last_weigh_in_at, last_weight_g, remaining_g, remaining_pct,
	created_at, updated_at`

// CreateSpool creates a new spool and returns its id.
func CreateSpool(ctx context.Context, db *sql.DB, in SpoolCreate) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	status := in.Status
	if status == "" {
		status = model.SpoolStatusNew
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO spools (id, label, brand, material, color, color_hex, diameter,
		     net_initial_g, tare_g, status, threshold_g, location, notes, barcode,
		     print_temp_min_c, print_temp_max_c, bed_temp_min_c, bed_temp_max_c,
		     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Label, nullStr(in.Brand), in.Material, in.Color, nullStr(in.ColorHex),
		in.Diameter, in.NetInitialG, in.TareG, status, in.ThresholdG,
		nullStr(in.Location), nullStr(in.Notes), nullStr(in.Barcode),
		in.PrintTempMinC, in.PrintTempMaxC, in.BedTempMinC, in.BedTempMaxC,
		now, now,
	)
	if err != nil {
		return "", fmt.Errorf("creating spool: %w", err)
	}
	return id, nil
}

// GetSpool returns a spool by id, or nil if it does not exist.
func GetSpool(ctx context.Context, db *sql.DB, id string) (*model.Spool, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+spoolColumns+` FROM spools WHERE id = ?`, id)

	spool, err := scanSpool(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting spool: %w", err)
	}
	return spool, nil
}

// ListSpools returns all spools, newest-updated first.
func ListSpools(ctx context.Context, db *sql.DB) ([]model.Spool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+spoolColumns+` FROM spools ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing spools: %w", err)
	}
	defer rows.Close()

	var spools []model.Spool
	for rows.Next() {
		spool, err := scanSpool(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spool: %w", err)
		}
		spools = append(spools, *spool)
	}
	return spools, rows.Err()
}

// UpdateSpool merges the provided fields into an existing spool. If the
// spool already has a recorded weigh-in, remaining weight and percentage
// are recomputed against the (possibly updated) tare and nominal weight,
// and the status is re-derived unless the caller supplied one explicitly.
// Returns nil if the spool does not exist.
func UpdateSpool(ctx context.Context, db *sql.DB, id string, upd SpoolUpdate) (*model.Spool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+spoolColumns+` FROM spools WHERE id = ?`, id)
	spool, err := scanSpool(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting spool for update: %w", err)
	}

	applyStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	applyStr(&spool.Label, upd.Label)
	applyStr(&spool.Brand, upd.Brand)
	applyStr(&spool.Material, upd.Material)
	applyStr(&spool.Color, upd.Color)
	applyStr(&spool.ColorHex, upd.ColorHex)
	applyStr(&spool.Location, upd.Location)
	applyStr(&spool.Notes, upd.Notes)
	applyStr(&spool.Barcode, upd.Barcode)
	if upd.Diameter != nil {
		spool.Diameter = *upd.Diameter
	}
	if upd.NetInitialG != nil {
		spool.NetInitialG = *upd.NetInitialG
	}
	if upd.TareG != nil {
		spool.TareG = *upd.TareG
	}
	if upd.ThresholdG != nil {
		spool.ThresholdG = upd.ThresholdG
	}
	if upd.PrintTempMinC != nil {
		spool.PrintTempMinC = upd.PrintTempMinC
	}
	if upd.PrintTempMaxC != nil {
		spool.PrintTempMaxC = upd.PrintTempMaxC
	}
	if upd.BedTempMinC != nil {
		spool.BedTempMinC = upd.BedTempMinC
	}
	if upd.BedTempMaxC != nil {
		spool.BedTempMaxC = upd.BedTempMaxC
	}
	if upd.Status != nil {
		spool.Status = *upd.Status
	}

	// Recompute derived fields against the merged tare/nominal weight when
	// a weigh-in exists.
	if spool.LastWeightG != nil {
		remaining := stock.Remaining(*spool.LastWeightG, spool.TareG)
		pct := stock.Pct(remaining, spool.NetInitialG)
		spool.RemainingG = &remaining
		spool.RemainingPct = &pct

		if upd.Status == nil {
			spool.Status = stock.DeriveStatus(remaining, spool.ThresholdG, spool.Status)
		}
	}

	spool.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE spools SET label = ?, brand = ?, material = ?, color = ?,
		     color_hex = ?, diameter = ?, net_initial_g = ?, tare_g = ?,
		     status = ?, threshold_g = ?, location = ?, notes = ?, barcode = ?,
		     print_temp_min_c = ?, print_temp_max_c = ?, bed_temp_min_c = ?,
		     bed_temp_max_c = ?, remaining_g = ?, remaining_pct = ?, updated_at = ?
		 WHERE id = ?`,
		spool.Label, nullStr(spool.Brand), spool.Material, spool.Color,
		nullStr(spool.ColorHex), spool.Diameter, spool.NetInitialG, spool.TareG,
		spool.Status, spool.ThresholdG, nullStr(spool.Location), nullStr(spool.Notes),
		nullStr(spool.Barcode), spool.PrintTempMinC, spool.PrintTempMaxC,
		spool.BedTempMinC, spool.BedTempMaxC, spool.RemainingG, spool.RemainingPct,
		spool.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating spool: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing spool update: %w", err)
	}
	return spool, nil
}

// ArchiveSpool sets a spool's status to ARCHIVED unconditionally. Returns
// false if the spool does not exist.
func ArchiveSpool(ctx context.Context, db *sql.DB, id string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE spools SET status = ?, updated_at = ? WHERE id = ?`,
		model.SpoolStatusArchived, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("archiving spool: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archiving spool: %w", err)
	}
	return n > 0, nil
}

// DeleteSpool removes a spool and all of its weigh-ins as one unit. The
// weigh_ins foreign key cascades inside the same implicit transaction, so
// no orphaned events can survive. Returns false if the spool did not exist.
func DeleteSpool(ctx context.Context, db *sql.DB, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM spools WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting spool: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting spool: %w", err)
	}
	return n > 0, nil
}

// WeighInResult is the derived state returned after recording a weigh-in.
type WeighInResult struct {
	WeighInID    string  `json:"weighInId"`
	RemainingG   float64 `json:"remainingG"`
	RemainingPct float64 `json:"remainingPct"`
	Status       string  `json:"status"`
}

// AddWeighIn records an immutable weigh-in event and folds it into the
// spool's denormalized state. Event insert and state update run in a single
// transaction (event first), so the spool never reflects a weigh-in that
// was not durably logged. Returns nil if the spool does not exist.
func AddWeighIn(ctx context.Context, db *sql.DB, spoolID string, weightG float64, note, createdBy string) (*WeighInResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		tareG       float64
		netInitialG float64
		thresholdG  *float64
		status      string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT tare_g, net_initial_g, threshold_g, status FROM spools WHERE id = ?`,
		spoolID,
	).Scan(&tareG, &netInitialG, &thresholdG, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting spool for weigh-in: %w", err)
	}

	weighInID := uuid.NewString()
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO weigh_ins (id, spool_id, weight_g, note, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		weighInID, spoolID, weightG, nullStr(note), now, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("recording weigh-in: %w", err)
	}

	remainingG := stock.Remaining(weightG, tareG)
	remainingPct := stock.Pct(remainingG, netInitialG)
	newStatus := stock.DeriveStatus(remainingG, thresholdG, status)

	_, err = tx.ExecContext(ctx,
		`UPDATE spools SET last_weigh_in_at = ?, last_weight_g = ?, remaining_g = ?,
		     remaining_pct = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		now, weightG, remainingG, remainingPct, newStatus, now, spoolID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating spool after weigh-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing weigh-in: %w", err)
	}

	return &WeighInResult{
		WeighInID:    weighInID,
		RemainingG:   remainingG,
		RemainingPct: remainingPct,
		Status:       newStatus,
	}, nil
}

// ListWeighIns returns a spool's weigh-in log, newest first.
func ListWeighIns(ctx context.Context, db *sql.DB, spoolID string) ([]model.WeighIn, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, spool_id, weight_g, note, created_at, created_by
		 FROM weigh_ins WHERE spool_id = ? ORDER BY created_at DESC, id`,
		spoolID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing weigh-ins: %w", err)
	}
	defer rows.Close()

	var weighIns []model.WeighIn
	for rows.Next() {
		var w model.WeighIn
		var note sql.NullString
		if err := rows.Scan(&w.ID, &w.SpoolID, &w.WeightG, &note, &w.CreatedAt, &w.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning weigh-in: %w", err)
		}
		w.Note = note.String
		weighIns = append(weighIns, w)
	}
	return weighIns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpool(row rowScanner) (*model.Spool, error) {
	spool := &model.Spool{}
	var (
		brand, colorHex, location, notes, barcode sql.NullString
		lastWeighInAt                             sql.NullTime
	)
	err := row.Scan(
		&spool.ID, &spool.Label, &brand, &spool.Material, &spool.Color, &colorHex,
		&spool.Diameter, &spool.NetInitialG, &spool.TareG, &spool.Status,
		&spool.ThresholdG, &location, &notes, &barcode,
		&spool.PrintTempMinC, &spool.PrintTempMaxC, &spool.BedTempMinC, &spool.BedTempMaxC,
		&lastWeighInAt, &spool.LastWeightG, &spool.RemainingG, &spool.RemainingPct,
		&spool.CreatedAt, &spool.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	spool.Brand = brand.String
	spool.ColorHex = colorHex.String
	spool.Location = location.String
	spool.Notes = notes.String
	spool.Barcode = barcode.String
	if lastWeighInAt.Valid {
		t := lastWeighInAt.Time
		spool.LastWeighInAt = &t
	}
	return spool, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
