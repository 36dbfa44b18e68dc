package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Item ids are opaque UUID strings so
// that weigh-in and movement logs can reference them stably across exports.
const schema = `
CREATE TABLE IF NOT EXISTS spools (
    id               TEXT PRIMARY KEY,
    label            TEXT NOT NULL,
    brand            TEXT,
    material         TEXT NOT NULL,
    color            TEXT NOT NULL,
    color_hex        TEXT,
    diameter         REAL NOT NULL,
    net_initial_g    REAL NOT NULL,
    tare_g           REAL NOT NULL,
    status           TEXT NOT NULL DEFAULT 'NEW'
                     CHECK (status IN ('NEW', 'IN_USE', 'LOW', 'EMPTY', 'ARCHIVED')),
    threshold_g      REAL,
    location         TEXT,
    notes            TEXT,
    barcode          TEXT,
    print_temp_min_c REAL,
    print_temp_max_c REAL,
    bed_temp_min_c   REAL,
    bed_temp_max_c   REAL,
    last_weigh_in_at DATETIME,
    last_weight_g    REAL,
    remaining_g      REAL,
    remaining_pct    REAL,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS weigh_ins (
    id         TEXT PRIMARY KEY,
    spool_id   TEXT NOT NULL REFERENCES spools(id) ON DELETE CASCADE,
    weight_g   REAL NOT NULL CHECK (weight_g >= 0),
    note       TEXT,
    created_at DATETIME NOT NULL,
    created_by TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_weigh_ins_spool
    ON weigh_ins(spool_id, created_at);

CREATE TABLE IF NOT EXISTS laser_materials (
    id                 TEXT PRIMARY KEY,
    type               TEXT NOT NULL,
    thickness_mm       REAL NOT NULL,
    format             TEXT NOT NULL CHECK (format IN ('SHEET', 'PCS')),
    width_mm           REAL,
    height_mm          REAL,
    quantity_initial   INTEGER NOT NULL CHECK (quantity_initial > 0),
    quantity_remaining INTEGER NOT NULL CHECK (quantity_remaining >= 0),
    safe_flag          TEXT NOT NULL DEFAULT 'OK'
                       CHECK (safe_flag IN ('OK', 'CAUTION', 'NO')),
    threshold_qty      INTEGER,
    location           TEXT,
    notes              TEXT,
    brand              TEXT,
    model              TEXT,
    barcode            TEXT,
    image_url          TEXT,
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
    id          TEXT PRIMARY KEY,
    material_id TEXT NOT NULL REFERENCES laser_materials(id) ON DELETE CASCADE,
    delta_qty   INTEGER NOT NULL CHECK (delta_qty <> 0),
    note        TEXT,
    created_at  DATETIME NOT NULL,
    created_by  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_material
    ON movements(material_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
