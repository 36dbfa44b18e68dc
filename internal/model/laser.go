package model

import "time"

// LaserMaterial represents sheet or piece stock for the laser cutter.
// quantityRemaining is mutated only through stock movements and is clamped
// to zero regardless of the requested delta.
type LaserMaterial struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	ThicknessMm       float64   `json:"thicknessMm"`
	Format            string    `json:"format"`
	WidthMm           *float64  `json:"widthMm"`
	HeightMm          *float64  `json:"heightMm"`
	QuantityInitial   int       `json:"quantityInitial"`
	QuantityRemaining int       `json:"quantityRemaining"`
	SafeFlag          string    `json:"safeFlag"`
	ThresholdQty      *int      `json:"thresholdQty"`
	Location          string    `json:"location,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Brand             string    `json:"brand,omitempty"`
	Model             string    `json:"model,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	ImageURL          string    `json:"imageUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Laser material formats.
const (
	LaserFormatSheet = "SHEET"
	LaserFormatPcs   = "PCS"
)

// Laser-safety flags.
const (
	SafeFlagOK      = "OK"
	SafeFlagCaution = "CAUTION"
	SafeFlagNo      = "NO"
)

// DefaultLaserThresholdQty is the low-stock boundary applied when a material
// has no explicit threshold configured.
const DefaultLaserThresholdQty = 2

// ValidLaserFormat reports whether f is a known material format.
func ValidLaserFormat(f string) bool {
	return f == LaserFormatSheet || f == LaserFormatPcs
}

// ValidSafeFlag reports whether f is a known laser-safety flag.
func ValidSafeFlag(f string) bool {
	return f == SafeFlagOK || f == SafeFlagCaution || f == SafeFlagNo
}

// LowStock reports whether the material is at or below its low-stock
// threshold, falling back to DefaultLaserThresholdQty when none is set.
func (m *LaserMaterial) LowStock() bool {
	threshold := DefaultLaserThresholdQty
	if m.ThresholdQty != nil {
		threshold = *m.ThresholdQty
	}
	return m.QuantityRemaining <= threshold
}

// Movement is one immutable stock adjustment for a laser material. DeltaQty
// records the requested delta, even when the effective change was clamped.
type Movement struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"-"`
	DeltaQty   int       `json:"deltaQty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy"`
}
