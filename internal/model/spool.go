package model

import (
	"regexp"
	"time"
)

// Spool represents one filament spool. Remaining stock is derived from the
// latest weigh-in and the spool's tare, never stored by the caller directly.
type Spool struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	Brand         string     `json:"brand,omitempty"`
	Material      string     `json:"material"`
	Color         string     `json:"color"`
	ColorHex      string     `json:"colorHex,omitempty"`
	Diameter      float64    `json:"diameter"`
	NetInitialG   float64    `json:"netInitialG"`
	TareG         float64    `json:"tareG"`
	Status        string     `json:"status"`
	ThresholdG    *float64   `json:"thresholdG"`
	Location      string     `json:"location,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Barcode       string     `json:"barcode,omitempty"`
	PrintTempMinC *float64   `json:"printTempMinC,omitempty"`
	PrintTempMaxC *float64   `json:"printTempMaxC,omitempty"`
	BedTempMinC   *float64   `json:"bedTempMinC,omitempty"`
	BedTempMaxC   *float64   `json:"bedTempMaxC,omitempty"`
	LastWeighInAt *time.Time `json:"lastWeighInAt"`
	LastWeightG   *float64   `json:"lastWeightG"`
	RemainingG    *float64   `json:"remainingG"`
	RemainingPct  *float64   `json:"remainingPct"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Spool statuses. ARCHIVED is the only one set explicitly by the caller;
// the rest are derived from remaining weight and threshold.
const (
	SpoolStatusNew      = "NEW"
	SpoolStatusInUse    = "IN_USE"
	SpoolStatusLow      = "LOW"
	SpoolStatusEmpty    = "EMPTY"
	SpoolStatusArchived = "ARCHIVED"
)

// ValidSpoolStatus reports whether s is a known spool status.
func ValidSpoolStatus(s string) bool {
	switch s {
	case SpoolStatusNew, SpoolStatusInUse, SpoolStatusLow, SpoolStatusEmpty, SpoolStatusArchived:
		return true
	}
	return false
}

var colorHexRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColorHex reports whether s is a #RRGGBB color.
func ValidColorHex(s string) bool {
	return colorHexRe.MatchString(s)
}

// WeighIn is one immutable weigh-in event for a spool.
type WeighIn struct {
	ID        string    `json:"id"`
	SpoolID   string    `json:"-"`
	WeightG   float64   `json:"weightG"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}
