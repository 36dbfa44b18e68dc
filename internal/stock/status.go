// Package stock holds the pure derivation logic shared by the spool and
// laser-material engines: remaining-quantity arithmetic, the spool status
// classifier, and brand tare resolution.
package stock

import "github.com/atelierlabs/makerstock/internal/model"

// DeriveStatus classifies a spool's lifecycle status from its remaining
// weight and optional low-stock threshold.
//
// Urgent states ratchet: an empty spool is always EMPTY, a spool at or
// below its threshold is LOW. An explicit ARCHIVED is otherwise preserved,
// never auto-reverted. Everything else is IN_USE; since the classifier
// only runs once a weigh-in exists, NEW effectively means "never weighed".
func DeriveStatus(remainingG float64, thresholdG *float64, current string) string {
	if remainingG == 0 {
		return model.SpoolStatusEmpty
	}
	if thresholdG != nil && *thresholdG > 0 && remainingG <= *thresholdG {
		return model.SpoolStatusLow
	}
	if current == model.SpoolStatusArchived {
		return current
	}
	return model.SpoolStatusInUse
}

// Remaining converts a gross weigh-in to usable material, clamped at zero.
func Remaining(weightG, tareG float64) float64 {
	if r := weightG - tareG; r > 0 {
		return r
	}
	return 0
}

// Pct returns the remaining fraction of the nominal full weight, or 0 when
// the nominal weight is not positive.
func Pct(remainingG, netInitialG float64) float64 {
	if netInitialG <= 0 {
		return 0
	}
	return remainingG / netInitialG
}
