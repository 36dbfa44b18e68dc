package stock

import (
	"math"
	"strings"
)

// Tare sources, in precedence order.
const (
	TareSourceCustom  = "custom"
	TareSourceBrand   = "brand"
	TareSourceDefault = "default"
)

// DefaultTareG is the fallback empty-spool weight when the brand is unknown.
const DefaultTareG = 220

// brandTares maps normalized brand names to known empty-spool weights in
// grams. Matching is case-insensitive substring containment in both
// directions, so "Bambu Lab PLA Basic" still resolves to "bambu lab".
var brandTares = []struct {
	name  string
	tareG float64
}{
	{"sunlu", 200},
	{"esun", 230},
	{"bambu lab", 250},
	{"bambu", 250},
	{"polymaker", 240},
	{"prusament", 200},
	{"prusa", 200},
	{"hatchbox", 220},
	{"overture", 210},
	{"eryone", 195},
	{"jayo", 200},
	{"creality", 230},
	{"elegoo", 215},
	{"anycubic", 220},
	{"flashforge", 225},
	{"3d solutech", 210},
	{"amazon basics", 215},
	{"inland", 205},
	{"geeetech", 200},
	{"tianse", 210},
	{"ttyt3d", 200},
	{"giantarm", 205},
	{"colorfabb", 180},
	{"fillamentum", 185},
	{"formfutura", 190},
	{"3dxtech", 200},
	{"matterhackers", 210},
}

// ResolveTare picks the tare weight for an estimate. An explicit custom tare
// always wins, then a brand-table match, then DefaultTareG.
func ResolveTare(brand string, customTareG *float64) (tareG float64, source string) {
	if customTareG != nil {
		return *customTareG, TareSourceCustom
	}

	normalized := strings.ToLower(strings.TrimSpace(brand))
	if normalized != "" {
		for _, b := range brandTares {
			if strings.Contains(normalized, b.name) || strings.Contains(b.name, normalized) {
				return b.tareG, TareSourceBrand
			}
		}
	}

	return DefaultTareG, TareSourceDefault
}

// Estimate is the result of a remaining-stock estimate from a scale reading.
type Estimate struct {
	RemainingG      float64 `json:"remainingG"`
	RemainingPct    float64 `json:"remainingPct"`
	UsedTareG       float64 `json:"usedTareG"`
	TareSource      string  `json:"tareSource"`
	EstimatedMeters int     `json:"estimatedMeters"`
}

// metersPerKg approximates filament length per kilogram, calibrated for
// 1.75 mm PLA. Other materials and diameters will be off.
const metersPerKg = 330

// EstimateRemaining converts a gross scale reading into remaining stock
// using the resolved tare, plus a rough length estimate.
func EstimateRemaining(currentWeightG float64, brand string, customTareG *float64, netInitialG float64) Estimate {
	tareG, source := ResolveTare(brand, customTareG)
	remainingG := Remaining(currentWeightG, tareG)

	return Estimate{
		RemainingG:      remainingG,
		RemainingPct:    Pct(remainingG, netInitialG),
		UsedTareG:       tareG,
		TareSource:      source,
		EstimatedMeters: int(math.Round(remainingG / 1000 * metersPerKg)),
	}
}
