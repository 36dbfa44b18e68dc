package catalog

import "github.com/atelierlabs/makerstock/internal/model"

// LabelGuess is a best-effort extraction from a material label photo. Every
// field is optional; nothing here is trusted until merged against the
// catalog and confirmed by the operator.
type LabelGuess struct {
	Brand       string   `json:"brand,omitempty"`
	Name        string   `json:"name,omitempty"`
	Model       string   `json:"model,omitempty"`
	Type        string   `json:"type,omitempty"`
	ThicknessMm *float64 `json:"thicknessMm"`
	PcsPerPack  *int     `json:"pcsPerPack"`
	Barcode     string   `json:"barcode,omitempty"`
	Color       string   `json:"color,omitempty"`
}

// Enriched is a label guess merged with catalog data.
type Enriched struct {
	Brand        string   `json:"brand,omitempty"`
	Name         string   `json:"name,omitempty"`
	Model        string   `json:"model,omitempty"`
	Type         string   `json:"type,omitempty"`
	ThicknessMm  *float64 `json:"thicknessMm"`
	PcsPerPack   *int     `json:"pcsPerPack"`
	Barcode      string   `json:"barcode,omitempty"`
	Color        string   `json:"color,omitempty"`
	SafeFlag     string   `json:"safeFlag"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	CatalogMatch bool     `json:"catalogMatch"`
}

// Enrich resolves a label guess against the catalog. Precedence is layered:
// catalog match > AI guess > empty. Catalog data is authoritative
// manufacturer data, so on a match it overrides whatever the scan guessed.
func Enrich(guess LabelGuess) Enriched {
	out := Enriched{
		Brand:       guess.Brand,
		Name:        guess.Name,
		Model:       guess.Model,
		Type:        guess.Type,
		ThicknessMm: guess.ThicknessMm,
		PcsPerPack:  guess.PcsPerPack,
		Barcode:     guess.Barcode,
		Color:       guess.Color,
		SafeFlag:    model.SafeFlagOK,
	}

	m := Find(guess.Barcode, guess.Model)
	if m == nil {
		return out
	}

	out.Name = m.Name
	out.Model = m.Model
	out.Type = m.Type
	thickness := m.ThicknessMm
	out.ThicknessMm = &thickness
	pcs := m.PcsPerPack
	out.PcsPerPack = &pcs
	out.Barcode = m.Barcode
	out.SafeFlag = m.SafeFlag
	out.ImageURL = m.ImageURL
	out.CatalogMatch = true
	if out.Brand == "" {
		out.Brand = "Bambu Lab"
	}
	return out
}
