// Package catalog holds the static Bambu Lab laser-material reference table
// and the merge logic that lets authoritative catalog data override
// best-effort AI label guesses.
package catalog

import (
	"strings"

	"github.com/atelierlabs/makerstock/internal/model"
)

// Material is one catalog entry, keyed by barcode and model code.
type Material struct {
	Name        string   `json:"name"`
	Model       string   `json:"model"`
	Barcode     string   `json:"barcode"`
	Type        string   `json:"type"`
	ThicknessMm float64  `json:"thicknessMm"`
	PcsPerPack  int      `json:"pcsPerPack"`
	SafeFlag    string   `json:"safeFlag"`
	ImageURL    string   `json:"imageUrl"`
	Aliases     []string `json:"aliases,omitempty"`
}

// materials is the Bambu Lab laser-material catalog.
// Source: https://eu.store.bambulab.com/es/collections/bambu-material
var materials = []Material{
	{
		Name: "3mm Basswood Plywood (6PCS)", Model: "B-YA001", Barcode: "6977252629702",
		Type: "Plywood", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YA001.png?v=1731054892&width=800",
		Aliases:  []string{"basswood 3mm"},
	},
	{
		Name: "5mm Basswood Plywood (4PCS)", Model: "B-YA002", Barcode: "6977252629719",
		Type: "Plywood", ThicknessMm: 5, PcsPerPack: 4, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YA002.png?v=1731054906&width=800",
		Aliases:  []string{"basswood 5mm"},
	},
	{
		Name: "3mm MDF Board (6PCS)", Model: "B-YB001", Barcode: "6977252629726",
		Type: "MDF", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YB001.png?v=1731054923&width=800",
		Aliases:  []string{"mdf 3mm"},
	},
	{
		Name: "5mm MDF Board (4PCS)", Model: "B-YB002", Barcode: "6977252629733",
		Type: "MDF", ThicknessMm: 5, PcsPerPack: 4, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YB002.png?v=1731054936&width=800",
		Aliases:  []string{"mdf 5mm"},
	},
	{
		Name: "3mm Walnut Plywood (6PCS)", Model: "B-YC001", Barcode: "6977252629740",
		Type: "Plywood", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YC001.png?v=1731054950&width=800",
		Aliases:  []string{"walnut 3mm"},
	},
	{
		Name: "5mm Walnut Plywood (4PCS)", Model: "B-YC002", Barcode: "6977252629757",
		Type: "Plywood", ThicknessMm: 5, PcsPerPack: 4, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YC002.png?v=1731054963&width=800",
		Aliases:  []string{"walnut 5mm"},
	},
	{
		Name: "3mm Cherry Plywood (6PCS)", Model: "B-YD001", Barcode: "6977252629764",
		Type: "Plywood", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YD001.png?v=1731054979&width=800",
		Aliases:  []string{"cherry 3mm"},
	},
	{
		Name: "5mm Cherry Plywood (4PCS)", Model: "B-YD002", Barcode: "6977252629771",
		Type: "Plywood", ThicknessMm: 5, PcsPerPack: 4, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YD002.png?v=1731054991&width=800",
		Aliases:  []string{"cherry 5mm"},
	},
	{
		Name: "3mm White Acrylic Sheet (6PCS)", Model: "B-YE001", Barcode: "6977252629788",
		Type: "Acrylic", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YE001.png?v=1731055005&width=800",
		Aliases:  []string{"white acrylic 3mm"},
	},
	{
		Name: "3mm Black Acrylic Sheet (6PCS)", Model: "B-YE002", Barcode: "6977252629795",
		Type: "Acrylic", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YE002.png?v=1731055018&width=800",
		Aliases:  []string{"black acrylic 3mm"},
	},
	{
		Name: "3mm Transparent Acrylic Sheet (6PCS)", Model: "B-YE003", Barcode: "6977252629801",
		Type: "Acrylic", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YE003.png?v=1731055031&width=800",
		Aliases:  []string{"transparent acrylic 3mm", "clear acrylic 3mm"},
	},
	{
		Name: "1.5mm Natural Leather (6PCS)", Model: "B-YF001", Barcode: "6977252629818",
		Type: "Leather", ThicknessMm: 1.5, PcsPerPack: 6, SafeFlag: model.SafeFlagCaution,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YF001.png?v=1731055045&width=800",
		Aliases:  []string{"natural leather"},
	},
	{
		Name: "1.5mm Brown Leather (6PCS)", Model: "B-YF002", Barcode: "6977252629825",
		Type: "Leather", ThicknessMm: 1.5, PcsPerPack: 6, SafeFlag: model.SafeFlagCaution,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YF002.png?v=1731055058&width=800",
		Aliases:  []string{"brown leather"},
	},
	{
		Name: "3mm Cork Sheet (6PCS)", Model: "B-YG001", Barcode: "6977252629832",
		Type: "Cork", ThicknessMm: 3, PcsPerPack: 6, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YG001.png?v=1731055072&width=800",
		Aliases:  []string{"cork 3mm"},
	},
	{
		Name: "2mm Kraft Cardboard (10PCS)", Model: "B-YH001", Barcode: "6977252629849",
		Type: "Cardboard", ThicknessMm: 2, PcsPerPack: 10, SafeFlag: model.SafeFlagOK,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YH001.png?v=1731055086&width=800",
		Aliases:  []string{"kraft cardboard"},
	},
	{
		Name: "2.3mm Rubber Sheet (6PCS)", Model: "B-YI001", Barcode: "6977252629856",
		Type: "EVA Rubber", ThicknessMm: 2.3, PcsPerPack: 6, SafeFlag: model.SafeFlagCaution,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YI001.png?v=1731055099&width=800",
		Aliases:  []string{"rubber sheet"},
	},
	{
		Name: "Cotton Fabric (10PCS)", Model: "B-YJ001", Barcode: "6977252629863",
		Type: "Fabric", ThicknessMm: 0.5, PcsPerPack: 10, SafeFlag: model.SafeFlagCaution,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YJ001.png?v=1731055113&width=800",
		Aliases:  []string{"cotton fabric"},
	},
	{
		Name: "Felt Fabric (10PCS)", Model: "B-YJ002", Barcode: "6977252629870",
		Type: "Fabric", ThicknessMm: 1, PcsPerPack: 10, SafeFlag: model.SafeFlagCaution,
		ImageURL: "https://eu.store.bambulab.com/cdn/shop/files/YJ002.png?v=1731055126&width=800",
		Aliases:  []string{"felt fabric"},
	},
}

var (
	byBarcode = map[string]*Material{}
	byModel   = map[string]*Material{}
)

func init() {
	for i := range materials {
		m := &materials[i]
		byBarcode[m.Barcode] = m
		byModel[strings.ToLower(m.Model)] = m
		// Also without the B- prefix, labels often omit it.
		byModel[strings.ToLower(strings.TrimPrefix(m.Model, "B-"))] = m
		for _, alias := range m.Aliases {
			byModel[alias] = m
		}
	}
}

// All returns the full catalog.
func All() []Material {
	return materials
}

// Find looks up a catalog entry by barcode first, then by model code or
// alias. Returns nil when neither matches.
func Find(barcode, modelCode string) *Material {
	if barcode != "" {
		if m, ok := byBarcode[barcode]; ok {
			return m
		}
	}
	if modelCode != "" {
		if m, ok := byModel[strings.ToLower(strings.TrimSpace(modelCode))]; ok {
			return m
		}
	}
	return nil
}
