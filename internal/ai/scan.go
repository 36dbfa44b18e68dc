package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atelierlabs/makerstock/internal/catalog"
	"github.com/atelierlabs/makerstock/internal/stock"
)

const spoolLabelSystemPrompt = `You are an expert on 3D printing filament. Analyze the image of a filament spool label and extract its information.

IMPORTANT: Respond ONLY with valid JSON, no extra text and no markdown. The format must be exactly:
{
  "brand": "manufacturer brand or null",
  "material": "material type (PLA, PETG, ABS, TPU, etc.) or null",
  "color": "filament color or null",
  "netWeightG": number in grams or null,
  "diameter": number in mm (1.75 or 2.85) or null
}

Use null for any field you cannot identify.`

const laserLabelSystemPrompt = `You are an expert on laser cutting materials. Analyze the image of a material label (typically Bambu Lab) and extract its information.

IMPORTANT: Respond ONLY with valid JSON, no extra text and no markdown. The format must be exactly:
{
  "brand": "manufacturer brand (e.g. Bambu Lab) or null",
  "name": "full product name or null",
  "model": "model code (e.g. B-YA001, YA001) or null",
  "type": "material type (Plywood, MDF, Acrylic, Leather, Cork, Cardboard, Fabric, EVA Rubber, Solid Wood, Paper) or null",
  "thicknessMm": thickness in millimeters or null,
  "pcsPerPack": pieces per pack or null,
  "barcode": numeric barcode or null,
  "color": material color if applicable or null
}

Use null for any field you cannot identify.`

// SpoolLabelScan is the extraction result for a filament label, plus the
// tare suggested for the recognized brand.
type SpoolLabelScan struct {
	Brand          *string  `json:"brand"`
	Material       *string  `json:"material"`
	Color          *string  `json:"color"`
	NetWeightG     *float64 `json:"netWeightG"`
	Diameter       *float64 `json:"diameter"`
	SuggestedTareG float64  `json:"suggestedTareG"`
	TareSource     string   `json:"tareSource"`
}

// ScanSpoolLabel extracts filament details from a label photo. A model
// response that cannot be parsed yields an all-null scan rather than an
// error; the operator corrects the form either way.
func (c *Client) ScanSpoolLabel(ctx context.Context, imageDataURL string) (*SpoolLabelScan, error) {
	response, err := c.Chat(ctx, []Message{
		{Role: "system", Content: spoolLabelSystemPrompt},
		{Role: "user", Content: []ContentPart{
			ImagePart(imageDataURL),
			TextPart("Analyze this filament label and extract: brand, material, color, net weight and diameter."),
		}},
	}, 1024)
	if err != nil {
		return nil, fmt.Errorf("scanning spool label: %w", err)
	}

	var scan SpoolLabelScan
	if err := json.Unmarshal([]byte(stripFences(response)), &scan); err != nil {
		scan = SpoolLabelScan{}
	}

	brand := ""
	if scan.Brand != nil {
		brand = *scan.Brand
	}
	scan.SuggestedTareG, scan.TareSource = stock.ResolveTare(brand, nil)
	return &scan, nil
}

// ScanLaserLabel extracts laser material details from a label photo. As
// with spool labels, unparseable model output degrades to an empty guess.
func (c *Client) ScanLaserLabel(ctx context.Context, imageDataURL string) (*catalog.LabelGuess, error) {
	response, err := c.Chat(ctx, []Message{
		{Role: "system", Content: laserLabelSystemPrompt},
		{Role: "user", Content: []ContentPart{
			ImagePart(imageDataURL),
			TextPart("Analyze this laser cutting material label and extract: brand, product name, model, material type, thickness, pieces per pack, barcode and color."),
		}},
	}, 1024)
	if err != nil {
		return nil, fmt.Errorf("scanning material label: %w", err)
	}

	var guess guessWire
	if err := json.Unmarshal([]byte(stripFences(response)), &guess); err != nil {
		return &catalog.LabelGuess{}, nil
	}
	return guess.toLabelGuess(), nil
}

// guessWire tolerates the model returning the barcode as a JSON number.
type guessWire struct {
	Brand       string          `json:"brand"`
	Name        string          `json:"name"`
	Model       string          `json:"model"`
	Type        string          `json:"type"`
	ThicknessMm *float64        `json:"thicknessMm"`
	PcsPerPack  *int            `json:"pcsPerPack"`
	Barcode     json.RawMessage `json:"barcode"`
	Color       string          `json:"color"`
}

func (g guessWire) toLabelGuess() *catalog.LabelGuess {
	barcode := ""
	if len(g.Barcode) > 0 && string(g.Barcode) != "null" {
		barcode = strings.Trim(string(g.Barcode), `"`)
	}
	return &catalog.LabelGuess{
		Brand:       g.Brand,
		Name:        g.Name,
		Model:       g.Model,
		Type:        g.Type,
		ThicknessMm: g.ThicknessMm,
		PcsPerPack:  g.PcsPerPack,
		Barcode:     barcode,
		Color:       g.Color,
	}
}

// insightMaxLen caps the advisory text stored in estimate responses.
const insightMaxLen = 200

// EstimateInsight asks the model for a short restocking tip for a spool
// with the given remaining weight.
func (c *Client) EstimateInsight(ctx context.Context, remainingG, netInitialG, remainingPct float64) (string, error) {
	prompt := fmt.Sprintf(`I have a filament spool with %.0fg remaining out of %.0fg initial (%.0f%%).

Give me brief advice (2 sentences max) on:
- Whether I should consider buying a replacement soon
- Roughly how many print hours I can expect

Answer concisely and practically.`, remainingG, netInitialG, remainingPct*100)

	insight, err := c.Chat(ctx, []Message{{Role: "user", Content: prompt}}, 1024)
	if err != nil {
		return "", err
	}
	if len(insight) > insightMaxLen {
		cut := insightMaxLen
		for cut > 0 && !utf8.RuneStart(insight[cut]) {
			cut--
		}
		insight = insight[:cut]
	}
	return insight, nil
}

// stripFences removes markdown code fences models wrap JSON in despite
// instructions.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
