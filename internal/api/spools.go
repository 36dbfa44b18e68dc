package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/ai"
	"github.com/atelierlabs/makerstock/internal/imaging"
	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/stock"
	"github.com/atelierlabs/makerstock/internal/store"
)

// SpoolsHandler handles spool CRUD, weigh-ins and the AI scan endpoints.
// The operations live in op* methods shared with the callable dispatcher.
type SpoolsHandler struct {
	DB *sql.DB
}

type createSpoolRequest struct {
	Label         string   `json:"label"`
	Brand         string   `json:"brand"`
	Material      string   `json:"material"`
	Color         string   `json:"color"`
	ColorHex      string   `json:"colorHex"`
	Diameter      float64  `json:"diameter"`
	NetInitialG   float64  `json:"netInitialG"`
	TareG         float64  `json:"tareG"`
	Status        string   `json:"status"`
	ThresholdG    *float64 `json:"thresholdG"`
	Location      string   `json:"location"`
	Notes         string   `json:"notes"`
	Barcode       string   `json:"barcode"`
	PrintTempMinC *float64 `json:"printTempMinC"`
	PrintTempMaxC *float64 `json:"printTempMaxC"`
	BedTempMinC   *float64 `json:"bedTempMinC"`
	BedTempMaxC   *float64 `json:"bedTempMaxC"`
}

type updateSpoolRequest struct {
	Label         *string  `json:"label"`
	Brand         *string  `json:"brand"`
	Material      *string  `json:"material"`
	Color         *string  `json:"color"`
	ColorHex      *string  `json:"colorHex"`
	Diameter      *float64 `json:"diameter"`
	NetInitialG   *float64 `json:"netInitialG"`
	TareG         *float64 `json:"tareG"`
	Status        *string  `json:"status"`
	ThresholdG    *float64 `json:"thresholdG"`
	Location      *string  `json:"location"`
	Notes         *string  `json:"notes"`
	Barcode       *string  `json:"barcode"`
	PrintTempMinC *float64 `json:"printTempMinC"`
	PrintTempMaxC *float64 `json:"printTempMaxC"`
	BedTempMinC   *float64 `json:"bedTempMinC"`
	BedTempMaxC   *float64 `json:"bedTempMaxC"`
}

type weighInRequest struct {
	WeightG *float64 `json:"weightG"`
	Note    string   `json:"note"`
}

func (h *SpoolsHandler) opCreate(ctx context.Context, req createSpoolRequest) (any, *apiError) {
	if req.Label == "" || req.Material == "" || req.Color == "" {
		return nil, errBadRequest("label, material and color required")
	}
	if req.Diameter <= 0 {
		return nil, errBadRequest("diameter must be positive")
	}
	if req.NetInitialG <= 0 {
		return nil, errBadRequest("netInitialG must be positive")
	}
	if req.TareG < 0 {
		return nil, errBadRequest("tareG must be non-negative")
	}
	if req.Status != "" && !model.ValidSpoolStatus(req.Status) {
		return nil, errBadRequest("invalid status")
	}
	if req.ThresholdG != nil && *req.ThresholdG <= 0 {
		return nil, errBadRequest("thresholdG must be positive")
	}
	if req.ColorHex != "" && !model.ValidColorHex(req.ColorHex) {
		return nil, errBadRequest("colorHex must be #RRGGBB")
	}

	id, err := store.CreateSpool(ctx, h.DB, store.SpoolCreate{
		Label:         req.Label,
		Brand:         req.Brand,
		Material:      req.Material,
		Color:         req.Color,
		ColorHex:      req.ColorHex,
		Diameter:      req.Diameter,
		NetInitialG:   req.NetInitialG,
		TareG:         req.TareG,
		Status:        req.Status,
		ThresholdG:    req.ThresholdG,
		Location:      req.Location,
		Notes:         req.Notes,
		Barcode:       req.Barcode,
		PrintTempMinC: req.PrintTempMinC,
		PrintTempMaxC: req.PrintTempMaxC,
		BedTempMinC:   req.BedTempMinC,
		BedTempMaxC:   req.BedTempMaxC,
	})
	if err != nil {
		slog.Error("creating spool", "error", err)
		return nil, errInternal("failed to create spool")
	}
	return map[string]string{"id": id}, nil
}

func (h *SpoolsHandler) opList(ctx context.Context) (any, *apiError) {
	spools, err := store.ListSpools(ctx, h.DB)
	if err != nil {
		slog.Error("listing spools", "error", err)
		return nil, errInternal("failed to list spools")
	}
	if spools == nil {
		spools = []model.Spool{}
	}
	return spools, nil
}

func (h *SpoolsHandler) opGet(ctx context.Context, id string) (any, *apiError) {
	spool, err := store.GetSpool(ctx, h.DB, id)
	if err != nil {
		slog.Error("getting spool", "error", err)
		return nil, errInternal("failed to get spool")
	}
	if spool == nil {
		return nil, errNotFound("spool not found")
	}
	return spool, nil
}

func (h *SpoolsHandler) opUpdate(ctx context.Context, id string, req updateSpoolRequest) (any, *apiError) {
	if (req.Label != nil && *req.Label == "") ||
		(req.Material != nil && *req.Material == "") ||
		(req.Color != nil && *req.Color == "") {
		return nil, errBadRequest("label, material and color cannot be empty")
	}
	if req.Status != nil && !model.ValidSpoolStatus(*req.Status) {
		return nil, errBadRequest("invalid status")
	}
	if req.Diameter != nil && *req.Diameter <= 0 {
		return nil, errBadRequest("diameter must be positive")
	}
	if req.NetInitialG != nil && *req.NetInitialG <= 0 {
		return nil, errBadRequest("netInitialG must be positive")
	}
	if req.TareG != nil && *req.TareG < 0 {
		return nil, errBadRequest("tareG must be non-negative")
	}
	if req.ThresholdG != nil && *req.ThresholdG <= 0 {
		return nil, errBadRequest("thresholdG must be positive")
	}
	if req.ColorHex != nil && *req.ColorHex != "" && !model.ValidColorHex(*req.ColorHex) {
		return nil, errBadRequest("colorHex must be #RRGGBB")
	}

	spool, err := store.UpdateSpool(ctx, h.DB, id, store.SpoolUpdate{
		Label:         req.Label,
		Brand:         req.Brand,
		Material:      req.Material,
		Color:         req.Color,
		ColorHex:      req.ColorHex,
		Diameter:      req.Diameter,
		NetInitialG:   req.NetInitialG,
		TareG:         req.TareG,
		Status:        req.Status,
		ThresholdG:    req.ThresholdG,
		Location:      req.Location,
		Notes:         req.Notes,
		Barcode:       req.Barcode,
		PrintTempMinC: req.PrintTempMinC,
		PrintTempMaxC: req.PrintTempMaxC,
		BedTempMinC:   req.BedTempMinC,
		BedTempMaxC:   req.BedTempMaxC,
	})
	if err != nil {
		slog.Error("updating spool", "error", err)
		return nil, errInternal("failed to update spool")
	}
	if spool == nil {
		return nil, errNotFound("spool not found")
	}
	return map[string]bool{"success": true}, nil
}

func (h *SpoolsHandler) opArchive(ctx context.Context, id string) (any, *apiError) {
	ok, err := store.ArchiveSpool(ctx, h.DB, id)
	if err != nil {
		slog.Error("archiving spool", "error", err)
		return nil, errInternal("failed to archive spool")
	}
	if !ok {
		return nil, errNotFound("spool not found")
	}
	return map[string]bool{"success": true}, nil
}

func (h *SpoolsHandler) opDelete(ctx context.Context, id string) (any, *apiError) {
	ok, err := store.DeleteSpool(ctx, h.DB, id)
	if err != nil {
		slog.Error("deleting spool", "error", err)
		return nil, errInternal("failed to delete spool")
	}
	if !ok {
		return nil, errNotFound("spool not found")
	}
	return map[string]bool{"success": true}, nil
}

func (h *SpoolsHandler) opAddWeighIn(ctx context.Context, id string, req weighInRequest) (any, *apiError) {
	if req.WeightG == nil || *req.WeightG < 0 {
		return nil, errBadRequest("weightG must be non-negative")
	}

	createdBy := ""
	if claims := GetClaims(ctx); claims != nil {
		createdBy = claims.UID
	}

	result, err := store.AddWeighIn(ctx, h.DB, id, *req.WeightG, req.Note, createdBy)
	if err != nil {
		slog.Error("adding weigh-in", "error", err)
		return nil, errInternal("failed to record weigh-in")
	}
	if result == nil {
		return nil, errNotFound("spool not found")
	}
	return result, nil
}

func (h *SpoolsHandler) opListWeighIns(ctx context.Context, id string) (any, *apiError) {
	spool, err := store.GetSpool(ctx, h.DB, id)
	if err != nil {
		slog.Error("getting spool", "error", err)
		return nil, errInternal("failed to get spool")
	}
	if spool == nil {
		return nil, errNotFound("spool not found")
	}

	weighIns, err := store.ListWeighIns(ctx, h.DB, id)
	if err != nil {
		slog.Error("listing weigh-ins", "error", err)
		return nil, errInternal("failed to list weigh-ins")
	}
	if weighIns == nil {
		weighIns = []model.WeighIn{}
	}
	return weighIns, nil
}

type scanLabelRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

func (h *SpoolsHandler) opScanLabel(ctx context.Context, req scanLabelRequest) (any, *apiError) {
	if req.ImageBase64 == "" {
		return nil, errBadRequest("imageBase64 required")
	}

	raw, err := imaging.FromDataURL(req.ImageBase64)
	if err != nil {
		return nil, errBadRequest("invalid image data")
	}
	photo, err := imaging.Normalize(raw)
	if err != nil {
		return nil, errBadRequest(err.Error())
	}

	client, apiErr := aiClient(ctx, h.DB)
	if apiErr != nil {
		return nil, apiErr
	}

	scan, err := client.ScanSpoolLabel(ctx, photo.DataURL())
	if err != nil {
		slog.Error("scanning spool label", "provider", client.Provider(), "error", err)
		return nil, errInternal("label scan failed")
	}

	return map[string]any{
		"success":  true,
		"provider": client.Provider(),
		"data":     scan,
	}, nil
}

type estimateRequest struct {
	CurrentWeightG *float64 `json:"currentWeightG"`
	Brand          string   `json:"brand"`
	CustomTareG    *float64 `json:"customTareG"`
	NetInitialG    *float64 `json:"netInitialG"`
}

type estimateResponse struct {
	stock.Estimate
	AIInsights *string `json:"aiInsights"`
	Provider   *string `json:"provider"`
}

func (h *SpoolsHandler) opEstimateRemaining(ctx context.Context, req estimateRequest) (any, *apiError) {
	if req.CurrentWeightG == nil || *req.CurrentWeightG < 0 {
		return nil, errBadRequest("currentWeightG must be non-negative")
	}
	if req.NetInitialG == nil || *req.NetInitialG <= 0 {
		return nil, errBadRequest("netInitialG must be positive")
	}
	if req.CustomTareG != nil && *req.CustomTareG < 0 {
		return nil, errBadRequest("customTareG must be non-negative")
	}

	resp := estimateResponse{
		Estimate: stock.EstimateRemaining(*req.CurrentWeightG, req.Brand, req.CustomTareG, *req.NetInitialG),
	}

	// AI advice is best-effort garnish. Failures are logged and swallowed.
	settings, err := store.GetAISettings(ctx, h.DB)
	if err == nil {
		if cfg := ai.Resolve(settings); cfg != nil {
			client := ai.NewClient(*cfg)
			insight, err := client.EstimateInsight(ctx, resp.RemainingG, *req.NetInitialG, resp.RemainingPct)
			if err != nil {
				slog.Debug("estimate insight unavailable", "provider", cfg.Provider, "error", err)
			} else {
				provider := cfg.Provider
				resp.AIInsights = &insight
				resp.Provider = &provider
			}
		}
	}

	return resp, nil
}

// aiClient resolves the stored AI settings into a client, or a 400 when no
// provider is configured.
func aiClient(ctx context.Context, db *sql.DB) (*ai.Client, *apiError) {
	settings, err := store.GetAISettings(ctx, db)
	if err != nil {
		slog.Error("loading ai settings", "error", err)
		return nil, errInternal("internal error")
	}
	cfg := ai.Resolve(settings)
	if cfg == nil {
		return nil, errBadRequest("no AI provider configured, set up LM Studio or Perplexity in settings")
	}
	return ai.NewClient(*cfg), nil
}

// List handles GET /api/spools.
func (h *SpoolsHandler) List(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opList(r.Context())
	writeResult(w, http.StatusOK, result, opErr)
}

// Create handles POST /api/spools.
func (h *SpoolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSpoolRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opCreate(r.Context(), req)
	writeResult(w, http.StatusCreated, result, opErr)
}

// Get handles GET /api/spools/{id}.
func (h *SpoolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opGet(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// Update handles PUT /api/spools/{id}.
func (h *SpoolsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSpoolRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opUpdate(r.Context(), r.PathValue("id"), req)
	writeResult(w, http.StatusOK, result, opErr)
}

// Archive handles POST /api/spools/{id}/archive.
func (h *SpoolsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opArchive(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// Delete handles DELETE /api/spools/{id}.
func (h *SpoolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opDelete(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// AddWeighIn handles POST /api/spools/{id}/weigh-ins.
func (h *SpoolsHandler) AddWeighIn(w http.ResponseWriter, r *http.Request) {
	var req weighInRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opAddWeighIn(r.Context(), r.PathValue("id"), req)
	writeResult(w, http.StatusCreated, result, opErr)
}

// ListWeighIns handles GET /api/spools/{id}/weigh-ins.
func (h *SpoolsHandler) ListWeighIns(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opListWeighIns(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// ScanLabel handles POST /api/spools/scan-label.
func (h *SpoolsHandler) ScanLabel(w http.ResponseWriter, r *http.Request) {
	var req scanLabelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opScanLabel(r.Context(), req)
	writeResult(w, http.StatusOK, result, opErr)
}

// EstimateRemaining handles POST /api/spools/estimate-remaining.
func (h *SpoolsHandler) EstimateRemaining(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opEstimateRemaining(r.Context(), req)
	writeResult(w, http.StatusOK, result, opErr)
}
