package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/catalog"
	"github.com/atelierlabs/makerstock/internal/imaging"
	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

// LaserHandler handles laser material CRUD, stock movements, the label
// scanner and the catalog listing.
type LaserHandler struct {
	DB *sql.DB
}

type createLaserRequest struct {
	Type            string   `json:"type"`
	ThicknessMm     float64  `json:"thicknessMm"`
	Format          string   `json:"format"`
	WidthMm         *float64 `json:"widthMm"`
	HeightMm        *float64 `json:"heightMm"`
	QuantityInitial int      `json:"quantityInitial"`
	SafeFlag        string   `json:"safeFlag"`
	ThresholdQty    *int     `json:"thresholdQty"`
	Location        string   `json:"location"`
	Notes           string   `json:"notes"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Barcode         string   `json:"barcode"`
	ImageURL        string   `json:"imageUrl"`
}

type updateLaserRequest struct {
	Type            *string  `json:"type"`
	ThicknessMm     *float64 `json:"thicknessMm"`
	Format          *string  `json:"format"`
	WidthMm         *float64 `json:"widthMm"`
	HeightMm        *float64 `json:"heightMm"`
	QuantityInitial *int     `json:"quantityInitial"`
	SafeFlag        *string  `json:"safeFlag"`
	ThresholdQty    *int     `json:"thresholdQty"`
	Location        *string  `json:"location"`
	Notes           *string  `json:"notes"`
	Brand           *string  `json:"brand"`
	Model           *string  `json:"model"`
	Barcode         *string  `json:"barcode"`
	ImageURL        *string  `json:"imageUrl"`
}

type adjustStockRequest struct {
	Delta *int   `json:"delta"`
	Note  string `json:"note"`
}

func (h *LaserHandler) opCreate(ctx context.Context, req createLaserRequest) (any, *apiError) {
	if req.Type == "" {
		return nil, errBadRequest("type required")
	}
	if req.ThicknessMm <= 0 {
		return nil, errBadRequest("thicknessMm must be positive")
	}
	if !model.ValidLaserFormat(req.Format) {
		return nil, errBadRequest("format must be SHEET or PCS")
	}
	if req.QuantityInitial <= 0 {
		return nil, errBadRequest("quantityInitial must be positive")
	}
	if req.SafeFlag != "" && !model.ValidSafeFlag(req.SafeFlag) {
		return nil, errBadRequest("invalid safeFlag")
	}
	if req.ThresholdQty != nil && *req.ThresholdQty <= 0 {
		return nil, errBadRequest("thresholdQty must be positive")
	}
	if (req.WidthMm != nil && *req.WidthMm <= 0) || (req.HeightMm != nil && *req.HeightMm <= 0) {
		return nil, errBadRequest("dimensions must be positive")
	}

	id, err := store.CreateLaserMaterial(ctx, h.DB, store.LaserCreate{
		Type:            req.Type,
		ThicknessMm:     req.ThicknessMm,
		Format:          req.Format,
		WidthMm:         req.WidthMm,
		HeightMm:        req.HeightMm,
		QuantityInitial: req.QuantityInitial,
		SafeFlag:        req.SafeFlag,
		ThresholdQty:    req.ThresholdQty,
		Location:        req.Location,
		Notes:           req.Notes,
		Brand:           req.Brand,
		Model:           req.Model,
		Barcode:         req.Barcode,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		slog.Error("creating laser material", "error", err)
		return nil, errInternal("failed to create laser material")
	}
	return map[string]string{"id": id}, nil
}

func (h *LaserHandler) opList(ctx context.Context) (any, *apiError) {
	materials, err := store.ListLaserMaterials(ctx, h.DB)
	if err != nil {
		slog.Error("listing laser materials", "error", err)
		return nil, errInternal("failed to list laser materials")
	}
	if materials == nil {
		materials = []model.LaserMaterial{}
	}
	return materials, nil
}

func (h *LaserHandler) opGet(ctx context.Context, id string) (any, *apiError) {
	material, err := store.GetLaserMaterial(ctx, h.DB, id)
	if err != nil {
		slog.Error("getting laser material", "error", err)
		return nil, errInternal("failed to get laser material")
	}
	if material == nil {
		return nil, errNotFound("laser material not found")
	}
	return material, nil
}

func (h *LaserHandler) opUpdate(ctx context.Context, id string, req updateLaserRequest) (any, *apiError) {
	if req.Type != nil && *req.Type == "" {
		return nil, errBadRequest("type cannot be empty")
	}
	if req.ThicknessMm != nil && *req.ThicknessMm <= 0 {
		return nil, errBadRequest("thicknessMm must be positive")
	}
	if req.Format != nil && !model.ValidLaserFormat(*req.Format) {
		return nil, errBadRequest("format must be SHEET or PCS")
	}
	if req.QuantityInitial != nil && *req.QuantityInitial <= 0 {
		return nil, errBadRequest("quantityInitial must be positive")
	}
	if req.SafeFlag != nil && !model.ValidSafeFlag(*req.SafeFlag) {
		return nil, errBadRequest("invalid safeFlag")
	}
	if req.ThresholdQty != nil && *req.ThresholdQty <= 0 {
		return nil, errBadRequest("thresholdQty must be positive")
	}
	if (req.WidthMm != nil && *req.WidthMm <= 0) || (req.HeightMm != nil && *req.HeightMm <= 0) {
		return nil, errBadRequest("dimensions must be positive")
	}

	material, err := store.UpdateLaserMaterial(ctx, h.DB, id, store.LaserUpdate{
		Type:            req.Type,
		ThicknessMm:     req.ThicknessMm,
		Format:          req.Format,
		WidthMm:         req.WidthMm,
		HeightMm:        req.HeightMm,
		QuantityInitial: req.QuantityInitial,
		SafeFlag:        req.SafeFlag,
		ThresholdQty:    req.ThresholdQty,
		Location:        req.Location,
		Notes:           req.Notes,
		Brand:           req.Brand,
		Model:           req.Model,
		Barcode:         req.Barcode,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		slog.Error("updating laser material", "error", err)
		return nil, errInternal("failed to update laser material")
	}
	if material == nil {
		return nil, errNotFound("laser material not found")
	}
	return map[string]bool{"success": true}, nil
}

func (h *LaserHandler) opDelete(ctx context.Context, id string) (any, *apiError) {
	ok, err := store.DeleteLaserMaterial(ctx, h.DB, id)
	if err != nil {
		slog.Error("deleting laser material", "error", err)
		return nil, errInternal("failed to delete laser material")
	}
	if !ok {
		return nil, errNotFound("laser material not found")
	}
	return map[string]bool{"success": true}, nil
}

func (h *LaserHandler) opAdjustStock(ctx context.Context, id string, req adjustStockRequest) (any, *apiError) {
	if req.Delta == nil || *req.Delta == 0 {
		return nil, errBadRequest("delta must be a non-zero integer")
	}

	createdBy := ""
	if claims := GetClaims(ctx); claims != nil {
		createdBy = claims.UID
	}

	result, err := store.AdjustLaserStock(ctx, h.DB, id, *req.Delta, req.Note, createdBy)
	if err != nil {
		slog.Error("adjusting laser stock", "error", err)
		return nil, errInternal("failed to adjust stock")
	}
	if result == nil {
		return nil, errNotFound("laser material not found")
	}
	return result, nil
}

func (h *LaserHandler) opListMovements(ctx context.Context, id string) (any, *apiError) {
	material, err := store.GetLaserMaterial(ctx, h.DB, id)
	if err != nil {
		slog.Error("getting laser material", "error", err)
		return nil, errInternal("failed to get laser material")
	}
	if material == nil {
		return nil, errNotFound("laser material not found")
	}

	movements, err := store.ListMovements(ctx, h.DB, id)
	if err != nil {
		slog.Error("listing movements", "error", err)
		return nil, errInternal("failed to list movements")
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	return movements, nil
}

func (h *LaserHandler) opScanLabel(ctx context.Context, req scanLabelRequest) (any, *apiError) {
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

	guess, err := client.ScanLaserLabel(ctx, photo.DataURL())
	if err != nil {
		slog.Error("scanning material label", "provider", client.Provider(), "error", err)
		return nil, errInternal("label scan failed")
	}

	return map[string]any{
		"success":  true,
		"provider": client.Provider(),
		"data":     catalog.Enrich(*guess),
	}, nil
}

func (h *LaserHandler) opCatalog(_ context.Context) (any, *apiError) {
	return catalog.All(), nil
}

// List handles GET /api/laser.
func (h *LaserHandler) List(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opList(r.Context())
	writeResult(w, http.StatusOK, result, opErr)
}

// Create handles POST /api/laser.
func (h *LaserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLaserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opCreate(r.Context(), req)
	writeResult(w, http.StatusCreated, result, opErr)
}

// Get handles GET /api/laser/{id}.
func (h *LaserHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opGet(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// Update handles PUT /api/laser/{id}.
func (h *LaserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateLaserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opUpdate(r.Context(), r.PathValue("id"), req)
	writeResult(w, http.StatusOK, result, opErr)
}

// Delete handles DELETE /api/laser/{id}.
func (h *LaserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opDelete(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// AdjustStock handles POST /api/laser/{id}/adjust-stock.
func (h *LaserHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opAdjustStock(r.Context(), r.PathValue("id"), req)
	writeResult(w, http.StatusCreated, result, opErr)
}

// ListMovements handles GET /api/laser/{id}/movements.
func (h *LaserHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opListMovements(r.Context(), r.PathValue("id"))
	writeResult(w, http.StatusOK, result, opErr)
}

// ScanLabel handles POST /api/laser/scan-label.
func (h *LaserHandler) ScanLabel(w http.ResponseWriter, r *http.Request) {
	var req scanLabelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opScanLabel(r.Context(), req)
	writeResult(w, http.StatusOK, result, opErr)
}

// Catalog handles GET /api/laser/catalog.
func (h *LaserHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opCatalog(r.Context())
	writeResult(w, http.StatusOK, result, opErr)
}
