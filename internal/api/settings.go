package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

// maskedKey is what clients see in place of a stored API key.
const maskedKey = "••••••••"

// SettingsHandler handles the AI provider configuration endpoints.
type SettingsHandler struct {
	DB *sql.DB
}

type aiSettingsResponse struct {
	Provider            string `json:"provider"`
	PerplexityAPIKey    string `json:"perplexityApiKey"`
	PerplexityAPIKeySet bool   `json:"perplexityApiKeySet"`
	LMStudioURL         string `json:"lmstudioUrl"`
	LMStudioModel       string `json:"lmstudioModel"`
}

type saveAISettingsRequest struct {
	Provider         string  `json:"provider"`
	PerplexityAPIKey *string `json:"perplexityApiKey"`
	LMStudioURL      string  `json:"lmstudioUrl"`
	LMStudioModel    string  `json:"lmstudioModel"`
}

func (h *SettingsHandler) opGetAI(ctx context.Context) (any, *apiError) {
	settings, err := store.GetAISettings(ctx, h.DB)
	if err != nil {
		slog.Error("loading ai settings", "error", err)
		return nil, errInternal("failed to load settings")
	}

	resp := aiSettingsResponse{
		Provider:      settings.Provider,
		LMStudioURL:   settings.LMStudioURL,
		LMStudioModel: settings.LMStudioModel,
	}
	// The key itself never leaves the server.
	if settings.PerplexityAPIKey != "" {
		resp.PerplexityAPIKey = maskedKey
		resp.PerplexityAPIKeySet = true
	}
	return resp, nil
}

func (h *SettingsHandler) opSaveAI(ctx context.Context, req saveAISettingsRequest) (any, *apiError) {
	if !model.ValidProvider(req.Provider) {
		return nil, errBadRequest("provider must be perplexity or lmstudio")
	}

	upd := store.AISettingsUpdate{
		Provider:      req.Provider,
		LMStudioURL:   req.LMStudioURL,
		LMStudioModel: req.LMStudioModel,
	}
	// A client echoing the mask back is not supplying a new key.
	if req.PerplexityAPIKey != nil && *req.PerplexityAPIKey != "" &&
		!strings.HasPrefix(*req.PerplexityAPIKey, "••") {
		upd.PerplexityAPIKey = req.PerplexityAPIKey
	}

	if err := store.SaveAISettings(ctx, h.DB, upd); err != nil {
		slog.Error("saving ai settings", "error", err)
		return nil, errInternal("failed to save settings")
	}
	return map[string]bool{"success": true}, nil
}

func (h *SettingsHandler) opTestAI(ctx context.Context) (any, *apiError) {
	client, apiErr := aiClient(ctx, h.DB)
	if apiErr != nil {
		return nil, apiErr
	}
	return client.TestConnection(ctx), nil
}

// GetAI handles GET /api/settings/ai.
func (h *SettingsHandler) GetAI(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opGetAI(r.Context())
	writeResult(w, http.StatusOK, result, opErr)
}

// SaveAI handles POST /api/settings/ai.
func (h *SettingsHandler) SaveAI(w http.ResponseWriter, r *http.Request) {
	var req saveAISettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, opErr := h.opSaveAI(r.Context(), req)
	writeResult(w, http.StatusOK, result, opErr)
}

// TestAI handles POST /api/settings/ai/test.
func (h *SettingsHandler) TestAI(w http.ResponseWriter, r *http.Request) {
	result, opErr := h.opTestAI(r.Context())
	writeResult(w, http.StatusOK, result, opErr)
}
