package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/atelierlabs/makerstock/internal/ai"
	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

const maskedKey = "••••••••"

type settingsPageData struct {
	PageData
	Provider      string
	APIKeyMasked  string
	APIKeySet     bool
	LMStudioURL   string
	LMStudioModel string
}

func (s *Server) settingsData(r *http.Request, errMsg, success string) *settingsPageData {
	claims := GetWebClaims(r.Context())
	data := &settingsPageData{
		PageData: PageData{
			Title: "Settings", User: claims, Token: GetWebToken(r.Context()),
			Error: errMsg, Success: success,
		},
	}

	settings, err := store.GetAISettings(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load AI settings", "error", err)
		return data
	}

	data.Provider = settings.Provider
	data.LMStudioURL = settings.LMStudioURL
	data.LMStudioModel = settings.LMStudioModel
	if settings.PerplexityAPIKey != "" {
		data.APIKeyMasked = maskedKey
		data.APIKeySet = true
	}
	return data
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings.html", s.settingsData(r, "", ""))
}

// SettingsSubmit handles POST /settings. A masked or empty key field keeps
// the stored key.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}

	provider := r.FormValue("provider")
	if !model.ValidProvider(provider) {
		s.Templates.Render(w, "settings.html", s.settingsData(r, "Unknown AI provider.", ""))
		return
	}

	upd := store.AISettingsUpdate{
		Provider:      provider,
		LMStudioURL:   r.FormValue("lmstudio_url"),
		LMStudioModel: r.FormValue("lmstudio_model"),
	}
	if key := r.FormValue("perplexity_api_key"); key != "" && !strings.HasPrefix(key, "••") {
		upd.PerplexityAPIKey = &key
	}

	if err := store.SaveAISettings(r.Context(), s.DB, upd); err != nil {
		slog.Error("failed to save AI settings", "error", err)
		s.Templates.Render(w, "settings.html", s.settingsData(r, "Failed to save settings.", ""))
		return
	}

	slog.Info("AI settings saved", "provider", provider)
	s.Templates.Render(w, "settings.html", s.settingsData(r, "", "Settings saved."))
}

// SettingsTestSubmit handles POST /settings/test, probing the configured AI
// provider.
func (s *Server) SettingsTestSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}

	settings, err := store.GetAISettings(r.Context(), s.DB)
	if err != nil {
		s.Templates.Render(w, "settings.html", s.settingsData(r, "Failed to load settings.", ""))
		return
	}

	cfg := ai.Resolve(settings)
	if cfg == nil {
		s.Templates.Render(w, "settings.html", s.settingsData(r, "No AI provider configured.", ""))
		return
	}

	result := ai.NewClient(*cfg).TestConnection(r.Context())
	if !result.OK {
		s.Templates.Render(w, "settings.html",
			s.settingsData(r, "Connection failed: "+result.Error, ""))
		return
	}
	s.Templates.Render(w, "settings.html",
		s.settingsData(r, "", "Connected to "+result.Provider+"."))
}
