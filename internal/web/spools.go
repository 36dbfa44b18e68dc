package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

// SpoolsPage handles GET /spools.
func (s *Server) SpoolsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	spools, err := store.ListSpools(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list spools", "error", err)
	}

	s.Templates.Render(w, "spools.html", &struct {
		PageData
		Spools []model.Spool
	}{
		PageData: PageData{Title: "Filament spools", User: claims, Token: GetWebToken(r.Context())},
		Spools:   spools,
	})
}

// SpoolCreateSubmit handles POST /spools.
func (s *Server) SpoolCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}

	in := store.SpoolCreate{
		Label:       r.FormValue("label"),
		Brand:       r.FormValue("brand"),
		Material:    r.FormValue("material"),
		Color:       r.FormValue("color"),
		ColorHex:    r.FormValue("color_hex"),
		Diameter:    formFloat(r, "diameter"),
		NetInitialG: formFloat(r, "net_initial_g"),
		TareG:       formFloat(r, "tare_g"),
		ThresholdG:  optFloat(r, "threshold_g"),
		Location:    r.FormValue("location"),
		Notes:       r.FormValue("notes"),
		Barcode:     r.FormValue("barcode"),
	}

	if in.Label == "" || in.Material == "" || in.Color == "" || in.Diameter <= 0 || in.NetInitialG <= 0 {
		http.Redirect(w, r, "/spools", http.StatusSeeOther)
		return
	}
	if in.ColorHex != "" && !model.ValidColorHex(in.ColorHex) {
		http.Redirect(w, r, "/spools", http.StatusSeeOther)
		return
	}

	if id, err := store.CreateSpool(r.Context(), s.DB, in); err != nil {
		slog.Error("failed to create spool", "error", err)
		http.Redirect(w, r, "/spools", http.StatusSeeOther)
	} else {
		slog.Info("spool created", "spool", in.Label)
		http.Redirect(w, r, "/spools/"+id, http.StatusSeeOther)
	}
}

// SpoolDetailPage handles GET /spools/{id}.
func (s *Server) SpoolDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	spool, err := store.GetSpool(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get spool", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if spool == nil {
		http.Error(w, "spool not found", http.StatusNotFound)
		return
	}

	weighIns, err := store.ListWeighIns(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list weigh-ins", "error", err)
	}

	s.Templates.Render(w, "spool_detail.html", &struct {
		PageData
		Spool    *model.Spool
		WeighIns []model.WeighIn
	}{
		PageData: PageData{Title: spool.Label, User: claims, Token: GetWebToken(r.Context())},
		Spool:    spool,
		WeighIns: weighIns,
	})
}

// SpoolUpdateSubmit handles POST /spools/{id}.
func (s *Server) SpoolUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	id := r.PathValue("id")

	upd := store.SpoolUpdate{
		Label:      optStr(r, "label"),
		Brand:      optStr(r, "brand"),
		Material:   optStr(r, "material"),
		Color:      optStr(r, "color"),
		ColorHex:   optStr(r, "color_hex"),
		Diameter:   optFloat(r, "diameter"),
		TareG:      optFloat(r, "tare_g"),
		ThresholdG: optFloat(r, "threshold_g"),
		Location:   optStr(r, "location"),
		Notes:      optStr(r, "notes"),
		Barcode:    optStr(r, "barcode"),
	}

	spool, err := store.UpdateSpool(r.Context(), s.DB, id, upd)
	if err != nil {
		slog.Error("failed to update spool", "error", err)
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}
	if spool == nil {
		http.Error(w, "spool not found", http.StatusNotFound)
		return
	}

	slog.Info("spool updated", "spool", spool.Label)
	http.Redirect(w, r, "/spools/"+id, http.StatusSeeOther)
}

// SpoolWeighInSubmit handles POST /spools/{id}/weigh-in.
func (s *Server) SpoolWeighInSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	weight := formFloat(r, "weight_g")
	if weight < 0 {
		http.Error(w, "weight must be zero or positive", http.StatusBadRequest)
		return
	}

	result, err := store.AddWeighIn(r.Context(), s.DB, id, weight, r.FormValue("note"), claims.UID)
	if err != nil {
		slog.Error("failed to add weigh-in", "error", err)
		http.Error(w, "failed to record weigh-in", http.StatusInternalServerError)
		return
	}
	if result == nil {
		http.Error(w, "spool not found", http.StatusNotFound)
		return
	}

	slog.Info("weigh-in recorded", "spool", id,
		"weight_g", weight, "remaining_g", result.RemainingG, "status", result.Status)
	http.Redirect(w, r, "/spools/"+id, http.StatusSeeOther)
}

// SpoolArchiveSubmit handles POST /spools/{id}/archive.
func (s *Server) SpoolArchiveSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	id := r.PathValue("id")

	found, err := store.ArchiveSpool(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to archive spool", "error", err)
		http.Error(w, "failed to archive", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "spool not found", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/spools/%s", id), http.StatusSeeOther)
}

// SpoolDeleteSubmit handles POST /spools/{id}/delete.
func (s *Server) SpoolDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	id := r.PathValue("id")

	found, err := store.DeleteSpool(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to delete spool", "error", err)
		http.Error(w, "failed to delete", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "spool not found", http.StatusNotFound)
		return
	}

	slog.Info("spool deleted", "spool", id)
	http.Redirect(w, r, "/spools", http.StatusSeeOther)
}
