package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

// LaserPage handles GET /laser.
func (s *Server) LaserPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	materials, err := store.ListLaserMaterials(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list laser materials", "error", err)
	}

	s.Templates.Render(w, "laser.html", &struct {
		PageData
		Materials []model.LaserMaterial
	}{
		PageData:  PageData{Title: "Laser materials", User: claims, Token: GetWebToken(r.Context())},
		Materials: materials,
	})
}

// LaserCreateSubmit handles POST /laser.
func (s *Server) LaserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantity_initial"))
	safeFlag := r.FormValue("safe_flag")
	if safeFlag == "" {
		safeFlag = model.SafeFlagOK
	}

	in := store.LaserCreate{
		Type:            r.FormValue("type"),
		ThicknessMm:     formFloat(r, "thickness_mm"),
		Format:          r.FormValue("format"),
		WidthMm:         optFloat(r, "width_mm"),
		HeightMm:        optFloat(r, "height_mm"),
		QuantityInitial: quantity,
		SafeFlag:        safeFlag,
		ThresholdQty:    optInt(r, "threshold_qty"),
		Location:        r.FormValue("location"),
		Notes:           r.FormValue("notes"),
		Brand:           r.FormValue("brand"),
		Model:           r.FormValue("model"),
		Barcode:         r.FormValue("barcode"),
	}

	if in.Type == "" || in.ThicknessMm <= 0 || !model.ValidLaserFormat(in.Format) ||
		in.QuantityInitial <= 0 || !model.ValidSafeFlag(in.SafeFlag) {
		http.Redirect(w, r, "/laser", http.StatusSeeOther)
		return
	}

	if id, err := store.CreateLaserMaterial(r.Context(), s.DB, in); err != nil {
		slog.Error("failed to create laser material", "error", err)
		http.Redirect(w, r, "/laser", http.StatusSeeOther)
	} else {
		slog.Info("laser material created", "type", in.Type, "thickness_mm", in.ThicknessMm)
		http.Redirect(w, r, "/laser/"+id, http.StatusSeeOther)
	}
}

// LaserDetailPage handles GET /laser/{id}.
func (s *Server) LaserDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	material, err := store.GetLaserMaterial(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get laser material", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if material == nil {
		http.Error(w, "material not found", http.StatusNotFound)
		return
	}

	movements, err := store.ListMovements(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to list movements", "error", err)
	}

	s.Templates.Render(w, "laser_detail.html", &struct {
		PageData
		Material  *model.LaserMaterial
		Movements []model.Movement
	}{
		PageData:  PageData{Title: material.Type, User: claims, Token: GetWebToken(r.Context())},
		Material:  material,
		Movements: movements,
	})
}

// LaserUpdateSubmit handles POST /laser/{id}.
func (s *Server) LaserUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	id := r.PathValue("id")

	upd := store.LaserUpdate{
		Type:         optStr(r, "type"),
		ThicknessMm:  optFloat(r, "thickness_mm"),
		Format:       optStr(r, "format"),
		WidthMm:      optFloat(r, "width_mm"),
		HeightMm:     optFloat(r, "height_mm"),
		SafeFlag:     optStr(r, "safe_flag"),
		ThresholdQty: optInt(r, "threshold_qty"),
		Location:     optStr(r, "location"),
		Notes:        optStr(r, "notes"),
		Brand:        optStr(r, "brand"),
		Model:        optStr(r, "model"),
		Barcode:      optStr(r, "barcode"),
	}

	material, err := store.UpdateLaserMaterial(r.Context(), s.DB, id, upd)
	if err != nil {
		slog.Error("failed to update laser material", "error", err)
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}
	if material == nil {
		http.Error(w, "material not found", http.StatusNotFound)
		return
	}

	slog.Info("laser material updated", "material", material.Type)
	http.Redirect(w, r, "/laser/"+id, http.StatusSeeOther)
}

// LaserAdjustSubmit handles POST /laser/{id}/adjust.
func (s *Server) LaserAdjustSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil || delta == 0 {
		http.Error(w, "delta must be a non-zero integer", http.StatusBadRequest)
		return
	}

	result, err := store.AdjustLaserStock(r.Context(), s.DB, id, delta, r.FormValue("note"), claims.UID)
	if err != nil {
		slog.Error("failed to adjust laser stock", "error", err)
		http.Error(w, "failed to adjust stock", http.StatusInternalServerError)
		return
	}
	if result == nil {
		http.Error(w, "material not found", http.StatusNotFound)
		return
	}

	slog.Info("laser stock adjusted", "material", id,
		"delta", delta, "remaining", result.QuantityRemaining)
	http.Redirect(w, r, "/laser/"+id, http.StatusSeeOther)
}

// LaserDeleteSubmit handles POST /laser/{id}/delete.
func (s *Server) LaserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.requireOwner(w, r) {
		return
	}
	id := r.PathValue("id")

	found, err := store.DeleteLaserMaterial(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to delete laser material", "error", err)
		http.Error(w, "failed to delete", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "material not found", http.StatusNotFound)
		return
	}

	slog.Info("laser material deleted", "material", id)
	http.Redirect(w, r, "/laser", http.StatusSeeOther)
}
