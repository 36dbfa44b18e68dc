package web

import (
	"log/slog"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/model"
	"github.com/atelierlabs/makerstock/internal/store"
)

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	spools, err := store.ListSpools(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list spools for dashboard", "error", err)
	}
	laser, err := store.ListLaserMaterials(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list laser materials for dashboard", "error", err)
	}

	var lowSpools, emptySpools []model.Spool
	active := 0
	for _, sp := range spools {
		switch sp.Status {
		case model.SpoolStatusLow:
			lowSpools = append(lowSpools, sp)
		case model.SpoolStatusEmpty:
			emptySpools = append(emptySpools, sp)
		}
		if sp.Status != model.SpoolStatusArchived {
			active++
		}
	}

	var lowLaser []model.LaserMaterial
	for i := range laser {
		if laser[i].LowStock() {
			lowLaser = append(lowLaser, laser[i])
		}
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		SpoolCount  int
		ActiveCount int
		LaserCount  int
		LowSpools   []model.Spool
		EmptySpools []model.Spool
		LowLaser    []model.LaserMaterial
	}{
		PageData:    PageData{Title: "Dashboard", User: claims, Token: GetWebToken(r.Context())},
		SpoolCount:  len(spools),
		ActiveCount: active,
		LaserCount:  len(laser),
		LowSpools:   lowSpools,
		EmptySpools: emptySpools,
		LowLaser:    lowLaser,
	})
}
