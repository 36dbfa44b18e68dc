package api

import (
	"database/sql"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/auth"
)

// NewRouter creates the API router with all endpoints registered. Every
// data route sits behind authentication plus the owner policy.
func NewRouter(db *sql.DB, jwtSecret string, owner auth.OwnerPolicy) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Owner: owner}
	spoolsHandler := &SpoolsHandler{DB: db}
	laserHandler := &LaserHandler{DB: db}
	settingsHandler := &SettingsHandler{DB: db}
	rpcHandler := NewRPCHandler(db, owner)

	authMW := AuthMiddleware(jwtSecret, db)
	ownerMW := RequireOwner(owner)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMW(ownerMW(h))
	}

	// Public.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated but not owner-gated: identity introspection and logout.
	mux.Handle("GET /api/auth/check-owner", authMW(http.HandlerFunc(authHandler.CheckOwner)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Spools.
	mux.Handle("GET /api/spools", protected(spoolsHandler.List))
	mux.Handle("POST /api/spools", protected(spoolsHandler.Create))
	mux.Handle("POST /api/spools/scan-label", protected(spoolsHandler.ScanLabel))
	mux.Handle("POST /api/spools/estimate-remaining", protected(spoolsHandler.EstimateRemaining))
	mux.Handle("GET /api/spools/{id}", protected(spoolsHandler.Get))
	mux.Handle("PUT /api/spools/{id}", protected(spoolsHandler.Update))
	mux.Handle("DELETE /api/spools/{id}", protected(spoolsHandler.Delete))
	mux.Handle("POST /api/spools/{id}/archive", protected(spoolsHandler.Archive))
	mux.Handle("GET /api/spools/{id}/weigh-ins", protected(spoolsHandler.ListWeighIns))
	mux.Handle("POST /api/spools/{id}/weigh-ins", protected(spoolsHandler.AddWeighIn))

	// Laser materials.
	mux.Handle("GET /api/laser", protected(laserHandler.List))
	mux.Handle("POST /api/laser", protected(laserHandler.Create))
	mux.Handle("GET /api/laser/catalog", protected(laserHandler.Catalog))
	mux.Handle("POST /api/laser/scan-label", protected(laserHandler.ScanLabel))
	mux.Handle("GET /api/laser/{id}", protected(laserHandler.Get))
	mux.Handle("PUT /api/laser/{id}", protected(laserHandler.Update))
	mux.Handle("DELETE /api/laser/{id}", protected(laserHandler.Delete))
	mux.Handle("POST /api/laser/{id}/adjust-stock", protected(laserHandler.AdjustStock))
	mux.Handle("GET /api/laser/{id}/movements", protected(laserHandler.ListMovements))

	// Settings.
	mux.Handle("GET /api/settings/ai", protected(settingsHandler.GetAI))
	mux.Handle("POST /api/settings/ai", protected(settingsHandler.SaveAI))
	mux.Handle("POST /api/settings/ai/test", protected(settingsHandler.TestAI))

	// Callable mirror. authCheckOwner must work for non-owners, so the
	// owner gate lives inside the dispatcher for that one name.
	mux.Handle("POST /api/call/{name}", authMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "authCheckOwner" {
			rpcHandler.Call(w, r)
			return
		}
		ownerMW(http.HandlerFunc(rpcHandler.Call)).ServeHTTP(w, r)
	})))

	return mux
}
