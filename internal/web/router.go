package web

import (
	"database/sql"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/auth"
	webembed "github.com/atelierlabs/makerstock/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, owner auth.OwnerPolicy) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Owner:     owner,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Dashboard)))

	mux.Handle("GET /spools", cookieAuth(http.HandlerFunc(s.SpoolsPage)))
	mux.Handle("POST /spools", cookieAuth(http.HandlerFunc(s.SpoolCreateSubmit)))
	mux.Handle("GET /spools/{id}", cookieAuth(http.HandlerFunc(s.SpoolDetailPage)))
	mux.Handle("POST /spools/{id}", cookieAuth(http.HandlerFunc(s.SpoolUpdateSubmit)))
	mux.Handle("POST /spools/{id}/weigh-in", cookieAuth(http.HandlerFunc(s.SpoolWeighInSubmit)))
	mux.Handle("POST /spools/{id}/archive", cookieAuth(http.HandlerFunc(s.SpoolArchiveSubmit)))
	mux.Handle("POST /spools/{id}/delete", cookieAuth(http.HandlerFunc(s.SpoolDeleteSubmit)))

	mux.Handle("GET /laser", cookieAuth(http.HandlerFunc(s.LaserPage)))
	mux.Handle("POST /laser", cookieAuth(http.HandlerFunc(s.LaserCreateSubmit)))
	mux.Handle("GET /laser/{id}", cookieAuth(http.HandlerFunc(s.LaserDetailPage)))
	mux.Handle("POST /laser/{id}", cookieAuth(http.HandlerFunc(s.LaserUpdateSubmit)))
	mux.Handle("POST /laser/{id}/adjust", cookieAuth(http.HandlerFunc(s.LaserAdjustSubmit)))
	mux.Handle("POST /laser/{id}/delete", cookieAuth(http.HandlerFunc(s.LaserDeleteSubmit)))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))
	mux.Handle("POST /settings/test", cookieAuth(http.HandlerFunc(s.SettingsTestSubmit)))

	return mux, nil
}
