package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/atelierlabs/makerstock/internal/auth"
	"github.com/atelierlabs/makerstock/internal/model"
	webembed "github.com/atelierlabs/makerstock/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusName": func(status string) string {
			switch status {
			case model.SpoolStatusNew:
				return "New"
			case model.SpoolStatusInUse:
				return "In use"
			case model.SpoolStatusLow:
				return "Low"
			case model.SpoolStatusEmpty:
				return "Empty"
			case model.SpoolStatusArchived:
				return "Archived"
			default:
				return status
			}
		},
		"safeFlagName": func(flag string) string {
			switch flag {
			case model.SafeFlagOK:
				return "Laser safe"
			case model.SafeFlagCaution:
				return "Caution"
			case model.SafeFlagNo:
				return "Not laser safe"
			default:
				return flag
			}
		},
		"formatName": func(format string) string {
			switch format {
			case model.LaserFormatSheet:
				return "Sheet"
			case model.LaserFormatPcs:
				return "Pieces"
			default:
				return format
			}
		},
		"grams": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return fmt.Sprintf("%.0f g", *v)
		},
		"pct": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return fmt.Sprintf("%.0f %%", *v*100)
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"dashboard.html",
		"spools.html",
		"spool_detail.html",
		"laser.html",
		"laser_detail.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Token   string
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Owner     auth.OwnerPolicy
}
