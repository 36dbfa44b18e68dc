package web

import (
	"net/http"
	"strconv"
)

// formFloat parses a required numeric form field, returning 0 when absent or
// malformed.
func formFloat(r *http.Request, name string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(name), 64)
	return v
}

// optFloat parses an optional numeric form field, returning nil when the
// field is empty or malformed.
func optFloat(r *http.Request, name string) *float64 {
	raw := r.FormValue(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// optInt parses an optional integer form field.
func optInt(r *http.Request, name string) *int {
	raw := r.FormValue(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// optStr returns a pointer to the form value when the field was submitted
// non-empty, for partial updates where empty means "leave unchanged".
func optStr(r *http.Request, name string) *string {
	raw := r.FormValue(name)
	if raw == "" {
		return nil
	}
	return &raw
}
