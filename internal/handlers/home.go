package handlers

import (
	"html/template"
	"net/http"
)

// GET /
func Home(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/home", map[string]any{
			"Title": "Dojotrack",
		})
	}
}

// GET /about
func About(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/about", map[string]any{
			"Title": "About",
		})
	}
}

// GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
