package handlers

import (
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/csrf"
)

// render executes a named page template, adding the keys every page
// expects: the signed-in user, the flash banner, and the CSRF field.
func render(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data map[string]any) {
	Render(w, r, t, name, data)
}

// Render is the shared template entry point; the admin package uses it so
// console pages carry the same ambient keys as the public site.
func Render(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = UserFromContext(r.Context())
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = MakeFlash(r)
	}
	data["CSRFField"] = csrf.TemplateField(r)

	if err := t.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
