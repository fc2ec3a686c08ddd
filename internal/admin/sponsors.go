package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/forms"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /admin/sponsors
func SponsorsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/sponsors")
		p := readListParams(r)

		base := db.Conn().Model(&models.Sponsor{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var sponsors []models.Sponsor
		if err := base.Order("last_name, first_name").
			Limit(p.Per).Offset(p.Offset).
			Find(&sponsors).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(sponsors))
		for _, s := range sponsors {
			rows = append(rows, Row{ID: s.ID, Cells: []string{
				s.LastName, s.FirstName, s.Email, s.Telephone, activeLabel(s.IsParent),
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

// GET /admin/sponsors/new
func SponsorsNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/sponsor_form", map[string]any{
			"Title":   "Admin • New sponsor",
			"Sponsor": &models.Sponsor{IsParent: true},
			"Errors":  forms.Errors{},
		})
	}
}

// POST /admin/sponsors
func SponsorsCreate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sponsorSave(t, nil)(w, r)
	}
}

// GET /admin/sponsors/{id}/edit
func SponsorsEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s models.Sponsor
		if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		var wards []models.MartialArtist
		db.Conn().Where("sponsor_id = ?", s.ID).Order("last_name, first_name").Find(&wards)
		render(w, r, t, "pages/admin/sponsor_form", map[string]any{
			"Title":   "Admin • " + s.DisplayName(),
			"Sponsor": &s,
			"Wards":   wards,
			"Errors":  forms.Errors{},
		})
	}
}

// POST /admin/sponsors/{id}
func SponsorsUpdate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s models.Sponsor
		if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		sponsorSave(t, &s)(w, r)
	}
}

func sponsorSave(t *template.Template, existing *models.Sponsor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.SponsorForm{
			FirstName: strings.TrimSpace(r.FormValue("first_name")),
			LastName:  strings.TrimSpace(r.FormValue("last_name")),
			Email:     strings.TrimSpace(r.FormValue("email")),
		}

		s := existing
		if s == nil {
			s = &models.Sponsor{}
		}
		s.FirstName = form.FirstName
		s.MiddleName = strings.TrimSpace(r.FormValue("middle_name"))
		s.LastName = form.LastName
		s.Street = strings.TrimSpace(r.FormValue("street"))
		s.City = strings.TrimSpace(r.FormValue("city"))
		s.State = strings.TrimSpace(r.FormValue("state"))
		s.Zip = strings.TrimSpace(r.FormValue("zip"))
		s.Email = form.Email
		s.Telephone = strings.TrimSpace(r.FormValue("telephone"))
		s.IsParent = r.FormValue("is_parent") == "on"
		s.Notes = r.FormValue("notes")

		if errs := forms.Validate(form); errs.Any() {
			render(w, r, t, "pages/admin/sponsor_form", map[string]any{
				"Title":   "Admin • Sponsor",
				"Sponsor": s,
				"Errors":  errs,
			})
			return
		}

		if err := db.Conn().Save(s).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/sponsors/%d/edit?ok=saved", s.ID), http.StatusSeeOther)
	}
}

// POST /admin/sponsors/{id}/delete: artists that referenced the sponsor
// keep existing with the reference nulled.
func SponsorsDelete(w http.ResponseWriter, r *http.Request) {
	var s models.Sponsor
	if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&s).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/sponsors?ok=deleted", http.StatusSeeOther)
}
