package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /admin/styles
func StylesList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/styles")
		p := readListParams(r)

		base := db.Conn().Model(&models.Style{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var styles []models.Style
		if err := base.Preload("RankTypes").Order("title").
			Limit(p.Per).Offset(p.Offset).
			Find(&styles).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(styles))
		for _, s := range styles {
			rows = append(rows, Row{ID: s.ID, Cells: []string{
				s.Title, s.Originator, strconv.Itoa(len(s.RankTypes)),
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

// GET /admin/styles/new
func StylesNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/style_form", map[string]any{
			"Title": "Admin • New style",
			"Style": &models.Style{},
		})
	}
}

// POST /admin/styles
func StylesCreate(w http.ResponseWriter, r *http.Request) {
	styleSave(w, r, nil)
}

// GET /admin/styles/{id}/edit: rank types are edited inline here,
// ordered by ordinal.
func StylesEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s models.Style
		if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		var rankTypes []models.RankType
		db.Conn().Where("style_id = ?", s.ID).Order("ordinal").Find(&rankTypes)
		render(w, r, t, "pages/admin/style_form", map[string]any{
			"Title":     "Admin • " + s.Title,
			"Style":     &s,
			"RankTypes": rankTypes,
		})
	}
}

// POST /admin/styles/{id}
func StylesUpdate(w http.ResponseWriter, r *http.Request) {
	var s models.Style
	if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	styleSave(w, r, &s)
}

func styleSave(w http.ResponseWriter, r *http.Request, existing *models.Style) {
	_ = r.ParseForm()
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		target := "/admin/styles/new?error=missing"
		if existing != nil {
			target = fmt.Sprintf("/admin/styles/%d/edit?error=missing", existing.ID)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	s := existing
	if s == nil {
		s = &models.Style{}
	}
	s.Title = title
	s.Originator = strings.TrimSpace(r.FormValue("originator"))
	s.Notes = r.FormValue("notes")

	if err := db.Conn().Save(s).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?ok=saved", s.ID), http.StatusSeeOther)
}

// POST /admin/styles/{id}/delete: rank types cascade with the style.
func StylesDelete(w http.ResponseWriter, r *http.Request) {
	var s models.Style
	if err := db.Conn().First(&s, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&s).Error; err != nil {
		// A rank type under this style still has awarded ranks.
		if isRestrictViolation(err) {
			http.Redirect(w, r, "/admin/styles?error=has_ranks", http.StatusSeeOther)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/styles?ok=deleted", http.StatusSeeOther)
}

// GET /admin/ranktypes
func RankTypesList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/ranktypes")
		p := readListParams(r)

		base := db.Conn().Model(&models.RankType{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}
		if styleID := formUint(r.URL.Query().Get("filter")); styleID != nil {
			base = base.Where("style_id = ?", *styleID)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var rankTypes []models.RankType
		if err := base.Preload("Style").Order("style_id, ordinal").
			Limit(p.Per).Offset(p.Offset).
			Find(&rankTypes).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(rankTypes))
		for _, rt := range rankTypes {
			rows = append(rows, Row{ID: rt.ID, Cells: []string{
				rt.Style.Title, strconv.Itoa(rt.Ordinal), rt.Title, rt.Indicator,
				activeLabel(rt.TestRequired),
			}, Href: fmt.Sprintf("/admin/styles/%d/edit", rt.StyleID)})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		var styles []models.Style
		db.Conn().Order("title").Find(&styles)
		vm.Filters = []filterOption{{Label: "All styles", Value: ""}}
		for _, s := range styles {
			vm.Filters = append(vm.Filters, filterOption{Label: s.Title, Value: strconv.Itoa(int(s.ID))})
		}
		renderList(w, r, t, vm)
	}
}

// POST /admin/styles/{id}/ranktypes: inline rank type creation.
func StyleRankTypeCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	styleID := urlID(chi.URLParam(r, "id"))
	var s models.Style
	if err := db.Conn().First(&s, styleID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?error=missing", styleID), http.StatusSeeOther)
		return
	}

	rt := models.RankType{
		StyleID:      styleID,
		Title:        title,
		Indicator:    strings.TrimSpace(r.FormValue("indicator")),
		Ordinal:      formInt(r.FormValue("ordinal"), 0),
		TestRequired: r.FormValue("test_required") == "on",
		Notes:        r.FormValue("notes"),
	}
	if v := strings.TrimSpace(r.FormValue("time_in_grade")); v != "" {
		n := formInt(v, 0)
		rt.TimeInGrade = &n
	}
	if v := strings.TrimSpace(r.FormValue("time_in_style")); v != "" {
		n := formInt(v, 0)
		rt.TimeInStyle = &n
	}
	if err := db.Conn().Create(&rt).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?ok=saved", styleID), http.StatusSeeOther)
}

// POST /admin/ranktypes/{id}: inline update (title, ordinal, flags).
func RankTypeUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var rt models.RankType
	if err := db.Conn().First(&rt, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		rt.Title = title
	}
	rt.Indicator = strings.TrimSpace(r.FormValue("indicator"))
	rt.Ordinal = formInt(r.FormValue("ordinal"), rt.Ordinal)
	rt.TestRequired = r.FormValue("test_required") == "on"

	if err := db.Conn().Save(&rt).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?ok=saved", rt.StyleID), http.StatusSeeOther)
}

// POST /admin/ranktypes/{id}/delete: rejected while awarded ranks exist.
func RankTypeDelete(w http.ResponseWriter, r *http.Request) {
	var rt models.RankType
	if err := db.Conn().First(&rt, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&rt).Error; err != nil {
		if isRestrictViolation(err) {
			http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?error=has_ranks", rt.StyleID), http.StatusSeeOther)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/styles/%d/edit?ok=deleted", rt.StyleID), http.StatusSeeOther)
}

// isRestrictViolation matches sqlite's FK RESTRICT error shape.
func isRestrictViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}
