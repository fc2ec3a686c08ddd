package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /admin/classes
func ClassesList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/classes")
		p := readListParams(r)

		base := db.Conn().Model(&models.TrainingClass{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var classes []models.TrainingClass
		if err := base.Order("start desc").
			Limit(p.Per).Offset(p.Offset).
			Find(&classes).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(classes))
		for _, tc := range classes {
			rows = append(rows, Row{ID: tc.ID, Cells: []string{
				tc.Start.Format("2006-01-02 15:04"),
				tc.End.Format("2006-01-02 15:04"),
				strconv.FormatFloat(tc.DurationMins(), 'f', -1, 64),
				tc.Notes,
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

func classFormData(tc *models.TrainingClass) map[string]any {
	var people []models.MartialArtist
	db.Conn().Where("active = ?", true).Order("last_name, first_name").Find(&people)
	var styles []models.Style
	db.Conn().Order("title").Find(&styles)

	instructorIDs := map[uint]bool{}
	studentIDs := map[uint]bool{}
	focusIDs := map[uint]bool{}
	if tc != nil {
		for _, ma := range tc.Instructors {
			instructorIDs[ma.ID] = true
		}
		for _, ma := range tc.Students {
			studentIDs[ma.ID] = true
		}
		for _, s := range tc.Focus {
			focusIDs[s.ID] = true
		}
	}
	return map[string]any{
		"Class":         tc,
		"People":        people,
		"AllStyles":     styles,
		"InstructorIDs": instructorIDs,
		"StudentIDs":    studentIDs,
		"FocusIDs":      focusIDs,
	}
}

// GET /admin/classes/new
func ClassesNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := classFormData(&models.TrainingClass{})
		data["Title"] = "Admin • New training class"
		render(w, r, t, "pages/admin/class_form", data)
	}
}

// POST /admin/classes
func ClassesCreate(w http.ResponseWriter, r *http.Request) {
	classSave(w, r, nil)
}

// GET /admin/classes/{id}/edit
func ClassesEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tc models.TrainingClass
		if err := db.Conn().
			Preload("Instructors").Preload("Students").Preload("Focus").
			First(&tc, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		data := classFormData(&tc)
		data["Title"] = "Admin • Training class"
		render(w, r, t, "pages/admin/class_form", data)
	}
}

// POST /admin/classes/{id}
func ClassesUpdate(w http.ResponseWriter, r *http.Request) {
	var tc models.TrainingClass
	if err := db.Conn().First(&tc, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	classSave(w, r, &tc)
}

func classSave(w http.ResponseWriter, r *http.Request, existing *models.TrainingClass) {
	_ = r.ParseForm()

	start, okS := parseDateTime(r.FormValue("start"))
	end, okE := parseDateTime(r.FormValue("end"))
	if !okS || !okE || end.Before(start) {
		target := "/admin/classes/new?error=missing"
		if existing != nil {
			target = fmt.Sprintf("/admin/classes/%d/edit?error=missing", existing.ID)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	tc := existing
	if tc == nil {
		tc = &models.TrainingClass{}
	}
	tc.Start = start
	tc.End = end
	tc.Notes = r.FormValue("notes")

	if err := db.Conn().Save(tc).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	assoc := []struct {
		name  string
		field string
	}{
		{"Instructors", "instructor_ids"},
		{"Students", "student_ids"},
	}
	for _, a := range assoc {
		var people []models.MartialArtist
		if ids := formUints(r.Form[a.field]); len(ids) > 0 {
			db.Conn().Where("id IN ?", ids).Find(&people)
		}
		if err := db.Conn().Model(tc).Association(a.name).Replace(people); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
	}

	var focus []models.Style
	if ids := formUints(r.Form["focus_ids"]); len(ids) > 0 {
		db.Conn().Where("id IN ?", ids).Find(&focus)
	}
	if err := db.Conn().Model(tc).Association("Focus").Replace(focus); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/classes/%d/edit?ok=saved", tc.ID), http.StatusSeeOther)
}

// POST /admin/classes/{id}/delete
func ClassesDelete(w http.ResponseWriter, r *http.Request) {
	var tc models.TrainingClass
	if err := db.Conn().First(&tc, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Select("Instructors", "Students", "Focus").Delete(&tc).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/classes?ok=deleted", http.StatusSeeOther)
}
