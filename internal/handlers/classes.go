package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// classIDsFor returns the ids of classes the artist attended or taught.
func classIDsFor(artistID uint) []uint {
	var ids []uint
	db.Conn().Table("training_class_students").
		Where("martial_artist_id = ?", artistID).
		Pluck("training_class_id", &ids)
	var taught []uint
	db.Conn().Table("training_class_instructors").
		Where("martial_artist_id = ?", artistID).
		Pluck("training_class_id", &taught)
	return append(ids, taught...)
}

// GET /classes
func ClassesIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var classes []models.TrainingClass
		q := db.Conn().Preload("Instructors").Preload("Focus").Order("start desc")
		switch {
		case sc.All:
			q.Find(&classes)
		case sc.Artist != nil:
			ids := classIDsFor(sc.Artist.ID)
			if len(ids) > 0 {
				q.Where("id IN ?", ids).Find(&classes)
			}
		}

		render(w, r, t, "pages/classes/index", map[string]any{
			"Title":   "Training Classes",
			"Classes": classes,
			"Scope":   sc,
		})
	}
}

// GET /classes/{id}
func ClassesShow(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))

		if !sc.All {
			if sc.Artist == nil {
				http.NotFound(w, r)
				return
			}
			mine := false
			for _, cid := range classIDsFor(sc.Artist.ID) {
				if cid == uint(id) {
					mine = true
					break
				}
			}
			if !mine {
				http.NotFound(w, r)
				return
			}
		}

		var tc models.TrainingClass
		if err := db.Conn().
			Preload("Instructors").Preload("Students").Preload("Focus").
			First(&tc, id).Error; err != nil {
			http.NotFound(w, r)
			return
		}

		render(w, r, t, "pages/classes/show", map[string]any{
			"Title": "Training Class",
			"Class": tc,
			"Scope": sc,
		})
	}
}
