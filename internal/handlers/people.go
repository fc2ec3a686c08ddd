package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /people
func PeopleIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var people []models.MartialArtist
		switch {
		case sc.All:
			db.Conn().Where("active = ?", true).
				Preload("Sponsor").Preload("PaymentPlan").Preload("Styles").
				Order("last_name, first_name").Find(&people)
		case sc.Artist != nil:
			var ma models.MartialArtist
			if err := db.Conn().Preload("Sponsor").Preload("PaymentPlan").Preload("Styles").
				First(&ma, sc.Artist.ID).Error; err == nil {
				people = []models.MartialArtist{ma}
			}
		}

		render(w, r, t, "pages/people/index", map[string]any{
			"Title":  "People",
			"People": people,
			"Scope":  sc,
		})
	}
}

// GET /people/{id}
func PeopleShow(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))

		// A linked caller may only view their own record.
		if !sc.All && (sc.Artist == nil || sc.Artist.ID != uint(id)) {
			http.NotFound(w, r)
			return
		}

		var ma models.MartialArtist
		if err := db.Conn().
			Preload("Sponsor").Preload("PaymentPlan").Preload("Styles").
			First(&ma, id).Error; err != nil {
			http.NotFound(w, r)
			return
		}

		var ranks []models.Rank
		db.Conn().Where("martial_artist_id = ?", ma.ID).
			Preload("RankType").Preload("RankType.Style").
			Order("award_date desc").Find(&ranks)

		render(w, r, t, "pages/people/show", map[string]any{
			"Title":  ma.DisplayName(),
			"Artist": ma,
			"Ranks":  ranks,
			"Scope":  sc,
		})
	}
}
