package handlers

import (
	"html/template"
	"net/http"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /ranks
func RanksIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var ranks []models.Rank
		q := db.Conn().
			Preload("MartialArtist").Preload("RankType").Preload("RankType.Style").
			Order("award_date desc")
		switch {
		case sc.All:
			q.Find(&ranks)
		case sc.Artist != nil:
			q.Where("martial_artist_id = ?", sc.Artist.ID).Find(&ranks)
		}

		render(w, r, t, "pages/ranks/index", map[string]any{
			"Title": "Ranks",
			"Ranks": ranks,
			"Scope": sc,
		})
	}
}
