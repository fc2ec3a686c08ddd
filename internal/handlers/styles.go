package handlers

import (
	"html/template"
	"net/http"

	"gorm.io/gorm"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

func orderedRankTypes(g *gorm.DB) *gorm.DB { return g.Order("ordinal") }

// GET /styles
func StylesIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var styles []models.Style
		switch {
		case sc.All:
			db.Conn().Preload("RankTypes", orderedRankTypes).
				Order("title").Find(&styles)
		case sc.Artist != nil:
			db.Conn().
				Joins("JOIN martial_artist_styles mas ON mas.style_id = styles.id").
				Where("mas.martial_artist_id = ?", sc.Artist.ID).
				Preload("RankTypes", orderedRankTypes).
				Order("title").Find(&styles)
		}

		render(w, r, t, "pages/styles/index", map[string]any{
			"Title":  "Styles",
			"Styles": styles,
			"Scope":  sc,
		})
	}
}
