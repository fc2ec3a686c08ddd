package handlers

import (
	"html/template"
	"net/http"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// GET /tuition
func TuitionIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var payments []models.TuitionPayment
		q := db.Conn().Preload("Payer").Preload("PaymentPlan").Order("date_paid desc")
		switch {
		case sc.All:
			q.Find(&payments)
		case sc.Artist != nil:
			q.Where("payer_id = ?", sc.Artist.ID).Find(&payments)
		}

		var totalCents int64
		for _, p := range payments {
			totalCents += p.PaidCents
		}

		render(w, r, t, "pages/tuition/index", map[string]any{
			"Title":    "Tuition Payments",
			"Payments": payments,
			"Total":    services.FormatCents(totalCents),
			"Scope":    sc,
		})
	}
}
