package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

type invoiceRow struct {
	Invoice models.Invoice
	Total   string
}

// GET /invoices
func InvoicesIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))

		var invoices []models.Invoice
		q := db.Conn().Preload("Purchaser").Order("date_ordered desc")
		switch {
		case sc.All:
			q.Find(&invoices)
		case sc.Artist != nil:
			q.Where("purchaser_id = ?", sc.Artist.ID).Find(&invoices)
		}

		rows := make([]invoiceRow, 0, len(invoices))
		for _, inv := range invoices {
			total, _ := services.InvoiceTotalCents(db.Conn(), inv.ID)
			rows = append(rows, invoiceRow{Invoice: inv, Total: services.FormatCents(total)})
		}

		render(w, r, t, "pages/invoices/index", map[string]any{
			"Title": "Invoices",
			"Rows":  rows,
			"Scope": sc,
		})
	}
}

// GET /invoices/{id}
func InvoicesShow(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := ScopeFor(UserFromContext(r.Context()))
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))

		var inv models.Invoice
		if err := db.Conn().
			Preload("Purchaser").Preload("LineItems").Preload("LineItems.Item").
			First(&inv, id).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		if !sc.All && (sc.Artist == nil || sc.Artist.ID != inv.PurchaserID) {
			http.NotFound(w, r)
			return
		}

		total, err := services.InvoiceTotalCents(db.Conn(), inv.ID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		render(w, r, t, "pages/invoices/show", map[string]any{
			"Title":   "Invoice #" + strconv.Itoa(int(inv.ID)),
			"Invoice": inv,
			"Total":   services.FormatCents(total),
			"Scope":   sc,
		})
	}
}
