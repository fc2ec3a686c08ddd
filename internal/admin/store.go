package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// GET /admin/items
func ItemsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/items")
		p := readListParams(r)

		base := db.Conn().Model(&models.Item{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var items []models.Item
		if err := base.Order("name").
			Limit(p.Per).Offset(p.Offset).
			Find(&items).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(items))
		for _, it := range items {
			rows = append(rows, Row{ID: it.ID, Cells: []string{
				it.Name, it.Make, it.SKU,
				services.FormatCents(it.RetailCents),
				strconv.Itoa(it.QuantityOnHand),
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

// GET /admin/items/new
func ItemsNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/item_form", map[string]any{
			"Title": "Admin • New item",
			"Item":  &models.Item{},
		})
	}
}

// POST /admin/items
func ItemsCreate(w http.ResponseWriter, r *http.Request) {
	itemSave(w, r, nil)
}

// GET /admin/items/{id}/edit
func ItemsEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var it models.Item
		if err := db.Conn().First(&it, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		render(w, r, t, "pages/admin/item_form", map[string]any{
			"Title":     "Admin • " + it.Name,
			"Item":      &it,
			"Wholesale": services.FormatCents(it.WholesaleCents),
			"Retail":    services.FormatCents(it.RetailCents),
		})
	}
}

// POST /admin/items/{id}
func ItemsUpdate(w http.ResponseWriter, r *http.Request) {
	var it models.Item
	if err := db.Conn().First(&it, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	itemSave(w, r, &it)
}

func itemSave(w http.ResponseWriter, r *http.Request, existing *models.Item) {
	_ = r.ParseForm()
	name := strings.TrimSpace(r.FormValue("name"))
	retail, rerr := services.ParseCents(r.FormValue("retail"))
	if name == "" || rerr != nil {
		target := "/admin/items/new?error=missing"
		if existing != nil {
			target = fmt.Sprintf("/admin/items/%d/edit?error=missing", existing.ID)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	it := existing
	if it == nil {
		it = &models.Item{}
	}
	it.Name = name
	it.Make = strings.TrimSpace(r.FormValue("make"))
	it.SKU = strings.TrimSpace(r.FormValue("sku"))
	it.Size = strings.TrimSpace(r.FormValue("size"))
	it.Color = strings.TrimSpace(r.FormValue("color"))
	it.RetailCents = retail
	if cents, err := services.ParseCents(r.FormValue("wholesale")); err == nil {
		it.WholesaleCents = cents
	}
	it.QuantityOnHand = formInt(r.FormValue("quantity_on_hand"), it.QuantityOnHand)
	it.Notes = r.FormValue("notes")

	if err := db.Conn().Save(it).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/items/%d/edit?ok=saved", it.ID), http.StatusSeeOther)
}

// POST /admin/items/{id}/delete: line items referencing it cascade.
func ItemsDelete(w http.ResponseWriter, r *http.Request) {
	var it models.Item
	if err := db.Conn().First(&it, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&it).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/items?ok=deleted", http.StatusSeeOther)
}

// GET /admin/invoices
func InvoicesList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/invoices")
		p := readListParams(r)

		base := db.Conn().Model(&models.Invoice{})
		switch r.URL.Query().Get("filter") {
		case "open":
			base = base.Where("date_completed IS NULL")
		case "completed":
			base = base.Where("date_completed IS NOT NULL")
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var invoices []models.Invoice
		if err := base.Preload("Purchaser").
			Order("date_ordered desc").
			Limit(p.Per).Offset(p.Offset).
			Find(&invoices).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(invoices))
		for _, inv := range invoices {
			totalCents, _ := services.InvoiceTotalCents(db.Conn(), inv.ID)
			completed := ""
			if inv.DateCompleted != nil {
				completed = inv.DateCompleted.Format(dateFormat)
			}
			rows = append(rows, Row{ID: inv.ID, Cells: []string{
				strconv.Itoa(int(inv.ID)),
				inv.Purchaser.DisplayName(),
				inv.DateOrdered.Format(dateFormat),
				completed,
				services.FormatCents(totalCents),
			}})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		vm.Filters = []filterOption{
			{Label: "All", Value: ""},
			{Label: "Open", Value: "open"},
			{Label: "Completed", Value: "completed"},
		}
		renderList(w, r, t, vm)
	}
}

// GET /admin/invoices/new
func InvoicesNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var purchasers []models.MartialArtist
		db.Conn().Order("last_name, first_name").Find(&purchasers)
		render(w, r, t, "pages/admin/invoice_form", map[string]any{
			"Title":      "Admin • New invoice",
			"Invoice":    &models.Invoice{},
			"Purchasers": purchasers,
		})
	}
}

// POST /admin/invoices: date ordered is fixed at creation.
func InvoicesCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	purchaserID := formUint(r.FormValue("purchaser_id"))
	if purchaserID == nil {
		http.Redirect(w, r, "/admin/invoices/new?error=missing", http.StatusSeeOther)
		return
	}
	inv := models.Invoice{
		PurchaserID: *purchaserID,
		DateOrdered: time.Now(),
		Notes:       r.FormValue("notes"),
	}
	if err := db.Conn().Create(&inv).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?ok=created", inv.ID), http.StatusSeeOther)
}

// GET /admin/invoices/{id}/edit: line items are edited inline.
func InvoicesEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var inv models.Invoice
		if err := db.Conn().
			Preload("Purchaser").Preload("LineItems").Preload("LineItems.Item").
			First(&inv, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		totalCents, err := services.InvoiceTotalCents(db.Conn(), inv.ID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var items []models.Item
		db.Conn().Order("name").Find(&items)

		lines := make([]map[string]any, 0, len(inv.LineItems))
		for _, li := range inv.LineItems {
			lines = append(lines, map[string]any{
				"Line":     li,
				"Unit":     services.FormatCents(li.Item.RetailCents),
				"Extended": services.FormatCents(li.Item.RetailCents * int64(li.Quantity)),
			})
		}

		render(w, r, t, "pages/admin/invoice_form", map[string]any{
			"Title":   fmt.Sprintf("Admin • Invoice #%d", inv.ID),
			"Invoice": &inv,
			"Lines":   lines,
			"Items":   items,
			"Total":   services.FormatCents(totalCents),
		})
	}
}

// POST /admin/invoices/{id}: completion date and notes.
func InvoicesUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var inv models.Invoice
	if err := db.Conn().First(&inv, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	inv.DateCompleted = parseDate(r.FormValue("date_completed"))
	inv.Notes = r.FormValue("notes")
	if err := db.Conn().Save(&inv).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?ok=saved", inv.ID), http.StatusSeeOther)
}

// POST /admin/invoices/{id}/delete: line items cascade.
func InvoicesDelete(w http.ResponseWriter, r *http.Request) {
	var inv models.Invoice
	if err := db.Conn().First(&inv, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&inv).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/invoices?ok=deleted", http.StatusSeeOther)
}

// POST /admin/invoices/{id}/lineitems: inline line item creation.
func LineItemCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	invoiceID := urlID(chi.URLParam(r, "id"))
	var inv models.Invoice
	if err := db.Conn().First(&inv, invoiceID).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	itemID := formUint(r.FormValue("item_id"))
	if itemID == nil {
		http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?error=missing", invoiceID), http.StatusSeeOther)
		return
	}
	qty := formInt(r.FormValue("quantity"), 1)
	if qty < 1 {
		qty = 1
	}
	li := models.LineItem{InvoiceID: invoiceID, ItemID: *itemID, Quantity: qty}
	if err := db.Conn().Create(&li).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?ok=saved", invoiceID), http.StatusSeeOther)
}

// POST /admin/lineitems/{id}: quantity change.
func LineItemUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var li models.LineItem
	if err := db.Conn().First(&li, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if qty := formInt(r.FormValue("quantity"), li.Quantity); qty >= 1 {
		li.Quantity = qty
	}
	if err := db.Conn().Save(&li).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?ok=saved", li.InvoiceID), http.StatusSeeOther)
}

// POST /admin/lineitems/{id}/delete
func LineItemDelete(w http.ResponseWriter, r *http.Request) {
	var li models.LineItem
	if err := db.Conn().First(&li, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&li).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/invoices/%d/edit?ok=deleted", li.InvoiceID), http.StatusSeeOther)
}
