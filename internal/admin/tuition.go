package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// GET /admin/plans
func PlansList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/plans")
		p := readListParams(r)

		base := db.Conn().Model(&models.PaymentPlan{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var plans []models.PaymentPlan
		if err := base.Order("title").
			Limit(p.Per).Offset(p.Offset).
			Find(&plans).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(plans))
		for _, pl := range plans {
			rows = append(rows, Row{ID: pl.ID, Cells: []string{
				pl.Title, services.FormatCents(pl.AmountCents), pl.FrequencyLabel(),
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

// GET /admin/plans/new
func PlansNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/plan_form", map[string]any{
			"Title":       "Admin • New payment plan",
			"Plan":        &models.PaymentPlan{Frequency: models.FreqMonthly},
			"Frequencies": models.FrequencyLabels,
		})
	}
}

// POST /admin/plans
func PlansCreate(w http.ResponseWriter, r *http.Request) {
	planSave(w, r, nil)
}

// GET /admin/plans/{id}/edit: payments on this plan shown inline.
func PlansEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl models.PaymentPlan
		if err := db.Conn().First(&pl, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		var payments []models.TuitionPayment
		db.Conn().Where("payment_plan_id = ?", pl.ID).
			Preload("Payer").Order("date_paid desc").Find(&payments)
		prows := make([]map[string]any, 0, len(payments))
		for _, p := range payments {
			prows = append(prows, map[string]any{
				"Payment": p,
				"Paid":    services.FormatCents(p.PaidCents),
			})
		}
		render(w, r, t, "pages/admin/plan_form", map[string]any{
			"Title":       "Admin • " + pl.Title,
			"Plan":        &pl,
			"Amount":      services.FormatCents(pl.AmountCents),
			"Frequencies": models.FrequencyLabels,
			"Payments":    prows,
		})
	}
}

// POST /admin/plans/{id}
func PlansUpdate(w http.ResponseWriter, r *http.Request) {
	var pl models.PaymentPlan
	if err := db.Conn().First(&pl, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	planSave(w, r, &pl)
}

func planSave(w http.ResponseWriter, r *http.Request, existing *models.PaymentPlan) {
	_ = r.ParseForm()
	title := r.FormValue("title")
	amount, err := services.ParseCents(r.FormValue("amount"))
	if title == "" || err != nil {
		target := "/admin/plans/new?error=missing"
		if existing != nil {
			target = fmt.Sprintf("/admin/plans/%d/edit?error=missing", existing.ID)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	pl := existing
	if pl == nil {
		pl = &models.PaymentPlan{}
	}
	pl.Title = title
	pl.AmountCents = amount
	pl.Frequency = formInt(r.FormValue("frequency"), models.FreqMonthly)
	pl.Notes = r.FormValue("notes")

	if err := db.Conn().Save(pl).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/plans/%d/edit?ok=saved", pl.ID), http.StatusSeeOther)
}

// POST /admin/plans/{id}/delete: payments and artists on the plan keep
// their rows with the plan reference nulled.
func PlansDelete(w http.ResponseWriter, r *http.Request) {
	var pl models.PaymentPlan
	if err := db.Conn().First(&pl, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&pl).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/plans?ok=deleted", http.StatusSeeOther)
}

// GET /admin/payments
func PaymentsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/payments")
		p := readListParams(r)

		base := db.Conn().Model(&models.TuitionPayment{})
		if payerID := formUint(r.URL.Query().Get("filter")); payerID != nil {
			base = base.Where("payer_id = ?", *payerID)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var payments []models.TuitionPayment
		if err := base.Preload("Payer").Preload("PaymentPlan").
			Order("date_paid desc").
			Limit(p.Per).Offset(p.Offset).
			Find(&payments).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(payments))
		for _, pay := range payments {
			plan := ""
			if pay.PaymentPlan != nil {
				plan = pay.PaymentPlan.Title
			}
			rows = append(rows, Row{ID: pay.ID, Cells: []string{
				pay.DatePaid.Format(dateFormat),
				pay.Payer.DisplayName(),
				services.FormatCents(pay.PaidCents),
				plan,
			}, Href: fmt.Sprintf("/admin/artists/%d/edit", pay.PayerID)})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		var payers []models.MartialArtist
		db.Conn().Order("last_name, first_name").Find(&payers)
		vm.Filters = []filterOption{{Label: "All payers", Value: ""}}
		for _, ma := range payers {
			vm.Filters = append(vm.Filters, filterOption{Label: ma.DisplayName(), Value: strconv.Itoa(int(ma.ID))})
		}
		renderList(w, r, t, vm)
	}
}

// POST /admin/payments/{id}: inline edit from the artist page.
func PaymentUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var pay models.TuitionPayment
	if err := db.Conn().First(&pay, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	if d, ok := parseDateReq(r.FormValue("date_paid")); ok {
		pay.DatePaid = d
	}
	if cents, err := services.ParseCents(r.FormValue("paid")); err == nil {
		pay.PaidCents = cents
	}
	pay.PaymentPlanID = formUint(r.FormValue("payment_plan_id"))
	pay.Notes = r.FormValue("notes")

	if err := db.Conn().Save(&pay).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=saved", pay.PayerID), http.StatusSeeOther)
}

// POST /admin/payments/{id}/delete
func PaymentDelete(w http.ResponseWriter, r *http.Request) {
	var pay models.TuitionPayment
	if err := db.Conn().First(&pay, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&pay).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=deleted", pay.PayerID), http.StatusSeeOther)
}
