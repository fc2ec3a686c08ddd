package admin

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/forms"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// GET /admin/artists
func ArtistsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/artists")
		p := readListParams(r)

		base := db.Conn().Model(&models.MartialArtist{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}
		// ?filter=active / ?filter=inactive mirrors the active flag filter.
		switch r.URL.Query().Get("filter") {
		case "active":
			base = base.Where("active = ?", true)
		case "inactive":
			base = base.Where("active = ?", false)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var artists []models.MartialArtist
		if err := base.Preload("Sponsor").
			Order("last_name, first_name").
			Limit(p.Per).Offset(p.Offset).
			Find(&artists).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(artists))
		for _, ma := range artists {
			sponsor := ""
			if ma.Sponsor != nil {
				sponsor = ma.Sponsor.DisplayName()
			}
			rows = append(rows, Row{ID: ma.ID, Cells: []string{
				ma.LastName, ma.FirstName,
				ma.EnrollmentDate.Format(dateFormat),
				sponsor,
				activeLabel(ma.Active),
			}})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		vm.Filters = []filterOption{
			{Label: "All", Value: ""},
			{Label: "Active", Value: "active"},
			{Label: "Inactive", Value: "inactive"},
		}
		renderList(w, r, t, vm)
	}
}

func activeLabel(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// artistFormData gathers everything the edit page needs, including the
// inline rank and tuition payment rows.
func artistFormData(ma *models.MartialArtist) map[string]any {
	var sponsors []models.Sponsor
	db.Conn().Order("last_name, first_name").Find(&sponsors)
	var plans []models.PaymentPlan
	db.Conn().Order("title").Find(&plans)
	var styles []models.Style
	db.Conn().Order("title").Find(&styles)

	data := map[string]any{
		"Artist":      ma,
		"Sponsors":    sponsors,
		"Plans":       plans,
		"Styles":      styles,
		"Frequencies": models.FrequencyLabels,
	}

	if ma != nil && ma.ID != 0 {
		styleIDs := map[uint]bool{}
		for _, s := range ma.Styles {
			styleIDs[s.ID] = true
		}
		data["StyleIDs"] = styleIDs

		var ranks []models.Rank
		db.Conn().Where("martial_artist_id = ?", ma.ID).
			Preload("RankType").Preload("RankType.Style").
			Order("award_date desc").Find(&ranks)
		data["Ranks"] = ranks

		var rankTypes []models.RankType
		db.Conn().Preload("Style").Order("style_id, ordinal").Find(&rankTypes)
		data["RankTypes"] = rankTypes

		var payments []models.TuitionPayment
		db.Conn().Where("payer_id = ?", ma.ID).
			Preload("PaymentPlan").
			Order("date_paid desc").Find(&payments)
		rows := make([]map[string]any, 0, len(payments))
		for _, p := range payments {
			rows = append(rows, map[string]any{
				"Payment": p,
				"Paid":    services.FormatCents(p.PaidCents),
			})
		}
		data["Payments"] = rows

		if ma.UserID != nil {
			var linked models.User
			if err := db.Conn().First(&linked, *ma.UserID).Error; err == nil {
				data["LinkedUser"] = linked
			}
		}
	}
	return data
}

// GET /admin/artists/new
func ArtistsNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := artistFormData(&models.MartialArtist{Active: true})
		data["Title"] = "Admin • New martial artist"
		data["Errors"] = forms.Errors{}
		render(w, r, t, "pages/admin/artist_form", data)
	}
}

// POST /admin/artists
func ArtistsCreate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artistSave(t, nil)(w, r)
	}
}

// GET /admin/artists/{id}/edit
func ArtistsEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ma models.MartialArtist
		if err := db.Conn().Preload("Styles").First(&ma, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		data := artistFormData(&ma)
		data["Title"] = "Admin • " + ma.DisplayName()
		data["Errors"] = forms.Errors{}
		render(w, r, t, "pages/admin/artist_form", data)
	}
}

// POST /admin/artists/{id}
func ArtistsUpdate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ma models.MartialArtist
		if err := db.Conn().Preload("Styles").First(&ma, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		artistSave(t, &ma)(w, r)
	}
}

// artistSave binds, validates, and persists a create or update.
func artistSave(t *template.Template, existing *models.MartialArtist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.ArtistForm{
			FirstName:      strings.TrimSpace(r.FormValue("first_name")),
			LastName:       strings.TrimSpace(r.FormValue("last_name")),
			Email:          strings.TrimSpace(r.FormValue("email")),
			EnrollmentDate: strings.TrimSpace(r.FormValue("enrollment_date")),
		}

		ma := existing
		if ma == nil {
			ma = &models.MartialArtist{}
		}
		ma.FirstName = form.FirstName
		ma.MiddleName = strings.TrimSpace(r.FormValue("middle_name"))
		ma.LastName = form.LastName
		ma.Email = form.Email
		ma.Telephone = strings.TrimSpace(r.FormValue("telephone"))
		ma.Notes = r.FormValue("notes")
		ma.IsFemale = r.FormValue("is_female") == "on"
		ma.Active = r.FormValue("active") == "on"
		ma.Birthday = parseDate(r.FormValue("birthday"))
		ma.SponsorID = formUint(r.FormValue("sponsor_id"))
		ma.PaymentPlanID = formUint(r.FormValue("payment_plan_id"))
		if d, ok := parseDateReq(form.EnrollmentDate); ok {
			ma.EnrollmentDate = d
		}

		if errs := forms.Validate(form); errs.Any() {
			data := artistFormData(ma)
			data["Title"] = "Admin • Martial artist"
			data["Errors"] = errs
			render(w, r, t, "pages/admin/artist_form", data)
			return
		}

		if err := db.Conn().Save(ma).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		// Replace the style membership with the submitted selection.
		var styles []models.Style
		if ids := formUints(r.Form["style_ids"]); len(ids) > 0 {
			db.Conn().Where("id IN ?", ids).Find(&styles)
		}
		if err := db.Conn().Model(ma).Association("Styles").Replace(styles); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=saved", ma.ID), http.StatusSeeOther)
	}
}

// POST /admin/artists/{id}/delete: cascades ranks, invoices, and tuition
// payments at the store level.
func ArtistsDelete(w http.ResponseWriter, r *http.Request) {
	id := urlID(chi.URLParam(r, "id"))
	var ma models.MartialArtist
	if err := db.Conn().First(&ma, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&ma).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/artists?ok=deleted", http.StatusSeeOther)
}

// POST /admin/artists/{id}/ranks: inline rank creation.
func ArtistRankCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	artistID := urlID(chi.URLParam(r, "id"))
	var ma models.MartialArtist
	if err := db.Conn().First(&ma, artistID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	rtID := formUint(r.FormValue("rank_type_id"))
	award, ok := parseDateReq(r.FormValue("award_date"))
	if rtID == nil || !ok {
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=missing", artistID), http.StatusSeeOther)
		return
	}

	rank := models.Rank{
		MartialArtistID: artistID,
		RankTypeID:      *rtID,
		AwardDate:       award,
		TestDate:        parseDate(r.FormValue("test_date")),
		Tested:          r.FormValue("tested") == "on",
		Notes:           r.FormValue("notes"),
	}
	if err := db.Conn().Create(&rank).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=saved", artistID), http.StatusSeeOther)
}

// POST /admin/ranks/{id}/delete
func RankDelete(w http.ResponseWriter, r *http.Request) {
	var rank models.Rank
	if err := db.Conn().First(&rank, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&rank).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=deleted", rank.MartialArtistID), http.StatusSeeOther)
}

// POST /admin/artists/{id}/payments: inline tuition payment creation.
func ArtistPaymentCreate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	artistID := urlID(chi.URLParam(r, "id"))
	var ma models.MartialArtist
	if err := db.Conn().First(&ma, artistID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	paid, perr := services.ParseCents(r.FormValue("paid"))
	date, ok := parseDateReq(r.FormValue("date_paid"))
	if perr != nil || !ok {
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=missing", artistID), http.StatusSeeOther)
		return
	}

	payment := models.TuitionPayment{
		PayerID:       artistID,
		PaymentPlanID: formUint(r.FormValue("payment_plan_id")),
		DatePaid:      date,
		PaidCents:     paid,
		Notes:         r.FormValue("notes"),
	}
	if err := db.Conn().Create(&payment).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=saved", artistID), http.StatusSeeOther)
}

// POST /admin/artists/{id}/image: multipart profile image upload. The
// file lands under mediaDir/people/images and the record keeps the
// relative path.
func ArtistImageUpload(mediaDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artistID := urlID(chi.URLParam(r, "id"))
		var ma models.MartialArtist
		if err := db.Conn().First(&ma, artistID).Error; err != nil {
			http.NotFound(w, r)
			return
		}

		if err := r.ParseMultipartForm(8 << 20); err != nil {
			http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=bad_upload", artistID), http.StatusSeeOther)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=bad_upload", artistID), http.StatusSeeOther)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".gif":
		default:
			http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=bad_upload", artistID), http.StatusSeeOther)
			return
		}

		rel := filepath.Join("people", "images", uuid.NewString()+ext)
		abs := filepath.Join(mediaDir, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		dst, err := os.Create(abs)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, file); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		ma.ImagePath = filepath.ToSlash(rel)
		if err := db.Conn().Save(&ma).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=image_uploaded", artistID), http.StatusSeeOther)
	}
}

// POST /admin/artists/{id}/link-user: attach a login by username so the
// account sees its own records, mirroring the old link command.
func ArtistLinkUser(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	artistID := urlID(chi.URLParam(r, "id"))
	var ma models.MartialArtist
	if err := db.Conn().First(&ma, artistID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		// Unlink when the field is cleared.
		ma.UserID = nil
		if err := db.Conn().Save(&ma).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=unlinked", artistID), http.StatusSeeOther)
		return
	}

	var user models.User
	if err := db.Conn().Where("username = ?", username).First(&user).Error; err != nil {
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=user_not_found", artistID), http.StatusSeeOther)
		return
	}

	var other models.MartialArtist
	err := db.Conn().Where("user_id = ? AND id <> ?", user.ID, artistID).First(&other).Error
	if err == nil {
		http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?error=user_linked", artistID), http.StatusSeeOther)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	ma.UserID = &user.ID
	if err := db.Conn().Save(&ma).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/artists/%d/edit?ok=linked", artistID), http.StatusSeeOther)
}
