package admin

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// GET /admin/users
func UsersList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/users")
		p := readListParams(r)

		base := db.Conn().Model(&models.User{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var users []models.User
		if err := base.Order("username").
			Limit(p.Per).Offset(p.Offset).
			Find(&users).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(users))
		for _, u := range users {
			rows = append(rows, Row{ID: u.ID, Cells: []string{
				u.Username,
				activeLabel(u.IsStaff),
				activeLabel(u.IsSuperuser),
				u.CreatedAt.Format(dateFormat),
			}})
		}
		renderList(w, r, t, makeListVM(res, p, total, rows))
	}
}

// GET /admin/users/{id}/edit
func UsersEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.Conn().First(&u, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		var linked models.MartialArtist
		data := map[string]any{
			"Title":   "Admin • " + u.Username,
			"Account": &u,
		}
		if err := db.Conn().Where("user_id = ?", u.ID).First(&linked).Error; err == nil {
			data["Linked"] = &linked
		}
		render(w, r, t, "pages/admin/user_form", data)
	}
}

// POST /admin/users/{id}: role flag toggles.
func UsersUpdate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var u models.User
	if err := db.Conn().First(&u, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	u.IsStaff = r.FormValue("is_staff") == "on"
	u.IsSuperuser = r.FormValue("is_superuser") == "on"
	if u.IsSuperuser {
		u.IsStaff = true // superusers always have console access
	}
	if err := db.Conn().Save(&u).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/users/%d/edit?ok=saved", u.ID), http.StatusSeeOther)
}

// POST /admin/users/{id}/delete: sessions and posts cascade, any linked
// artist keeps its record with the login reference nulled.
func UsersDelete(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := db.Conn().First(&u, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&u).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/users?ok=deleted", http.StatusSeeOther)
}
