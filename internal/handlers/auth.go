package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/forms"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// GET /signup
func SignupForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/signup", map[string]any{
			"Title":  "Sign up",
			"Errors": forms.Errors{},
			"Form":   forms.SignupForm{},
		})
	}
}

// POST /signup
func SignupSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.SignupForm{
			Username:  strings.TrimSpace(r.FormValue("username")),
			Password1: r.FormValue("password1"),
			Password2: r.FormValue("password2"),
		}
		errs := forms.Validate(form)
		if !errs.Any() {
			hash, err := services.HashPassword(form.Password1)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			user := models.User{Username: form.Username, PasswordHash: hash}
			if err := db.Conn().Create(&user).Error; err != nil {
				if isUniqueViolation(err) {
					errs["username"] = "That username has already been taken. Please choose a new username."
				} else {
					http.Error(w, "db error", http.StatusInternalServerError)
					return
				}
			} else {
				if err := CreateSession(w, &user); err != nil {
					http.Error(w, "db error", http.StatusInternalServerError)
					return
				}
				http.Redirect(w, r, "/?ok=signed_up", http.StatusSeeOther)
				return
			}
		}
		render(w, r, t, "pages/signup", map[string]any{
			"Title":  "Sign up",
			"Errors": errs,
			"Form":   form,
		})
	}
}

// GET /login
func LoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/login", map[string]any{
			"Title":    "Log in",
			"Next":     r.URL.Query().Get("next"),
			"Username": "",
		})
	}
}

// POST /login
func LoginSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.LoginForm{
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: r.FormValue("password"),
		}
		next := r.FormValue("next")

		var user models.User
		err := db.Conn().Where("username = ?", form.Username).First(&user).Error
		// One generic message for a missing user and a wrong password, so
		// the form never reveals which field was wrong.
		if errors.Is(err, gorm.ErrRecordNotFound) ||
			(err == nil && !services.CheckPassword(user.PasswordHash, form.Password)) ||
			forms.Validate(form).Any() {
			render(w, r, t, "pages/login", map[string]any{
				"Title":    "Log in",
				"Next":     next,
				"Username": form.Username,
				"Flash":    &Flash{Kind: "error", Text: "Username and password did not match."},
			})
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		if err := CreateSession(w, &user); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if next == "" || !strings.HasPrefix(next, "/") {
			if user.IsSuperuser {
				next = "/admin"
			} else {
				next = "/dashboard"
			}
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

// POST /logout: GET is intentionally not routed so a crawler can't log
// anyone out; chi answers it with 405.
func Logout(w http.ResponseWriter, r *http.Request) {
	DestroySession(w, r)
	http.Redirect(w, r, "/?ok=logged_out", http.StatusSeeOther)
}

// isUniqueViolation matches sqlite's unique-constraint message shape.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
