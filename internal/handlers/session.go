package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

const (
	sessionCookieName = "dojo_session"
	sessionTTL        = 14 * 24 * time.Hour
)

type ctxKey int

const userCtxKey ctxKey = iota

// CreateSession persists a session row for the user and sets the cookie.
func CreateSession(w http.ResponseWriter, user *models.User) error {
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := db.Conn().Create(&sess).Error; err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	return nil
}

// DestroySession deletes the backing row and clears the cookie.
func DestroySession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		db.Conn().Where("token = ?", c.Value).Delete(&models.Session{})
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// sessionUser resolves the cookie to a user, or nil for anonymous and
// expired sessions.
func sessionUser(r *http.Request) *models.User {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	var sess models.Session
	if err := db.Conn().Where("token = ?", c.Value).First(&sess).Error; err != nil {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		db.Conn().Delete(&sess)
		return nil
	}
	var user models.User
	if err := db.Conn().First(&user, sess.UserID).Error; err != nil {
		return nil
	}
	return &user
}

// UserFromContext returns the authenticated user placed by LoadUser, or nil.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userCtxKey).(*models.User)
	return u
}

// LoadUser is middleware that resolves the session cookie once per request
// and stashes the user (possibly nil) in the context.
func LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := sessionUser(r); u != nil {
			r = r.WithContext(context.WithValue(r.Context(), userCtxKey, u))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser is middleware: anonymous callers are redirected to the login
// page with the original URL preserved.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff is middleware guarding the admin console.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		if !u.IsStaff {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
