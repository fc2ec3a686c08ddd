package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/forms"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

// Public blog pages show three posts per page, newest publish date first.
const blogPageSize = 3

// GET /blog?page=N
func BlogIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		offset := (page - 1) * blogPageSize

		base := db.Conn().Model(&models.Post{}).Where("status = ?", models.StatusPublished)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		var posts []models.Post
		if err := base.Preload("Author").Order("publish desc").
			Limit(blogPageSize).Offset(offset).
			Find(&posts).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		render(w, r, t, "pages/blog/list", map[string]any{
			"Title":    "Blog",
			"Posts":    posts,
			"Page":     page,
			"HasPrev":  page > 1,
			"HasNext":  int64(offset+blogPageSize) < total,
			"PrevPage": page - 1,
			"NextPage": page + 1,
		})
	}
}

// publishedPost resolves a slug to a published post; drafts 404.
func publishedPost(slug string) (*models.Post, bool) {
	var post models.Post
	err := db.Conn().Preload("Author").
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		First(&post).Error
	if err != nil {
		return nil, false
	}
	return &post, true
}

// GET /blog/{slug}
func BlogShow(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := publishedPost(chi.URLParam(r, "slug"))
		if !ok {
			http.NotFound(w, r)
			return
		}

		var comments []models.Comment
		db.Conn().Where("post_id = ? AND active = ?", post.ID, true).
			Order("created_at desc").Find(&comments)

		render(w, r, t, "pages/blog/post", map[string]any{
			"Title":    post.Title,
			"Post":     post,
			"BodyHTML": services.RenderMarkdown(post.Body),
			"Comments": comments,
			"Errors":   forms.Errors{},
			"Form":     forms.CommentForm{},
		})
	}
}

// POST /blog/{slug}/comments: created inactive, pending moderation.
func BlogComment(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, ok := publishedPost(chi.URLParam(r, "slug"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.CommentForm{
			Name:  strings.TrimSpace(r.FormValue("name")),
			Email: strings.TrimSpace(r.FormValue("email")),
			Body:  strings.TrimSpace(r.FormValue("body")),
		}
		if errs := forms.Validate(form); errs.Any() {
			var comments []models.Comment
			db.Conn().Where("post_id = ? AND active = ?", post.ID, true).
				Order("created_at desc").Find(&comments)
			render(w, r, t, "pages/blog/post", map[string]any{
				"Title":    post.Title,
				"Post":     post,
				"BodyHTML": services.RenderMarkdown(post.Body),
				"Comments": comments,
				"Errors":   errs,
				"Form":     form,
			})
			return
		}

		comment := models.Comment{
			PostID: post.ID,
			Name:   form.Name,
			Email:  form.Email,
			Body:   form.Body,
			Active: false,
		}
		if err := db.Conn().Create(&comment).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/blog/"+post.Slug+"?ok=comment_pending", http.StatusSeeOther)
	}
}
