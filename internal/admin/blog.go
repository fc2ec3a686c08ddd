package admin

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/forms"
	"github.com/dojoworks/dojotrack/internal/handlers"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

func statusLabel(status int) string {
	if status == models.StatusPublished {
		return "published"
	}
	return "draft"
}

// GET /admin/posts
func PostsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/posts")
		p := readListParams(r)

		base := db.Conn().Model(&models.Post{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}
		switch r.URL.Query().Get("filter") {
		case "draft":
			base = base.Where("status = ?", models.StatusDraft)
		case "published":
			base = base.Where("status = ?", models.StatusPublished)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var posts []models.Post
		if err := base.Order("publish desc").
			Limit(p.Per).Offset(p.Offset).
			Find(&posts).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rows := make([]Row, 0, len(posts))
		for _, post := range posts {
			rows = append(rows, Row{ID: post.ID, Cells: []string{
				post.Title,
				statusLabel(post.Status),
				post.Publish.Format(dateFormat),
				post.CreatedAt.Format(dateFormat),
			}})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		vm.Filters = []filterOption{
			{Label: "All", Value: ""},
			{Label: "Draft", Value: "draft"},
			{Label: "Published", Value: "published"},
		}
		renderList(w, r, t, vm)
	}
}

// GET /admin/posts/new
func PostsNewForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/post_form", map[string]any{
			"Title":  "Admin • New post",
			"Post":   &models.Post{Publish: time.Now()},
			"Errors": forms.Errors{},
		})
	}
}

// POST /admin/posts
func PostsCreate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postSave(t, nil)(w, r)
	}
}

// GET /admin/posts/{id}/edit: comments moderated inline.
func PostsEditForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var post models.Post
		if err := db.Conn().First(&post, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		var comments []models.Comment
		db.Conn().Where("post_id = ?", post.ID).Order("created_at desc").Find(&comments)
		render(w, r, t, "pages/admin/post_form", map[string]any{
			"Title":    "Admin • " + post.Title,
			"Post":     &post,
			"Comments": comments,
			"Errors":   forms.Errors{},
		})
	}
}

// POST /admin/posts/{id}
func PostsUpdate(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var post models.Post
		if err := db.Conn().First(&post, urlID(chi.URLParam(r, "id"))).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		postSave(t, &post)(w, r)
	}
}

func postSave(t *template.Template, existing *models.Post) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := forms.PostForm{
			Title: strings.TrimSpace(r.FormValue("title")),
			Body:  r.FormValue("body"),
		}

		post := existing
		if post == nil {
			user := handlers.UserFromContext(r.Context())
			post = &models.Post{AuthorID: user.ID, Publish: time.Now()}
		}
		post.Title = form.Title
		post.Body = form.Body
		if slug := strings.TrimSpace(r.FormValue("slug")); slug != "" {
			post.Slug = services.Slugify(slug)
		} else {
			post.Slug = services.Slugify(form.Title)
		}
		if d, ok := parseDateReq(r.FormValue("publish")); ok {
			post.Publish = d
		}
		if r.FormValue("status") == "published" {
			post.Status = models.StatusPublished
		} else {
			post.Status = models.StatusDraft
		}

		errs := forms.Validate(form)
		if !errs.Any() {
			if err := db.Conn().Save(post).Error; err != nil {
				if isDuplicate(err) {
					errs["title"] = "A post with this title or slug already exists."
				} else {
					http.Error(w, "db error", http.StatusInternalServerError)
					return
				}
			} else {
				http.Redirect(w, r, fmt.Sprintf("/admin/posts/%d/edit?ok=saved", post.ID), http.StatusSeeOther)
				return
			}
		}
		render(w, r, t, "pages/admin/post_form", map[string]any{
			"Title":  "Admin • Post",
			"Post":   post,
			"Errors": errs,
		})
	}
}

// POST /admin/posts/{id}/delete: comments cascade.
func PostsDelete(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := db.Conn().First(&post, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&post).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/posts?ok=deleted", http.StatusSeeOther)
}

// GET /admin/comments
func CommentsList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resourceFor("/admin/comments")
		p := readListParams(r)

		base := db.Conn().Model(&models.Comment{})
		if where, args := searchWhere(res.Search, p.Q); where != "" {
			base = base.Where(where, args...)
		}
		switch r.URL.Query().Get("filter") {
		case "pending":
			base = base.Where("active = ?", false)
		case "approved":
			base = base.Where("active = ?", true)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		var comments []models.Comment
		if err := base.Order("created_at desc").
			Limit(p.Per).Offset(p.Offset).
			Find(&comments).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		// Post titles for display, one query.
		postIDs := make([]uint, 0, len(comments))
		for _, c := range comments {
			postIDs = append(postIDs, c.PostID)
		}
		titles := map[uint]string{}
		if len(postIDs) > 0 {
			var posts []models.Post
			db.Conn().Where("id IN ?", postIDs).Find(&posts)
			for _, post := range posts {
				titles[post.ID] = post.Title
			}
		}

		rows := make([]Row, 0, len(comments))
		for _, c := range comments {
			body := c.Body
			if rs := []rune(body); len(rs) > 60 {
				body = string(rs[:60]) + "…"
			}
			rows = append(rows, Row{ID: c.ID, Cells: []string{
				c.Name, body, titles[c.PostID],
				c.CreatedAt.Format(dateFormat),
				activeLabel(c.Active),
			}, Href: fmt.Sprintf("/admin/posts/%d/edit", c.PostID)})
		}

		vm := makeListVM(res, p, total, rows)
		vm.Filter = r.URL.Query().Get("filter")
		vm.Filters = []filterOption{
			{Label: "All", Value: ""},
			{Label: "Pending", Value: "pending"},
			{Label: "Approved", Value: "approved"},
		}
		vm.Bulk = "/admin/comments/approve"
		renderList(w, r, t, vm)
	}
}

// POST /admin/comments/approve: bulk action over the checked rows.
func CommentsApprove(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	ids := formUints(r.Form["selected"])
	if len(ids) > 0 {
		if err := db.Conn().Model(&models.Comment{}).
			Where("id IN ?", ids).
			Update("active", true).Error; err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/admin/comments?ok=comments_approved", http.StatusSeeOther)
}

// POST /admin/comments/{id}/delete
func CommentsDelete(w http.ResponseWriter, r *http.Request) {
	var c models.Comment
	if err := db.Conn().First(&c, urlID(chi.URLParam(r, "id"))).Error; err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.Conn().Delete(&c).Error; err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/comments?ok=deleted", http.StatusSeeOther)
}

// isDuplicate matches sqlite's unique-constraint error shape.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
