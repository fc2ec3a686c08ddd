package web

import (
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dojoworks/dojotrack/internal/admin"
	"github.com/dojoworks/dojotrack/internal/handlers"
	"github.com/dojoworks/dojotrack/internal/services"
)

// Router wires every page. templatesDir is the root of the template tree;
// mediaDir is where uploaded images are stored and served from.
func Router(templatesDir, mediaDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handlers.LoadUser)

	tmpl := mustParseTemplates(templatesDir)

	// Public pages
	r.Get("/", handlers.Home(tmpl))
	r.Get("/about", handlers.About(tmpl))
	r.Get("/healthz", handlers.Health)

	// Blog: published posts only, comments created pending moderation
	r.Get("/blog", handlers.BlogIndex(tmpl))
	r.Get("/blog/{slug}", handlers.BlogShow(tmpl))
	r.Post("/blog/{slug}/comments", handlers.BlogComment(tmpl))

	// Auth. Logout is POST-only; chi answers GET /logout with 405.
	r.Get("/signup", handlers.SignupForm(tmpl))
	r.Post("/signup", handlers.SignupSubmit(tmpl))
	r.Get("/login", handlers.LoginForm(tmpl))
	r.Post("/login", handlers.LoginSubmit(tmpl))
	r.Post("/logout", handlers.Logout)

	// Uploaded profile images
	r.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(mediaDir))))

	// Member pages, scoped by the caller's linked record
	r.Group(func(pr chi.Router) {
		pr.Use(handlers.RequireUser)
		pr.Get("/dashboard", handlers.Dashboard(tmpl))
		pr.Get("/people", handlers.PeopleIndex(tmpl))
		pr.Get("/people/{id}", handlers.PeopleShow(tmpl))
		pr.Get("/styles", handlers.StylesIndex(tmpl))
		pr.Get("/ranks", handlers.RanksIndex(tmpl))
		pr.Get("/classes", handlers.ClassesIndex(tmpl))
		pr.Get("/classes/{id}", handlers.ClassesShow(tmpl))
		pr.Get("/tuition", handlers.TuitionIndex(tmpl))
		pr.Get("/invoices", handlers.InvoicesIndex(tmpl))
		pr.Get("/invoices/{id}", handlers.InvoicesShow(tmpl))
	})

	// Administrative console
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(handlers.RequireStaff)

		ar.Get("/", admin.Index(tmpl))

		ar.Get("/artists", admin.ArtistsList(tmpl))
		ar.Get("/artists/new", admin.ArtistsNewForm(tmpl))
		ar.Post("/artists", admin.ArtistsCreate(tmpl))
		ar.Get("/artists/{id}/edit", admin.ArtistsEditForm(tmpl))
		ar.Post("/artists/{id}", admin.ArtistsUpdate(tmpl))
		ar.Post("/artists/{id}/delete", admin.ArtistsDelete)
		ar.Post("/artists/{id}/ranks", admin.ArtistRankCreate)
		ar.Post("/artists/{id}/payments", admin.ArtistPaymentCreate)
		ar.Post("/artists/{id}/image", admin.ArtistImageUpload(mediaDir))
		ar.Post("/artists/{id}/link-user", admin.ArtistLinkUser)
		ar.Post("/ranks/{id}/delete", admin.RankDelete)

		ar.Get("/sponsors", admin.SponsorsList(tmpl))
		ar.Get("/sponsors/new", admin.SponsorsNewForm(tmpl))
		ar.Post("/sponsors", admin.SponsorsCreate(tmpl))
		ar.Get("/sponsors/{id}/edit", admin.SponsorsEditForm(tmpl))
		ar.Post("/sponsors/{id}", admin.SponsorsUpdate(tmpl))
		ar.Post("/sponsors/{id}/delete", admin.SponsorsDelete)

		ar.Get("/styles", admin.StylesList(tmpl))
		ar.Get("/styles/new", admin.StylesNewForm(tmpl))
		ar.Post("/styles", admin.StylesCreate)
		ar.Get("/styles/{id}/edit", admin.StylesEditForm(tmpl))
		ar.Post("/styles/{id}", admin.StylesUpdate)
		ar.Post("/styles/{id}/delete", admin.StylesDelete)
		ar.Post("/styles/{id}/ranktypes", admin.StyleRankTypeCreate)
		ar.Get("/ranktypes", admin.RankTypesList(tmpl))
		ar.Post("/ranktypes/{id}", admin.RankTypeUpdate)
		ar.Post("/ranktypes/{id}/delete", admin.RankTypeDelete)

		ar.Get("/classes", admin.ClassesList(tmpl))
		ar.Get("/classes/new", admin.ClassesNewForm(tmpl))
		ar.Post("/classes", admin.ClassesCreate)
		ar.Get("/classes/{id}/edit", admin.ClassesEditForm(tmpl))
		ar.Post("/classes/{id}", admin.ClassesUpdate)
		ar.Post("/classes/{id}/delete", admin.ClassesDelete)

		ar.Get("/plans", admin.PlansList(tmpl))
		ar.Get("/plans/new", admin.PlansNewForm(tmpl))
		ar.Post("/plans", admin.PlansCreate)
		ar.Get("/plans/{id}/edit", admin.PlansEditForm(tmpl))
		ar.Post("/plans/{id}", admin.PlansUpdate)
		ar.Post("/plans/{id}/delete", admin.PlansDelete)
		ar.Get("/payments", admin.PaymentsList(tmpl))
		ar.Post("/payments/{id}", admin.PaymentUpdate)
		ar.Post("/payments/{id}/delete", admin.PaymentDelete)

		ar.Get("/items", admin.ItemsList(tmpl))
		ar.Get("/items/new", admin.ItemsNewForm(tmpl))
		ar.Post("/items", admin.ItemsCreate)
		ar.Get("/items/{id}/edit", admin.ItemsEditForm(tmpl))
		ar.Post("/items/{id}", admin.ItemsUpdate)
		ar.Post("/items/{id}/delete", admin.ItemsDelete)

		ar.Get("/invoices", admin.InvoicesList(tmpl))
		ar.Get("/invoices/new", admin.InvoicesNewForm(tmpl))
		ar.Post("/invoices", admin.InvoicesCreate)
		ar.Get("/invoices/{id}/edit", admin.InvoicesEditForm(tmpl))
		ar.Post("/invoices/{id}", admin.InvoicesUpdate)
		ar.Post("/invoices/{id}/delete", admin.InvoicesDelete)
		ar.Post("/invoices/{id}/lineitems", admin.LineItemCreate)
		ar.Post("/lineitems/{id}", admin.LineItemUpdate)
		ar.Post("/lineitems/{id}/delete", admin.LineItemDelete)

		ar.Get("/posts", admin.PostsList(tmpl))
		ar.Get("/posts/new", admin.PostsNewForm(tmpl))
		ar.Post("/posts", admin.PostsCreate(tmpl))
		ar.Get("/posts/{id}/edit", admin.PostsEditForm(tmpl))
		ar.Post("/posts/{id}", admin.PostsUpdate(tmpl))
		ar.Post("/posts/{id}/delete", admin.PostsDelete)
		ar.Get("/comments", admin.CommentsList(tmpl))
		ar.Post("/comments/approve", admin.CommentsApprove)
		ar.Post("/comments/{id}/delete", admin.CommentsDelete)

		ar.Get("/users", admin.UsersList(tmpl))
		ar.Get("/users/{id}/edit", admin.UsersEditForm(tmpl))
		ar.Post("/users/{id}", admin.UsersUpdate)
		ar.Post("/users/{id}/delete", admin.UsersDelete)
	})

	return r
}

func mustParseTemplates(baseDir string) *template.Template {
	funcs := template.FuncMap{
		"year":     func() string { return time.Now().Format("2006") },
		"fmtDate":  func(t time.Time) string { return t.Format("Jan 02, 2006") },
		"isoDate":  func(t time.Time) string { return t.Format("2006-01-02") },
		"fmtTime":  func(t time.Time) string { return t.Format("Mon, 02 Jan 2006 15:04") },
		"isoLocal": func(t time.Time) string { return t.Format("2006-01-02T15:04") },
		"money":    services.FormatCents,
		"markdown": services.RenderMarkdown,
		// refIs reports whether a nullable foreign key points at id.
		"refIs": func(p *uint, id uint) bool { return p != nil && *p == id },
	}

	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "layouts", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "partials", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "pages", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "pages", "*", "*.tmpl")))
	return p
}
