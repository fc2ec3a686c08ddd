// Package admin implements the staff console: a generic tabular listing
// surface per entity plus record edit pages with inline dependents.
package admin

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/dojoworks/dojotrack/internal/handlers"
)

// Resource describes one entity surface in the console: where it lives,
// which columns its list page shows, and which fields search covers.
type Resource struct {
	Title   string
	Path    string
	Columns []string
	Search  []string // SQL columns matched by ?q=
	// NoAdd hides the add link for entities created elsewhere
	// (rank types and payments inline, comments from the public site).
	NoAdd bool
}

// Registry drives the console index page and the generic list template.
var Registry = []Resource{
	{Title: "Martial artists", Path: "/admin/artists",
		Columns: []string{"Last name", "First name", "Enrolled", "Sponsor", "Active"},
		Search:  []string{"first_name", "last_name", "email"}},
	{Title: "Sponsors", Path: "/admin/sponsors",
		Columns: []string{"Last name", "First name", "Email", "Telephone", "Parent"},
		Search:  []string{"first_name", "last_name", "email"}},
	{Title: "Styles", Path: "/admin/styles",
		Columns: []string{"Title", "Originator", "Rank types"},
		Search:  []string{"title", "originator"}},
	{Title: "Rank types", Path: "/admin/ranktypes",
		Columns: []string{"Style", "Ordinal", "Title", "Indicator", "Test required"},
		Search:  []string{"title", "indicator"},
		NoAdd:   true},
	{Title: "Training classes", Path: "/admin/classes",
		Columns: []string{"Start", "End", "Duration (mins)", "Notes"},
		Search:  []string{"notes"}},
	{Title: "Payment plans", Path: "/admin/plans",
		Columns: []string{"Title", "Amount", "Frequency"},
		Search:  []string{"title"}},
	{Title: "Tuition payments", Path: "/admin/payments",
		Columns: []string{"Date paid", "Payer", "Paid", "Plan"},
		Search:  nil,
		NoAdd:   true},
	{Title: "Items", Path: "/admin/items",
		Columns: []string{"Name", "Make", "SKU", "Retail", "On hand"},
		Search:  []string{"name", "make", "sku"}},
	{Title: "Invoices", Path: "/admin/invoices",
		Columns: []string{"ID", "Purchaser", "Ordered", "Completed", "Total"},
		Search:  nil},
	{Title: "Posts", Path: "/admin/posts",
		Columns: []string{"Title", "Status", "Publish", "Created"},
		Search:  []string{"title", "body"}},
	{Title: "Comments", Path: "/admin/comments",
		Columns: []string{"Name", "Body", "Post", "Created", "Active"},
		Search:  []string{"name", "email", "body"},
		NoAdd:   true},
	{Title: "Users", Path: "/admin/users",
		Columns: []string{"Username", "Staff", "Superuser", "Joined"},
		Search:  []string{"username"},
		NoAdd:   true},
}

func resourceFor(path string) Resource {
	for _, res := range Registry {
		if res.Path == path {
			return res
		}
	}
	return Resource{Title: "Unknown", Path: path}
}

// GET /admin
func Index(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, t, "pages/admin/index", map[string]any{
			"Title":     "Site administration",
			"Resources": Registry,
		})
	}
}

// listParams reads the shared ?q=&page=&per= listing controls.
type listParams struct {
	Q      string
	Page   int
	Per    int
	Offset int
}

func readListParams(r *http.Request) listParams {
	p := listParams{
		Q: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	p.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	p.Per, _ = strconv.Atoi(r.URL.Query().Get("per"))
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Per < 1 || p.Per > 200 {
		p.Per = 25
	}
	p.Offset = (p.Page - 1) * p.Per
	return p
}

// searchWhere builds a LIKE clause over the resource's search columns.
func searchWhere(cols []string, q string) (string, []any) {
	if q == "" || len(cols) == 0 {
		return "", nil
	}
	like := "%" + strings.ToLower(q) + "%"
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, "LOWER("+c+") LIKE ?")
		args = append(args, like)
	}
	return strings.Join(parts, " OR "), args
}

// Row is one generic list line: the record id plus display cells.
// Href overrides the default edit link for records edited inline on
// another page.
type Row struct {
	ID    uint
	Cells []string
	Href  string
}

// listVM is the view model the generic list template renders.
type listVM struct {
	Res      Resource
	Rows     []Row
	Q        string
	Filter   string
	Filters  []filterOption
	Page     int
	Per      int
	Total    int64
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	// Bulk is the action endpoint for list pages with checkboxes
	// (currently only comment approval).
	Bulk string
}

type filterOption struct {
	Label string
	Value string
}

func makeListVM(res Resource, p listParams, total int64, rows []Row) listVM {
	return listVM{
		Res:      res,
		Rows:     rows,
		Q:        p.Q,
		Page:     p.Page,
		Per:      p.Per,
		Total:    total,
		HasPrev:  p.Page > 1,
		HasNext:  int64(p.Offset+p.Per) < total,
		PrevPage: p.Page - 1,
		NextPage: p.Page + 1,
	}
}

func renderList(w http.ResponseWriter, r *http.Request, t *template.Template, vm listVM) {
	render(w, r, t, "pages/admin/list", map[string]any{
		"Title": "Admin • " + vm.Res.Title,
		"List":  vm,
	})
}

// render delegates to the handlers package so admin pages share the same
// flash/CSRF/user plumbing as the public site.
func render(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data map[string]any) {
	handlers.Render(w, r, t, name, data)
}

func urlID(param string) uint {
	id, _ := strconv.Atoi(param)
	if id < 0 {
		return 0
	}
	return uint(id)
}
