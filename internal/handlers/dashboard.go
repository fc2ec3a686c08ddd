package handlers

import (
	"html/template"
	"net/http"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

// DashboardItem is a single preview line inside a section.
type DashboardItem struct {
	Text string
	Sub  string
	URL  string
}

// DashboardSection is a link plus a small bounded preview and total count.
type DashboardSection struct {
	Label string
	URL   string
	Items []DashboardItem
	Count int64
	// Link-only sections (Home, About) have no preview.
	HasData bool
}

// Pages on the dashboard. Staff-only entries are skipped for everyone else,
// matching the rule that unresolvable sections are omitted, not shown empty.
var dashboardPages = []struct {
	Label     string
	URL       string
	StaffOnly bool
}{
	{"Home", "/", false},
	{"About", "/about", false},
	{"People", "/people", false},
	{"Ranks", "/ranks", false},
	{"Styles", "/styles", false},
	{"Blog", "/blog", false},
	{"Site administration", "/admin", true},
}

// GET /dashboard
func Dashboard(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		sc := ScopeFor(user)

		var sections []DashboardSection
		for _, p := range dashboardPages {
			if p.StaffOnly && (user == nil || !user.IsStaff) {
				continue
			}
			sec := DashboardSection{Label: p.Label, URL: p.URL}
			if fill, ok := sectionData[p.URL]; ok {
				fill(&sec, sc)
				sec.HasData = true
			}
			sections = append(sections, sec)
		}

		render(w, r, t, "pages/dashboard", map[string]any{
			"Title":    "Dashboard",
			"Sections": sections,
			"Scope":    sc,
		})
	}
}

var sectionData = map[string]func(*DashboardSection, Scope){
	"/people": fillPeopleSection,
	"/ranks":  fillRanksSection,
	"/styles": fillStylesSection,
	"/blog":   fillBlogSection,
}

func fillPeopleSection(sec *DashboardSection, sc Scope) {
	q := db.Conn().Model(&models.MartialArtist{}).Where("active = ?", true)
	switch {
	case sc.All:
		// staff-wide
	case sc.Artist != nil:
		q = q.Where("id = ?", sc.Artist.ID)
	default:
		return
	}
	q.Count(&sec.Count)

	var people []models.MartialArtist
	q.Order("last_name, first_name").Limit(8).Find(&people)
	for _, ma := range people {
		sec.Items = append(sec.Items, DashboardItem{Text: ma.DisplayName()})
	}
}

func fillRanksSection(sec *DashboardSection, sc Scope) {
	q := db.Conn().Model(&models.Rank{})
	switch {
	case sc.All:
	case sc.Artist != nil:
		q = q.Where("martial_artist_id = ?", sc.Artist.ID)
	default:
		return
	}
	q.Count(&sec.Count)

	var ranks []models.Rank
	q.Preload("MartialArtist").Preload("RankType").
		Order("award_date desc").Limit(8).Find(&ranks)
	for _, rk := range ranks {
		sec.Items = append(sec.Items, DashboardItem{
			Text: rk.MartialArtist.DisplayName() + ": " + rk.RankType.Title,
			Sub:  rk.AwardDate.Format("2006-01-02"),
		})
	}
}

func fillStylesSection(sec *DashboardSection, sc Scope) {
	q := db.Conn().Model(&models.Style{})
	switch {
	case sc.All:
	case sc.Artist != nil:
		q = q.Joins("JOIN martial_artist_styles mas ON mas.style_id = styles.id").
			Where("mas.martial_artist_id = ?", sc.Artist.ID)
	default:
		return
	}
	q.Count(&sec.Count)

	var styles []models.Style
	q.Order("title").Limit(15).Find(&styles)
	for _, s := range styles {
		sec.Items = append(sec.Items, DashboardItem{Text: s.Title})
	}
}

func fillBlogSection(sec *DashboardSection, sc Scope) {
	q := db.Conn().Model(&models.Post{}).Where("status = ?", models.StatusPublished)
	q.Count(&sec.Count)

	var posts []models.Post
	q.Order("publish desc").Limit(5).Find(&posts)
	for _, p := range posts {
		sec.Items = append(sec.Items, DashboardItem{Text: p.Title, URL: "/blog/" + p.Slug})
	}
}
