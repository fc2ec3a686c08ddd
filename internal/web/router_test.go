package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	if err := db.Init(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("db init: %v", err)
	}
	return Router("../../templates", t.TempDir())
}

func createUser(t *testing.T, username, password string, staff, super bool) *models.User {
	t.Helper()
	hash, err := services.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{Username: username, PasswordHash: hash, IsStaff: staff, IsSuperuser: super}
	if err := db.Conn().Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// login posts credentials and returns the session cookie.
func login(t *testing.T, h http.Handler, username, password string) *http.Cookie {
	t.Helper()
	rec := postForm(h, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dojo_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login: no session cookie set")
	return nil
}

func TestHealthz(t *testing.T) {
	h := setupRouter(t)
	if rec := get(h, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// GET /logout is deliberately not routed; only POST logs out.
func TestLogoutRejectsGet(t *testing.T) {
	h := setupRouter(t)
	if rec := get(h, "/logout"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	h := setupRouter(t)
	rec := postForm(h, "/signup", url.Values{
		"username":  {"newmember"},
		"password1": {"longenough1"},
		"password2": {"longenough1"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?ok=signed_up" {
		t.Errorf("Location: want /?ok=signed_up, got %q", loc)
	}

	var u models.User
	if err := db.Conn().Where("username = ?", "newmember").First(&u).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.PasswordHash == "longenough1" {
		t.Error("password stored in plaintext")
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dojo_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("signup did not start a session")
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	h := setupRouter(t)
	rec := postForm(h, "/signup", url.Values{
		"username":  {"nope"},
		"password1": {"longenough1"},
		"password2": {"different22"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form (200), got %d", rec.Code)
	}
	var n int64
	db.Conn().Model(&models.User{}).Count(&n)
	if n != 0 {
		t.Errorf("users created on mismatch: want 0, got %d", n)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "taken", "longenough1", false, false)
	rec := postForm(h, "/signup", url.Values{
		"username":  {"taken"},
		"password1": {"longenough1"},
		"password2": {"longenough1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form (200), got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already been taken") {
		t.Error("expected the duplicate-username message in the response")
	}
}

// A bad username and a bad password produce the same message, so the
// form never reveals which was wrong.
func TestLoginFailureIsGeneric(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)

	for _, form := range []url.Values{
		{"username": {"member"}, "password": {"wrongwrong"}},
		{"username": {"ghost"}, "password": {"longenough1"}},
	} {
		rec := postForm(h, "/login", form)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Username and password did not match.") {
			t.Error("expected the generic failure message")
		}
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)
	createUser(t, "boss", "longenough1", true, true)

	rec := postForm(h, "/login", url.Values{
		"username": {"member"}, "password": {"longenough1"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("member Location: want /dashboard, got %q", loc)
	}

	rec = postForm(h, "/login", url.Values{
		"username": {"boss"}, "password": {"longenough1"},
	})
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("superuser Location: want /admin, got %q", loc)
	}
}

// Only local paths are honored as a post-login target.
func TestLoginNextSanitized(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)

	rec := postForm(h, "/login", url.Values{
		"username": {"member"}, "password": {"longenough1"},
		"next": {"https://example.com/evil"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("external next honored: got %q", loc)
	}

	rec = postForm(h, "/login", url.Values{
		"username": {"member"}, "password": {"longenough1"},
		"next": {"/styles"},
	})
	if loc := rec.Header().Get("Location"); loc != "/styles" {
		t.Errorf("local next dropped: got %q", loc)
	}
}

// An expired session row no longer authenticates the cookie holder.
func TestExpiredSessionDeniesAccess(t *testing.T) {
	h := setupRouter(t)
	u := createUser(t, "member", "longenough1", false, false)

	sess := models.Session{
		Token:     "expired-token",
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := db.Conn().Create(&sess).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	rec := get(h, "/dashboard", &http.Cookie{Name: "dojo_session", Value: "expired-token"})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}

	// The stale row is cleaned up on first use.
	var n int64
	db.Conn().Model(&models.Session{}).Where("token = ?", "expired-token").Count(&n)
	if n != 0 {
		t.Errorf("expired session row not deleted, count %d", n)
	}
}

// The admin section appears on the dashboard for staff only.
func TestDashboardAdminSection(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)
	createUser(t, "staff", "longenough1", true, false)

	c := login(t, h, "member", "longenough1")
	if body := get(h, "/dashboard", c).Body.String(); strings.Contains(body, "Site administration") {
		t.Error("non-staff dashboard shows the admin section")
	}

	sc := login(t, h, "staff", "longenough1")
	if body := get(h, "/dashboard", sc).Body.String(); !strings.Contains(body, "Site administration") {
		t.Error("staff dashboard missing the admin section")
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	h := setupRouter(t)
	rec := get(h, "/dashboard")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Errorf("Location: want /login?next=..., got %q", loc)
	}
}

func TestAdminForbiddenForNonStaff(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)
	c := login(t, h, "member", "longenough1")

	if rec := get(h, "/admin/", c); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

// A logged-in account with no linked martial artist record gets the
// explanatory message instead of other people's records.
func TestUnlinkedMemberSeesNoRecords(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "member", "longenough1", false, false)
	db.Conn().Create(&models.MartialArtist{
		FirstName: "Kim", LastName: "Lee", Active: true, EnrollmentDate: time.Now(),
	})
	c := login(t, h, "member", "longenough1")

	rec := get(h, "/people", c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No martial artist profile is linked") {
		t.Error("expected the unlinked-account message")
	}
	if strings.Contains(body, "Lee, Kim") {
		t.Error("unlinked member can see other records")
	}
}

// A linked member sees only their own rows; staff see everything.
func TestScopedVisibility(t *testing.T) {
	h := setupRouter(t)
	member := createUser(t, "member", "longenough1", false, false)
	createUser(t, "staff", "longenough1", true, false)

	mine := models.MartialArtist{
		FirstName: "Kim", LastName: "Lee", Active: true,
		EnrollmentDate: time.Now(), UserID: &member.ID,
	}
	other := models.MartialArtist{
		FirstName: "Alex", LastName: "Stone", Active: true, EnrollmentDate: time.Now(),
	}
	db.Conn().Create(&mine)
	db.Conn().Create(&other)

	c := login(t, h, "member", "longenough1")
	body := get(h, "/people", c).Body.String()
	if !strings.Contains(body, "Lee, Kim") {
		t.Error("linked member cannot see their own record")
	}
	if strings.Contains(body, "Stone, Alex") {
		t.Error("linked member can see someone else's record")
	}
	if rec := get(h, fmt.Sprintf("/people/%d", other.ID), c); rec.Code != http.StatusNotFound {
		t.Errorf("other record detail: want 404, got %d", rec.Code)
	}

	sc := login(t, h, "staff", "longenough1")
	body = get(h, "/people", sc).Body.String()
	if !strings.Contains(body, "Lee, Kim") || !strings.Contains(body, "Stone, Alex") {
		t.Error("staff view should include every active record")
	}
}

func seedPost(t *testing.T, author *models.User, title, slug string, status int, publish time.Time) models.Post {
	t.Helper()
	p := models.Post{
		Title: title, Slug: slug, Body: "Body of " + title,
		AuthorID: author.ID, Publish: publish, Status: status,
	}
	if err := db.Conn().Create(&p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

func TestBlogHidesDrafts(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "writer", "longenough1", true, false)
	seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())
	seedPost(t, author, "Secret Draft", "secret-draft", models.StatusDraft, time.Now())

	body := get(h, "/blog").Body.String()
	if !strings.Contains(body, "Public Post") {
		t.Error("published post missing from the index")
	}
	if strings.Contains(body, "Secret Draft") {
		t.Error("draft leaked into the index")
	}

	if rec := get(h, "/blog/public-post"); rec.Code != http.StatusOK {
		t.Errorf("published detail: want 200, got %d", rec.Code)
	}
	if rec := get(h, "/blog/secret-draft"); rec.Code != http.StatusNotFound {
		t.Errorf("draft detail: want 404, got %d", rec.Code)
	}
}

// The author relation loads with the post, so bylines render on the
// index and the detail page.
func TestBlogShowsAuthor(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "mira", "longenough1", true, false)
	seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())

	rec := get(h, "/blog")
	if rec.Code != http.StatusOK {
		t.Fatalf("blog index: want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mira") {
		t.Error("index byline missing the author username")
	}

	rec = get(h, "/blog/public-post")
	if rec.Code != http.StatusOK {
		t.Fatalf("post detail: want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mira") {
		t.Error("detail byline missing the author username")
	}
}

// Three posts per page, newest publish date first.
func TestBlogPagination(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "writer", "longenough1", true, false)
	for i := 0; i < 5; i++ {
		seedPost(t, author,
			fmt.Sprintf("Post %d", i),
			fmt.Sprintf("post-%d", i),
			models.StatusPublished,
			time.Now().Add(-time.Duration(i)*24*time.Hour))
	}

	page1 := get(h, "/blog").Body.String()
	for _, want := range []string{"Post 0", "Post 1", "Post 2"} {
		if !strings.Contains(page1, want) {
			t.Errorf("page 1 missing %q", want)
		}
	}
	if strings.Contains(page1, "Post 3") {
		t.Error("page 1 shows a fourth post")
	}

	page2 := get(h, "/blog?page=2").Body.String()
	if !strings.Contains(page2, "Post 3") || !strings.Contains(page2, "Post 4") {
		t.Error("page 2 missing the older posts")
	}
	if strings.Contains(page2, "Post 0") {
		t.Error("page 2 repeats the newest post")
	}
}

func TestBlogCommentAwaitsModeration(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "writer", "longenough1", true, false)
	post := seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())

	rec := postForm(h, "/blog/public-post/comments", url.Values{
		"name":  {"Visitor"},
		"email": {"visitor@example.com"},
		"body":  {"Nice writeup"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "ok=comment_pending") {
		t.Errorf("Location: want comment_pending flash, got %q", loc)
	}

	var c models.Comment
	if err := db.Conn().Where("post_id = ?", post.ID).First(&c).Error; err != nil {
		t.Fatalf("comment not stored: %v", err)
	}
	if c.Active {
		t.Error("new comment should be pending, not active")
	}

	// Pending comments stay hidden on the public page.
	if body := get(h, "/blog/public-post").Body.String(); strings.Contains(body, "Nice writeup") {
		t.Error("pending comment visible before approval")
	}
}

func TestBlogCommentValidation(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "writer", "longenough1", true, false)
	post := seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())

	rec := postForm(h, "/blog/public-post/comments", url.Values{
		"name":  {"Visitor"},
		"email": {"not-an-email"},
		"body":  {"Hello"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form (200), got %d", rec.Code)
	}
	var n int64
	db.Conn().Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n)
	if n != 0 {
		t.Errorf("comments stored on invalid input: want 0, got %d", n)
	}
}

func TestAdminListAndSearch(t *testing.T) {
	h := setupRouter(t)
	createUser(t, "boss", "longenough1", true, true)
	db.Conn().Create(&models.MartialArtist{
		FirstName: "Kim", LastName: "Lee", Active: true, EnrollmentDate: time.Now(),
	})
	db.Conn().Create(&models.MartialArtist{
		FirstName: "Alex", LastName: "Stone", Active: true, EnrollmentDate: time.Now(),
	})
	c := login(t, h, "boss", "longenough1")

	body := get(h, "/admin/artists", c).Body.String()
	if !strings.Contains(body, "Lee") || !strings.Contains(body, "Stone") {
		t.Error("admin list missing seeded artists")
	}

	body = get(h, "/admin/artists?q=stone", c).Body.String()
	if !strings.Contains(body, "Stone") {
		t.Error("search missed a matching artist")
	}
	if strings.Contains(body, "Lee") {
		t.Error("search returned a non-matching artist")
	}
}

// Long comment bodies are shortened on rune boundaries for the list, so
// multi-byte text never renders as a broken character.
func TestAdminCommentListTruncatesOnRunes(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "boss", "longenough1", true, true)
	post := seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())
	db.Conn().Create(&models.Comment{
		PostID: post.ID, Name: "Visitor", Email: "v@example.com",
		Body: strings.Repeat("道", 70),
	})
	c := login(t, h, "boss", "longenough1")

	body := get(h, "/admin/comments", c).Body.String()
	if !utf8.ValidString(body) {
		t.Fatal("comment list contains invalid UTF-8")
	}
	if !strings.Contains(body, strings.Repeat("道", 60)+"…") {
		t.Error("expected the body cut to sixty runes with an ellipsis")
	}
	if strings.Contains(body, strings.Repeat("道", 61)) {
		t.Error("body not truncated")
	}
}

func TestAdminCommentApproval(t *testing.T) {
	h := setupRouter(t)
	author := createUser(t, "boss", "longenough1", true, true)
	post := seedPost(t, author, "Public Post", "public-post", models.StatusPublished, time.Now())
	comment := models.Comment{PostID: post.ID, Name: "Visitor", Email: "v@example.com", Body: "Approve me"}
	db.Conn().Create(&comment)
	c := login(t, h, "boss", "longenough1")

	rec := postForm(h, "/admin/comments/approve", url.Values{
		"selected": {fmt.Sprint(comment.ID)},
	}, c)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	var got models.Comment
	db.Conn().First(&got, comment.ID)
	if !got.Active {
		t.Error("comment not approved")
	}

	// Approved comments appear on the public page.
	if body := get(h, "/blog/public-post").Body.String(); !strings.Contains(body, "Approve me") {
		t.Error("approved comment missing from the public page")
	}
}
