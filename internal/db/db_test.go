package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := db.Init(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return db.Conn()
}

// TestInitPragmas verifies the DSN switches on WAL journaling and foreign
// key enforcement; the deletion rules depend on the latter.
func TestInitPragmas(t *testing.T) {
	gdb := initTestDB(t)

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("journal_mode: want wal, got %q", mode)
	}

	var fk int
	gdb.Raw("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Errorf("foreign_keys: want 1, got %d", fk)
	}
}

// TestMigrateCreatesIndexes checks the composite indexes Migrate adds by
// hand, which AutoMigrate does not derive from struct tags.
func TestMigrateCreatesIndexes(t *testing.T) {
	gdb := initTestDB(t)
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	checks := []struct {
		table string
		index string
	}{
		{"invoices", "idx_invoices_purchaser_ordered"},
		{"posts", "idx_posts_publish_status"},
		{"rank_types", "idx_rank_types_style_ordinal"},
	}
	for _, c := range checks {
		if !indexNames(t, sqlDB, c.table)[c.index] {
			t.Errorf("index %q missing from %s", c.index, c.table)
		}
	}
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = true
	}
	return out
}

// TestPostDeleteCascadesComments: removing a post takes its comments
// with it.
func TestPostDeleteCascadesComments(t *testing.T) {
	gdb := initTestDB(t)

	author := models.User{Username: "writer", PasswordHash: "x"}
	gdb.Create(&author)
	post := models.Post{
		Title: "First", Slug: "first", Body: "body",
		AuthorID: author.ID, Publish: time.Now(), Status: models.StatusPublished,
	}
	gdb.Create(&post)
	gdb.Create(&models.Comment{PostID: post.ID, Name: "A", Email: "a@example.com", Body: "hi"})
	gdb.Create(&models.Comment{PostID: post.ID, Name: "B", Email: "b@example.com", Body: "yo"})

	if err := gdb.Delete(&post).Error; err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var n int64
	gdb.Model(&models.Comment{}).Count(&n)
	if n != 0 {
		t.Errorf("comments after post delete: want 0, got %d", n)
	}
}

// TestRankTypeDeleteRestricted: a rank type with awarded ranks cannot be
// removed; the awarded rank blocks it at the store level.
func TestRankTypeDeleteRestricted(t *testing.T) {
	gdb := initTestDB(t)

	style := models.Style{Title: "Judo"}
	gdb.Create(&style)
	rt := models.RankType{StyleID: style.ID, Title: "White", Ordinal: 1}
	gdb.Create(&rt)
	ma := models.MartialArtist{FirstName: "Kim", LastName: "Lee", EnrollmentDate: time.Now()}
	gdb.Create(&ma)
	gdb.Create(&models.Rank{MartialArtistID: ma.ID, RankTypeID: rt.ID, AwardDate: time.Now()})

	if err := gdb.Delete(&rt).Error; err == nil {
		t.Fatal("expected delete of an awarded rank type to fail")
	}

	// Once the rank is gone the type can be removed.
	gdb.Where("rank_type_id = ?", rt.ID).Delete(&models.Rank{})
	if err := gdb.Delete(&rt).Error; err != nil {
		t.Fatalf("delete after clearing ranks: %v", err)
	}
}

// TestStyleDeleteCascadesRankTypes: a style owns its rank ladder, so the
// rank types go with it.
func TestStyleDeleteCascadesRankTypes(t *testing.T) {
	gdb := initTestDB(t)

	style := models.Style{Title: "Aikido"}
	gdb.Create(&style)
	gdb.Create(&models.RankType{StyleID: style.ID, Title: "White", Ordinal: 1})
	gdb.Create(&models.RankType{StyleID: style.ID, Title: "Brown", Ordinal: 2})

	if err := gdb.Delete(&style).Error; err != nil {
		t.Fatalf("delete style: %v", err)
	}

	var n int64
	gdb.Model(&models.RankType{}).Count(&n)
	if n != 0 {
		t.Errorf("rank types after style delete: want 0, got %d", n)
	}
}

// TestPlanDeleteNullifies: removing a payment plan keeps the artists and
// payments on it but clears their plan references.
func TestPlanDeleteNullifies(t *testing.T) {
	gdb := initTestDB(t)

	plan := models.PaymentPlan{Title: "Monthly", AmountCents: 9500, Frequency: 12}
	gdb.Create(&plan)
	ma := models.MartialArtist{
		FirstName: "Kim", LastName: "Lee",
		EnrollmentDate: time.Now(), PaymentPlanID: &plan.ID,
	}
	gdb.Create(&ma)
	pay := models.TuitionPayment{
		PayerID: ma.ID, PaymentPlanID: &plan.ID,
		DatePaid: time.Now(), PaidCents: 9500,
	}
	gdb.Create(&pay)

	if err := gdb.Delete(&plan).Error; err != nil {
		t.Fatalf("delete plan: %v", err)
	}

	var gotMA models.MartialArtist
	if err := gdb.First(&gotMA, ma.ID).Error; err != nil {
		t.Fatalf("artist should survive plan delete: %v", err)
	}
	if gotMA.PaymentPlanID != nil {
		t.Errorf("artist PaymentPlanID: want nil, got %v", *gotMA.PaymentPlanID)
	}

	var gotPay models.TuitionPayment
	if err := gdb.First(&gotPay, pay.ID).Error; err != nil {
		t.Fatalf("payment should survive plan delete: %v", err)
	}
	if gotPay.PaymentPlanID != nil {
		t.Errorf("payment PaymentPlanID: want nil, got %v", *gotPay.PaymentPlanID)
	}
}

// TestSponsorDeleteNullifies: deleting a sponsor keeps the sponsored
// artist but clears the reference.
func TestSponsorDeleteNullifies(t *testing.T) {
	gdb := initTestDB(t)

	sp := models.Sponsor{FirstName: "Pat", LastName: "Doe"}
	gdb.Create(&sp)
	ma := models.MartialArtist{
		FirstName: "Kim", LastName: "Lee",
		EnrollmentDate: time.Now(), SponsorID: &sp.ID,
	}
	gdb.Create(&ma)

	if err := gdb.Delete(&sp).Error; err != nil {
		t.Fatalf("delete sponsor: %v", err)
	}

	var got models.MartialArtist
	if err := gdb.First(&got, ma.ID).Error; err != nil {
		t.Fatalf("artist should survive sponsor delete: %v", err)
	}
	if got.SponsorID != nil {
		t.Errorf("SponsorID: want nil, got %v", *got.SponsorID)
	}
}

// TestArtistDeleteCascades: ranks, invoices, and tuition payments belong
// to the artist and go with it.
func TestArtistDeleteCascades(t *testing.T) {
	gdb := initTestDB(t)

	style := models.Style{Title: "Judo"}
	gdb.Create(&style)
	rt := models.RankType{StyleID: style.ID, Title: "White", Ordinal: 1}
	gdb.Create(&rt)
	ma := models.MartialArtist{FirstName: "Kim", LastName: "Lee", EnrollmentDate: time.Now()}
	gdb.Create(&ma)
	gdb.Create(&models.Rank{MartialArtistID: ma.ID, RankTypeID: rt.ID, AwardDate: time.Now()})
	gdb.Create(&models.Invoice{PurchaserID: ma.ID, DateOrdered: time.Now()})
	gdb.Create(&models.TuitionPayment{PayerID: ma.ID, DatePaid: time.Now(), PaidCents: 4500})

	if err := gdb.Delete(&ma).Error; err != nil {
		t.Fatalf("delete artist: %v", err)
	}

	var ranks, invoices, payments int64
	gdb.Model(&models.Rank{}).Count(&ranks)
	gdb.Model(&models.Invoice{}).Count(&invoices)
	gdb.Model(&models.TuitionPayment{}).Count(&payments)
	if ranks != 0 {
		t.Errorf("ranks after artist delete: want 0, got %d", ranks)
	}
	if invoices != 0 {
		t.Errorf("invoices after artist delete: want 0, got %d", invoices)
	}
	if payments != 0 {
		t.Errorf("payments after artist delete: want 0, got %d", payments)
	}
}

// TestRankTypeOrdering: rank types come back in ordinal order regardless
// of insertion order.
func TestRankTypeOrdering(t *testing.T) {
	gdb := initTestDB(t)

	style := models.Style{Title: "Karate"}
	gdb.Create(&style)
	gdb.Create(&models.RankType{StyleID: style.ID, Title: "Brown", Ordinal: 3})
	gdb.Create(&models.RankType{StyleID: style.ID, Title: "White", Ordinal: 1})
	gdb.Create(&models.RankType{StyleID: style.ID, Title: "Yellow", Ordinal: 2})

	var got []models.RankType
	gdb.Where("style_id = ?", style.ID).Order("ordinal").Find(&got)

	want := []string{"White", "Yellow", "Brown"}
	if len(got) != len(want) {
		t.Fatalf("rank types: want %d, got %d", len(want), len(got))
	}
	for i, rt := range got {
		if rt.Title != want[i] {
			t.Errorf("position %d: want %s, got %s", i, want[i], rt.Title)
		}
	}
}

// TestCommentDefaultsInactive: new comments await moderation.
func TestCommentDefaultsInactive(t *testing.T) {
	gdb := initTestDB(t)

	author := models.User{Username: "writer", PasswordHash: "x"}
	gdb.Create(&author)
	post := models.Post{
		Title: "First", Slug: "first", Body: "body",
		AuthorID: author.ID, Publish: time.Now(), Status: models.StatusPublished,
	}
	gdb.Create(&post)

	c := models.Comment{PostID: post.ID, Name: "A", Email: "a@example.com", Body: "hi"}
	gdb.Create(&c)

	var got models.Comment
	gdb.First(&got, c.ID)
	if got.Active {
		t.Error("new comment should be inactive until approved")
	}
}
