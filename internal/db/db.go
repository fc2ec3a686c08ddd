package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dojoworks/dojotrack/internal/models"
)

var conn *gorm.DB

// Init opens (or creates) the sqlite database at path and migrates the
// schema. Foreign keys are switched on so the CASCADE / RESTRICT /
// SET NULL rules declared on the models are enforced by the store.
func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(conn); err != nil {
		return err
	}

	log.Println("database ready (sqlite)")
	return nil
}

// Migrate runs AutoMigrate plus the composite indexes GORM doesn't derive
// from struct tags. Split out so tests can migrate their own databases.
func Migrate(g *gorm.DB) error {
	if err := g.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Sponsor{},
		&models.PaymentPlan{},
		&models.Style{},
		&models.MartialArtist{},
		&models.RankType{},
		&models.Rank{},
		&models.TrainingClass{},
		&models.TuitionPayment{},
		&models.Item{},
		&models.Invoice{},
		&models.LineItem{},
		&models.Post{},
		&models.Comment{},
	); err != nil {
		return err
	}

	g.Exec("CREATE INDEX IF NOT EXISTS idx_invoices_purchaser_ordered ON invoices(purchaser_id, date_ordered DESC)")
	g.Exec("CREATE INDEX IF NOT EXISTS idx_posts_publish_status ON posts(publish DESC, status)")
	g.Exec("CREATE INDEX IF NOT EXISTS idx_rank_types_style_ordinal ON rank_types(style_id, ordinal)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
