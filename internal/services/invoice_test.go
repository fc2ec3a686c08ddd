package services_test

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dojoworks/dojotrack/internal/db"
	"github.com/dojoworks/dojotrack/internal/models"
	"github.com/dojoworks/dojotrack/internal/services"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// TestInvoiceTotalCents verifies the single aggregate query sums
// quantity times retail price across an invoice's line items.
func TestInvoiceTotalCents(t *testing.T) {
	gdb := openTestDB(t)

	ma := models.MartialArtist{FirstName: "Kim", LastName: "Lee", EnrollmentDate: time.Now()}
	gdb.Create(&ma)

	gi := models.Item{Name: "Gi", RetailCents: 4500}
	belt := models.Item{Name: "Belt", RetailCents: 1000}
	gdb.Create(&gi)
	gdb.Create(&belt)

	inv := models.Invoice{PurchaserID: ma.ID, DateOrdered: time.Now()}
	gdb.Create(&inv)

	gdb.Create(&models.LineItem{InvoiceID: inv.ID, ItemID: gi.ID, Quantity: 2})
	gdb.Create(&models.LineItem{InvoiceID: inv.ID, ItemID: belt.ID, Quantity: 3})

	total, err := services.InvoiceTotalCents(gdb, inv.ID)
	if err != nil {
		t.Fatalf("InvoiceTotalCents: %v", err)
	}
	// 2 * 45.00 + 3 * 10.00 = 120.00
	if total != 12000 {
		t.Errorf("total: want 12000, got %d", total)
	}
}

// An invoice with no line items totals zero, not an error.
func TestInvoiceTotalCentsEmpty(t *testing.T) {
	gdb := openTestDB(t)

	ma := models.MartialArtist{FirstName: "Kim", LastName: "Lee", EnrollmentDate: time.Now()}
	gdb.Create(&ma)
	inv := models.Invoice{PurchaserID: ma.ID, DateOrdered: time.Now()}
	gdb.Create(&inv)

	total, err := services.InvoiceTotalCents(gdb, inv.ID)
	if err != nil {
		t.Fatalf("InvoiceTotalCents: %v", err)
	}
	if total != 0 {
		t.Errorf("empty invoice total: want 0, got %d", total)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := services.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash equals plaintext")
	}
	if !services.CheckPassword(hash, "correct horse battery") {
		t.Error("CheckPassword rejected the right password")
	}
	if services.CheckPassword(hash, "wrong") {
		t.Error("CheckPassword accepted the wrong password")
	}
}
