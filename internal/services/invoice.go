package services

import "gorm.io/gorm"

// InvoiceTotalCents computes the invoice total in one aggregate query:
// the sum of quantity times the item's retail price over the invoice's
// line items. An invoice with no line items totals zero.
func InvoiceTotalCents(g *gorm.DB, invoiceID uint) (int64, error) {
	var total *int64
	err := g.Table("line_items").
		Select("SUM(line_items.quantity * items.retail_cents)").
		Joins("JOIN items ON items.id = line_items.item_id").
		Where("line_items.invoice_id = ?", invoiceID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
