// Package pricing holds the order pricing arithmetic: per-line discount and
// VAT, order totals, and the current-account credit computation. Everything
// here is pure so the checkout transaction stays thin and the math is
// testable without a database.
package pricing

import "github.com/cooderhasan/b2b/internal/models"

// Line is the computed price breakdown for one order line.
//
// Subtotal   = UnitPrice * Quantity
// Discount   = Subtotal * (DiscountRate / 100)
// Discounted = Subtotal - Discount
// Vat        = Discounted * (VatRate / 100)
// Total      = Discounted + Vat
type Line struct {
	UnitPrice    float64
	Quantity     int
	DiscountRate float64
	VatRate      float64

	Subtotal   float64
	Discount   float64
	Discounted float64
	Vat        float64
	Total      float64
}

// ComputeLine prices a single line. unitPrice must already include any
// variant price adjustment.
func ComputeLine(unitPrice float64, quantity int, discountRate, vatRate float64) Line {
	l := Line{
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		DiscountRate: discountRate,
		VatRate:      vatRate,
	}
	l.Subtotal = unitPrice * float64(quantity)
	l.Discount = l.Subtotal * (discountRate / 100)
	l.Discounted = l.Subtotal - l.Discount
	l.Vat = l.Discounted * (vatRate / 100)
	l.Total = l.Discounted + l.Vat
	return l
}

// Totals accumulates line breakdowns into order totals.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	VatAmount      float64
	Total          float64
}

// Add folds one line into the running totals.
func (t *Totals) Add(l Line) {
	t.Subtotal += l.Subtotal
	t.DiscountAmount += l.Discount
	t.VatAmount += l.Vat
	t.Total = t.Subtotal - t.DiscountAmount + t.VatAmount
}

// CurrentDebt computes a dealer's running debt from their ledger:
// SUM(DEBIT) - SUM(CREDIT). A negative result means the account is in credit.
func CurrentDebt(txs []models.CurrentAccountTransaction) float64 {
	var debt float64
	for _, tx := range txs {
		switch tx.Type {
		case models.TxDebit:
			debt += tx.Amount
		case models.TxCredit:
			debt -= tx.Amount
		}
	}
	return debt
}

// AvailableLimit is the spend still allowed on a current account.
func AvailableLimit(creditLimit float64, txs []models.CurrentAccountTransaction) float64 {
	return creditLimit - CurrentDebt(txs)
}
