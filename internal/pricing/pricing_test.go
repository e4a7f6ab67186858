package pricing

import (
	"testing"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name         string
		unitPrice    float64
		quantity     int
		discountRate float64
		vatRate      float64
		want         Line
	}{
		{
			name:      "list price 100, VAT 20, discount 10, qty 2",
			unitPrice: 100, quantity: 2, discountRate: 10, vatRate: 20,
			want: Line{
				Subtotal: 200, Discount: 20, Discounted: 180, Vat: 36, Total: 216,
			},
		},
		{
			name:      "no discount",
			unitPrice: 50, quantity: 1, discountRate: 0, vatRate: 18,
			want: Line{
				Subtotal: 50, Discount: 0, Discounted: 50, Vat: 9, Total: 59,
			},
		},
		{
			name:      "no VAT",
			unitPrice: 10, quantity: 3, discountRate: 25, vatRate: 0,
			want: Line{
				Subtotal: 30, Discount: 7.5, Discounted: 22.5, Vat: 0, Total: 22.5,
			},
		},
		{
			name:      "full discount",
			unitPrice: 100, quantity: 1, discountRate: 100, vatRate: 20,
			want: Line{
				Subtotal: 100, Discount: 100, Discounted: 0, Vat: 0, Total: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLine(tt.unitPrice, tt.quantity, tt.discountRate, tt.vatRate)

			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 1e-9, "subtotal")
			assert.InDelta(t, tt.want.Discount, got.Discount, 1e-9, "discount")
			assert.InDelta(t, tt.want.Discounted, got.Discounted, 1e-9, "discounted")
			assert.InDelta(t, tt.want.Vat, got.Vat, 1e-9, "vat")
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9, "total")
		})
	}
}

func TestComputeLineKeepsInputs(t *testing.T) {
	got := ComputeLine(120.5, 4, 15, 8)

	assert.Equal(t, 120.5, got.UnitPrice)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, 15.0, got.DiscountRate)
	assert.Equal(t, 8.0, got.VatRate)
}

func TestTotalsAccumulation(t *testing.T) {
	lines := []Line{
		ComputeLine(100, 2, 10, 20),
		ComputeLine(40, 5, 10, 8),
		ComputeLine(9.99, 10, 10, 18),
	}

	var totals Totals
	for _, l := range lines {
		totals.Add(l)
	}

	var wantSubtotal, wantDiscount, wantVat, wantLineSum float64
	for _, l := range lines {
		wantSubtotal += l.Subtotal
		wantDiscount += l.Discount
		wantVat += l.Vat
		wantLineSum += l.Total
	}

	assert.InDelta(t, wantSubtotal, totals.Subtotal, 1e-9)
	assert.InDelta(t, wantDiscount, totals.DiscountAmount, 1e-9)
	assert.InDelta(t, wantVat, totals.VatAmount, 1e-9)
	assert.InDelta(t, totals.Subtotal-totals.DiscountAmount+totals.VatAmount, totals.Total, 1e-9)

	// The order total must equal the sum of the stored line totals.
	assert.InDelta(t, wantLineSum, totals.Total, 1e-9)
}

func TestCurrentDebt(t *testing.T) {
	ledger := []models.CurrentAccountTransaction{
		{Type: models.TxDebit, Amount: 500},
		{Type: models.TxDebit, Amount: 250},
		{Type: models.TxCredit, Amount: 300},
	}

	assert.InDelta(t, 450.0, CurrentDebt(ledger), 1e-9)
}

func TestCurrentDebtEmptyLedger(t *testing.T) {
	assert.Equal(t, 0.0, CurrentDebt(nil))
}

func TestCurrentDebtCanGoNegative(t *testing.T) {
	ledger := []models.CurrentAccountTransaction{
		{Type: models.TxCredit, Amount: 100},
	}

	// account in credit
	assert.InDelta(t, -100.0, CurrentDebt(ledger), 1e-9)
}

func TestAvailableLimit(t *testing.T) {
	ledger := []models.CurrentAccountTransaction{
		{Type: models.TxDebit, Amount: 800},
		{Type: models.TxCredit, Amount: 200},
	}

	got := AvailableLimit(1000, ledger)
	require.InDelta(t, 400.0, got, 1e-9)

	// An order of exactly the available limit is allowed; one cent more is not.
	assert.False(t, 400.0 > got)
	assert.True(t, 400.01 > got)
}
