package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	from    string
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (f *fakeSender) Send(from, to, subject, body string) error {
	f.calls++
	f.from = from
	f.to = to
	f.subject = subject
	f.body = body
	return f.err
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "admin@example.com", "noreply@example.com")

	err := n.SendOrderConfirmation(OrderConfirmation{
		To:           "dealer@example.com",
		OrderNumber:  "ORD-20260901-0042",
		CustomerName: "Acme Trading",
		Items: []OrderLine{
			{ProductName: "Steel Bolt M8", VariantInfo: "Zinc / 50mm", Quantity: 200, UnitPrice: 1.25, LineTotal: 270},
		},
		Subtotal: 250,
		Discount: 25,
		Vat:      45,
		Total:    270,
		Address:  "Sanayi Cad. 12",
		City:     "Istanbul",
		District: "Kartal",
	})
	require.NoError(t, err)

	assert.Equal(t, "noreply@example.com", sender.from)
	assert.Equal(t, "dealer@example.com", sender.to)
	assert.Equal(t, "Your order has been received - #ORD-20260901-0042", sender.subject)
	assert.Contains(t, sender.body, "Hello Acme Trading,")
	assert.Contains(t, sender.body, "Steel Bolt M8 (Zinc / 50mm) x200 @ 1.25 = 270.00")
	assert.Contains(t, sender.body, "Subtotal: 250.00")
	assert.Contains(t, sender.body, "Discount: -25.00")
	assert.Contains(t, sender.body, "VAT: 45.00")
	assert.Contains(t, sender.body, "Total: 270.00")
	assert.Contains(t, sender.body, "Sanayi Cad. 12, Kartal Istanbul")
	assert.Contains(t, sender.body, "Cargo company: -")
}

func TestSendOrderConfirmationPropagatesError(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	n := NewNotifier(sender, "", "noreply@example.com")

	err := n.SendOrderConfirmation(OrderConfirmation{To: "dealer@example.com"})
	assert.Error(t, err)
}

func TestSendAdminAlert(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "admin@example.com", "noreply@example.com")

	err := n.SendAdminAlert(AdminAlert{
		OrderNumber:  "ORD-20260901-0042",
		CustomerName: "Acme Trading",
		Total:        270,
		OrderID:      17,
	})
	require.NoError(t, err)

	assert.Equal(t, "noreply@example.com", sender.from)
	assert.Equal(t, "admin@example.com", sender.to)
	assert.Equal(t, "New order: #ORD-20260901-0042 - Acme Trading", sender.subject)
	assert.Contains(t, sender.body, "Total: 270.00")
	assert.Contains(t, sender.body, "Order ID: 17")
}

func TestSendAdminAlertSkippedWithoutAddress(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "", "noreply@example.com")

	err := n.SendAdminAlert(AdminAlert{OrderNumber: "ORD-20260901-0001"})
	require.NoError(t, err)
	assert.Zero(t, sender.calls)
}

func TestBuildConfirmationBodyWithoutVariant(t *testing.T) {
	body := BuildConfirmationBody(OrderConfirmation{
		CustomerName: "Acme",
		OrderNumber:  "ORD-20260901-0001",
		Items: []OrderLine{
			{ProductName: "Hex Nut", Quantity: 10, UnitPrice: 0.5, LineTotal: 5},
		},
		CargoCompany: "Yurtici",
	})

	assert.Contains(t, body, "Hex Nut x10")
	assert.NotContains(t, body, "(")
	assert.Contains(t, body, "Cargo company: Yurtici")
}
