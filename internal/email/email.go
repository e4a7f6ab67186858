// Package email sends transactional mail for order events. Delivery is
// best-effort: checkout never waits on it and never fails because of it.
package email

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "email").Logger()

// Sender delivers a single message. The default implementation logs the
// message instead of delivering it, which keeps local development working
// without a mail provider; production swaps in a real transport.
type Sender interface {
	Send(from, to, subject, body string) error
}

// LogSender is the placeholder transport: it writes the message through the
// structured logger so it can be inspected during development.
type LogSender struct{}

func (LogSender) Send(from, to, subject, body string) error {
	logger.Info().
		Str("from", from).
		Str("to", to).
		Str("subject", subject).
		Msg("email (placeholder transport)\n" + body)
	return nil
}

// Notifier builds and sends the order mails.
type Notifier struct {
	sender     Sender
	adminEmail string
	from       string
}

func NewNotifier(sender Sender, adminEmail, from string) *Notifier {
	if sender == nil {
		sender = LogSender{}
	}
	return &Notifier{sender: sender, adminEmail: adminEmail, from: from}
}

// OrderConfirmation is the payload for the customer-facing mail.
type OrderConfirmation struct {
	To           string
	OrderNumber  string
	CustomerName string
	Items        []OrderLine
	Subtotal     float64
	Discount     float64
	Vat          float64
	Total        float64
	Address      string
	City         string
	District     string
	CargoCompany string
}

// OrderLine is one line of the confirmation mail.
type OrderLine struct {
	ProductName string
	VariantInfo string
	Quantity    int
	UnitPrice   float64
	LineTotal   float64
}

// AdminAlert is the payload for the back-office new-order mail.
type AdminAlert struct {
	OrderNumber  string
	CustomerName string
	Total        float64
	OrderID      int64
	CargoCompany string
}

// SendOrderConfirmation delivers the customer confirmation. Errors are
// returned for logging but callers are expected to ignore them.
func (n *Notifier) SendOrderConfirmation(p OrderConfirmation) error {
	subject := fmt.Sprintf("Your order has been received - #%s", p.OrderNumber)
	return n.sender.Send(n.from, p.To, subject, BuildConfirmationBody(p))
}

// SendAdminAlert delivers the new-order notification to the admin address.
// It is a no-op when ADMIN_EMAIL is not configured.
func (n *Notifier) SendAdminAlert(p AdminAlert) error {
	if n.adminEmail == "" {
		logger.Warn().Msg("ADMIN_EMAIL is not set, admin alert skipped")
		return nil
	}
	subject := fmt.Sprintf("New order: #%s - %s", p.OrderNumber, p.CustomerName)
	body := fmt.Sprintf(
		"New order received.\n\nOrder: #%s\nCustomer: %s\nTotal: %.2f\nCargo: %s\nOrder ID: %d\n",
		p.OrderNumber, p.CustomerName, p.Total, orDash(p.CargoCompany), p.OrderID,
	)
	return n.sender.Send(n.from, n.adminEmail, subject, body)
}

// BuildConfirmationBody renders the plain-text confirmation mail.
func BuildConfirmationBody(p OrderConfirmation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", p.CustomerName)
	fmt.Fprintf(&b, "We received your order #%s.\n\n", p.OrderNumber)

	b.WriteString("Items:\n")
	for _, it := range p.Items {
		name := it.ProductName
		if it.VariantInfo != "" {
			name += " (" + it.VariantInfo + ")"
		}
		fmt.Fprintf(&b, "  - %s x%d @ %.2f = %.2f\n", name, it.Quantity, it.UnitPrice, it.LineTotal)
	}

	fmt.Fprintf(&b, "\nSubtotal: %.2f\nDiscount: -%.2f\nVAT: %.2f\nTotal: %.2f\n\n",
		p.Subtotal, p.Discount, p.Vat, p.Total)

	fmt.Fprintf(&b, "Shipping address: %s, %s %s\n", p.Address, p.District, p.City)
	fmt.Fprintf(&b, "Cargo company: %s\n", orDash(p.CargoCompany))

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
