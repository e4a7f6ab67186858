package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cooderhasan/b2b/internal/email"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Checkout flow tests against a mocked database: they drive the handler
// through the rejection branches and the full transactional commit.

func performCheckout(t *testing.T, h *Handlers, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	checkoutTestRouter(h).ServeHTTP(w, req)
	return w
}

func newCheckoutMock(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Handlers{
		DB:       db,
		Notifier: email.NewNotifier(email.LogSender{}, "", "orders@example.com"),
	}, mock
}

func expectDealerTerms(mock sqlmock.Sqlmock, discountRate, creditLimit float64) {
	mock.ExpectQuery("SELECT email, contact_name, discount_rate, credit_limit FROM users").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"email", "contact_name", "discount_rate", "credit_limit"}).
			AddRow("dealer@example.com", "Acme Trading", discountRate, creditLimit))
}

func expectProduct(mock sqlmock.Sqlmock, name string, listPrice, vatRate float64, minQuantity, stock int) {
	mock.ExpectQuery("SELECT name, list_price, vat_rate, min_quantity, stock FROM products").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "list_price", "vat_rate", "min_quantity", "stock"}).
			AddRow(name, listPrice, vatRate, minQuantity, stock))
}

const checkoutAddress = `{"name": "Acme Trading", "address": "Sanayi Cad. 12", "city": "Istanbul", "phone": "+90 555 000 0000"}`

func TestCheckoutRejectsBelowMinimumQuantity(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 10, 0)
	expectProduct(mock, "Steel Bolt M8", 100, 20, 10, 500)
	mock.ExpectRollback()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 5}],
		"shippingAddress": `+checkoutAddress+`
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Minimum order quantity for Steel Bolt M8 is 10")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 10, 0)
	expectProduct(mock, "Steel Bolt M8", 100, 20, 1, 3)
	// No order insert, ledger entry or stock update may follow the rejection.
	mock.ExpectRollback()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 5}],
		"shippingAddress": `+checkoutAddress+`
	}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Only 3 in stock for Steel Bolt M8")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsMissingProduct(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 10, 0)
	mock.ExpectQuery("SELECT name, list_price, vat_rate, min_quantity, stock FROM products").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "list_price", "vat_rate", "min_quantity", "stock"}))
	mock.ExpectRollback()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 5}],
		"shippingAddress": `+checkoutAddress+`
	}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found: 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsInsufficientCredit(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 0, 100)
	expectProduct(mock, "Steel Bolt M8", 100, 0, 1, 500)
	// Existing debt of 50 against a limit of 100 leaves 50 available; the
	// order totals 100.
	mock.ExpectQuery("SELECT type, amount FROM current_account_transactions").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"type", "amount"}).AddRow("DEBIT", 50.0))
	mock.ExpectRollback()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 1}],
		"shippingAddress": `+checkoutAddress+`,
		"paymentMethod": "CURRENT_ACCOUNT"
	}`)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient available credit. Order total: 100.00, available limit: 50.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutCurrentAccountCommits(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 10, 1000)
	expectProduct(mock, "Steel Bolt M8", 100, 20, 1, 50)
	mock.ExpectQuery("SELECT type, amount FROM current_account_transactions").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"type", "amount"}))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO current_account_transactions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE products SET stock = stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 2}],
		"shippingAddress": `+checkoutAddress+`,
		"paymentMethod": "CURRENT_ACCOUNT"
	}`)

	// 100 * 2 = 200, minus 10% = 180, plus 20% VAT = 216
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"CONFIRMED"`)
	assert.Contains(t, w.Body.String(), `"total":216`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRetriesOrderNumberCollision(t *testing.T) {
	h, mock := newCheckoutMock(t)

	mock.ExpectBegin()
	expectDealerTerms(mock, 0, 0)
	expectProduct(mock, "Steel Bolt M8", 100, 20, 1, 50)
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'orders.order_number'"})
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE products SET stock = stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performCheckout(t, h, `{
		"items": [{"productId": 1, "quantity": 1}],
		"shippingAddress": `+checkoutAddress+`
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
