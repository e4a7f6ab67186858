package handlers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// checkoutTestRouter wires Checkout behind a stub auth layer so the binding
// and validation paths can be exercised without a database.
func checkoutTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout", func(c *gin.Context) {
		c.Set("userID", int64(1))
	}, h.Checkout)
	return r
}

func postCheckout(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := &Handlers{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	checkoutTestRouter(h).ServeHTTP(w, req)
	return w
}

func TestCheckoutRejectsEmptyItems(t *testing.T) {
	w := postCheckout(t, `{
		"items": [],
		"shippingAddress": {"name": "Acme", "address": "Sanayi Cad. 12", "city": "Istanbul"}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsZeroQuantity(t *testing.T) {
	w := postCheckout(t, `{
		"items": [{"productId": 1, "quantity": 0}],
		"shippingAddress": {"name": "Acme", "address": "Sanayi Cad. 12", "city": "Istanbul"}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	w := postCheckout(t, `{
		"items": [{"productId": 1, "quantity": 5}],
		"shippingAddress": {"name": "Acme", "address": "Sanayi Cad. 12", "city": "Istanbul"},
		"paymentMethod": "CASH_ON_DELIVERY"
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsIncompleteAddress(t *testing.T) {
	w := postCheckout(t, `{
		"items": [{"productId": 1, "quantity": 5}],
		"shippingAddress": {"name": "Acme"}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsMalformedJSON(t *testing.T) {
	w := postCheckout(t, `{"items": [`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{4}$`)

	for i := 0; i < 20; i++ {
		n := generateOrderNumber()
		assert.Regexp(t, pattern, n)
	}
}

func TestNullIfEmptyStr(t *testing.T) {
	assert.Nil(t, nullIfEmptyStr(""))

	got := nullIfEmptyStr("Yurtici")
	assert.NotNil(t, got)
	assert.Equal(t, "Yurtici", *got)
}
