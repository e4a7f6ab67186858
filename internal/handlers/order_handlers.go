package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/cooderhasan/b2b/internal/email"
	"github.com/cooderhasan/b2b/internal/events"
	"github.com/cooderhasan/b2b/internal/models"
	"github.com/cooderhasan/b2b/internal/pricing"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

//
// --- Checkout (Dealer-Only) ---
//

type CheckoutItemInput struct {
	ProductID   int64  `json:"productId" binding:"required"`
	VariantID   *int64 `json:"variantId"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	VariantInfo string `json:"variantInfo"`
}

type CheckoutInput struct {
	Items           []CheckoutItemInput    `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	CargoCompany    string                 `json:"cargoCompany"`
	Notes           string                 `json:"notes"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"omitempty,oneof=BANK_TRANSFER CURRENT_ACCOUNT"`
}

// lineSnapshot is what gets frozen into order_items.
type lineSnapshot struct {
	ProductID   int64
	VariantID   *int64
	ProductName string
	VariantInfo *string
	Quantity    int
	Line        pricing.Line
}

// Checkout is the handler for POST /v1/dealer/checkout
// It prices the cart with the dealer's discount rate and VAT, validates
// stock and minimum quantities, optionally checks the current-account
// credit limit, and commits order + items + payment + ledger entry + stock
// decrements in one transaction.
func (h *Handlers) Checkout(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userIDRaw, _ := c.Get("userID")
	dealerID := userIDRaw.(int64)

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentBankTransfer
	}

	// Serializable + FOR UPDATE row locks below: two concurrent checkouts
	// cannot jointly oversell the same product or variant.
	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 1. --- Load the dealer's commercial terms ---
	var dealerEmail, contactName string
	var discountRate, creditLimit float64
	err = tx.QueryRow(
		"SELECT email, contact_name, discount_rate, credit_limit FROM users WHERE id = ?",
		dealerID,
	).Scan(&dealerEmail, &contactName, &discountRate, &creditLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dealer account"})
		return
	}

	// 2. --- Price each line, locking the stock rows ---
	var totals pricing.Totals
	snapshots := make([]lineSnapshot, 0, len(input.Items))

	for _, item := range input.Items {
		var (
			productName string
			listPrice   float64
			vatRate     float64
			minQuantity int
			stock       int
		)
		err = tx.QueryRow(`
			SELECT name, list_price, vat_rate, min_quantity, stock
			FROM products
			WHERE id = ? AND is_active = 1
			FOR UPDATE`, item.ProductID,
		).Scan(&productName, &listPrice, &vatRate, &minQuantity, &stock)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product not found: %d", item.ProductID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
			return
		}

		unitPrice := listPrice
		stockToCheck := stock
		variantInfo := nullIfEmptyStr(item.VariantInfo)

		if item.VariantID != nil {
			var variant models.ProductVariant
			err = tx.QueryRow(`
				SELECT id, stock, price_adjustment, color, size
				FROM product_variants
				WHERE id = ? AND product_id = ? AND is_active = 1
				FOR UPDATE`, *item.VariantID, item.ProductID,
			).Scan(&variant.ID, &variant.Stock, &variant.PriceAdjustment, &variant.Color, &variant.Size)
			if err != nil {
				if err == sql.ErrNoRows {
					c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Variant not found: %d", *item.VariantID)})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load variant"})
				return
			}

			stockToCheck = variant.Stock
			unitPrice += variant.PriceAdjustment
			if variantInfo == nil {
				if label := variant.Label(); label != "" {
					variantInfo = &label
				}
			}
		}

		if item.Quantity < minQuantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Minimum order quantity for %s is %d", productName, minQuantity),
			})
			return
		}

		if item.Quantity > stockToCheck {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("Only %d in stock for %s", stockToCheck, productName),
			})
			return
		}

		line := pricing.ComputeLine(unitPrice, item.Quantity, discountRate, vatRate)
		totals.Add(line)

		snapshots = append(snapshots, lineSnapshot{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: productName,
			VariantInfo: variantInfo,
			Quantity:    item.Quantity,
			Line:        line,
		})
	}

	// 3. --- Credit check (current account only) ---
	// The ledger rows are locked so a concurrent checkout cannot spend the
	// same credit twice.
	if paymentMethod == models.PaymentCurrentAccount {
		rows, err := tx.Query(
			"SELECT type, amount FROM current_account_transactions WHERE user_id = ? FOR UPDATE",
			dealerID,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load current account"})
			return
		}

		var ledger []models.CurrentAccountTransaction
		for rows.Next() {
			var t models.CurrentAccountTransaction
			if err := rows.Scan(&t.Type, &t.Amount); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan ledger entry"})
				return
			}
			ledger = append(ledger, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read current account"})
			return
		}

		available := pricing.AvailableLimit(creditLimit, ledger)
		if totals.Total > available {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error": fmt.Sprintf(
					"Insufficient available credit. Order total: %.2f, available limit: %.2f",
					totals.Total, available,
				),
			})
			return
		}
	}

	// 4. --- Insert the order ---
	orderStatus := models.OrderPending
	paymentStatus := models.PaymentPending
	if paymentMethod == models.PaymentCurrentAccount {
		orderStatus = models.OrderConfirmed
		paymentStatus = models.PaymentCompleted
	}

	addressJSON, err := json.Marshal(input.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode shipping address"})
		return
	}

	// The order number carries a random suffix; if the unique index rejects
	// it, retry with a fresh number.
	now := time.Now()
	var result sql.Result
	var orderNumber string
	for attempt := 0; ; attempt++ {
		orderNumber = generateOrderNumber()
		result, err = tx.Exec(`
			INSERT INTO orders
			(order_number, user_id, status, subtotal, discount_rate, discount_amount,
			 vat_amount, total, shipping_address, cargo_company, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orderNumber, dealerID, orderStatus,
			totals.Subtotal, discountRate, totals.DiscountAmount, totals.VatAmount, totals.Total,
			string(addressJSON), nullIfEmpty(input.CargoCompany), nullIfEmpty(input.Notes), now, now,
		)
		if err == nil {
			break
		}
		var mysqlErr *mysql.MySQLError
		if attempt < 2 && errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 5. --- Snapshot the line items ---
	itemQuery := `
		INSERT INTO order_items
		(order_id, product_id, variant_id, product_name, variant_info,
		 quantity, unit_price, discount_rate, vat_rate, line_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, s := range snapshots {
		_, err := tx.Exec(itemQuery,
			orderID, s.ProductID, s.VariantID, s.ProductName, s.VariantInfo,
			s.Quantity, s.Line.UnitPrice, s.Line.DiscountRate, s.Line.VatRate, s.Line.Total, now,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}
	}

	// 6. --- Payment record ---
	_, err = tx.Exec(`
		INSERT INTO payments (order_id, method, status, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, paymentMethod, paymentStatus, totals.Total, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment record"})
		return
	}

	// 7. --- Ledger debit (current account only) ---
	if paymentMethod == models.PaymentCurrentAccount {
		_, err = tx.Exec(`
			INSERT INTO current_account_transactions
			(user_id, type, process_type, amount, description, order_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			dealerID, models.TxDebit, models.TxProcessOrder, totals.Total,
			fmt.Sprintf("Order #%s", orderNumber), orderID, now,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record ledger entry"})
			return
		}
	}

	// 8. --- Decrement stock ---
	for _, s := range snapshots {
		if s.VariantID != nil {
			_, err = tx.Exec("UPDATE product_variants SET stock = stock - ? WHERE id = ?", s.Quantity, *s.VariantID)
		} else {
			_, err = tx.Exec("UPDATE products SET stock = stock - ? WHERE id = ?", s.Quantity, s.ProductID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
			return
		}
	}

	// 9. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit order"})
		return
	}

	// 10. --- Post-commit side effects (fire-and-forget) ---
	h.notifyOrderCreated(dealerEmail, orderNumber, orderID, dealerID, orderStatus, input, totals, snapshots)

	c.JSON(http.StatusCreated, gin.H{
		"orderId":     orderID,
		"orderNumber": orderNumber,
		"status":      orderStatus,
		"total":       totals.Total,
	})
}

// notifyOrderCreated sends the confirmation + admin mails and publishes the
// order-created event. Failures are logged and otherwise ignored.
func (h *Handlers) notifyOrderCreated(dealerEmail, orderNumber string, orderID, dealerID int64, status string, input CheckoutInput, totals pricing.Totals, snapshots []lineSnapshot) {
	lines := make([]email.OrderLine, 0, len(snapshots))
	for _, s := range snapshots {
		variantInfo := ""
		if s.VariantInfo != nil {
			variantInfo = *s.VariantInfo
		}
		lines = append(lines, email.OrderLine{
			ProductName: s.ProductName,
			VariantInfo: variantInfo,
			Quantity:    s.Quantity,
			UnitPrice:   s.Line.UnitPrice,
			LineTotal:   s.Line.Total,
		})
	}

	go func() {
		if dealerEmail != "" {
			err := h.Notifier.SendOrderConfirmation(email.OrderConfirmation{
				To:           dealerEmail,
				OrderNumber:  orderNumber,
				CustomerName: input.ShippingAddress.Name,
				Items:        lines,
				Subtotal:     totals.Subtotal,
				Discount:     totals.DiscountAmount,
				Vat:          totals.VatAmount,
				Total:        totals.Total,
				Address:      input.ShippingAddress.Address,
				City:         input.ShippingAddress.City,
				District:     input.ShippingAddress.District,
				CargoCompany: input.CargoCompany,
			})
			if err != nil {
				logger.Error().Err(err).Str("orderNumber", orderNumber).Msg("order confirmation email failed")
			}
		}

		err := h.Notifier.SendAdminAlert(email.AdminAlert{
			OrderNumber:  orderNumber,
			CustomerName: input.ShippingAddress.Name,
			Total:        totals.Total,
			OrderID:      orderID,
			CargoCompany: input.CargoCompany,
		})
		if err != nil {
			logger.Error().Err(err).Str("orderNumber", orderNumber).Msg("admin alert email failed")
		}

		h.Events.Publish(context.Background(), events.OrderEvent{
			Type:        events.TypeOrderCreated,
			OrderID:     orderID,
			OrderNumber: orderNumber,
			UserID:      dealerID,
			Status:      status,
			Total:       totals.Total,
			OccurredAt:  time.Now(),
		})
	}()
}

//
// --- Order Retrieval (Dealer) ---
//

// GetMyOrders is the handler for GET /v1/dealer/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	dealerID := userIDRaw.(int64)

	query := `
		SELECT id, order_number, user_id, status, subtotal, discount_rate,
		       discount_amount, vat_amount, total, shipping_address,
		       cargo_company, tracking_number, notes, created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`

	orders, err := h.scanOrders(h.DB.Query(query, dealerID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/dealer/orders/:id
// Dealers can only see their own orders.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	dealerID := userIDRaw.(int64)
	orderID := c.Param("id")

	order, err := h.loadOrder("WHERE id = ? AND user_id = ?", orderID, dealerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

//
// --- Shared order loading helpers ---
//

func (h *Handlers) scanOrders(rows *sql.Rows, err error) ([]models.Order, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var addressJSON string
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountRate,
			&o.DiscountAmount, &o.VatAmount, &o.Total, &addressJSON,
			&o.CargoCompany, &o.TrackingNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(addressJSON), &o.ShippingAddress)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// loadOrder fetches one order with its items and payment. The where clause
// controls ownership scoping.
func (h *Handlers) loadOrder(where string, args ...interface{}) (*models.Order, error) {
	var o models.Order
	var addressJSON string
	query := `
		SELECT id, order_number, user_id, status, subtotal, discount_rate,
		       discount_amount, vat_amount, total, shipping_address,
		       cargo_company, tracking_number, notes, created_at, updated_at
		FROM orders ` + where
	err := h.DB.QueryRow(query, args...).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountRate,
		&o.DiscountAmount, &o.VatAmount, &o.Total, &addressJSON,
		&o.CargoCompany, &o.TrackingNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(addressJSON), &o.ShippingAddress)

	rows, err := h.DB.Query(`
		SELECT id, order_id, product_id, variant_id, product_name, variant_info,
		       quantity, unit_price, discount_rate, vat_rate, line_total, created_at
		FROM order_items WHERE order_id = ?`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.ProductName, &it.VariantInfo,
			&it.Quantity, &it.UnitPrice, &it.DiscountRate, &it.VatRate, &it.LineTotal, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var p models.Payment
	err = h.DB.QueryRow(`
		SELECT id, order_id, method, status, amount, created_at, updated_at
		FROM payments WHERE order_id = ?`, o.ID,
	).Scan(&p.ID, &p.OrderID, &p.Method, &p.Status, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	if err == nil {
		o.Payment = &p
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	return &o, nil
}

// generateOrderNumber builds the customer-facing order number: date plus a
// random suffix, e.g. ORD-20260901-4821.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), rand.Intn(10000))
}

func nullIfEmptyStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
