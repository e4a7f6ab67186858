package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/cooderhasan/b2b/internal/events"
	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Order Management ---
//

var validOrderStatuses = map[string]bool{
	models.OrderPending:    true,
	models.OrderConfirmed:  true,
	models.OrderProcessing: true,
	models.OrderShipped:    true,
	models.OrderDelivered:  true,
	models.OrderCancelled:  true,
}

// GetAllOrders is the handler for GET /v1/admin/orders
// Optional ?status= filter.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	query := `
		SELECT o.id, o.order_number, o.user_id, o.status, o.subtotal, o.discount_rate,
		       o.discount_amount, o.vat_amount, o.total, o.shipping_address,
		       o.cargo_company, o.tracking_number, o.notes, o.created_at, o.updated_at
		FROM orders o`
	args := []interface{}{}

	if status := c.Query("status"); status != "" {
		if !validOrderStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}
		query += " WHERE o.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC"

	orders, err := h.scanOrders(h.DB.Query(query, args...))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderAdmin is the handler for GET /v1/admin/orders/:id
func (h *Handlers) GetOrderAdmin(c *gin.Context) {
	order, err := h.loadOrder("WHERE id = ?", c.Param("id"))
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

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PATCH /v1/admin/orders/:id/status
// Moving an order to CANCELLED restores its stock and, for a completed
// current-account payment, appends a compensating CREDIT ledger entry.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	orderID := c.Param("id")

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validOrderStatuses[input.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var (
		id, userID  int64
		orderNumber string
		oldStatus   string
		total       float64
	)
	err = tx.QueryRow(
		"SELECT id, user_id, order_number, status, total FROM orders WHERE id = ? FOR UPDATE",
		orderID,
	).Scan(&id, &userID, &orderNumber, &oldStatus, &total)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if oldStatus == input.Status {
		c.JSON(http.StatusOK, gin.H{"message": "Status unchanged", "status": oldStatus})
		return
	}
	if oldStatus == models.OrderCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cancelled orders cannot change status"})
		return
	}

	if input.Status == models.OrderCancelled {
		if err := h.cancelOrderTx(tx, id, userID, orderNumber, total); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
			return
		}
	} else {
		_, err = tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
			input.Status, time.Now(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}
	}

	if err := h.logAdminActionTx(tx, adminID, "UPDATE_ORDER_STATUS", "Order", orderID,
		gin.H{"status": oldStatus}, gin.H{"status": input.Status}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write admin log"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit status change"})
		return
	}

	go h.Events.Publish(context.Background(), events.OrderEvent{
		Type:        events.TypeOrderStatusChanged,
		OrderID:     id,
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      input.Status,
		Total:       total,
		OccurredAt:  time.Now(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": input.Status})
}

type UpdateOrderTrackingInput struct {
	CargoCompany   string `json:"cargoCompany"`
	TrackingNumber string `json:"trackingNumber" binding:"required"`
}

// UpdateOrderTracking is the handler for PATCH /v1/admin/orders/:id/tracking
func (h *Handlers) UpdateOrderTracking(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	orderID := c.Param("id")

	var input UpdateOrderTrackingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE orders
		SET tracking_number = ?, cargo_company = COALESCE(?, cargo_company), updated_at = ?
		WHERE id = ?`,
		input.TrackingNumber, nullIfEmpty(input.CargoCompany), time.Now(), orderID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tracking"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := h.logAdminAction(adminID, "UPDATE_ORDER_TRACKING", "Order", orderID,
		nil, gin.H{"trackingNumber": input.TrackingNumber, "cargoCompany": input.CargoCompany}); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tracking updated"})
}

// cancelOrderTx marks the order cancelled, restores the stock its items
// decremented, and reverses a completed current-account debit with a CREDIT
// entry. Must run inside the caller's transaction.
func (h *Handlers) cancelOrderTx(tx *sql.Tx, orderID, userID int64, orderNumber string, total float64) error {
	_, err := tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		models.OrderCancelled, time.Now(), orderID)
	if err != nil {
		return err
	}

	rows, err := tx.Query(
		"SELECT product_id, variant_id, quantity FROM order_items WHERE order_id = ?",
		orderID,
	)
	if err != nil {
		return err
	}

	type restock struct {
		productID int64
		variantID *int64
		quantity  int
	}
	var items []restock
	for rows.Next() {
		var it restock
		if err := rows.Scan(&it.productID, &it.variantID, &it.quantity); err != nil {
			rows.Close()
			return err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, it := range items {
		if it.variantID != nil {
			_, err = tx.Exec("UPDATE product_variants SET stock = stock + ? WHERE id = ?", it.quantity, *it.variantID)
		} else {
			_, err = tx.Exec("UPDATE products SET stock = stock + ? WHERE id = ?", it.quantity, it.productID)
		}
		if err != nil {
			return err
		}
	}

	var method, status string
	err = tx.QueryRow("SELECT method, status FROM payments WHERE order_id = ?", orderID).Scan(&method, &status)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if method == models.PaymentCurrentAccount && status == models.PaymentCompleted {
		_, err = tx.Exec(`
			INSERT INTO current_account_transactions
			(user_id, type, process_type, amount, description, order_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, models.TxCredit, models.TxProcessRefund, total,
			fmt.Sprintf("Cancellation of order #%s", orderNumber), orderID, time.Now(),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

//
// --- Background Reaper ---
//

// ProcessOverdueOrders cancels PENDING bank-transfer orders older than the
// configured age, restoring their stock. It runs from a ticker goroutine in
// cmd/api.
func (h *Handlers) ProcessOverdueOrders() {
	cutoff := time.Now().Add(-h.PendingOrderMaxAge)

	rows, err := h.DB.Query(`
		SELECT o.id, o.user_id, o.order_number, o.total
		FROM orders o
		JOIN payments p ON p.order_id = o.id
		WHERE o.status = ? AND p.method = ? AND o.created_at < ?`,
		models.OrderPending, models.PaymentBankTransfer, cutoff,
	)
	if err != nil {
		logger.Error().Err(err).Msg("reaper: query overdue orders")
		return
	}

	type overdue struct {
		id, userID  int64
		orderNumber string
		total       float64
	}
	var stale []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.id, &o.userID, &o.orderNumber, &o.total); err != nil {
			rows.Close()
			logger.Error().Err(err).Msg("reaper: scan overdue order")
			return
		}
		stale = append(stale, o)
	}
	rows.Close()

	for _, o := range stale {
		tx, err := h.DB.Begin()
		if err != nil {
			logger.Error().Err(err).Msg("reaper: begin tx")
			continue
		}

		// Re-check under lock: an admin may have moved it meanwhile.
		var status string
		err = tx.QueryRow("SELECT status FROM orders WHERE id = ? FOR UPDATE", o.id).Scan(&status)
		if err != nil || status != models.OrderPending {
			tx.Rollback()
			continue
		}

		if err := h.cancelOrderTx(tx, o.id, o.userID, o.orderNumber, o.total); err != nil {
			tx.Rollback()
			logger.Error().Err(err).Int64("orderId", o.id).Msg("reaper: cancel order")
			continue
		}

		if err := tx.Commit(); err != nil {
			logger.Error().Err(err).Int64("orderId", o.id).Msg("reaper: commit")
			continue
		}

		logger.Info().Int64("orderId", o.id).Str("orderNumber", o.orderNumber).
			Msg("reaper: cancelled overdue pending order")

		go h.Events.Publish(context.Background(), events.OrderEvent{
			Type:        events.TypeOrderStatusChanged,
			OrderID:     o.id,
			OrderNumber: o.orderNumber,
			UserID:      o.userID,
			Status:      models.OrderCancelled,
			Total:       o.total,
			OccurredAt:  time.Now(),
		})
	}
}
