package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/cooderhasan/b2b/internal/pricing"
	"github.com/gin-gonic/gin"
)

//
// --- Current Account (Ledger) ---
//
// The ledger is append-only: debt is always derived as
// SUM(DEBIT) - SUM(CREDIT), never stored.
//

// loadLedger fetches a dealer's full ledger, newest first.
func (h *Handlers) loadLedger(userID int64) ([]models.CurrentAccountTransaction, error) {
	rows, err := h.DB.Query(`
		SELECT id, user_id, type, process_type, amount, description, order_id, created_at
		FROM current_account_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []models.CurrentAccountTransaction{}
	for rows.Next() {
		var t models.CurrentAccountTransaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.ProcessType, &t.Amount,
			&t.Description, &t.OrderID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// GetMyAccount is the handler for GET /v1/dealer/account
// Returns the dealer's ledger plus the derived summary.
func (h *Handlers) GetMyAccount(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var creditLimit float64
	err := h.DB.QueryRow("SELECT credit_limit FROM users WHERE id = ?", userID).Scan(&creditLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	txs, err := h.loadLedger(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	debt := pricing.CurrentDebt(txs)
	c.JSON(http.StatusOK, gin.H{
		"transactions":   txs,
		"currentDebt":    debt,
		"creditLimit":    creditLimit,
		"availableLimit": creditLimit - debt,
	})
}

//
// --- Admin: Ledger Management ---
//

// GetCustomerAccount is the handler for GET /v1/admin/customers/:id/account
func (h *Handlers) GetCustomerAccount(c *gin.Context) {
	customerID := c.Param("id")

	var userID int64
	var creditLimit float64
	err := h.DB.QueryRow("SELECT id, credit_limit FROM users WHERE id = ?", customerID).
		Scan(&userID, &creditLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customer"})
		return
	}

	txs, err := h.loadLedger(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	debt := pricing.CurrentDebt(txs)
	c.JSON(http.StatusOK, gin.H{
		"transactions":   txs,
		"currentDebt":    debt,
		"creditLimit":    creditLimit,
		"availableLimit": creditLimit - debt,
	})
}

type AddAccountTransactionInput struct {
	Type        string  `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	ProcessType string  `json:"processType" binding:"required,oneof=PAYMENT REFUND MANUAL"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
}

// AddAccountTransaction is the handler for
// POST /v1/admin/customers/:id/account/transactions
// Used by the back office to record received payments (CREDIT/PAYMENT) or
// manual corrections. ORDER entries are only ever written by checkout.
func (h *Handlers) AddAccountTransaction(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	customerID := c.Param("id")

	var input AddAccountTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE id = ? AND role = ?", customerID, models.RoleDealer).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dealer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customer"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO current_account_transactions
		(user_id, type, process_type, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, input.Type, input.ProcessType, input.Amount,
		nullIfEmpty(input.Description), time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	if err := h.logAdminActionTx(tx, adminID, "ADD_ACCOUNT_TRANSACTION", "User", customerID,
		nil, gin.H{"type": input.Type, "processType": input.ProcessType, "amount": input.Amount}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write admin log"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded"})
}
