package models

import (
	"database/sql"
	"time"
)

// Ledger entry types. The ledger is append-only; a dealer's debt is
// SUM(DEBIT) - SUM(CREDIT).
const (
	TxDebit  = "DEBIT"
	TxCredit = "CREDIT"

	TxProcessOrder   = "ORDER"
	TxProcessPayment = "PAYMENT"
	TxProcessRefund  = "REFUND"
	TxProcessManual  = "MANUAL"
)

// CurrentAccountTransaction is the model for the
// 'current_account_transactions' table.
type CurrentAccountTransaction struct {
	ID          int64          `json:"id" db:"id"`
	UserID      int64          `json:"userId" db:"user_id"`
	Type        string         `json:"type" db:"type"`
	ProcessType string         `json:"processType" db:"process_type"`
	Amount      float64        `json:"amount" db:"amount"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	OrderID     *int64         `json:"orderId,omitempty" db:"order_id"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}
