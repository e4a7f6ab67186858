package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Customer Administration ---
//

// GetCustomers is the handler for GET /v1/admin/customers
// Optional ?role=, ?status= and ?search= (email / contact / company) filters.
func (h *Handlers) GetCustomers(c *gin.Context) {
	query := `
		SELECT id, role, status, email, contact_name, phone_number,
		       discount_rate, credit_limit, company_name, tax_number,
		       city, created_at
		FROM users
		WHERE role != ?`
	args := []interface{}{models.RoleAdmin}

	if role := c.Query("role"); role != "" {
		query += " AND role = ?"
		args = append(args, role)
	}
	if status := c.Query("status"); status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if search := c.Query("search"); search != "" {
		query += " AND (email LIKE ? OR contact_name LIKE ? OR company_name LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	defer rows.Close()

	customers := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Role, &u.Status, &u.Email, &u.ContactName, &u.PhoneNumber,
			&u.DiscountRate, &u.CreditLimit, &u.CompanyName, &u.TaxNumber,
			&u.City, &u.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan customer row"})
			return
		}
		customers = append(customers, u)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating customer rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

type UpdateCustomerStatusInput struct {
	Status string  `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED SUSPENDED"`
	Role   *string `json:"role" binding:"omitempty,oneof=DEALER OPERATOR"`
}

// UpdateCustomerStatus is the handler for PATCH /v1/admin/customers/:id/status
// Approving a PENDING account is what turns a registration into an ordering
// dealer.
func (h *Handlers) UpdateCustomerStatus(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	customerID := c.Param("id")

	var input UpdateCustomerStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var oldStatus, oldRole string
	err := h.DB.QueryRow("SELECT status, role FROM users WHERE id = ?", customerID).Scan(&oldStatus, &oldRole)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customer"})
		return
	}

	newRole := oldRole
	if input.Role != nil {
		newRole = *input.Role
	}

	_, err = h.DB.Exec("UPDATE users SET status = ?, role = ?, updated_at = ? WHERE id = ?",
		input.Status, newRole, time.Now(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	if err := h.logAdminAction(adminID, "UPDATE_CUSTOMER_STATUS", "User", customerID,
		gin.H{"status": oldStatus, "role": oldRole},
		gin.H{"status": input.Status, "role": newRole}); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated", "status": input.Status, "role": newRole})
}

type UpdateCustomerTermsInput struct {
	DiscountRate *float64 `json:"discountRate" binding:"omitempty,gte=0,lte=100"`
	CreditLimit  *float64 `json:"creditLimit" binding:"omitempty,gte=0"`
}

// UpdateCustomerTerms is the handler for PATCH /v1/admin/customers/:id/terms
// Sets the dealer's discount rate and/or current-account credit limit.
func (h *Handlers) UpdateCustomerTerms(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	customerID := c.Param("id")

	var input UpdateCustomerTermsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.DiscountRate == nil && input.CreditLimit == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	var oldDiscount, oldLimit float64
	err := h.DB.QueryRow("SELECT discount_rate, credit_limit FROM users WHERE id = ? AND role = ?",
		customerID, models.RoleDealer).Scan(&oldDiscount, &oldLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dealer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dealer"})
		return
	}

	newDiscount, newLimit := oldDiscount, oldLimit
	if input.DiscountRate != nil {
		newDiscount = *input.DiscountRate
	}
	if input.CreditLimit != nil {
		newLimit = *input.CreditLimit
	}

	_, err = h.DB.Exec("UPDATE users SET discount_rate = ?, credit_limit = ?, updated_at = ? WHERE id = ?",
		newDiscount, newLimit, time.Now(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dealer terms"})
		return
	}

	if err := h.logAdminAction(adminID, "UPDATE_CUSTOMER_TERMS", "User", customerID,
		gin.H{"discountRate": oldDiscount, "creditLimit": oldLimit},
		gin.H{"discountRate": newDiscount, "creditLimit": newLimit}); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Dealer terms updated",
		"discountRate": newDiscount,
		"creditLimit":  newLimit,
	})
}

//
// --- Admin: Dashboard Stats ---
//

type AdminStats struct {
	PendingCustomers int     `json:"pendingCustomers"`
	PendingOrders    int     `json:"pendingOrders"`
	TotalOrders      int     `json:"totalOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ActiveProducts   int     `json:"activeProducts"`
	LowStockProducts int     `json:"lowStockProducts"`
}

// GetAdminStats is the handler for GET /v1/admin/dashboard-stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE role = ? AND status = ?",
		models.RoleDealer, models.StatusPending).Scan(&stats.PendingCustomers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending customers"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE status = ?",
		models.OrderPending).Scan(&stats.PendingOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending orders"})
		return
	}

	var revenue sql.NullFloat64
	err = h.DB.QueryRow("SELECT COUNT(*), SUM(CASE WHEN status != ? THEN total ELSE 0 END) FROM orders",
		models.OrderCancelled).Scan(&stats.TotalOrders, &revenue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate orders"})
		return
	}
	stats.TotalRevenue = revenue.Float64

	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE is_active = 1").Scan(&stats.ActiveProducts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE is_active = 1 AND stock <= min_quantity").
		Scan(&stats.LowStockProducts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count low-stock products"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

//
// --- Admin Log Helpers ---
//

// logAdminActionTx appends an audit row inside an existing transaction.
func (h *Handlers) logAdminActionTx(tx *sql.Tx, adminID int64, action, entityType, entityID string, oldData, newData interface{}) error {
	oldJSON, newJSON, err := marshalLogData(oldData, newData)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO admin_logs (admin_id, action, entity_type, entity_id, old_data, new_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		adminID, action, entityType, entityID, oldJSON, newJSON, time.Now())
	return err
}

// logAdminAction appends an audit row outside any transaction.
func (h *Handlers) logAdminAction(adminID int64, action, entityType, entityID string, oldData, newData interface{}) error {
	oldJSON, newJSON, err := marshalLogData(oldData, newData)
	if err != nil {
		return err
	}
	_, err = h.DB.Exec(`
		INSERT INTO admin_logs (admin_id, action, entity_type, entity_id, old_data, new_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		adminID, action, entityType, entityID, oldJSON, newJSON, time.Now())
	return err
}

func marshalLogData(oldData, newData interface{}) (interface{}, interface{}, error) {
	var oldJSON, newJSON interface{}
	if oldData != nil {
		b, err := json.Marshal(oldData)
		if err != nil {
			return nil, nil, err
		}
		oldJSON = string(b)
	}
	if newData != nil {
		b, err := json.Marshal(newData)
		if err != nil {
			return nil, nil, err
		}
		newJSON = string(b)
	}
	return oldJSON, newJSON, nil
}

// GetAdminLogs is the handler for GET /v1/admin/logs
func (h *Handlers) GetAdminLogs(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, admin_id, action, entity_type, entity_id, old_data, new_data, created_at
		FROM admin_logs
		ORDER BY created_at DESC
		LIMIT 200`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admin logs"})
		return
	}
	defer rows.Close()

	logs := []models.AdminLog{}
	for rows.Next() {
		var l models.AdminLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.EntityType, &l.EntityID,
			&l.OldData, &l.NewData, &l.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan log row"})
			return
		}
		logs = append(logs, l)
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
