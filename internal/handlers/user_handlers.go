package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/cooderhasan/b2b/internal/auth"
	"github.com/cooderhasan/b2b/internal/models"
	"github.com/cooderhasan/b2b/internal/pricing"
	"github.com/gin-gonic/gin"
)

// --- Dealer Registration ---

// RegisterDealerInput is separate from models.User so callers cannot set
// id, role, status or commercial terms themselves.
type RegisterDealerInput struct {
	CompanyName string `json:"companyName" binding:"required"`
	TaxNumber   string `json:"taxNumber" binding:"required"`
	TaxOffice   string `json:"taxOffice"`
	ContactName string `json:"contactName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	District    string `json:"district"`
}

// RegisterDealer is the handler for POST /v1/register
// New accounts start as PENDING; an admin must approve them before they can
// place orders.
func (h *Handlers) RegisterDealer(c *gin.Context) {
	var input RegisterDealerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// Reject duplicate emails up front for a friendlier message than the
	// unique-index error.
	var exists int
	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", input.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, contact_name, phone_number,
		 discount_rate, credit_limit,
		 company_name, tax_number, tax_office, address, city, district,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		models.RoleDealer, models.StatusPending,
		input.Email, password.Hash, input.ContactName, input.PhoneNumber,
		nullIfEmpty(input.CompanyName), nullIfEmpty(input.TaxNumber), nullIfEmpty(input.TaxOffice),
		nullIfEmpty(input.Address), nullIfEmpty(input.City), nullIfEmpty(input.District),
		now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	userID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Dealer registered successfully, pending approval.",
		"userId":  userID,
	})
}

// --- Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := `SELECT id, role, status, email, password_hash, contact_name FROM users WHERE email = ?`
	err := h.DB.QueryRow(query, input.Email).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.PasswordHash, &user.ContactName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"role":        user.Role,
			"status":      user.Status,
			"email":       user.Email,
			"contactName": user.ContactName,
		},
	})
}

// --- Profile ---

// GetMyProfile is the handler for GET /v1/profile/me
// For dealers it includes the current-account summary (debt, limit,
// available) alongside the account fields.
func (h *Handlers) GetMyProfile(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var user models.User
	query := `
		SELECT id, role, status, email, contact_name, phone_number,
		       discount_rate, credit_limit,
		       company_name, tax_number, tax_office, address, city, district,
		       created_at, updated_at
		FROM users WHERE id = ?`
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.ContactName, &user.PhoneNumber,
		&user.DiscountRate, &user.CreditLimit,
		&user.CompanyName, &user.TaxNumber, &user.TaxOffice, &user.Address, &user.City, &user.District,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	resp := gin.H{"user": user}

	if user.Role == models.RoleDealer {
		txs, err := h.loadLedger(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load current account"})
			return
		}
		debt := pricing.CurrentDebt(txs)
		resp["currentAccount"] = gin.H{
			"currentDebt":    debt,
			"creditLimit":    user.CreditLimit,
			"availableLimit": user.CreditLimit - debt,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// nullIfEmpty maps "" to NULL so optional profile columns stay NULL instead
// of empty strings.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
