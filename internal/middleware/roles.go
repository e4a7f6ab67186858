package middleware

import (
	"database/sql"
	"net/http"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// These run AFTER AuthMiddleware: they read "userID" from the context,
// look up the account's role and status, and enforce permissions.
//

func queryRoleStatus(db *sql.DB, userID int64) (role, status string, err error) {
	err = db.QueryRow("SELECT role, status FROM users WHERE id = ?", userID).Scan(&role, &status)
	return role, status, err
}

// AdminMiddleware allows ADMIN and OPERATOR accounts through.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}
		userID := userIDRaw.(int64)

		role, _, err := queryRoleStatus(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		if role != models.RoleAdmin && role != models.RoleOperator {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required"})
			c.Abort()
			return
		}

		c.Set("userRole", role)
		c.Next()
	}
}

// DealerMiddleware allows only APPROVED dealer accounts through.
// Pending or suspended dealers can log in and browse, but not order.
func DealerMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}
		userID := userIDRaw.(int64)

		role, status, err := queryRoleStatus(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		if role != models.RoleDealer || status != models.StatusApproved {
			c.JSON(http.StatusForbidden, gin.H{"error": "Dealer approval required"})
			c.Abort()
			return
		}

		c.Set("userRole", role)
		c.Next()
	}
}
