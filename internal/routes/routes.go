package routes

import (
	"net/http"

	"github.com/cooderhasan/b2b/internal/handlers"
	"github.com/cooderhasan/b2b/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the storefront frontend to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Health ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth (Public) ---
		v1.POST("/register", h.RegisterDealer)
		v1.POST("/login", h.Login)

		// --- Public Catalog ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/featured", h.GetFeaturedProducts)
		v1.GET("/products/:slug", h.GetProductBySlug)
		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/brands", h.GetAllBrands)

		// --- Protected (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/profile/me", h.GetMyProfile)
		}

		// --- Dealer-Only Routes (Approved Dealers) ---
		dealer := v1.Group("/dealer")
		dealer.Use(middleware.AuthMiddleware())
		dealer.Use(middleware.DealerMiddleware(h.DB))
		{
			dealer.POST("/checkout", h.Checkout)
			dealer.GET("/orders", h.GetMyOrders)
			dealer.GET("/orders/:id", h.GetOrderDetails)
			dealer.GET("/account", h.GetMyAccount)
		}

		// --- Admin Routes (Admin or Operator) ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.GET("/dashboard-stats", h.GetAdminStats)
			admin.GET("/logs", h.GetAdminLogs)

			admin.POST("/products", h.CreateProduct)
			admin.GET("/products/:id", h.GetProductAdmin)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.POST("/brands", h.CreateBrand)
			admin.PUT("/brands/:id", h.UpdateBrand)
			admin.DELETE("/brands/:id", h.DeleteBrand)

			admin.GET("/orders", h.GetAllOrders)
			admin.GET("/orders/:id", h.GetOrderAdmin)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
			admin.PATCH("/orders/:id/tracking", h.UpdateOrderTracking)

			admin.GET("/customers", h.GetCustomers)
			admin.PATCH("/customers/:id/status", h.UpdateCustomerStatus)
			admin.PATCH("/customers/:id/terms", h.UpdateCustomerTerms)
			admin.GET("/customers/:id/account", h.GetCustomerAccount)
			admin.POST("/customers/:id/account/transactions", h.AddAccountTransaction)
		}
	}

	return router
}
