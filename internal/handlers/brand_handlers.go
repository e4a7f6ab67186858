package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

// GetAllBrands is the handler for GET /v1/brands
func (h *Handlers) GetAllBrands(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, name, slug, logo_url, is_active, created_at, updated_at
		FROM brands
		WHERE is_active = 1
		ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brands"})
		return
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan brand row"})
			return
		}
		brands = append(brands, b)
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

type BrandInput struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug"`
	LogoURL  string `json:"logoUrl"`
	IsActive *bool  `json:"isActive"`
}

// CreateBrand is the handler for POST /v1/admin/brands
func (h *Handlers) CreateBrand(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)

	var input BrandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brandSlug := input.Slug
	if brandSlug == "" {
		brandSlug = slug.Make(input.Name)
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO brands (name, slug, logo_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.Name, brandSlug, nullIfEmpty(input.LogoURL), isActive, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create brand"})
		return
	}
	brandID, _ := result.LastInsertId()

	if err := h.logAdminAction(adminID, "CREATE_BRAND", "Brand",
		strconv.FormatInt(brandID, 10), nil, input); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Brand created", "brandId": brandID, "slug": brandSlug})
}

// UpdateBrand is the handler for PUT /v1/admin/brands/:id
func (h *Handlers) UpdateBrand(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	brandID := c.Param("id")

	var input BrandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brandSlug := input.Slug
	if brandSlug == "" {
		brandSlug = slug.Make(input.Name)
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	result, err := h.DB.Exec(`
		UPDATE brands SET name = ?, slug = ?, logo_url = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, brandSlug, nullIfEmpty(input.LogoURL), isActive, time.Now(), brandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update brand"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	if err := h.logAdminAction(adminID, "UPDATE_BRAND", "Brand", brandID, nil, input); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Brand updated"})
}

// DeleteBrand is the handler for DELETE /v1/admin/brands/:id
func (h *Handlers) DeleteBrand(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	brandID := c.Param("id")

	result, err := h.DB.Exec("UPDATE brands SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now(), brandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete brand"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}

	if err := h.logAdminAction(adminID, "DELETE_BRAND", "Brand", brandID, nil, nil); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Brand deactivated"})
}
