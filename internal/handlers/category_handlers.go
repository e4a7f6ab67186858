package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

// GetAllCategories is the handler for GET /v1/categories
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, name, slug, image_url, is_active, created_at, updated_at
		FROM categories
		WHERE is_active = 1
		ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.ImageURL,
			&cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category row"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type CategoryInput struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug"`
	ImageURL string `json:"imageUrl"`
	IsActive *bool  `json:"isActive"`
}

// CreateCategory is the handler for POST /v1/admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categorySlug := input.Slug
	if categorySlug == "" {
		categorySlug = slug.Make(input.Name)
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO categories (name, slug, image_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.Name, categorySlug, nullIfEmpty(input.ImageURL), isActive, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	categoryID, _ := result.LastInsertId()

	if err := h.logAdminAction(adminID, "CREATE_CATEGORY", "Category",
		strconv.FormatInt(categoryID, 10), nil, input); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "categoryId": categoryID, "slug": categorySlug})
}

// UpdateCategory is the handler for PUT /v1/admin/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	categoryID := c.Param("id")

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categorySlug := input.Slug
	if categorySlug == "" {
		categorySlug = slug.Make(input.Name)
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	result, err := h.DB.Exec(`
		UPDATE categories SET name = ?, slug = ?, image_url = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, categorySlug, nullIfEmpty(input.ImageURL), isActive, time.Now(), categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if err := h.logAdminAction(adminID, "UPDATE_CATEGORY", "Category", categoryID, nil, input); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory is the handler for DELETE /v1/admin/categories/:id
// Soft delete; products keep their category_id.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	categoryID := c.Param("id")

	result, err := h.DB.Exec("UPDATE categories SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now(), categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if err := h.logAdminAction(adminID, "DELETE_CATEGORY", "Category", categoryID, nil, nil); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deactivated"})
}
