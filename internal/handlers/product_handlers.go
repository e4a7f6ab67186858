package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cooderhasan/b2b/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Public Catalog ---
//

const defaultPageSize = 24

// GetProducts is the handler for GET /v1/products
// Filters: ?category= (slug), ?brand= (slug), ?search=, ?page=.
// Only active products are visible on the storefront.
func (h *Handlers) GetProducts(c *gin.Context) {
	query := `
		SELECT p.id, p.name, p.slug, p.sku, p.description, p.origin,
		       p.brand_id, p.category_id, p.list_price, p.vat_rate,
		       p.min_quantity, p.stock, p.is_featured, p.is_new, p.is_best_seller,
		       p.is_active, p.images, p.created_at, p.updated_at,
		       b.name, cat.name
		FROM products p
		LEFT JOIN brands b ON p.brand_id = b.id
		LEFT JOIN categories cat ON p.category_id = cat.id
		WHERE p.is_active = 1`
	args := []interface{}{}

	if categorySlug := c.Query("category"); categorySlug != "" {
		query += " AND cat.slug = ?"
		args = append(args, categorySlug)
	}
	if brandSlug := c.Query("brand"); brandSlug != "" {
		query += " AND b.slug = ?"
		args = append(args, brandSlug)
	}
	if search := c.Query("search"); search != "" {
		query += " AND (p.name LIKE ? OR p.sku LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	query += " ORDER BY p.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, defaultPageSize, (page-1)*defaultPageSize)

	products, err := h.scanProducts(h.DB.Query(query, args...))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "page": page})
}

// GetFeaturedProducts is the handler for GET /v1/products/featured
func (h *Handlers) GetFeaturedProducts(c *gin.Context) {
	query := `
		SELECT p.id, p.name, p.slug, p.sku, p.description, p.origin,
		       p.brand_id, p.category_id, p.list_price, p.vat_rate,
		       p.min_quantity, p.stock, p.is_featured, p.is_new, p.is_best_seller,
		       p.is_active, p.images, p.created_at, p.updated_at,
		       b.name, cat.name
		FROM products p
		LEFT JOIN brands b ON p.brand_id = b.id
		LEFT JOIN categories cat ON p.category_id = cat.id
		WHERE p.is_active = 1 AND p.is_featured = 1
		ORDER BY p.updated_at DESC
		LIMIT 12`

	products, err := h.scanProducts(h.DB.Query(query))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch featured products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductBySlug is the handler for GET /v1/products/:slug
// Includes the product's active variants.
func (h *Handlers) GetProductBySlug(c *gin.Context) {
	productSlug := c.Param("slug")

	query := `
		SELECT p.id, p.name, p.slug, p.sku, p.description, p.origin,
		       p.brand_id, p.category_id, p.list_price, p.vat_rate,
		       p.min_quantity, p.stock, p.is_featured, p.is_new, p.is_best_seller,
		       p.is_active, p.images, p.created_at, p.updated_at,
		       b.name, cat.name
		FROM products p
		LEFT JOIN brands b ON p.brand_id = b.id
		LEFT JOIN categories cat ON p.category_id = cat.id
		WHERE p.slug = ? AND p.is_active = 1`

	products, err := h.scanProducts(h.DB.Query(query, productSlug))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	product := products[0]

	variants, err := h.loadVariants(product.ID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}
	product.Variants = variants

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handlers) scanProducts(rows *sql.Rows, err error) ([]models.Product, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		var imagesJSON sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Origin,
			&p.BrandID, &p.CategoryID, &p.ListPrice, &p.VatRate,
			&p.MinQuantity, &p.Stock, &p.IsFeatured, &p.IsNew, &p.IsBestSeller,
			&p.IsActive, &imagesJSON, &p.CreatedAt, &p.UpdatedAt,
			&p.BrandName, &p.CategoryName,
		); err != nil {
			return nil, err
		}
		if imagesJSON.Valid && imagesJSON.String != "" {
			_ = json.Unmarshal([]byte(imagesJSON.String), &p.Images)
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// loadVariants fetches a product's variants, optionally only active ones.
func (h *Handlers) loadVariants(productID int64, activeOnly bool) ([]models.ProductVariant, error) {
	query := `
		SELECT id, product_id, color, size, sku, barcode, stock,
		       price_adjustment, is_active, created_at, updated_at
		FROM product_variants
		WHERE product_id = ?`
	if activeOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY id"

	rows, err := h.DB.Query(query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []models.ProductVariant{}
	for rows.Next() {
		var v models.ProductVariant
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Color, &v.Size, &v.SKU, &v.Barcode, &v.Stock,
			&v.PriceAdjustment, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

//
// --- Admin: Product CRUD ---
//

type VariantInput struct {
	Color           string  `json:"color"`
	Size            string  `json:"size"`
	SKU             string  `json:"sku"`
	Barcode         string  `json:"barcode"`
	Stock           int     `json:"stock" binding:"gte=0"`
	PriceAdjustment float64 `json:"priceAdjustment"`
	IsActive        *bool   `json:"isActive"`
}

type ProductInput struct {
	Name         string         `json:"name" binding:"required"`
	Slug         string         `json:"slug"`
	SKU          string         `json:"sku"`
	Barcode      string         `json:"barcode"`
	Description  string         `json:"description"`
	Origin       string         `json:"origin"`
	BrandID      *int64         `json:"brandId"`
	CategoryID   *int64         `json:"categoryId"`
	ListPrice    float64        `json:"listPrice" binding:"required,gt=0"`
	VatRate      float64        `json:"vatRate" binding:"gte=0,lte=100"`
	MinQuantity  int            `json:"minQuantity" binding:"omitempty,gte=1"`
	Stock        int            `json:"stock" binding:"gte=0"`
	IsFeatured   bool           `json:"isFeatured"`
	IsNew        bool           `json:"isNew"`
	IsBestSeller bool           `json:"isBestSeller"`
	IsActive     *bool          `json:"isActive"`
	Images       []string       `json:"images"`
	Variants     []VariantInput `json:"variants"`
}

// CreateProduct is the handler for POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productSlug := input.Slug
	if productSlug == "" {
		productSlug = slug.Make(input.Name)
	}
	minQuantity := input.MinQuantity
	if minQuantity == 0 {
		minQuantity = 1
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	imagesJSON, err := json.Marshal(input.Images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode images"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.Exec(`
		INSERT INTO products
		(name, slug, sku, barcode, description, origin, brand_id, category_id,
		 list_price, vat_rate, min_quantity, stock,
		 is_featured, is_new, is_best_seller, is_active, images,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Name, productSlug, nullIfEmpty(input.SKU), nullIfEmpty(input.Barcode),
		nullIfEmpty(input.Description), nullIfEmpty(input.Origin),
		input.BrandID, input.CategoryID,
		input.ListPrice, input.VatRate, minQuantity, input.Stock,
		input.IsFeatured, input.IsNew, input.IsBestSeller, isActive, string(imagesJSON),
		now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	productID, _ := result.LastInsertId()

	if err := insertVariants(tx, productID, input.Variants, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create variants"})
		return
	}

	if err := h.logAdminActionTx(tx, adminID, "CREATE_PRODUCT", "Product",
		strconv.FormatInt(productID, 10), nil, input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write admin log"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": productID, "slug": productSlug})
}

// UpdateProduct is the handler for PUT /v1/admin/products/:id
// Variants are replaced wholesale: existing rows are deleted and the
// submitted set inserted.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productSlug := input.Slug
	if productSlug == "" {
		productSlug = slug.Make(input.Name)
	}
	minQuantity := input.MinQuantity
	if minQuantity == 0 {
		minQuantity = 1
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	imagesJSON, err := json.Marshal(input.Images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode images"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var oldName string
	var oldPrice float64
	err = tx.QueryRow("SELECT name, list_price FROM products WHERE id = ?", productID).Scan(&oldName, &oldPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	now := time.Now()
	_, err = tx.Exec(`
		UPDATE products SET
		 name = ?, slug = ?, sku = ?, barcode = ?, description = ?, origin = ?,
		 brand_id = ?, category_id = ?, list_price = ?, vat_rate = ?,
		 min_quantity = ?, stock = ?, is_featured = ?, is_new = ?,
		 is_best_seller = ?, is_active = ?, images = ?, updated_at = ?
		WHERE id = ?`,
		input.Name, productSlug, nullIfEmpty(input.SKU), nullIfEmpty(input.Barcode),
		nullIfEmpty(input.Description), nullIfEmpty(input.Origin),
		input.BrandID, input.CategoryID, input.ListPrice, input.VatRate,
		minQuantity, input.Stock, input.IsFeatured, input.IsNew,
		input.IsBestSeller, isActive, string(imagesJSON), now, productID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	if _, err := tx.Exec("DELETE FROM product_variants WHERE product_id = ?", productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace variants"})
		return
	}
	pid, _ := strconv.ParseInt(productID, 10, 64)
	if err := insertVariants(tx, pid, input.Variants, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create variants"})
		return
	}

	if err := h.logAdminActionTx(tx, adminID, "UPDATE_PRODUCT", "Product", productID,
		gin.H{"name": oldName, "listPrice": oldPrice}, input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write admin log"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit product update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "slug": productSlug})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id
// Soft delete: historical order items keep referencing the product row.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	adminIDRaw, _ := c.Get("userID")
	adminID := adminIDRaw.(int64)
	productID := c.Param("id")

	result, err := h.DB.Exec("UPDATE products SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.logAdminAction(adminID, "DELETE_PRODUCT", "Product", productID, nil, nil); err != nil {
		logger.Error().Err(err).Msg("admin log write failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}

// GetProductAdmin is the handler for GET /v1/admin/products/:id
// Unlike the public endpoint it returns inactive products and variants too.
func (h *Handlers) GetProductAdmin(c *gin.Context) {
	productID := c.Param("id")

	query := `
		SELECT p.id, p.name, p.slug, p.sku, p.description, p.origin,
		       p.brand_id, p.category_id, p.list_price, p.vat_rate,
		       p.min_quantity, p.stock, p.is_featured, p.is_new, p.is_best_seller,
		       p.is_active, p.images, p.created_at, p.updated_at,
		       b.name, cat.name
		FROM products p
		LEFT JOIN brands b ON p.brand_id = b.id
		LEFT JOIN categories cat ON p.category_id = cat.id
		WHERE p.id = ?`

	products, err := h.scanProducts(h.DB.Query(query, productID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	product := products[0]

	variants, err := h.loadVariants(product.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}
	product.Variants = variants

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func insertVariants(tx *sql.Tx, productID int64, variants []VariantInput, now time.Time) error {
	if len(variants) == 0 {
		return nil
	}
	query := `
		INSERT INTO product_variants
		(product_id, color, size, sku, barcode, stock, price_adjustment, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, v := range variants {
		active := true
		if v.IsActive != nil {
			active = *v.IsActive
		}
		_, err := tx.Exec(query,
			productID, nullIfEmpty(v.Color), nullIfEmpty(v.Size),
			nullIfEmpty(v.SKU), nullIfEmpty(v.Barcode),
			v.Stock, v.PriceAdjustment, active, now, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
