package models

import (
	"time"
)

// Product is the model for the 'products' table.
// Pointers are used for nullable columns so JSON stays clean.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	SKU         *string `json:"sku,omitempty" db:"sku"`
	Barcode     *string `json:"barcode,omitempty" db:"barcode"`
	Description *string `json:"description,omitempty" db:"description"`
	Origin      *string `json:"origin,omitempty" db:"origin"`

	BrandID    *int64 `json:"brandId,omitempty" db:"brand_id"`
	CategoryID *int64 `json:"categoryId,omitempty" db:"category_id"`

	// --- Pricing & Stock ---
	ListPrice   float64 `json:"listPrice" db:"list_price"`
	VatRate     float64 `json:"vatRate" db:"vat_rate"`
	MinQuantity int     `json:"minQuantity" db:"min_quantity"`
	Stock       int     `json:"stock" db:"stock"`

	// --- Storefront flags ---
	IsFeatured   bool `json:"isFeatured" db:"is_featured"`
	IsNew        bool `json:"isNew" db:"is_new"`
	IsBestSeller bool `json:"isBestSeller" db:"is_best_seller"`
	IsActive     bool `json:"isActive" db:"is_active"`

	// Stored as a JSON array of URLs in the DB.
	Images []string `json:"images" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually, not columns)
	BrandName    *string          `json:"brandName,omitempty" db:"-"`
	CategoryName *string          `json:"categoryName,omitempty" db:"-"`
	Variants     []ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant is the model for the 'product_variants' table.
// A variant carries its own stock; its selling price is the parent's list
// price plus PriceAdjustment.
type ProductVariant struct {
	ID              int64     `json:"id" db:"id"`
	ProductID       int64     `json:"productId" db:"product_id"`
	Color           *string   `json:"color,omitempty" db:"color"`
	Size            *string   `json:"size,omitempty" db:"size"`
	SKU             *string   `json:"sku,omitempty" db:"sku"`
	Barcode         *string   `json:"barcode,omitempty" db:"barcode"`
	Stock           int       `json:"stock" db:"stock"`
	PriceAdjustment float64   `json:"priceAdjustment" db:"price_adjustment"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Label renders a short human-readable description of the variant
// ("Red / XL") for order snapshots and emails.
func (v *ProductVariant) Label() string {
	switch {
	case v.Color != nil && v.Size != nil:
		return *v.Color + " / " + *v.Size
	case v.Color != nil:
		return *v.Color
	case v.Size != nil:
		return *v.Size
	default:
		return ""
	}
}
