package domain

import "time"

// ProductStatus enumerates product lifecycle states.
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusGenerated ProductStatus = "generated"
	ProductStatusPublished ProductStatus = "published"
)

// ProductAttribute is a display-ordered key/value pair. Duplicate keys are
// allowed; order matters for display, not identity.
type ProductAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product is a catalog record. Image fields carry data URIs (or storage URLs
// once an object store is wired in front of the API).
type Product struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Price          float64            `json:"price"`
	Currency       string             `json:"currency"`
	Category       string             `json:"category"`
	Attributes     []ProductAttribute `json:"attributes"`
	OriginalImages []string           `json:"original_images"`
	ProductImages  []string           `json:"product_images"`
	EffectImages   []string           `json:"effect_images"`
	GridImages     []string           `json:"grid_images"`
	Status         ProductStatus      `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ProductUpdate describes a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Title          *string
	Description    *string
	Price          *float64
	Currency       *string
	Category       *string
	Attributes     []ProductAttribute
	OriginalImages []string
	ProductImages  []string
	EffectImages   []string
	GridImages     []string
	Status         *ProductStatus
}

// ProductInfo is the structured metadata block produced by the generative
// capability (or its deterministic fallback) for a set of source images.
type ProductInfo struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Category    string             `json:"category"`
	Attributes  []ProductAttribute `json:"attributes"`
}
