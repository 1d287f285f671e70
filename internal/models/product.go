package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the store's own product row. This service only reads it for
// SKU/barcode matching; ownership lives with the products service.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(500)" json:"name"`
	SKU  string    `gorm:"type:varchar(255);index:idx_products_sku" json:"sku"`

	// Free-form attributes; barcodes live somewhere inside this blob, which is
	// why barcode matching is a pattern search rather than an indexed lookup.
	KeyProperties JSONB `gorm:"type:jsonb;default:'{}'" json:"keyProperties,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}
