package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB custom type for PostgreSQL JSONB
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(j))
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*j = JSONB(m)
	return nil
}

// JSONBArray custom type for a PostgreSQL JSONB array column
type JSONBArray []map[string]interface{}

func (a JSONBArray) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *JSONBArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Vendor represents an external supplier whose catalog is imported into the store.
// Created lazily on first import for a vendor code; never deleted by this service.
type Vendor struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	VendorCode  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_vendors_code" json:"vendorCode"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Products []VendorProduct `gorm:"foreignKey:VendorID" json:"products,omitempty"`
}

// TableName specifies the table name for Vendor
func (Vendor) TableName() string {
	return "vendors"
}

// VendorProduct links a product on the vendor's platform to an internal product.
// One row per (vendor_id, vendor_product_id); repeated imports update the price
// row in place instead of re-inserting.
type VendorProduct struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID *uuid.UUID `gorm:"type:uuid;index:idx_vendor_products_product" json:"productId,omitempty"`
	VendorID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_products_vendor_ext,priority:1" json:"vendorId"`

	// Vendor's native identifiers
	VendorProductID string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_vendor_products_vendor_ext,priority:2" json:"vendorProductId"`
	VendorSKU       string  `gorm:"type:varchar(255);index:idx_vendor_products_sku" json:"vendorSku"`
	VendorName      string  `gorm:"type:varchar(500)" json:"vendorName"`
	Barcode         *string `gorm:"type:varchar(100)" json:"barcode,omitempty"`

	IsMatched bool `gorm:"default:false;index:idx_vendor_products_matched" json:"isMatched"`
	IsActive  bool `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Vendor  *Vendor      `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Product *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Price   *VendorPrice `gorm:"foreignKey:VendorProductID" json:"price,omitempty"`
}

// TableName specifies the table name for VendorProduct
func (VendorProduct) TableName() string {
	return "vendor_products"
}

// VendorPrice is the current price/stock snapshot for a vendor product link.
// Overwritten on every import; no history is kept.
type VendorPrice struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VendorProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_prices_link" json:"vendorProductId"`
	VendorID        uuid.UUID `gorm:"type:uuid;not null;index:idx_vendor_prices_vendor" json:"vendorId"`

	Price         float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency      string  `gorm:"type:varchar(3);default:'TRY'" json:"currency"`
	StockQuantity int     `gorm:"default:0" json:"stockQuantity"`
	StockLocation *string `gorm:"type:varchar(255)" json:"stockLocation,omitempty"`

	LastUpdated time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastUpdated"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for VendorPrice
func (VendorPrice) TableName() string {
	return "vendor_prices"
}

// VendorImportLog is an append-only audit record of one import run.
// Written once per invocation and never read back by the import path.
type VendorImportLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VendorID uuid.UUID `gorm:"type:uuid;not null;index:idx_vendor_import_logs_vendor" json:"vendorId"`

	TotalProducts   int `gorm:"default:0" json:"totalProducts"`
	MatchedProducts int `gorm:"default:0" json:"matchedProducts"`
	NewProducts     int `gorm:"default:0" json:"newProducts"`
	Errors          int `gorm:"default:0" json:"errors"`

	ErrorDetails JSONBArray `gorm:"type:jsonb;default:'[]'" json:"errorDetails,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for VendorImportLog
func (VendorImportLog) TableName() string {
	return "vendor_import_logs"
}
