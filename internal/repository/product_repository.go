package repository

import (
	"context"

	"gorm.io/gorm"

	"vendor-import-service/internal/models"
)

// ProductRepositoryInterface defines read access to the store's own products
type ProductRepositoryInterface interface {
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Product, error)
}

// ProductRepository provides read-only access to the products table
type ProductRepository struct {
	db *gorm.DB
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetBySKU retrieves a product by exact SKU match
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBarcode searches the serialized key_properties blob for the barcode.
// Barcodes are buried inside free-form JSON, so this is a substring scan; it
// can false-positive on overlapping numeric barcodes. Known limitation,
// pending a dedicated indexed barcode column.
func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("key_properties::text LIKE ?", "%"+barcode+"%").
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
