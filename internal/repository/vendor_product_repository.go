package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendor-import-service/internal/models"
)

// VendorProductRepositoryInterface defines operations on vendor product links
// and their price snapshots
type VendorProductRepositoryInterface interface {
	Create(ctx context.Context, link *models.VendorProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VendorProduct, error)
	GetByVendorAndExternalID(ctx context.Context, vendorID uuid.UUID, vendorProductID string) (*models.VendorProduct, error)
	Update(ctx context.Context, link *models.VendorProduct) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorProduct, int64, error)
	ListUnmatchedByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorProduct, int64, error)

	CreatePrice(ctx context.Context, price *models.VendorPrice) error
	GetPriceByLink(ctx context.Context, vendorProductID uuid.UUID) (*models.VendorPrice, error)
	GetPriceForProduct(ctx context.Context, productID, vendorID uuid.UUID) (*models.VendorPrice, error)
	ListPricesForProduct(ctx context.Context, productID uuid.UUID) ([]models.VendorPrice, error)
	UpdatePrice(ctx context.Context, price *models.VendorPrice) error
}

// VendorProductRepository handles vendor product link and price operations
type VendorProductRepository struct {
	db *gorm.DB
}

var _ VendorProductRepositoryInterface = (*VendorProductRepository)(nil)

// NewVendorProductRepository creates a new vendor product repository
func NewVendorProductRepository(db *gorm.DB) *VendorProductRepository {
	return &VendorProductRepository{db: db}
}

// Create inserts a new vendor product link
func (r *VendorProductRepository) Create(ctx context.Context, link *models.VendorProduct) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// GetByID retrieves a vendor product link by ID
func (r *VendorProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VendorProduct, error) {
	var link models.VendorProduct
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByVendorAndExternalID retrieves a link by the vendor's native product id
func (r *VendorProductRepository) GetByVendorAndExternalID(ctx context.Context, vendorID uuid.UUID, vendorProductID string) (*models.VendorProduct, error) {
	var link models.VendorProduct
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND vendor_product_id = ?", vendorID, vendorProductID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// Update saves changes to a vendor product link
func (r *VendorProductRepository) Update(ctx context.Context, link *models.VendorProduct) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// ListByVendor retrieves links for a vendor with pagination, price included
func (r *VendorProductRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorProduct, int64, error) {
	return r.listByVendor(ctx, vendorID, opts, false)
}

// ListUnmatchedByVendor retrieves links awaiting manual matching
func (r *VendorProductRepository) ListUnmatchedByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorProduct, int64, error) {
	return r.listByVendor(ctx, vendorID, opts, true)
}

func (r *VendorProductRepository) listByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions, unmatchedOnly bool) ([]models.VendorProduct, int64, error) {
	var links []models.VendorProduct
	var total int64

	query := r.db.WithContext(ctx).Model(&models.VendorProduct{}).Where("vendor_id = ?", vendorID)
	if unmatchedOnly {
		query = query.Where("is_matched = false")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Preload("Price").Preload("Product").Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

// CreatePrice inserts a price snapshot for a link
func (r *VendorProductRepository) CreatePrice(ctx context.Context, price *models.VendorPrice) error {
	return r.db.WithContext(ctx).Create(price).Error
}

// GetPriceByLink retrieves the price row for a vendor product link
func (r *VendorProductRepository) GetPriceByLink(ctx context.Context, vendorProductID uuid.UUID) (*models.VendorPrice, error) {
	var price models.VendorPrice
	if err := r.db.WithContext(ctx).
		Where("vendor_product_id = ?", vendorProductID).
		First(&price).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

// GetPriceForProduct retrieves one vendor's price for an internal product
func (r *VendorProductRepository) GetPriceForProduct(ctx context.Context, productID, vendorID uuid.UUID) (*models.VendorPrice, error) {
	var price models.VendorPrice
	if err := r.db.WithContext(ctx).
		Joins("JOIN vendor_products ON vendor_products.id = vendor_prices.vendor_product_id").
		Where("vendor_products.product_id = ? AND vendor_prices.vendor_id = ?", productID, vendorID).
		First(&price).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

// ListPricesForProduct retrieves every vendor's price for an internal product
func (r *VendorProductRepository) ListPricesForProduct(ctx context.Context, productID uuid.UUID) ([]models.VendorPrice, error) {
	var prices []models.VendorPrice
	if err := r.db.WithContext(ctx).
		Joins("JOIN vendor_products ON vendor_products.id = vendor_prices.vendor_product_id").
		Where("vendor_products.product_id = ?", productID).
		Order("vendor_prices.price ASC").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// UpdatePrice saves changes to a price snapshot
func (r *VendorProductRepository) UpdatePrice(ctx context.Context, price *models.VendorPrice) error {
	return r.db.WithContext(ctx).Save(price).Error
}
