package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendor-import-service/internal/models"
)

// VendorRepositoryInterface defines vendor registry operations
type VendorRepositoryInterface interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetByCode(ctx context.Context, vendorCode string) (*models.Vendor, error)
	List(ctx context.Context, opts ListOptions) ([]models.Vendor, int64, error)
}

// VendorRepository handles vendor database operations
type VendorRepository struct {
	db *gorm.DB
}

var _ VendorRepositoryInterface = (*VendorRepository)(nil)

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create inserts a new vendor
func (r *VendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// GetByID retrieves a vendor by ID
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetByCode retrieves a vendor by its unique vendor code
func (r *VendorRepository) GetByCode(ctx context.Context, vendorCode string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("vendor_code = ?", vendorCode).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// List retrieves vendors with pagination
func (r *VendorRepository) List(ctx context.Context, opts ListOptions) ([]models.Vendor, int64, error) {
	var vendors []models.Vendor
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Vendor{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}
