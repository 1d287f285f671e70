package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendor-import-service/internal/models"
)

// ImportLogRepositoryInterface defines import audit log operations
type ImportLogRepositoryInterface interface {
	Create(ctx context.Context, log *models.VendorImportLog) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorImportLog, int64, error)
}

// ImportLogRepository handles the append-only import audit trail
type ImportLogRepository struct {
	db *gorm.DB
}

var _ ImportLogRepositoryInterface = (*ImportLogRepository)(nil)

// NewImportLogRepository creates a new import log repository
func NewImportLogRepository(db *gorm.DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// Create appends an import run record
func (r *ImportLogRepository) Create(ctx context.Context, log *models.VendorImportLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByVendor retrieves import runs for a vendor, newest first
func (r *ImportLogRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, opts ListOptions) ([]models.VendorImportLog, int64, error) {
	var logs []models.VendorImportLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.VendorImportLog{}).Where("vendor_id = ?", vendorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
