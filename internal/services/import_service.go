package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vendor-import-service/internal/models"
	"vendor-import-service/internal/repository"
)

const defaultCurrency = "TRY"

// ImportError records why one vendor product could not be persisted
type ImportError struct {
	VendorProductID string `json:"vendorProductId"`
	Name            string `json:"name"`
	Error           string `json:"error"`
}

// ImportResult is the aggregate outcome of one import run
type ImportResult struct {
	VendorID           uuid.UUID    `json:"vendorId"`
	TotalProducts      int          `json:"totalProducts"`
	MatchedProducts    int          `json:"matchedProducts"`
	SkippedProducts    int          `json:"skippedProducts"`
	Errors             []ImportError `json:"errors"`
	ImportedProductIDs []uuid.UUID  `json:"importedProductIds"`
}

// ImportService reconciles fetched vendor catalogs against the store's own
// products: it resolves the vendor registry entry, matches by SKU/barcode,
// maintains vendor product links and price snapshots, and appends one audit
// log row per run.
type ImportService struct {
	vendorRepo  repository.VendorRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	linkRepo    repository.VendorProductRepositoryInterface
	logRepo     repository.ImportLogRepositoryInterface
	logger      *logrus.Entry
}

// NewImportService creates a new import reconciliation service
func NewImportService(
	vendorRepo repository.VendorRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	linkRepo repository.VendorProductRepositoryInterface,
	logRepo repository.ImportLogRepositoryInterface,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		vendorRepo:  vendorRepo,
		productRepo: productRepo,
		linkRepo:    linkRepo,
		logRepo:     logRepo,
		logger:      logger.WithField("component", "import_service"),
	}
}

// GetOrCreateVendor resolves a vendor by code, inserting it on first use.
// Idempotent: an existing vendor is returned untouched, name and description
// changes on later calls are not applied.
func (s *ImportService) GetOrCreateVendor(ctx context.Context, vendorCode, name, description string) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByCode(ctx, vendorCode)
	if err == nil {
		return vendor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up vendor %s: %w", vendorCode, err)
	}

	vendor = &models.Vendor{
		Name:       name,
		VendorCode: vendorCode,
		IsActive:   true,
	}
	if description != "" {
		vendor.Description = &description
	}
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor %s: %w", vendorCode, err)
	}

	s.logger.WithFields(logrus.Fields{
		"vendorCode": vendorCode,
		"vendorId":   vendor.ID,
	}).Info("Created vendor")

	return vendor, nil
}

// FindMatchingProduct looks up an internal product by exact SKU, then by
// barcode when one is supplied. Lookup failures are logged and treated as
// no match; this method never returns an error.
func (s *ImportService) FindMatchingProduct(ctx context.Context, sku, barcode string) *models.Product {
	if sku != "" {
		product, err := s.productRepo.GetBySKU(ctx, sku)
		if err == nil {
			return product
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("sku", sku).Warn("SKU lookup failed")
		}
	}

	if barcode != "" {
		product, err := s.productRepo.FindByBarcode(ctx, barcode)
		if err == nil {
			return product
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("barcode", barcode).Warn("Barcode lookup failed")
		}
	}

	return nil
}

// ImportVendorProducts runs the reconciliation algorithm for one fetched
// catalog. Vendor resolution failure is fatal; every per-product failure is
// isolated into the result's error list and the batch continues. One audit
// log row is written at the end; its failure is logged and swallowed.
func (s *ImportService) ImportVendorProducts(ctx context.Context, vendorCode, vendorName string, products []VendorCatalogEntry, description string) (*ImportResult, error) {
	vendor, err := s.GetOrCreateVendor(ctx, vendorCode, vendorName, description)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		VendorID:           vendor.ID,
		TotalProducts:      len(products),
		Errors:             []ImportError{},
		ImportedProductIDs: []uuid.UUID{},
	}

	for i := range products {
		// Cancellation is honored at product boundaries so a persisted
		// product is never left half-written by this loop.
		if ctx.Err() != nil {
			s.writeImportLog(ctx, result)
			return result, ctx.Err()
		}
		s.importOne(ctx, vendor, &products[i], result)
	}

	s.writeImportLog(ctx, result)

	s.logger.WithFields(logrus.Fields{
		"vendorCode": vendorCode,
		"total":      result.TotalProducts,
		"matched":    result.MatchedProducts,
		"skipped":    result.SkippedProducts,
		"errors":     len(result.Errors),
	}).Info("Import completed")

	return result, nil
}

// importOne persists a single vendor product, updating the result counters
func (s *ImportService) importOne(ctx context.Context, vendor *models.Vendor, entry *VendorCatalogEntry, result *ImportResult) {
	match := s.FindMatchingProduct(ctx, entry.SKU, entry.Barcode)
	if match == nil {
		result.SkippedProducts++
		return
	}

	existing, err := s.linkRepo.GetByVendorAndExternalID(ctx, vendor.ID, entry.VendorProductID)
	switch {
	case err == nil:
		if err := s.refreshPrice(ctx, vendor, existing, entry); err != nil {
			result.Errors = append(result.Errors, importError(entry, err))
			return
		}
		result.MatchedProducts++

	case errors.Is(err, gorm.ErrRecordNotFound):
		link := &models.VendorProduct{
			ProductID:       &match.ID,
			VendorID:        vendor.ID,
			VendorProductID: entry.VendorProductID,
			VendorSKU:       entry.SKU,
			VendorName:      entry.Name,
			IsMatched:       true,
			IsActive:        true,
		}
		if entry.Barcode != "" {
			barcode := entry.Barcode
			link.Barcode = &barcode
		}
		if err := s.linkRepo.Create(ctx, link); err != nil {
			result.Errors = append(result.Errors, importError(entry, fmt.Errorf("failed to create vendor product link: %w", err)))
			return
		}
		if err := s.linkRepo.CreatePrice(ctx, s.newPrice(vendor, link, entry)); err != nil {
			result.Errors = append(result.Errors, importError(entry, fmt.Errorf("failed to create vendor price: %w", err)))
			return
		}
		result.MatchedProducts++
		result.ImportedProductIDs = append(result.ImportedProductIDs, link.ID)

	default:
		result.Errors = append(result.Errors, importError(entry, fmt.Errorf("failed to look up vendor product link: %w", err)))
	}
}

// refreshPrice overwrites the price snapshot of an existing link. A link left
// without a price row by an interrupted earlier run gets one created here.
func (s *ImportService) refreshPrice(ctx context.Context, vendor *models.Vendor, link *models.VendorProduct, entry *VendorCatalogEntry) error {
	price, err := s.linkRepo.GetPriceByLink(ctx, link.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.linkRepo.CreatePrice(ctx, s.newPrice(vendor, link, entry))
	}
	if err != nil {
		return fmt.Errorf("failed to load vendor price: %w", err)
	}

	price.Price = entry.Price
	price.StockQuantity = entry.Stock
	if entry.Currency != "" {
		price.Currency = entry.Currency
	}
	if entry.StockLocation != "" {
		location := entry.StockLocation
		price.StockLocation = &location
	}
	price.LastUpdated = time.Now()

	if err := s.linkRepo.UpdatePrice(ctx, price); err != nil {
		return fmt.Errorf("failed to update vendor price: %w", err)
	}
	return nil
}

func (s *ImportService) newPrice(vendor *models.Vendor, link *models.VendorProduct, entry *VendorCatalogEntry) *models.VendorPrice {
	price := &models.VendorPrice{
		VendorProductID: link.ID,
		VendorID:        vendor.ID,
		Price:           entry.Price,
		Currency:        defaultCurrency,
		StockQuantity:   entry.Stock,
		LastUpdated:     time.Now(),
	}
	if entry.Currency != "" {
		price.Currency = entry.Currency
	}
	if entry.StockLocation != "" {
		location := entry.StockLocation
		price.StockLocation = &location
	}
	return price
}

// writeImportLog appends the audit row for a run. Audit failures never fail
// the import; they are only reported to the operator log.
func (s *ImportService) writeImportLog(ctx context.Context, result *ImportResult) {
	details := make(models.JSONBArray, 0, len(result.Errors))
	for _, e := range result.Errors {
		details = append(details, map[string]interface{}{
			"vendorProductId": e.VendorProductID,
			"name":            e.Name,
			"error":           e.Error,
		})
	}

	log := &models.VendorImportLog{
		VendorID:        result.VendorID,
		TotalProducts:   result.TotalProducts,
		MatchedProducts: result.MatchedProducts,
		NewProducts:     len(result.ImportedProductIDs),
		Errors:          len(result.Errors),
		ErrorDetails:    details,
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.WithError(err).WithField("vendorId", result.VendorID).
			Warn("Failed to write import log")
	}
}

func importError(entry *VendorCatalogEntry, err error) ImportError {
	return ImportError{
		VendorProductID: entry.VendorProductID,
		Name:            entry.Name,
		Error:           err.Error(),
	}
}

// ListVendors returns the vendors persisted by past imports.
// Query failures degrade to an empty list.
func (s *ImportService) ListVendors(ctx context.Context, opts repository.ListOptions) ([]models.Vendor, int64, error) {
	vendors, total, err := s.vendorRepo.List(ctx, opts)
	if err != nil {
		s.logger.WithError(err).Warn("Vendor listing failed")
		return []models.Vendor{}, 0, nil
	}
	return vendors, total, nil
}

// GetVendor resolves a vendor by UUID or by vendor code
func (s *ImportService) GetVendor(ctx context.Context, idOrCode string) (*models.Vendor, error) {
	if id, err := uuid.Parse(idOrCode); err == nil {
		return s.vendorRepo.GetByID(ctx, id)
	}
	return s.vendorRepo.GetByCode(ctx, idOrCode)
}

// GetVendorProducts returns the vendor product links for a vendor code.
// Query failures degrade to an empty list.
func (s *ImportService) GetVendorProducts(ctx context.Context, vendorCode string, opts repository.ListOptions) ([]models.VendorProduct, int64, error) {
	vendor, err := s.vendorRepo.GetByCode(ctx, vendorCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Vendor lookup failed")
		}
		return []models.VendorProduct{}, 0, nil
	}

	links, total, err := s.linkRepo.ListByVendor(ctx, vendor.ID, opts)
	if err != nil {
		s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Vendor product listing failed")
		return []models.VendorProduct{}, 0, nil
	}
	return links, total, nil
}

// GetUnmatchedProducts returns links awaiting manual matching for a vendor code
func (s *ImportService) GetUnmatchedProducts(ctx context.Context, vendorCode string, opts repository.ListOptions) ([]models.VendorProduct, int64, error) {
	vendor, err := s.vendorRepo.GetByCode(ctx, vendorCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Vendor lookup failed")
		}
		return []models.VendorProduct{}, 0, nil
	}

	links, total, err := s.linkRepo.ListUnmatchedByVendor(ctx, vendor.ID, opts)
	if err != nil {
		s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Unmatched product listing failed")
		return []models.VendorProduct{}, 0, nil
	}
	return links, total, nil
}

// GetVendorPrice returns one vendor's price for an internal product, or nil
// when no price exists. A missing row is a valid absent result, not an error.
func (s *ImportService) GetVendorPrice(ctx context.Context, productID uuid.UUID, vendorCode string) (*models.VendorPrice, error) {
	vendor, err := s.vendorRepo.GetByCode(ctx, vendorCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Vendor lookup failed")
		}
		return nil, nil
	}

	price, err := s.linkRepo.GetPriceForProduct(ctx, productID, vendor.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("productId", productID).Warn("Vendor price lookup failed")
		}
		return nil, nil
	}
	return price, nil
}

// GetAllVendorPrices returns every vendor's price for an internal product.
// Query failures degrade to an empty list.
func (s *ImportService) GetAllVendorPrices(ctx context.Context, productID uuid.UUID) ([]models.VendorPrice, error) {
	prices, err := s.linkRepo.ListPricesForProduct(ctx, productID)
	if err != nil {
		s.logger.WithError(err).WithField("productId", productID).Warn("Vendor price listing failed")
		return []models.VendorPrice{}, nil
	}
	return prices, nil
}

// GetImportLogs returns the audit rows for a vendor code, newest first.
// Query failures degrade to an empty list.
func (s *ImportService) GetImportLogs(ctx context.Context, vendorCode string, opts repository.ListOptions) ([]models.VendorImportLog, int64, error) {
	vendor, err := s.vendorRepo.GetByCode(ctx, vendorCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Vendor lookup failed")
		}
		return []models.VendorImportLog{}, 0, nil
	}

	logs, total, err := s.logRepo.ListByVendor(ctx, vendor.ID, opts)
	if err != nil {
		s.logger.WithError(err).WithField("vendorCode", vendorCode).Warn("Import log listing failed")
		return []models.VendorImportLog{}, 0, nil
	}
	return logs, total, nil
}

// MatchVendorProduct manually links a vendor product to an internal product
func (s *ImportService) MatchVendorProduct(ctx context.Context, vendorProductID, productID uuid.UUID) (*models.VendorProduct, error) {
	link, err := s.linkRepo.GetByID(ctx, vendorProductID)
	if err != nil {
		return nil, fmt.Errorf("vendor product not found: %w", err)
	}

	link.ProductID = &productID
	link.IsMatched = true
	if err := s.linkRepo.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to match vendor product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"vendorProductId": vendorProductID,
		"productId":       productID,
	}).Info("Manually matched vendor product")

	return link, nil
}

// UpdateVendorPrice overwrites the price snapshot for a vendor product link.
// Fails when no price row exists for the link.
func (s *ImportService) UpdateVendorPrice(ctx context.Context, vendorProductID uuid.UUID, newPrice float64, stock int, stockLocation string) (*models.VendorPrice, error) {
	price, err := s.linkRepo.GetPriceByLink(ctx, vendorProductID)
	if err != nil {
		return nil, fmt.Errorf("vendor price not found: %w", err)
	}

	price.Price = newPrice
	price.StockQuantity = stock
	if stockLocation != "" {
		location := stockLocation
		price.StockLocation = &location
	}
	price.LastUpdated = time.Now()

	if err := s.linkRepo.UpdatePrice(ctx, price); err != nil {
		return nil, fmt.Errorf("failed to update vendor price: %w", err)
	}
	return price, nil
}
