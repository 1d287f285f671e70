package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"vendor-import-service/internal/clients"
)

// VendorCatalogEntry is one active vendor product reshaped for import,
// tagged with the vendor identity it was fetched under. OriginalData keeps
// the normalized product as fetched for traceability.
type VendorCatalogEntry struct {
	VendorCode       string  `json:"vendorId"`
	VendorName       string  `json:"vendorName"`
	VendorProductID  string  `json:"vendorProductId"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	ShortDescription string  `json:"shortDescription,omitempty"`
	SKU              string  `json:"sku"`
	Barcode          string  `json:"barcode,omitempty"`
	Price            float64 `json:"price"`
	Stock            int     `json:"stock"`
	Currency         string  `json:"currency,omitempty"`
	StockLocation    string  `json:"stockLocation,omitempty"`
	Brand            string  `json:"brand,omitempty"`
	Slug             string  `json:"slug"`
	Images           []string `json:"images,omitempty"`

	OriginalData *clients.ExternalProduct `json:"originalData,omitempty"`
}

// VendorIdentity is the fixed identity a catalog adapter tags entries with
type VendorIdentity struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CatalogService adapts the raw vendor platform clients into catalog entries
// ready for reconciliation. Each registered vendor carries a fixed identity;
// inactive vendor products never leave this layer.
type CatalogService struct {
	registry   *clients.Registry
	identities map[string]VendorIdentity
	logger     *logrus.Entry
}

// NewCatalogService creates a new vendor catalog service
func NewCatalogService(registry *clients.Registry, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		registry:   registry,
		identities: make(map[string]VendorIdentity),
		logger:     logger.WithField("component", "catalog_service"),
	}
}

// RegisterVendor records the display identity for a registered vendor code
func (s *CatalogService) RegisterVendor(identity VendorIdentity) {
	s.identities[identity.Code] = identity
}

// Vendors lists the vendor identities available for import
func (s *CatalogService) Vendors() []VendorIdentity {
	identities := make([]VendorIdentity, 0, len(s.identities))
	for _, code := range s.registry.Codes() {
		if identity, ok := s.identities[code]; ok {
			identities = append(identities, identity)
		}
	}
	return identities
}

// Identity returns the display identity for a vendor code
func (s *CatalogService) Identity(vendorCode string) (VendorIdentity, bool) {
	identity, ok := s.identities[vendorCode]
	return identity, ok
}

// GetProductsWithVendorInfo fetches the vendor's catalog, drops inactive
// products, and reshapes the remainder into catalog entries. Individual
// product issues never fail the fetch; only a client-level error propagates.
func (s *CatalogService) GetProductsWithVendorInfo(ctx context.Context, vendorCode string) ([]VendorCatalogEntry, error) {
	client, ok := s.registry.Get(vendorCode)
	if !ok {
		return nil, &clients.UnsupportedVendorError{VendorCode: vendorCode}
	}
	identity, ok := s.identities[vendorCode]
	if !ok {
		return nil, fmt.Errorf("vendor %s has no registered identity", vendorCode)
	}

	products, err := client.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendor catalog: %w", err)
	}

	entries := make([]VendorCatalogEntry, 0, len(products))
	dropped := 0
	for i := range products {
		p := products[i]
		if !p.IsActive() {
			dropped++
			continue
		}
		entries = append(entries, VendorCatalogEntry{
			VendorCode:       identity.Code,
			VendorName:       identity.Name,
			VendorProductID:  p.ID,
			Name:             p.Name,
			Description:      p.Description,
			ShortDescription: p.ShortDescription,
			SKU:              p.SKU,
			Barcode:          p.Barcode,
			Price:            p.Price,
			Stock:            p.StockQuantity,
			Brand:            p.BrandName,
			Slug:             p.Slug,
			Images:           p.Images,
			OriginalData:     &p,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"vendor":   vendorCode,
		"fetched":  len(products),
		"active":   len(entries),
		"inactive": dropped,
	}).Info("Fetched vendor catalog")

	return entries, nil
}
