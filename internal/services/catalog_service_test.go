package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"vendor-import-service/internal/clients"
)

// fakeVendorClient is a canned-response VendorClient for catalog tests
type fakeVendorClient struct {
	products []clients.ExternalProduct
	err      error
}

var _ clients.VendorClient = (*fakeVendorClient)(nil)

func (f *fakeVendorClient) GetType() clients.VendorType {
	return clients.VendorIkas
}

func (f *fakeVendorClient) Authenticate(ctx context.Context) bool {
	return true
}

func (f *fakeVendorClient) GetAllProducts(ctx context.Context) ([]clients.ExternalProduct, error) {
	return f.products, f.err
}

func newTestCatalogService(client clients.VendorClient) *CatalogService {
	registry := clients.NewRegistry()
	registry.Register("ikas", client)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewCatalogService(registry, logger)
	service.RegisterVendor(VendorIdentity{Code: "ikas", Name: "Ikas", Description: "Ikas e-commerce platform"})
	return service
}

func TestGetProductsWithVendorInfo_FiltersInactiveProducts(t *testing.T) {
	client := &fakeVendorClient{
		products: []clients.ExternalProduct{
			{ID: "ext-1", Name: "Active Widget", SKU: "SKU-1", Status: "active", Price: 100},
			{ID: "ext-2", Name: "Passive Widget", SKU: "SKU-2", Status: "passive", Price: 50},
			{ID: "ext-3", Name: "Second Active", SKU: "SKU-3", Status: "active", Price: 75},
		},
	}
	service := newTestCatalogService(client)

	entries, err := service.GetProductsWithVendorInfo(context.Background(), "ikas")

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "ext-1", entries[0].VendorProductID)
	assert.Equal(t, "ext-3", entries[1].VendorProductID)
}

func TestGetProductsWithVendorInfo_TagsEntriesWithVendorIdentity(t *testing.T) {
	client := &fakeVendorClient{
		products: []clients.ExternalProduct{
			{ID: "ext-1", Name: "Widget", SKU: "SKU-1", Status: "active", Price: 100, Barcode: "869", StockQuantity: 7},
		},
	}
	service := newTestCatalogService(client)

	entries, err := service.GetProductsWithVendorInfo(context.Background(), "ikas")

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "ikas", entry.VendorCode)
	assert.Equal(t, "Ikas", entry.VendorName)
	assert.Equal(t, "SKU-1", entry.SKU)
	assert.Equal(t, "869", entry.Barcode)
	assert.Equal(t, 7, entry.Stock)
	assert.Equal(t, 100.0, entry.Price)
	assert.NotNil(t, entry.OriginalData)
}

func TestGetProductsWithVendorInfo_UnregisteredVendor(t *testing.T) {
	service := newTestCatalogService(&fakeVendorClient{})

	entries, err := service.GetProductsWithVendorInfo(context.Background(), "unknown")

	assert.Error(t, err)
	var unsupported *clients.UnsupportedVendorError
	assert.ErrorAs(t, err, &unsupported)
	assert.Nil(t, entries)
}

func TestGetProductsWithVendorInfo_ClientFailure(t *testing.T) {
	client := &fakeVendorClient{err: errors.New("gateway timeout")}
	service := newTestCatalogService(client)

	entries, err := service.GetProductsWithVendorInfo(context.Background(), "ikas")

	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestVendors_ListsRegisteredIdentities(t *testing.T) {
	service := newTestCatalogService(&fakeVendorClient{})

	vendors := service.Vendors()

	assert.Len(t, vendors, 1)
	assert.Equal(t, "ikas", vendors[0].Code)
	assert.Equal(t, "Ikas", vendors[0].Name)
}
