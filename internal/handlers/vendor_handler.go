package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vendor-import-service/internal/clients"
	"vendor-import-service/internal/repository"
	"vendor-import-service/internal/services"
)

// VendorHandler handles vendor catalog and import HTTP requests
type VendorHandler struct {
	catalogService *services.CatalogService
	importService  *services.ImportService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(catalogService *services.CatalogService, importService *services.ImportService) *VendorHandler {
	return &VendorHandler{
		catalogService: catalogService,
		importService:  importService,
	}
}

// ListAvailableVendors lists the vendor platforms available for import
func (h *VendorHandler) ListAvailableVendors(c *gin.Context) {
	vendors := h.catalogService.Vendors()
	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"total":   len(vendors),
	})
}

// ListVendors lists the vendors persisted by past imports
func (h *VendorHandler) ListVendors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vendors, total, err := h.importService.ListVendors(c.Request.Context(), repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors": vendors,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetVendor retrieves one vendor by UUID or vendor code
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.importService.GetVendor(c.Request.Context(), c.Param("vendorCode"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// GetCatalog fetches a vendor's active catalog without persisting anything
func (h *VendorHandler) GetCatalog(c *gin.Context) {
	vendorCode := c.Param("vendorCode")

	entries, err := h.catalogService.GetProductsWithVendorInfo(c.Request.Context(), vendorCode)
	if err != nil {
		var unsupported *clients.UnsupportedVendorError
		if errors.As(err, &unsupported) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": entries,
		"total":    len(entries),
	})
}

// ImportRequest optionally narrows an import to an already-fetched subset
type ImportRequest struct {
	Products []services.VendorCatalogEntry `json:"products"`
}

// ImportProducts fetches a vendor's catalog and reconciles it against the
// store's own products. A request body with products imports that subset
// instead of fetching. Per-product failures are reported in the result, not
// as a request failure.
func (h *VendorHandler) ImportProducts(c *gin.Context) {
	vendorCode := c.Param("vendorCode")

	identity, ok := h.catalogService.Identity(vendorCode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported vendor: " + vendorCode})
		return
	}

	var req ImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	entries := req.Products
	if len(entries) == 0 {
		var err error
		entries, err = h.catalogService.GetProductsWithVendorInfo(c.Request.Context(), vendorCode)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.importService.ImportVendorProducts(c.Request.Context(), identity.Code, identity.Name, entries, identity.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListImportLogs lists past import runs for a vendor, newest first
func (h *VendorHandler) ListImportLogs(c *gin.Context) {
	vendorCode := c.Param("vendorCode")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, total, err := h.importService.GetImportLogs(c.Request.Context(), vendorCode, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
