package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendor-import-service/internal/models"
	"vendor-import-service/internal/repository"
	"vendor-import-service/internal/services"
)

// VendorProductHandler handles vendor product link and price HTTP requests
type VendorProductHandler struct {
	importService *services.ImportService
}

// NewVendorProductHandler creates a new vendor product handler
func NewVendorProductHandler(importService *services.ImportService) *VendorProductHandler {
	return &VendorProductHandler{
		importService: importService,
	}
}

// ListVendorProducts lists vendor product links for a vendor
func (h *VendorProductHandler) ListVendorProducts(c *gin.Context) {
	vendorCode := c.Param("vendorCode")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	opts := repository.ListOptions{Limit: limit, Offset: offset}

	var err error
	var links []models.VendorProduct
	var total int64

	if c.DefaultQuery("unmatched", "false") == "true" {
		links, total, err = h.importService.GetUnmatchedProducts(c.Request.Context(), vendorCode, opts)
	} else {
		links, total, err = h.importService.GetVendorProducts(c.Request.Context(), vendorCode, opts)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": links,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// MatchRequest is the body for manually matching a vendor product
type MatchRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// MatchVendorProduct manually links a vendor product to an internal product
func (h *VendorProductHandler) MatchVendorProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return
	}

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.importService.MatchVendorProduct(c.Request.Context(), id, req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, link)
}

// UpdatePriceRequest is the body for overwriting a vendor price snapshot
type UpdatePriceRequest struct {
	Price         float64 `json:"price" binding:"required"`
	StockQuantity int     `json:"stockQuantity"`
	StockLocation string  `json:"stockLocation"`
}

// UpdateVendorPrice overwrites the price snapshot for a vendor product link
func (h *VendorProductHandler) UpdateVendorPrice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := h.importService.UpdateVendorPrice(c.Request.Context(), id, req.Price, req.StockQuantity, req.StockLocation)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, price)
}

// GetProductPrices returns vendor prices for an internal product. With a
// vendor query param only that vendor's price is returned.
func (h *VendorProductHandler) GetProductPrices(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	if vendorCode := c.Query("vendor"); vendorCode != "" {
		price, err := h.importService.GetVendorPrice(c.Request.Context(), productID, vendorCode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if price == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no vendor price found"})
			return
		}
		c.JSON(http.StatusOK, price)
		return
	}

	prices, err := h.importService.GetAllVendorPrices(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prices": prices,
		"total":  len(prices),
	})
}
