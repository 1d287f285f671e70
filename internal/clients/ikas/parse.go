package ikas

import (
	"fmt"
	"strings"

	"vendor-import-service/internal/clients"
)

// ikas GraphQL node shapes
type productNode struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"shortDescription"`
	TotalStock       int           `json:"totalStock"`
	Brand            *brandNode    `json:"brand"`
	Images           []imageNode   `json:"images"`
	Variants         []variantNode `json:"variants"`
}

type brandNode struct {
	Name string `json:"name"`
}

type imageNode struct {
	FileID string `json:"fileId"`
}

type variantNode struct {
	SKU         string      `json:"sku"`
	BarcodeList []string    `json:"barcodeList"`
	IsActive    bool        `json:"isActive"`
	Prices      []priceNode `json:"prices"`
	Stocks      []stockNode `json:"stocks"`
}

type priceNode struct {
	SellPrice    float64 `json:"sellPrice"`
	CurrencyCode string  `json:"currencyCode"`
}

type stockNode struct {
	StockCount      int    `json:"stockCount"`
	StockLocationID string `json:"stockLocationId"`
}

// selectVariant picks the first variant flagged active, falling back to the
// first variant in order when none is.
func selectVariant(variants []variantNode) *variantNode {
	for i := range variants {
		if variants[i].IsActive {
			return &variants[i]
		}
	}
	if len(variants) > 0 {
		return &variants[0]
	}
	return nil
}

// parseProductNode normalizes a raw listProduct node into an ExternalProduct.
// Products without variants fall back to the product id for sku/barcode and
// zero price/stock. The node-level totalStock is used only when the selected
// variant's summed stock is exactly zero.
func parseProductNode(node productNode) (*clients.ExternalProduct, error) {
	if node.ID == "" {
		return nil, fmt.Errorf("product node missing id")
	}

	product := &clients.ExternalProduct{
		ID:               node.ID,
		Name:             node.Name,
		Description:      node.Description,
		ShortDescription: node.ShortDescription,
		SKU:              node.ID,
		Barcode:          node.ID,
		Slug:             slugify(node.Name),
		Status:           "passive",
	}

	if node.Brand != nil {
		product.BrandName = node.Brand.Name
	}
	for _, img := range node.Images {
		if img.FileID != "" {
			product.Images = append(product.Images, img.FileID)
		}
	}

	variant := selectVariant(node.Variants)
	if variant == nil {
		return product, nil
	}

	if variant.IsActive {
		product.Status = "active"
	}

	product.SKU = variant.SKU
	if product.SKU == "" {
		product.SKU = node.ID
	}

	product.Barcode = ""
	if len(variant.BarcodeList) > 0 {
		product.Barcode = variant.BarcodeList[0]
	}

	if len(variant.Prices) > 0 {
		product.Price = variant.Prices[0].SellPrice
	}

	stock := 0
	for _, s := range variant.Stocks {
		stock += s.StockCount
	}
	if stock == 0 && node.TotalStock > 0 {
		stock = node.TotalStock
	}
	product.StockQuantity = stock

	return product, nil
}

// slugify lowercases a name and collapses whitespace runs into hyphens
func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
