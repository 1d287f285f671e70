package clients

import (
	"context"
	"sort"
	"sync"
)

// VendorType identifies a supported vendor platform
type VendorType string

const (
	VendorIkas VendorType = "IKAS"
)

// VendorClient defines the interface that all vendor platform clients implement.
// Authenticate and GetAllProducts are deliberately failure-tolerant: auth failure
// is reported as false, and GetAllProducts returns whatever pages it managed to
// fetch. The error return carries only unrecoverable conditions such as a
// cancelled context.
type VendorClient interface {
	// GetType returns the vendor platform type
	GetType() VendorType

	// Authenticate performs the credential exchange and caches the session.
	// Returns false on any failure; no error escapes to the caller.
	Authenticate(ctx context.Context) bool

	// GetAllProducts fetches the full catalog page by page. Partial results
	// are valid: a failed page halts pagination but keeps prior pages.
	GetAllProducts(ctx context.Context) ([]ExternalProduct, error)
}

// ExternalProduct is a vendor product normalized out of the platform's native
// shape. One per product; variant selection has already happened upstream.
type ExternalProduct struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	SKU              string   `json:"sku"`
	Barcode          string   `json:"barcode,omitempty"`
	Price            float64  `json:"price"`
	StockQuantity    int      `json:"stockQuantity"`
	BrandName        string   `json:"brandName,omitempty"`
	Slug             string   `json:"slug"`
	Status           string   `json:"status"`
	Images           []string `json:"images,omitempty"`
}

// IsActive reports whether the product is sellable on the vendor platform
func (p *ExternalProduct) IsActive() bool {
	return p.Status == "active"
}

// Registry holds the configured vendor clients keyed by vendor code.
// Constructed once in main and handed to services; there is no package-level
// client registry.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]VendorClient
}

// NewRegistry creates an empty vendor client registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]VendorClient)}
}

// Register adds a client under a vendor code, replacing any previous one
func (r *Registry) Register(vendorCode string, client VendorClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[vendorCode] = client
}

// Get returns the client for a vendor code
func (r *Registry) Get(vendorCode string) (VendorClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[vendorCode]
	return client, ok
}

// Codes returns the registered vendor codes in stable order
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.clients))
	for code := range r.clients {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// UnsupportedVendorError is returned when a vendor code has no registered client
type UnsupportedVendorError struct {
	VendorCode string
}

func (e *UnsupportedVendorError) Error() string {
	return "unsupported vendor: " + e.VendorCode
}
