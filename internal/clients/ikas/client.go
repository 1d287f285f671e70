package ikas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"vendor-import-service/internal/clients"
)

const (
	tokenPath   = "/admin/oauth/token"
	graphqlPath = "/api/v1/admin/graphql"

	pageSize = 100

	// Tokens are treated as expired this much before the server says so,
	// to absorb clock skew and request latency.
	tokenSafetyMargin = 60 * time.Second
)

// Credentials holds the static per-vendor OAuth2 configuration
type Credentials struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// authSession is the cached OAuth2 token. Owned by one client instance and
// mutated only under the client's mutex.
type authSession struct {
	accessToken string
	expiresAt   time.Time
}

func (s authSession) valid(now time.Time) bool {
	return s.accessToken != "" && now.Before(s.expiresAt)
}

// IkasClient implements VendorClient for the ikas e-commerce platform.
// It authenticates via OAuth2 client credentials and pages through the
// admin GraphQL listProduct query.
type IkasClient struct {
	httpClient  *http.Client
	creds       Credentials
	rateLimiter *rate.Limiter
	retrier     *clients.Retrier
	logger      *logrus.Entry

	mu      sync.Mutex
	session authSession
}

// NewIkasClient creates a new ikas admin API client
func NewIkasClient(creds Credentials, logger *logrus.Logger) *IkasClient {
	return &IkasClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
		// One page request every ~100ms; a politeness pace, not a quota.
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		retrier:     clients.NewRetrier(clients.DefaultRetryConfig()),
		logger:      logger.WithField("component", "ikas_client"),
	}
}

// GetType returns the vendor platform type
func (c *IkasClient) GetType() clients.VendorType {
	return clients.VendorIkas
}

// Authenticate performs the OAuth2 client-credentials exchange. On success the
// token is cached with its expiry pulled in by the safety margin. On any
// failure the cached session is left untouched and false is returned; callers
// never see an error from this path.
func (c *IkasClient) Authenticate(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock
	if c.session.valid(time.Now()) {
		return true
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.creds.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.WithError(err).Warn("Failed to build token request")
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("Token request failed")
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to read token response")
		return false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   truncate(string(body), 512),
		}).Warn("Token exchange rejected")
		return false
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		c.logger.WithError(err).Warn("Unparsable token response")
		return false
	}
	if token.AccessToken == "" {
		c.logger.Warn("Token response missing access_token")
		return false
	}

	c.session = authSession{
		accessToken: token.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSafetyMargin),
	}
	return true
}

// GetAllProducts fetches the whole catalog page by page. A failed page halts
// pagination but keeps everything collected so far; an auth failure yields an
// empty list. Only context cancellation surfaces as an error, alongside the
// pages already fetched.
func (c *IkasClient) GetAllProducts(ctx context.Context) ([]clients.ExternalProduct, error) {
	products := []clients.ExternalProduct{}

	if !c.sessionValid() && !c.Authenticate(ctx) {
		c.logger.Warn("Authentication failed, returning empty catalog")
		return products, nil
	}

	page := 1
	hasNext := true
	for hasNext {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return products, err
		}

		result, err := c.fetchProductPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			c.logger.WithError(err).WithField("page", page).
				Warn("Page fetch failed, keeping previously fetched pages")
			break
		}

		for _, node := range result.Data {
			product, err := parseProductNode(node)
			if err != nil {
				c.logger.WithError(err).WithField("productId", node.ID).
					Warn("Skipping unparsable product node")
				continue
			}
			products = append(products, *product)
		}

		hasNext = result.HasNext
		page++
	}

	return products, nil
}

func (c *IkasClient) sessionValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.valid(time.Now())
}

func (c *IkasClient) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.accessToken
}

// listProductPage mirrors the data.listProduct page envelope
type listProductPage struct {
	Count   int           `json:"count"`
	HasNext bool          `json:"hasNext"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	Data    []productNode `json:"data"`
}

// fetchProductPage executes the listProduct GraphQL query for one page,
// retrying transient failures before giving up on the page.
func (c *IkasClient) fetchProductPage(ctx context.Context, page int) (*listProductPage, error) {
	query := fmt.Sprintf(`{
  listProduct(pagination: { page: %d, limit: %d }) {
    count
    hasNext
    page
    limit
    data {
      id
      name
      description
      shortDescription
      totalStock
      brand { name }
      images { fileId }
      variants {
        sku
        barcodeList
        isActive
        prices { sellPrice currencyCode }
        stocks { stockCount stockLocationId }
      }
    }
  }
}`, page, pageSize)

	body, err := c.doGraphQL(ctx, query)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			ListProduct *listProductPage `json:"listProduct"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse listProduct response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}
	if resp.Data.ListProduct == nil {
		return nil, fmt.Errorf("listProduct missing from response")
	}

	return resp.Data.ListProduct, nil
}

// doGraphQL posts a query to the admin GraphQL endpoint with bearer auth,
// retrying 429/5xx and network errors with backoff.
func (c *IkasClient) doGraphQL(ctx context.Context, query string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.creds.BaseURL+graphqlPath, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken())
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !c.retrier.ShouldRetry(0, err) || attempt >= c.retrier.MaxRetries() {
				return nil, lastErr
			}
		} else {
			body, readErr := io.ReadAll(resp.Body)
			retryAfter := clients.ParseRetryAfter(resp)
			resp.Body.Close()
			if readErr != nil {
				return nil, readErr
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return body, nil
			}

			lastErr = fmt.Errorf("ikas API error (status %d): %s", resp.StatusCode, truncate(string(body), 512))
			if !c.retrier.ShouldRetry(resp.StatusCode, nil) || attempt >= c.retrier.MaxRetries() {
				return nil, lastErr
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retrier.Backoff(attempt, retryAfter)):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retrier.Backoff(attempt, 0)):
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
