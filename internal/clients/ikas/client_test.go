package ikas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(serverURL string) *IkasClient {
	return NewIkasClient(Credentials{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		BaseURL:      serverURL,
	}, testLogger())
}

func tokenResponse(w http.ResponseWriter, expiresIn int64) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":"test-token","expires_in":%d,"token_type":"Bearer"}`, expiresIn)
}

func pageResponse(hasNext bool, nodes ...string) string {
	return fmt.Sprintf(`{"data":{"listProduct":{"count":%d,"hasNext":%t,"page":1,"limit":100,"data":[%s]}}}`,
		len(nodes), hasNext, strings.Join(nodes, ","))
}

func productJSON(id, sku string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": "Widget %s",
		"totalStock": 0,
		"variants": [{
			"sku": %q,
			"barcodeList": ["869%s"],
			"isActive": true,
			"prices": [{"sellPrice": 149.9, "currencyCode": "TRY"}],
			"stocks": [{"stockCount": 3, "stockLocationId": "loc-1"}]
		}]
	}`, id, id, sku, id)
}

// ===========================================
// Authenticate Tests
// ===========================================

func TestAuthenticate_Success(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		assert.Equal(t, "test-client", r.PostFormValue("client_id"))
		assert.Equal(t, "test-secret", r.PostFormValue("client_secret"))
		tokenResponse(w, 3600)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	assert.True(t, client.Authenticate(context.Background()))
	assert.True(t, client.sessionValid())

	// A valid session short-circuits the second exchange
	assert.True(t, client.Authenticate(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestAuthenticate_RejectedCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	assert.False(t, client.Authenticate(context.Background()))
	assert.False(t, client.sessionValid())
}

func TestAuthenticate_MalformedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	assert.False(t, client.Authenticate(context.Background()))
}

func TestAuthenticate_ShortLivedTokenExpiresImmediately(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		// Lifetime equal to the safety margin leaves no usable window
		tokenResponse(w, 60)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	assert.True(t, client.Authenticate(context.Background()))
	assert.False(t, client.sessionValid())
}

// ===========================================
// GetAllProducts Tests
// ===========================================

func TestGetAllProducts_AuthFailureReturnsEmptyCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog must not be fetched without a session")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetAllProducts_PaginatesUntilHasNextIsFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Query string `json:"query"`
		}
		assert.NoError(t, json.Unmarshal(body, &payload))

		switch {
		case strings.Contains(payload.Query, "page: 1,"):
			fmt.Fprint(w, pageResponse(true, productJSON("p1", "SKU-1"), productJSON("p2", "SKU-2")))
		case strings.Contains(payload.Query, "page: 2,"):
			fmt.Fprint(w, pageResponse(false, productJSON("p3", "SKU-3")))
		default:
			t.Errorf("unexpected page query: %s", payload.Query)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "SKU-1", products[0].SKU)
	assert.Equal(t, "SKU-3", products[2].SKU)
}

func TestGetAllProducts_PageFailureKeepsEarlierPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "page: 1,") {
			fmt.Fprint(w, pageResponse(true, productJSON("p1", "SKU-1")))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"message":"bad pagination"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestGetAllProducts_SkipsNodesWithoutID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageResponse(false, `{"id":"","name":"broken"}`, productJSON("p2", "SKU-2")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
}

func TestGetAllProducts_GraphQLErrorHaltsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"internal error"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetAllProducts_RetriesTransientServerErrors(t *testing.T) {
	var graphqlCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&graphqlCalls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, pageResponse(false, productJSON("p1", "SKU-1")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	products, err := client.GetAllProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&graphqlCalls))
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		tokenResponse(w, 3600)
	})
	mux.HandleFunc(graphqlPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageResponse(false, productJSON("p1", "SKU-1")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	assert.True(t, client.Authenticate(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	products, err := client.GetAllProducts(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, products)
}
