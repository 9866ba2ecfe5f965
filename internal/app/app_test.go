package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/config"
)

func testConfig(commerceURL string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{SessionSecret: "s", AppEnv: "development"},
		Commerce: config.CommerceConfig{BaseURL: commerceURL, Timeout: time.Second},
		Catalog:  config.CatalogConfig{Source: "commerce"},
		Cart:     config.CartConfig{CookieName: "cart", MaxAge: time.Hour},
	}
}

func TestNewAppWiresHandler(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig("https://commerce.example"))
	require.NoError(t, err)
	defer a.Close()

	h, err := a.HTTPHandler()
	require.NoError(t, err)
	require.NoError(t, a.Migrate())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestCheckoutEndpointOverride(t *testing.T) {
	cfg := testConfig("https://commerce.example")
	cfg.Checkout.Endpoint = "https://checkout.example/sessions"
	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := a.Checkout.(*checkout.HTTPService)
	assert.True(t, ok)
}

func TestNewAppRejectsBadCommerceURL(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig("::"))
	assert.Error(t, err)
}
