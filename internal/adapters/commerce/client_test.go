package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/storefront/internal/domain"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return c
}

const teeJSON = `{"product":{
	"id":"gid://p/1","title":"Tee","handle":"tee",
	"descriptionHtml":"<p>Soft   cotton.</p><ul><li>Unisex</li></ul>",
	"priceRange":{"minVariantPrice":{"amount":"19.90","currencyCode":"EUR"},"maxVariantPrice":{"amount":24.5,"currencyCode":"EUR"}},
	"options":[{"name":"Size","values":["S","M"]}],
	"variants":[{"id":"gid://v/1","availableForSale":true,"selectedOptions":[{"name":"Size","value":"S"}]},
	            {"id":"gid://v/2","availableForSale":true,"selectedOptions":[{"name":"Size","value":"M"}]}]}}`

func TestByHandle(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/tee":
			_, _ = w.Write([]byte(teeJSON))
		default:
			http.NotFound(w, r)
		}
	}))

	p, err := c.ByHandle(context.Background(), "tee")
	require.NoError(t, err)
	assert.Equal(t, "gid://p/1", p.ID)
	assert.Equal(t, "gid://v/1", p.FirstVariantID)
	assert.Equal(t, "Soft cotton.\nUnisex", p.Description)
	assert.Equal(t, "19.90 EUR", p.PriceRange.MinVariantPrice.String())
	assert.Equal(t, "24.50 EUR", p.PriceRange.MaxVariantPrice.String())

	_, err = c.ByHandle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPassesFilter(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "tee", r.URL.Query().Get("query"))
		assert.Equal(t, "price_asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "24", r.URL.Query().Get("first"))
		_, _ = w.Write([]byte(`{"products":[{"id":"1","handle":"a","priceRange":{"minVariantPrice":{"amount":"1"}}}]}`))
	}))

	ps, err := c.List(context.Background(), domain.ProductFilter{Query: "tee", Sort: "price_asc", PageSize: 24})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, domain.DefaultCurrency, ps[0].PriceRange.MinVariantPrice.CurrencyCode)
}

func TestCustomerEndpointsSendToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(customerTokenHeader) != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/customers/me":
			_, _ = w.Write([]byte(`{"customer":{"id":"c1","email":"a@b.c"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/customers/me/orders":
			_, _ = w.Write([]byte(`{"orders":[{"id":"o1","orderNumber":1001,"totalPrice":{"amount":"10.00","currencyCode":"EUR"}}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/customers/me/addresses":
			var a domain.Address
			require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
			a.ID = "a1"
			_ = json.NewEncoder(w).Encode(map[string]any{"address": a})
		case r.Method == http.MethodDelete && r.URL.Path == "/customers/me/addresses/a1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	cu, err := c.Customer(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "c1", cu.ID)

	_, err = c.Customer(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = c.Customer(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	orders, err := c.Orders(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1001, orders[0].Number)

	a, err := c.CreateAddress(ctx, "tok", domain.Address{Address1: "Main 1", City: "Berlin", Zip: "10115", Country: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.NoError(t, c.DeleteAddress(ctx, "tok", "a1"))
	assert.ErrorIs(t, c.DeleteAddress(ctx, "tok", "zz"), domain.ErrNotFound)
}

func TestLoginAndLogout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/customers/access-tokens":
			var in loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.Password != "right" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"accessToken":"tok","expiresAt":"2030-01-01T00:00:00Z"}`))
		case r.Method == http.MethodDelete:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	tok, err := c.Login(ctx, domain.Credentials{Email: "a@b.c", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.Token)

	_, err = c.Login(ctx, domain.Credentials{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.NoError(t, c.Logout(ctx, "tok"), "an already expired token is not an error")
}

func TestCreateCheckout(t *testing.T) {
	var got cartRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if len(got.Lines) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream"}`))
			return
		}
		if got.Lines[0].MerchandiseID == "nourl" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"checkoutUrl":"https://shop.example/checkouts/1"}`))
	}))
	ctx := context.Background()

	u, err := c.CreateCheckout(ctx, []domain.CheckoutLine{{MerchandiseID: "v", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkouts/1", u)
	assert.Equal(t, []domain.CheckoutLine{{MerchandiseID: "v", Quantity: 2}}, got.Lines)

	_, err = c.CreateCheckout(ctx, []domain.CheckoutLine{{MerchandiseID: "a", Quantity: 1}, {MerchandiseID: "b", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutFailed)

	_, err = c.CreateCheckout(ctx, []domain.CheckoutLine{{MerchandiseID: "nourl", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNoCheckoutURL)

	_, err = c.CreateCheckout(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCheckout)
}

func TestClientCredentialsBearer(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"app-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer api.Close()

	c, err := New(Config{BaseURL: api.URL, ClientID: "id", ClientSecret: "secret", TokenURL: tokenSrv.URL})
	require.NoError(t, err)
	_, err = c.List(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Just text", PlainText("Just   text"))
	assert.Equal(t, "Title\nBody", PlainText("<h2>Title</h2><p>Body<script>x()</script></p>"))
}
