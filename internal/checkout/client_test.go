package checkout

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

func TestHTTPServiceSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []domain.CheckoutLine{{MerchandiseID: "v1", Quantity: 3}}, req.Lines)
		_ = json.NewEncoder(w).Encode(Response{CheckoutURL: "https://pay.example/s/1"})
	}))
	defer srv.Close()

	url, err := NewHTTPService(srv.URL, time.Second).CreateCheckout(context.Background(), []domain.CheckoutLine{{MerchandiseID: "v1", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/1", url)
}

func TestHTTPServiceFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusBadGateway, `{"error":"backend down"}`, domain.ErrCheckoutFailed},
		{"plain error", http.StatusBadRequest, `bad lines`, domain.ErrCheckoutFailed},
		{"error payload", http.StatusOK, `{"error":"variant sold out"}`, domain.ErrCheckoutFailed},
		{"missing url", http.StatusOK, `{}`, domain.ErrNoCheckoutURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewHTTPService(srv.URL, time.Second).CreateCheckout(context.Background(), []domain.CheckoutLine{{MerchandiseID: "v", Quantity: 1}})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHTTPServiceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err := NewHTTPService(srv.URL, time.Second).CreateCheckout(context.Background(), []domain.CheckoutLine{{MerchandiseID: "v", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutFailed)

	_, err = NewHTTPService(srv.URL, time.Second).CreateCheckout(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCheckout)
}
