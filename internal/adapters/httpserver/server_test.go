package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

const testSecret = "test-secret"

type stubCatalog map[string]domain.Product

func (c stubCatalog) List(context.Context, domain.ProductFilter) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(c))
	for _, p := range c {
		out = append(out, p)
	}
	return out, nil
}

func (c stubCatalog) ByHandle(_ context.Context, h string) (*domain.Product, error) {
	p, ok := c[h]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type stubCheckout struct {
	mu    sync.Mutex
	url   string
	err   error
	calls [][]domain.CheckoutLine
}

func (s *stubCheckout) CreateCheckout(_ context.Context, lines []domain.CheckoutLine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, lines)
	return s.url, s.err
}

type stubAccounts struct {
	domain.Accounts
}

func (stubAccounts) Login(_ context.Context, c domain.Credentials) (*domain.AccessToken, error) {
	if c.Password != "correct-horse" {
		return nil, domain.ErrUnauthorized
	}
	return &domain.AccessToken{Token: "cust-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAccounts) Customer(_ context.Context, token string) (*domain.Customer, error) {
	if token != "cust-token" {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Customer{ID: "c1", Email: "ana@example.com"}, nil
}

func (stubAccounts) Logout(context.Context, string) error { return nil }

func money(s string) domain.Money { return domain.MustMoney(s, "EUR") }

func catalogFixture() stubCatalog {
	return stubCatalog{
		"mug": {
			ID: "p-mug", Handle: "mug", Title: "Mug", FirstVariantID: "v-mug",
			PriceRange: domain.PriceRange{MinVariantPrice: money("9.50"), MaxVariantPrice: money("9.50")},
			Variants:   []domain.Variant{{ID: "v-mug", AvailableForSale: true}},
		},
		"tee": {
			ID: "p-tee", Handle: "tee", Title: "Tee", FirstVariantID: "v-s-black",
			PriceRange: domain.PriceRange{MinVariantPrice: money("20.00"), MaxVariantPrice: money("20.00")},
			Options: []domain.ProductOption{
				{Name: "Size", Values: []string{"S", "M"}},
				{Name: "Color", Values: []string{"Black"}},
			},
			Variants: []domain.Variant{
				{ID: "v-s-black", Title: "S / Black", SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Color", Value: "Black"}}},
				{ID: "v-m-black", Title: "M / Black", SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "M"}, {Name: "Color", Value: "Black"}}},
			},
		},
	}
}

type fixture struct {
	srv      *httptest.Server
	client   *http.Client
	checkout *stubCheckout
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	co := &stubCheckout{url: "https://pay.example/session/1"}
	d := Deps{
		Catalog:       &usecase.CatalogUC{Catalog: catalogFixture()},
		Accounts:      usecase.NewAccountUC(stubAccounts{}),
		Handoff:       checkout.NewHandoff(co, nil),
		Checkout:      co,
		SessionSecret: testSecret,
	}
	for _, m := range mutate {
		m(&d)
	}
	h, err := New(d)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &fixture{srv: srv, client: client, checkout: co}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func (f *fixture) form(t *testing.T, path string, vals url.Values) *http.Response {
	t.Helper()
	res, err := f.client.PostForm(f.srv.URL+path, vals)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func (f *fixture) cart(t *testing.T) cartView {
	t.Helper()
	res := f.do(t, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var v cartView
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestAddPersistsAcrossRequests(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"mug","quantity":2}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	v := f.cart(t)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, "v-mug", v.Lines[0].VariantID)
	assert.Equal(t, "19.00 EUR", v.Subtotal.String())
	assert.True(t, v.Ready)
}

func TestAddResolvesOptionsAndSaturates(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"tee","quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode, "size is not chosen yet")

	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"tee","quantity":5,"options":{"size":"M"}}`)
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"tee","quantity":98,"variantId":"v-m-black"}`)

	v := f.cart(t)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 99, v.Lines[0].Quantity)
	assert.Equal(t, "M / Black", v.Lines[0].VariantTitle)
	require.Len(t, v.Lines[0].Options, 2)
	assert.Equal(t, "size", v.Lines[0].Options[0].Kind)
	assert.Equal(t, "color", v.Lines[0].Options[1].Kind)
}

func TestSetQuantityAndRemove(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"mug","quantity":3}`)
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"tee","options":{"Size":"S"}}`)

	f.do(t, http.MethodPatch, "/api/cart/lines", `{"productId":"p-mug","variantId":"v-mug","quantity":7.9}`)
	v := f.cart(t)
	assert.Equal(t, 7, v.Lines[0].Quantity)

	f.do(t, http.MethodPatch, "/api/cart/lines", `{"productId":"p-mug","variantId":"v-mug","quantity":-5}`)
	v = f.cart(t)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "p-tee", v.Lines[0].ProductID)

	f.do(t, http.MethodDelete, "/api/cart/lines?productId=p-tee&variantId=v-s-black", "")
	assert.Empty(t, f.cart(t).Lines)
}

func TestFormCheckoutClearsCartAndRedirects(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"mug","quantity":2}`)

	res := f.form(t, "/cart/checkout", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "https://pay.example/session/1", res.Header.Get("Location"))
	assert.Empty(t, f.cart(t).Lines)
	assert.Equal(t, [][]domain.CheckoutLine{{{MerchandiseID: "v-mug", Quantity: 2}}}, f.checkout.calls)
}

func TestFormCheckoutFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.checkout.url = ""
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"mug"}`)

	res := f.form(t, "/cart/checkout", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/cart?err=checkout", res.Header.Get("Location"))
	assert.Len(t, f.cart(t).Lines, 1)

	page := f.do(t, http.MethodGet, "/cart?err=checkout", "")
	body, _ := io.ReadAll(page.Body)
	assert.Contains(t, string(body), "could not start the checkout")
}

func TestAPICheckoutOnEmptyCart(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, http.MethodPost, "/api/cart/checkout", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Empty(t, f.checkout.calls)
}

func TestTamperedCartCookieStartsEmpty(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/cart/lines", `{"handle":"mug"}`)

	u, _ := url.Parse(f.srv.URL)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == "cart" {
			c.Value = "AAAA" + c.Value[4:]
			f.client.Jar.SetCookies(u, []*http.Cookie{c})
		}
	}
	assert.Empty(t, f.cart(t).Lines)
}

func TestDrawerDisablesCheckoutForUnresolvedLine(t *testing.T) {
	f := newFixture(t)

	raw, err := cart.EncodeSnapshot([]cart.LineItem{
		{Product: domain.Product{ID: "p-mug", Title: "Mug", PriceRange: domain.PriceRange{MinVariantPrice: money("9.50")}}, VariantID: "v-mug", Quantity: 1},
		{Product: domain.Product{ID: "p-gift", Title: "Gift card", PriceRange: domain.PriceRange{MinVariantPrice: money("25")}}, Quantity: 1},
	})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	slot := &cookieSlot{w: rec, sign: signer{key: []byte(testSecret)}, opts: cookieOptions{name: "cart", maxAge: time.Hour}}
	require.NoError(t, slot.Save(context.Background(), raw))
	u, _ := url.Parse(f.srv.URL)
	f.client.Jar.SetCookies(u, rec.Result().Cookies())

	res := f.do(t, http.MethodGet, "/cart", "")
	body, _ := io.ReadAll(res.Body)
	html := string(body)
	assert.Contains(t, html, "Mug")
	assert.Contains(t, html, "Gift card")
	assert.Less(t, strings.Index(html, "Mug"), strings.Index(html, "Gift card"), "insertion order")
	assert.Contains(t, html, "34.50 EUR")
	assert.Contains(t, html, `<button type="submit" disabled>Checkout</button>`)

	res = f.form(t, "/cart/checkout", nil)
	assert.Equal(t, "https://pay.example/session/1", res.Header.Get("Location"))
	require.Len(t, f.checkout.calls, 1)
	assert.Equal(t, []domain.CheckoutLine{{MerchandiseID: "v-mug", Quantity: 1}}, f.checkout.calls[0])
}

func TestCheckoutEndpoint(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/checkout", `{"lines":[{"merchandiseId":"v1","quantity":0},{"merchandiseId":"","quantity":3}]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out checkout.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "https://pay.example/session/1", out.CheckoutURL)
	assert.Equal(t, []domain.CheckoutLine{{MerchandiseID: "v1", Quantity: 1}}, f.checkout.calls[0])

	res = f.do(t, http.MethodPost, "/api/checkout", `{"lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	f.checkout.err = domain.ErrCheckoutFailed
	res = f.do(t, http.MethodPost, "/api/checkout", `{"lines":[{"merchandiseId":"v1","quantity":1}]}`)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	out = checkout.Response{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.NotEmpty(t, out.Error)
}

func TestProductResolution(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/products/tee?Size=M", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var pv productView
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pv))
	assert.True(t, pv.RequiresSelection)
	assert.True(t, pv.CanAddToCart)
	assert.Equal(t, "v-m-black", pv.SelectedVariantID)
	assert.Len(t, pv.SizeOptions, 1)
	assert.Len(t, pv.ColorOptions, 1)

	res = f.do(t, http.MethodGet, "/api/products/tee", "")
	pv = productView{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pv))
	assert.False(t, pv.CanAddToCart)

	res = f.do(t, http.MethodGet, "/api/products/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPasswordGate(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.StorefrontPassword = "letmein" })

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/cart", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/cart", "").StatusCode)

	res := f.form(t, "/password", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = f.form(t, "/password", url.Values{"password": {"letmein"}, "next": {"/cart"}})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/cart", res.Header.Get("Location"))
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/cart", "").StatusCode)
}

func TestAccountSession(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/account/", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/account/login", `{"email":"ana@example.com","password":"nope"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/account/login", `{"email":"ana"}`).StatusCode)

	res := f.do(t, http.MethodPost, "/api/account/login", `{"email":"ana@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = f.do(t, http.MethodGet, "/api/account/", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var out struct {
		Customer domain.Customer `json:"customer"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "c1", out.Customer.ID)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/account/logout", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/account/", "").StatusCode)
}

func TestRecoveryHandlesOutOfScopeCart(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cart.MustFromContext(r.Context()).Clear()
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
