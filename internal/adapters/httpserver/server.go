package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
	"github.com/phenrril/storefront/internal/variant"
)

//go:embed templates/*.html
var templateFS embed.FS

type Deps struct {
	Catalog  *usecase.CatalogUC
	Accounts *usecase.AccountUC
	Handoff  *checkout.Handoff
	// Checkout serves the POST /api/checkout endpoint.
	Checkout   domain.CheckoutService
	Classifier variant.Classifier

	CartHooks      cart.Hooks
	MetricsHandler http.Handler

	SessionSecret      string
	StorefrontPassword string
	CartCookieName     string
	CartMaxAge         time.Duration
	Secure             bool
}

type Server struct {
	router     chi.Router
	tmpl       *template.Template
	catalog    *usecase.CatalogUC
	accounts   *usecase.AccountUC
	handoff    *checkout.Handoff
	checkout   domain.CheckoutService
	classifier variant.Classifier
	cartHooks  cart.Hooks
	metrics    http.Handler

	sign       signer
	password   string
	secure     bool
	cartCookie cookieOptions
}

func New(d Deps) (http.Handler, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if d.SessionSecret == "" {
		return nil, errors.New("httpserver: session secret required")
	}
	s := &Server{
		router:     chi.NewRouter(),
		tmpl:       tmpl,
		catalog:    d.Catalog,
		accounts:   d.Accounts,
		handoff:    d.Handoff,
		checkout:   d.Checkout,
		classifier: d.Classifier,
		cartHooks:  d.CartHooks,
		metrics:    d.MetricsHandler,
		sign:       signer{key: []byte(d.SessionSecret)},
		password:   d.StorefrontPassword,
		secure:     d.Secure,
		cartCookie: cookieOptions{name: d.CartCookieName, maxAge: d.CartMaxAge, secure: d.Secure},
	}
	if s.classifier == nil {
		s.classifier = variant.DefaultClassifier()
	}
	if s.cartCookie.name == "" {
		s.cartCookie.name = "cart"
	}
	if s.cartCookie.maxAge <= 0 {
		s.cartCookie.maxAge = 30 * 24 * time.Hour
	}
	s.routes()
	return s.router, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging)
	r.Use(Recovery)
	r.Use(s.PasswordGate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Post("/password", s.handlePassword)

	r.Get("/api/products", s.apiProducts)
	r.Get("/api/products/{handle}", s.apiProduct)
	r.Post("/api/checkout", s.apiCheckout)

	r.Route("/api/account", func(r chi.Router) {
		r.Post("/login", s.apiLogin)
		r.Post("/register", s.apiRegister)
		r.Post("/logout", s.apiLogout)
		r.Get("/", s.apiAccount)
		r.Get("/orders", s.apiOrders)
		r.Get("/addresses", s.apiAddresses)
		r.Post("/addresses", s.apiCreateAddress)
		r.Delete("/addresses/{id}", s.apiDeleteAddress)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.CartScope)

		r.Get("/api/cart", s.apiCart)
		r.Delete("/api/cart", s.apiCartClear)
		r.Post("/api/cart/lines", s.apiCartAdd)
		r.Patch("/api/cart/lines", s.apiCartSetQuantity)
		r.Delete("/api/cart/lines", s.apiCartRemove)
		r.Post("/api/cart/checkout", s.apiCartCheckout)

		r.Get("/cart", s.handleCart)
		r.Post("/cart/add", s.handleCartAdd)
		r.Post("/cart/update", s.handleCartUpdate)
		r.Post("/cart/remove", s.handleCartRemove)
		r.Post("/cart/checkout", s.handleCartCheckout)
	})
}

func (s *Server) render(w http.ResponseWriter, code int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeDomainError traduce errores de dominio a status HTTP.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrCheckoutInFlight):
		status, code = http.StatusConflict, "checkout_in_flight"
	case errors.Is(err, domain.ErrEmptyCheckout):
		status, code = http.StatusUnprocessableEntity, "empty_checkout"
	case errors.Is(err, domain.ErrCheckoutFailed), errors.Is(err, domain.ErrNoCheckoutURL):
		status, code = http.StatusBadGateway, "checkout_failed"
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("req_id", middleware.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(status)
	}
	writeError(w, status, code, msg)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}
