package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/variant"
)

const shopperCookie = "sid"

type shopperKey struct{}

// shopperID devuelve el id por navegador que protege checkouts concurrentes;
// lo emite en la primera visita.
func (s *Server) shopperID(w http.ResponseWriter, r *http.Request) (string, *http.Request) {
	if id, ok := r.Context().Value(shopperKey{}).(string); ok {
		return id, r
	}
	if c, err := r.Cookie(shopperCookie); err == nil {
		if b, err := s.sign.verify(c.Value); err == nil {
			id := string(b)
			return id, r.WithContext(context.WithValue(r.Context(), shopperKey{}, id))
		}
	}
	id := uuid.NewString()
	setCookieOnce(w, &http.Cookie{
		Name:     shopperCookie,
		Value:    s.sign.sign([]byte(id)),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, r.WithContext(context.WithValue(r.Context(), shopperKey{}, id))
}

type addLineRequest struct {
	Handle    string            `json:"handle"`
	VariantID string            `json:"variantId"`
	Quantity  *float64          `json:"quantity"`
	Options   map[string]string `json:"options"`
}

type lineRequest struct {
	ProductID string   `json:"productId"`
	VariantID string   `json:"variantId"`
	Quantity  *float64 `json:"quantity"`
}

var errVariantRequired = errors.New("choose the product options first")

// addToCart resolves the variant and adds a compact copy of the product.
// Unresolved selections are refused; the caller keeps its add button disabled
// until they resolve.
func (s *Server) addToCart(ctx context.Context, store *cart.Store, in addLineRequest) error {
	p, id, ok, err := s.catalog.Pick(ctx, in.Handle, in.VariantID, variant.Selection(in.Options))
	if err != nil {
		return err
	}
	if !ok {
		return errVariantRequired
	}
	qty := 1
	if in.Quantity != nil {
		qty = cart.ClampFloat(*in.Quantity)
	}
	store.Add(p.Compact(id), qty, id)
	return nil
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartViewOf(cart.MustFromContext(r.Context()), s.classifier))
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	var in addLineRequest
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.addToCart(r.Context(), store, in); err != nil {
		if errors.Is(err, errVariantRequired) {
			writeError(w, http.StatusUnprocessableEntity, "variant_required", err.Error())
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartViewOf(store, s.classifier))
}

func (s *Server) apiCartSetQuantity(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	var in lineRequest
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if in.ProductID == "" || in.Quantity == nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "productId and quantity required")
		return
	}
	store.SetQuantity(in.ProductID, in.VariantID, cart.ClampFloat(*in.Quantity))
	writeJSON(w, http.StatusOK, cartViewOf(store, s.classifier))
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	in := lineRequest{ProductID: r.URL.Query().Get("productId"), VariantID: r.URL.Query().Get("variantId")}
	if in.ProductID == "" && r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	if in.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "productId required")
		return
	}
	store.Remove(in.ProductID, in.VariantID)
	writeJSON(w, http.StatusOK, cartViewOf(store, s.classifier))
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	store.Clear()
	writeJSON(w, http.StatusOK, cartViewOf(store, s.classifier))
}

func (s *Server) apiCartCheckout(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	key, r := s.shopperID(w, r)
	u, err := s.handoff.Submit(r.Context(), key, store)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkoutUrl": u})
}

// Endpoints de formulario: el carrito funciona sin JavaScript.

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	s.render(w, http.StatusOK, "cart.html", map[string]any{
		"Cart":  cartViewOf(store, s.classifier),
		"Error": r.URL.Query().Get("err"),
	})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	in := addLineRequest{
		Handle:    r.PostForm.Get("handle"),
		VariantID: r.PostForm.Get("variantId"),
		Quantity:  formQuantity(r.PostForm),
		Options:   map[string]string{},
	}
	for k, vs := range r.PostForm {
		if name, ok := strings.CutPrefix(k, "option."); ok && len(vs) > 0 {
			in.Options[name] = vs[0]
		}
	}
	if err := s.addToCart(r.Context(), store, in); err != nil {
		dest := "/cart?err=add"
		if errors.Is(err, errVariantRequired) {
			dest = "/cart?err=variant"
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	if err := r.ParseForm(); err == nil {
		if q := formQuantity(r.PostForm); q != nil {
			store.SetQuantity(r.PostForm.Get("productId"), r.PostForm.Get("variantId"), cart.ClampFloat(*q))
		}
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	if err := r.ParseForm(); err == nil {
		store.Remove(r.PostForm.Get("productId"), r.PostForm.Get("variantId"))
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// handleCartCheckout entrega el carrito y redirige al checkout, o de vuelta al
// carrito con el error marcado.
func (s *Server) handleCartCheckout(w http.ResponseWriter, r *http.Request) {
	store := cart.MustFromContext(r.Context())
	key, r := s.shopperID(w, r)
	u, err := s.handoff.Submit(r.Context(), key, store)
	if err != nil {
		code := "checkout"
		switch {
		case errors.Is(err, domain.ErrEmptyCheckout):
			code = "empty"
		case errors.Is(err, domain.ErrCheckoutInFlight):
			code = "in_flight"
		}
		http.Redirect(w, r, "/cart?err="+code, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, u, http.StatusSeeOther)
}

func formQuantity(form url.Values) *float64 {
	raw := strings.TrimSpace(form.Get("quantity"))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
