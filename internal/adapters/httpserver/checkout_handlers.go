package httpserver

import (
	"errors"
	"net/http"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/domain"
)

// apiCheckout is the checkout endpoint other clients call directly:
// {lines:[{merchandiseId, quantity}]} -> {checkoutUrl} | {error}.
func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	var in checkout.Request
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, checkout.Response{Error: "invalid request body"})
		return
	}
	lines := make([]domain.CheckoutLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.MerchandiseID == "" {
			continue
		}
		lines = append(lines, domain.CheckoutLine{MerchandiseID: l.MerchandiseID, Quantity: max(1, cart.Clamp(l.Quantity))})
	}
	if len(lines) == 0 {
		writeJSON(w, http.StatusBadRequest, checkout.Response{Error: "no checkout lines"})
		return
	}
	u, err := s.checkout.CreateCheckout(r.Context(), lines)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, checkout.Response{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkout.Response{CheckoutURL: u})
}
