package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var in usecase.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	tok, err := s.accounts.Login(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.writeSession(w, sessionFromToken(in.Email, tok))
	writeJSON(w, http.StatusOK, map[string]any{"email": in.Email, "expiresAt": tok.ExpiresAt})
}

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	c, tok, err := s.accounts.Register(r.Context(), in)
	if err != nil && c == nil {
		writeDomainError(w, r, err)
		return
	}
	if tok != nil {
		s.writeSession(w, sessionFromToken(c.Email, tok))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": c})
}

func (s *Server) apiLogout(w http.ResponseWriter, r *http.Request) {
	if u := s.readSession(r); u != nil {
		if err := s.accounts.Logout(r.Context(), u.Token); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	s.writeSession(w, nil)
	w.WriteHeader(http.StatusNoContent)
}

// token returns the customer token from the session or answers 401.
func (s *Server) token(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := s.readSession(r)
	if u == nil {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return "", false
	}
	return u.Token, true
}

func (s *Server) apiAccount(w http.ResponseWriter, r *http.Request) {
	tok, ok := s.token(w, r)
	if !ok {
		return
	}
	c, err := s.accounts.Customer(r.Context(), tok)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": c})
}

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	tok, ok := s.token(w, r)
	if !ok {
		return
	}
	orders, err := s.accounts.Orders(r.Context(), tok)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) apiAddresses(w http.ResponseWriter, r *http.Request) {
	tok, ok := s.token(w, r)
	if !ok {
		return
	}
	list, err := s.accounts.Addresses(r.Context(), tok)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Address{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": list})
}

func (s *Server) apiCreateAddress(w http.ResponseWriter, r *http.Request) {
	tok, ok := s.token(w, r)
	if !ok {
		return
	}
	var in usecase.AddressInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	a, err := s.accounts.CreateAddress(r.Context(), tok, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"address": a})
}

func (s *Server) apiDeleteAddress(w http.ResponseWriter, r *http.Request) {
	tok, ok := s.token(w, r)
	if !ok {
		return
	}
	if err := s.accounts.DeleteAddress(r.Context(), tok, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
