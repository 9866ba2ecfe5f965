package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/phenrril/storefront/internal/domain"
)

const sessionCookie = "sess"

// sessionUser es lo que lleva la cookie de sesión firmada: el token del cliente
// emitido por el backend y el email para mostrar.
type sessionUser struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"exp"`
}

func (s *Server) writeSession(w http.ResponseWriter, u *sessionUser) {
	if u == nil {
		setCookieOnce(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteStrictMode})
		return
	}
	b, _ := json.Marshal(u)
	maxAge := 7 * 24 * time.Hour
	if !u.ExpiresAt.IsZero() {
		maxAge = time.Until(u.ExpiresAt)
	}
	setCookieOnce(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.sign.sign(b),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) readSession(r *http.Request) *sessionUser {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	payload, err := s.sign.verify(c.Value)
	if err != nil {
		return nil
	}
	var u sessionUser
	if err := json.Unmarshal(payload, &u); err != nil || u.Token == "" {
		return nil
	}
	if !u.ExpiresAt.IsZero() && time.Now().After(u.ExpiresAt) {
		return nil
	}
	return &u
}

func sessionFromToken(email string, tok *domain.AccessToken) *sessionUser {
	return &sessionUser{Email: email, Token: tok.Token, ExpiresAt: tok.ExpiresAt}
}
