package httpserver

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/cart"
)

// Logging writes one line per request with status, size and latency.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		}
		ev.Str("req_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

// Recovery turns a panic into a 500. A cart consumed outside its scope is a
// wiring bug and is logged as such.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			ev := log.Error().Err(err).Str("req_id", middleware.GetReqID(r.Context())).Str("path", r.URL.Path)
			if errors.Is(err, cart.ErrNoScope) {
				ev.Msg("cart used outside its request scope")
			} else {
				ev.Bytes("stack", debug.Stack()).Msg("panic")
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

const gateCookie = "gate"

// gateExempt: rutas accesibles aunque la tienda tenga contraseña.
var gateExempt = []string{"/healthz", "/metrics", "/password"}

// PasswordGate mantiene la tienda privada hasta que se ingresa la contraseña.
// Sin contraseña configurada no hace nada.
func (s *Server) PasswordGate(next http.Handler) http.Handler {
	if s.password == "" {
		return next
	}
	want := s.sign.sign([]byte("gate:" + s.password))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range gateExempt {
			if r.URL.Path == p {
				next.ServeHTTP(w, r)
				return
			}
		}
		if c, err := r.Cookie(gateCookie); err == nil && subtle.ConstantTimeCompare([]byte(c.Value), []byte(want)) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusUnauthorized, "storefront_locked", "storefront password required")
			return
		}
		s.render(w, http.StatusUnauthorized, "password.html", map[string]any{"Next": r.URL.RequestURI()})
	})
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.PostForm.Get("password")), []byte(s.password)) != 1 {
		s.render(w, http.StatusUnauthorized, "password.html", map[string]any{"Next": r.PostForm.Get("next"), "Error": true})
		return
	}
	setCookieOnce(w, &http.Cookie{
		Name:     gateCookie,
		Value:    s.sign.sign([]byte("gate:" + s.password)),
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	next := r.PostForm.Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// CartScope hydrates the shopper's cart from the cookie slot and installs it
// for the rest of the request.
func (s *Server) CartScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slot := &cookieSlot{w: w, r: r, sign: s.sign, opts: s.cartCookie}
		l := log.With().Str("component", "cart").Str("req_id", middleware.GetReqID(r.Context())).Logger()
		store := cart.NewStore(r.Context(), slot, cart.WithLogger(l), cart.WithHooks(s.cartHooks))
		next.ServeHTTP(w, r.WithContext(cart.WithStore(r.Context(), store)))
	})
}
