package httpserver

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phenrril/storefront/internal/domain"
)

// MaxCookieValue bounds the encoded cart cookie so the whole Set-Cookie header
// stays under the 4 KiB browsers accept.
const MaxCookieValue = 3800

type cookieOptions struct {
	name   string
	maxAge time.Duration
	secure bool
}

// cookieSlot guarda el carrito en una cookie firmada y comprimida con gzip. Lee
// del request y escribe Set-Cookie en la respuesta: vive un solo request.
type cookieSlot struct {
	w    http.ResponseWriter
	r    *http.Request
	sign signer
	opts cookieOptions
}

func (s *cookieSlot) Load(context.Context) ([]byte, error) {
	c, err := s.r.Cookie(s.opts.name)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	packed, err := s.sign.verify(c.Value)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("cart cookie: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, 64<<10))
}

func (s *cookieSlot) Save(_ context.Context, data []byte) error {
	var buf bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	value := s.sign.sign(buf.Bytes())
	if len(value) > MaxCookieValue {
		return fmt.Errorf("%w: %d bytes", domain.ErrSlotOverflow, len(value))
	}
	setCookieOnce(s.w, &http.Cookie{
		Name:     s.opts.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.opts.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// setCookieOnce replaces any Set-Cookie already queued for the same name, so a
// request that mutates the cart several times sends one cookie.
func setCookieOnce(w http.ResponseWriter, c *http.Cookie) {
	h := w.Header()
	prefix := c.Name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(w, c)
}
