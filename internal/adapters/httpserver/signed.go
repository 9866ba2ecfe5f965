package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var errBadSignature = errors.New("cookie signature mismatch")

// signer arma valores "sig.payload", ambas partes en base64url sin padding,
// el mismo formato de siempre para las cookies de carrito y sesión.
type signer struct{ key []byte }

func (s signer) mac(b []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(b)
	return h.Sum(nil)
}

func (s signer) sign(payload []byte) string {
	return base64.RawURLEncoding.EncodeToString(s.mac(payload)) + "." + base64.RawURLEncoding.EncodeToString(payload)
}

func (s signer) verify(value string) ([]byte, error) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return nil, errBadSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errBadSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errBadSignature
	}
	if !hmac.Equal(sig, s.mac(payload)) {
		return nil, errBadSignature
	}
	return payload, nil
}
