package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/domain"
)

const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultEmpty    = "empty"
	ResultInFlight = "in_flight"
)

// Observer receives the outcome of every hand-off attempt.
type Observer func(result string, took time.Duration)

// Handoff turns a cart into an external checkout session. On success the cart
// is cleared before the URL is returned so no line outlives its session; on
// failure the cart is left untouched and nothing is retried.
type Handoff struct {
	svc      domain.CheckoutService
	log      zerolog.Logger
	observe  Observer
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewHandoff(svc domain.CheckoutService, observe Observer) *Handoff {
	return &Handoff{
		svc:      svc,
		log:      log.With().Str("component", "checkout").Logger(),
		observe:  observe,
		inFlight: map[string]struct{}{},
	}
}

// Submit hands the cart over. key scopes the re-entrancy guard, normally one
// key per shopper; a second Submit with the same key while the first is still
// waiting gets ErrCheckoutInFlight.
func (h *Handoff) Submit(ctx context.Context, key string, store *cart.Store) (string, error) {
	start := time.Now()
	lines, _ := BuildLines(store.Lines())
	if len(lines) == 0 {
		h.done(ResultEmpty, start)
		return "", domain.ErrEmptyCheckout
	}
	if !h.acquire(key) {
		h.done(ResultInFlight, start)
		return "", domain.ErrCheckoutInFlight
	}
	defer h.release(key)

	url, err := h.svc.CreateCheckout(ctx, lines)
	if err == nil && url == "" {
		err = domain.ErrNoCheckoutURL
	}
	if err != nil {
		h.log.Error().Err(err).Int("lines", len(lines)).Msg("checkout hand-off failed")
		h.done(ResultFailure, start)
		if !errors.Is(err, domain.ErrCheckoutFailed) && !errors.Is(err, domain.ErrNoCheckoutURL) {
			err = errors.Join(domain.ErrCheckoutFailed, err)
		}
		return "", err
	}

	store.Clear()
	h.log.Info().Int("lines", len(lines)).Msg("cart handed off to checkout")
	h.done(ResultSuccess, start)
	return url, nil
}

// InFlight reports whether a hand-off for key is outstanding.
func (h *Handoff) InFlight(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.inFlight[key]
	return ok
}

func (h *Handoff) acquire(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inFlight[key]; ok {
		return false
	}
	h.inFlight[key] = struct{}{}
	return true
}

func (h *Handoff) release(key string) {
	h.mu.Lock()
	delete(h.inFlight, key)
	h.mu.Unlock()
}

func (h *Handoff) done(result string, start time.Time) {
	if h.observe != nil {
		h.observe(result, time.Since(start))
	}
}
