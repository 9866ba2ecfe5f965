package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/phenrril/storefront/internal/domain"
)

type cartRequest struct {
	Lines []domain.CheckoutLine `json:"lines"`
}

type cartResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// CreateCheckout creates a backend cart from the lines and returns its checkout
// URL.
func (c *Client) CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	if len(lines) == 0 {
		return "", domain.ErrEmptyCheckout
	}
	var out cartResponse
	if err := c.do(ctx, "POST", "/carts", nil, "", cartRequest{Lines: lines}, &out); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrCheckoutFailed, err)
	}
	if out.CheckoutURL == "" {
		return "", domain.ErrNoCheckoutURL
	}
	return out.CheckoutURL, nil
}
