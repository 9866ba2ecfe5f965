package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
)

// Request and Response are the wire contract of the checkout endpoint.
type Request struct {
	Lines []domain.CheckoutLine `json:"lines"`
}

type Response struct {
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HTTPService creates checkout sessions through an HTTP endpoint speaking the
// {lines} -> {checkoutUrl} contract.
type HTTPService struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPService(endpoint string, timeout time.Duration) *HTTPService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPService{endpoint: endpoint, httpClient: &http.Client{Timeout: timeout}}
}

func (s *HTTPService) CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	if len(lines) == 0 {
		return "", domain.ErrEmptyCheckout
	}
	buf, err := json.Marshal(Request{Lines: lines})
	if err != nil {
		return "", fmt.Errorf("encode checkout request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	res, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCheckoutFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrCheckoutFailed, err)
	}
	var out Response
	_ = json.Unmarshal(body, &out)

	if res.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrCheckoutFailed, res.StatusCode, msg)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrCheckoutFailed, out.Error)
	}
	if out.CheckoutURL == "" {
		return "", domain.ErrNoCheckoutURL
	}
	return out.CheckoutURL, nil
}
